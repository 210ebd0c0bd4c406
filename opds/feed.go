// opds/feed.go
package opds

import (
	"encoding/xml"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Vito0912/abs-opds/abs"
	"github.com/Vito0912/abs-opds/auth"
	"github.com/Vito0912/abs-opds/config"
	"github.com/Vito0912/abs-opds/i18n"
	"github.com/Vito0912/abs-opds/models"
)

const (
	mimeNavigation  = "application/atom+xml;profile=opds-catalog;kind=navigation"
	mimeAcquisition = "application/atom+xml;profile=opds-catalog;kind=acquisition"
	mimeOpenSearch  = "application/opensearchdescription+xml"

	relAcquisition = "http://opds-spec.org/acquisition"
	relImage       = "http://opds-spec.org/image"
	relThumbnail   = "http://opds-spec.org/image/thumbnail"
)

// Handler обработчик OPDS маршрутов поверх каталога Audiobookshelf
type Handler struct {
	cfg     *config.Config
	catalog *abs.Catalog
	bridge  *auth.Bridge
}

// NewHandler создает обработчик OPDS маршрутов
func NewHandler(cfg *config.Config, catalog *abs.Catalog, bridge *auth.Bridge) *Handler {
	return &Handler{
		cfg:     cfg,
		catalog: catalog,
		bridge:  bridge,
	}
}

// newFeed создает фид с подписями формы логина на языке клиента
func (h *Handler) newFeed(id, title string, r *http.Request) *models.Feed {
	lang := r.Header.Get("Accept-Language")
	return models.NewFeed(id, title, i18n.Localize("auth.login", lang), i18n.Localize("auth.password", lang))
}

// buildLibraryEntries строит записи навигации по библиотекам
func buildLibraryEntries(libraries []models.Library) []models.Entry {
	now := time.Now().UTC().Format(models.OPDSTimeFormat)
	entries := make([]models.Entry, 0, len(libraries))
	for _, library := range libraries {
		entries = append(entries, models.Entry{
			ID:      "urn:abs-opds:library:" + library.ID,
			Title:   library.Name,
			Updated: now,
			Links: []models.Link{{
				Rel:  "subsection",
				Type: mimeNavigation,
				Href: "/opds/libraries/" + url.PathEscape(library.ID) + "?categories=true",
			}},
		})
	}
	return entries
}

// buildCategoryEntries строит записи категорий одной библиотеки
func buildCategoryEntries(libraryID, acceptLanguage string) []models.Entry {
	now := time.Now().UTC().Format(models.OPDSTimeFormat)
	base := "/opds/libraries/" + url.PathEscape(libraryID)

	categories := []struct {
		slug     string
		titleKey string
		href     string
		mime     string
	}{
		{"all", "category.all", base, mimeAcquisition},
		{"authors", "category.authors", base + "/authors", mimeNavigation},
		{"narrators", "category.narrators", base + "/narrators", mimeNavigation},
		{"genres", "category.genres", base + "/genres", mimeNavigation},
		{"series", "category.series", base + "/series", mimeNavigation},
	}

	entries := make([]models.Entry, 0, len(categories))
	for _, cat := range categories {
		entries = append(entries, models.Entry{
			ID:      "urn:abs-opds:library:" + libraryID + ":" + cat.slug,
			Title:   i18n.Localize(cat.titleKey, acceptLanguage),
			Updated: now,
			Links: []models.Link{{
				Rel:  "subsection",
				Type: cat.mime,
				Href: cat.href,
			}},
		})
	}
	return entries
}

// buildFacetEntries строит записи значений категории (авторы, жанры и т.п.).
// Каждая запись ведет в acquisition-фид библиотеки, отфильтрованный
// по выбранному значению.
func buildFacetEntries(libraryID, facetType string, values []string) []models.Entry {
	now := time.Now().UTC().Format(models.OPDSTimeFormat)
	base := "/opds/libraries/" + url.PathEscape(libraryID)

	entries := make([]models.Entry, 0, len(values))
	for _, value := range values {
		entries = append(entries, models.Entry{
			ID:      "urn:abs-opds:library:" + libraryID + ":" + facetType + ":" + slugify(value),
			Title:   value,
			Updated: now,
			Links: []models.Link{{
				Rel:  "subsection",
				Type: mimeAcquisition,
				Href: base + "?name=" + url.QueryEscape(value) + "&type=" + url.QueryEscape(facetType),
			}},
		})
	}
	return entries
}

// buildLetterEntries строит записи-карточки букв для длинных категорий
func buildLetterEntries(libraryID, facetType string, buckets []LetterBucket) []models.Entry {
	now := time.Now().UTC().Format(models.OPDSTimeFormat)
	base := "/opds/libraries/" + url.PathEscape(libraryID) + "/" + url.PathEscape(facetType)

	entries := make([]models.Entry, 0, len(buckets))
	for _, bucket := range buckets {
		entries = append(entries, models.Entry{
			ID:      "urn:abs-opds:library:" + libraryID + ":" + facetType + ":letter-" + strings.ToLower(bucket.Letter),
			Title:   fmt.Sprintf("%s (%d)", bucket.Letter, bucket.Count),
			Updated: now,
			Links: []models.Link{{
				Rel:  "subsection",
				Type: mimeNavigation,
				Href: base + "?start=" + strings.ToLower(bucket.Letter),
			}},
		})
	}
	return entries
}

// buildItemEntries строит acquisition-записи элементов каталога.
// Ссылки скачивания и обложек ведут либо напрямую на сервер Audiobookshelf,
// либо через встроенный прокси. Токен пользователя встраивается в запрос.
func (h *Handler) buildItemEntries(items []models.LibraryItem, user *models.User) []models.Entry {
	now := time.Now().UTC().Format(models.OPDSTimeFormat)

	linkBase := h.cfg.ServerURL
	if h.cfg.UseProxy {
		linkBase = "/opds/proxy"
	}
	token := url.QueryEscape(user.Token)

	entries := make([]models.Entry, 0, len(items))
	for _, item := range items {
		itemBase := linkBase + "/api/items/" + url.PathEscape(item.ID)

		links := []models.Link{
			{
				Rel:  relAcquisition,
				Type: "application/octet-stream",
				Href: itemBase + "/download?token=" + token,
			},
			{
				Rel:  relAcquisition,
				Type: item.Format.MimeType(),
				Href: itemBase + "/ebook?token=" + token,
			},
			{
				Rel:  relImage,
				Type: "image/webp",
				Href: itemBase + "/cover?token=" + token + "&format=webp",
			},
			{
				Rel:  relThumbnail,
				Type: "image/png",
				Href: itemBase + "/cover?token=" + token + "&format=png",
			},
		}

		entry := models.Entry{
			ID:        "urn:uuid:" + item.ID,
			Title:     item.Title,
			Subtitle:  item.Subtitle,
			Updated:   now,
			Publisher: item.Publisher,
			ISBN:      item.ISBN,
			Published: item.PublishedYear,
			Language:  item.Language,
			Links:     links,
		}

		if item.Description != "" {
			entry.Content = &models.Content{Type: "html", Text: item.Description}
		}
		for _, author := range item.Authors {
			entry.Authors = append(entry.Authors, models.EntryAuthor{Name: author})
		}
		for _, genre := range item.Genres {
			entry.Categories = append(entry.Categories, models.Category{Label: genre, Term: genre})
		}
		for _, tag := range item.Tags {
			entry.Categories = append(entry.Categories, models.Category{Label: tag, Term: tag})
		}

		entries = append(entries, entry)
	}
	return entries
}

// renderFeed сериализует фид с правильным типом контента
func (h *Handler) renderFeed(w http.ResponseWriter, feed *models.Feed, kind string) {
	w.Header().Set("Content-Type", "application/atom+xml;profile=opds-catalog;kind="+kind+"; charset=utf-8")

	if _, err := w.Write([]byte(xml.Header)); err != nil {
		return
	}
	if err := xml.NewEncoder(w).Encode(feed); err != nil && h.cfg.Debug {
		log.Printf("Ошибка кодирования фида %s: %v", feed.ID, err)
	}
}

// slugify превращает значение в пригодный для идентификатора вид
func slugify(value string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(value)), " ", "-")
}
