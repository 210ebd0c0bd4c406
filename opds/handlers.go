// opds/handlers.go
package opds

import (
	"encoding/xml"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/Vito0912/abs-opds/abs"
	"github.com/Vito0912/abs-opds/i18n"
	"github.com/Vito0912/abs-opds/models"
)

// Register регистрирует OPDS маршруты на мультиплексоре.
// Прокси намеренно остается без проверки учетных данных: токен уже
// встроен в проксируемые ссылки, а читалки не шлют Basic при скачивании.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/opds", h.bridge.RequireAuth(h.RootHandler))
	mux.HandleFunc("/opds/", h.bridge.RequireAuth(h.RootHandler))
	mux.HandleFunc("/opds/libraries/", h.bridge.RequireAuth(h.LibrariesHandler))
	mux.HandleFunc("/opds/proxy/", h.ProxyHandler)
}

// RootHandler отдает корневой каталог со списком библиотек.
// Единственная библиотека сразу перенаправляет в свои категории.
func (h *Handler) RootHandler(w http.ResponseWriter, r *http.Request, user *models.User) {
	libraries, err := h.catalog.Client().Libraries(r.Context(), user)
	if err != nil {
		if h.cfg.Debug {
			log.Printf("Ошибка получения списка библиотек: %v", err)
		}
		http.Error(w, "Ошибка запроса к серверу Audiobookshelf", http.StatusInternalServerError)
		return
	}

	if len(libraries) == 1 {
		http.Redirect(w, r, "/opds/libraries/"+url.PathEscape(libraries[0].ID)+"?categories=true", http.StatusFound)
		return
	}

	id := fmt.Sprintf("urn:abs-opds:root:%x", xxhash.Sum64String(user.Name))
	feed := h.newFeed(id, user.Name+"'s Libraries", r)
	feed.Links = []models.Link{
		{Rel: "self", Type: mimeNavigation, Href: "/opds"},
		{Rel: "start", Type: mimeNavigation, Href: "/opds"},
	}
	feed.Entries = buildLibraryEntries(libraries)

	h.renderFeed(w, feed, "navigation")
}

// LibrariesHandler разбирает путь под /opds/libraries/ и передает запрос
// нужному обработчику: категории, карточки категории, описание поиска
// или acquisition-фид самой библиотеки.
func (h *Handler) LibrariesHandler(w http.ResponseWriter, r *http.Request, user *models.User) {
	rest := strings.TrimPrefix(r.URL.Path, "/opds/libraries/")
	parts := strings.SplitN(rest, "/", 2)

	libraryID, err := url.PathUnescape(parts[0])
	if err != nil || libraryID == "" {
		http.Error(w, "Библиотека не указана", http.StatusNotFound)
		return
	}

	if len(parts) == 2 && parts[1] != "" {
		sub := strings.TrimSuffix(parts[1], "/")
		if sub == "search-definition" {
			h.searchDescriptorHandler(w, r, libraryID)
			return
		}
		h.facetHandler(w, r, user, libraryID, sub)
		return
	}

	if r.URL.Query().Get("categories") == "true" {
		h.categoriesHandler(w, r, user, libraryID)
		return
	}

	h.libraryHandler(w, r, user, libraryID)
}

// categoriesHandler отдает навигационный фид категорий библиотеки
func (h *Handler) categoriesHandler(w http.ResponseWriter, r *http.Request, user *models.User, libraryID string) {
	library, err := h.catalog.Client().Library(r.Context(), libraryID, user)
	if err != nil {
		if h.cfg.Debug {
			log.Printf("Ошибка получения библиотеки %s: %v", libraryID, err)
		}
		http.Error(w, "Ошибка запроса к серверу Audiobookshelf", http.StatusInternalServerError)
		return
	}

	feed := h.newFeed("urn:abs-opds:library:"+libraryID+":categories", library.Name, r)
	feed.Links = []models.Link{
		{Rel: "self", Type: mimeNavigation, Href: r.URL.Path + "?categories=true"},
		{Rel: "start", Type: mimeNavigation, Href: "/opds"},
	}
	feed.Entries = buildCategoryEntries(libraryID, r.Header.Get("Accept-Language"))

	h.renderFeed(w, feed, "navigation")
}

// libraryHandler отдает acquisition-фид библиотеки: фильтрация по критериям
// запроса, пагинация и поисковые ссылки.
func (h *Handler) libraryHandler(w http.ResponseWriter, r *http.Request, user *models.User, libraryID string) {
	listing, err := h.catalog.Items(r.Context(), libraryID, user)
	if err != nil {
		if h.cfg.Debug {
			log.Printf("Ошибка получения элементов библиотеки %s: %v", libraryID, err)
		}
		http.Error(w, "Ошибка запроса к серверу Audiobookshelf", http.StatusInternalServerError)
		return
	}

	items := FilterItems(
		abs.ParseItems(listing, h.cfg.ShowAudiobooks),
		CriteriaFromQuery(r.URL.Query()),
	)

	pageNumber := 0
	if raw := r.URL.Query().Get("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			pageNumber = n
		}
	}
	page := Paginate(items, pageNumber, h.cfg.PageSize)

	title := libraryID
	if library, err := h.catalog.Client().Library(r.Context(), libraryID, user); err == nil {
		title = library.Name
	} else if h.cfg.Debug {
		log.Printf("Не удалось получить имя библиотеки %s: %v", libraryID, err)
	}

	base := "/opds/libraries/" + url.PathEscape(libraryID)

	feed := h.newFeed("urn:abs-opds:library:"+libraryID, title, r)
	feed.TotalResults = strconv.Itoa(page.TotalResults)
	feed.StartIndex = strconv.Itoa(page.StartIndex)
	feed.ItemsPerPage = strconv.Itoa(page.ItemsPerPage)
	feed.Links = []models.Link{
		{Rel: "self", Type: mimeAcquisition, Href: pageHref(r.URL, page.Number)},
		{Rel: "search", Type: mimeOpenSearch, Href: base + "/search-definition"},
		// Atom-вариант поиска для читалок, не понимающих OpenSearch документ
		{Rel: "search", Type: mimeAcquisition, Href: base + "?q={searchTerms}"},
		{Rel: "alternate", Type: "text/html", Href: h.cfg.ServerURL + "/library/" + url.PathEscape(libraryID)},
	}
	feed.Links = append(feed.Links, PageLinks(r.URL, page)...)
	feed.Entries = h.buildItemEntries(page.Items, user)

	h.renderFeed(w, feed, "acquisition")
}

// facetHandler отдает навигационный фид значений категории.
// При включенных карточках букв и без выбранной буквы отдаются
// карточки, иначе сами значения (при необходимости отфильтрованные).
func (h *Handler) facetHandler(w http.ResponseWriter, r *http.Request, user *models.User, libraryID, facetType string) {
	if !ValidFacetType(facetType) {
		http.Error(w, "Неизвестный тип категории", http.StatusBadRequest)
		return
	}

	listing, err := h.catalog.Items(r.Context(), libraryID, user)
	if err != nil {
		if h.cfg.Debug {
			log.Printf("Ошибка получения элементов библиотеки %s: %v", libraryID, err)
		}
		http.Error(w, "Ошибка запроса к серверу Audiobookshelf", http.StatusInternalServerError)
		return
	}

	values := DistinctValues(abs.ParseItems(listing, h.cfg.ShowAudiobooks), facetType)
	start := r.URL.Query().Get("start")

	feed := h.newFeed(
		"urn:abs-opds:library:"+libraryID+":"+facetType,
		i18n.Localize("category."+facetType, r.Header.Get("Accept-Language")),
		r,
	)
	feed.Links = []models.Link{
		{Rel: "self", Type: mimeNavigation, Href: r.URL.Path},
		{Rel: "start", Type: mimeNavigation, Href: "/opds"},
		{Rel: "up", Type: mimeNavigation, Href: "/opds/libraries/" + url.PathEscape(libraryID) + "?categories=true"},
	}

	if h.cfg.ShowCharCards && start == "" {
		feed.Entries = buildLetterEntries(libraryID, facetType, LetterBuckets(values))
	} else {
		if start != "" {
			values = FilterByLetter(values, start)
		}
		feed.Entries = buildFacetEntries(libraryID, facetType, values)
	}

	h.renderFeed(w, feed, "navigation")
}

// searchDescriptorHandler отдает OpenSearch документ библиотеки.
// Шаблон собирается абсолютным, чтобы читалка могла подставить
// параметры без знания о базовом адресе шлюза.
func (h *Handler) searchDescriptorHandler(w http.ResponseWriter, r *http.Request, libraryID string) {
	lang := r.Header.Get("Accept-Language")

	proto := r.Header.Get("X-Forwarded-Proto")
	if proto == "" {
		proto = "http"
	}
	host := r.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = r.Host
	}

	template := proto + "://" + host + "/opds/libraries/" + url.PathEscape(libraryID) +
		"?q={searchTerms}&author={author}&title={title}"

	descriptor := models.OpenSearchDescription{
		Xmlns:       "http://a9.com/-/spec/opensearch/1.1/",
		XmlnsAtom:   "http://www.w3.org/2005/Atom",
		ShortName:   i18n.Localize("search.title", lang),
		LongName:    i18n.Localize("search.title", lang),
		Description: i18n.Localize("search.description", lang),
		URL: models.OpenSearchURL{
			Type:     mimeAcquisition,
			Template: template,
		},
	}

	w.Header().Set("Content-Type", mimeOpenSearch+"; charset=utf-8")
	if _, err := w.Write([]byte(xml.Header)); err != nil {
		return
	}
	if err := xml.NewEncoder(w).Encode(descriptor); err != nil && h.cfg.Debug {
		log.Printf("Ошибка кодирования описания поиска: %v", err)
	}
}
