// opds/pagination.go
package opds

import (
	"net/url"
	"strconv"

	"github.com/Vito0912/abs-opds/models"
)

// Page одна страница отфильтрованного списка элементов.
// Номера страниц нулевые, StartIndex единичный (так принято в OpenSearch).
type Page struct {
	Items        []models.LibraryItem
	Number       int
	Size         int
	TotalResults int
	StartIndex   int
	ItemsPerPage int
	TotalPages   int
	EndOfPage    bool
}

// Paginate вырезает страницу page из списка items.
// Номер страницы за пределами списка дает пустую страницу, а не ошибку.
func Paginate(items []models.LibraryItem, page, pageSize int) Page {
	if page < 0 {
		page = 0
	}

	total := len(items)
	start := page * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	perPage := end - start

	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}

	return Page{
		Items:        items[start:end],
		Number:       page,
		Size:         pageSize,
		TotalResults: total,
		StartIndex:   start + 1,
		ItemsPerPage: perPage,
		TotalPages:   totalPages,
		EndOfPage:    end >= total,
	}
}

// PageLinks строит навигационные ссылки пагинации для текущего запроса.
// Ссылка previous на нулевую страницу отдается без параметра page, чтобы
// URL первой страницы всегда выглядел одинаково.
func PageLinks(u *url.URL, page Page) []models.Link {
	links := []models.Link{
		{Rel: "start", Type: mimeAcquisition, Href: pageHref(u, 0)},
		{Rel: "first", Type: mimeAcquisition, Href: pageHref(u, 0)},
	}

	if page.Number > 0 {
		links = append(links, models.Link{
			Rel:  "previous",
			Type: mimeAcquisition,
			Href: pageHref(u, page.Number-1),
		})
	}
	if !page.EndOfPage {
		links = append(links, models.Link{
			Rel:  "next",
			Type: mimeAcquisition,
			Href: pageHref(u, page.Number+1),
		})
	}
	// На последней странице ссылка last опускается вместе с next
	if page.TotalPages > 1 && page.Number < page.TotalPages-1 {
		links = append(links, models.Link{
			Rel:  "last",
			Type: mimeAcquisition,
			Href: pageHref(u, page.TotalPages-1),
		})
	}

	return links
}

// pageHref возвращает URL текущего запроса с замененным номером страницы
func pageHref(u *url.URL, page int) string {
	query := u.Query()
	query.Del("page")
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}

	href := u.Path
	if encoded := query.Encode(); encoded != "" {
		href += "?" + encoded
	}
	return href
}
