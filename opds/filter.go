// opds/filter.go
package opds

import (
	"net/url"
	"strings"

	"github.com/Vito0912/abs-opds/models"
)

// Criteria критерии отбора элементов из параметров запроса
type Criteria struct {
	Query     string
	FacetType string
	FacetName string
	Author    string
	Title     string
}

// CriteriaFromQuery извлекает критерии отбора из параметров запроса
func CriteriaFromQuery(query url.Values) Criteria {
	return Criteria{
		Query:     strings.TrimSpace(query.Get("q")),
		FacetType: strings.TrimSpace(query.Get("type")),
		FacetName: strings.TrimSpace(query.Get("name")),
		Author:    strings.TrimSpace(query.Get("author")),
		Title:     strings.TrimSpace(query.Get("title")),
	}
}

// FilterItems возвращает элементы, удовлетворяющие всем критериям.
// Все сравнения подстрочные и без учета регистра, шаблоны и регулярные
// выражения не применяются. Выбранная категория вытесняет свободный поиск.
func FilterItems(items []models.LibraryItem, criteria Criteria) []models.LibraryItem {
	filtered := make([]models.LibraryItem, 0, len(items))
	for _, item := range items {
		if matchesCriteria(item, criteria) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// matchesCriteria проверяет один элемент против всех критериев
func matchesCriteria(item models.LibraryItem, criteria Criteria) bool {
	if criteria.FacetName != "" {
		if !matchesFacet(item, criteria.FacetType, criteria.FacetName) {
			return false
		}
	} else if criteria.Query != "" {
		if !matchesQuery(item, criteria.Query) {
			return false
		}
	}

	if criteria.Author != "" && !anyContainsFold(item.Authors, criteria.Author) {
		return false
	}
	if criteria.Title != "" &&
		!containsFold(item.Title, criteria.Title) &&
		!containsFold(item.Subtitle, criteria.Title) {
		return false
	}

	return true
}

// matchesFacet проверяет принадлежность элемента выбранной категории.
// Жанры и теги объединены в одну категорию. Неизвестный тип категории
// откатывается на свободный поиск по значению.
func matchesFacet(item models.LibraryItem, facetType, facetName string) bool {
	switch facetType {
	case "authors":
		return anyContainsFold(item.Authors, facetName)
	case "narrators":
		return anyContainsFold(item.Narrators, facetName)
	case "genres":
		return anyContainsFold(item.Genres, facetName) || anyContainsFold(item.Tags, facetName)
	case "series":
		return anyContainsFold(item.Series, facetName)
	default:
		return matchesQuery(item, facetName)
	}
}

// matchesQuery ищет подстроку по всем текстовым полям элемента
func matchesQuery(item models.LibraryItem, query string) bool {
	fields := []string{
		item.Title,
		item.Subtitle,
		item.Description,
		item.Publisher,
		item.ISBN,
		item.Language,
		item.PublishedYear,
	}
	for _, field := range fields {
		if containsFold(field, query) {
			return true
		}
	}
	return anyContainsFold(item.Authors, query) ||
		anyContainsFold(item.Genres, query) ||
		anyContainsFold(item.Tags, query)
}

// containsFold проверяет вхождение подстроки без учета регистра
func containsFold(value, substr string) bool {
	if value == "" {
		return false
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(substr))
}

// anyContainsFold проверяет вхождение подстроки в любой элемент списка
func anyContainsFold(values []string, substr string) bool {
	for _, value := range values {
		if containsFold(value, substr) {
			return true
		}
	}
	return false
}
