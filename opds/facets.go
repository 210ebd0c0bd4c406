// opds/facets.go
package opds

import (
	"strings"
	"unicode"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/Vito0912/abs-opds/models"
)

// facetTypes допустимые типы категорий навигации
var facetTypes = map[string]bool{
	"authors":   true,
	"narrators": true,
	"genres":    true,
	"series":    true,
}

// ValidFacetType проверяет, что тип категории известен
func ValidFacetType(facetType string) bool {
	return facetTypes[facetType]
}

// DistinctValues собирает уникальные значения категории по всем элементам.
// Жанры и теги объединяются в одну категорию. Результат отсортирован
// с учетом локали, а не по байтам.
func DistinctValues(items []models.LibraryItem, facetType string) []string {
	seen := make(map[string]bool)
	var values []string

	add := func(list []string) {
		for _, value := range list {
			value = strings.TrimSpace(value)
			if value == "" || seen[value] {
				continue
			}
			seen[value] = true
			values = append(values, value)
		}
	}

	for _, item := range items {
		switch facetType {
		case "authors":
			add(item.Authors)
		case "narrators":
			add(item.Narrators)
		case "genres":
			add(item.Genres)
			add(item.Tags)
		case "series":
			add(item.Series)
		}
	}

	collate.New(language.Und).SortStrings(values)
	return values
}

// LetterBucket буква алфавита с количеством значений на нее
type LetterBucket struct {
	Letter string
	Count  int
}

// LetterBuckets раскладывает значения по первой букве A-Z.
// Диакритика первой буквы сворачивается к базовой ("É" считается за "E"),
// значения вне латиницы в карточки не попадают. Пустые корзины опускаются.
func LetterBuckets(values []string) []LetterBucket {
	counts := make(map[rune]int)
	for _, value := range values {
		if letter, ok := foldLeadingLetter(value); ok {
			counts[letter]++
		}
	}

	var buckets []LetterBucket
	for letter := 'A'; letter <= 'Z'; letter++ {
		if count := counts[letter]; count > 0 {
			buckets = append(buckets, LetterBucket{Letter: string(letter), Count: count})
		}
	}
	return buckets
}

// FilterByLetter оставляет значения, первая буква которых равна letter
func FilterByLetter(values []string, letter string) []string {
	upper := []rune(strings.ToUpper(strings.TrimSpace(letter)))
	if len(upper) == 0 {
		return values
	}
	want := upper[0]

	var filtered []string
	for _, value := range values {
		if got, ok := foldLeadingLetter(value); ok && got == want {
			filtered = append(filtered, value)
		}
	}
	return filtered
}

// diacriticsFold транформация, убирающая комбинируемые диакритические знаки
var diacriticsFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldLeadingLetter возвращает первую букву значения, приведенную к A-Z
func foldLeadingLetter(value string) (rune, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	folded, _, err := transform.String(diacriticsFold, value)
	if err != nil || folded == "" {
		folded = value
	}

	letter := unicode.ToUpper([]rune(folded)[0])
	if letter < 'A' || letter > 'Z' {
		return 0, false
	}
	return letter, true
}
