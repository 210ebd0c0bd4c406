// i18n/i18n.go
package i18n

import "strings"

const fallbackLanguage = "en"

// localizations словари локализованных строк по коду языка
var localizations = map[string]map[string]string{
	"en": {
		"category.all":       "All Items",
		"category.authors":   "Authors",
		"category.narrators": "Narrators",
		"category.genres":    "Genres",
		"category.series":    "Series",
		"auth.login":         "Username",
		"auth.password":      "Password",
		"search.title":       "Search this library",
		"search.description": "Search for books in Audiobookshelf",
	},
	"de": {
		"category.all":       "Alle Titel",
		"category.authors":   "Autoren",
		"category.narrators": "Sprecher",
		"category.genres":    "Genres",
		"category.series":    "Serien",
		"auth.login":         "Benutzername",
		"auth.password":      "Passwort",
		"search.title":       "Diese Bibliothek durchsuchen",
		"search.description": "Bücher in Audiobookshelf suchen",
	},
}

// Localize возвращает строку для ключа на языке из заголовка Accept-Language.
// Неизвестный язык или ключ откатываются на английский, затем на сам ключ.
func Localize(key, acceptLanguage string) string {
	code := fallbackLanguage
	if acceptLanguage != "" {
		// Берем первичный тег первого языка: "de-DE,de;q=0.9" → "de"
		first := strings.Split(acceptLanguage, ",")[0]
		first = strings.Split(first, ";")[0]
		code = strings.ToLower(strings.Split(strings.TrimSpace(first), "-")[0])
	}

	dict, ok := localizations[code]
	if !ok {
		dict = localizations[fallbackLanguage]
	}
	if value, ok := dict[key]; ok {
		return value
	}
	if value, ok := localizations[fallbackLanguage][key]; ok {
		return value
	}
	return key
}
