// abs/normalize.go
package abs

import (
	"strings"

	"github.com/Vito0912/abs-opds/models"
)

// Listing сырой ответ сервера на запрос элементов библиотеки
type Listing struct {
	Results []Item `json:"results"`
}

// Item сырой элемент библиотеки в том виде, как его отдает API
type Item struct {
	ID    string `json:"id"`
	Media Media  `json:"media"`
}

// Media медиа-блок сырого элемента
type Media struct {
	EbookFormat string   `json:"ebookFormat"`
	Metadata    Metadata `json:"metadata"`
}

// Metadata метаданные сырого элемента.
// Имена авторов, чтецов и серий приходят одной строкой с разделителями.
type Metadata struct {
	Title         string   `json:"title"`
	Subtitle      string   `json:"subtitle"`
	Description   string   `json:"description"`
	Genres        []string `json:"genres"`
	Tags          []string `json:"tags"`
	Publisher     string   `json:"publisher"`
	ISBN          string   `json:"isbn"`
	Language      string   `json:"language"`
	PublishedYear string   `json:"publishedYear"`
	AuthorName    string   `json:"authorName"`
	NarratorName  string   `json:"narratorName"`
	SeriesName    string   `json:"seriesName"`
}

// ParseItems нормализует сырой список элементов.
// Элементы без определенного формата исключаются, если includeAudiobooks
// не разрешает отдавать чисто аудио-элементы.
func ParseItems(listing *Listing, includeAudiobooks bool) []models.LibraryItem {
	if listing == nil {
		return nil
	}

	items := make([]models.LibraryItem, 0, len(listing.Results))
	for _, raw := range listing.Results {
		meta := raw.Media.Metadata
		item := models.LibraryItem{
			ID:            raw.ID,
			Title:         meta.Title,
			Subtitle:      meta.Subtitle,
			Description:   meta.Description,
			Publisher:     meta.Publisher,
			ISBN:          meta.ISBN,
			Language:      meta.Language,
			PublishedYear: meta.PublishedYear,
			Genres:        meta.Genres,
			Tags:          meta.Tags,
			Authors:       splitNames(meta.AuthorName),
			Narrators:     splitNames(meta.NarratorName),
			Series:        splitSeries(meta.SeriesName),
			Format:        models.ParseFormat(raw.Media.EbookFormat),
		}

		if !item.Format.Known() && !includeAudiobooks {
			continue
		}

		items = append(items, item)
	}
	return items
}

// splitNames разбивает строку имен с разделителем-запятой на список
func splitNames(joined string) []string {
	if joined == "" {
		return nil
	}
	var names []string
	for _, name := range strings.Split(joined, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// splitSeries разбивает строку серий и отбрасывает хвостовые маркеры "#<номер>"
func splitSeries(joined string) []string {
	if joined == "" {
		return nil
	}
	var series []string
	for _, name := range strings.Split(joined, ",") {
		if idx := strings.Index(name, "#"); idx >= 0 {
			name = name[:idx]
		}
		name = strings.TrimSpace(name)
		if name != "" {
			series = append(series, name)
		}
	}
	return series
}
