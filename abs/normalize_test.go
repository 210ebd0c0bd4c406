// abs/normalize_test.go
package abs

import (
	"testing"

	"github.com/Vito0912/abs-opds/models"
)

func TestParseItems(t *testing.T) {
	listing := &Listing{
		Results: []Item{
			{
				ID: "item-1",
				Media: Media{
					EbookFormat: "epub",
					Metadata: Metadata{
						Title:      "Первая книга",
						AuthorName: "Иванов Иван, Петров Петр",
						SeriesName: "Сага #1, Другая серия #3",
					},
				},
			},
			{
				// Чистый аудио-элемент, формат не определен
				ID: "item-2",
				Media: Media{
					Metadata: Metadata{Title: "Аудиокнига"},
				},
			},
		},
	}

	// Тест 1: без аудиокниг остается только элемент с известным форматом
	items := ParseItems(listing, false)
	if len(items) != 1 {
		t.Fatalf("Ожидался 1 элемент, получено %d", len(items))
	}
	if items[0].Format != models.FormatEPUB {
		t.Errorf("Ожидался формат epub, получен %q", items[0].Format)
	}

	// Тест 2: строка авторов разбивается по запятым
	if len(items[0].Authors) != 2 || items[0].Authors[0] != "Иванов Иван" || items[0].Authors[1] != "Петров Петр" {
		t.Errorf("Неверный разбор авторов: %v", items[0].Authors)
	}

	// Тест 3: номера серий после # отбрасываются
	if len(items[0].Series) != 2 || items[0].Series[0] != "Сага" || items[0].Series[1] != "Другая серия" {
		t.Errorf("Неверный разбор серий: %v", items[0].Series)
	}

	// Тест 4: с включенными аудиокнигами элемент без формата проходит
	items = ParseItems(listing, true)
	if len(items) != 2 {
		t.Fatalf("Ожидалось 2 элемента, получено %d", len(items))
	}
	if items[1].Format.Known() {
		t.Errorf("Формат аудио-элемента не должен быть известным: %q", items[1].Format)
	}
}

func TestSplitNames(t *testing.T) {
	// Пустые фрагменты и пробелы отбрасываются
	names := splitNames(" Один ,, Два ,")
	if len(names) != 2 || names[0] != "Один" || names[1] != "Два" {
		t.Errorf("Неверный разбор имен: %v", names)
	}

	if splitNames("") != nil {
		t.Error("Пустая строка должна давать nil")
	}
}
