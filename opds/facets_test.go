// opds/facets_test.go
package opds

import (
	"testing"

	"github.com/Vito0912/abs-opds/models"
)

var facetFixture = []models.LibraryItem{
	{
		ID:      "item-1",
		Authors: []string{"Émile Zola", "Alan Donovan"},
		Genres:  []string{"Fantasy"},
		Tags:    []string{"Sci-Fi"},
	},
	{
		ID:      "item-2",
		Authors: []string{"Alan Donovan"},
		Genres:  []string{"Fantasy"},
		Series:  []string{"Dune"},
	},
	{
		ID:      "item-3",
		Authors: []string{"Эмиль Золя"},
		Genres:  []string{},
	},
}

func TestValidFacetType(t *testing.T) {
	for _, facetType := range []string{"authors", "narrators", "genres", "series"} {
		if !ValidFacetType(facetType) {
			t.Errorf("Тип %s должен быть допустимым", facetType)
		}
	}
	if ValidFacetType("publishers") {
		t.Error("Неизвестный тип не должен быть допустимым")
	}
	if ValidFacetType("") {
		t.Error("Пустой тип не должен быть допустимым")
	}
}

func TestDistinctValues(t *testing.T) {
	// Тест 1: дубликаты схлопываются
	authors := DistinctValues(facetFixture, "authors")
	if len(authors) != 3 {
		t.Fatalf("Ожидалось 3 автора, получено %d: %v", len(authors), authors)
	}

	// Тест 2: жанры и теги объединяются в одну категорию
	genres := DistinctValues(facetFixture, "genres")
	if len(genres) != 2 {
		t.Fatalf("Ожидалось 2 жанра, получено %d: %v", len(genres), genres)
	}
	seen := map[string]bool{}
	for _, genre := range genres {
		seen[genre] = true
	}
	if !seen["Fantasy"] || !seen["Sci-Fi"] {
		t.Errorf("Жанры должны включать теги: %v", genres)
	}

	// Тест 3: пустая категория дает пустой список
	if narrators := DistinctValues(facetFixture, "narrators"); len(narrators) != 0 {
		t.Errorf("Чтецов в наборе нет: %v", narrators)
	}
}

func TestLetterBuckets(t *testing.T) {
	values := []string{"Émile Zola", "Alan Donovan", "Erik Larson", "Эмиль Золя", "frank herbert"}
	buckets := LetterBuckets(values)

	byLetter := make(map[string]int)
	for _, bucket := range buckets {
		byLetter[bucket.Letter] = bucket.Count
	}

	// Тест 1: диакритика первой буквы сворачивается, É считается за E
	if byLetter["E"] != 2 {
		t.Errorf("Корзина E: ожидалось 2, получено %d", byLetter["E"])
	}

	// Тест 2: строчная первая буква приводится к заглавной
	if byLetter["F"] != 1 {
		t.Errorf("Корзина F: ожидалось 1, получено %d", byLetter["F"])
	}

	// Тест 3: кириллица не попадает в латинские корзины
	total := 0
	for _, bucket := range buckets {
		total += bucket.Count
	}
	if total != 4 {
		t.Errorf("Сумма корзин: ожидалось 4, получено %d", total)
	}

	// Тест 4: корзины отсортированы по алфавиту и без пустых
	for i := 1; i < len(buckets); i++ {
		if buckets[i-1].Letter >= buckets[i].Letter {
			t.Errorf("Корзины не отсортированы: %v", buckets)
		}
	}
	for _, bucket := range buckets {
		if bucket.Count == 0 {
			t.Errorf("Пустая корзина %s не должна отдаваться", bucket.Letter)
		}
	}
}

func TestFilterByLetter(t *testing.T) {
	values := []string{"Émile Zola", "Alan Donovan", "Erik Larson"}

	// Тест 1: буква из запроса приходит строчной
	filtered := FilterByLetter(values, "e")
	if len(filtered) != 2 {
		t.Fatalf("Ожидалось 2 значения на букву E, получено %d: %v", len(filtered), filtered)
	}

	// Тест 2: пустая буква возвращает список без изменений
	if got := FilterByLetter(values, ""); len(got) != len(values) {
		t.Errorf("Пустая буква не должна фильтровать: %v", got)
	}
}

func TestSlugify(t *testing.T) {
	if got := slugify("  Émile Zola "); got != "émile-zola" {
		t.Errorf("Неверный слаг: %q", got)
	}
}
