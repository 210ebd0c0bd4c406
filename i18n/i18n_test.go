// i18n/i18n_test.go
package i18n

import "testing"

func TestLocalize(t *testing.T) {
	// Тест 1: язык берется из первого тега Accept-Language
	if got := Localize("auth.login", "de-DE,de;q=0.9,en;q=0.8"); got != "Benutzername" {
		t.Errorf("Ожидался немецкий перевод, получено %q", got)
	}

	// Тест 2: неизвестный язык откатывается на английский
	if got := Localize("auth.login", "fr-FR"); got != "Username" {
		t.Errorf("Ожидался английский откат, получено %q", got)
	}

	// Тест 3: пустой заголовок дает английский
	if got := Localize("category.series", ""); got != "Series" {
		t.Errorf("Ожидался английский по умолчанию, получено %q", got)
	}

	// Тест 4: неизвестный ключ возвращается как есть
	if got := Localize("no.such.key", "en"); got != "no.such.key" {
		t.Errorf("Неизвестный ключ должен возвращаться без изменений: %q", got)
	}
}
