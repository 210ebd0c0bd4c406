// config/config_test.go
package config

import (
	"strings"
	"testing"
)

func TestUsers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OPDSUsers = "alice:token-a:pass-a, bob:token-b , :orphan, carol"

	users := cfg.Users()
	if len(users) != 3 {
		t.Fatalf("Ожидалось 3 пользователя, получено %d", len(users))
	}

	// Тест 1: полная тройка имя:токен:пароль
	if users[0].Name != "alice" || users[0].Token != "token-a" || users[0].Password != "pass-a" {
		t.Errorf("Неверный разбор пользователя: %+v", users[0])
	}

	// Тест 2: пароль не обязателен
	if users[1].Name != "bob" || users[1].Token != "token-b" || users[1].Password != "" {
		t.Errorf("Неверный разбор пользователя без пароля: %+v", users[1])
	}

	// Тест 3: запись без имени отбрасывается, одно имя допустимо
	if users[2].Name != "carol" {
		t.Errorf("Пользователь из одного имени должен приниматься: %+v", users[2])
	}
}

func TestValidate(t *testing.T) {
	// Тест 1: недопустимый порт отклоняется
	cfg := DefaultConfig()
	cfg.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("Порт вне диапазона должен отклоняться")
	}

	// Тест 2: пустой адрес сервера отклоняется
	cfg = DefaultConfig()
	cfg.ServerURL = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Пустой адрес сервера должен отклоняться")
	}

	// Тест 3: хвостовой слеш адреса сервера обрезается
	cfg = DefaultConfig()
	cfg.ServerURL = "http://abs.local/"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Корректная конфигурация не должна отклоняться: %v", err)
	}
	if cfg.ServerURL != "http://abs.local" {
		t.Errorf("Хвостовой слеш должен обрезаться: %q", cfg.ServerURL)
	}

	// Тест 4: нулевой размер страницы откатывается на значение по умолчанию
	cfg = DefaultConfig()
	cfg.PageSize = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Ошибка валидации: %v", err)
	}
	if cfg.PageSize != DefaultPageSize {
		t.Errorf("Размер страницы должен откатываться на %d: %d", DefaultPageSize, cfg.PageSize)
	}
}

func TestStringMasksSecrets(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OPDSUsers = "alice:secret-token:secret-pass"

	out := cfg.String()
	if strings.Contains(out, "secret-token") || strings.Contains(out, "secret-pass") {
		t.Error("Токены и пароли не должны попадать в строковое представление")
	}
	if !strings.Contains(out, "alice") {
		t.Error("Имена пользователей должны оставаться видимыми")
	}
}
