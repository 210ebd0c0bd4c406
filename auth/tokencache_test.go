// auth/tokencache_test.go
package auth

import (
	"testing"
	"time"
)

func TestTokenCacheRoundtrip(t *testing.T) {
	cache := NewTokenCache(DefaultTokenTTL)

	if err := cache.Put("Reader", "secret-token", "password123"); err != nil {
		t.Fatalf("Ошибка сохранения токена: %v", err)
	}

	// Тест 1: токен расшифровывается правильным паролем
	token, ok := cache.Get("Reader", "password123")
	if !ok {
		t.Fatal("Токен должен находиться в кэше")
	}
	if token != "secret-token" {
		t.Errorf("Ожидался токен secret-token, получен %q", token)
	}

	// Тест 2: имя пользователя сравнивается без учета регистра
	if _, ok := cache.Get("reader", "password123"); !ok {
		t.Error("Регистр имени пользователя не должен влиять на поиск")
	}
}

func TestTokenCacheWrongPasswordEvicts(t *testing.T) {
	cache := NewTokenCache(DefaultTokenTTL)

	if err := cache.Put("reader", "secret-token", "password123"); err != nil {
		t.Fatalf("Ошибка сохранения токена: %v", err)
	}

	// Тест 1: неверный пароль не расшифровывает токен
	if _, ok := cache.Get("reader", "wrong-password"); ok {
		t.Fatal("Неверный пароль не должен возвращать токен")
	}

	// Тест 2: запись вычищена, правильный пароль больше не помогает
	if _, ok := cache.Get("reader", "password123"); ok {
		t.Error("Запись после неудачной расшифровки должна быть удалена")
	}
}

func TestTokenCacheExpiry(t *testing.T) {
	now := time.Now()
	cache := NewTokenCache(10 * time.Minute)
	cache.now = func() time.Time { return now }

	if err := cache.Put("reader", "secret-token", "password123"); err != nil {
		t.Fatalf("Ошибка сохранения токена: %v", err)
	}

	// Тест 1: до истечения TTL токен доступен
	now = now.Add(10*time.Minute - time.Second)
	if _, ok := cache.Get("reader", "password123"); !ok {
		t.Error("Токен до истечения TTL должен быть доступен")
	}

	// Тест 2: после истечения TTL запись вычищается
	now = now.Add(2 * time.Second)
	if _, ok := cache.Get("reader", "password123"); ok {
		t.Error("Просроченный токен не должен возвращаться")
	}
}

func TestSealOpenWithPassword(t *testing.T) {
	plaintext := []byte("токен для шифрования")

	envelope, err := sealWithPassword(plaintext, "password123")
	if err != nil {
		t.Fatalf("Ошибка шифрования: %v", err)
	}

	// Тест 1: конверт не содержит открытого текста
	if string(envelope) == string(plaintext) {
		t.Error("Конверт не должен совпадать с открытым текстом")
	}

	// Тест 2: расшифровка тем же паролем возвращает оригинал
	decrypted, err := openWithPassword(envelope, "password123")
	if err != nil {
		t.Fatalf("Ошибка расшифровки: %v", err)
	}
	if string(decrypted) != string(plaintext) {
		t.Error("Расшифрованные данные не совпадают с оригиналом")
	}

	// Тест 3: чужой пароль дает ошибку аутентификации GCM
	if _, err := openWithPassword(envelope, "other-password"); err == nil {
		t.Error("Расшифровка чужим паролем должна завершаться ошибкой")
	}

	// Тест 4: обрезанный конверт отклоняется
	if _, err := openWithPassword(envelope[:8], "password123"); err == nil {
		t.Error("Слишком короткий конверт должен отклоняться")
	}
}
