// auth/auth.go
package auth

import (
	"context"
	"encoding/xml"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/Vito0912/abs-opds/abs"
	"github.com/Vito0912/abs-opds/i18n"
	"github.com/Vito0912/abs-opds/models"
)

var (
	// ErrMissingCredentials заголовок Basic отсутствует или не разбирается
	ErrMissingCredentials = errors.New("отсутствуют учетные данные")
	// ErrInvalidCredentials пользователь неизвестен или пароль не подошел
	ErrInvalidCredentials = errors.New("неверные учетные данные")
)

// Bridge мост аутентификации: статические пользователи, кэш токенов
// и логин на сервере Audiobookshelf.
type Bridge struct {
	users  []models.User
	client *abs.Client
	tokens *TokenCache
	debug  bool
}

// NewBridge создает мост аутентификации
func NewBridge(users []models.User, client *abs.Client, debug bool) *Bridge {
	return &Bridge{
		users:  users,
		client: client,
		tokens: NewTokenCache(DefaultTokenTTL),
		debug:  debug,
	}
}

// Authenticate проверяет учетные данные и возвращает пользователя.
// Порядок: статический список → кэш токенов → логин на сервере.
// Пароль никогда не логируется и не попадает в ответ.
func (b *Bridge) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	// Статические пользователи: имя без учета регистра, пароль точно
	for _, user := range b.users {
		if strings.EqualFold(user.Name, username) && user.Password != "" && user.Password == password {
			if b.debug {
				log.Printf("Статический пользователь %s аутентифицирован", user.Name)
			}
			u := user
			return &u, nil
		}
	}

	// Кэш токенов: запись жива и расшифровывается поданным паролем
	if token, ok := b.tokens.Get(username, password); ok {
		if b.debug {
			log.Printf("Токен пользователя %s взят из кэша", username)
		}
		return &models.User{Name: username, Token: token}, nil
	}

	// Логин на сервере Audiobookshelf
	user, err := b.client.Login(ctx, username, password)
	if err != nil {
		if b.debug {
			log.Printf("Логин пользователя %s не удался: %v", username, err)
		}
		return nil, ErrInvalidCredentials
	}

	if err := b.tokens.Put(username, user.Token, password); err != nil {
		// Кэширование не критично, аутентификация уже состоялась
		if b.debug {
			log.Printf("Не удалось закэшировать токен пользователя %s: %v", username, err)
		}
	}

	if b.debug {
		log.Printf("Пользователь %s аутентифицирован на сервере Audiobookshelf", username)
	}
	return user, nil
}

// RequireAuth оборачивает обработчик проверкой Basic-аутентификации.
// Любой отказ сводится к 401 с challenge-заголовком и документом
// аутентификации в теле.
func (b *Bridge) RequireAuth(next func(http.ResponseWriter, *http.Request, *models.User)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok {
			if b.debug {
				log.Printf("Запрос %s %s без заголовка Basic", r.Method, r.URL.Path)
			}
			b.Challenge(w, r)
			return
		}

		user, err := b.Authenticate(r.Context(), username, password)
		if err != nil {
			b.Challenge(w, r)
			return
		}

		next(w, r, user)
	}
}

// Challenge отправляет 401 с challenge-заголовком и документом,
// объявляющим Basic-схему, чтобы читалка показала форму логина.
func (b *Bridge) Challenge(w http.ResponseWriter, r *http.Request) {
	lang := r.Header.Get("Accept-Language")
	doc := models.NewFeed(
		"urn:abs-opds:auth",
		"Authentication required",
		i18n.Localize("auth.login", lang),
		i18n.Localize("auth.password", lang),
	)

	w.Header().Set("WWW-Authenticate", `Basic realm="OPDS"`)
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)

	if _, err := w.Write([]byte(xml.Header)); err != nil {
		return
	}
	if err := xml.NewEncoder(w).Encode(doc); err != nil && b.debug {
		log.Printf("Ошибка кодирования документа аутентификации: %v", err)
	}
}
