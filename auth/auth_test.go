// auth/auth_test.go
package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vito0912/abs-opds/abs"
	"github.com/Vito0912/abs-opds/models"
)

// newLoginServer поднимает тестовый сервер логина и считает обращения к нему
func newLoginServer(t *testing.T, logins *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/login" {
			http.NotFound(w, r)
			return
		}
		*logins++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"user":{"username":"reader","token":"upstream-token"}}`))
	}))
}

func TestAuthenticateStaticUser(t *testing.T) {
	var logins int
	server := newLoginServer(t, &logins)
	defer server.Close()

	users := []models.User{{Name: "Reader", Token: "static-token", Password: "password123"}}
	bridge := NewBridge(users, abs.NewClient(server.URL, false), false)

	// Статический пользователь не должен ходить на сервер
	user, err := bridge.Authenticate(context.Background(), "reader", "password123")
	require.NoError(t, err)
	assert.Equal(t, "static-token", user.Token)
	assert.Zero(t, logins, "статический пользователь не должен логиниться на сервере")

	// Неверный пароль статического пользователя уходит на сервер
	user, err = bridge.Authenticate(context.Background(), "reader", "otherpass")
	require.NoError(t, err)
	assert.Equal(t, "upstream-token", user.Token)
	assert.Equal(t, 1, logins)
}

func TestAuthenticateCachesToken(t *testing.T) {
	var logins int
	server := newLoginServer(t, &logins)
	defer server.Close()

	bridge := NewBridge(nil, abs.NewClient(server.URL, false), false)

	// Первый вход логинится на сервере
	_, err := bridge.Authenticate(context.Background(), "reader", "password123")
	require.NoError(t, err)
	require.Equal(t, 1, logins)

	// Повторный вход с тем же паролем берет токен из кэша
	user, err := bridge.Authenticate(context.Background(), "reader", "password123")
	require.NoError(t, err)
	assert.Equal(t, "upstream-token", user.Token)
	assert.Equal(t, 1, logins, "повторный вход должен обслуживаться кэшем токенов")

	// Другой пароль не расшифровывает кэш и снова логинится
	_, err = bridge.Authenticate(context.Background(), "reader", "newpassword")
	require.NoError(t, err)
	assert.Equal(t, 2, logins)
}

func TestAuthenticateMissingCredentials(t *testing.T) {
	bridge := NewBridge(nil, abs.NewClient("http://localhost:1", false), false)

	_, err := bridge.Authenticate(context.Background(), "", "password")
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = bridge.Authenticate(context.Background(), "reader", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestAuthenticateRejectedLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	bridge := NewBridge(nil, abs.NewClient(server.URL, false), false)

	_, err := bridge.Authenticate(context.Background(), "reader", "badpass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRequireAuthChallenge(t *testing.T) {
	bridge := NewBridge(nil, abs.NewClient("http://localhost:1", false), false)

	handler := bridge.RequireAuth(func(w http.ResponseWriter, r *http.Request, user *models.User) {
		t.Fatal("Обработчик не должен вызываться без учетных данных")
	})

	req := httptest.NewRequest(http.MethodGet, "/opds", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	// Ответ 401 с challenge-заголовком и документом аутентификации
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, `Basic realm="OPDS"`, rec.Header().Get("WWW-Authenticate"))

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, models.AuthTypeBasic), "тело должно объявлять Basic-схему")
	assert.False(t, strings.Contains(body, "<entry>"), "документ аутентификации не содержит записей")
}

func TestRequireAuthPassesUser(t *testing.T) {
	var logins int
	server := newLoginServer(t, &logins)
	defer server.Close()

	bridge := NewBridge(nil, abs.NewClient(server.URL, false), false)

	var got *models.User
	handler := bridge.RequireAuth(func(w http.ResponseWriter, r *http.Request, user *models.User) {
		got = user
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/opds", nil)
	req.SetBasicAuth("reader", "password123")
	rec := httptest.NewRecorder()
	handler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "upstream-token", got.Token)
}
