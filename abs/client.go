// abs/client.go
package abs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/Vito0912/abs-opds/models"
)

// Client клиент REST API сервера Audiobookshelf
type Client struct {
	baseURL string
	httpc   *http.Client
	debug   bool
}

// NewClient создает новый клиент для сервера по указанному базовому URL
func NewClient(baseURL string, debug bool) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{},
		debug:   debug,
	}
}

// BaseURL возвращает базовый URL сервера
func (c *Client) BaseURL() string {
	return c.baseURL
}

// apiGet выполняет GET-запрос к /api с Bearer-токеном пользователя.
// Ошибки не ретраятся, неуспешный статус поднимается как ошибка.
func (c *Client) apiGet(ctx context.Context, path, token string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api"+path, nil)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса %s: %w", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка запроса к %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("неожиданный статус %d от %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("ошибка декодирования ответа %s: %w", path, err)
	}
	return nil
}

type librariesResponse struct {
	Libraries []models.Library `json:"libraries"`
}

// Libraries возвращает список библиотек, доступных пользователю
func (c *Client) Libraries(ctx context.Context, user *models.User) ([]models.Library, error) {
	var resp librariesResponse
	if err := c.apiGet(ctx, "/libraries", user.Token, &resp); err != nil {
		return nil, err
	}
	return resp.Libraries, nil
}

// Library возвращает одну библиотеку по ее идентификатору
func (c *Client) Library(ctx context.Context, libraryID string, user *models.User) (*models.Library, error) {
	var library models.Library
	if err := c.apiGet(ctx, "/libraries/"+libraryID, user.Token, &library); err != nil {
		return nil, err
	}
	return &library, nil
}

// Items возвращает сырой список элементов библиотеки
func (c *Client) Items(ctx context.Context, libraryID string, user *models.User) (*Listing, error) {
	var listing Listing
	if err := c.apiGet(ctx, "/libraries/"+libraryID+"/items", user.Token, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	User struct {
		Username    string `json:"username"`
		Token       string `json:"token"`
		AccessToken string `json:"accessToken"`
	} `json:"user"`
}

// Login аутентифицирует пользователя на сервере Audiobookshelf.
// Разные версии сервера возвращают токен в разных полях, принимаем оба.
func (c *Client) Login(ctx context.Context, username, password string) (*models.User, error) {
	body, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации запроса логина: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса логина: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса логина: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if c.debug {
			log.Printf("Логин на сервере Audiobookshelf отклонен со статусом %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("логин отклонен со статусом %d", resp.StatusCode)
	}

	var loginResp loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		return nil, fmt.Errorf("ошибка декодирования ответа логина: %w", err)
	}

	token := loginResp.User.AccessToken
	if token == "" {
		token = loginResp.User.Token
	}
	if token == "" {
		return nil, fmt.Errorf("ответ логина не содержит токена")
	}

	name := loginResp.User.Username
	if name == "" {
		name = username
	}

	return &models.User{Name: name, Token: token}, nil
}
