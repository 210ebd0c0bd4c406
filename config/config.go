// config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"

	"github.com/Vito0912/abs-opds/models"
)

const (
	// DefaultPageSize размер страницы acquisition-фида по умолчанию
	DefaultPageSize = 20
)

// Config структура для хранения конфигурации приложения
type Config struct {
	Debug          bool   `ini:"debug"`
	Port           int    `ini:"port"`
	ServerURL      string `ini:"abs_url"`
	OPDSUsers      string `ini:"opds_users"`
	PageSize       int    `ini:"page_size"`
	ShowAudiobooks bool   `ini:"show_audiobooks"`
	ShowCharCards  bool   `ini:"show_char_cards"`
	UseProxy       bool   `ini:"use_proxy"`
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	return &Config{
		Debug:          false,
		Port:           3010,
		ServerURL:      "http://localhost:3000",
		OPDSUsers:      "",
		PageSize:       DefaultPageSize,
		ShowAudiobooks: false,
		ShowCharCards:  false,
		UseProxy:       false,
	}
}

// LoadConfig загружает конфигурацию из INI-файла и окружения.
// Порядок: значения по умолчанию → файл → .env → переменные окружения.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Printf("Файл конфигурации %s не найден, использую настройки по умолчанию и окружение", configPath)
	} else {
		iniCfg, err := ini.Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("ошибка загрузки файла конфигурации %s: %w", configPath, err)
		}

		defaultSection := iniCfg.Section("")

		// Функция для безопасного чтения строковых значений
		readString := func(key string, defaultValue string) string {
			if value := defaultSection.Key(key).String(); value != "" {
				return value
			}
			return defaultValue
		}

		// Функция для безопасного чтения целочисленных значений
		readInt := func(key string, defaultValue int) int {
			if value, err := defaultSection.Key(key).Int(); err == nil {
				return value
			}
			return defaultValue
		}

		// Функция для безопасного чтения булевых значений
		readBool := func(key string, defaultValue bool) bool {
			if value, err := defaultSection.Key(key).Bool(); err == nil {
				return value
			}
			return defaultValue
		}

		cfg.Debug = readBool("debug", cfg.Debug)
		cfg.Port = readInt("port", cfg.Port)
		cfg.ServerURL = readString("abs_url", cfg.ServerURL)
		cfg.OPDSUsers = readString("opds_users", cfg.OPDSUsers)
		cfg.PageSize = readInt("page_size", cfg.PageSize)
		cfg.ShowAudiobooks = readBool("show_audiobooks", cfg.ShowAudiobooks)
		cfg.ShowCharCards = readBool("show_char_cards", cfg.ShowCharCards)
		cfg.UseProxy = readBool("use_proxy", cfg.UseProxy)
	}

	// .env не обязателен, отсутствие файла не ошибка
	_ = godotenv.Load()

	cfg.applyEnv()

	return cfg, nil
}

// applyEnv перекрывает значения конфигурации переменными окружения
func (c *Config) applyEnv() {
	readString := func(key string, target *string) {
		if value := os.Getenv(key); value != "" {
			*target = value
		}
	}
	readInt := func(key string, target *int) {
		if value := os.Getenv(key); value != "" {
			if n, err := strconv.Atoi(value); err == nil {
				*target = n
			} else {
				log.Printf("Недопустимое числовое значение %s=%q, игнорирую", key, value)
			}
		}
	}
	readBool := func(key string, target *bool) {
		if value := os.Getenv(key); value != "" {
			*target = value == "true"
		}
	}

	readBool("DEBUG", &c.Debug)
	readInt("PORT", &c.Port)
	readString("ABS_URL", &c.ServerURL)
	readString("OPDS_USERS", &c.OPDSUsers)
	readInt("OPDS_PAGE_SIZE", &c.PageSize)
	readBool("SHOW_AUDIOBOOKS", &c.ShowAudiobooks)
	readBool("SHOW_CHAR_CARDS", &c.ShowCharCards)
	readBool("USE_PROXY", &c.UseProxy)
}

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("некорректный порт: %d (должен быть от 1 до 65535)", c.Port)
	}

	if c.ServerURL == "" {
		return fmt.Errorf("адрес сервера Audiobookshelf (abs_url) не может быть пустым")
	}
	if !strings.HasPrefix(c.ServerURL, "http://") && !strings.HasPrefix(c.ServerURL, "https://") {
		log.Printf("Предупреждение: abs_url не начинается с http:// или https://: %s", c.ServerURL)
	}
	c.ServerURL = strings.TrimRight(c.ServerURL, "/")

	if c.PageSize <= 0 {
		log.Printf("Недопустимое значение page_size: %d. Использую %d по умолчанию.", c.PageSize, DefaultPageSize)
		c.PageSize = DefaultPageSize
	}

	return nil
}

// Users разбирает список статических пользователей из тройки name:token:password.
// Пароль не обязателен: без него пользователь аутентифицируется только через
// сервер Audiobookshelf.
func (c *Config) Users() []models.User {
	var users []models.User
	for _, raw := range strings.Split(c.OPDSUsers, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		parts := strings.SplitN(raw, ":", 3)
		user := models.User{Name: parts[0]}
		if len(parts) > 1 {
			user.Token = parts[1]
		}
		if len(parts) > 2 {
			user.Password = parts[2]
		}
		if user.Name == "" {
			continue
		}
		users = append(users, user)
	}
	return users
}

// String возвращает строковое представление конфигурации.
// Токены и пароли пользователей в лог не попадают.
func (c *Config) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Debug: %t\n", c.Debug))
	sb.WriteString(fmt.Sprintf("Port: %d\n", c.Port))
	sb.WriteString(fmt.Sprintf("ServerURL: %s\n", c.ServerURL))
	sb.WriteString(fmt.Sprintf("OPDSUsers: %s\n", func() string {
		users := c.Users()
		if len(users) == 0 {
			return "(не заданы)"
		}
		names := make([]string, 0, len(users))
		for _, u := range users {
			names = append(names, u.Name)
		}
		return strings.Join(names, ", ")
	}()))
	sb.WriteString(fmt.Sprintf("PageSize: %d\n", c.PageSize))
	sb.WriteString(fmt.Sprintf("ShowAudiobooks: %t\n", c.ShowAudiobooks))
	sb.WriteString(fmt.Sprintf("ShowCharCards: %t\n", c.ShowCharCards))
	sb.WriteString(fmt.Sprintf("UseProxy: %t\n", c.UseProxy))
	return sb.String()
}
