// auth/tokencache.go
package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// DefaultTokenTTL время жизни закэшированного токена
	DefaultTokenTTL = 10 * time.Minute

	pbkdf2Iterations = 100000
	pbkdf2KeyLength  = 32
	pbkdf2SaltLength = 16
)

// cachedToken зашифрованный токен с моментом истечения
type cachedToken struct {
	envelope  []byte
	expiresAt time.Time
}

// TokenCache кэш токенов, полученных от сервера Audiobookshelf.
// Токен хранится зашифрованным ключом из пароля пользователя: перезапуск
// не нужен, а пароль нигде не сохраняется. Запись живет до истечения TTL
// или до первой неудачной расшифровки.
type TokenCache struct {
	mu      sync.Mutex
	entries map[string]cachedToken
	ttl     time.Duration
	now     func() time.Time
}

// NewTokenCache создает кэш токенов с указанным TTL
func NewTokenCache(ttl time.Duration) *TokenCache {
	return &TokenCache{
		entries: make(map[string]cachedToken),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Put шифрует токен паролем и сохраняет его, перекрывая прежнюю запись
func (tc *TokenCache) Put(username, token, password string) error {
	envelope, err := sealWithPassword([]byte(token), password)
	if err != nil {
		return fmt.Errorf("ошибка шифрования токена: %w", err)
	}

	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.entries[strings.ToLower(username)] = cachedToken{
		envelope:  envelope,
		expiresAt: tc.now().Add(tc.ttl),
	}
	return nil
}

// Get возвращает расшифрованный токен, если запись жива и пароль подходит.
// Просроченная или нерасшифровываемая запись вычищается.
func (tc *TokenCache) Get(username, password string) (string, bool) {
	key := strings.ToLower(username)

	tc.mu.Lock()
	defer tc.mu.Unlock()

	entry, ok := tc.entries[key]
	if !ok {
		return "", false
	}
	if tc.now().After(entry.expiresAt) {
		delete(tc.entries, key)
		return "", false
	}

	token, err := openWithPassword(entry.envelope, password)
	if err != nil {
		delete(tc.entries, key)
		return "", false
	}
	return string(token), true
}

// Invalidate удаляет запись пользователя
func (tc *TokenCache) Invalidate(username string) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	delete(tc.entries, strings.ToLower(username))
}

// sealWithPassword шифрует данные ключом, выведенным из пароля.
// Конверт: соль PBKDF2 + nonce GCM + шифротекст.
func sealWithPassword(plaintext []byte, password string) ([]byte, error) {
	salt := make([]byte, pbkdf2SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("ошибка генерации соли: %w", err)
	}

	key := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, pbkdf2KeyLength, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("ошибка генерации nonce: %w", err)
	}

	ciphertext := gcm.Seal(nonce, nonce, plaintext, nil)

	envelope := make([]byte, 0, len(salt)+len(ciphertext))
	envelope = append(envelope, salt...)
	envelope = append(envelope, ciphertext...)
	return envelope, nil
}

// openWithPassword расшифровывает конверт ключом, выведенным из пароля
func openWithPassword(envelope []byte, password string) ([]byte, error) {
	if len(envelope) < pbkdf2SaltLength {
		return nil, fmt.Errorf("неверный формат шифротекста")
	}

	salt := envelope[:pbkdf2SaltLength]
	ciphertext := envelope[pbkdf2SaltLength:]

	key := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, pbkdf2KeyLength, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания GCM: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("шифротекст слишком короткий")
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка расшифровки: %w", err)
	}
	return plaintext, nil
}
