// abs/cache.go
package abs

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Vito0912/abs-opds/models"
)

// DefaultCacheTTL время жизни закэшированного списка элементов
const DefaultCacheTTL = time.Hour

// cacheEntry хранит сырой список вместе с моментом его получения
type cacheEntry struct {
	timestamp time.Time
	data      *Listing
}

// ItemsCache кэш сырых списков элементов по идентификатору библиотеки.
// Запись заменяется целиком и никогда не дополняется. Кэш общий для всех
// пользователей: содержимое библиотеки от пользователя не зависит.
type ItemsCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewItemsCache создает кэш с указанным TTL
func NewItemsCache(ttl time.Duration) *ItemsCache {
	return &ItemsCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get возвращает список, если запись еще не устарела
func (c *ItemsCache) Get(libraryID string) (*Listing, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[libraryID]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.timestamp) >= c.ttl {
		return nil, false
	}
	return entry.data, true
}

// Put сохраняет список со свежей меткой времени
func (c *ItemsCache) Put(libraryID string, data *Listing) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[libraryID] = cacheEntry{timestamp: c.now(), data: data}
}

// Invalidate удаляет запись из кэша
func (c *ItemsCache) Invalidate(libraryID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, libraryID)
}

// Catalog объединяет клиент API и кэш списков элементов
type Catalog struct {
	client *Client
	cache  *ItemsCache
	debug  bool
}

// NewCatalog создает каталог поверх клиента с кэшем по умолчанию
func NewCatalog(client *Client) *Catalog {
	return &Catalog{
		client: client,
		cache:  NewItemsCache(DefaultCacheTTL),
		debug:  client.debug,
	}
}

// Client возвращает клиент API каталога
func (cat *Catalog) Client() *Client {
	return cat.client
}

// Items возвращает список элементов библиотеки из кэша или с сервера.
// Одновременные промахи по одному ключу могут оба сходить на сервер;
// чтение идемпотентно, побеждает последняя запись.
func (cat *Catalog) Items(ctx context.Context, libraryID string, user *models.User) (*Listing, error) {
	if listing, ok := cat.cache.Get(libraryID); ok {
		if cat.debug {
			log.Printf("Список элементов библиотеки %s взят из кэша", libraryID)
		}
		return listing, nil
	}

	listing, err := cat.client.Items(ctx, libraryID, user)
	if err != nil {
		return nil, err
	}
	cat.cache.Put(libraryID, listing)
	return listing, nil
}
