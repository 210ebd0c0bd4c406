// opds/proxy.go
package opds

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

const proxyTimeout = 15 * time.Second

// proxyClient не следует редиректам: ответ сервера, включая Location,
// отдается клиенту как есть.
var proxyClient = &http.Client{
	Timeout: proxyTimeout,
	CheckRedirect: func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	},
}

// ProxyHandler проксирует байтовые потоки (скачивания и обложки) на сервер
// Audiobookshelf. Маршрут не требует Basic-учетных данных: доступ
// охраняется токеном, уже встроенным в проксируемую ссылку.
func (h *Handler) ProxyHandler(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.UseProxy {
		http.Error(w, "Проксирование отключено", http.StatusForbidden)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Метод не поддерживается", http.StatusMethodNotAllowed)
		return
	}

	target := h.cfg.ServerURL + strings.TrimPrefix(r.URL.Path, "/opds/proxy")
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target, nil)
	if err != nil {
		if h.cfg.Debug {
			log.Printf("Ошибка создания прокси-запроса %s: %v", target, err)
		}
		http.Error(w, "Ошибка проксирования", http.StatusBadGateway)
		return
	}

	// Диапазоны и согласование контента передаем серверу
	for _, header := range []string{"Range", "Accept", "Accept-Encoding", "If-Modified-Since", "If-None-Match"} {
		if value := r.Header.Get(header); value != "" {
			req.Header.Set(header, value)
		}
	}

	proto := "http"
	if r.TLS != nil {
		proto = "https"
	}
	req.Header.Set("X-Forwarded-Proto", proto)
	req.Header.Set("X-Forwarded-Host", r.Host)

	resp, err := proxyClient.Do(req)
	if err != nil {
		if h.cfg.Debug {
			log.Printf("Ошибка прокси-запроса %s: %v", target, err)
		}
		http.Error(w, "Ошибка проксирования", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	for header, values := range resp.Header {
		for _, value := range values {
			w.Header().Add(header, value)
		}
	}

	body := io.Reader(resp.Body)
	if resp.Header.Get("Content-Type") == "" {
		// Сервер не сообщил тип, определяем по началу потока
		head := make([]byte, 3072)
		n, _ := io.ReadFull(resp.Body, head)
		head = head[:n]
		w.Header().Set("Content-Type", mimetype.Detect(head).String())
		body = io.MultiReader(bytes.NewReader(head), resp.Body)
	}

	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, body); err != nil && h.cfg.Debug {
		log.Printf("Ошибка передачи прокси-ответа %s: %v", target, err)
	}
}
