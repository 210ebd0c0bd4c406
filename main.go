// main.go
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Vito0912/abs-opds/abs"
	"github.com/Vito0912/abs-opds/auth"
	"github.com/Vito0912/abs-opds/config"
	"github.com/Vito0912/abs-opds/opds"
)

func main() {
	// Определяем путь к директории исполняемого файла
	exePath, err := os.Executable()
	if err != nil {
		log.Fatalf("Не удалось определить путь к исполняемому файлу: %v", err)
	}
	rootPath := filepath.Dir(exePath)
	log.Printf("Каталог приложения: %s", rootPath)

	// Настройка логирования в файл с ротацией
	logFilePath := filepath.Join(rootPath, "abs-opds.log")
	logFileOldPath := logFilePath + ".old"

	// Проверяем существование текущего лог-файла
	if _, err := os.Stat(logFilePath); err == nil {
		// Если файл существует, переименовываем его
		err = os.Rename(logFilePath, logFileOldPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Не удалось переименовать старый лог-файл: %v\n", err)
			// Продолжаем работу, даже если не удалось переименовать
		} else {
			log.Printf("Старый лог-файл переименован в %s", logFileOldPath)
		}
	} else if !os.IsNotExist(err) {
		// Если произошла другая ошибка, отличная от "файл не существует"
		fmt.Fprintf(os.Stderr, "Ошибка при проверке лог-файла: %v\n", err)
	}

	// Открываем новый лог-файл
	logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Не удалось открыть файл лога %s: %v\n", logFilePath, err)
		// Продолжаем работу, логи пойдут только в stdout
	} else {
		// Пишем и в stdout, и в файл
		multiWriter := io.MultiWriter(os.Stdout, logFile)
		log.SetOutput(multiWriter)
		log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)

		defer func() {
			if logFile != nil {
				logFile.Close()
			}
		}()
	}

	// Загружаем конфигурацию
	cfg, err := config.LoadConfig(filepath.Join(rootPath, "abs-opds.conf"))
	if err != nil {
		log.Printf("Ошибка загрузки конфигурации: %v", err)
		// Продолжаем с конфигом по умолчанию
		cfg = config.DefaultConfig()
	}

	// Валидируем конфигурацию
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Ошибка валидации конфигурации: %v", err)
	}

	log.Println("Используемая конфигурация:")
	log.Println(cfg.String())

	// Создаем контекст с отменой для управления жизненным циклом приложения
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Собираем клиент Audiobookshelf, каталог с кэшем и мост аутентификации
	client := abs.NewClient(cfg.ServerURL, cfg.Debug)
	catalog := abs.NewCatalog(client)
	bridge := auth.NewBridge(cfg.Users(), client, cfg.Debug)
	handler := opds.NewHandler(cfg, catalog, bridge)

	mux := http.NewServeMux()
	handler.Register(mux)

	// --- Graceful Shutdown ---
	// Отдельная горутина для обработки сигналов ОС (например, Ctrl+C)
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		sig := <-sigChan
		if cfg.Debug {
			log.Printf("Получен сигнал завершения: %v", sig)
		}

		// Отменяем основной контекст, сигнализируя всем зависимым горутинам
		cancel()

		if cfg.Debug {
			log.Println("Завершение работы приложения...")
		}
	}()

	if cfg.Debug {
		log.Printf("OPDS шлюз запущен на порту :%d", cfg.Port)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: mux,
	}

	// Останавливаем сервер при отмене контекста
	go func() {
		<-ctx.Done()
		if cfg.Debug {
			log.Println("Контекст отменен, останавливаем HTTP-сервер...")
		}
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			if cfg.Debug {
				log.Printf("Ошибка при остановке HTTP-сервера: %v", err)
			}
			// Принудительное завершение, если Shutdown не помог
			server.Close()
		}
	}()

	// Блокирует выполнение до отмены контекста или ошибки сервера
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		if cfg.Debug {
			log.Printf("Ошибка HTTP-сервера: %v", err)
		}
		cancel()
	}

	<-ctx.Done()
	log.Println("Приложение завершено.")
}
