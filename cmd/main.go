package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"leaf-doctor/config"
	telegram "leaf-doctor/internal/api"
	"leaf-doctor/internal/api/rest"
	"leaf-doctor/internal/container"
	"leaf-doctor/internal/domain/port"
	"leaf-doctor/internal/infrastructure/classifier"
	"leaf-doctor/internal/infrastructure/storage"
	"leaf-doctor/internal/infrastructure/vision"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Реестр моделей: болезни грузятся лениво, шлюз листа сразу при старте
	registry := classifier.NewRegistry(cfg.ModelDir, cfg.Crops, cfg.OnnxRuntimeLib)
	defer registry.Close()

	learned, err := registry.LearnedGate()
	if err != nil {
		log.Fatalf("Failed to load leaf gate: %v", err)
	}
	if learned == nil {
		log.Printf("Learned leaf gate not found in %s, using rule-based gate only", cfg.ModelDir)
	}

	var history port.DiagnosisHistory
	if cfg.HistoryDB != "" {
		store, err := storage.NewStore(cfg.HistoryDB)
		if err != nil {
			log.Fatalf("Failed to open history: %v", err)
		}
		defer store.Close()
		history = store.Diagnoses()
		log.Printf("Diagnosis history: %s", cfg.HistoryDB)
	}

	// Собираем сервисы приложения
	appContainer := container.New(container.Deps{
		Users:       storage.NewMemoryUserRepository(),
		Models:      registry,
		Decoder:     vision.NewDecoder(),
		Detector:    vision.NewLeafDetector(cfg.Vision),
		Extractor:   vision.NewFeatureExtractor(cfg.Vision.Descriptor),
		Learned:     learned,
		History:     history,
		Highlighter: vision.NewHighlighter(),
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           rest.NewHandler(appContainer.DiagnosisService).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s (crops: %v)", cfg.HTTPAddr, cfg.Crops)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// бот дожидается перед закрытием реестра и базы
	var wg sync.WaitGroup
	if cfg.TelegramToken != "" {
		// Создаём бота
		bot, err := telegram.NewBot(cfg.TelegramToken, appContainer)
		if err != nil {
			log.Fatalf("Failed to create bot: %v", err)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Println("Bot is running...")
			if err := bot.Run(ctx); err != nil {
				log.Printf("Bot error: %v", err)
			}
		}()
	} else {
		log.Println("TELEGRAM_TOKEN is empty, bot disabled")
	}

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}
	wg.Wait()
}
