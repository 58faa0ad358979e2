package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/xaenox/taskchat/internal/auth"
	"github.com/xaenox/taskchat/internal/chat"
	"github.com/xaenox/taskchat/internal/classifier"
	"github.com/xaenox/taskchat/internal/server"
	"github.com/xaenox/taskchat/internal/storage"
	"github.com/xaenox/taskchat/internal/telegram"
	"github.com/xaenox/taskchat/pkg/config"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", "config.yaml"))
	}

	// Initialize storage
	var store storage.Storage
	if cfg.Database.UseInMemory {
		logger.Info("Using in-memory storage")
		store = storage.NewMemoryStorage()
	} else {
		logger.Info("Using PostgreSQL storage")
		store, err = storage.NewPostgresStorage(storage.DatabaseConfig{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		})
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
	}
	defer store.Close()

	// Initialize the intent classifier
	var clf classifier.Classifier
	if cfg.Classifier.Engine == "openai" && cfg.OpenAI.APIKey != "" {
		logger.Info("Using GPT classifier", zap.String("model", cfg.OpenAI.Model))
		clf = classifier.NewGPTClassifier(
			cfg.OpenAI.APIKey,
			cfg.OpenAI.Model,
			cfg.OpenAI.MaxTokens,
			cfg.OpenAI.Temperature,
			store,
			logger,
		)
	} else {
		logger.Info("Using rule classifier")
		clf = classifier.NewRuleClassifier(store, logger)
	}

	// Chat pipeline and HTTP server
	chatService := chat.NewService(store, clf, logger)
	jwt := auth.NewJWT(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)
	srv := server.New(store, jwt, chatService, cfg.Server.AllowedOrigins, logger)

	// Optional Telegram front end
	if cfg.Telegram.Token != "" {
		bot, err := telegram.New(cfg.Telegram.Token, store, chatService, logger)
		if err != nil {
			logger.Fatal("Failed to create Telegram bot", zap.Error(err))
		}
		go func() {
			if err := bot.Start(); err != nil {
				logger.Error("Telegram bot stopped", zap.Error(err))
			}
		}()
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Starting HTTP server", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		logger.Fatal("HTTP server error", zap.Error(err))
	}
}
