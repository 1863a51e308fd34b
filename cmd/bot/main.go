package main

import (
	"context"
	"net/http"
	"os"

	"kinobot/internal/config"
	"kinobot/internal/container"
	"kinobot/internal/handlers"
	"kinobot/internal/logger"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

func main() {
	dotenvErr := godotenv.Load(".env.local")

	logger.Init(config.GetEnv("LOG_LEVEL", "info"))
	log := logger.Get()

	if dotenvErr != nil {
		log.Info("No .env file found, using system environment variables")
	}

	botToken := os.Getenv("BOT_TOKEN")
	if botToken == "" {
		log.Fatal("BOT_TOKEN is required. Set it in .env file or as environment variable")
	}
	if _, apiKey := config.KinopoiskConfig(); apiKey == "" {
		log.Fatal("KINOPOISK_API_KEY is required. Get one at https://kinopoisk.dev/")
	}

	ctx := context.Background()

	c, err := container.New(ctx, botToken)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize dependencies")
	}
	defer c.Close()

	if err := c.Telegram.SetBotCommands(ctx); err != nil {
		log.WithError(err).Warn("Failed to set bot command menu")
	}

	router := mux.NewRouter()
	router.HandleFunc("/webhook", handlers.WebhookHandler(c)).Methods(http.MethodPost)
	router.HandleFunc("/healthz", handlers.HealthHandler()).Methods(http.MethodGet)

	port := config.GetEnv("PORT", "8080")
	log.Infof("Bot starting on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, router))
}
