package handlers

import (
	"context"
	"net/http"
	"time"

	"kinobot/internal/bot"
	"kinobot/internal/container"
	"kinobot/internal/services"
)

// WebhookHandler turns Telegram webhook requests into bot updates. Each
// update runs in its own goroutine with a bounded context, so one user's
// hung catalog fetch never delays anyone else; Telegram gets its 200
// immediately either way.
func WebhookHandler(c *container.Container) http.HandlerFunc {
	updateHandler := bot.NewHandler(c.Catalog, c.Favorites, c.Telegram, c.Logger, c.WinkURL)

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		update, err := services.ParseTelegramRequest(r)
		if err != nil {
			c.Logger.WithError(err).Error("Error parsing request")
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

		go func() {
			defer cancel()
			defer func() {
				if rec := recover(); rec != nil {
					c.Logger.WithField("panic", rec).Error("Recovered from panic in update handler")
				}
			}()
			updateHandler.ProcessUpdate(ctx, update)
		}()

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}
}

// HealthHandler reports process liveness for the container orchestrator.
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}
}
