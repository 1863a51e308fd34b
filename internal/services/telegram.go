package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"kinobot/internal/models"

	"github.com/sirupsen/logrus"
)

const telegramAPIURL = "https://api.telegram.org/bot"

// TelegramClient wraps the Telegram Bot HTTP API. It is constructed once at
// startup and passed to every handler; nothing here keeps per-chat state.
type TelegramClient struct {
	apiURL     string
	token      string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewTelegramClient(token string, logger *logrus.Logger) *TelegramClient {
	return &TelegramClient{
		apiURL:     telegramAPIURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// NewTelegramClientWithURL is used by tests to point the client at a stub
// server.
func NewTelegramClientWithURL(apiURL, token string, logger *logrus.Logger) *TelegramClient {
	c := NewTelegramClient(token, logger)
	c.apiURL = apiURL
	return c
}

// SendMessage sends an HTML-formatted text message to a Telegram chat,
// optionally including an inline keyboard for user interaction.
//
// Returns an error if marshaling the request, sending the HTTP request,
// or receiving a non-OK response from the Telegram API fails.
func (c *TelegramClient) SendMessage(ctx context.Context, chatId int64, text string, keyboard *models.InlineKeyboardMarkup) error {
	payload := models.TelegramResponse{
		ChatId:      chatId,
		Text:        text,
		ParseMode:   "HTML",
		ReplyMarkup: keyboard,
	}
	return c.call(ctx, "sendMessage", payload)
}

// SendPhoto sends a poster with an HTML caption. Callers fall back to
// SendMessage when the poster reference turns out to be unusable, because
// Telegram validates the photo URL server-side.
func (c *TelegramClient) SendPhoto(ctx context.Context, chatId int64, photoURL, caption string, keyboard *models.InlineKeyboardMarkup) error {
	payload := models.PhotoResponse{
		ChatId:      chatId,
		Photo:       photoURL,
		Caption:     caption,
		ParseMode:   "HTML",
		ReplyMarkup: keyboard,
	}
	return c.call(ctx, "sendPhoto", payload)
}

// AnswerCallback sends a response to a callback query triggered by a button
// in an inline keyboard. With alert set it shows a popup instead of a toast.
//
// Returns an error if marshaling the request, sending it, or getting
// a non-OK response from Telegram fails.
func (c *TelegramClient) AnswerCallback(ctx context.Context, callbackQueryId, text string, alert bool) error {
	payload := models.AnswerCallbackQuery{
		CallbackQueryId: callbackQueryId,
		Text:            text,
		ShowAlert:       alert,
	}
	return c.call(ctx, "answerCallbackQuery", payload)
}

// SetBotCommands sets the list of available commands for the bot.
//
// These commands appear in Telegram's command menu. Returns an error if
// marshaling or sending the request fails.
func (c *TelegramClient) SetBotCommands(ctx context.Context) error {
	commands := []models.BotCommandMenu{
		{Command: "start", Description: "🎬 Open the main menu"},
		{Command: "favorites", Description: "⭐ Show your favorites"},
		{Command: "help", Description: "❓ How to use the bot"},
	}

	payload := map[string]interface{}{
		"commands": commands,
	}
	return c.call(ctx, "setMyCommands", payload)
}

func (c *TelegramClient) call(ctx context.Context, method string, payload interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", method, err)
	}

	url := fmt.Sprintf("%s%s/%s", c.apiURL, c.token, method)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send %s request: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram %s API error (status %d)", method, resp.StatusCode)
	}

	return nil
}

// ParseTelegramRequest parses an incoming Telegram webhook HTTP request
// and returns the decoded Update object.
//
// Returns an error if decoding fails.
func ParseTelegramRequest(r *http.Request) (*models.Update, error) {
	var update models.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		return nil, err
	}
	return &update, nil
}
