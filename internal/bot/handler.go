package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"math/rand/v2"
	"strings"
	"unicode/utf8"

	"kinobot/internal/action"
	"kinobot/internal/models"
	"kinobot/internal/services"

	"github.com/sirupsen/logrus"
)

const (
	searchLimit      = 5
	minQueryRunes    = 2
	pickWindow       = 10
	randomPageSpan   = 5
	favoritesDisplay = 10
)

const tryAgainLater = "❌ Couldn't reach the catalog. Please try again later."

// Gateway is the slice of the catalog client the handler needs.
type Gateway interface {
	MovieByID(ctx context.Context, id int64) (*models.Movie, error)
	Page(ctx context.Context, req services.PageRequest) ([]models.Movie, error)
	Search(ctx context.Context, query string, limit int) ([]models.Movie, error)
}

// Favorites is the store contract the handler issues commands against. The
// handler never mutates stored rows itself.
type Favorites interface {
	Add(ctx context.Context, userID int64, movie *models.Movie) error
	Remove(ctx context.Context, userID, movieID int64) error
	List(ctx context.Context, userID int64, limit int) ([]models.FavoriteEntry, error)
	Contains(ctx context.Context, userID, movieID int64) (bool, error)
	Count(ctx context.Context, userID int64) int
}

// Sender is the chat transport contract.
type Sender interface {
	SendMessage(ctx context.Context, chatId int64, text string, keyboard *models.InlineKeyboardMarkup) error
	SendPhoto(ctx context.Context, chatId int64, photoURL, caption string, keyboard *models.InlineKeyboardMarkup) error
	AnswerCallback(ctx context.Context, callbackQueryId, text string, alert bool) error
}

// Handler is the menu/session state machine. It is stateless between turns:
// every decision is reconstructed from the incoming action token plus the
// favorites store, so overlapping requests from one user cannot corrupt any
// server-side session.
type Handler struct {
	gateway   Gateway
	favorites Favorites
	sender    Sender
	logger    *logrus.Logger
	winkURL   string
}

func NewHandler(gateway Gateway, favorites Favorites, sender Sender, logger *logrus.Logger, winkURL string) *Handler {
	return &Handler{
		gateway:   gateway,
		favorites: favorites,
		sender:    sender,
		logger:    logger,
		winkURL:   winkURL,
	}
}

// ProcessUpdate routes one incoming update. Button taps arrive as callback
// queries; plain text is a search unless it is a slash command.
func (h *Handler) ProcessUpdate(ctx context.Context, update *models.Update) {
	switch {
	case update.CallbackQuery != nil:
		h.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.Text != "":
		h.handleMessage(ctx, update.Message)
	}
}

func (h *Handler) handleMessage(ctx context.Context, msg *models.Message) {
	text := strings.TrimSpace(msg.Text)
	chatID := msg.Chat.Id
	userID := msg.From.Id

	if strings.HasPrefix(text, "/") {
		switch strings.Fields(text)[0] {
		case "/start":
			h.sendMenu(ctx, chatID, userID)
		case "/favorites":
			h.sendFavorites(ctx, chatID, userID)
		case "/help":
			h.sendMessage(ctx, chatID,
				"Use the menu buttons to browse, or just send a movie or series title to search.", nil)
		default:
			h.sendMessage(ctx, chatID, "Unknown command. Use /start to open the menu.", nil)
		}
		return
	}

	h.handleSearch(ctx, chatID, userID, text)
}

func (h *Handler) handleCallback(ctx context.Context, q *models.CallbackQuery) {
	if q.Message == nil {
		return
	}
	chatID := q.Message.Chat.Id
	userID := q.From.Id

	act, err := action.Parse(q.Data)
	if err != nil {
		h.logger.WithError(err).WithField("data", q.Data).Warn("Rejected callback token")
		h.answerCallback(ctx, q.Id, "Unknown action", true)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"verb":    act.Verb,
	}).Info("Processing action")

	// The toggle flow answers the query itself with the operation outcome.
	if act.Verb != action.VerbToggleFav {
		h.answerCallback(ctx, q.Id, "", false)
	}

	switch act.Verb {
	case action.VerbMenu:
		h.sendMenu(ctx, chatID, userID)

	case action.VerbPopular:
		h.browseCandidate(ctx, chatID, userID, act,
			services.PageRequest{Kind: act.Kind, Page: 1}, pickWindow)

	case action.VerbTop:
		h.browseCandidate(ctx, chatID, userID, act,
			services.PageRequest{Kind: act.Kind, Page: 1, MinRating: services.TopMinRating}, pickWindow)

	case action.VerbGenre:
		query, ok := action.GenreQuery(act.Genre)
		if !ok {
			h.sendMessage(ctx, chatID, tryAgainLater, nil)
			return
		}
		h.browseCandidate(ctx, chatID, userID, act,
			services.PageRequest{Kind: act.Kind, Page: 1, Genre: query}, pickWindow)

	case action.VerbRandom:
		// A random page widens the pool beyond the first page of the chart;
		// the pick then spans the whole fetched page.
		page := rand.IntN(randomPageSpan) + 1
		h.browseCandidate(ctx, chatID, userID, act,
			services.PageRequest{Kind: act.Kind, Page: page}, 0)

	case action.VerbGenres:
		prompt := "🎭 Pick a movie genre:"
		if act.Kind == models.KindSeries {
			prompt = "🎭 Pick a series genre:"
		}
		h.sendMessage(ctx, chatID, prompt, genrePickerKeyboard(act.Kind))

	case action.VerbSearch:
		h.sendMessage(ctx, chatID,
			"🔍 <b>Movie and series search</b>\n\nSend me a title and I will look it up!", nil)

	case action.VerbFavorites:
		h.sendFavorites(ctx, chatID, userID)

	case action.VerbView:
		movie, err := h.gateway.MovieByID(ctx, act.MovieID)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				h.sendMessage(ctx, chatID, "❌ This movie is no longer in the catalog.", nil)
				return
			}
			h.logger.WithError(err).WithField("movie_id", act.MovieID).Error("Failed to load catalog entry")
			h.sendMessage(ctx, chatID, tryAgainLater, nil)
			return
		}
		h.renderCandidate(ctx, chatID, userID, movie, nil)

	case action.VerbToggleFav:
		h.toggleFavorite(ctx, q, chatID, userID, act.MovieID)
	}
}

// browseCandidate fetches one catalog page and renders a uniformly random
// pick from its head. A window of zero means the whole page is eligible.
// The triggering action is replayed by the "show another" button.
func (h *Handler) browseCandidate(ctx context.Context, chatID, userID int64, retry action.Action, req services.PageRequest, window int) {
	movies, err := h.gateway.Page(ctx, req)
	if err != nil {
		h.logger.WithError(err).WithField("kind", req.Kind).Error("Failed to fetch catalog page")
		h.sendMessage(ctx, chatID, tryAgainLater, nil)
		return
	}
	if len(movies) == 0 {
		h.sendMessage(ctx, chatID, tryAgainLater, nil)
		return
	}

	if window > 0 && len(movies) > window {
		movies = movies[:window]
	}
	movie := movies[rand.IntN(len(movies))]

	h.renderCandidate(ctx, chatID, userID, &movie, &retry)
}

func (h *Handler) handleSearch(ctx context.Context, chatID, userID int64, query string) {
	if utf8.RuneCountInString(query) < minQueryRunes {
		h.sendMessage(ctx, chatID, "❌ Query too short. Please enter at least 2 characters.", nil)
		return
	}

	movies, err := h.gateway.Search(ctx, query, searchLimit)
	if err != nil {
		h.logger.WithError(err).WithField("query", query).Error("Search failed")
		h.sendMessage(ctx, chatID, tryAgainLater, nil)
		return
	}
	if len(movies) > searchLimit {
		movies = movies[:searchLimit]
	}

	switch len(movies) {
	case 0:
		h.sendMessage(ctx, chatID,
			fmt.Sprintf("❌ Nothing found for \"%s\". Try another query.", html.EscapeString(query)), nil)
	case 1:
		h.renderCandidate(ctx, chatID, userID, &movies[0], nil)
	default:
		text, keyboard := searchResultList(movies)
		h.sendMessage(ctx, chatID, text, keyboard)
	}
}

// toggleFavorite flips the saved state of one entry and re-renders the
// candidate from the store's post-operation truth. A failed write surfaces
// as an alert; the button never claims a state the store does not hold.
func (h *Handler) toggleFavorite(ctx context.Context, q *models.CallbackQuery, chatID, userID, movieID int64) {
	movie, err := h.gateway.MovieByID(ctx, movieID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			h.answerCallback(ctx, q.Id, "❌ Movie not found", true)
		} else {
			h.logger.WithError(err).WithField("movie_id", movieID).Error("Failed to refresh catalog entry")
			h.answerCallback(ctx, q.Id, tryAgainLater, true)
		}
		return
	}

	saved, err := h.favorites.Contains(ctx, userID, movieID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to check favorite state")
		h.answerCallback(ctx, q.Id, "❌ Favorites are unavailable right now", true)
		return
	}

	var toast string
	if saved {
		err = h.favorites.Remove(ctx, userID, movieID)
		toast = "❌ Removed from favorites"
	} else {
		err = h.favorites.Add(ctx, userID, movie)
		toast = "✅ Added to favorites!"
	}
	if err != nil {
		h.answerCallback(ctx, q.Id, "❌ Could not update favorites", true)
	} else {
		h.answerCallback(ctx, q.Id, toast, false)
	}

	h.renderCandidate(ctx, chatID, userID, movie, nil)
}

func (h *Handler) sendMenu(ctx context.Context, chatID, userID int64) {
	count := h.favorites.Count(ctx, userID)
	h.sendMessage(ctx, chatID, menuText(count), menuKeyboard())
}

func (h *Handler) sendFavorites(ctx context.Context, chatID, userID int64) {
	entries, err := h.favorites.List(ctx, userID, favoritesDisplay)
	if err != nil {
		h.sendMessage(ctx, chatID, "❌ Favorites are unavailable right now. Please try again later.", nil)
		return
	}

	if len(entries) == 0 {
		h.sendMessage(ctx, chatID,
			"⭐ <b>Favorites is empty</b>\n\nSave movies by tapping \"⭐ Add to favorites\" under any of them.", nil)
		return
	}

	// Count degrades to zero on a store hiccup; never let the header
	// contradict the entries we just listed.
	total := h.favorites.Count(ctx, userID)
	if total < len(entries) {
		total = len(entries)
	}

	text, keyboard := favoritesList(entries, total)
	h.sendMessage(ctx, chatID, text, keyboard)
}

// renderCandidate sends the full candidate view: caption, poster when one is
// usable, the streaming partner link, and the keyboard reflecting the
// store's current favorite state.
func (h *Handler) renderCandidate(ctx context.Context, chatID, userID int64, movie *models.Movie, retry *action.Action) {
	caption, posterURL := services.MovieCaption(movie)

	winkURL := services.WinkSearchURL(h.winkURL, movie.Title())
	if wink := services.WinkCaption(movie.Title(), winkURL); wink != "" {
		caption += "\n\n" + wink
	}

	saved, err := h.favorites.Contains(ctx, userID, movie.Id)
	if err != nil {
		h.logger.WithError(err).Error("Failed to check favorite state")
		saved = false
	}
	keyboard := candidateKeyboard(movie.Id, saved, retry)

	if posterURL != "" {
		err := h.sender.SendPhoto(ctx, chatID, posterURL, caption, keyboard)
		if err == nil {
			return
		}
		h.logger.WithError(err).WithField("movie_id", movie.Id).Warn("Failed to send poster, falling back to text")
	}
	h.sendMessage(ctx, chatID, caption, keyboard)
}

func (h *Handler) sendMessage(ctx context.Context, chatID int64, text string, keyboard *models.InlineKeyboardMarkup) {
	if err := h.sender.SendMessage(ctx, chatID, text, keyboard); err != nil {
		h.logger.WithError(err).Error("Failed to send message")
	}
}

func (h *Handler) answerCallback(ctx context.Context, callbackID, text string, alert bool) {
	if err := h.sender.AnswerCallback(ctx, callbackID, text, alert); err != nil {
		h.logger.WithError(err).Error("Failed to answer callback query")
	}
}
