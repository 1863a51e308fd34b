package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"kinobot/internal/models"
	"kinobot/internal/services"

	"github.com/sirupsen/logrus"
)

type fakeGateway struct {
	movies      map[int64]*models.Movie
	page        []models.Movie
	pageErr     error
	pageReqs    []services.PageRequest
	search      []models.Movie
	searchErr   error
	searchCalls int
}

func (g *fakeGateway) MovieByID(ctx context.Context, id int64) (*models.Movie, error) {
	m, ok := g.movies[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	return m, nil
}

func (g *fakeGateway) Page(ctx context.Context, req services.PageRequest) ([]models.Movie, error) {
	g.pageReqs = append(g.pageReqs, req)
	return g.page, g.pageErr
}

func (g *fakeGateway) Search(ctx context.Context, query string, limit int) ([]models.Movie, error) {
	g.searchCalls++
	return g.search, g.searchErr
}

type fakeFavorites struct {
	entries    map[int64]models.FavoriteEntry
	order      []int64
	failWrites bool
	failCount  bool
}

func newFakeFavorites() *fakeFavorites {
	return &fakeFavorites{entries: make(map[int64]models.FavoriteEntry)}
}

func (f *fakeFavorites) Add(ctx context.Context, userID int64, movie *models.Movie) error {
	if f.failWrites {
		return errors.New("storage down")
	}
	if _, ok := f.entries[movie.Id]; !ok {
		f.order = append(f.order, movie.Id)
	}
	f.entries[movie.Id] = models.FavoriteEntry{
		UserID:    userID,
		MovieID:   movie.Id,
		Title:     movie.Title(),
		MediaType: movie.Kind(),
		Snapshot:  *movie,
	}
	return nil
}

func (f *fakeFavorites) Remove(ctx context.Context, userID, movieID int64) error {
	if f.failWrites {
		return errors.New("storage down")
	}
	delete(f.entries, movieID)
	return nil
}

func (f *fakeFavorites) List(ctx context.Context, userID int64, limit int) ([]models.FavoriteEntry, error) {
	var out []models.FavoriteEntry
	for i := len(f.order) - 1; i >= 0 && len(out) < limit; i-- {
		if e, ok := f.entries[f.order[i]]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeFavorites) Contains(ctx context.Context, userID, movieID int64) (bool, error) {
	_, ok := f.entries[movieID]
	return ok, nil
}

func (f *fakeFavorites) Count(ctx context.Context, userID int64) int {
	// the real service reports zero when the storage count fails
	if f.failCount {
		return 0
	}
	return len(f.entries)
}

type sentMessage struct {
	kind     string // "message" | "photo"
	chatID   int64
	text     string
	photoURL string
	keyboard *models.InlineKeyboardMarkup
}

type callbackAnswer struct {
	text  string
	alert bool
}

type fakeSender struct {
	sent     []sentMessage
	answers  []callbackAnswer
	photoErr error
}

func (s *fakeSender) SendMessage(ctx context.Context, chatID int64, text string, kb *models.InlineKeyboardMarkup) error {
	s.sent = append(s.sent, sentMessage{kind: "message", chatID: chatID, text: text, keyboard: kb})
	return nil
}

func (s *fakeSender) SendPhoto(ctx context.Context, chatID int64, photoURL, caption string, kb *models.InlineKeyboardMarkup) error {
	if s.photoErr != nil {
		return s.photoErr
	}
	s.sent = append(s.sent, sentMessage{kind: "photo", chatID: chatID, text: caption, photoURL: photoURL, keyboard: kb})
	return nil
}

func (s *fakeSender) AnswerCallback(ctx context.Context, id, text string, alert bool) error {
	s.answers = append(s.answers, callbackAnswer{text: text, alert: alert})
	return nil
}

func (s *fakeSender) last(t *testing.T) sentMessage {
	t.Helper()
	if len(s.sent) == 0 {
		t.Fatal("nothing was sent")
	}
	return s.sent[len(s.sent)-1]
}

func keyboardTexts(kb *models.InlineKeyboardMarkup) []string {
	var out []string
	if kb == nil {
		return out
	}
	for _, row := range kb.InlineKeyboard {
		for _, btn := range row {
			out = append(out, btn.Text)
		}
	}
	return out
}

func hasButton(kb *models.InlineKeyboardMarkup, text string) bool {
	for _, btn := range keyboardTexts(kb) {
		if btn == text {
			return true
		}
	}
	return false
}

func newTestHandler(gateway *fakeGateway, favorites *fakeFavorites) (*Handler, *fakeSender) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	sender := &fakeSender{}
	return NewHandler(gateway, favorites, sender, log, "https://wink.rt.ru"), sender
}

func textUpdate(text string) *models.Update {
	return &models.Update{Message: &models.Message{
		Text: text,
		Chat: models.Chat{Id: 100},
		From: models.User{Id: 7},
	}}
}

func callbackUpdate(data string) *models.Update {
	return &models.Update{CallbackQuery: &models.CallbackQuery{
		Id:      "cb-1",
		Data:    data,
		From:    models.User{Id: 7},
		Message: &models.Message{MessageId: 5, Chat: models.Chat{Id: 100}},
	}}
}

func testMovie(id int64, name string) *models.Movie {
	return &models.Movie{Id: id, Name: name, Type: "movie", Year: 2001, Rating: models.Rating{Kp: 7.1}}
}

func TestSearchQueryTooShort(t *testing.T) {
	gateway := &fakeGateway{}
	handler, sender := newTestHandler(gateway, newFakeFavorites())

	handler.ProcessUpdate(context.Background(), textUpdate("a"))

	if gateway.searchCalls != 0 {
		t.Fatalf("short query must not hit the network, got %d calls", gateway.searchCalls)
	}
	if !strings.Contains(sender.last(t).text, "too short") {
		t.Fatalf("expected rejection message, got: %s", sender.last(t).text)
	}
}

func TestSearchNoResultsEchoesQuery(t *testing.T) {
	gateway := &fakeGateway{}
	handler, sender := newTestHandler(gateway, newFakeFavorites())

	handler.ProcessUpdate(context.Background(), textUpdate("Matrix"))

	if got := sender.last(t).text; !strings.Contains(got, `Nothing found for "Matrix"`) {
		t.Fatalf("expected not-found echo, got: %s", got)
	}
}

func TestSearchSingleResultRendersCandidate(t *testing.T) {
	gateway := &fakeGateway{search: []models.Movie{*testMovie(301, "The Matrix")}}
	handler, sender := newTestHandler(gateway, newFakeFavorites())

	handler.ProcessUpdate(context.Background(), textUpdate("Matrix"))

	last := sender.last(t)
	if !strings.Contains(last.text, "The Matrix") {
		t.Fatalf("expected candidate view, got: %s", last.text)
	}
	if !hasButton(last.keyboard, "⭐ Add to favorites") {
		t.Fatalf("expected favorite toggle, keyboard: %v", keyboardTexts(last.keyboard))
	}
	if hasButton(last.keyboard, "🔄 Show another") {
		t.Fatal("search result must not offer a retry affordance")
	}
}

func TestSearchMultipleResultsRendersList(t *testing.T) {
	gateway := &fakeGateway{search: []models.Movie{
		*testMovie(1, "Matrix"),
		*testMovie(2, "Matrix Reloaded"),
		*testMovie(3, "Matrix Revolutions"),
	}}
	handler, sender := newTestHandler(gateway, newFakeFavorites())

	handler.ProcessUpdate(context.Background(), textUpdate("Matrix"))

	last := sender.last(t)
	if !strings.Contains(last.text, "Found 3 results") {
		t.Fatalf("expected result count, got: %s", last.text)
	}
	// three selectable entries plus the menu row
	if got := len(last.keyboard.InlineKeyboard); got != 4 {
		t.Fatalf("expected 4 keyboard rows, got %d", got)
	}
	if last.keyboard.InlineKeyboard[0][0].CallbackData != "view:movie:1" {
		t.Fatalf("unexpected first button token: %s", last.keyboard.InlineKeyboard[0][0].CallbackData)
	}
}

func TestToggleFavoriteRoundTrip(t *testing.T) {
	gateway := &fakeGateway{movies: map[int64]*models.Movie{301: testMovie(301, "The Matrix")}}
	favorites := newFakeFavorites()
	handler, sender := newTestHandler(gateway, favorites)
	ctx := context.Background()

	handler.ProcessUpdate(ctx, callbackUpdate("fav:301"))

	if saved, _ := favorites.Contains(ctx, 7, 301); !saved {
		t.Fatal("expected entry saved after first toggle")
	}
	if !hasButton(sender.last(t).keyboard, "❌ Remove from favorites") {
		t.Fatalf("expected remove affordance, keyboard: %v", keyboardTexts(sender.last(t).keyboard))
	}
	if got := sender.answers[len(sender.answers)-1]; !strings.Contains(got.text, "Added") || got.alert {
		t.Fatalf("unexpected toast: %+v", got)
	}

	handler.ProcessUpdate(ctx, callbackUpdate("fav:301"))

	if saved, _ := favorites.Contains(ctx, 7, 301); saved {
		t.Fatal("expected entry removed after second toggle")
	}
	if !hasButton(sender.last(t).keyboard, "⭐ Add to favorites") {
		t.Fatalf("expected add affordance back, keyboard: %v", keyboardTexts(sender.last(t).keyboard))
	}
}

func TestToggleFavoriteStoreFailureSurfacesToast(t *testing.T) {
	gateway := &fakeGateway{movies: map[int64]*models.Movie{301: testMovie(301, "The Matrix")}}
	favorites := newFakeFavorites()
	favorites.failWrites = true
	handler, sender := newTestHandler(gateway, favorites)

	handler.ProcessUpdate(context.Background(), callbackUpdate("fav:301"))

	answer := sender.answers[len(sender.answers)-1]
	if !strings.Contains(answer.text, "Could not update favorites") || !answer.alert {
		t.Fatalf("expected alert toast, got %+v", answer)
	}
	// re-render still happens and shows the store's truth: not saved
	if !hasButton(sender.last(t).keyboard, "⭐ Add to favorites") {
		t.Fatalf("button must reflect store truth, keyboard: %v", keyboardTexts(sender.last(t).keyboard))
	}
}

func TestToggleFavoriteUnknownMovie(t *testing.T) {
	gateway := &fakeGateway{movies: map[int64]*models.Movie{}}
	handler, sender := newTestHandler(gateway, newFakeFavorites())

	handler.ProcessUpdate(context.Background(), callbackUpdate("fav:999"))

	answer := sender.answers[len(sender.answers)-1]
	if !strings.Contains(answer.text, "not found") || !answer.alert {
		t.Fatalf("expected not-found alert, got %+v", answer)
	}
	if len(sender.sent) != 0 {
		t.Fatal("nothing should be rendered for an unknown movie")
	}
}

func TestViewUnknownMovieIsNotATransientOutage(t *testing.T) {
	gateway := &fakeGateway{movies: map[int64]*models.Movie{}}
	handler, sender := newTestHandler(gateway, newFakeFavorites())

	handler.ProcessUpdate(context.Background(), callbackUpdate("view:movie:999"))

	last := sender.last(t)
	if !strings.Contains(last.text, "no longer in the catalog") {
		t.Fatalf("expected a not-found message, got: %s", last.text)
	}
	if strings.Contains(last.text, "try again later") {
		t.Fatal("a vanished entry must not read as a transient outage")
	}
}

func TestBrowseEmptyPageLeavesStoreUntouched(t *testing.T) {
	gateway := &fakeGateway{}
	favorites := newFakeFavorites()
	handler, sender := newTestHandler(gateway, favorites)

	handler.ProcessUpdate(context.Background(), callbackUpdate("popular:movie"))

	if !strings.Contains(sender.last(t).text, "try again later") {
		t.Fatalf("expected try-again message, got: %s", sender.last(t).text)
	}
	if len(favorites.entries) != 0 {
		t.Fatal("store must not change on a failed browse")
	}
}

func TestBrowsePicksFromPageHead(t *testing.T) {
	var page []models.Movie
	for i := 1; i <= 20; i++ {
		page = append(page, *testMovie(int64(i), fmt.Sprintf("Movie %d", i)))
	}
	gateway := &fakeGateway{page: page}
	handler, sender := newTestHandler(gateway, newFakeFavorites())

	for range 20 {
		handler.ProcessUpdate(context.Background(), callbackUpdate("popular:movie"))

		last := sender.last(t)
		picked := false
		for i := 1; i <= 10; i++ {
			if strings.Contains(last.text, fmt.Sprintf("<b>Movie %d</b>", i)) {
				picked = true
			}
		}
		if !picked {
			t.Fatalf("candidate not from the first 10 entries:\n%s", last.text)
		}
		if !hasButton(last.keyboard, "🔄 Show another") {
			t.Fatal("browse candidate must offer a retry affordance")
		}
	}
}

func TestRandomBrowseUsesRandomPage(t *testing.T) {
	gateway := &fakeGateway{page: []models.Movie{*testMovie(1, "Only One")}}
	handler, _ := newTestHandler(gateway, newFakeFavorites())

	for range 30 {
		handler.ProcessUpdate(context.Background(), callbackUpdate("random:movie"))
	}

	seen := map[int]bool{}
	for _, req := range gateway.pageReqs {
		if req.Page < 1 || req.Page > 5 {
			t.Fatalf("random page out of range: %d", req.Page)
		}
		seen[req.Page] = true
	}
	if len(seen) < 2 {
		t.Fatalf("expected random pages to vary, saw %v", seen)
	}
}

func TestGenreBrowseSendsUpstreamGenreValue(t *testing.T) {
	gateway := &fakeGateway{page: []models.Movie{*testMovie(1, "Drama Film")}}
	handler, _ := newTestHandler(gateway, newFakeFavorites())

	handler.ProcessUpdate(context.Background(), callbackUpdate("genre:movie:drama"))

	if len(gateway.pageReqs) != 1 {
		t.Fatalf("expected one page fetch, got %d", len(gateway.pageReqs))
	}
	if got := gateway.pageReqs[0].Genre; got != "драма" {
		t.Fatalf("expected upstream genre value, got %q", got)
	}
}

func TestMalformedCallbackRejected(t *testing.T) {
	gateway := &fakeGateway{}
	handler, sender := newTestHandler(gateway, newFakeFavorites())

	handler.ProcessUpdate(context.Background(), callbackUpdate("genre:movie:jazz"))

	answer := sender.answers[len(sender.answers)-1]
	if !strings.Contains(answer.text, "Unknown action") || !answer.alert {
		t.Fatalf("expected rejection alert, got %+v", answer)
	}
	if gateway.searchCalls != 0 || len(gateway.pageReqs) != 0 {
		t.Fatal("malformed token must be rejected before any fetch")
	}
}

func TestFavoritesListShowsSavedEntries(t *testing.T) {
	favorites := newFakeFavorites()
	ctx := context.Background()
	favorites.Add(ctx, 7, testMovie(1, "First"))
	favorites.Add(ctx, 7, testMovie(2, "Second"))
	favorites.Add(ctx, 7, testMovie(3, "Third"))

	handler, sender := newTestHandler(&fakeGateway{}, favorites)
	handler.ProcessUpdate(ctx, callbackUpdate("favorites"))

	last := sender.last(t)
	if !strings.Contains(last.text, "(3 saved)") {
		t.Fatalf("expected count in header, got: %s", last.text)
	}
	// newest first
	if !strings.HasPrefix(last.keyboard.InlineKeyboard[0][0].Text, "1. Third") {
		t.Fatalf("expected newest entry first, got %q", last.keyboard.InlineKeyboard[0][0].Text)
	}
	if got := len(last.keyboard.InlineKeyboard); got != 4 {
		t.Fatalf("expected 3 entries + menu row, got %d rows", got)
	}
}

func TestFavoritesListCapsAtTenEntries(t *testing.T) {
	favorites := newFakeFavorites()
	ctx := context.Background()
	for i := 1; i <= 14; i++ {
		favorites.Add(ctx, 7, testMovie(int64(i), fmt.Sprintf("Movie %d", i)))
	}

	handler, sender := newTestHandler(&fakeGateway{}, favorites)
	handler.ProcessUpdate(ctx, callbackUpdate("favorites"))

	last := sender.last(t)
	if !strings.Contains(last.text, "(14 saved)") {
		t.Fatalf("expected full count in header, got: %s", last.text)
	}
	if got := len(last.keyboard.InlineKeyboard); got != 11 {
		t.Fatalf("expected 10 entries + menu row, got %d rows", got)
	}
}

func TestFavoritesHeaderNeverContradictsEntries(t *testing.T) {
	favorites := newFakeFavorites()
	ctx := context.Background()
	favorites.Add(ctx, 7, testMovie(1, "First"))
	favorites.Add(ctx, 7, testMovie(2, "Second"))
	favorites.Add(ctx, 7, testMovie(3, "Third"))
	favorites.failCount = true

	handler, sender := newTestHandler(&fakeGateway{}, favorites)
	handler.ProcessUpdate(ctx, callbackUpdate("favorites"))

	last := sender.last(t)
	if strings.Contains(last.text, "(0 saved)") {
		t.Fatalf("header must not claim zero above a non-empty list:\n%s", last.text)
	}
	if !strings.Contains(last.text, "(3 saved)") {
		t.Fatalf("expected header derived from the listed entries, got:\n%s", last.text)
	}
}

func TestFavoritesEmptyState(t *testing.T) {
	handler, sender := newTestHandler(&fakeGateway{}, newFakeFavorites())

	handler.ProcessUpdate(context.Background(), callbackUpdate("favorites"))

	if !strings.Contains(sender.last(t).text, "Favorites is empty") {
		t.Fatalf("expected empty state, got: %s", sender.last(t).text)
	}
}

func TestStartMenuShowsFavoritesCount(t *testing.T) {
	favorites := newFakeFavorites()
	ctx := context.Background()
	favorites.Add(ctx, 7, testMovie(1, "First"))

	handler, sender := newTestHandler(&fakeGateway{}, favorites)
	handler.ProcessUpdate(ctx, textUpdate("/start"))

	last := sender.last(t)
	if !strings.Contains(last.text, "Favorites saved: 1") {
		t.Fatalf("expected count in menu, got: %s", last.text)
	}
	if !hasButton(last.keyboard, "🎲 Random series") {
		t.Fatalf("expected full menu, keyboard: %v", keyboardTexts(last.keyboard))
	}
}

func TestCandidatePosterFallsBackToText(t *testing.T) {
	movie := testMovie(301, "The Matrix")
	movie.Poster = &models.Poster{Url: "https://posters/301.jpg"}
	gateway := &fakeGateway{movies: map[int64]*models.Movie{301: movie}}
	handler, sender := newTestHandler(gateway, newFakeFavorites())
	sender.photoErr = errors.New("bad photo")

	handler.ProcessUpdate(context.Background(), callbackUpdate("view:movie:301"))

	last := sender.last(t)
	if last.kind != "message" {
		t.Fatalf("expected text fallback, got %s", last.kind)
	}
	if !strings.Contains(last.text, "The Matrix") {
		t.Fatalf("expected caption preserved, got: %s", last.text)
	}
}

func TestViewRendersPhotoWhenPosterUsable(t *testing.T) {
	movie := testMovie(301, "The Matrix")
	movie.Poster = &models.Poster{Url: "https://posters/301.jpg"}
	gateway := &fakeGateway{movies: map[int64]*models.Movie{301: movie}}
	handler, sender := newTestHandler(gateway, newFakeFavorites())

	handler.ProcessUpdate(context.Background(), callbackUpdate("view:movie:301"))

	last := sender.last(t)
	if last.kind != "photo" || last.photoURL != "https://posters/301.jpg" {
		t.Fatalf("expected poster render, got %+v", last)
	}
	if !strings.Contains(last.text, "wink.rt.ru/search?q=The+Matrix") {
		t.Fatalf("expected streaming partner link in caption:\n%s", last.text)
	}
}

func TestGenrePicker(t *testing.T) {
	handler, sender := newTestHandler(&fakeGateway{}, newFakeFavorites())

	handler.ProcessUpdate(context.Background(), callbackUpdate("genres:series"))

	last := sender.last(t)
	if !strings.Contains(last.text, "series genre") {
		t.Fatalf("expected series prompt, got: %s", last.text)
	}
	// 12 genres, two per row, plus the menu row
	if got := len(last.keyboard.InlineKeyboard); got != 7 {
		t.Fatalf("expected 7 rows, got %d", got)
	}
	if last.keyboard.InlineKeyboard[0][0].CallbackData != "genre:series:action" {
		t.Fatalf("unexpected genre token: %s", last.keyboard.InlineKeyboard[0][0].CallbackData)
	}
}
