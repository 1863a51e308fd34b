package bot

import (
	"fmt"
	"html"
	"strings"

	"kinobot/internal/action"
	"kinobot/internal/models"
)

func menuText(favoritesCount int) string {
	return fmt.Sprintf(`🎬 <b>Welcome to the movie and series finder!</b>

I will help you pick something to watch tonight 🌙
Data comes live from <b>Kinopoisk</b> with <b>Wink</b> links

💾 Favorites saved: %d

Pick what you are interested in:`, favoritesCount)
}

func menuKeyboard() *models.InlineKeyboardMarkup {
	row := func(text string, act action.Action) []models.InlineKeyboardButton {
		return []models.InlineKeyboardButton{{Text: text, CallbackData: act.Encode()}}
	}

	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			row("🎬 Popular movies", action.Action{Verb: action.VerbPopular, Kind: models.KindMovie}),
			row("📺 Popular series", action.Action{Verb: action.VerbPopular, Kind: models.KindSeries}),
			row("⭐ Top movies", action.Action{Verb: action.VerbTop, Kind: models.KindMovie}),
			row("⭐ Top series", action.Action{Verb: action.VerbTop, Kind: models.KindSeries}),
			row("🎭 Movies by genre", action.Action{Verb: action.VerbGenres, Kind: models.KindMovie}),
			row("🎭 Series by genre", action.Action{Verb: action.VerbGenres, Kind: models.KindSeries}),
			row("🎲 Random movie", action.Action{Verb: action.VerbRandom, Kind: models.KindMovie}),
			row("🎲 Random series", action.Action{Verb: action.VerbRandom, Kind: models.KindSeries}),
			row("⭐ Favorites", action.Action{Verb: action.VerbFavorites}),
			row("🔍 Search", action.Action{Verb: action.VerbSearch}),
		},
	}
}

func menuButton() []models.InlineKeyboardButton {
	return []models.InlineKeyboardButton{{
		Text:         "🏠 Main menu",
		CallbackData: action.Action{Verb: action.VerbMenu}.Encode(),
	}}
}

// genrePickerKeyboard lays the genre buttons out two per row, the way the
// picker reads best on a phone.
func genrePickerKeyboard(kind models.MediaKind) *models.InlineKeyboardMarkup {
	genres := action.Genres()

	var rows [][]models.InlineKeyboardButton
	for i := 0; i < len(genres); i += 2 {
		var row []models.InlineKeyboardButton
		for j := i; j < i+2 && j < len(genres); j++ {
			row = append(row, models.InlineKeyboardButton{
				Text:         genres[j].Label,
				CallbackData: action.Action{Verb: action.VerbGenre, Kind: kind, Genre: genres[j].Slug}.Encode(),
			})
		}
		rows = append(rows, row)
	}
	rows = append(rows, menuButton())

	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// candidateKeyboard builds the affordances under a rendered candidate: the
// favorite toggle reflecting the store's current truth, optionally a "show
// another" repeat of the same browse action, and the way back to the menu.
func candidateKeyboard(movieID int64, saved bool, retry *action.Action) *models.InlineKeyboardMarkup {
	favText := "⭐ Add to favorites"
	if saved {
		favText = "❌ Remove from favorites"
	}

	rows := [][]models.InlineKeyboardButton{
		{{Text: favText, CallbackData: action.Action{Verb: action.VerbToggleFav, MovieID: movieID}.Encode()}},
	}
	if retry != nil {
		rows = append(rows, []models.InlineKeyboardButton{{
			Text:         "🔄 Show another",
			CallbackData: retry.Encode(),
		}})
	}
	rows = append(rows, menuButton())

	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// searchResultList renders the multi-hit search view: a numbered summary
// plus one selectable button per hit.
func searchResultList(movies []models.Movie) (string, *models.InlineKeyboardMarkup) {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔍 <b>Found %d results</b>\n\n", len(movies)))

	var rows [][]models.InlineKeyboardButton
	for i, m := range movies {
		b.WriteString(fmt.Sprintf("%d. <b>%s</b>", i+1, html.EscapeString(m.Title())))
		if m.Year > 0 {
			b.WriteString(fmt.Sprintf(" (%d)", m.Year))
		}
		if m.Rating.Kp > 0 {
			b.WriteString(fmt.Sprintf(" ⭐ %.1f", m.Rating.Kp))
		}
		b.WriteString("\n")

		rows = append(rows, []models.InlineKeyboardButton{{
			Text:         fmt.Sprintf("%d. %s", i+1, m.Title()),
			CallbackData: action.Action{Verb: action.VerbView, Kind: m.Kind(), MovieID: m.Id}.Encode(),
		}})
	}
	rows = append(rows, menuButton())

	return b.String(), &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// favoritesList renders the saved entries view from store snapshots, newest
// first. Entries beyond the display limit are counted but not listed.
func favoritesList(entries []models.FavoriteEntry, total int) (string, *models.InlineKeyboardMarkup) {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("⭐ <b>Your favorites (%d saved)</b>\n\n", total))

	var rows [][]models.InlineKeyboardButton
	for i, entry := range entries {
		b.WriteString(fmt.Sprintf("%d. <b>%s</b>", i+1, html.EscapeString(entry.Title)))
		if entry.Snapshot.Year > 0 {
			b.WriteString(fmt.Sprintf(" (%d)", entry.Snapshot.Year))
		}
		b.WriteString("\n")

		rows = append(rows, []models.InlineKeyboardButton{{
			Text:         fmt.Sprintf("%d. %s", i+1, entry.Title),
			CallbackData: action.Action{Verb: action.VerbView, Kind: entry.MediaType, MovieID: entry.MovieID}.Encode(),
		}})
	}
	rows = append(rows, menuButton())

	return b.String(), &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}
