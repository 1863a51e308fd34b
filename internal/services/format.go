package services

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"kinobot/internal/models"
)

const (
	maxCaptionGenres    = 3
	maxCaptionCountries = 2
	maxDescriptionLen   = 600
)

// MovieCaption renders a catalog entry into the HTML caption shown under a
// candidate, and returns the poster URL when one is available.
func MovieCaption(m *models.Movie) (string, string) {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("🎬 <b>%s</b>\n\n", html.EscapeString(m.Title())))

	if m.Rating.Kp > 0 {
		stars := strings.Repeat("⭐", min(int(m.Rating.Kp), 10))
		b.WriteString(fmt.Sprintf("%s <b>%.1f/10</b> (Kinopoisk)\n\n", stars, m.Rating.Kp))
	}

	if m.Year > 0 {
		b.WriteString(fmt.Sprintf("📅 Year: %d\n", m.Year))
	}

	if names := genreNames(m.Genres, maxCaptionGenres); names != "" {
		b.WriteString(fmt.Sprintf("🎭 Genres: %s\n", names))
	}

	if names := countryNames(m.Countries, maxCaptionCountries); names != "" {
		b.WriteString(fmt.Sprintf("🌍 Country: %s\n", names))
	}

	if m.AgeRating > 0 {
		b.WriteString(fmt.Sprintf("🔞 Age: %d+\n", m.AgeRating))
	}

	if m.MovieLength > 0 {
		b.WriteString(fmt.Sprintf("⏱ Runtime: %dh %dm\n", m.MovieLength/60, m.MovieLength%60))
	} else if m.SeriesLength > 0 {
		b.WriteString(fmt.Sprintf("📺 Episodes: %d\n", m.SeriesLength))
	}

	description := m.Description
	if description == "" {
		description = m.ShortDescription
	}
	if description == "" {
		description = "No description available"
	}
	description = truncateRunes(description, maxDescriptionLen)
	b.WriteString(fmt.Sprintf("\n📖 <i>%s</i>", html.EscapeString(description)))

	if m.Id > 0 {
		b.WriteString(fmt.Sprintf("\n\n🔗 <a href=\"https://www.kinopoisk.ru/film/%d\">Open on Kinopoisk</a>", m.Id))
	}

	posterURL := ""
	if m.Poster != nil {
		posterURL = m.Poster.Url
	}

	return b.String(), posterURL
}

// truncateRunes cuts on a rune boundary; the catalog's descriptions are
// mostly Cyrillic, so a byte slice would split a character and produce
// invalid UTF-8 that Telegram rejects.
func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "..."
}

func genreNames(genres []models.Genre, limit int) string {
	var names []string
	for _, g := range genres {
		if g.Name == "" {
			continue
		}
		names = append(names, g.Name)
		if len(names) == limit {
			break
		}
	}
	return strings.Join(names, ", ")
}

func countryNames(countries []models.Country, limit int) string {
	var names []string
	for _, c := range countries {
		if c.Name == "" {
			continue
		}
		names = append(names, c.Name)
		if len(names) == limit {
			break
		}
	}
	return strings.Join(names, ", ")
}
