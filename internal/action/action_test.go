package action

import (
	"testing"

	"kinobot/internal/models"

	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	tokens := []Action{
		{Verb: VerbMenu},
		{Verb: VerbSearch},
		{Verb: VerbFavorites},
		{Verb: VerbPopular, Kind: models.KindMovie},
		{Verb: VerbTop, Kind: models.KindSeries},
		{Verb: VerbGenres, Kind: models.KindMovie},
		{Verb: VerbRandom, Kind: models.KindSeries},
		{Verb: VerbGenre, Kind: models.KindMovie, Genre: "drama"},
		{Verb: VerbView, Kind: models.KindSeries, MovieID: 4445},
		{Verb: VerbToggleFav, MovieID: 301},
	}

	for _, want := range tokens {
		encoded := want.Encode()
		require.NotEmpty(t, encoded, "encode %+v", want)
		require.LessOrEqual(t, len(encoded), 64, "callback_data limit for %q", encoded)

		got, err := Parse(encoded)
		require.NoError(t, err, "parse %q", encoded)
		require.Equal(t, want, got)
	}
}

func TestParseRejectsMalformedTokens(t *testing.T) {
	malformed := []string{
		"",
		"bogus",
		"popular",
		"popular:book",
		"popular:movie:extra",
		"genre:movie",
		"genre:movie:jazz",
		"genre:cartoon:drama",
		"view:movie:abc",
		"view:movie:-3",
		"view:movie",
		"fav:",
		"fav:0",
		"fav:12:34",
		"menu:extra",
	}

	for _, data := range malformed {
		_, err := Parse(data)
		require.ErrorIs(t, err, ErrMalformed, "token %q", data)
	}
}

func TestGenreQuery(t *testing.T) {
	for _, g := range Genres() {
		query, ok := GenreQuery(g.Slug)
		require.True(t, ok, "slug %q", g.Slug)
		require.NotEmpty(t, query)
	}

	_, ok := GenreQuery("jazz")
	require.False(t, ok)
}
