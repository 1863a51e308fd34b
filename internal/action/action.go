// Package action defines the typed vocabulary of callback tokens the bot
// understands. Incoming callback_data is parsed exactly once at the boundary
// into an Action value; handlers switch over the verb instead of matching
// string prefixes.
package action

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"kinobot/internal/models"
)

type Verb string

const (
	VerbMenu      Verb = "menu"
	VerbPopular   Verb = "popular"
	VerbTop       Verb = "top"
	VerbGenres    Verb = "genres"
	VerbGenre     Verb = "genre"
	VerbRandom    Verb = "random"
	VerbSearch    Verb = "search"
	VerbFavorites Verb = "favorites"
	VerbView      Verb = "view"
	VerbToggleFav Verb = "fav"
)

var ErrMalformed = errors.New("malformed action token")

// Action is one decoded callback token. Which fields are meaningful depends
// on the verb: browse verbs carry Kind, genre browsing carries Genre, and
// view/fav carry MovieID. The token is the whole session context; nothing
// else is remembered between turns.
type Action struct {
	Verb    Verb
	Kind    models.MediaKind
	Genre   string
	MovieID int64
}

// Parse decodes a callback_data token. It rejects unknown verbs, unknown
// media kinds, unknown genre slugs and non-numeric ids before any network
// or store call happens.
func Parse(data string) (Action, error) {
	parts := strings.Split(data, ":")

	switch Verb(parts[0]) {
	case VerbMenu, VerbSearch, VerbFavorites:
		if len(parts) != 1 {
			return Action{}, fmt.Errorf("%w: %q", ErrMalformed, data)
		}
		return Action{Verb: Verb(parts[0])}, nil

	case VerbPopular, VerbTop, VerbGenres, VerbRandom:
		if len(parts) != 2 {
			return Action{}, fmt.Errorf("%w: %q", ErrMalformed, data)
		}
		kind := models.MediaKind(parts[1])
		if !kind.Valid() {
			return Action{}, fmt.Errorf("%w: unknown kind in %q", ErrMalformed, data)
		}
		return Action{Verb: Verb(parts[0]), Kind: kind}, nil

	case VerbGenre:
		if len(parts) != 3 {
			return Action{}, fmt.Errorf("%w: %q", ErrMalformed, data)
		}
		kind := models.MediaKind(parts[1])
		if !kind.Valid() {
			return Action{}, fmt.Errorf("%w: unknown kind in %q", ErrMalformed, data)
		}
		if _, ok := genreQueries[parts[2]]; !ok {
			return Action{}, fmt.Errorf("%w: unknown genre in %q", ErrMalformed, data)
		}
		return Action{Verb: VerbGenre, Kind: kind, Genre: parts[2]}, nil

	case VerbView:
		if len(parts) != 3 {
			return Action{}, fmt.Errorf("%w: %q", ErrMalformed, data)
		}
		kind := models.MediaKind(parts[1])
		if !kind.Valid() {
			return Action{}, fmt.Errorf("%w: unknown kind in %q", ErrMalformed, data)
		}
		id, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil || id <= 0 {
			return Action{}, fmt.Errorf("%w: bad id in %q", ErrMalformed, data)
		}
		return Action{Verb: VerbView, Kind: kind, MovieID: id}, nil

	case VerbToggleFav:
		if len(parts) != 2 {
			return Action{}, fmt.Errorf("%w: %q", ErrMalformed, data)
		}
		id, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil || id <= 0 {
			return Action{}, fmt.Errorf("%w: bad id in %q", ErrMalformed, data)
		}
		return Action{Verb: VerbToggleFav, MovieID: id}, nil
	}

	return Action{}, fmt.Errorf("%w: unknown verb in %q", ErrMalformed, data)
}

// Encode renders the token back into callback_data form. Encode and Parse
// round-trip; the output stays well inside Telegram's 64-byte limit.
func (a Action) Encode() string {
	switch a.Verb {
	case VerbMenu, VerbSearch, VerbFavorites:
		return string(a.Verb)
	case VerbPopular, VerbTop, VerbGenres, VerbRandom:
		return fmt.Sprintf("%s:%s", a.Verb, a.Kind)
	case VerbGenre:
		return fmt.Sprintf("%s:%s:%s", a.Verb, a.Kind, a.Genre)
	case VerbView:
		return fmt.Sprintf("%s:%s:%d", a.Verb, a.Kind, a.MovieID)
	case VerbToggleFav:
		return fmt.Sprintf("%s:%d", a.Verb, a.MovieID)
	}
	return ""
}
