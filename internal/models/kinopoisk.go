package models

// MediaKind distinguishes the two catalog entry types the bot renders.
type MediaKind string

const (
	KindMovie  MediaKind = "movie"
	KindSeries MediaKind = "series"
)

// upstream type strings used by kinopoisk.dev
const (
	upstreamMovie  = "movie"
	upstreamSeries = "tv-series"
)

type KinopoiskPage struct {
	Docs  []Movie `json:"docs"`
	Total int     `json:"total"`
	Limit int     `json:"limit"`
	Page  int     `json:"page"`
	Pages int     `json:"pages"`
}

type Movie struct {
	Id               int64     `json:"id"`
	Name             string    `json:"name"`
	AlternativeName  string    `json:"alternativeName"`
	Type             string    `json:"type"`
	Year             int       `json:"year"`
	Description      string    `json:"description"`
	ShortDescription string    `json:"shortDescription"`
	Rating           Rating    `json:"rating"`
	Poster           *Poster   `json:"poster,omitempty"`
	Genres           []Genre   `json:"genres,omitempty"`
	Countries        []Country `json:"countries,omitempty"`
	AgeRating        int       `json:"ageRating,omitempty"`
	MovieLength      int       `json:"movieLength,omitempty"`
	SeriesLength     int       `json:"seriesLength,omitempty"`
}

type Rating struct {
	Kp float64 `json:"kp"`
}

type Poster struct {
	Url        string `json:"url"`
	PreviewUrl string `json:"previewUrl"`
}

type Genre struct {
	Name string `json:"name"`
}

type Country struct {
	Name string `json:"name"`
}

// Title returns the display name, falling back to the alternative title
// and then to a placeholder so it is never empty.
func (m *Movie) Title() string {
	if m.Name != "" {
		return m.Name
	}
	if m.AlternativeName != "" {
		return m.AlternativeName
	}
	return "Untitled"
}

// Kind maps the upstream type string onto the bot's media kind.
// Anything that is not explicitly a movie is treated as a series,
// which is how the upstream catalog tags tv-series and mini-series.
func (m *Movie) Kind() MediaKind {
	if m.Type == upstreamMovie {
		return KindMovie
	}
	return KindSeries
}

// UpstreamType returns the collection path segment kinopoisk.dev expects
// for a media kind.
func (k MediaKind) UpstreamType() string {
	if k == KindSeries {
		return upstreamSeries
	}
	return upstreamMovie
}

func (k MediaKind) Valid() bool {
	return k == KindMovie || k == KindSeries
}
