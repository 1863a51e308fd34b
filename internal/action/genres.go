package action

// GenreOption is one entry of the genre picker: the ASCII slug carried in
// action tokens, the label shown on the button, and the genres.name value
// kinopoisk.dev expects (the upstream catalog is Russian-first).
type GenreOption struct {
	Slug  string
	Label string
	Query string
}

var genreOptions = []GenreOption{
	{Slug: "action", Label: "Action", Query: "боевик"},
	{Slug: "adventure", Label: "Adventure", Query: "приключения"},
	{Slug: "comedy", Label: "Comedy", Query: "комедия"},
	{Slug: "drama", Label: "Drama", Query: "драма"},
	{Slug: "thriller", Label: "Thriller", Query: "триллер"},
	{Slug: "horror", Label: "Horror", Query: "ужасы"},
	{Slug: "sci-fi", Label: "Sci-Fi", Query: "фантастика"},
	{Slug: "fantasy", Label: "Fantasy", Query: "фэнтези"},
	{Slug: "detective", Label: "Detective", Query: "детектив"},
	{Slug: "romance", Label: "Romance", Query: "мелодрама"},
	{Slug: "crime", Label: "Crime", Query: "криминал"},
	{Slug: "animation", Label: "Animation", Query: "мультфильм"},
}

var genreQueries = func() map[string]GenreOption {
	m := make(map[string]GenreOption, len(genreOptions))
	for _, g := range genreOptions {
		m[g.Slug] = g
	}
	return m
}()

// Genres returns the picker entries in display order.
func Genres() []GenreOption {
	return genreOptions
}

// GenreQuery resolves a slug into the upstream genres.name value.
// The second return is false for slugs Parse would have rejected.
func GenreQuery(slug string) (string, bool) {
	g, ok := genreQueries[slug]
	if !ok {
		return "", false
	}
	return g.Query, true
}
