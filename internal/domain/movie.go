package domain

// MovieSummary is one entry of a movie-provider title search. Field names
// follow the OMDB wire format so search results pass through unchanged.
type MovieSummary struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	IMDBID string `json:"imdbID"`
	Type   string `json:"Type"`
	Poster string `json:"Poster"`
}

// Rating is one source/value pair from the provider's Ratings list.
type Rating struct {
	Source string `json:"Source"`
	Value  string `json:"Value"`
}

// MovieDetail mirrors the provider's detail payload for a single title.
type MovieDetail struct {
	Title      string   `json:"Title"`
	Year       string   `json:"Year"`
	Rated      string   `json:"Rated"`
	Released   string   `json:"Released"`
	Runtime    string   `json:"Runtime"`
	Genre      string   `json:"Genre"`
	Director   string   `json:"Director"`
	Writer     string   `json:"Writer"`
	Actors     string   `json:"Actors"`
	Plot       string   `json:"Plot"`
	Language   string   `json:"Language"`
	Country    string   `json:"Country"`
	Awards     string   `json:"Awards"`
	Poster     string   `json:"Poster"`
	Ratings    []Rating `json:"Ratings"`
	Metascore  string   `json:"Metascore"`
	IMDBRating string   `json:"imdbRating"`
	IMDBVotes  string   `json:"imdbVotes"`
	IMDBID     string   `json:"imdbID"`
	Type       string   `json:"Type"`
	BoxOffice  string   `json:"BoxOffice"`
}

// EnrichedMovieSummary decorates a search result with the caller's favorite
// status. Request-scoped, never persisted.
type EnrichedMovieSummary struct {
	MovieSummary
	IsFavorite bool `json:"isFavorite"`
}

// EnrichedMovieDetail decorates a movie detail with the caller's favorite
// status.
type EnrichedMovieDetail struct {
	MovieDetail
	IsFavorite bool `json:"isFavorite"`
}

// Recommendation is a single AI-generated similar-movie suggestion.
type Recommendation struct {
	Title  string `json:"title"`
	Year   string `json:"year,omitempty"`
	Reason string `json:"reason"`
}

// RatingsAnalysis is the AI-generated sentiment breakdown for a title's
// public reception.
type RatingsAnalysis struct {
	OverallSentiment  string   `json:"overallSentiment"`
	SentimentScore    int      `json:"sentimentScore"`
	AudienceReception string   `json:"audienceReception"`
	CriticsReception  string   `json:"criticsReception"`
	KeyInsights       []string `json:"keyInsights"`
	Summary           string   `json:"summary"`
}
