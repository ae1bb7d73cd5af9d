package domain

import "time"

// Favorite represents a user-owned favorite movie row. The metadata fields
// are a snapshot taken at favorite-time; later edits do not re-sync with the
// movie provider.
type Favorite struct {
	ID         string
	UserID     string
	IMDBID     string
	Title      string
	Year       string
	Poster     *string
	Genre      *string
	Plot       *string
	IMDBRating *string
	Director   *string
	Actors     *string
	Runtime    *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
