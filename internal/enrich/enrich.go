// Package enrich joins externally-fetched movie data with the caller's
// favorites set, attaching an isFavorite flag per item. It never mutates the
// favorites store.
package enrich

import (
	"context"

	"github.com/retr0Tech/movie-explorer/internal/domain"
)

// MembershipChecker is the slice of the favorites service the enricher
// depends on.
type MembershipChecker interface {
	CheckMembership(ctx context.Context, userID string, imdbIDs []string) (map[string]struct{}, error)
	IsMember(ctx context.Context, userID, imdbID string) (bool, error)
}

// Enricher decorates movie summaries and details with favorite status.
type Enricher struct {
	favorites MembershipChecker
}

// New constructs an Enricher over the given membership checker.
func New(favorites MembershipChecker) *Enricher {
	return &Enricher{favorites: favorites}
}

// SearchResults attaches isFavorite to every summary, preserving order and
// leaving all other fields untouched. Empty input skips the membership call
// entirely. A failed membership check fails the whole enrichment; the flag is
// never silently defaulted on an infrastructure error.
func (e *Enricher) SearchResults(ctx context.Context, userID string, results []domain.MovieSummary) ([]domain.EnrichedMovieSummary, error) {
	enriched := make([]domain.EnrichedMovieSummary, 0, len(results))
	if len(results) == 0 {
		return enriched, nil
	}

	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.IMDBID)
	}

	members, err := e.favorites.CheckMembership(ctx, userID, ids)
	if err != nil {
		return nil, err
	}

	for _, r := range results {
		_, fav := members[r.IMDBID]
		enriched = append(enriched, domain.EnrichedMovieSummary{
			MovieSummary: r,
			IsFavorite:   fav,
		})
	}
	return enriched, nil
}

// Detail attaches isFavorite to a copy of the detail payload.
func (e *Enricher) Detail(ctx context.Context, userID string, detail domain.MovieDetail) (domain.EnrichedMovieDetail, error) {
	fav, err := e.favorites.IsMember(ctx, userID, detail.IMDBID)
	if err != nil {
		return domain.EnrichedMovieDetail{}, err
	}
	return domain.EnrichedMovieDetail{
		MovieDetail: detail,
		IsFavorite:  fav,
	}, nil
}
