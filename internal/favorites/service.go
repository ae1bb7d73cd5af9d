package favorites

import (
	"context"
	"errors"
	"math"

	"github.com/retr0Tech/movie-explorer/internal/domain"
	"github.com/retr0Tech/movie-explorer/internal/repository"
)

// ErrForbidden indicates the favorite exists but belongs to another user.
// Mutation paths distinguish it from not-found so callers get actionable
// feedback.
var ErrForbidden = errors.New("favorites: not the owner")

const (
	defaultLimit = 10
	maxLimit     = 100
)

// Service enforces ownership, uniqueness, and pagination rules on top of the
// favorites repository. It is the only component other layers talk to.
type Service struct {
	repo *repository.FavoritesRepository
}

// New constructs a Service backed by the given repository.
func New(repo *repository.FavoritesRepository) *Service {
	return &Service{repo: repo}
}

// CreateInput carries the denormalized metadata snapshot for a new favorite.
type CreateInput struct {
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
}

// UpdateInput is a partial update; nil fields retain their prior value.
type UpdateInput struct {
	Title      *string
	Year       *string
	Poster     *string
	Genre      *string
	Plot       *string
	IMDBRating *string
	Director   *string
	Actors     *string
	Runtime    *string
}

// Page is the pagination envelope returned by List.
type Page struct {
	Data            []domain.Favorite
	Total           int64
	Page            int
	Limit           int
	TotalPages      int
	HasNextPage     bool
	HasPreviousPage bool
}

// List returns one page of the user's favorites, newest first, optionally
// restricted to titles starting with filter. Out-of-range pagination input
// clamps instead of erroring; a page past the end yields empty data with the
// true totals.
func (s *Service) List(ctx context.Context, userID string, page, limit int, filter string) (Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	} else if limit > maxLimit {
		limit = maxLimit
	}

	offset := (page - 1) * limit
	records, total, err := s.repo.Page(ctx, userID, offset, limit, filter)
	if err != nil {
		return Page{}, err
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))

	return Page{
		Data:            records,
		Total:           total,
		Page:            page,
		Limit:           limit,
		TotalPages:      totalPages,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
	}, nil
}

// GetByIMDBID returns the caller's favorite for an external movie id.
// Another user's favorite with the same external id never matches.
func (s *Service) GetByIMDBID(ctx context.Context, imdbID, userID string) (domain.Favorite, error) {
	return s.repo.GetByUserAndIMDBID(ctx, userID, imdbID)
}

// GetByID returns a favorite by primary key, scoped to the caller. A row
// owned by someone else reads as not found.
func (s *Service) GetByID(ctx context.Context, id, userID string) (domain.Favorite, error) {
	return s.repo.GetByIDAndUser(ctx, id, userID)
}

// Create adds a favorite for the user. The duplicate pre-check is an early
// exit only; two concurrent creates for the same pair race to the unique
// index and the loser still gets ErrDuplicate.
func (s *Service) Create(ctx context.Context, userID string, input CreateInput) (domain.Favorite, error) {
	_, err := s.repo.GetByUserAndIMDBID(ctx, userID, input.IMDBID)
	switch {
	case err == nil:
		return domain.Favorite{}, repository.ErrDuplicate
	case !errors.Is(err, repository.ErrNotFound):
		return domain.Favorite{}, err
	}

	return s.repo.Insert(ctx, repository.FavoriteCreateParams{
		UserID:     userID,
		IMDBID:     input.IMDBID,
		Title:      input.Title,
		Year:       input.Year,
		Poster:     input.Poster,
		Genre:      input.Genre,
		Plot:       input.Plot,
		IMDBRating: input.IMDBRating,
		Director:   input.Director,
		Actors:     input.Actors,
		Runtime:    input.Runtime,
	})
}

// Update merges the non-nil fields of input over the stored favorite. The
// fetch is deliberately not user-scoped so a non-owner gets ErrForbidden
// rather than ErrNotFound.
func (s *Service) Update(ctx context.Context, id, userID string, input UpdateInput) (domain.Favorite, error) {
	fav, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Favorite{}, err
	}
	if fav.UserID != userID {
		return domain.Favorite{}, ErrForbidden
	}

	if input.Title != nil {
		fav.Title = *input.Title
	}
	if input.Year != nil {
		fav.Year = *input.Year
	}
	if input.Poster != nil {
		fav.Poster = input.Poster
	}
	if input.Genre != nil {
		fav.Genre = input.Genre
	}
	if input.Plot != nil {
		fav.Plot = input.Plot
	}
	if input.IMDBRating != nil {
		fav.IMDBRating = input.IMDBRating
	}
	if input.Director != nil {
		fav.Director = input.Director
	}
	if input.Actors != nil {
		fav.Actors = input.Actors
	}
	if input.Runtime != nil {
		fav.Runtime = input.Runtime
	}

	return s.repo.Update(ctx, fav)
}

// Delete removes the favorite after the same fetch/ownership check as
// Update.
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	fav, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if fav.UserID != userID {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, fav.ID)
}

// CheckMembership reports which of the given external ids the user has
// favorited. An empty input returns an empty set without a store call.
func (s *Service) CheckMembership(ctx context.Context, userID string, imdbIDs []string) (map[string]struct{}, error) {
	if len(imdbIDs) == 0 {
		return map[string]struct{}{}, nil
	}
	matched, err := s.repo.ListIMDBIDs(ctx, userID, imdbIDs)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(matched))
	for _, id := range matched {
		set[id] = struct{}{}
	}
	return set, nil
}

// IsMember reports whether the user has favorited a single external id.
func (s *Service) IsMember(ctx context.Context, userID, imdbID string) (bool, error) {
	_, err := s.repo.GetByUserAndIMDBID(ctx, userID, imdbID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
