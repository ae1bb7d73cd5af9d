package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/retr0Tech/movie-explorer/internal/store"
)

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("repository: not found")

// ErrDuplicate indicates a row violating the (user_id, imdb_id) uniqueness
// constraint. It is raised both by the service-level pre-check and by the
// database index itself; callers see the same error either way.
var ErrDuplicate = errors.New("repository: duplicate favorite")

// Repository aggregates all domain-specific repositories.
type Repository struct {
	Favorites *FavoritesRepository
}

// New constructs a Repository backed by the provided store.
func New(st *store.Store) *Repository {
	return NewWithPool(st.Pool())
}

// NewWithPool allows constructing repositories directly from a pgx pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{
		Favorites: &FavoritesRepository{pool: pool},
	}
}
