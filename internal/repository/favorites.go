package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/retr0Tech/movie-explorer/internal/domain"
)

// FavoritesRepository provides persistence helpers for favorite entities.
type FavoritesRepository struct {
	pool *pgxpool.Pool
}

const favoriteColumns = `
    id,
    user_id,
    imdb_id,
    title,
    year,
    poster,
    genre,
    plot,
    imdb_rating,
    director,
    actors,
    runtime,
    created_at,
    updated_at
`

// uniqueViolation is the Postgres error code raised by the
// (user_id, imdb_id) unique index.
const uniqueViolation = "23505"

// FavoriteCreateParams bundles the fields required to create a favorite.
type FavoriteCreateParams struct {
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
}

// Insert creates a new favorite row with a generated id and returns the
// stored entity. A concurrent insert of the same (user, imdbId) pair loses
// the race at the unique index and surfaces as ErrDuplicate.
func (r *FavoritesRepository) Insert(ctx context.Context, params FavoriteCreateParams) (domain.Favorite, error) {
	query := fmt.Sprintf(`
        INSERT INTO favorites (id, user_id, imdb_id, title, year, poster, genre, plot, imdb_rating, director, actors, runtime)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING %s
    `, favoriteColumns)

	row := r.pool.QueryRow(ctx, query,
		uuid.NewString(),
		params.UserID,
		params.IMDBID,
		params.Title,
		params.Year,
		params.Poster,
		params.Genre,
		params.Plot,
		params.IMDBRating,
		params.Director,
		params.Actors,
		params.Runtime,
	)
	fav, err := scanFavorite(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.Favorite{}, ErrDuplicate
		}
		return domain.Favorite{}, err
	}
	return fav, nil
}

// GetByID fetches a favorite by its identifier regardless of owner. The
// service layer uses this for the fetch-then-ownership-check mutation paths.
func (r *FavoritesRepository) GetByID(ctx context.Context, id string) (domain.Favorite, error) {
	query := fmt.Sprintf(`SELECT %s FROM favorites WHERE id = $1`, favoriteColumns)
	row := r.pool.QueryRow(ctx, query, id)
	fav, err := scanFavorite(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Favorite{}, ErrNotFound
		}
		return domain.Favorite{}, err
	}
	return fav, nil
}

// GetByIDAndUser fetches a favorite scoped by both id and owner. A row owned
// by another user simply does not match.
func (r *FavoritesRepository) GetByIDAndUser(ctx context.Context, id, userID string) (domain.Favorite, error) {
	query := fmt.Sprintf(`SELECT %s FROM favorites WHERE id = $1 AND user_id = $2`, favoriteColumns)
	row := r.pool.QueryRow(ctx, query, id, userID)
	fav, err := scanFavorite(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Favorite{}, ErrNotFound
		}
		return domain.Favorite{}, err
	}
	return fav, nil
}

// GetByUserAndIMDBID fetches the favorite a user holds for an external movie
// id. Lookups are always user-scoped so one user's favorites never leak into
// another's results.
func (r *FavoritesRepository) GetByUserAndIMDBID(ctx context.Context, userID, imdbID string) (domain.Favorite, error) {
	query := fmt.Sprintf(`SELECT %s FROM favorites WHERE user_id = $1 AND imdb_id = $2`, favoriteColumns)
	row := r.pool.QueryRow(ctx, query, userID, imdbID)
	fav, err := scanFavorite(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Favorite{}, ErrNotFound
		}
		return domain.Favorite{}, err
	}
	return fav, nil
}

// ListIMDBIDs returns which of the given external ids the user has
// favorited. An empty input returns immediately without touching the
// database.
func (r *FavoritesRepository) ListIMDBIDs(ctx context.Context, userID string, imdbIDs []string) ([]string, error) {
	if len(imdbIDs) == 0 {
		return nil, nil
	}

	const query = `SELECT imdb_id FROM favorites WHERE user_id = $1 AND imdb_id = ANY($2)`
	rows, err := r.pool.Query(ctx, query, userID, imdbIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matched []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		matched = append(matched, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return matched, nil
}

// Page returns one page of a user's favorites ordered by most recently
// favorited first, plus the total count matching the filter. titlePrefix,
// when non-empty, restricts to titles starting with the prefix
// (case-insensitive, see ILIKE below).
func (r *FavoritesRepository) Page(ctx context.Context, userID string, offset, limit int, titlePrefix string) ([]domain.Favorite, int64, error) {
	where := []string{"user_id = $1"}
	args := []interface{}{userID}
	if titlePrefix != "" {
		args = append(args, escapeLike(titlePrefix)+"%")
		where = append(where, fmt.Sprintf("title ILIKE $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM favorites WHERE %s`, cond)
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	pageQuery := fmt.Sprintf(`
        SELECT %s FROM favorites
        WHERE %s
        ORDER BY created_at DESC, id DESC
        LIMIT $%d OFFSET $%d
    `, favoriteColumns, cond, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, pageQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	records := make([]domain.Favorite, 0)
	for rows.Next() {
		fav, err := scanFavorite(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, fav)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// Update persists the mutable snapshot fields of a favorite and bumps
// updated_at. The id, owner, and external id never change.
func (r *FavoritesRepository) Update(ctx context.Context, fav domain.Favorite) (domain.Favorite, error) {
	query := fmt.Sprintf(`
        UPDATE favorites
        SET title = $2,
            year = $3,
            poster = $4,
            genre = $5,
            plot = $6,
            imdb_rating = $7,
            director = $8,
            actors = $9,
            runtime = $10,
            updated_at = now()
        WHERE id = $1
        RETURNING %s
    `, favoriteColumns)

	row := r.pool.QueryRow(ctx, query,
		fav.ID,
		fav.Title,
		fav.Year,
		fav.Poster,
		fav.Genre,
		fav.Plot,
		fav.IMDBRating,
		fav.Director,
		fav.Actors,
		fav.Runtime,
	)
	updated, err := scanFavorite(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Favorite{}, ErrNotFound
		}
		return domain.Favorite{}, err
	}
	return updated, nil
}

// Delete removes a favorite by primary key.
func (r *FavoritesRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM favorites WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanFavorite(row pgx.Row) (domain.Favorite, error) {
	var fav domain.Favorite
	err := row.Scan(
		&fav.ID,
		&fav.UserID,
		&fav.IMDBID,
		&fav.Title,
		&fav.Year,
		&fav.Poster,
		&fav.Genre,
		&fav.Plot,
		&fav.IMDBRating,
		&fav.Director,
		&fav.Actors,
		&fav.Runtime,
		&fav.CreatedAt,
		&fav.UpdatedAt,
	)
	if err != nil {
		return domain.Favorite{}, err
	}
	return fav, nil
}

// escapeLike neutralizes LIKE wildcards so a literal prefix matches only
// itself.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
