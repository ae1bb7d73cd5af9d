package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/retr0Tech/movie-explorer/internal/auth"
	"github.com/retr0Tech/movie-explorer/internal/domain"
	"github.com/retr0Tech/movie-explorer/internal/favorites"
	"github.com/retr0Tech/movie-explorer/internal/repository"
)

const maxRequestBody = 1 << 20 // 1 MiB

type errorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type favoriteCreateRequest struct {
	IMDBID     string  `json:"imdbId" validate:"required"`
	Title      string  `json:"title" validate:"required"`
	Year       string  `json:"year" validate:"required"`
	Poster     *string `json:"poster"`
	Genre      *string `json:"genre"`
	Plot       *string `json:"plot"`
	IMDBRating *string `json:"imdbRating"`
	Director   *string `json:"director"`
	Actors     *string `json:"actors"`
	Runtime    *string `json:"runtime"`
}

type favoriteUpdateRequest struct {
	Title      *string `json:"title"`
	Year       *string `json:"year"`
	Poster     *string `json:"poster"`
	Genre      *string `json:"genre"`
	Plot       *string `json:"plot"`
	IMDBRating *string `json:"imdbRating"`
	Director   *string `json:"director"`
	Actors     *string `json:"actors"`
	Runtime    *string `json:"runtime"`
}

type favoriteResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	IMDBID     string    `json:"imdbId"`
	Title      string    `json:"title"`
	Year       string    `json:"year"`
	Poster     *string   `json:"poster"`
	Genre      *string   `json:"genre"`
	Plot       *string   `json:"plot"`
	IMDBRating *string   `json:"imdbRating"`
	Director   *string   `json:"director"`
	Actors     *string   `json:"actors"`
	Runtime    *string   `json:"runtime"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type paginatedFavoritesResponse struct {
	Data            []favoriteResponse `json:"data"`
	Total           int64              `json:"total"`
	Page            int                `json:"page"`
	Limit           int                `json:"limit"`
	TotalPages      int                `json:"totalPages"`
	HasNextPage     bool               `json:"hasNextPage"`
	HasPreviousPage bool               `json:"hasPreviousPage"`
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	query := r.URL.Query()
	page := parseIntParam(query.Get("page"), 1)
	limit := parseIntParam(query.Get("limit"), 10)
	filter := strings.TrimSpace(query.Get("filter"))

	result, err := s.favorites.List(r.Context(), userID, page, limit, filter)
	if err != nil {
		s.logger.Printf("list favorites error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list favorites")
		return
	}

	data := make([]favoriteResponse, 0, len(result.Data))
	for _, fav := range result.Data {
		data = append(data, toFavoriteResponse(fav))
	}

	s.respondJSON(w, http.StatusOK, paginatedFavoritesResponse{
		Data:            data,
		Total:           result.Total,
		Page:            result.Page,
		Limit:           result.Limit,
		TotalPages:      result.TotalPages,
		HasNextPage:     result.HasNextPage,
		HasPreviousPage: result.HasPreviousPage,
	})
}

func (s *Server) handleGetFavoriteByIMDBID(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	imdbID := chi.URLParam(r, "imdbID")
	fav, err := s.favorites.GetByIMDBID(r.Context(), imdbID, userID)
	if err != nil {
		s.respondFavoritesError(w, err, "Failed to fetch favorite")
		return
	}
	s.respondJSON(w, http.StatusOK, toFavoriteResponse(fav))
}

func (s *Server) handleGetFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	id := chi.URLParam(r, "id")
	fav, err := s.favorites.GetByID(r.Context(), id, userID)
	if err != nil {
		s.respondFavoritesError(w, err, "Failed to fetch favorite")
		return
	}
	s.respondJSON(w, http.StatusOK, toFavoriteResponse(fav))
}

func (s *Server) handleCreateFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	var req favoriteCreateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.respondValidationError(w, err)
		return
	}

	fav, err := s.favorites.Create(r.Context(), userID, favorites.CreateInput{
		IMDBID:     strings.TrimSpace(req.IMDBID),
		Title:      strings.TrimSpace(req.Title),
		Year:       strings.TrimSpace(req.Year),
		Poster:     req.Poster,
		Genre:      req.Genre,
		Plot:       req.Plot,
		IMDBRating: req.IMDBRating,
		Director:   req.Director,
		Actors:     req.Actors,
		Runtime:    req.Runtime,
	})
	if err != nil {
		s.respondFavoritesError(w, err, "Failed to create favorite")
		return
	}
	s.respondJSON(w, http.StatusCreated, toFavoriteResponse(fav))
}

func (s *Server) handleUpdateFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	id := chi.URLParam(r, "id")
	var req favoriteUpdateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	fav, err := s.favorites.Update(r.Context(), id, userID, favorites.UpdateInput{
		Title:      req.Title,
		Year:       req.Year,
		Poster:     req.Poster,
		Genre:      req.Genre,
		Plot:       req.Plot,
		IMDBRating: req.IMDBRating,
		Director:   req.Director,
		Actors:     req.Actors,
		Runtime:    req.Runtime,
	})
	if err != nil {
		s.respondFavoritesError(w, err, "Failed to update favorite")
		return
	}
	s.respondJSON(w, http.StatusOK, toFavoriteResponse(fav))
}

func (s *Server) handleDeleteFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.favorites.Delete(r.Context(), id, userID); err != nil {
		s.respondFavoritesError(w, err, "Failed to delete favorite")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// respondFavoritesError maps service errors onto the REST error taxonomy.
func (s *Server) respondFavoritesError(w http.ResponseWriter, err error, internalMsg string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Favorite movie not found")
	case errors.Is(err, repository.ErrDuplicate):
		s.respondError(w, http.StatusConflict, "CONFLICT", "Movie is already in favorites")
	case errors.Is(err, favorites.ErrForbidden):
		s.respondError(w, http.StatusForbidden, "FORBIDDEN", "You can only modify your own favorites")
	default:
		s.logger.Printf("favorites error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", internalMsg)
	}
}

func (s *Server) respondValidationError(w http.ResponseWriter, err error) {
	var invalid validator.ValidationErrors
	if errors.As(err, &invalid) {
		fields := make([]string, 0, len(invalid))
		for _, fe := range invalid {
			fields = append(fields, fe.Field())
		}
		s.respondJSON(w, http.StatusBadRequest, errorResponse{
			Code:    "VALIDATION_ERROR",
			Message: fmt.Sprintf("missing or invalid fields: %s", strings.Join(fields, ", ")),
			Details: fields,
		})
		return
	}
	s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload")
}

func toFavoriteResponse(fav domain.Favorite) favoriteResponse {
	return favoriteResponse{
		ID:         fav.ID,
		UserID:     fav.UserID,
		IMDBID:     fav.IMDBID,
		Title:      fav.Title,
		Year:       fav.Year,
		Poster:     fav.Poster,
		Genre:      fav.Genre,
		Plot:       fav.Plot,
		IMDBRating: fav.IMDBRating,
		Director:   fav.Director,
		Actors:     fav.Actors,
		Runtime:    fav.Runtime,
		CreatedAt:  fav.CreatedAt,
		UpdatedAt:  fav.UpdatedAt,
	}
}

func parseIntParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return val
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Printf("failed to encode response: %v", err)
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

func (s *Server) respondDecodeError(w http.ResponseWriter, err error) {
	var syntaxError *json.SyntaxError
	var typeError *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxError):
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Malformed JSON payload")
	case errors.As(err, &typeError):
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", fmt.Sprintf("Invalid value for field %s", typeError.Field))
	case errors.Is(err, io.EOF):
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Request body cannot be empty")
	default:
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unable to parse request body")
	}
}
