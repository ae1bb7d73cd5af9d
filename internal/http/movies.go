package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/retr0Tech/movie-explorer/internal/ai"
	"github.com/retr0Tech/movie-explorer/internal/auth"
	"github.com/retr0Tech/movie-explorer/internal/domain"
	"github.com/retr0Tech/movie-explorer/internal/omdb"
)

type movieSearchResponse struct {
	Search       []domain.EnrichedMovieSummary `json:"Search"`
	TotalResults int                           `json:"totalResults"`
}

type recommendationsResponse struct {
	Movie           recommendedFor          `json:"movie"`
	Recommendations []domain.Recommendation `json:"recommendations"`
}

type recommendedFor struct {
	Title  string `json:"title"`
	Year   string `json:"year"`
	IMDBID string `json:"imdbId"`
}

func (s *Server) handleSearchMovies(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	title := strings.TrimSpace(r.URL.Query().Get("title"))
	if title == "" {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "title query parameter is required")
		return
	}
	page := parseIntParam(r.URL.Query().Get("page"), 1)

	result, err := s.movies.Search(r.Context(), title, page)
	if err != nil {
		s.respondUpstreamError(w, err, "Failed to search movies")
		return
	}

	enriched, err := s.enricher.SearchResults(r.Context(), userID, result.Results)
	if err != nil {
		s.logger.Printf("enrich search results error: %v", err)
		s.respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Failed to resolve favorite status")
		return
	}

	s.respondJSON(w, http.StatusOK, movieSearchResponse{
		Search:       enriched,
		TotalResults: result.TotalResults,
	})
}

func (s *Server) handleMovieDetail(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	imdbID := chi.URLParam(r, "imdbID")
	detail, err := s.movies.GetByID(r.Context(), imdbID)
	if err != nil {
		s.respondUpstreamError(w, err, "Failed to fetch movie details")
		return
	}

	enriched, err := s.enricher.Detail(r.Context(), userID, detail)
	if err != nil {
		s.logger.Printf("enrich movie detail error: %v", err)
		s.respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Failed to resolve favorite status")
		return
	}

	s.respondJSON(w, http.StatusOK, enriched)
}

func (s *Server) handleMovieAnalysis(w http.ResponseWriter, r *http.Request) {
	imdbID := chi.URLParam(r, "imdbID")
	detail, err := s.movies.GetByID(r.Context(), imdbID)
	if err != nil {
		s.respondUpstreamError(w, err, "Failed to fetch movie details")
		return
	}

	analysis, err := s.ai.AnalyzeRatings(r.Context(), ai.AnalyzeParams{
		Title:      detail.Title,
		Ratings:    detail.Ratings,
		IMDBRating: detail.IMDBRating,
		IMDBVotes:  detail.IMDBVotes,
		Plot:       detail.Plot,
		Genre:      detail.Genre,
		Year:       detail.Year,
	})
	if err != nil {
		s.logger.Printf("analyze ratings error for %s: %v", imdbID, err)
		s.respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Failed to analyze movie ratings")
		return
	}

	s.respondJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	imdbID := chi.URLParam(r, "imdbID")
	detail, err := s.movies.GetByID(r.Context(), imdbID)
	if err != nil {
		s.respondUpstreamError(w, err, "Failed to fetch movie details")
		return
	}

	recs, err := s.ai.Recommend(r.Context(), detail.Title, detail.Year, detail.Genre, detail.Plot)
	if err != nil {
		s.logger.Printf("recommendations error for %s: %v", imdbID, err)
		s.respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Failed to generate recommendations")
		return
	}

	s.respondJSON(w, http.StatusOK, recommendationsResponse{
		Movie: recommendedFor{
			Title:  detail.Title,
			Year:   detail.Year,
			IMDBID: detail.IMDBID,
		},
		Recommendations: recs,
	})
}

// respondUpstreamError distinguishes "the provider does not know this title"
// from the provider being unreachable or broken.
func (s *Server) respondUpstreamError(w http.ResponseWriter, err error, internalMsg string) {
	if errors.Is(err, omdb.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Movie not found")
		return
	}
	s.logger.Printf("upstream error: %v", err)
	s.respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR", internalMsg)
}
