package httpserver

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/retr0Tech/movie-explorer/internal/ai"
	"github.com/retr0Tech/movie-explorer/internal/auth"
	"github.com/retr0Tech/movie-explorer/internal/config"
	"github.com/retr0Tech/movie-explorer/internal/enrich"
	"github.com/retr0Tech/movie-explorer/internal/favorites"
	"github.com/retr0Tech/movie-explorer/internal/omdb"
	"github.com/retr0Tech/movie-explorer/internal/store"
)

// Server wires HTTP routing, middleware, and handlers.
type Server struct {
	cfg       config.Config
	store     *store.Store
	favorites *favorites.Service
	enricher  *enrich.Enricher
	movies    omdb.Client
	ai        ai.Client
	verifier  *auth.Verifier
	validate  *validator.Validate
	logger    *log.Logger
	router    chi.Router
	httpSrv   *http.Server
}

// New constructs the HTTP server with base middleware and routes.
func New(cfg config.Config, st *store.Store, favSvc *favorites.Service, enricher *enrich.Enricher, movieClient omdb.Client, aiClient ai.Client, verifier *auth.Verifier, logger *log.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		cfg:       cfg,
		store:     st,
		favorites: favSvc,
		enricher:  enricher,
		movies:    movieClient,
		ai:        aiClient,
		verifier:  verifier,
		validate:  validator.New(),
		logger:    logger,
		router:    r,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealthz)

	s.router.Group(func(r chi.Router) {
		r.Use(s.verifier.Middleware)

		r.Route("/movies", func(r chi.Router) {
			r.Get("/search", s.handleSearchMovies)
			r.Get("/{imdbID}", s.handleMovieDetail)
			r.Get("/{imdbID}/analysis", s.handleMovieAnalysis)
		})

		r.Get("/recommendations/{imdbID}", s.handleRecommendations)

		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", s.handleListFavorites)
			r.Post("/", s.handleCreateFavorite)
			r.Get("/imdbId/{imdbID}", s.handleGetFavoriteByIMDBID)
			r.Get("/{id}", s.handleGetFavorite)
			r.Put("/{id}", s.handleUpdateFavorite)
			r.Delete("/{id}", s.handleDeleteFavorite)
		})
	})
}

// Start boots the HTTP server and blocks until shutdown or failure.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.IdleTimeoutSecs) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.HealthCheck(ctx); err != nil {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
