package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/retr0Tech/movie-explorer/internal/ai"
	"github.com/retr0Tech/movie-explorer/internal/auth"
	"github.com/retr0Tech/movie-explorer/internal/config"
	"github.com/retr0Tech/movie-explorer/internal/enrich"
	"github.com/retr0Tech/movie-explorer/internal/favorites"
	httpserver "github.com/retr0Tech/movie-explorer/internal/http"
	"github.com/retr0Tech/movie-explorer/internal/omdb"
	"github.com/retr0Tech/movie-explorer/internal/repository"
	"github.com/retr0Tech/movie-explorer/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := log.New(os.Stdout, "[movie-explorer] ", log.LstdFlags|log.Lshortfile)

	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	storeOpts := store.Options{
		MaxConns:               int32(cfg.DBMaxConns),
		MinConns:               int32(cfg.DBMinConns),
		MaxConnIdleTime:        time.Duration(cfg.DBMaxIdleSecs) * time.Second,
		MaxConnLifetime:        time.Duration(cfg.DBMaxLifeSecs) * time.Second,
		ConnTimeout:            time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		StatementCacheCapacity: cfg.DBStatementCache,
		Logger:                 logger,
	}

	st, err := store.New(dbCtx, cfg.DBURL, storeOpts)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer st.Close()

	movieClient, err := omdb.NewHTTPClient(cfg.OMDBURL, cfg.OMDBAPIKey, time.Duration(cfg.OMDBTimeoutSecs)*time.Second, logger)
	if err != nil {
		log.Fatalf("init omdb client: %v", err)
	}

	aiClient, err := ai.NewHTTPClient(cfg.AIURL, cfg.AIAPIKey, time.Duration(cfg.AITimeoutSecs)*time.Second, logger)
	if err != nil {
		log.Fatalf("init ai client: %v", err)
	}

	verifier, err := auth.NewVerifier(cfg.JWTSecret)
	if err != nil {
		log.Fatalf("init token verifier: %v", err)
	}

	repo := repository.New(st)
	favSvc := favorites.New(repo.Favorites)
	enricher := enrich.New(favSvc)
	server := httpserver.New(cfg, st, favSvc, enricher, movieClient, aiClient, verifier, logger)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
			log.Printf("server error: %v", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("graceful shutdown error: %v", err)
	}
}
