package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/devansh/connectly/backend/internal/config"
	"github.com/devansh/connectly/backend/internal/engine"
	"github.com/devansh/connectly/backend/internal/events"
	"github.com/devansh/connectly/backend/internal/graph"
	"github.com/devansh/connectly/backend/internal/logging"
	"github.com/devansh/connectly/backend/internal/metrics"
	"github.com/devansh/connectly/backend/internal/repository"
	"github.com/devansh/connectly/backend/internal/search"
	"github.com/devansh/connectly/backend/internal/server"
	"github.com/devansh/connectly/backend/internal/service"
	"github.com/devansh/connectly/backend/internal/store"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	graphClient, repo, err := buildMirror(ctx, logger, cfg)
	if err != nil {
		logger.Error("failed to set up graph mirror", "error", err)
		os.Exit(1)
	}
	defer func() {
		if graphClient != nil {
			if err := graphClient.Close(context.Background()); err != nil {
				logger.Warn("closing graph client failed", "error", err)
			}
		}
	}()

	storeOpts := []store.Option{}
	if repo != nil {
		storeOpts = append(storeOpts, store.WithMirror(repo))
	}
	graphStore := store.New(logger, storeOpts...)

	if repo != nil && cfg.Graph.WarmLoad {
		accounts, follows, posts, err := repo.LoadAll(ctx)
		if err != nil {
			logger.Error("warm load from graph failed", "error", err)
			os.Exit(1)
		}
		graphStore.Restore(accounts, follows, posts)
		logger.Info("warm load complete",
			"accounts", len(accounts), "follows", len(follows), "posts", len(posts))
	}

	publisher, err := buildPublisher(logger, cfg)
	if err != nil {
		logger.Error("failed to connect event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	traversal := engine.New(graphStore)
	searchIndex := search.New(graphStore)
	socialService := service.NewSocialService(graphStore, traversal, searchIndex, publisher, logger)
	apiHandlers := server.NewAPIHandlers(logger, socialService)

	var httpMetrics *metrics.Metrics
	if cfg.HTTP.MetricsEnabled {
		httpMetrics = metrics.New()
	}

	router := server.NewRouter(logger, server.RouterDependencies{
		Health:           server.MirrorHealthService{Client: graphClient},
		API:              apiHandlers,
		Metrics:          httpMetrics,
		AllowedOrigins:   parseAllowedOrigins(cfg.HTTP.AllowedOriginsCSV),
		AllowCredentials: true,
	})

	srv := server.New(logger, cfg.HTTP, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("server stopped unexpectedly", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

// buildMirror connects the optional neo4j write-through mirror. An empty URI
// means the service runs on the in-memory store alone.
func buildMirror(ctx context.Context, logger *slog.Logger, cfg config.Config) (graph.Client, *repository.Repository, error) {
	if cfg.Graph.URI == "" {
		logger.Info("graph mirror disabled, running in-memory only")
		return nil, nil, nil
	}

	opts := graph.Options{
		URI:            cfg.Graph.URI,
		Database:       cfg.Graph.Database,
		Username:       cfg.Graph.Username,
		Password:       cfg.Graph.Password,
		MaxConnections: cfg.Graph.MaxConnections,
	}
	client, err := graph.NewNeo4jClient(ctx, opts)
	if err != nil {
		return nil, nil, err
	}

	repo := repository.New(client)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = client.Close(ctx)
		return nil, nil, err
	}
	return client, repo, nil
}

func buildPublisher(logger *slog.Logger, cfg config.Config) (events.Publisher, error) {
	if cfg.Events.URL == "" {
		logger.Info("event publisher disabled")
		return events.Noop{}, nil
	}
	return events.NewNatsPublisher(cfg.Events.URL, cfg.Events.SubjectBase)
}

func parseAllowedOrigins(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	var origins []string
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		origins = append(origins, origin)
	}
	return origins
}
