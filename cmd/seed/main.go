package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/devansh/connectly/backend/internal/config"
	"github.com/devansh/connectly/backend/internal/engine"
	"github.com/devansh/connectly/backend/internal/events"
	"github.com/devansh/connectly/backend/internal/graph"
	"github.com/devansh/connectly/backend/internal/logging"
	"github.com/devansh/connectly/backend/internal/repository"
	"github.com/devansh/connectly/backend/internal/search"
	"github.com/devansh/connectly/backend/internal/service"
	"github.com/devansh/connectly/backend/internal/store"
)

var errMissingDataset = errors.New("dataset not found")

func main() {
	var (
		datasetDir   = flag.String("dataset-dir", "./seed-data", "Directory containing accounts.json, follows.json and posts.json")
		accountsPath = flag.String("accounts", "", "Path to accounts.json (overrides dataset-dir)")
		followsPath  = flag.String("follows", "", "Path to follows.json (overrides dataset-dir)")
		postsPath    = flag.String("posts", "", "Path to posts.json (overrides dataset-dir)")
		workers      = flag.Int("workers", 4, "Number of concurrent workers for seeding")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging).With("component", "seed")

	accountsFile, followsFile, postsFile, err := resolveDatasetPaths(*datasetDir, *accountsPath, *followsPath, *postsPath)
	if err != nil {
		logger.Error("dataset resolution failed", "error", err)
		os.Exit(1)
	}

	var accounts []service.AccountSeed
	if err := loadJSON(accountsFile, &accounts); err != nil {
		logger.Error("failed to load accounts", "error", err, "path", accountsFile)
		os.Exit(1)
	}
	if len(accounts) == 0 {
		logger.Error("accounts dataset empty", "path", accountsFile)
		os.Exit(1)
	}

	var follows []service.FollowSeed
	if err := loadJSON(followsFile, &follows); err != nil {
		logger.Error("failed to load follows", "error", err, "path", followsFile)
		os.Exit(1)
	}

	var posts []service.PostSeed
	if postsFile != "" {
		if err := loadJSON(postsFile, &posts); err != nil {
			logger.Error("failed to load posts", "error", err, "path", postsFile)
			os.Exit(1)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	graphClient, err := buildGraphClient(ctx, logger, cfg)
	if err != nil {
		logger.Error("failed to create graph client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := graphClient.Close(context.Background()); err != nil {
			logger.Warn("closing graph client failed", "error", err)
		}
	}()

	repo := repository.New(graphClient)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Error("schema setup failed", "error", err)
		os.Exit(1)
	}

	graphStore := store.New(logger, store.WithMirror(repo))
	svc := service.NewSocialService(graphStore, engine.New(graphStore), search.New(graphStore), events.Noop{}, logger)
	loader := service.NewBulkLoader(svc, *workers)

	start := time.Now()
	logger.Info("seeding accounts", "count", len(accounts), "workers", *workers)
	if err := loader.LoadAccounts(ctx, accounts); err != nil {
		logger.Error("account seeding failed", "error", err)
		os.Exit(1)
	}

	logger.Info("seeding follows", "count", len(follows))
	if err := loader.LoadFollows(ctx, follows); err != nil {
		logger.Error("follow seeding failed", "error", err)
		os.Exit(1)
	}

	if len(posts) > 0 {
		logger.Info("seeding posts", "count", len(posts))
		if err := loader.LoadPosts(ctx, posts); err != nil {
			logger.Error("post seeding failed", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("seeding complete", "duration", time.Since(start).String(),
		"accounts", len(accounts), "follows", len(follows), "posts", len(posts))
}

func resolveDatasetPaths(baseDir, accountsPath, followsPath, postsPath string) (string, string, string, error) {
	resolve := func(explicitPath, fallbackFile string, required bool) (string, error) {
		if explicitPath != "" {
			if _, err := os.Stat(explicitPath); err != nil {
				return "", fmt.Errorf("stat %s: %w", explicitPath, err)
			}
			return explicitPath, nil
		}
		path := filepath.Join(baseDir, fallbackFile)
		if _, err := os.Stat(path); err != nil {
			if required {
				return "", fmt.Errorf("%w: %s", errMissingDataset, path)
			}
			return "", nil
		}
		return path, nil
	}

	accountsFile, err := resolve(accountsPath, "accounts.json", true)
	if err != nil {
		return "", "", "", err
	}
	followsFile, err := resolve(followsPath, "follows.json", true)
	if err != nil {
		return "", "", "", err
	}
	// Posts are optional: older datasets only contain the graph.
	postsFile, err := resolve(postsPath, "posts.json", false)
	if err != nil {
		return "", "", "", err
	}
	return accountsFile, followsFile, postsFile, nil
}

func loadJSON(path string, target any) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func buildGraphClient(ctx context.Context, logger *slog.Logger, cfg config.Config) (graph.Client, error) {
	if cfg.Graph.URI == "" {
		return nil, fmt.Errorf("GRAPH_URI is required for seeding")
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
		return nil, err
	}
	if err := client.VerifyConnectivity(ctx); err != nil {
		_ = client.Close(ctx)
		return nil, err
	}
	logger.Info("connected to graph", "uri", cfg.Graph.URI, "database", cfg.Graph.Database)
	return client, nil
}
