package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/devansh/connectly/backend/internal/generator"
)

func main() {
	cfg := generator.DefaultConfig()
	var (
		accounts        = flag.Int("accounts", cfg.NumAccounts, "number of accounts to generate")
		follows         = flag.Int("follows", cfg.NumFollows, "number of follow edges to generate")
		posts           = flag.Int("posts", cfg.NumPosts, "number of posts to generate")
		hubShare        = flag.Float64("hub-share", cfg.HubAccountShare, "fraction of accounts treated as popular hubs")
		hubFollowChance = flag.Float64("hub-follow-chance", cfg.HubFollowChance, "probability a follow edge targets a hub account")
		seed            = flag.Int64("seed", cfg.Seed, "random seed for deterministic generation")
		outputDir       = flag.String("output-dir", "data", "directory to write accounts.json, follows.json and posts.json")
		writeStdout     = flag.Bool("stdout", false, "write combined dataset to stdout instead of files")
	)
	flag.Parse()

	genCfg := generator.Config{
		NumAccounts:     *accounts,
		NumFollows:      *follows,
		NumPosts:        *posts,
		HubAccountShare: clampProbability(*hubShare),
		HubFollowChance: clampProbability(*hubFollowChance),
		Seed:            *seed,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	gen := generator.New(genCfg)
	dataset, err := gen.Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	if *writeStdout {
		if err := json.NewEncoder(os.Stdout).Encode(dataset); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write dataset to stdout: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := generator.WriteDataset(dataset, *outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write dataset: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "Generated %d accounts, %d follows and %d posts into %s\n",
		len(dataset.Accounts), len(dataset.Follows), len(dataset.Posts), *outputDir)
}

func clampProbability(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
