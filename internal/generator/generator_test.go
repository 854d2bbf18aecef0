package generator

import (
	"context"
	"testing"
)

func TestGenerateDeterministicWithSeed(t *testing.T) {
	cfg := Config{NumAccounts: 50, NumFollows: 200, NumPosts: 30, Seed: 7}
	ctx := context.Background()

	first, err := New(cfg).Generate(ctx)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	second, err := New(cfg).Generate(ctx)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if len(first.Accounts) != 50 || len(first.Follows) != 200 || len(first.Posts) != 30 {
		t.Fatalf("unexpected dataset sizes: %d/%d/%d", len(first.Accounts), len(first.Follows), len(first.Posts))
	}
	for i := range first.Accounts {
		if first.Accounts[i] != second.Accounts[i] {
			t.Fatalf("account %d differs between runs with the same seed", i)
		}
	}
	for i := range first.Follows {
		if first.Follows[i] != second.Follows[i] {
			t.Fatalf("follow %d differs between runs with the same seed", i)
		}
	}
}

func TestGenerateNoSelfFollows(t *testing.T) {
	dataset, err := New(Config{NumAccounts: 20, NumFollows: 500, Seed: 3}).Generate(context.Background())
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	for _, edge := range dataset.Follows {
		if edge.FollowerID == edge.FolloweeID {
			t.Fatalf("generated self follow for %s", edge.FollowerID)
		}
	}
}

func TestGenerateUniqueUsernames(t *testing.T) {
	dataset, err := New(Config{NumAccounts: 200, NumFollows: 10, Seed: 11}).Generate(context.Background())
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	seen := make(map[string]struct{}, len(dataset.Accounts))
	for _, acc := range dataset.Accounts {
		if _, dup := seen[acc.Username]; dup {
			t.Fatalf("duplicate username %s", acc.Username)
		}
		seen[acc.Username] = struct{}{}
	}
}

func TestGenerateRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New(Config{NumAccounts: 10, NumFollows: 10, Seed: 1}).Generate(ctx); err == nil {
		t.Fatalf("expected context error")
	}
}
