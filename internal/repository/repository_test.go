package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/devansh/connectly/backend/internal/domain"
	"github.com/devansh/connectly/backend/internal/graph"
)

func TestSaveAccountIssuesMerge(t *testing.T) {
	client := graph.NewMemoryClient()
	repo := New(client)

	created := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	err := repo.SaveAccount(context.Background(), domain.Account{
		ID:          "acc-1",
		DisplayName: "Jane Doe",
		Handle:      "jane_doe",
		Email:       "jane@example.com",
		AvatarRef:   "avatar_3",
		CreatedAt:   created,
		UpdatedAt:   created,
	})
	if err != nil {
		t.Fatalf("save account failed: %v", err)
	}

	calls := client.WriteCalls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 write, got %d", len(calls))
	}
	if calls[0].Query != saveAccountCypher {
		t.Fatalf("unexpected cypher: %s", calls[0].Query)
	}
	if calls[0].Params["accountId"] != "acc-1" {
		t.Fatalf("unexpected params: %v", calls[0].Params)
	}
	props, ok := calls[0].Params["props"].(map[string]any)
	if !ok {
		t.Fatalf("expected props map, got %T", calls[0].Params["props"])
	}
	if props["handle"] != "jane_doe" {
		t.Fatalf("unexpected props: %v", props)
	}
	if props["createdAt"] != "2026-01-15T12:00:00Z" {
		t.Fatalf("expected RFC3339 timestamp, got %v", props["createdAt"])
	}
}

func TestSaveAndRemoveFollow(t *testing.T) {
	client := graph.NewMemoryClient()
	repo := New(client)
	ctx := context.Background()

	if err := repo.SaveFollow(ctx, "acc-1", "acc-2"); err != nil {
		t.Fatalf("save follow failed: %v", err)
	}
	if err := repo.RemoveFollow(ctx, "acc-1", "acc-2"); err != nil {
		t.Fatalf("remove follow failed: %v", err)
	}

	calls := client.WriteCalls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 writes, got %d", len(calls))
	}
	if calls[0].Query != saveFollowCypher || calls[1].Query != removeFollowCypher {
		t.Fatalf("unexpected cypher sequence: %q then %q", calls[0].Query, calls[1].Query)
	}
	for _, call := range calls {
		if call.Params["followerId"] != "acc-1" || call.Params["followeeId"] != "acc-2" {
			t.Fatalf("unexpected params: %v", call.Params)
		}
	}
}

func TestSavePost(t *testing.T) {
	client := graph.NewMemoryClient()
	repo := New(client)

	err := repo.SavePost(context.Background(), domain.Post{
		ID:        "post-1",
		AuthorID:  "acc-1",
		Content:   "hello",
		CreatedAt: time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("save post failed: %v", err)
	}

	calls := client.WriteCalls()
	if len(calls) != 1 || calls[0].Query != savePostCypher {
		t.Fatalf("unexpected write calls: %+v", calls)
	}
	if calls[0].Params["postId"] != "post-1" || calls[0].Params["authorId"] != "acc-1" {
		t.Fatalf("unexpected params: %v", calls[0].Params)
	}
}

func TestEnsureSchema(t *testing.T) {
	client := graph.NewMemoryClient()
	repo := New(client)

	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema failed: %v", err)
	}
	calls := client.WriteCalls()
	if len(calls) != 1 || calls[0].Query != ensureSchemaCypher {
		t.Fatalf("unexpected schema calls: %+v", calls)
	}
}

func TestWriteErrorsAreWrapped(t *testing.T) {
	boom := errors.New("connection reset")
	client := graph.NewMemoryClient().WithError(boom)
	repo := New(client)

	err := repo.SaveFollow(context.Background(), "acc-1", "acc-2")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped driver error, got %v", err)
	}
}

func TestLoadAll(t *testing.T) {
	client := graph.NewMemoryClient()
	client.PushReadResult(graph.Result{Records: []graph.Record{
		{
			"id": "acc-1", "displayName": "Jane", "handle": "jane_doe",
			"email": "jane@example.com", "bio": "", "avatarRef": "avatar_1",
			"createdAt": "2026-01-15T12:00:00Z", "updatedAt": "2026-01-15T12:00:00Z",
		},
		{"displayName": "ghost row without id"},
	}})
	client.PushReadResult(graph.Result{Records: []graph.Record{
		{"followerId": "acc-1", "followeeId": "acc-2"},
		{"followerId": "acc-1"},
	}})
	client.PushReadResult(graph.Result{Records: []graph.Record{
		{"id": "post-1", "authorId": "acc-1", "content": "hello", "createdAt": "2026-01-15T13:00:00Z"},
	}})

	repo := New(client)
	accounts, follows, posts, err := repo.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("load all failed: %v", err)
	}

	if len(accounts) != 1 || accounts[0].Handle != "jane_doe" {
		t.Fatalf("unexpected accounts: %+v", accounts)
	}
	if !accounts[0].CreatedAt.Equal(time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("timestamp not parsed: %v", accounts[0].CreatedAt)
	}
	if len(follows) != 1 || follows[0] != [2]string{"acc-1", "acc-2"} {
		t.Fatalf("unexpected follows: %v", follows)
	}
	if len(posts) != 1 || posts[0].Content != "hello" {
		t.Fatalf("unexpected posts: %+v", posts)
	}

	reads := client.ReadCalls()
	if len(reads) != 3 {
		t.Fatalf("expected 3 read queries, got %d", len(reads))
	}
	if reads[0].Query != loadAccountsCypher || reads[1].Query != loadFollowsCypher || reads[2].Query != loadPostsCypher {
		t.Fatalf("unexpected read sequence")
	}
}
