// Package repository mirrors the in-memory social graph into a cypher
// backing store. The memory store stays authoritative; every committed
// mutation is replayed here as an idempotent statement, and LoadAll can warm
// the store from the persisted graph at startup.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/devansh/connectly/backend/internal/domain"
	"github.com/devansh/connectly/backend/internal/graph"
)

const (
	ensureSchemaCypher = `CREATE CONSTRAINT account_id_unique IF NOT EXISTS FOR (a:Account) REQUIRE a.id IS UNIQUE`

	saveAccountCypher = `MERGE (a:Account {id: $accountId})
SET a += $props`

	saveFollowCypher = `MATCH (a:Account {id: $followerId}), (b:Account {id: $followeeId})
MERGE (a)-[:FOLLOWS]->(b)`

	removeFollowCypher = `MATCH (a:Account {id: $followerId})-[f:FOLLOWS]->(b:Account {id: $followeeId})
DELETE f`

	savePostCypher = `MATCH (a:Account {id: $authorId})
MERGE (p:Post {id: $postId})
SET p.content = $content, p.createdAt = $createdAt
MERGE (a)-[:POSTED]->(p)`

	loadAccountsCypher = `MATCH (a:Account)
RETURN a.id AS id, a.displayName AS displayName, a.handle AS handle,
       a.email AS email, a.bio AS bio, a.avatarRef AS avatarRef,
       a.createdAt AS createdAt, a.updatedAt AS updatedAt`

	loadFollowsCypher = `MATCH (a:Account)-[:FOLLOWS]->(b:Account)
RETURN a.id AS followerId, b.id AS followeeId`

	loadPostsCypher = `MATCH (a:Account)-[:POSTED]->(p:Post)
RETURN p.id AS id, a.id AS authorId, p.content AS content, p.createdAt AS createdAt`
)

// Repository persists graph mutations through a graph.Client.
type Repository struct {
	client graph.Client
}

// New instantiates a Repository backed by the supplied graph client.
func New(client graph.Client) *Repository {
	return &Repository{client: client}
}

// EnsureSchema creates the uniqueness constraint backing id lookups. Safe to
// call on every startup.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.client.ExecuteWrite(ctx, ensureSchemaCypher, nil); err != nil {
		return fmt.Errorf("ensure graph schema: %w", err)
	}
	return nil
}

// SaveAccount upserts the account node with its latest profile fields.
func (r *Repository) SaveAccount(ctx context.Context, acc domain.Account) error {
	params := map[string]any{
		"accountId": acc.ID,
		"props": map[string]any{
			"displayName": acc.DisplayName,
			"handle":      acc.Handle,
			"email":       acc.Email,
			"bio":         acc.Bio,
			"avatarRef":   acc.AvatarRef,
			"createdAt":   formatTime(acc.CreatedAt),
			"updatedAt":   formatTime(acc.UpdatedAt),
		},
	}
	if _, err := r.client.ExecuteWrite(ctx, saveAccountCypher, params); err != nil {
		return fmt.Errorf("save account %s: %w", acc.ID, err)
	}
	return nil
}

// SaveFollow merges the FOLLOWS edge. MERGE keeps the operation idempotent,
// matching the store's follow semantics.
func (r *Repository) SaveFollow(ctx context.Context, followerID, followeeID string) error {
	params := map[string]any{
		"followerId": followerID,
		"followeeId": followeeID,
	}
	if _, err := r.client.ExecuteWrite(ctx, saveFollowCypher, params); err != nil {
		return fmt.Errorf("save follow %s->%s: %w", followerID, followeeID, err)
	}
	return nil
}

// RemoveFollow deletes the FOLLOWS edge if it exists.
func (r *Repository) RemoveFollow(ctx context.Context, followerID, followeeID string) error {
	params := map[string]any{
		"followerId": followerID,
		"followeeId": followeeID,
	}
	if _, err := r.client.ExecuteWrite(ctx, removeFollowCypher, params); err != nil {
		return fmt.Errorf("remove follow %s->%s: %w", followerID, followeeID, err)
	}
	return nil
}

// SavePost upserts a post node linked to its author.
func (r *Repository) SavePost(ctx context.Context, post domain.Post) error {
	params := map[string]any{
		"postId":    post.ID,
		"authorId":  post.AuthorID,
		"content":   post.Content,
		"createdAt": formatTime(post.CreatedAt),
	}
	if _, err := r.client.ExecuteWrite(ctx, savePostCypher, params); err != nil {
		return fmt.Errorf("save post %s: %w", post.ID, err)
	}
	return nil
}

// LoadAll reads the full persisted graph for warm-loading the store.
func (r *Repository) LoadAll(ctx context.Context) ([]domain.Account, [][2]string, []domain.Post, error) {
	accountsRes, err := r.client.ExecuteRead(ctx, loadAccountsCypher, nil)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load accounts: %w", err)
	}
	accounts := make([]domain.Account, 0, len(accountsRes.Records))
	for _, rec := range accountsRes.Records {
		id := rec.String("id")
		if id == "" {
			continue
		}
		accounts = append(accounts, domain.Account{
			ID:          id,
			DisplayName: rec.String("displayName"),
			Handle:      rec.String("handle"),
			Email:       rec.String("email"),
			Bio:         rec.String("bio"),
			AvatarRef:   rec.String("avatarRef"),
			CreatedAt:   parseTime(rec.String("createdAt")),
			UpdatedAt:   parseTime(rec.String("updatedAt")),
		})
	}

	followsRes, err := r.client.ExecuteRead(ctx, loadFollowsCypher, nil)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load follows: %w", err)
	}
	follows := make([][2]string, 0, len(followsRes.Records))
	for _, rec := range followsRes.Records {
		from, to := rec.String("followerId"), rec.String("followeeId")
		if from == "" || to == "" {
			continue
		}
		follows = append(follows, [2]string{from, to})
	}

	postsRes, err := r.client.ExecuteRead(ctx, loadPostsCypher, nil)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load posts: %w", err)
	}
	posts := make([]domain.Post, 0, len(postsRes.Records))
	for _, rec := range postsRes.Records {
		id := rec.String("id")
		if id == "" {
			continue
		}
		posts = append(posts, domain.Post{
			ID:        id,
			AuthorID:  rec.String("authorId"),
			Content:   rec.String("content"),
			CreatedAt: parseTime(rec.String("createdAt")),
		})
	}

	return accounts, follows, posts, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
