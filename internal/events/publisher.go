// Package events publishes graph mutation notifications so downstream
// consumers (feed fan-out, notification services) can react without polling.
package events

import (
	"context"
	"time"

	"github.com/devansh/connectly/backend/internal/domain"
)

// AccountCreatedEvent is emitted after an account is committed.
type AccountCreatedEvent struct {
	AccountID string    `json:"account_id"`
	Handle    string    `json:"handle"`
	CreatedAt time.Time `json:"created_at"`
}

// FollowEvent is emitted for both follow and unfollow mutations; the subject
// distinguishes the direction.
type FollowEvent struct {
	FollowerID string    `json:"follower_id"`
	FolloweeID string    `json:"followee_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PostCreatedEvent is emitted after a post is committed.
type PostCreatedEvent struct {
	PostID    string    `json:"post_id"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Publisher delivers graph events. Delivery is best-effort: the facade logs
// publish failures and never fails the originating request over them.
type Publisher interface {
	AccountCreated(ctx context.Context, acc domain.Account) error
	Followed(ctx context.Context, followerID, followeeID string) error
	Unfollowed(ctx context.Context, followerID, followeeID string) error
	PostCreated(ctx context.Context, post domain.Post) error
	Close() error
}

// Noop drops all events. Used when no broker is configured.
type Noop struct{}

func (Noop) AccountCreated(context.Context, domain.Account) error { return nil }
func (Noop) Followed(context.Context, string, string) error       { return nil }
func (Noop) Unfollowed(context.Context, string, string) error     { return nil }
func (Noop) PostCreated(context.Context, domain.Post) error       { return nil }
func (Noop) Close() error                                         { return nil }
