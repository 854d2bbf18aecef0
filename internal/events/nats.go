package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/devansh/connectly/backend/internal/domain"
)

// NatsPublisher publishes events to NATS subjects under a configurable base,
// e.g. social.followed, social.account.created.
type NatsPublisher struct {
	nc          *nats.Conn
	subjectBase string
}

// NewNatsPublisher connects to the broker at url.
func NewNatsPublisher(url, subjectBase string) (*NatsPublisher, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	if subjectBase == "" {
		subjectBase = "social"
	}
	return &NatsPublisher{nc: nc, subjectBase: subjectBase}, nil
}

func (p *NatsPublisher) AccountCreated(_ context.Context, acc domain.Account) error {
	return p.publish("account.created", AccountCreatedEvent{
		AccountID: acc.ID,
		Handle:    acc.Handle,
		CreatedAt: acc.CreatedAt,
	})
}

func (p *NatsPublisher) Followed(_ context.Context, followerID, followeeID string) error {
	return p.publish("followed", FollowEvent{
		FollowerID: followerID,
		FolloweeID: followeeID,
		OccurredAt: time.Now().UTC(),
	})
}

func (p *NatsPublisher) Unfollowed(_ context.Context, followerID, followeeID string) error {
	return p.publish("unfollowed", FollowEvent{
		FollowerID: followerID,
		FolloweeID: followeeID,
		OccurredAt: time.Now().UTC(),
	})
}

func (p *NatsPublisher) PostCreated(_ context.Context, post domain.Post) error {
	return p.publish("post.created", PostCreatedEvent{
		PostID:    post.ID,
		AuthorID:  post.AuthorID,
		CreatedAt: post.CreatedAt,
	})
}

// Close flushes pending messages before dropping the connection.
func (p *NatsPublisher) Close() error {
	if err := p.nc.Flush(); err != nil {
		p.nc.Close()
		return err
	}
	p.nc.Close()
	return nil
}

func (p *NatsPublisher) publish(suffix string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", suffix, err)
	}
	subject := p.subjectBase + "." + suffix
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}
