package service

import (
	"context"
	"errors"
	"sync"
)

// TaskError accumulates multiple errors produced during bulk loading.
type TaskError struct {
	Errors []error
}

func (e *TaskError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := "multiple errors:"
	for _, err := range e.Errors {
		msg += " " + err.Error() + ";"
	}
	return msg
}

func (e *TaskError) append(err error) {
	if err == nil {
		return
	}
	e.Errors = append(e.Errors, err)
}

func (e *TaskError) asError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// AccountSeed describes one account in a seed dataset. Field names follow
// the public API payloads so generated files double as request examples.
type AccountSeed struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Bio      string `json:"bio,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// FollowSeed describes one directed edge in a seed dataset.
type FollowSeed struct {
	FollowerID string `json:"followerId"`
	FolloweeID string `json:"followeeId"`
}

// PostSeed describes one post in a seed dataset.
type PostSeed struct {
	AuthorID string `json:"authorId"`
	Content  string `json:"content"`
}

// BulkLoader pushes seed datasets through the façade with a worker pool. The
// store's idempotent mutations make duplicate edges in the dataset harmless.
type BulkLoader struct {
	service *SocialService
	workers int
}

// NewBulkLoader creates a BulkLoader with the provided concurrency.
func NewBulkLoader(service *SocialService, workers int) *BulkLoader {
	if workers <= 0 {
		workers = 4
	}
	return &BulkLoader{
		service: service,
		workers: workers,
	}
}

// LoadAccounts onboards the provided accounts concurrently.
func (bl *BulkLoader) LoadAccounts(ctx context.Context, accounts []AccountSeed) error {
	return bl.run(ctx, len(accounts), func(idx int) error {
		seed := accounts[idx]
		_, err := bl.service.Onboard(ctx, AccountParams{
			ID:          seed.ID,
			DisplayName: seed.Name,
			Handle:      seed.Username,
			Email:       seed.Email,
			Bio:         seed.Bio,
			AvatarRef:   seed.Avatar,
		})
		return err
	})
}

// LoadFollows creates the provided edges concurrently.
func (bl *BulkLoader) LoadFollows(ctx context.Context, follows []FollowSeed) error {
	return bl.run(ctx, len(follows), func(idx int) error {
		return bl.service.Follow(ctx, follows[idx].FollowerID, follows[idx].FolloweeID)
	})
}

// LoadPosts creates the provided posts concurrently.
func (bl *BulkLoader) LoadPosts(ctx context.Context, posts []PostSeed) error {
	return bl.run(ctx, len(posts), func(idx int) error {
		_, err := bl.service.CreatePost(ctx, posts[idx].AuthorID, posts[idx].Content)
		return err
	})
}

func (bl *BulkLoader) run(ctx context.Context, total int, workerFn func(idx int) error) error {
	if total == 0 {
		return nil
	}
	indexCh := make(chan int)
	errCh := make(chan error, total)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for idx := range indexCh {
			if err := workerFn(idx); err != nil {
				select {
				case errCh <- err:
				case <-ctx.Done():
					return
				}
			}
		}
	}

	for i := 0; i < bl.workers; i++ {
		wg.Add(1)
		go worker()
	}

Loop:
	for i := 0; i < total; i++ {
		select {
		case indexCh <- i:
		case <-ctx.Done():
			break Loop
		}
	}
	close(indexCh)
	wg.Wait()
	close(errCh)

	var taskErr TaskError
	for err := range errCh {
		if err == nil {
			continue
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		taskErr.append(err)
	}
	return taskErr.asError()
}
