package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/devansh/connectly/backend/internal/domain"
)

func newTestStore(opts ...Option) *Store {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	seq := 0
	base := []Option{
		WithClock(func() time.Time { return time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC) }),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("gen-%d", seq)
		}),
	}
	return New(logger, append(base, opts...)...)
}

func mustCreate(t *testing.T, s *Store, id, name, handle string) domain.Account {
	t.Helper()
	acc, err := s.CreateAccount(context.Background(), AccountInput{
		ID:          id,
		DisplayName: name,
		Handle:      handle,
	})
	if err != nil {
		t.Fatalf("create account %s: %v", handle, err)
	}
	return acc
}

func TestCreateAccountDefaults(t *testing.T) {
	s := newTestStore()

	acc, err := s.CreateAccount(context.Background(), AccountInput{
		DisplayName: "  Jane Doe  ",
		Handle:      "jane_doe",
	})
	if err != nil {
		t.Fatalf("create account failed: %v", err)
	}
	if acc.ID != "gen-1" {
		t.Fatalf("expected generated id gen-1, got %q", acc.ID)
	}
	if acc.DisplayName != "Jane Doe" {
		t.Fatalf("expected trimmed display name, got %q", acc.DisplayName)
	}
	if acc.AvatarRef != "avatar_1" {
		t.Fatalf("expected default avatar, got %q", acc.AvatarRef)
	}
	if !acc.CreatedAt.Equal(acc.UpdatedAt) {
		t.Fatalf("expected CreatedAt == UpdatedAt on creation")
	}
}

func TestCreateAccountValidation(t *testing.T) {
	cases := []struct {
		name  string
		input AccountInput
		field string
	}{
		{"empty name", AccountInput{DisplayName: "   ", Handle: "valid_handle"}, "displayName"},
		{"long name", AccountInput{DisplayName: strings.Repeat("a", 51), Handle: "valid_handle"}, "displayName"},
		{"short handle", AccountInput{DisplayName: "Jane", Handle: "ab"}, "handle"},
		{"handle bad chars", AccountInput{DisplayName: "Jane", Handle: "jane-doe!"}, "handle"},
		{"bad email", AccountInput{DisplayName: "Jane", Handle: "jane_doe", Email: "not-an-email"}, "email"},
		{"long bio", AccountInput{DisplayName: "Jane", Handle: "jane_doe", Bio: strings.Repeat("b", 161)}, "bio"},
		{"bad avatar", AccountInput{DisplayName: "Jane", Handle: "jane_doe", AvatarRef: "avatar_11"}, "avatarRef"},
		{"bad id", AccountInput{ID: "has spaces", DisplayName: "Jane", Handle: "jane_doe"}, "id"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestStore()
			_, err := s.CreateAccount(context.Background(), tc.input)
			var fieldErr *domain.InvalidFieldError
			if !errors.As(err, &fieldErr) {
				t.Fatalf("expected InvalidFieldError, got %v", err)
			}
			if fieldErr.Field != tc.field {
				t.Fatalf("expected field %q, got %q (%v)", tc.field, fieldErr.Field, err)
			}
		})
	}
}

func TestCreateAccountRejectsFailedStateChange(t *testing.T) {
	s := newTestStore()
	mustCreate(t, s, "acc-1", "Jane", "jane_doe")

	_, err := s.CreateAccount(context.Background(), AccountInput{DisplayName: "Other", Handle: "jane_doe"})
	if !errors.Is(err, domain.ErrDuplicateHandle) {
		t.Fatalf("expected ErrDuplicateHandle, got %v", err)
	}
	if got := s.Stats().Accounts; got != 1 {
		t.Fatalf("failed create must leave no partial state, have %d accounts", got)
	}
}

func TestCreateAccountDuplicateHandleCaseInsensitive(t *testing.T) {
	s := newTestStore()
	mustCreate(t, s, "acc-1", "Jane", "jane_doe")

	_, err := s.CreateAccount(context.Background(), AccountInput{DisplayName: "Impostor", Handle: "Jane_Doe"})
	if !errors.Is(err, domain.ErrDuplicateHandle) {
		t.Fatalf("expected ErrDuplicateHandle for case variant, got %v", err)
	}
}

func TestCreateAccountDuplicateID(t *testing.T) {
	s := newTestStore()
	mustCreate(t, s, "acc-1", "Jane", "jane_doe")

	_, err := s.CreateAccount(context.Background(), AccountInput{ID: "acc-1", DisplayName: "Other", Handle: "other_user"})
	var fieldErr *domain.InvalidFieldError
	if !errors.As(err, &fieldErr) || fieldErr.Field != "id" {
		t.Fatalf("expected InvalidFieldError on id, got %v", err)
	}
}

func TestUpdateAccountPartial(t *testing.T) {
	s := newTestStore()
	mustCreate(t, s, "acc-1", "Jane", "jane_doe")

	bio := "New bio"
	updated, err := s.UpdateAccount(context.Background(), "acc-1", AccountUpdate{Bio: &bio})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Bio != "New bio" {
		t.Fatalf("expected bio updated, got %q", updated.Bio)
	}
	if updated.Handle != "jane_doe" || updated.DisplayName != "Jane" {
		t.Fatalf("untouched fields must survive, got %+v", updated)
	}
}

func TestUpdateAccountKeepsOwnHandle(t *testing.T) {
	s := newTestStore()
	mustCreate(t, s, "acc-1", "Jane", "jane_doe")

	handle := "jane_doe"
	if _, err := s.UpdateAccount(context.Background(), "acc-1", AccountUpdate{Handle: &handle}); err != nil {
		t.Fatalf("reusing own handle must succeed, got %v", err)
	}

	variant := "Jane_Doe"
	updated, err := s.UpdateAccount(context.Background(), "acc-1", AccountUpdate{Handle: &variant})
	if err != nil {
		t.Fatalf("changing case of own handle must succeed, got %v", err)
	}
	if updated.Handle != "Jane_Doe" {
		t.Fatalf("expected updated handle casing, got %q", updated.Handle)
	}
}

func TestUpdateAccountDuplicateHandle(t *testing.T) {
	s := newTestStore()
	mustCreate(t, s, "acc-1", "Jane", "jane_doe")
	mustCreate(t, s, "acc-2", "John", "john_doe")

	handle := "jane_doe"
	_, err := s.UpdateAccount(context.Background(), "acc-2", AccountUpdate{Handle: &handle})
	if !errors.Is(err, domain.ErrDuplicateHandle) {
		t.Fatalf("expected ErrDuplicateHandle, got %v", err)
	}
}

func TestUpdateAccountNotFound(t *testing.T) {
	s := newTestStore()
	bio := "hello"
	if _, err := s.UpdateAccount(context.Background(), "missing", AccountUpdate{Bio: &bio}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFollowRules(t *testing.T) {
	s := newTestStore()
	mustCreate(t, s, "acc-1", "Jane", "jane_doe")
	mustCreate(t, s, "acc-2", "John", "john_doe")
	ctx := context.Background()

	if err := s.Follow(ctx, "acc-1", "acc-1"); !errors.Is(err, domain.ErrSelfFollow) {
		t.Fatalf("expected ErrSelfFollow, got %v", err)
	}
	if err := s.Follow(ctx, "acc-1", "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown followee, got %v", err)
	}
	if err := s.Follow(ctx, "missing", "acc-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown follower, got %v", err)
	}

	if err := s.Follow(ctx, "acc-1", "acc-2"); err != nil {
		t.Fatalf("follow failed: %v", err)
	}
	if err := s.Follow(ctx, "acc-1", "acc-2"); err != nil {
		t.Fatalf("re-follow must be a no-op, got %v", err)
	}

	followers, err := s.FollowerCount("acc-2")
	if err != nil {
		t.Fatalf("follower count: %v", err)
	}
	if followers != 1 {
		t.Fatalf("expected exactly 1 follower after duplicate follow, got %d", followers)
	}
}

func TestUnfollowIdempotent(t *testing.T) {
	s := newTestStore()
	mustCreate(t, s, "acc-1", "Jane", "jane_doe")
	mustCreate(t, s, "acc-2", "John", "john_doe")
	ctx := context.Background()

	if err := s.Unfollow(ctx, "acc-1", "acc-2"); err != nil {
		t.Fatalf("unfollow of absent edge must succeed, got %v", err)
	}

	if err := s.Follow(ctx, "acc-1", "acc-2"); err != nil {
		t.Fatalf("follow failed: %v", err)
	}
	if err := s.Unfollow(ctx, "acc-1", "acc-2"); err != nil {
		t.Fatalf("unfollow failed: %v", err)
	}
	count, err := s.FollowerCount("acc-2")
	if err != nil {
		t.Fatalf("follower count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 followers after unfollow, got %d", count)
	}
}

func TestConcurrentFollowsLeaveOneEdge(t *testing.T) {
	s := newTestStore()
	mustCreate(t, s, "acc-1", "Jane", "jane_doe")
	mustCreate(t, s, "acc-2", "John", "john_doe")

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Follow(context.Background(), "acc-1", "acc-2"); err != nil {
				t.Errorf("concurrent follow failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := s.Stats().Edges; got != 1 {
		t.Fatalf("expected exactly 1 edge, got %d", got)
	}
}

func TestGetAccountByHandleExactCase(t *testing.T) {
	s := newTestStore()
	mustCreate(t, s, "acc-1", "Jane", "Jane_Doe")

	if _, err := s.GetAccountByHandle("Jane_Doe"); err != nil {
		t.Fatalf("exact-case lookup failed: %v", err)
	}
	if _, err := s.GetAccountByHandle("jane_doe"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("case-variant lookup must miss, got %v", err)
	}
}

func TestCreatePost(t *testing.T) {
	s := newTestStore()
	mustCreate(t, s, "acc-1", "Jane", "jane_doe")
	ctx := context.Background()

	if _, err := s.CreatePost(ctx, "acc-1", "   "); !domain.IsInvalidField(err) {
		t.Fatalf("expected InvalidFieldError for blank content, got %v", err)
	}
	long := make([]byte, 501)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := s.CreatePost(ctx, "acc-1", string(long)); !domain.IsInvalidField(err) {
		t.Fatalf("expected InvalidFieldError for oversized content, got %v", err)
	}
	if _, err := s.CreatePost(ctx, "missing", "hi"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown author, got %v", err)
	}

	post, err := s.CreatePost(ctx, "acc-1", "  hello world  ")
	if err != nil {
		t.Fatalf("create post failed: %v", err)
	}
	if post.Content != "hello world" {
		t.Fatalf("expected trimmed content, got %q", post.Content)
	}
	if post.AuthorID != "acc-1" {
		t.Fatalf("expected author acc-1, got %q", post.AuthorID)
	}
}

func TestRestoreDropsInvalidEdges(t *testing.T) {
	s := newTestStore()
	now := time.Now().UTC()
	accounts := []domain.Account{
		{ID: "acc-1", DisplayName: "Jane", Handle: "jane_doe", CreatedAt: now, UpdatedAt: now},
		{ID: "acc-2", DisplayName: "John", Handle: "john_doe", CreatedAt: now, UpdatedAt: now},
	}
	follows := [][2]string{
		{"acc-1", "acc-2"},
		{"acc-1", "acc-1"},
		{"acc-1", "ghost"},
		{"ghost", "acc-2"},
	}
	posts := []domain.Post{
		{ID: "post-1", AuthorID: "acc-1", Content: "hi", CreatedAt: now},
		{ID: "post-2", AuthorID: "ghost", Content: "boo", CreatedAt: now},
	}

	s.Restore(accounts, follows, posts)

	stats := s.Stats()
	if stats.Accounts != 2 || stats.Edges != 1 || stats.Posts != 1 {
		t.Fatalf("unexpected stats after restore: %+v", stats)
	}
	if _, err := s.GetAccountByHandle("jane_doe"); err != nil {
		t.Fatalf("handle index must be rebuilt, got %v", err)
	}
}

type recordingMirror struct {
	mu       sync.Mutex
	accounts []string
	follows  [][2]string
	removes  [][2]string
	posts    []string
	fail     bool
}

func (m *recordingMirror) SaveAccount(_ context.Context, acc domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("mirror down")
	}
	m.accounts = append(m.accounts, acc.ID)
	return nil
}

func (m *recordingMirror) SaveFollow(_ context.Context, followerID, followeeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("mirror down")
	}
	m.follows = append(m.follows, [2]string{followerID, followeeID})
	return nil
}

func (m *recordingMirror) RemoveFollow(_ context.Context, followerID, followeeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removes = append(m.removes, [2]string{followerID, followeeID})
	return nil
}

func (m *recordingMirror) SavePost(_ context.Context, post domain.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts = append(m.posts, post.ID)
	return nil
}

func TestMirrorReceivesCommittedMutations(t *testing.T) {
	mirror := &recordingMirror{}
	s := newTestStore(WithMirror(mirror))
	ctx := context.Background()

	mustCreate(t, s, "acc-1", "Jane", "jane_doe")
	mustCreate(t, s, "acc-2", "John", "john_doe")
	if err := s.Follow(ctx, "acc-1", "acc-2"); err != nil {
		t.Fatalf("follow failed: %v", err)
	}
	// A duplicate follow commits nothing, so the mirror must not hear of it.
	if err := s.Follow(ctx, "acc-1", "acc-2"); err != nil {
		t.Fatalf("re-follow failed: %v", err)
	}
	if err := s.Unfollow(ctx, "acc-1", "acc-2"); err != nil {
		t.Fatalf("unfollow failed: %v", err)
	}
	if _, err := s.CreatePost(ctx, "acc-1", "hello"); err != nil {
		t.Fatalf("create post failed: %v", err)
	}

	if len(mirror.accounts) != 2 {
		t.Fatalf("expected 2 mirrored accounts, got %d", len(mirror.accounts))
	}
	if len(mirror.follows) != 1 {
		t.Fatalf("expected 1 mirrored follow, got %d", len(mirror.follows))
	}
	if len(mirror.removes) != 1 {
		t.Fatalf("expected 1 mirrored removal, got %d", len(mirror.removes))
	}
	if len(mirror.posts) != 1 {
		t.Fatalf("expected 1 mirrored post, got %d", len(mirror.posts))
	}
}

func TestMirrorFailureIsNonFatal(t *testing.T) {
	mirror := &recordingMirror{fail: true}
	s := newTestStore(WithMirror(mirror))

	acc := mustCreate(t, s, "acc-1", "Jane", "jane_doe")
	if _, err := s.GetAccount(acc.ID); err != nil {
		t.Fatalf("memory state must be committed despite mirror failure: %v", err)
	}
}

func TestReadViewConsistency(t *testing.T) {
	s := newTestStore()
	mustCreate(t, s, "acc-1", "Jane", "jane_doe")
	mustCreate(t, s, "acc-2", "John", "john_doe")
	if err := s.Follow(context.Background(), "acc-1", "acc-2"); err != nil {
		t.Fatalf("follow failed: %v", err)
	}

	err := s.ReadView(func(v *View) error {
		if !v.Follows("acc-1", "acc-2") {
			t.Fatalf("expected edge acc-1 -> acc-2")
		}
		if v.Follows("acc-2", "acc-1") {
			t.Fatalf("edges are directed, reverse must not exist")
		}
		profile, ok := v.Profile("acc-2")
		if !ok {
			t.Fatalf("profile lookup failed")
		}
		if profile.FollowerCount != 1 || profile.FollowingCount != 0 {
			t.Fatalf("unexpected counts: %+v", profile)
		}
		count := 0
		v.EachAccount(func(domain.Account) { count++ })
		if count != 2 {
			t.Fatalf("expected to visit 2 accounts, visited %d", count)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("read view failed: %v", err)
	}
}
