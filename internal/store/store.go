// Package store owns the authoritative social graph state: accounts, directed
// follow edges, and posts. All mutation goes through this package; traversal
// and search components only ever get read access.
package store

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/devansh/connectly/backend/internal/domain"
)

// Mirror receives every committed mutation so an external graph database can
// track the in-memory state. Implementations must be idempotent; the store
// treats mirror failures as non-fatal and logs them.
type Mirror interface {
	SaveAccount(ctx context.Context, acc domain.Account) error
	SaveFollow(ctx context.Context, followerID, followeeID string) error
	RemoveFollow(ctx context.Context, followerID, followeeID string) error
	SavePost(ctx context.Context, post domain.Post) error
}

// Store keeps the graph in hash-set-backed adjacency lists keyed by account
// id. A single RWMutex serializes mutations against reads; traversals that
// span multiple adjacency lookups run inside ReadView so they never observe
// a half-applied mutation.
type Store struct {
	mu        sync.RWMutex
	accounts  map[string]domain.Account
	handleIdx map[string]string // lowercased handle -> account id
	following map[string]map[string]struct{}
	followers map[string]map[string]struct{}
	posts     map[string][]domain.Post // author id -> posts in creation order

	mirror Mirror
	logger *slog.Logger

	nowFn func() time.Time
	idFn  func() string
}

// Option customizes Store construction.
type Option func(*Store)

// WithMirror attaches a mutation mirror.
func WithMirror(m Mirror) Option {
	return func(s *Store) { s.mirror = m }
}

// WithClock overrides the time source (used in tests).
func WithClock(nowFn func() time.Time) Option {
	return func(s *Store) {
		if nowFn != nil {
			s.nowFn = nowFn
		}
	}
}

// WithIDGenerator overrides id generation (used in tests and by seed tooling).
func WithIDGenerator(idFn func() string) Option {
	return func(s *Store) {
		if idFn != nil {
			s.idFn = idFn
		}
	}
}

// New constructs an empty Store.
func New(logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		accounts:  make(map[string]domain.Account),
		handleIdx: make(map[string]string),
		following: make(map[string]map[string]struct{}),
		followers: make(map[string]map[string]struct{}),
		posts:     make(map[string][]domain.Post),
		logger:    logger,
		nowFn:     func() time.Time { return time.Now().UTC() },
		idFn:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AccountInput carries the fields accepted on account creation. ID is
// optional; when empty a UUID is generated.
type AccountInput struct {
	ID          string `validate:"omitempty,accountid"`
	DisplayName string `validate:"required,min=1,max=50"`
	Handle      string `validate:"required,handle"`
	Email       string `validate:"omitempty,email,max=254"`
	Bio         string `validate:"max=160"`
	AvatarRef   string `validate:"omitempty,avatarref"`
}

// AccountUpdate describes a partial profile update; nil fields keep their
// current value.
type AccountUpdate struct {
	DisplayName *string
	Handle      *string
	Email       *string
	Bio         *string
	AvatarRef   *string
}

// CreateAccount validates the input, enforces handle uniqueness, and commits
// a new account node. No partial effect remains on failure.
func (s *Store) CreateAccount(ctx context.Context, input AccountInput) (domain.Account, error) {
	input.DisplayName = strings.TrimSpace(input.DisplayName)
	if err := validateAccountInput(input); err != nil {
		return domain.Account{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(input.Handle)
	if _, taken := s.handleIdx[key]; taken {
		return domain.Account{}, domain.ErrDuplicateHandle
	}

	id := input.ID
	if id == "" {
		id = s.idFn()
	} else if _, exists := s.accounts[id]; exists {
		return domain.Account{}, domain.NewInvalidField("id", "already in use")
	}

	now := s.nowFn()
	acc := domain.Account{
		ID:          id,
		DisplayName: input.DisplayName,
		Handle:      input.Handle,
		Email:       input.Email,
		Bio:         input.Bio,
		AvatarRef:   defaultAvatar(input.AvatarRef),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.accounts[id] = acc
	s.handleIdx[key] = id
	s.following[id] = make(map[string]struct{})
	s.followers[id] = make(map[string]struct{})

	s.mirrorAccount(ctx, acc)
	return acc, nil
}

// UpdateAccount applies a partial update. The handle uniqueness check skips
// the account's own current handle.
func (s *Store) UpdateAccount(ctx context.Context, id string, update AccountUpdate) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok {
		return domain.Account{}, domain.ErrNotFound
	}

	merged := AccountInput{
		ID:          acc.ID,
		DisplayName: acc.DisplayName,
		Handle:      acc.Handle,
		Email:       acc.Email,
		Bio:         acc.Bio,
		AvatarRef:   acc.AvatarRef,
	}
	if update.DisplayName != nil {
		merged.DisplayName = strings.TrimSpace(*update.DisplayName)
	}
	if update.Handle != nil {
		merged.Handle = *update.Handle
	}
	if update.Email != nil {
		merged.Email = *update.Email
	}
	if update.Bio != nil {
		merged.Bio = *update.Bio
	}
	if update.AvatarRef != nil {
		merged.AvatarRef = *update.AvatarRef
	}

	if err := validateAccountInput(merged); err != nil {
		return domain.Account{}, err
	}

	oldKey := strings.ToLower(acc.Handle)
	newKey := strings.ToLower(merged.Handle)
	if newKey != oldKey {
		if owner, taken := s.handleIdx[newKey]; taken && owner != id {
			return domain.Account{}, domain.ErrDuplicateHandle
		}
	}

	acc.DisplayName = merged.DisplayName
	acc.Handle = merged.Handle
	acc.Email = merged.Email
	acc.Bio = merged.Bio
	acc.AvatarRef = defaultAvatar(merged.AvatarRef)
	acc.UpdatedAt = s.nowFn()

	if newKey != oldKey {
		delete(s.handleIdx, oldKey)
		s.handleIdx[newKey] = id
	}
	s.accounts[id] = acc

	s.mirrorAccount(ctx, acc)
	return acc, nil
}

// Follow adds a directed edge. Following an already-followed account is a
// no-op; following yourself is rejected.
func (s *Store) Follow(ctx context.Context, followerID, followeeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[followerID]; !ok {
		return domain.ErrNotFound
	}
	if _, ok := s.accounts[followeeID]; !ok {
		return domain.ErrNotFound
	}
	if followerID == followeeID {
		return domain.ErrSelfFollow
	}
	if _, exists := s.following[followerID][followeeID]; exists {
		return nil
	}

	s.following[followerID][followeeID] = struct{}{}
	s.followers[followeeID][followerID] = struct{}{}

	if s.mirror != nil {
		if err := s.mirror.SaveFollow(ctx, followerID, followeeID); err != nil {
			s.logger.Warn("mirror follow failed", "error", err, "followerId", followerID, "followeeId", followeeID)
		}
	}
	return nil
}

// Unfollow removes a directed edge. Unfollowing an account that was never
// followed succeeds with no state change.
func (s *Store) Unfollow(ctx context.Context, followerID, followeeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[followerID]; !ok {
		return domain.ErrNotFound
	}
	if _, ok := s.accounts[followeeID]; !ok {
		return domain.ErrNotFound
	}
	if _, exists := s.following[followerID][followeeID]; !exists {
		return nil
	}

	delete(s.following[followerID], followeeID)
	delete(s.followers[followeeID], followerID)

	if s.mirror != nil {
		if err := s.mirror.RemoveFollow(ctx, followerID, followeeID); err != nil {
			s.logger.Warn("mirror unfollow failed", "error", err, "followerId", followerID, "followeeId", followeeID)
		}
	}
	return nil
}

// CreatePost attaches a post to an existing account.
func (s *Store) CreatePost(ctx context.Context, authorID, content string) (domain.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Post{}, domain.NewInvalidField("content", "must not be empty")
	}
	if len(content) > maxPostContentLen {
		return domain.Post{}, domain.NewInvalidField("content", "must be at most 500 characters")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[authorID]; !ok {
		return domain.Post{}, domain.ErrNotFound
	}

	post := domain.Post{
		ID:        s.idFn(),
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: s.nowFn(),
	}
	s.posts[authorID] = append(s.posts[authorID], post)

	if s.mirror != nil {
		if err := s.mirror.SavePost(ctx, post); err != nil {
			s.logger.Warn("mirror post failed", "error", err, "postId", post.ID)
		}
	}
	return post, nil
}

// GetAccount returns the account for id.
func (s *Store) GetAccount(id string) (domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[id]
	if !ok {
		return domain.Account{}, domain.ErrNotFound
	}
	return acc, nil
}

// GetAccountByHandle resolves a handle with an exact-case match. The index is
// keyed case-insensitively for uniqueness, so the stored handle is compared
// against the request before returning.
func (s *Store) GetAccountByHandle(handle string) (domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.handleIdx[strings.ToLower(handle)]
	if !ok {
		return domain.Account{}, domain.ErrNotFound
	}
	acc := s.accounts[id]
	if acc.Handle != handle {
		return domain.Account{}, domain.ErrNotFound
	}
	return acc, nil
}

// GetProfile returns the outward view of an account with degree counts taken
// from the same snapshot as the account itself.
func (s *Store) GetProfile(id string) (domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[id]
	if !ok {
		return domain.Profile{}, domain.ErrNotFound
	}
	return domain.ProfileOf(acc, len(s.followers[id]), len(s.following[id])), nil
}

// GetProfileByHandle is GetProfile keyed by an exact-case handle match.
func (s *Store) GetProfileByHandle(handle string) (domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.handleIdx[strings.ToLower(handle)]
	if !ok {
		return domain.Profile{}, domain.ErrNotFound
	}
	acc := s.accounts[id]
	if acc.Handle != handle {
		return domain.Profile{}, domain.ErrNotFound
	}
	return domain.ProfileOf(acc, len(s.followers[id]), len(s.following[id])), nil
}

// FollowerCount returns the in-degree of the account.
func (s *Store) FollowerCount(id string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.accounts[id]; !ok {
		return 0, domain.ErrNotFound
	}
	return len(s.followers[id]), nil
}

// FollowingCount returns the out-degree of the account.
func (s *Store) FollowingCount(id string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.accounts[id]; !ok {
		return 0, domain.ErrNotFound
	}
	return len(s.following[id]), nil
}

// Stats summarizes the current graph size.
type Stats struct {
	Accounts int
	Edges    int
	Posts    int
}

// Stats returns current node/edge/post counts.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{Accounts: len(s.accounts)}
	for _, set := range s.following {
		st.Edges += len(set)
	}
	for _, list := range s.posts {
		st.Posts += len(list)
	}
	return st
}

// Restore replaces the store contents wholesale, bypassing validation and the
// mirror. Used to warm-load state persisted by the mirror at startup. Edges
// referencing unknown accounts and self-edges are dropped.
func (s *Store) Restore(accounts []domain.Account, follows [][2]string, posts []domain.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts = make(map[string]domain.Account, len(accounts))
	s.handleIdx = make(map[string]string, len(accounts))
	s.following = make(map[string]map[string]struct{}, len(accounts))
	s.followers = make(map[string]map[string]struct{}, len(accounts))
	s.posts = make(map[string][]domain.Post)

	for _, acc := range accounts {
		s.accounts[acc.ID] = acc
		s.handleIdx[strings.ToLower(acc.Handle)] = acc.ID
		s.following[acc.ID] = make(map[string]struct{})
		s.followers[acc.ID] = make(map[string]struct{})
	}
	for _, edge := range follows {
		from, to := edge[0], edge[1]
		if from == to {
			continue
		}
		if _, ok := s.accounts[from]; !ok {
			continue
		}
		if _, ok := s.accounts[to]; !ok {
			continue
		}
		s.following[from][to] = struct{}{}
		s.followers[to][from] = struct{}{}
	}
	for _, post := range posts {
		if _, ok := s.accounts[post.AuthorID]; !ok {
			continue
		}
		s.posts[post.AuthorID] = append(s.posts[post.AuthorID], post)
	}
}

func (s *Store) mirrorAccount(ctx context.Context, acc domain.Account) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.SaveAccount(ctx, acc); err != nil {
		s.logger.Warn("mirror account failed", "error", err, "accountId", acc.ID)
	}
}

func defaultAvatar(ref string) string {
	if ref == "" {
		return "avatar_1"
	}
	return ref
}
