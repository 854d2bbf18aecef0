// Package service is the single boundary the HTTP layer calls into. It
// normalizes identifiers before they reach the store, applies default limits
// and pagination, and keeps the error taxonomy intact on the way out.
package service

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"github.com/devansh/connectly/backend/internal/domain"
	"github.com/devansh/connectly/backend/internal/engine"
	"github.com/devansh/connectly/backend/internal/events"
	"github.com/devansh/connectly/backend/internal/search"
	"github.com/devansh/connectly/backend/internal/store"
)

const (
	defaultRankLimit = 10
	maxRankLimit     = 50
	defaultPageSize  = 50
	maxPageSize      = 200
)

// SocialService orchestrates the graph store, traversal engine, and search
// index behind one façade.
type SocialService struct {
	store  *store.Store
	engine *engine.Engine
	index  *search.Index
	events events.Publisher
	logger *slog.Logger
}

// NewSocialService wires the façade. A nil publisher defaults to the noop.
func NewSocialService(s *store.Store, e *engine.Engine, idx *search.Index, pub events.Publisher, logger *slog.Logger) *SocialService {
	if pub == nil {
		pub = events.Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SocialService{
		store:  s,
		engine: e,
		index:  idx,
		events: pub,
		logger: logger,
	}
}

// AccountParams is the inbound payload for onboarding. It mirrors the store
// input to keep external payloads separate from storage models.
type AccountParams struct {
	ID          string
	DisplayName string
	Handle      string
	Email       string
	Bio         string
	AvatarRef   string
}

// ProfileUpdateParams carries a partial profile update.
type ProfileUpdateParams struct {
	DisplayName *string
	Handle      *string
	Email       *string
	Bio         *string
	AvatarRef   *string
}

// PageParams selects a page of a listing.
type PageParams struct {
	Page     int
	PageSize int
}

// PaginationMeta captures pagination metadata returned to API clients.
type PaginationMeta struct {
	Page       int
	PageSize   int
	TotalItems int
	TotalPages int
}

// ProfilesPage is one page of profiles with metadata.
type ProfilesPage struct {
	Items      []domain.Profile
	Pagination PaginationMeta
}

// Onboard creates an account and announces it.
func (s *SocialService) Onboard(ctx context.Context, params AccountParams) (domain.Profile, error) {
	acc, err := s.store.CreateAccount(ctx, store.AccountInput{
		ID:          strings.TrimSpace(params.ID),
		DisplayName: params.DisplayName,
		Handle:      params.Handle,
		Email:       strings.TrimSpace(params.Email),
		Bio:         params.Bio,
		AvatarRef:   params.AvatarRef,
	})
	if err != nil {
		return domain.Profile{}, err
	}

	if err := s.events.AccountCreated(ctx, acc); err != nil {
		s.logger.Warn("publish account created failed", "error", err, "accountId", acc.ID)
	}
	return domain.ProfileOf(acc, 0, 0), nil
}

// UpdateProfile applies a partial update and returns the refreshed profile.
func (s *SocialService) UpdateProfile(ctx context.Context, id string, params ProfileUpdateParams) (domain.Profile, error) {
	id, err := normalizeID("id", id)
	if err != nil {
		return domain.Profile{}, err
	}

	if _, err := s.store.UpdateAccount(ctx, id, store.AccountUpdate{
		DisplayName: params.DisplayName,
		Handle:      params.Handle,
		Email:       params.Email,
		Bio:         params.Bio,
		AvatarRef:   params.AvatarRef,
	}); err != nil {
		return domain.Profile{}, err
	}
	return s.store.GetProfile(id)
}

// GetProfile fetches a profile by id.
func (s *SocialService) GetProfile(_ context.Context, id string) (domain.Profile, error) {
	id, err := normalizeID("id", id)
	if err != nil {
		return domain.Profile{}, err
	}
	return s.store.GetProfile(id)
}

// GetProfileByHandle fetches a profile by its exact handle.
func (s *SocialService) GetProfileByHandle(_ context.Context, handle string) (domain.Profile, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return domain.Profile{}, domain.NewInvalidField("handle", "is required")
	}
	return s.store.GetProfileByHandle(handle)
}

// Follow creates the edge caller -> target.
func (s *SocialService) Follow(ctx context.Context, callerID, targetID string) error {
	callerID, err := normalizeID("callerId", callerID)
	if err != nil {
		return err
	}
	targetID, err = normalizeID("targetId", targetID)
	if err != nil {
		return err
	}

	if err := s.store.Follow(ctx, callerID, targetID); err != nil {
		return err
	}
	if err := s.events.Followed(ctx, callerID, targetID); err != nil {
		s.logger.Warn("publish follow failed", "error", err, "followerId", callerID)
	}
	return nil
}

// Unfollow removes the edge caller -> target.
func (s *SocialService) Unfollow(ctx context.Context, callerID, targetID string) error {
	callerID, err := normalizeID("callerId", callerID)
	if err != nil {
		return err
	}
	targetID, err = normalizeID("targetId", targetID)
	if err != nil {
		return err
	}

	if err := s.store.Unfollow(ctx, callerID, targetID); err != nil {
		return err
	}
	if err := s.events.Unfollowed(ctx, callerID, targetID); err != nil {
		s.logger.Warn("publish unfollow failed", "error", err, "followerId", callerID)
	}
	return nil
}

// ListFollowers returns a page of the accounts following id, handle ascending.
func (s *SocialService) ListFollowers(_ context.Context, id string, page PageParams) (ProfilesPage, error) {
	id, err := normalizeID("id", id)
	if err != nil {
		return ProfilesPage{}, err
	}
	profiles, err := s.engine.Followers(id)
	if err != nil {
		return ProfilesPage{}, err
	}
	return paginate(profiles, page), nil
}

// ListFollowing returns a page of the accounts id follows, handle ascending.
func (s *SocialService) ListFollowing(_ context.Context, id string, page PageParams) (ProfilesPage, error) {
	id, err := normalizeID("id", id)
	if err != nil {
		return ProfilesPage{}, err
	}
	profiles, err := s.engine.Following(id)
	if err != nil {
		return ProfilesPage{}, err
	}
	return paginate(profiles, page), nil
}

// MutualConnections returns accounts followed by both ids, handle ascending.
func (s *SocialService) MutualConnections(_ context.Context, idA, idB string) ([]domain.Profile, error) {
	idA, err := normalizeID("idA", idA)
	if err != nil {
		return nil, err
	}
	idB, err = normalizeID("idB", idB)
	if err != nil {
		return nil, err
	}
	return s.engine.MutualConnections(idA, idB)
}

// Suggestions returns friend-of-friend recommendations for id.
func (s *SocialService) Suggestions(_ context.Context, id string, limit int) ([]domain.Profile, error) {
	id, err := normalizeID("id", id)
	if err != nil {
		return nil, err
	}
	return s.engine.Suggestions(id, clampRankLimit(limit))
}

// Popular returns the most-followed accounts.
func (s *SocialService) Popular(_ context.Context, limit int) ([]domain.Profile, error) {
	return s.engine.Popular(clampRankLimit(limit))
}

// Search returns a page of accounts matching term; an empty term yields an
// empty page, not the full account set.
func (s *SocialService) Search(_ context.Context, term string, page PageParams) (ProfilesPage, error) {
	profiles, err := s.index.Search(term)
	if err != nil {
		return ProfilesPage{}, err
	}
	return paginate(profiles, page), nil
}

// BrowseAll lists every account except the given one, handle ascending.
func (s *SocialService) BrowseAll(_ context.Context, exceptID string) ([]domain.Profile, error) {
	exceptID, err := normalizeID("except", exceptID)
	if err != nil {
		return nil, err
	}
	return s.engine.AllExcept(exceptID)
}

// CreatePost attaches a post to its author and announces it.
func (s *SocialService) CreatePost(ctx context.Context, authorID, content string) (domain.Post, error) {
	authorID, err := normalizeID("authorId", authorID)
	if err != nil {
		return domain.Post{}, err
	}

	post, err := s.store.CreatePost(ctx, authorID, content)
	if err != nil {
		return domain.Post{}, err
	}
	if err := s.events.PostCreated(ctx, post); err != nil {
		s.logger.Warn("publish post created failed", "error", err, "postId", post.ID)
	}
	return post, nil
}

// Feed returns posts from accounts id follows, newest first.
func (s *SocialService) Feed(_ context.Context, id string) ([]domain.FeedEntry, error) {
	id, err := normalizeID("id", id)
	if err != nil {
		return nil, err
	}
	return s.engine.Feed(id)
}

func normalizeID(field, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", domain.NewInvalidField(field, "is required")
	}
	if !domain.ValidAccountID(id) {
		return "", domain.NewInvalidField(field, "is not a valid account id")
	}
	return id, nil
}

func clampRankLimit(limit int) int {
	if limit <= 0 {
		return defaultRankLimit
	}
	if limit > maxRankLimit {
		return maxRankLimit
	}
	return limit
}

func paginate(profiles []domain.Profile, params PageParams) ProfilesPage {
	page, pageSize := normalizePagination(params.Page, params.PageSize)
	total := len(profiles)

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	items := make([]domain.Profile, end-start)
	copy(items, profiles[start:end])

	return ProfilesPage{
		Items:      items,
		Pagination: buildPaginationMeta(page, pageSize, total),
	}
}

func normalizePagination(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func buildPaginationMeta(page, pageSize, total int) PaginationMeta {
	totalPages := int(math.Ceil(float64(total) / float64(pageSize)))
	if total > 0 && totalPages == 0 {
		totalPages = 1
	}
	return PaginationMeta{
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}
}
