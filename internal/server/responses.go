package server

import (
	"time"

	"github.com/devansh/connectly/backend/internal/domain"
	"github.com/devansh/connectly/backend/internal/service"
)

// profileResponse is the external account schema:
// id, name, username, email, bio, avatar, followers_count, following_count.
type profileResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	Bio            string `json:"bio"`
	Avatar         string `json:"avatar"`
	FollowersCount int    `json:"followers_count"`
	FollowingCount int    `json:"following_count"`
}

func toProfileResponse(p domain.Profile) profileResponse {
	return profileResponse{
		ID:             p.ID,
		Name:           p.DisplayName,
		Username:       p.Handle,
		Email:          p.Email,
		Bio:            p.Bio,
		Avatar:         p.AvatarRef,
		FollowersCount: p.FollowerCount,
		FollowingCount: p.FollowingCount,
	}
}

func toProfileResponses(profiles []domain.Profile) []profileResponse {
	out := make([]profileResponse, len(profiles))
	for i, p := range profiles {
		out[i] = toProfileResponse(p)
	}
	return out
}

type paginationResponse struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

type profilesPageResponse struct {
	Items      []profileResponse  `json:"items"`
	Pagination paginationResponse `json:"pagination"`
}

func toProfilesPageResponse(page service.ProfilesPage) profilesPageResponse {
	return profilesPageResponse{
		Items: toProfileResponses(page.Items),
		Pagination: paginationResponse{
			Page:       page.Pagination.Page,
			PageSize:   page.Pagination.PageSize,
			TotalItems: page.Pagination.TotalItems,
			TotalPages: page.Pagination.TotalPages,
		},
	}
}

type profileListResponse struct {
	Items []profileResponse `json:"items"`
}

type postAuthorResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

type postResponse struct {
	ID        string `json:"id"`
	AuthorID  string `json:"authorId"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
}

func toPostResponse(p domain.Post) postResponse {
	return postResponse{
		ID:        p.ID,
		AuthorID:  p.AuthorID,
		Content:   p.Content,
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

type feedEntryResponse struct {
	ID        string             `json:"id"`
	Content   string             `json:"content"`
	CreatedAt string             `json:"createdAt"`
	Author    postAuthorResponse `json:"author"`
}

type feedResponse struct {
	Posts []feedEntryResponse `json:"posts"`
}

func toFeedResponse(entries []domain.FeedEntry) feedResponse {
	posts := make([]feedEntryResponse, len(entries))
	for i, entry := range entries {
		posts[i] = feedEntryResponse{
			ID:        entry.Post.ID,
			Content:   entry.Post.Content,
			CreatedAt: entry.Post.CreatedAt.UTC().Format(time.RFC3339Nano),
			Author: postAuthorResponse{
				ID:       entry.Author.ID,
				Name:     entry.Author.DisplayName,
				Username: entry.Author.Handle,
			},
		}
	}
	return feedResponse{Posts: posts}
}

type statusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// Request payloads. Unknown fields are rejected at decode time.

type onboardingRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Bio      string `json:"bio"`
	Avatar   string `json:"avatar"`
}

type profileUpdateRequest struct {
	Name     *string `json:"name"`
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Bio      *string `json:"bio"`
	Avatar   *string `json:"avatar"`
}

type followRequest struct {
	CallerID string `json:"callerId"`
	TargetID string `json:"targetId"`
}

type createPostRequest struct {
	AuthorID string `json:"authorId"`
	Content  string `json:"content"`
}
