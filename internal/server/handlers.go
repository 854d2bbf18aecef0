package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/devansh/connectly/backend/internal/domain"
	"github.com/devansh/connectly/backend/internal/service"
)

const maxRequestBody = 64 * 1024

// APIHandlers exposes HTTP handlers for the REST API.
type APIHandlers struct {
	logger  *slog.Logger
	service *service.SocialService
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *slog.Logger, svc *service.SocialService) *APIHandlers {
	return &APIHandlers{
		logger:  logger,
		service: svc,
	}
}

func (h *APIHandlers) handleOnboarding(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var payload onboardingRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	profile, err := h.service.Onboard(r.Context(), service.AccountParams{
		ID:          payload.ID,
		DisplayName: payload.Name,
		Handle:      payload.Username,
		Email:       payload.Email,
		Bio:         payload.Bio,
		AvatarRef:   payload.Avatar,
	})
	if err != nil {
		h.writeDomainError(w, err, "onboarding failed")
		return
	}

	respondJSON(w, http.StatusCreated, toProfileResponse(profile))
}

func (h *APIHandlers) handleProfile(w http.ResponseWriter, r *http.Request) {
	id := pathSuffix(r.URL.Path, "/api/profile/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "account id is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		profile, err := h.service.GetProfile(r.Context(), id)
		if err != nil {
			h.writeDomainError(w, err, "fetch profile failed")
			return
		}
		respondJSON(w, http.StatusOK, toProfileResponse(profile))
	case http.MethodPut:
		var payload profileUpdateRequest
		if err := decodeJSON(r, &payload); err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
			return
		}
		profile, err := h.service.UpdateProfile(r.Context(), id, service.ProfileUpdateParams{
			DisplayName: payload.Name,
			Handle:      payload.Username,
			Email:       payload.Email,
			Bio:         payload.Bio,
			AvatarRef:   payload.Avatar,
		})
		if err != nil {
			h.writeDomainError(w, err, "update profile failed")
			return
		}
		respondJSON(w, http.StatusOK, toProfileResponse(profile))
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut)
	}
}

func (h *APIHandlers) handleProfileByUsername(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	username := pathSuffix(r.URL.Path, "/api/profile/by-username/")
	if username == "" {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "username is required")
		return
	}

	profile, err := h.service.GetProfileByHandle(r.Context(), username)
	if err != nil {
		h.writeDomainError(w, err, "fetch profile by username failed")
		return
	}
	respondJSON(w, http.StatusOK, toProfileResponse(profile))
}

func (h *APIHandlers) handleFollow(w http.ResponseWriter, r *http.Request) {
	h.handleFollowMutation(w, r, h.service.Follow, "followed")
}

func (h *APIHandlers) handleUnfollow(w http.ResponseWriter, r *http.Request) {
	h.handleFollowMutation(w, r, h.service.Unfollow, "unfollowed")
}

func (h *APIHandlers) handleFollowMutation(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, callerID, targetID string) error, verb string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var payload followRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	if err := op(r.Context(), payload.CallerID, payload.TargetID); err != nil {
		h.writeDomainError(w, err, verb+" failed")
		return
	}
	respondJSON(w, http.StatusOK, statusResponse{Success: true, Message: verb})
}

func (h *APIHandlers) handleFollowers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	id := pathSuffix(r.URL.Path, "/api/social/followers/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "account id is required")
		return
	}

	page, err := h.service.ListFollowers(r.Context(), id, pageParams(r))
	if err != nil {
		h.writeDomainError(w, err, "list followers failed")
		return
	}
	respondJSON(w, http.StatusOK, toProfilesPageResponse(page))
}

func (h *APIHandlers) handleFollowing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	id := pathSuffix(r.URL.Path, "/api/social/following/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "account id is required")
		return
	}

	page, err := h.service.ListFollowing(r.Context(), id, pageParams(r))
	if err != nil {
		h.writeDomainError(w, err, "list following failed")
		return
	}
	respondJSON(w, http.StatusOK, toProfilesPageResponse(page))
}

func (h *APIHandlers) handleMutual(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	query := r.URL.Query()
	idA := query.Get("idA")
	idB := query.Get("idB")
	if idA == "" || idB == "" {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "idA and idB are required")
		return
	}

	profiles, err := h.service.MutualConnections(r.Context(), idA, idB)
	if err != nil {
		h.writeDomainError(w, err, "mutual connections failed")
		return
	}
	respondJSON(w, http.StatusOK, profileListResponse{Items: toProfileResponses(profiles)})
}

func (h *APIHandlers) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	id := pathSuffix(r.URL.Path, "/api/social/suggestions/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "account id is required")
		return
	}

	profiles, err := h.service.Suggestions(r.Context(), id, parseInt(r.URL.Query().Get("limit"), 0))
	if err != nil {
		h.writeDomainError(w, err, "suggestions failed")
		return
	}
	respondJSON(w, http.StatusOK, profileListResponse{Items: toProfileResponses(profiles)})
}

func (h *APIHandlers) handlePopular(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	profiles, err := h.service.Popular(r.Context(), parseInt(r.URL.Query().Get("limit"), 0))
	if err != nil {
		h.writeDomainError(w, err, "popular ranking failed")
		return
	}
	respondJSON(w, http.StatusOK, profileListResponse{Items: toProfileResponses(profiles)})
}

func (h *APIHandlers) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	page, err := h.service.Search(r.Context(), r.URL.Query().Get("q"), pageParams(r))
	if err != nil {
		h.writeDomainError(w, err, "search failed")
		return
	}
	respondJSON(w, http.StatusOK, toProfilesPageResponse(page))
}

func (h *APIHandlers) handleBrowse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	exceptID := r.URL.Query().Get("except")
	if exceptID == "" {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "except account id is required")
		return
	}

	profiles, err := h.service.BrowseAll(r.Context(), exceptID)
	if err != nil {
		h.writeDomainError(w, err, "browse failed")
		return
	}
	respondJSON(w, http.StatusOK, profileListResponse{Items: toProfileResponses(profiles)})
}

func (h *APIHandlers) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var payload createPostRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	post, err := h.service.CreatePost(r.Context(), payload.AuthorID, payload.Content)
	if err != nil {
		h.writeDomainError(w, err, "create post failed")
		return
	}
	respondJSON(w, http.StatusCreated, toPostResponse(post))
}

func (h *APIHandlers) handleFeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	id := pathSuffix(r.URL.Path, "/api/feed/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "account id is required")
		return
	}

	entries, err := h.service.Feed(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err, "feed failed")
		return
	}
	respondJSON(w, http.StatusOK, toFeedResponse(entries))
}

// writeDomainError maps the error taxonomy onto stable external codes.
func (h *APIHandlers) writeDomainError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "account not found")
	case errors.Is(err, domain.ErrSelfFollow):
		writeError(w, http.StatusBadRequest, "SELF_FOLLOW", "cannot follow yourself")
	case errors.Is(err, domain.ErrDuplicateHandle):
		writeError(w, http.StatusConflict, "DUPLICATE_HANDLE", "username is already taken")
	case domain.IsInvalidField(err):
		writeError(w, http.StatusBadRequest, "INVALID_FIELD", err.Error())
	default:
		h.logger.Error(logMsg, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: errorBody{Code: code, Message: message}})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
}

func decodeJSON(r *http.Request, dest any) error {
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()

	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxRequestBody))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func pageParams(r *http.Request) service.PageParams {
	query := r.URL.Query()
	return service.PageParams{
		Page:     parseInt(query.Get("page"), 0),
		PageSize: parseInt(query.Get("pageSize"), 0),
	}
}

func pathSuffix(path, prefix string) string {
	suffix := strings.TrimPrefix(path, prefix)
	return strings.Trim(suffix, "/")
}

func parseInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
