package domain

import "time"

// Account is the canonical node of the social graph. The ID is immutable once
// assigned; every other field is mutable through profile updates.
type Account struct {
	ID          string
	DisplayName string
	Handle      string
	Email       string
	Bio         string
	AvatarRef   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Profile is the outward-facing view of an account, enriched with degree
// counts derived from the edge set at read time.
type Profile struct {
	ID             string
	DisplayName    string
	Handle         string
	Email          string
	Bio            string
	AvatarRef      string
	FollowerCount  int
	FollowingCount int
}

// ProfileOf builds a Profile from an account and its current degrees.
func ProfileOf(acc Account, followers, following int) Profile {
	return Profile{
		ID:             acc.ID,
		DisplayName:    acc.DisplayName,
		Handle:         acc.Handle,
		Email:          acc.Email,
		Bio:            acc.Bio,
		AvatarRef:      acc.AvatarRef,
		FollowerCount:  followers,
		FollowingCount: following,
	}
}
