package store

import "github.com/devansh/connectly/backend/internal/domain"

// ReadView runs fn with the read lock held for its whole duration, so a
// traversal spanning several adjacency lookups observes one consistent graph
// state. fn must not retain the View or anything it hands out past its return.
func (s *Store) ReadView(fn func(v *View) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&View{s: s})
}

// View is a locked read handle over the store. All methods read the live maps
// directly; the lock held by ReadView makes that safe.
type View struct {
	s *Store
}

// Account returns the account for id.
func (v *View) Account(id string) (domain.Account, bool) {
	acc, ok := v.s.accounts[id]
	return acc, ok
}

// Following returns the out-adjacency set of id. Callers must not mutate it.
func (v *View) Following(id string) map[string]struct{} {
	return v.s.following[id]
}

// Followers returns the in-adjacency set of id. Callers must not mutate it.
func (v *View) Followers(id string) map[string]struct{} {
	return v.s.followers[id]
}

// FollowerCount returns the in-degree of id.
func (v *View) FollowerCount(id string) int {
	return len(v.s.followers[id])
}

// FollowingCount returns the out-degree of id.
func (v *View) FollowingCount(id string) int {
	return len(v.s.following[id])
}

// Follows reports whether followerID currently follows followeeID.
func (v *View) Follows(followerID, followeeID string) bool {
	_, ok := v.s.following[followerID][followeeID]
	return ok
}

// EachAccount invokes fn for every account, in unspecified order.
func (v *View) EachAccount(fn func(acc domain.Account)) {
	for _, acc := range v.s.accounts {
		fn(acc)
	}
}

// PostsBy returns the posts authored by id in creation order. Callers must
// not mutate the returned slice.
func (v *View) PostsBy(id string) []domain.Post {
	return v.s.posts[id]
}

// Profile assembles the outward view of an account with degrees from this
// same snapshot.
func (v *View) Profile(id string) (domain.Profile, bool) {
	acc, ok := v.s.accounts[id]
	if !ok {
		return domain.Profile{}, false
	}
	return domain.ProfileOf(acc, v.FollowerCount(id), v.FollowingCount(id)), true
}
