// Package engine implements the traversal queries of the social graph:
// adjacency listings, mutual connections, friend-of-friend suggestions,
// popularity ranking, and the follow feed. Every query runs inside a single
// store read view so its result reflects one consistent graph state.
package engine

import (
	"sort"

	"github.com/devansh/connectly/backend/internal/domain"
	"github.com/devansh/connectly/backend/internal/store"
)

// Engine executes graph traversals against the store's current snapshot.
type Engine struct {
	store *store.Store
}

// New constructs an Engine over the provided store.
func New(s *store.Store) *Engine {
	return &Engine{store: s}
}

// Followers lists the accounts following id, sorted by handle ascending.
func (e *Engine) Followers(id string) ([]domain.Profile, error) {
	return e.adjacency(id, func(v *store.View) map[string]struct{} {
		return v.Followers(id)
	})
}

// Following lists the accounts id follows, sorted by handle ascending.
func (e *Engine) Following(id string) ([]domain.Profile, error) {
	return e.adjacency(id, func(v *store.View) map[string]struct{} {
		return v.Following(id)
	})
}

func (e *Engine) adjacency(id string, pick func(v *store.View) map[string]struct{}) ([]domain.Profile, error) {
	var result []domain.Profile
	err := e.store.ReadView(func(v *store.View) error {
		if _, ok := v.Account(id); !ok {
			return domain.ErrNotFound
		}
		set := pick(v)
		result = make([]domain.Profile, 0, len(set))
		for other := range set {
			if p, ok := v.Profile(other); ok {
				result = append(result, p)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortByHandle(result)
	return result, nil
}

// MutualConnections returns the accounts followed by both a and b, excluding
// a and b themselves, sorted by handle ascending. The smaller following set
// is iterated while membership is probed in the larger one.
func (e *Engine) MutualConnections(aID, bID string) ([]domain.Profile, error) {
	var result []domain.Profile
	err := e.store.ReadView(func(v *store.View) error {
		if _, ok := v.Account(aID); !ok {
			return domain.ErrNotFound
		}
		if _, ok := v.Account(bID); !ok {
			return domain.ErrNotFound
		}

		smaller, larger := v.Following(aID), v.Following(bID)
		if len(larger) < len(smaller) {
			smaller, larger = larger, smaller
		}
		for candidate := range smaller {
			if candidate == aID || candidate == bID {
				continue
			}
			if _, both := larger[candidate]; !both {
				continue
			}
			if p, ok := v.Profile(candidate); ok {
				result = append(result, p)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortByHandle(result)
	return result, nil
}

// Suggestions recommends accounts reachable at two hops from id, excluding id
// itself and accounts it already follows. Candidates are ranked by co-follow
// count (distinct first-hop accounts leading to them) descending, handle
// ascending on ties. At most limit results are returned; limit <= 0 means no
// truncation.
func (e *Engine) Suggestions(id string, limit int) ([]domain.Profile, error) {
	type ranked struct {
		profile  domain.Profile
		coFollow int
	}
	var candidates []ranked

	err := e.store.ReadView(func(v *store.View) error {
		if _, ok := v.Account(id); !ok {
			return domain.ErrNotFound
		}

		firstHop := v.Following(id)
		counts := make(map[string]int)
		for hop := range firstHop {
			for candidate := range v.Following(hop) {
				if candidate == id {
					continue
				}
				if _, follows := firstHop[candidate]; follows {
					continue
				}
				counts[candidate]++
			}
		}

		candidates = make([]ranked, 0, len(counts))
		for candidate, n := range counts {
			if p, ok := v.Profile(candidate); ok {
				candidates = append(candidates, ranked{profile: p, coFollow: n})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].coFollow != candidates[j].coFollow {
			return candidates[i].coFollow > candidates[j].coFollow
		}
		return candidates[i].profile.Handle < candidates[j].profile.Handle
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	result := make([]domain.Profile, len(candidates))
	for i, c := range candidates {
		result[i] = c.profile
	}
	return result, nil
}

// Popular ranks all accounts by follower count descending, handle ascending
// on ties, and returns the top limit. The ranking is recomputed from the
// current edge state on every call.
func (e *Engine) Popular(limit int) ([]domain.Profile, error) {
	var result []domain.Profile
	err := e.store.ReadView(func(v *store.View) error {
		v.EachAccount(func(acc domain.Account) {
			result = append(result, domain.ProfileOf(acc, v.FollowerCount(acc.ID), v.FollowingCount(acc.ID)))
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortByPopularity(result)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// AllExcept lists every account other than id, sorted by handle ascending.
func (e *Engine) AllExcept(id string) ([]domain.Profile, error) {
	var result []domain.Profile
	err := e.store.ReadView(func(v *store.View) error {
		if _, ok := v.Account(id); !ok {
			return domain.ErrNotFound
		}
		v.EachAccount(func(acc domain.Account) {
			if acc.ID == id {
				return
			}
			result = append(result, domain.ProfileOf(acc, v.FollowerCount(acc.ID), v.FollowingCount(acc.ID)))
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortByHandle(result)
	return result, nil
}

// Feed collects the posts authored by accounts id follows, newest first with
// post id ascending as tiebreak.
func (e *Engine) Feed(id string) ([]domain.FeedEntry, error) {
	var entries []domain.FeedEntry
	err := e.store.ReadView(func(v *store.View) error {
		if _, ok := v.Account(id); !ok {
			return domain.ErrNotFound
		}
		for followed := range v.Following(id) {
			author, ok := v.Profile(followed)
			if !ok {
				continue
			}
			for _, post := range v.PostsBy(followed) {
				entries = append(entries, domain.FeedEntry{Post: post, Author: author})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Post.CreatedAt.Equal(entries[j].Post.CreatedAt) {
			return entries[i].Post.CreatedAt.After(entries[j].Post.CreatedAt)
		}
		return entries[i].Post.ID < entries[j].Post.ID
	})
	return entries, nil
}

func sortByHandle(profiles []domain.Profile) {
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].Handle < profiles[j].Handle
	})
}

func sortByPopularity(profiles []domain.Profile) {
	sort.Slice(profiles, func(i, j int) bool {
		if profiles[i].FollowerCount != profiles[j].FollowerCount {
			return profiles[i].FollowerCount > profiles[j].FollowerCount
		}
		return profiles[i].Handle < profiles[j].Handle
	})
}
