// Package search finds accounts by free-text query against display name,
// handle, and email. The graph is small enough that a linear scan at call
// time is the whole index; consistency with the store is read-your-writes by
// construction.
package search

import (
	"sort"
	"strings"

	"github.com/devansh/connectly/backend/internal/domain"
	"github.com/devansh/connectly/backend/internal/store"
)

// Index answers substring queries over the store's account set.
type Index struct {
	store *store.Store
}

// New constructs an Index over the provided store.
func New(s *store.Store) *Index {
	return &Index{store: s}
}

// Search returns accounts whose display name, handle, or email contains term,
// case-insensitively. An empty or whitespace-only term yields an empty result
// rather than the full account set: "no query" is not "browse all". Results
// are ordered by follower count descending, handle ascending.
func (i *Index) Search(term string) ([]domain.Profile, error) {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return []domain.Profile{}, nil
	}

	var matches []domain.Profile
	err := i.store.ReadView(func(v *store.View) error {
		v.EachAccount(func(acc domain.Account) {
			if !accountMatches(acc, needle) {
				return
			}
			matches = append(matches, domain.ProfileOf(acc, v.FollowerCount(acc.ID), v.FollowingCount(acc.ID)))
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(matches, func(a, b int) bool {
		if matches[a].FollowerCount != matches[b].FollowerCount {
			return matches[a].FollowerCount > matches[b].FollowerCount
		}
		return matches[a].Handle < matches[b].Handle
	})
	if matches == nil {
		matches = []domain.Profile{}
	}
	return matches, nil
}

func accountMatches(acc domain.Account, needle string) bool {
	return strings.Contains(strings.ToLower(acc.DisplayName), needle) ||
		strings.Contains(strings.ToLower(acc.Handle), needle) ||
		strings.Contains(strings.ToLower(acc.Email), needle)
}
