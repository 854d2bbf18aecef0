package search

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/devansh/connectly/backend/internal/store"
)

func seedAccounts(t *testing.T) *store.Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := store.New(logger)
	ctx := context.Background()

	accounts := []store.AccountInput{
		{ID: "acc-1", DisplayName: "Jane Doe", Handle: "jane_doe", Email: "jane@example.com"},
		{ID: "acc-2", DisplayName: "John Smith", Handle: "john_smith", Email: "smith@mail.com"},
		{ID: "acc-3", DisplayName: "Janet Chen", Handle: "jchen", Email: "janet@example.com"},
	}
	for _, input := range accounts {
		if _, err := s.CreateAccount(ctx, input); err != nil {
			t.Fatalf("create account %s: %v", input.Handle, err)
		}
	}
	return s
}

func handles(idx *Index, t *testing.T, term string) []string {
	t.Helper()
	profiles, err := idx.Search(term)
	if err != nil {
		t.Fatalf("search %q failed: %v", term, err)
	}
	out := make([]string, len(profiles))
	for i, p := range profiles {
		out[i] = p.Handle
	}
	return out
}

func TestSearchMatchesAllFields(t *testing.T) {
	idx := New(seedAccounts(t))

	byName := handles(idx, t, "Janet")
	if len(byName) != 1 || byName[0] != "jchen" {
		t.Fatalf("expected display name match jchen, got %v", byName)
	}

	byHandle := handles(idx, t, "john_")
	if len(byHandle) != 1 || byHandle[0] != "john_smith" {
		t.Fatalf("expected handle match john_smith, got %v", byHandle)
	}

	byEmail := handles(idx, t, "example.com")
	if len(byEmail) != 2 {
		t.Fatalf("expected 2 email matches, got %v", byEmail)
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	idx := New(seedAccounts(t))

	upper := handles(idx, t, "JANE")
	if len(upper) != 2 {
		t.Fatalf("expected matches for JANE (jane_doe, janet via email), got %v", upper)
	}
}

func TestSearchEmptyTerm(t *testing.T) {
	idx := New(seedAccounts(t))

	for _, term := range []string{"", "   ", "\t"} {
		profiles, err := idx.Search(term)
		if err != nil {
			t.Fatalf("search %q failed: %v", term, err)
		}
		if profiles == nil || len(profiles) != 0 {
			t.Fatalf("blank term must yield empty non-nil slice, got %v", profiles)
		}
	}
}

func TestSearchNoMatches(t *testing.T) {
	idx := New(seedAccounts(t))

	profiles, err := idx.Search("zzz_nomatch")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if profiles == nil || len(profiles) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", profiles)
	}
}

func TestSearchOrderedByPopularity(t *testing.T) {
	s := seedAccounts(t)
	ctx := context.Background()
	// jchen gets two followers, jane_doe one; both match "jan".
	if err := s.Follow(ctx, "acc-1", "acc-3"); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if err := s.Follow(ctx, "acc-2", "acc-3"); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if err := s.Follow(ctx, "acc-2", "acc-1"); err != nil {
		t.Fatalf("follow: %v", err)
	}

	idx := New(s)
	got := handles(idx, t, "jan")
	if len(got) != 2 || got[0] != "jchen" || got[1] != "jane_doe" {
		t.Fatalf("expected [jchen jane_doe], got %v", got)
	}
}

func TestSearchSeesLatestWrites(t *testing.T) {
	s := seedAccounts(t)
	idx := New(s)

	if _, err := s.CreateAccount(context.Background(), store.AccountInput{
		ID: "acc-4", DisplayName: "Zara Khan", Handle: "zara_k",
	}); err != nil {
		t.Fatalf("create account: %v", err)
	}

	got := handles(idx, t, "zara")
	if len(got) != 1 || got[0] != "zara_k" {
		t.Fatalf("new account must be searchable immediately, got %v", got)
	}
}
