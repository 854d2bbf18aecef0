package generator

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/devansh/connectly/backend/internal/service"
)

// Dataset contains the generated accounts, follow edges and posts.
type Dataset struct {
	Accounts []service.AccountSeed `json:"accounts"`
	Follows  []service.FollowSeed  `json:"follows"`
	Posts    []service.PostSeed    `json:"posts"`
}

// Generator produces synthetic social graph data aligned with the store schema.
type Generator struct {
	cfg   Config
	rand  *rand.Rand
	names nameFragments
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	if cfg.NumAccounts <= 0 {
		cfg.NumAccounts = DefaultConfig().NumAccounts
	}
	if cfg.NumFollows <= 0 {
		cfg.NumFollows = DefaultConfig().NumFollows
	}
	if cfg.NumPosts < 0 {
		cfg.NumPosts = DefaultConfig().NumPosts
	}
	if cfg.HubAccountShare <= 0 {
		cfg.HubAccountShare = DefaultConfig().HubAccountShare
	}
	if cfg.HubFollowChance <= 0 {
		cfg.HubFollowChance = DefaultConfig().HubFollowChance
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:   cfg,
		rand:  rand.New(rand.NewSource(cfg.Seed)),
		names: defaultNameFragments(),
	}
}

// Generate synthesises the dataset. It respects context cancellation.
func (g *Generator) Generate(ctx context.Context) (Dataset, error) {
	accounts := make([]service.AccountSeed, g.cfg.NumAccounts)
	for i := 0; i < g.cfg.NumAccounts; i++ {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}

		first := g.names.first[g.rand.Intn(len(g.names.first))]
		last := g.names.last[g.rand.Intn(len(g.names.last))]
		username := strings.ToLower(fmt.Sprintf("%s_%s_%04d", first, last, i+1))

		accounts[i] = service.AccountSeed{
			ID:       fmt.Sprintf("ACC-%06d", i+1),
			Name:     first + " " + last,
			Username: username,
			Email:    fmt.Sprintf("%s@%s", username, g.names.domains[g.rand.Intn(len(g.names.domains))]),
			Bio:      g.randomBio(),
			Avatar:   fmt.Sprintf("avatar_%d", 1+g.rand.Intn(10)),
		}
	}

	hubCount := int(float64(g.cfg.NumAccounts) * g.cfg.HubAccountShare)
	if hubCount < 1 {
		hubCount = 1
	}

	// Duplicate edges are fine: the follow operation is idempotent, so the
	// loaded graph simply ends up slightly below NumFollows edges.
	follows := make([]service.FollowSeed, 0, g.cfg.NumFollows)
	for i := 0; i < g.cfg.NumFollows; i++ {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}

		followerIdx := g.rand.Intn(len(accounts))
		var followeeIdx int
		if g.rand.Float64() < g.cfg.HubFollowChance {
			followeeIdx = g.rand.Intn(hubCount)
		} else {
			followeeIdx = g.rand.Intn(len(accounts))
		}
		if followeeIdx == followerIdx {
			followeeIdx = (followeeIdx + 1) % len(accounts)
		}

		follows = append(follows, service.FollowSeed{
			FollowerID: accounts[followerIdx].ID,
			FolloweeID: accounts[followeeIdx].ID,
		})
	}

	posts := make([]service.PostSeed, g.cfg.NumPosts)
	for i := 0; i < g.cfg.NumPosts; i++ {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		author := accounts[g.rand.Intn(len(accounts))]
		posts[i] = service.PostSeed{
			AuthorID: author.ID,
			Content:  g.randomPostContent(),
		}
	}

	return Dataset{Accounts: accounts, Follows: follows, Posts: posts}, nil
}

func (g *Generator) randomBio() string {
	if g.rand.Float64() < 0.3 {
		return ""
	}
	return g.names.bios[g.rand.Intn(len(g.names.bios))]
}

func (g *Generator) randomPostContent() string {
	return fmt.Sprintf("%s %s", g.names.postOpeners[g.rand.Intn(len(g.names.postOpeners))],
		g.names.postTopics[g.rand.Intn(len(g.names.postTopics))])
}

type nameFragments struct {
	first       []string
	last        []string
	domains     []string
	bios        []string
	postOpeners []string
	postTopics  []string
}

func defaultNameFragments() nameFragments {
	return nameFragments{
		first:   []string{"Jane", "John", "Alex", "Priya", "Liu", "Maria", "Omar", "Sofia", "Noah", "Emma", "Lucas", "Mia", "Ava", "Ethan", "Zara"},
		last:    []string{"Doe", "Smith", "Chen", "Patel", "Garcia", "Khan", "Kim", "Ivanov", "Nguyen", "Silva", "Brown", "Lee"},
		domains: []string{"example.com", "mail.com", "connectly.io", "inbox.net"},
		bios: []string{
			"Coffee first, everything else later.",
			"Building things on the internet.",
			"Amateur photographer, professional napper.",
			"Here for the memes.",
			"Runner. Reader. Occasional writer.",
			"Exploring one city at a time.",
		},
		postOpeners: []string{"Just finished", "Thinking about", "Can't believe", "Today I learned about", "Hot take:", "Finally tried"},
		postTopics:  []string{"the new release.", "a long weekend hike.", "sourdough baking.", "that concert last night.", "graph databases.", "the season finale.", "a mechanical keyboard build."},
	}
}
