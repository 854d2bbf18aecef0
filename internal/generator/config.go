package generator

// Config drives the synthetic social graph generator.
type Config struct {
	NumAccounts     int
	NumFollows      int
	NumPosts        int
	HubAccountShare float64
	HubFollowChance float64
	Seed            int64
}

// DefaultConfig returns baseline settings that produce a graph with a few
// high-follower hubs and enough two-hop paths for ranking queries.
func DefaultConfig() Config {
	return Config{
		NumAccounts:     1000,
		NumFollows:      15000,
		NumPosts:        5000,
		HubAccountShare: 0.05,
		HubFollowChance: 0.4,
		Seed:            42,
	}
}
