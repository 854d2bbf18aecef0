package domain

import "time"

// Post is a minimal piece of content attached to an account. Posts exist so
// the feed query has something to traverse; likes and replies are out of
// scope.
type Post struct {
	ID        string
	AuthorID  string
	Content   string
	CreatedAt time.Time
}

// FeedEntry pairs a post with the author it was reached through.
type FeedEntry struct {
	Post   Post
	Author Profile
}
