package history

import "time"

// Session is a conversation as the archive records it.
type Session struct {
	ID        string
	Title     string
	ModelRef  string
	CreatedAt time.Time
	Messages  []Message
}

// Message is one archived turn. Kind distinguishes image messages from text.
type Message struct {
	ID        string
	Role      string
	Content   string
	Kind      string
	CreatedAt time.Time
}

// SearchResult is a hit from the FTS index.
type SearchResult struct {
	SessionID    string
	SessionTitle string
	Role         string
	Preview      string
	CreatedAt    time.Time
}

// SessionSummary is one row of the session list.
type SessionSummary struct {
	ID        string
	Title     string
	ModelRef  string
	CreatedAt time.Time
	Messages  int
}
