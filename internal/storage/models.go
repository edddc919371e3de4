package storage

import (
	"time"
)

// HistoryEntry is one distinct query the user has submitted.
type HistoryEntry struct {
	Query           string    `json:"query"`
	Count           int       `json:"count"`
	LastResultCount int       `json:"last_result_count"`
	FirstSearchedAt time.Time `json:"first_searched_at"`
	SearchedAt      time.Time `json:"searched_at"`
}

// Bookmark is a saved search result together with the query that found it.
type Bookmark struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	URL     string    `json:"url"`
	Score   float64   `json:"score"`
	Text    string    `json:"text"`
	Query   string    `json:"query"`
	SavedAt time.Time `json:"saved_at"`
}
