package tui

import (
	"github.com/pders01/sift/internal/search"
	"github.com/pders01/sift/internal/session"
	"github.com/pders01/sift/internal/storage"
)

type View int

const (
	ViewSearch View = iota
	ViewDetail
	ViewHistory
	ViewBookmarks
)

func (v View) String() string {
	switch v {
	case ViewSearch:
		return "search"
	case ViewDetail:
		return "detail"
	case ViewHistory:
		return "history"
	case ViewBookmarks:
		return "bookmarks"
	default:
		return "unknown"
	}
}

// searchCompletedMsg carries a finished backend call back into the update
// loop together with the ticket it was issued under.
type searchCompletedMsg struct {
	ticket  session.Ticket
	results []search.Result
	err     error
}

type detailRenderedMsg struct {
	url     string
	content string
}

type historyLoadedMsg struct {
	entries []*storage.HistoryEntry
}

type bookmarksLoadedMsg struct {
	bookmarks []*storage.Bookmark
}

type bookmarkSavedMsg struct {
	bookmark *storage.Bookmark
	err      error
}

type bookmarkDeletedMsg struct {
	err error
}

type historyDeletedMsg struct {
	err error
}

type statusMsg struct {
	text string
	kind StatusKind
}

type errorMsg struct {
	err error
}
