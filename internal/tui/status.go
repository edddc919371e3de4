package tui

import (
	"fmt"
	"strings"
)

const (
	MsgSearching       = "Searching…"
	MsgLoadingDetail   = "Rendering…"
	MsgBookmarked      = "Bookmarked"
	MsgBookmarkRemoved = "Bookmark removed"
	MsgHistoryRemoved  = "Removed from history"
	MsgOpened          = "Opened in browser"
	MsgWelcomeHint     = "Type a query and press enter to search"
	MsgRetryHint       = "Nothing to show yet. Press enter to try again"
	MsgEmptyHistory    = "No searches yet"
	MsgEmptyBookmarks  = "No bookmarks yet. Press ctrl+b on a result to save it"
)

func MsgSearchingFor(query string) string {
	return fmt.Sprintf("Searching for %q…", strings.TrimSpace(query))
}

func MsgNoResultsFor(query string) string {
	return fmt.Sprintf("No results for %q", query)
}

func MsgResultsCount(n int) string {
	if n == 1 {
		return "1 result"
	}
	return fmt.Sprintf("%d results", n)
}
