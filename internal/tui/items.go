package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/sift/internal/config"
	"github.com/pders01/sift/internal/search"
	"github.com/pders01/sift/internal/storage"
)

const urlDisplayWidth = 72

type resultItem struct {
	result     search.Result
	rank       int
	relevance  config.RelevanceConfig
	snippetLen int
	bookmarked bool
}

func (i resultItem) Title() string {
	title := strings.TrimSpace(i.result.Title)
	if title == "" {
		title = i.result.URL
	}
	prefix := fmt.Sprintf("%d. ", i.rank)
	if i.bookmarked {
		prefix += "★ "
	}
	return prefix + title
}

func (i resultItem) Description() string {
	line := RelevanceBadge(i.result.Score, i.relevance) + " " +
		renderMuted("• "+truncateMiddle(i.result.URL, urlDisplayWidth))

	if snippet := snippet(i.result.Text, i.snippetLen); snippet != "" {
		line += "\n" + renderMuted(snippet)
	}
	return line
}

func (i resultItem) FilterValue() string { return i.result.Title }

// snippet flattens whitespace so a multi-line text fits one list row.
func snippet(text string, limit int) string {
	return truncateEnd(strings.Join(strings.Fields(text), " "), limit)
}

type historyItem struct {
	entry *storage.HistoryEntry
}

func (i historyItem) Title() string { return i.entry.Query }

func (i historyItem) Description() string {
	times := "once"
	if i.entry.Count > 1 {
		times = fmt.Sprintf("%d times", i.entry.Count)
	}
	return lipgloss.NewStyle().Foreground(MutedColor).Render(
		fmt.Sprintf("searched %s • %s • ", times, MsgResultsCount(i.entry.LastResultCount)),
	) + TimeStyle.Render(i.entry.SearchedAt.Format("Jan 2, 15:04"))
}

func (i historyItem) FilterValue() string { return i.entry.Query }

type bookmarkItem struct {
	bookmark  *storage.Bookmark
	relevance config.RelevanceConfig
}

func (i bookmarkItem) Title() string {
	if i.bookmark.Title == "" {
		return "★ " + i.bookmark.URL
	}
	return "★ " + i.bookmark.Title
}

func (i bookmarkItem) Description() string {
	line := RelevanceBadge(i.bookmark.Score, i.relevance) + " " +
		renderMuted("• "+truncateMiddle(i.bookmark.URL, urlDisplayWidth))
	if i.bookmark.Query != "" {
		line += "\n" + renderMuted(fmt.Sprintf("from %q • saved %s", i.bookmark.Query, i.bookmark.SavedAt.Format("Jan 2")))
	}
	return line
}

func (i bookmarkItem) FilterValue() string { return i.bookmark.Title }

func (i bookmarkItem) asResult() search.Result {
	return search.Result{
		Title: i.bookmark.Title,
		URL:   i.bookmark.URL,
		Score: i.bookmark.Score,
		Text:  i.bookmark.Text,
	}
}
