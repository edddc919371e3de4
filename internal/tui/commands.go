package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/sift/internal/debuglog"
	"github.com/pders01/sift/internal/search"
	"github.com/pders01/sift/internal/session"
	"github.com/pders01/sift/internal/storage"
)

// performSearch runs the backend call off the update loop. Exactly one
// searchCompletedMsg comes back for every ticket, whatever happens.
func (a *App) performSearch(ctx context.Context, cancel context.CancelFunc, t session.Ticket) tea.Cmd {
	searcher := a.searcher
	return func() tea.Msg {
		defer cancel()
		if searcher == nil {
			return searchCompletedMsg{ticket: t, err: fmt.Errorf("no search backend configured")}
		}
		results, err := searcher.Search(search.WithRequestID(ctx, t.RequestID), t.Query)
		return searchCompletedMsg{ticket: t, results: results, err: err}
	}
}

func (a *App) renderDetail(r search.Result, query string) tea.Cmd {
	score := FormatRelevance(r.Score)
	renderer, rendererErr := a.getRenderer()
	return func() tea.Msg {
		var content strings.Builder
		title := r.Title
		if title == "" {
			title = r.URL
		}
		content.WriteString(fmt.Sprintf("# %s\n\n", title))
		content.WriteString(fmt.Sprintf("*%s*", score))
		if query != "" {
			content.WriteString(fmt.Sprintf(" · matched `%s`", query))
		}
		content.WriteString("\n\n")

		if r.URL != "" {
			content.WriteString(fmt.Sprintf("[%s](%s)\n\n", r.URL, r.URL))
		}

		content.WriteString("---\n\n")
		content.WriteString(r.Text)

		if rendererErr != nil {
			return detailRenderedMsg{url: r.URL, content: "Error initializing renderer: " + rendererErr.Error()}
		}

		rendered, err := renderer.Render(content.String())
		if err != nil {
			return detailRenderedMsg{url: r.URL, content: fmt.Sprintf("Failed to render result: %s\n\n%s", err, r.Text)}
		}
		return detailRenderedMsg{url: r.URL, content: rendered}
	}
}

func (a *App) recordHistory(query string, count int) tea.Cmd {
	if a.store == nil {
		return nil
	}
	store, limit := a.store, a.config.Storage.HistoryLimit
	return func() tea.Msg {
		if err := retryOperation(func() error { return store.RecordQuery(query, count) }); err != nil {
			debuglog.Warnf("recording history for %q: %v", query, err)
			return statusMsg{text: "History not saved", kind: StatusWarn}
		}
		if limit > 0 {
			if n, err := store.PruneHistory(limit); err != nil {
				debuglog.Warnf("pruning history: %v", err)
			} else if n > 0 {
				debuglog.Debugf("pruned %d history entries", n)
			}
		}
		return nil
	}
}

func (a *App) loadHistory() tea.Cmd {
	if a.store == nil {
		return nil
	}
	store, limit := a.store, a.config.Storage.HistoryLimit
	return func() tea.Msg {
		entries, err := store.GetHistory(limit)
		if err != nil {
			return errorMsg{err: wrapErr("loading history", err)}
		}
		return historyLoadedMsg{entries: entries}
	}
}

func (a *App) loadBookmarks() tea.Cmd {
	if a.store == nil {
		return nil
	}
	store := a.store
	return func() tea.Msg {
		bookmarks, err := store.GetBookmarks()
		if err != nil {
			return errorMsg{err: wrapErr("loading bookmarks", err)}
		}
		return bookmarksLoadedMsg{bookmarks: bookmarks}
	}
}

func (a *App) saveBookmark(r search.Result, query string) tea.Cmd {
	if a.store == nil {
		return nil
	}
	store := a.store
	return func() tea.Msg {
		saved, err := store.SaveBookmark(r, query)
		return bookmarkSavedMsg{bookmark: saved, err: err}
	}
}

func (a *App) deleteBookmark(id string) tea.Cmd {
	if a.store == nil {
		return nil
	}
	store := a.store
	return func() tea.Msg {
		err := retryOperation(func() error { return store.DeleteBookmark(id) })
		return bookmarkDeletedMsg{err: err}
	}
}

func (a *App) deleteHistoryEntry(query string) tea.Cmd {
	if a.store == nil {
		return nil
	}
	store := a.store
	return func() tea.Msg {
		err := retryOperation(func() error { return store.DeleteHistoryEntry(query) })
		return historyDeletedMsg{err: err}
	}
}

func (a *App) openURL(url string) tea.Cmd {
	if a.launcher == nil || url == "" {
		return nil
	}
	launcher := a.launcher
	return func() tea.Msg {
		if err := launcher.Open(url); err != nil {
			return errorMsg{err: wrapErr("open", err)}
		}
		return statusMsg{text: MsgOpened, kind: StatusSuccess}
	}
}

// retryOperation retries a database write up to 3 times with exponential
// backoff; bbolt returns a timeout while another process holds the file.
func retryOperation(operation func() error) error {
	maxRetries := 3
	baseDelay := 100 * time.Millisecond

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		if err := operation(); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return err
			}
			lastErr = err
			if i < maxRetries-1 {
				time.Sleep(baseDelay * time.Duration(1<<i))
			}
			continue
		}
		return nil
	}
	return lastErr
}
