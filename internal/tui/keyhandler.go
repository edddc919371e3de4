package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/sift/internal/config"
	"github.com/pders01/sift/internal/search"
)

type KeyHandler struct {
	app         *App
	bindings    config.KeyBindings
	modifierKey string
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	return &KeyHandler{
		app:         app,
		bindings:    cfg.Keys.Bindings,
		modifierKey: cfg.Keys.Modifier + "+",
	}
}

// mod returns the modified form of a binding, e.g. "o" -> "ctrl+o".
func (kh *KeyHandler) mod(binding string) string {
	return kh.modifierKey + binding
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Any key acknowledges a non-search error.
	kh.app.err = nil

	if key == "ctrl+c" {
		return kh.app, kh.app.shutdown()
	}

	if kh.isInTextInputMode() {
		return kh.handleTextInputMode(msg)
	}

	if model, cmd, handled := kh.handleCustomKeys(key); handled {
		return model, cmd
	}

	return kh.delegateToCharm(msg)
}

func (kh *KeyHandler) isInTextInputMode() bool {
	return kh.app.view == ViewSearch && kh.app.input.Focused()
}

func (kh *KeyHandler) handleTextInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "enter":
		return kh.app, kh.app.submitSearch()

	case "esc":
		kh.app.input.Reset()
		kh.app.session.SetDraftQuery("")
		return kh.app, nil

	case "tab", "down":
		if len(kh.app.results.Items()) > 0 {
			kh.app.input.Blur()
			kh.app.results.Select(0)
		}
		return kh.app, nil

	case kh.mod(kh.bindings.History):
		return kh.app, kh.showHistory()

	case kh.mod(kh.bindings.Bookmarks):
		return kh.app, kh.showBookmarks()

	default:
		var cmd tea.Cmd
		kh.app.input, cmd = kh.app.input.Update(msg)
		kh.app.session.SetDraftQuery(kh.app.input.Value())
		return kh.app, cmd
	}
}

// handleCustomKeys handles only our custom action keys
func (kh *KeyHandler) handleCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case kh.bindings.Quit:
		return kh.app, kh.app.shutdown(), true
	case kh.bindings.Back:
		model, cmd := kh.navigateBack()
		return model, cmd, true
	case kh.mod(kh.bindings.History):
		return kh.app, kh.showHistory(), true
	case kh.mod(kh.bindings.Bookmarks):
		return kh.app, kh.showBookmarks(), true
	}

	switch kh.app.view {
	case ViewSearch:
		return kh.handleResultsCustomKeys(key)
	case ViewDetail:
		return kh.handleDetailCustomKeys(key)
	case ViewHistory:
		return kh.handleHistoryCustomKeys(key)
	case ViewBookmarks:
		return kh.handleBookmarksCustomKeys(key)
	default:
		return kh.app, nil, false
	}
}

func (kh *KeyHandler) handleResultsCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case kh.mod(kh.bindings.Open):
		if r, ok := kh.app.selectedResult(); ok {
			return kh.app, kh.app.openURL(r.URL), true
		}
		return kh.app, nil, true
	case kh.mod(kh.bindings.Bookmark):
		if r, ok := kh.app.selectedResult(); ok {
			return kh.app, kh.app.saveBookmark(r, kh.app.session.CommittedQuery()), true
		}
		return kh.app, nil, true
	case "tab", "shift+tab", "/", "i":
		kh.app.input.Focus()
		return kh.app, nil, true
	case "up":
		if kh.app.results.Index() == 0 {
			kh.app.input.Focus()
			return kh.app, nil, true
		}
	}
	return kh.app, nil, false
}

func (kh *KeyHandler) handleDetailCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	if kh.app.detail == nil {
		return kh.app, nil, false
	}
	switch key {
	case kh.mod(kh.bindings.Open):
		return kh.app, kh.app.openURL(kh.app.detail.URL), true
	case kh.mod(kh.bindings.Bookmark):
		return kh.app, kh.app.saveBookmark(*kh.app.detail, kh.app.detailQuery), true
	}
	return kh.app, nil, false
}

func (kh *KeyHandler) handleHistoryCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	item, ok := kh.app.historyList.SelectedItem().(historyItem)
	if !ok {
		return kh.app, nil, false
	}
	switch key {
	case "enter":
		return kh.app, kh.rerun(item.entry.Query), true
	case kh.mod(kh.bindings.Delete):
		return kh.app, kh.app.deleteHistoryEntry(item.entry.Query), true
	}
	return kh.app, nil, false
}

func (kh *KeyHandler) handleBookmarksCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	item, ok := kh.app.bookmarkList.SelectedItem().(bookmarkItem)
	if !ok {
		return kh.app, nil, false
	}
	switch key {
	case "enter":
		return kh.app, kh.showDetail(item.asResult(), item.bookmark.Query), true
	case kh.mod(kh.bindings.Open):
		return kh.app, kh.app.openURL(item.bookmark.URL), true
	case kh.mod(kh.bindings.Delete):
		return kh.app, kh.app.deleteBookmark(item.bookmark.ID), true
	}
	return kh.app, nil, false
}

// delegateToCharm lets the bubbles components handle navigation keys.
func (kh *KeyHandler) delegateToCharm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch kh.app.view {
	case ViewSearch:
		if msg.String() == "enter" {
			if r, ok := kh.app.selectedResult(); ok {
				return kh.app, kh.showDetail(r, kh.app.session.CommittedQuery())
			}
			return kh.app, nil
		}
		kh.app.results, cmd = kh.app.results.Update(msg)
		return kh.app, cmd

	case ViewDetail:
		kh.app.viewport, cmd = kh.app.viewport.Update(msg)
		return kh.app, cmd

	case ViewHistory:
		kh.app.historyList, cmd = kh.app.historyList.Update(msg)
		return kh.app, cmd

	case ViewBookmarks:
		kh.app.bookmarkList, cmd = kh.app.bookmarkList.Update(msg)
		return kh.app, cmd

	default:
		return kh.app, nil
	}
}

func (kh *KeyHandler) showDetail(r search.Result, query string) tea.Cmd {
	result := r
	kh.app.detail = &result
	kh.app.detailQuery = query
	kh.app.loadingDetail = true
	kh.app.previousView = kh.app.view
	kh.app.view = ViewDetail
	kh.app.setStatus(MsgLoadingDetail, StatusInfo)
	return tea.Batch(kh.app.spinner.Tick, kh.app.renderDetail(result, query))
}

func (kh *KeyHandler) showHistory() tea.Cmd {
	kh.app.view = ViewHistory
	kh.app.input.Blur()
	return kh.app.loadHistory()
}

func (kh *KeyHandler) showBookmarks() tea.Cmd {
	kh.app.view = ViewBookmarks
	kh.app.input.Blur()
	return kh.app.loadBookmarks()
}

// rerun puts a past query back into the input and submits it.
func (kh *KeyHandler) rerun(query string) tea.Cmd {
	kh.app.view = ViewSearch
	kh.app.input.SetValue(query)
	kh.app.input.Focus()
	kh.app.session.SetDraftQuery(query)
	return kh.app.submitSearch()
}

func (kh *KeyHandler) navigateBack() (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewDetail:
		kh.app.view = kh.app.previousView
		kh.app.detail = nil
		kh.app.loadingDetail = false
		kh.app.clearStatus()
		return kh.app, nil

	case ViewHistory, ViewBookmarks:
		kh.app.view = ViewSearch
		kh.app.input.Focus()
		return kh.app, nil

	case ViewSearch:
		kh.app.input.Focus()
		return kh.app, nil

	default:
		return kh.app, kh.app.shutdown()
	}
}

// GetHelpForCurrentView returns the custom key hints for the status bar.
func (kh *KeyHandler) GetHelpForCurrentView() []string {
	switch kh.app.view {
	case ViewSearch:
		if kh.app.input.Focused() {
			help := []string{"enter: search"}
			if len(kh.app.results.Items()) > 0 {
				help = append(help, "tab: results")
			}
			return append(help,
				kh.mod(kh.bindings.History)+": history",
				kh.mod(kh.bindings.Bookmarks)+": bookmarks",
				"ctrl+c: quit")
		}
		return []string{
			"enter: details",
			kh.mod(kh.bindings.Open) + ": open",
			kh.mod(kh.bindings.Bookmark) + ": bookmark",
			"tab: edit query",
			kh.bindings.Quit + ": quit",
		}

	case ViewDetail:
		return []string{kh.mod(kh.bindings.Open) + ": open", kh.mod(kh.bindings.Bookmark) + ": bookmark", kh.bindings.Back + ": back"}

	case ViewHistory:
		return []string{"enter: search again", kh.mod(kh.bindings.Delete) + ": delete", kh.bindings.Back + ": back"}

	case ViewBookmarks:
		return []string{"enter: details", kh.mod(kh.bindings.Open) + ": open", kh.mod(kh.bindings.Delete) + ": delete", kh.bindings.Back + ": back"}

	default:
		return []string{}
	}
}
