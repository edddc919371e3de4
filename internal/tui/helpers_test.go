package tui

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/pders01/sift/internal/config"
	"github.com/pders01/sift/internal/search"
	"github.com/pders01/sift/internal/storage"
)

var reshapeResults = []search.Result{
	{Title: "Reshape", URL: "https://x", Score: 0.92, Text: "..."},
	{Title: "Tensor ops", URL: "https://y", Score: 0.4, Text: "..."},
}

// fakeSearcher answers from fixed per-query tables. A canceled context
// fails the call the way the HTTP client would.
type fakeSearcher struct {
	mu        sync.Mutex
	calls     []string
	responses map[string][]search.Result
	errs      map[string]error
}

func (f *fakeSearcher) Search(ctx context.Context, query string) ([]search.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, query)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, &search.TransportError{Op: search.OpRequest, Query: query, Err: err}
	}
	if err := f.errs[query]; err != nil {
		return nil, err
	}
	return f.responses[query], nil
}

func (f *fakeSearcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeLauncher struct {
	opened []string
	err    error
}

func (f *fakeLauncher) Open(url string) error {
	if f.err != nil {
		return f.err
	}
	f.opened = append(f.opened, url)
	return nil
}

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "tui.db"), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestApp(t *testing.T, searcher search.Searcher) (*App, *storage.Store, *fakeLauncher) {
	t.Helper()
	cfg := config.TestConfig()
	store := newTestStore(t)
	launcher := &fakeLauncher{}

	app := NewApp(searcher, store, launcher, cfg)
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return app, store, launcher
}

// setQuery replaces the input content by typing, so the draft follows.
func setQuery(app *App, q string) {
	app.input.SetValue("")
	app.session.SetDraftQuery("")
	if q != "" {
		app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(q)})
	}
}

func press(app *App, k tea.KeyType) tea.Cmd {
	_, cmd := app.Update(tea.KeyMsg{Type: k})
	return cmd
}

// execCmd runs cmd and any batched children, returning the messages that
// arrive promptly. Timer-driven commands (cursor blink, spinner frames)
// are abandoned.
func execCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}

	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, execCmd(c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(2 * time.Second):
		return nil
	}
}

// runAll feeds every prompt message from cmd back into the app, one level
// deep, and returns the follow-up commands' messages too.
func runAll(app *App, cmd tea.Cmd) {
	for _, msg := range execCmd(cmd) {
		if _, ok := msg.(tea.QuitMsg); ok {
			continue
		}
		_, next := app.Update(msg)
		for _, m := range execCmd(next) {
			app.Update(m)
		}
	}
}

func completion(t *testing.T, cmd tea.Cmd) searchCompletedMsg {
	t.Helper()
	for _, msg := range execCmd(cmd) {
		if done, ok := msg.(searchCompletedMsg); ok {
			return done
		}
	}
	t.Fatal("command did not produce a searchCompletedMsg")
	return searchCompletedMsg{}
}
