package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/sift/internal/config"
	"github.com/pders01/sift/internal/search"
)

func TestKeyHandler_ModifierKey(t *testing.T) {
	app := NewApp(&fakeSearcher{}, nil, nil, config.TestConfig())

	assert.NotNil(t, app.keyHandler)
	assert.Equal(t, "ctrl+", app.keyHandler.modifierKey)
	assert.Equal(t, "ctrl+o", app.keyHandler.mod("o"))
}

func TestKeyHandler_CustomModifier(t *testing.T) {
	cfg := config.TestConfig()
	cfg.Keys.Modifier = "alt"
	app := NewApp(&fakeSearcher{}, nil, nil, cfg)

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r"), Alt: true})
	assert.Equal(t, ViewHistory, app.view)

	// ctrl+r no longer switches views; it is passed to the text input
	app.view = ViewSearch
	app.input.Focus()
	press(app, tea.KeyCtrlR)
	assert.Equal(t, ViewSearch, app.view)
}

func TestKeyHandler_ViewSwitching(t *testing.T) {
	tests := []struct {
		name   string
		start  View
		key    tea.KeyType
		expect View
	}{
		{name: "ctrl+r opens history", start: ViewSearch, key: tea.KeyCtrlR, expect: ViewHistory},
		{name: "ctrl+l opens bookmarks", start: ViewSearch, key: tea.KeyCtrlL, expect: ViewBookmarks},
		{name: "history to bookmarks", start: ViewHistory, key: tea.KeyCtrlL, expect: ViewBookmarks},
		{name: "bookmarks to history", start: ViewBookmarks, key: tea.KeyCtrlR, expect: ViewHistory},
		{name: "esc leaves history", start: ViewHistory, key: tea.KeyEsc, expect: ViewSearch},
		{name: "esc leaves bookmarks", start: ViewBookmarks, key: tea.KeyEsc, expect: ViewSearch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _, _ := newTestApp(t, &fakeSearcher{})
			app.view = tt.start
			if tt.start != ViewSearch {
				app.input.Blur()
			}

			press(app, tt.key)
			assert.Equal(t, tt.expect, app.view)
		})
	}
}

func TestKeyHandler_TextInputSwallowsLetters(t *testing.T) {
	app, _, _ := newTestApp(t, &fakeSearcher{})

	// "q" quits only outside the input
	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.Equal(t, "q", app.input.Value())
	assert.Equal(t, "q", app.session.DraftQuery())
	assert.Equal(t, ViewSearch, app.view)
}

func TestKeyHandler_QuitOutsideInput(t *testing.T) {
	app, _, _ := newTestApp(t, &fakeSearcher{})
	app.input.Blur()

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestKeyHandler_TabWithoutResultsKeepsFocus(t *testing.T) {
	app, _, _ := newTestApp(t, &fakeSearcher{})

	press(app, tea.KeyTab)
	assert.True(t, app.input.Focused())
}

func TestKeyHandler_FocusReturnsToInput(t *testing.T) {
	backend := &fakeSearcher{responses: map[string][]search.Result{"q": reshapeResults}}
	app, _, _ := newTestApp(t, backend)

	setQuery(app, "q")
	app.Update(completion(t, press(app, tea.KeyEnter)))

	press(app, tea.KeyTab)
	require.False(t, app.input.Focused())
	assert.Equal(t, 0, app.results.Index())

	press(app, tea.KeyUp)
	assert.True(t, app.input.Focused(), "up on the first result returns to the input")

	press(app, tea.KeyTab)
	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	assert.True(t, app.input.Focused())
	assert.Equal(t, "q", app.input.Value())
}

func TestKeyHandler_EnterInInputSubmitsDraftNotSelection(t *testing.T) {
	backend := &fakeSearcher{responses: map[string][]search.Result{"q": reshapeResults}}
	app, _, _ := newTestApp(t, backend)

	setQuery(app, "q")
	app.Update(completion(t, press(app, tea.KeyEnter)))

	setQuery(app, "next")
	press(app, tea.KeyEnter)
	assert.Equal(t, ViewSearch, app.view)
	assert.True(t, app.session.Loading())
}

func TestKeyHandler_HelpPerView(t *testing.T) {
	app, _, _ := newTestApp(t, &fakeSearcher{})
	kh := app.keyHandler

	assert.Equal(t, []string{"enter: search", "ctrl+r: history", "ctrl+l: bookmarks", "ctrl+c: quit"},
		kh.GetHelpForCurrentView())

	app.results.SetItems(nil)
	app.input.Blur()
	assert.Contains(t, kh.GetHelpForCurrentView(), "ctrl+o: open")

	app.view = ViewDetail
	assert.Contains(t, kh.GetHelpForCurrentView(), "esc: back")

	app.view = ViewHistory
	assert.Contains(t, kh.GetHelpForCurrentView(), "ctrl+x: delete")

	app.view = ViewBookmarks
	assert.Contains(t, kh.GetHelpForCurrentView(), "enter: details")
}

func TestKeyHandler_ErrorClearedOnKey(t *testing.T) {
	app, _, _ := newTestApp(t, &fakeSearcher{})
	app.Update(errorMsg{err: assert.AnError})
	require.Error(t, app.err)

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	assert.NoError(t, app.err)
}
