package tui

import (
	"context"
	"net/url"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/sift/internal/config"
	"github.com/pders01/sift/internal/search"
	"github.com/pders01/sift/internal/session"
	"github.com/pders01/sift/internal/storage"
	"github.com/pders01/sift/internal/validation"
)

// Store is the subset of storage.Store the TUI uses for history and
// bookmarks.
type Store interface {
	RecordQuery(query string, resultCount int) error
	PruneHistory(keep int) (int, error)
	GetHistory(limit int) ([]*storage.HistoryEntry, error)
	DeleteHistoryEntry(query string) error
	SaveBookmark(r search.Result, query string) (*storage.Bookmark, error)
	GetBookmarks() ([]*storage.Bookmark, error)
	DeleteBookmark(id string) error
	IsBookmarked(url string) bool
}

// URLOpener hands a URL to an external program.
type URLOpener interface {
	Open(url string) error
}

// headerLines + input frame + help line + separator + status bar
const searchChromeHeight = 9

type App struct {
	config     *config.Config
	session    *session.Session
	searcher   search.Searcher
	store      Store
	launcher   URLOpener
	keyHandler *KeyHandler

	input        textinput.Model
	results      list.Model
	historyList  list.Model
	bookmarkList list.Model
	viewport     viewport.Model
	spinner      spinner.Model

	view         View
	previousView View

	// in-flight request bookkeeping; the session decides what commits
	ctx            context.Context
	inFlight       session.Ticket
	cancelInFlight context.CancelFunc
	initialQuery   string

	detail        *search.Result
	detailQuery   string
	loadingDetail bool

	status     string
	statusKind StatusKind
	err        error

	width           int
	height          int
	glamourRenderer *glamour.TermRenderer
	rendererWidth   int
}

func newList(title string) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.SetHeight(3)

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	return l
}

// NewApp wires the session to a searcher. store and launcher may be nil,
// which disables history/bookmarks and opening URLs respectively.
func NewApp(searcher search.Searcher, store Store, launcher URLOpener, cfg *config.Config) *App {
	ti := textinput.New()
	ti.Placeholder = "Search the docs…"
	ti.Prompt = "› "
	ti.CharLimit = validation.MaxQueryLength
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(AccentColor)

	history := newList("› history")
	historyDelegate := list.NewDefaultDelegate()
	historyDelegate.SetHeight(2)
	history.SetDelegate(historyDelegate)

	app := &App{
		config:       cfg,
		session:      session.New(),
		searcher:     searcher,
		store:        store,
		launcher:     launcher,
		input:        ti,
		results:      newList("› results"),
		historyList:  history,
		bookmarkList: newList("› bookmarks"),
		viewport:     viewport.New(0, 0),
		spinner:      sp,
		view:         ViewSearch,
		previousView: ViewSearch,
		ctx:          context.Background(),
	}

	app.keyHandler = NewKeyHandler(app, cfg)

	return app
}

// WithContext sets the parent context for backend calls. Canceling it
// aborts any in-flight request.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Prefill puts query in the input and submits it when the program starts.
func (a *App) Prefill(query string) {
	a.input.SetValue(query)
	a.session.SetDraftQuery(query)
	a.initialQuery = query
}

// Session exposes the state machine for read-only inspection.
func (a *App) Session() *session.Session {
	return a.session
}

func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	wordWrapWidth := wrapWidth(a.width, a.config.UI.Results.WordWrapMinWidth, a.config.UI.Results.WordWrapMaxWidth)

	if a.glamourRenderer == nil || abs(a.rendererWidth-wordWrapWidth) > 10 {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wordWrapWidth),
		)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wordWrapWidth
	}

	return a.glamourRenderer, nil
}

func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if a.initialQuery != "" {
		cmds = append(cmds, a.submitSearch())
	}
	return tea.Batch(cmds...)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case spinner.TickMsg:
		// Let the tick chain die once nothing is loading.
		if !a.session.Loading() && !a.loadingDetail {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case searchCompletedMsg:
		return a, a.completeSearch(msg)

	case detailRenderedMsg:
		if a.view == ViewDetail && a.detail != nil && a.detail.URL == msg.url {
			a.viewport.SetContent(msg.content)
			a.viewport.GotoTop()
			a.loadingDetail = false
			a.clearStatus()
		}

	case historyLoadedMsg:
		items := make([]list.Item, len(msg.entries))
		for i, e := range msg.entries {
			items[i] = historyItem{entry: e}
		}
		return a, a.historyList.SetItems(items)

	case bookmarksLoadedMsg:
		items := make([]list.Item, len(msg.bookmarks))
		for i, bm := range msg.bookmarks {
			items[i] = bookmarkItem{bookmark: bm, relevance: a.config.UI.Relevance}
		}
		return a, a.bookmarkList.SetItems(items)

	case bookmarkSavedMsg:
		if msg.err != nil {
			a.err = wrapErr("bookmark", msg.err)
			return a, nil
		}
		a.setStatus(MsgBookmarked, StatusSuccess)
		a.refreshResultItems()

	case bookmarkDeletedMsg:
		if msg.err != nil {
			a.err = wrapErr("delete bookmark", msg.err)
			return a, nil
		}
		a.setStatus(MsgBookmarkRemoved, StatusSuccess)
		a.refreshResultItems()
		return a, a.loadBookmarks()

	case historyDeletedMsg:
		if msg.err != nil {
			a.err = wrapErr("delete history entry", msg.err)
			return a, nil
		}
		a.setStatus(MsgHistoryRemoved, StatusSuccess)
		return a, a.loadHistory()

	case statusMsg:
		a.setStatus(msg.text, msg.kind)

	case errorMsg:
		a.err = msg.err
	}

	return a, nil
}

func (a *App) resize(width, height int) {
	a.width = width
	a.height = height

	a.results.SetSize(width, max(height-searchChromeHeight, 5))
	a.historyList.SetSize(width, max(height-3, 5))
	a.bookmarkList.SetSize(width, max(height-3, 5))
	a.viewport.Width = width
	a.viewport.Height = max(height-3, 1)

	inputWidth := width - 8
	if inputWidth < 10 {
		inputWidth = max(width-4, 1)
	}
	a.input.Width = inputWidth
}

// submitSearch hands the draft to the session and, when it issues a
// ticket, starts the backend call for it.
func (a *App) submitSearch() tea.Cmd {
	ticket, ok := a.session.Submit()
	if !ok {
		return nil
	}

	if a.cancelInFlight != nil && a.config.Backend.CancelSuperseded {
		a.cancelInFlight()
	}
	ctx, cancel := context.WithCancel(a.ctx)
	a.cancelInFlight = cancel
	a.inFlight = ticket
	a.err = nil

	return tea.Batch(a.spinner.Tick, a.performSearch(ctx, cancel, ticket))
}

func (a *App) completeSearch(msg searchCompletedMsg) tea.Cmd {
	switch a.session.Complete(msg.ticket, msg.results, msg.err) {
	case session.OutcomeCommitted:
		a.cancelInFlight = nil
		a.refreshResultItems()
		a.results.ResetSelected()
		a.setStatus(MsgResultsCount(a.session.ResultCount()), StatusInfo)
		return a.recordHistory(msg.ticket.Query, a.session.ResultCount())

	case session.OutcomeFailed:
		a.cancelInFlight = nil
		a.clearStatus()
	}
	return nil
}

// refreshResultItems rebuilds the result rows from the session's committed
// set, keeping the backend's order.
func (a *App) refreshResultItems() {
	results := a.session.Results()
	items := make([]list.Item, len(results))
	for i, r := range results {
		items[i] = resultItem{
			result:     r,
			rank:       i + 1,
			relevance:  a.config.UI.Relevance,
			snippetLen: a.config.UI.Results.SnippetLength,
			bookmarked: a.store != nil && a.store.IsBookmarked(r.URL),
		}
	}
	a.results.SetItems(items)
}

// selectedResult maps the list cursor onto the session's committed set;
// the rows are rebuilt from it in order on every commit.
func (a *App) selectedResult() (search.Result, bool) {
	if len(a.results.Items()) == 0 {
		return search.Result{}, false
	}
	return a.session.Result(a.results.Index())
}

func (a *App) setStatus(text string, kind StatusKind) {
	a.status = text
	a.statusKind = kind
}

func (a *App) clearStatus() {
	a.status = ""
	a.statusKind = StatusInfo
}

// shutdown aborts the in-flight request so the program can exit promptly.
func (a *App) shutdown() tea.Cmd {
	if a.cancelInFlight != nil {
		a.cancelInFlight()
		a.cancelInFlight = nil
	}
	return tea.Quit
}

func (a *App) View() string {
	var content string
	bodyHeight := max(a.height-3, 1)

	switch a.view {
	case ViewSearch:
		content = a.searchView()

	case ViewDetail:
		if a.loadingDetail {
			content = renderCentered(a.width, bodyHeight, renderMuted(MsgLoadingDetail))
		} else {
			content = a.viewport.View()
		}

	case ViewHistory:
		if len(a.historyList.Items()) == 0 {
			content = renderCentered(a.width, bodyHeight, renderHelp(MsgEmptyHistory))
		} else {
			content = a.historyList.View()
		}

	case ViewBookmarks:
		if len(a.bookmarkList.Items()) == 0 {
			content = renderCentered(a.width, bodyHeight, renderHelp(MsgEmptyBookmarks))
		} else {
			content = a.bookmarkList.View()
		}
	}

	separator := SeparatorStyle.Render(strings.Repeat("─", max(a.width, 1)))
	return lipgloss.JoinVertical(lipgloss.Top, content, separator, a.getCustomStatusBar())
}

func (a *App) searchView() string {
	header := renderHeader("› "+AppName, a.backendLabel(), a.width)
	input := renderInputFrame(a.input.View(), a.input.Focused(), a.input.Width)

	bodyHeight := max(a.height-searchChromeHeight, 5)
	var body string

	switch {
	case a.session.State() == session.Idle:
		body = renderCentered(a.width, bodyHeight, GetWelcomeMessage())

	case a.session.Loading() && a.session.ResultCount() == 0:
		body = renderCentered(a.width, bodyHeight,
			a.spinner.View()+" "+renderMuted(MsgSearchingFor(a.inFlight.Query)))

	case a.session.NoResults():
		body = renderCentered(a.width, bodyHeight, renderHelp(MsgNoResultsFor(a.session.CommittedQuery())))

	case a.session.ResultCount() == 0:
		// a failure before anything was ever committed
		body = renderCentered(a.width, bodyHeight, renderHelp(MsgRetryHint))

	default:
		body = a.results.View()
	}

	return lipgloss.NewStyle().
		Width(a.width).
		Height(max(a.height-3, 1)).
		MaxHeight(max(a.height-3, 1)).
		Render(lipgloss.JoinVertical(lipgloss.Top, header, input, "", body))
}

func (a *App) backendLabel() string {
	if c, ok := a.searcher.(interface{ BaseURL() string }); ok {
		if u, err := url.Parse(c.BaseURL()); err == nil {
			return u.Host
		}
	}
	return ""
}

func (a *App) getCustomStatusBar() string {
	bar := lipgloss.NewStyle().Width(a.width).Padding(0, 1)

	switch {
	case a.session.Loading():
		return bar.Render(a.spinner.View() + " " + StatusInfoStyle.Render(MsgSearchingFor(a.inFlight.Query)))

	case a.err != nil:
		return bar.Render(ErrorMessageStyle.Render("✗ " + a.err.Error()))

	case a.view == ViewSearch && a.session.LastError() != nil:
		return bar.Render(ErrorMessageStyle.Render("✗ " + describeSearchError(a.session.LastError())))

	case a.status != "":
		return bar.Render(a.statusKind.style().Render(a.status) +
			renderMuted(" • "+strings.Join(a.keyHandler.GetHelpForCurrentView(), " • ")))
	}

	return bar.Foreground(MutedColor).Render(strings.Join(a.keyHandler.GetHelpForCurrentView(), " • "))
}
