package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/sift/internal/config"
	"github.com/pders01/sift/internal/search"
)

var (
	reshapeResults = []search.Result{
		{Title: "Reshape", URL: "https://x", Score: 0.92, Text: "..."},
		{Title: "Tensor ops", URL: "https://y", Score: 0.4, Text: "..."},
	}
	errBackend = &search.TransportError{Op: search.OpStatus, Query: "q", StatusCode: 503}
)

// countingSearcher records every call so tests can assert the backend was
// not reached.
type countingSearcher struct {
	mu      sync.Mutex
	calls   []string
	results []search.Result
	err     error
}

func (c *countingSearcher) Search(_ context.Context, query string) ([]search.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, query)
	return c.results, c.err
}

func TestNew(t *testing.T) {
	s := New()

	assert.Equal(t, Idle, s.State())
	assert.Empty(t, s.DraftQuery())
	assert.Empty(t, s.CommittedQuery())
	assert.Empty(t, s.Results())
	assert.False(t, s.Loading())
	assert.False(t, s.HasSearched())
	assert.NoError(t, s.LastError())
	assert.False(t, s.NoResults())
}

func TestSetDraftQuery(t *testing.T) {
	s := New()
	s.SetDraftQuery("pyt")
	s.SetDraftQuery("pytorch")

	assert.Equal(t, "pytorch", s.DraftQuery())
	assert.False(t, s.Loading())
	assert.False(t, s.HasSearched())
	assert.Empty(t, s.CommittedQuery())
}

func TestSubmit_BlankIsNoop(t *testing.T) {
	tests := []struct {
		name  string
		draft string
	}{
		{name: "empty", draft: ""},
		{name: "spaces", draft: "   "},
		{name: "tabs and newlines", draft: "\t\n \r"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &countingSearcher{results: reshapeResults}
			s := New()

			// Put the session in Viewing first so "unchanged" is meaningful.
			s.SetDraftQuery("pytorch reshape")
			_, err := Run(context.Background(), s, backend)
			require.NoError(t, err)
			before := s.Results()

			s.SetDraftQuery(tt.draft)
			ticket, ok := s.Submit()
			assert.False(t, ok)
			assert.Zero(t, ticket)

			outcome, err := Run(context.Background(), s, backend)
			assert.Equal(t, OutcomeSkipped, outcome)
			assert.NoError(t, err)

			assert.False(t, s.Loading())
			assert.True(t, s.HasSearched())
			assert.Equal(t, "pytorch reshape", s.CommittedQuery())
			assert.Equal(t, before, s.Results())
			assert.Len(t, backend.calls, 1, "blank submit must not reach the backend")
		})
	}
}

func TestSubmit_BlankFromIdleStaysIdle(t *testing.T) {
	backend := &countingSearcher{}
	s := New()
	s.SetDraftQuery("  ")

	outcome, err := Run(context.Background(), s, backend)
	assert.Equal(t, OutcomeSkipped, outcome)
	assert.NoError(t, err)
	assert.Equal(t, Idle, s.State())
	assert.False(t, s.HasSearched())
	assert.Empty(t, backend.calls)
}

func TestSubmit_SetsLoadingBeforeCompletion(t *testing.T) {
	s := New()
	s.SetDraftQuery("pytorch reshape")

	ticket, ok := s.Submit()
	require.True(t, ok)

	assert.True(t, s.Loading())
	assert.True(t, s.HasSearched())
	assert.Equal(t, Searching, s.State())
	assert.Equal(t, "pytorch reshape", ticket.Query)
	assert.Equal(t, uint64(1), ticket.Seq)
	assert.NotEmpty(t, ticket.RequestID)
	assert.Empty(t, s.CommittedQuery(), "the in-flight query is not committed yet")

	assert.Equal(t, OutcomeCommitted, s.Complete(ticket, reshapeResults, nil))
	assert.False(t, s.Loading())
	assert.True(t, s.HasSearched())
	assert.Equal(t, Viewing, s.State())
}

func TestSubmit_TicketsIncrease(t *testing.T) {
	s := New()
	s.SetDraftQuery("a")
	first, _ := s.Submit()
	s.SetDraftQuery("b")
	second, _ := s.Submit()

	assert.Less(t, first.Seq, second.Seq)
	assert.NotEqual(t, first.RequestID, second.RequestID)
	assert.False(t, s.IsLatest(first))
	assert.True(t, s.IsLatest(second))
}

func TestComplete_ExampleScenario(t *testing.T) {
	s := New()
	s.SetDraftQuery("pytorch reshape")
	ticket, ok := s.Submit()
	require.True(t, ok)

	outcome := s.Complete(ticket, reshapeResults, nil)

	assert.Equal(t, OutcomeCommitted, outcome)
	assert.Equal(t, "pytorch reshape", s.CommittedQuery())
	require.Equal(t, 2, s.ResultCount())
	assert.Equal(t, reshapeResults, s.Results())
	assert.False(t, s.Loading())

	first, ok := s.Result(0)
	require.True(t, ok)
	assert.Equal(t, "Reshape", first.Title)
	_, ok = s.Result(2)
	assert.False(t, ok)
}

func TestComplete_LastSubmissionWins(t *testing.T) {
	aResults := []search.Result{{Title: "A", URL: "https://a", Score: 0.7}}
	bResults := []search.Result{{Title: "B", URL: "https://b", Score: 0.9}}

	tests := []struct {
		name    string
		aFirst  bool
		aErr    error
		bErr    error
		wantErr bool
	}{
		{name: "A resolves first", aFirst: true},
		{name: "B resolves first", aFirst: false},
		{name: "A fails after B", aFirst: false, aErr: errBackend},
		{name: "A fails before B", aFirst: true, aErr: errBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			s.SetDraftQuery("A")
			a, _ := s.Submit()
			s.SetDraftQuery("B")
			b, _ := s.Submit()

			var outcomes []Outcome
			if tt.aFirst {
				outcomes = append(outcomes, s.Complete(a, aResults, tt.aErr))
				assert.True(t, s.Loading(), "B is still outstanding")
				outcomes = append(outcomes, s.Complete(b, bResults, tt.bErr))
			} else {
				outcomes = append(outcomes, s.Complete(b, bResults, tt.bErr))
				outcomes = append(outcomes, s.Complete(a, aResults, tt.aErr))
			}

			assert.Contains(t, outcomes, OutcomeStale)
			assert.Contains(t, outcomes, OutcomeCommitted)
			assert.Equal(t, "B", s.CommittedQuery())
			assert.Equal(t, bResults, s.Results())
			assert.False(t, s.Loading())
			assert.NoError(t, s.LastError())
		})
	}
}

func TestComplete_StaleAfterLatestFailed(t *testing.T) {
	s := New()
	s.SetDraftQuery("A")
	a, _ := s.Submit()
	s.SetDraftQuery("B")
	b, _ := s.Submit()

	assert.Equal(t, OutcomeFailed, s.Complete(b, nil, errBackend))
	assert.Equal(t, OutcomeStale, s.Complete(a, reshapeResults, nil))

	assert.Empty(t, s.Results())
	assert.Empty(t, s.CommittedQuery())
	assert.False(t, s.Loading())
	assert.ErrorIs(t, s.LastError(), errBackend)
}

func TestComplete_EmptyResults(t *testing.T) {
	s := New()
	s.SetDraftQuery("nothing matches")
	ticket, _ := s.Submit()

	assert.Equal(t, OutcomeCommitted, s.Complete(ticket, []search.Result{}, nil))

	assert.NotNil(t, s.Results())
	assert.Empty(t, s.Results())
	assert.Equal(t, "nothing matches", s.CommittedQuery())
	assert.True(t, s.NoResults())
	assert.Equal(t, Viewing, s.State())
	assert.NotEqual(t, Idle, s.State())
}

func TestComplete_FailurePreservesResults(t *testing.T) {
	s := New()
	s.SetDraftQuery("pytorch reshape")
	first, _ := s.Submit()
	s.Complete(first, reshapeResults, nil)

	s.SetDraftQuery("broken")
	second, _ := s.Submit()

	var outcome Outcome
	assert.NotPanics(t, func() { outcome = s.Complete(second, nil, errBackend) })

	assert.Equal(t, OutcomeFailed, outcome)
	assert.False(t, s.Loading())
	assert.Equal(t, reshapeResults, s.Results())
	assert.Equal(t, "pytorch reshape", s.CommittedQuery())
	assert.Equal(t, Viewing, s.State())

	var te *search.TransportError
	assert.ErrorAs(t, s.LastError(), &te)

	// The session remains usable and a success clears the error.
	s.SetDraftQuery("retry")
	third, ok := s.Submit()
	require.True(t, ok)
	assert.Equal(t, OutcomeCommitted, s.Complete(third, reshapeResults[:1], nil))
	assert.NoError(t, s.LastError())
	assert.Equal(t, "retry", s.CommittedQuery())
}

func TestComplete_FailureFromIdleReachesViewing(t *testing.T) {
	s := New()
	s.SetDraftQuery("q")
	ticket, _ := s.Submit()

	assert.Equal(t, OutcomeFailed, s.Complete(ticket, nil, errors.New("connection refused")))
	assert.Equal(t, Viewing, s.State())
	assert.False(t, s.NoResults(), "nothing was committed")
	assert.Error(t, s.LastError())
}

func TestComplete_DuplicateCompletionIsStale(t *testing.T) {
	s := New()
	s.SetDraftQuery("q")
	ticket, _ := s.Submit()

	assert.Equal(t, OutcomeCommitted, s.Complete(ticket, reshapeResults, nil))
	assert.Equal(t, OutcomeStale, s.Complete(ticket, nil, errBackend))
	assert.NoError(t, s.LastError())
	assert.Equal(t, reshapeResults, s.Results())
}

func TestResults_ReturnsCopy(t *testing.T) {
	s := New()
	s.SetDraftQuery("q")
	ticket, _ := s.Submit()
	s.Complete(ticket, []search.Result{{Title: "original"}}, nil)

	got := s.Results()
	got[0].Title = "mutated"

	assert.Equal(t, "original", s.Results()[0].Title)
}

func TestRun_Idempotent(t *testing.T) {
	backend := &countingSearcher{results: reshapeResults}
	s := New()
	s.SetDraftQuery("pytorch reshape")

	outcome, err := Run(context.Background(), s, backend)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, outcome)
	first := s.Results()

	outcome, err = Run(context.Background(), s, backend)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, outcome)

	assert.Equal(t, first, s.Results())
	assert.Equal(t, []string{"pytorch reshape", "pytorch reshape"}, backend.calls)
}

func TestRun_ForwardsRequestID(t *testing.T) {
	var gotID string
	backend := search.SearcherFunc(func(ctx context.Context, query string) ([]search.Result, error) {
		gotID = search.RequestIDFrom(ctx)
		return nil, nil
	})

	s := New()
	s.newID = func() string { return "fixed-id" }
	s.SetDraftQuery("q")

	_, err := Run(context.Background(), s, backend)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", gotID)
	assert.True(t, s.NoResults())
}

func TestRun_TransportError(t *testing.T) {
	backend := &countingSearcher{err: errBackend}
	s := New()
	s.SetDraftQuery("q")

	outcome, err := Run(context.Background(), s, backend)
	assert.Equal(t, OutcomeFailed, outcome)
	assert.ErrorIs(t, err, errBackend)
	assert.False(t, s.Loading())
}

func TestRun_AgainstHTTPBackend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "pytorch reshape", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"query":"pytorch reshape","count":2,"results":[
			{"title":"Reshape","url":"https://x","score":0.92,"text":"..."},
			{"title":"Tensor ops","url":"https://y","score":0.4,"text":"..."}]}`))
	}))
	defer server.Close()

	cfg := config.TestConfig()
	cfg.Backend.BaseURL = server.URL
	client, err := search.NewClient(cfg)
	require.NoError(t, err)

	s := New()
	s.SetDraftQuery("pytorch reshape")
	outcome, err := Run(context.Background(), s, client)
	require.NoError(t, err)

	assert.Equal(t, OutcomeCommitted, outcome)
	assert.Equal(t, "pytorch reshape", s.CommittedQuery())
	assert.Equal(t, reshapeResults, s.Results())
	assert.False(t, s.Loading())
}

func TestStateAndOutcomeStrings(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "searching", Searching.String())
	assert.Equal(t, "viewing", Viewing.String())
	assert.Equal(t, "unknown", State(9).String())

	assert.Equal(t, "committed", OutcomeCommitted.String())
	assert.Equal(t, "failed", OutcomeFailed.String())
	assert.Equal(t, "stale", OutcomeStale.String())
	assert.Equal(t, "skipped", OutcomeSkipped.String())
}
