// Package session holds the query/result state machine that sits between
// user input and the search backend.
//
// A Session is not safe for concurrent use. It is driven from one goroutine
// (the bubbletea update loop, or Run for the CLI); backend calls happen
// elsewhere and report back through Complete with the Ticket they were
// issued.
package session

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"github.com/pders01/sift/internal/debuglog"
	"github.com/pders01/sift/internal/search"
	"github.com/pders01/sift/internal/validation"
)

// Ticket identifies one issued request. Seq increases with every valid
// Submit; only the ticket with the latest Seq may commit.
type Ticket struct {
	Seq       uint64
	Query     string
	RequestID string
}

// Session tracks one user's draft, in-flight request and committed results.
type Session struct {
	draft       string
	committed   string
	results     []search.Result
	loading     bool
	hasSearched bool
	lastErr     error

	latest uint64
	newID  func() string
}

// New returns an idle session with no draft and no results.
func New() *Session {
	return &Session{newID: uuid.NewString}
}

// SetDraftQuery replaces the text being edited. It never starts a request.
func (s *Session) SetDraftQuery(text string) {
	s.draft = text
}

// Submit issues a request for the current draft. A blank draft is ignored
// and reported as false; nothing in the session changes.
func (s *Session) Submit() (Ticket, bool) {
	if validation.IsBlank(s.draft) {
		return Ticket{}, false
	}

	s.hasSearched = true
	s.loading = true
	s.latest++

	return Ticket{
		Seq:       s.latest,
		Query:     s.draft,
		RequestID: s.newID(),
	}, true
}

// Complete applies the result of the request identified by t. Results from
// a superseded ticket are dropped whether they succeeded or not.
func (s *Session) Complete(t Ticket, results []search.Result, err error) Outcome {
	log := debuglog.WithFields(map[string]interface{}{
		"seq":        t.Seq,
		"request_id": t.RequestID,
	})

	if !s.IsLatest(t) {
		log.Debugf("discarding stale response for %q (latest is %d)", t.Query, s.latest)
		return OutcomeStale
	}

	s.loading = false

	if err != nil {
		s.lastErr = err
		log.Errorf("search %q failed: %v", t.Query, err)
		return OutcomeFailed
	}

	if results == nil {
		results = []search.Result{}
	}
	s.committed = t.Query
	s.results = results
	s.lastErr = nil
	log.Infof("committed %d results for %q", len(results), t.Query)

	return OutcomeCommitted
}

// IsLatest reports whether t is the most recently issued ticket and is
// still outstanding.
func (s *Session) IsLatest(t Ticket) bool {
	return s.loading && t.Seq == s.latest
}

func (s *Session) DraftQuery() string     { return s.draft }
func (s *Session) CommittedQuery() string { return s.committed }
func (s *Session) Loading() bool          { return s.loading }
func (s *Session) HasSearched() bool      { return s.hasSearched }

// LastError is the failure of the latest completed request, cleared by the
// next successful one.
func (s *Session) LastError() error { return s.lastErr }

// Results returns a copy of the committed result set in backend order.
func (s *Session) Results() []search.Result {
	return slices.Clone(s.results)
}

func (s *Session) ResultCount() int { return len(s.results) }

// Result returns the i-th committed result.
func (s *Session) Result(i int) (search.Result, bool) {
	if i < 0 || i >= len(s.results) {
		return search.Result{}, false
	}
	return s.results[i], true
}

func (s *Session) State() State {
	switch {
	case s.loading:
		return Searching
	case s.hasSearched:
		return Viewing
	default:
		return Idle
	}
}

// NoResults reports the "nothing found for the committed query" state,
// which is distinct from Idle.
func (s *Session) NoResults() bool {
	return s.hasSearched && !s.loading && s.committed != "" && len(s.results) == 0
}

// Run submits the draft and performs the call synchronously. It is the
// non-interactive path used by `sift query`. The returned error is the
// transport error of a failed request.
func Run(ctx context.Context, s *Session, searcher search.Searcher) (Outcome, error) {
	t, ok := s.Submit()
	if !ok {
		return OutcomeSkipped, nil
	}

	results, err := searcher.Search(search.WithRequestID(ctx, t.RequestID), t.Query)
	return s.Complete(t, results, err), err
}
