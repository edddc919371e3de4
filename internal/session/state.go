package session

// State is the coarse phase of a session, derived from its flags.
type State int

const (
	// Idle is the initial state: nothing has been submitted yet.
	Idle State = iota
	// Searching means the latest issued request has not completed.
	Searching
	// Viewing means the latest request completed, successfully or not.
	Viewing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Searching:
		return "searching"
	case Viewing:
		return "viewing"
	default:
		return "unknown"
	}
}

// Outcome is what Complete did with a finished request.
type Outcome int

const (
	// OutcomeCommitted: results and committed query were replaced.
	OutcomeCommitted Outcome = iota
	// OutcomeFailed: the latest request failed; previous results were kept.
	OutcomeFailed
	// OutcomeStale: a newer request had been issued, the completion was dropped.
	OutcomeStale
	// OutcomeSkipped: the draft was blank and no request was issued.
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCommitted:
		return "committed"
	case OutcomeFailed:
		return "failed"
	case OutcomeStale:
		return "stale"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}
