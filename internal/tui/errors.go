package tui

import (
	"errors"
	"fmt"

	"github.com/pders01/sift/internal/search"
)

// wrapErr formats an error with a contextual prefix.
func wrapErr(context string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// describeSearchError turns a transport failure into a short banner text.
func describeSearchError(err error) string {
	var te *search.TransportError
	if errors.As(err, &te) {
		switch {
		case te.Canceled():
			return "search failed: canceled"
		case te.Timeout():
			return "search failed: backend timed out"
		case te.Op == search.OpStatus:
			return fmt.Sprintf("search failed: backend returned HTTP %d", te.StatusCode)
		case te.Op == search.OpDecode:
			return "search failed: malformed response from backend"
		}
	}
	return wrapErr("search failed", err).Error()
}
