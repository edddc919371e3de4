package tui

// truncateEnd shortens s to at most limit runes, ending in an ellipsis
// when anything was cut.
func truncateEnd(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit <= 1 {
		return "…"
	}
	return string(r[:limit-1]) + "…"
}

// truncateMiddle keeps both ends of s around a single ellipsis. URLs carry
// meaning at the host and at the last path segment.
func truncateMiddle(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	r := []rune(s)
	n := len(r)
	if n <= limit {
		return s
	}
	if limit <= 1 {
		return "…"
	}
	keep := limit - 1
	left := keep / 2
	right := keep - left
	if left <= 0 {
		return "…" + string(r[n-right:])
	}
	return string(r[:left]) + "…" + string(r[n-right:])
}

// wrapWidth picks the markdown wrap column for a terminal width: 90% of
// the screen clamped to [minWidth, maxWidth], narrower on tiny terminals.
func wrapWidth(width, minWidth, maxWidth int) int {
	if minWidth <= 0 {
		minWidth = 40
	}
	if maxWidth <= 0 {
		maxWidth = 120
	}

	w := (width * 9) / 10
	if w > maxWidth {
		w = maxWidth
	}
	if w < minWidth {
		w = minWidth
	}
	if width < minWidth+10 {
		w = max(width-4, 20)
	}
	return w
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
