package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/sift/internal/config"
)

// RelevanceLevel buckets a backend score for display.
type RelevanceLevel int

const (
	RelevanceLow RelevanceLevel = iota
	RelevanceMedium
	RelevanceHigh
)

// ClassifyRelevance compares score against the configured cut-offs. Both
// comparisons are strict, so a score equal to a threshold falls below it.
func ClassifyRelevance(score float64, th config.RelevanceConfig) RelevanceLevel {
	switch {
	case score > th.High:
		return RelevanceHigh
	case score > th.Medium:
		return RelevanceMedium
	default:
		return RelevanceLow
	}
}

// FormatRelevance renders 0.92 as "Relevance: 92.0%".
func FormatRelevance(score float64) string {
	return fmt.Sprintf("Relevance: %.1f%%", score*100)
}

// RelevanceBadge is the colored relevance label shown next to each result.
func RelevanceBadge(score float64, th config.RelevanceConfig) string {
	var style lipgloss.Style
	switch ClassifyRelevance(score, th) {
	case RelevanceHigh:
		style = RelevanceHighStyle
	case RelevanceMedium:
		style = RelevanceMediumStyle
	default:
		style = RelevanceLowStyle
	}
	return style.Render(FormatRelevance(score))
}

// renderHeader returns a consistently styled header with an optional muted subtitle.
func renderHeader(title, subtitle string, width int) string {
	title = truncateEnd(title, width-2)
	subtitle = truncateEnd(subtitle, width-2)
	rows := []string{HeaderStyle.Render(title)}
	if subtitle != "" {
		rows = append(rows, renderMuted(subtitle))
	}
	return lipgloss.JoinVertical(lipgloss.Top, rows...)
}

// renderInputFrame draws a rounded bordered container around a rendered input view.
func renderInputFrame(inputView string, focused bool, contentWidth int) string {
	borderColor := MutedColor
	if focused {
		borderColor = AccentColor
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(contentWidth + 4).
		Render(inputView)
}

func renderCentered(width, height int, content string) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

func renderMuted(text string) string {
	return lipgloss.NewStyle().Foreground(MutedColor).Render(text)
}

func renderHelp(text string) string {
	return HelpStyle.Render(text)
}
