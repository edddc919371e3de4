package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/sift/internal/config"
)

const AppName = "sift"

var LogoLines = []string{
	" ▄▄▄▄▄  ▄▄  ▄▄▄▄▄▄ ▄▄▄▄▄▄",
	"██▀▀▀▀  ██  ██▀▀▀▀   ██  ",
	" ▀███▄  ██  ██▀▀▀    ██  ",
	"    ▀██ ██  ██       ██  ",
	"▀████▀  ██  ██       ██  ",
}

const CompactLogo = `sift ›`

var BannerColors = []lipgloss.Color{
	lipgloss.Color("#FF6B6B"),
	lipgloss.Color("#FFA86B"),
	lipgloss.Color("#95E1D3"),
	lipgloss.Color("#4ECDC4"),
	lipgloss.Color("#FF6B6B"),
}

var (
	PrimaryColor   = lipgloss.Color("#FF6B6B")
	SecondaryColor = lipgloss.Color("#4ECDC4")
	AccentColor    = lipgloss.Color("#95E1D3")

	BackgroundColor = lipgloss.Color("#1A1A2E")
	SurfaceColor    = lipgloss.Color("#16213E")
	TextColor       = lipgloss.Color("#EAEAEA")
	MutedColor      = lipgloss.Color("#94A3B8")

	WarningColor = lipgloss.Color("#FFE66D")
	ErrorColor   = lipgloss.Color("#F87171")
	SuccessColor = lipgloss.Color("#4ADE80")

	// Relevance badges are fixed: green, yellow, gray.
	RelevanceHighColor   = lipgloss.Color("#22C55E")
	RelevanceMediumColor = lipgloss.Color("#EAB308")
	RelevanceLowColor    = lipgloss.Color("#6B7280")
)

var (
	LogoStyle            lipgloss.Style
	TitleStyle           lipgloss.Style
	HeaderStyle          lipgloss.Style
	StatusBarStyle       lipgloss.Style
	HelpStyle            lipgloss.Style
	TimeStyle            lipgloss.Style
	ErrorMessageStyle    lipgloss.Style
	SeparatorStyle       lipgloss.Style
	StatusInfoStyle      lipgloss.Style
	StatusSuccessStyle   lipgloss.Style
	StatusWarnStyle      lipgloss.Style
	StatusErrorStyle     lipgloss.Style
	RelevanceHighStyle   lipgloss.Style
	RelevanceMediumStyle lipgloss.Style
	RelevanceLowStyle    lipgloss.Style
)

func init() {
	buildStyles()
}

// ApplyTheme replaces the palette with the configured colors. Empty
// entries keep the built-in value.
func ApplyTheme(c config.UIColors) {
	set := func(dst *lipgloss.Color, v string) {
		if v != "" {
			*dst = lipgloss.Color(v)
		}
	}
	set(&PrimaryColor, c.Primary)
	set(&SecondaryColor, c.Secondary)
	set(&AccentColor, c.Accent)
	set(&BackgroundColor, c.Background)
	set(&SurfaceColor, c.Surface)
	set(&TextColor, c.Text)
	set(&MutedColor, c.Muted)
	set(&ErrorColor, c.Error)
	set(&SuccessColor, c.Success)
	set(&WarningColor, c.Warning)
	buildStyles()
}

func buildStyles() {
	LogoStyle = lipgloss.NewStyle().
		Foreground(PrimaryColor).
		Bold(true)

	TitleStyle = lipgloss.NewStyle().
		Foreground(TextColor).
		Background(SurfaceColor).
		Bold(true).
		Padding(0, 2)

	HeaderStyle = lipgloss.NewStyle().
		Foreground(SecondaryColor).
		Bold(true)

	StatusBarStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Padding(0, 1)

	HelpStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Italic(true)

	TimeStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Faint(true)

	ErrorMessageStyle = lipgloss.NewStyle().
		Foreground(ErrorColor).
		Bold(true)

	SeparatorStyle = lipgloss.NewStyle().
		Foreground(MutedColor)

	StatusInfoStyle = lipgloss.NewStyle().
		Foreground(MutedColor)

	StatusSuccessStyle = lipgloss.NewStyle().
		Foreground(SuccessColor)

	StatusWarnStyle = lipgloss.NewStyle().
		Foreground(WarningColor)

	StatusErrorStyle = lipgloss.NewStyle().
		Foreground(ErrorColor).
		Bold(true)

	RelevanceHighStyle = lipgloss.NewStyle().
		Foreground(RelevanceHighColor).
		Bold(true)

	RelevanceMediumStyle = lipgloss.NewStyle().
		Foreground(RelevanceMediumColor)

	RelevanceLowStyle = lipgloss.NewStyle().
		Foreground(RelevanceLowColor)
}

func GetWelcomeMessage() string {
	return GetCompactBanner(MsgWelcomeHint)
}

func GetCompactBanner(message string) string {
	var coloredLines []string
	for _, line := range LogoLines {
		coloredLines = append(coloredLines, LogoStyle.Render(line))
	}

	logo := lipgloss.JoinVertical(lipgloss.Center, coloredLines...)

	return lipgloss.JoinVertical(
		lipgloss.Center,
		logo,
		"",
		HelpStyle.Render(message),
	)
}

// BannerString renders the boxed logo printed by `sift version`.
func BannerString(version string) string {
	lines := make([]string, len(LogoLines)+1)
	copy(lines, LogoLines)

	versionTag := version
	if versionTag != "" && versionTag != "dev" {
		if versionTag[0] != 'v' && versionTag[0] != 'V' {
			versionTag = "v" + versionTag
		}
		lines = append(lines, fmt.Sprintf("    Semantic Docs Search %s", versionTag))
	} else {
		lines = append(lines, "    Semantic Docs Search")
	}

	var coloredLines []string
	for i, line := range lines {
		if line == "" {
			coloredLines = append(coloredLines, line)
			continue
		}
		style := lipgloss.NewStyle().
			Foreground(BannerColors[i%len(BannerColors)]).
			Bold(i < len(LogoLines))
		coloredLines = append(coloredLines, style.Render(line))
	}

	borderChars := lipgloss.Border{
		Top:         "═",
		Bottom:      "═",
		Left:        "║",
		Right:       "║",
		TopLeft:     "╔",
		TopRight:    "╗",
		BottomLeft:  "╚",
		BottomRight: "╝",
	}

	output := lipgloss.NewStyle().
		Border(borderChars).
		BorderForeground(SecondaryColor).
		Padding(1, 3).
		MarginTop(1).
		Render(lipgloss.JoinVertical(lipgloss.Center, coloredLines...))

	separator := lipgloss.NewStyle().
		Foreground(AccentColor).
		Render("◆ ◇ ◆ ◇ ◆")

	centered := lipgloss.NewStyle().Width(70).Align(lipgloss.Center)
	return centered.Render(output) + "\n" + centered.MarginBottom(1).Render(separator)
}

func ShowBanner(version string) {
	fmt.Println(BannerString(version))
}
