package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/hkrnws/internal/config"
)

const AppName = "hkrnws"

// ASCII art logo lines for hkrnws - canonical definition
var LogoLines = []string{
	"██  ██ ███  ██",
	"██  ██ ████ ██",
	"██████ ██ ████",
	"██  ██ ██  ███",
	"██  ██ ██   ██",
}

const CompactLogo = `hkrnws ›`

const Tagline = "Hacker News Top Stories"

// Banner gradient colors, an orange ramp after the HN masthead.
var BannerColors = []lipgloss.Color{
	lipgloss.Color("#FF6600"),
	lipgloss.Color("#FF8533"),
	lipgloss.Color("#FFA366"),
	lipgloss.Color("#FFB067"),
	lipgloss.Color("#FF6600"),
}

// Brand colors. Defaults match the shipped config; ApplyTheme overrides
// them from [ui.colors] at startup.
var (
	PrimaryColor   = lipgloss.Color("#FF6600") // HN orange
	SecondaryColor = lipgloss.Color("#FFB067") // soft orange
	AccentColor    = lipgloss.Color("#4ECDC4") // teal

	BackgroundColor = lipgloss.Color("#1A1A2E") // deep night
	SurfaceColor    = lipgloss.Color("#16213E") // midnight blue
	TextColor       = lipgloss.Color("#EAEAEA") // soft white
	MutedColor      = lipgloss.Color("#94A3B8") // muted gray-blue

	ErrorColor   = lipgloss.Color("#F87171") // red
	SuccessColor = lipgloss.Color("#4ADE80") // green
)

// Styled components. Populated by rebuildStyles so theme overrides take
// effect everywhere at once.
var (
	LogoStyle  lipgloss.Style
	TitleStyle lipgloss.Style

	HeaderStyle    lipgloss.Style
	StatusBarStyle lipgloss.Style

	StoryTitleStyle   lipgloss.Style
	ReadItemStyle     lipgloss.Style
	SelectedItemStyle lipgloss.Style
	RankStyle         lipgloss.Style

	HelpStyle lipgloss.Style
	TimeStyle lipgloss.Style

	ErrorMessageStyle lipgloss.Style

	StatusInfoStyle    lipgloss.Style
	StatusSuccessStyle lipgloss.Style
	StatusWarnStyle    lipgloss.Style
	StatusErrorStyle   lipgloss.Style

	EmptyStyle = lipgloss.NewStyle()
)

func init() {
	rebuildStyles()
}

// ApplyTheme overrides the brand colors with any non-empty values from
// the config and rebuilds the derived styles.
func ApplyTheme(c config.UIColors) {
	setColor(&PrimaryColor, c.Primary)
	setColor(&SecondaryColor, c.Secondary)
	setColor(&AccentColor, c.Accent)
	setColor(&BackgroundColor, c.Background)
	setColor(&SurfaceColor, c.Surface)
	setColor(&TextColor, c.Text)
	setColor(&MutedColor, c.Muted)
	setColor(&ErrorColor, c.Error)
	setColor(&SuccessColor, c.Success)
	rebuildStyles()
}

func setColor(dst *lipgloss.Color, hex string) {
	if hex != "" {
		*dst = lipgloss.Color(hex)
	}
}

func rebuildStyles() {
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

	StoryTitleStyle = lipgloss.NewStyle().
		Foreground(TextColor)

	ReadItemStyle = lipgloss.NewStyle().
		Foreground(MutedColor)

	SelectedItemStyle = lipgloss.NewStyle().
		Foreground(BackgroundColor).
		Background(PrimaryColor).
		Bold(true)

	RankStyle = lipgloss.NewStyle().
		Foreground(SecondaryColor)

	HelpStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Italic(true)

	TimeStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Faint(true)

	ErrorMessageStyle = lipgloss.NewStyle().
		Foreground(ErrorColor).
		Bold(true)

	StatusInfoStyle = lipgloss.NewStyle().
		Foreground(MutedColor)

	StatusSuccessStyle = lipgloss.NewStyle().
		Foreground(SuccessColor)

	StatusWarnStyle = lipgloss.NewStyle().
		Foreground(SecondaryColor)

	StatusErrorStyle = lipgloss.NewStyle().
		Foreground(ErrorColor).
		Bold(true)
}

// ContentWrapper returns a style for wrapping content with width and height constraints
func ContentWrapper(width, height int) lipgloss.Style {
	return EmptyStyle.Width(width).Height(height).MaxHeight(height)
}

func GetCompactBanner(message string) string {
	var coloredLines []string
	for _, line := range LogoLines {
		coloredLines = append(coloredLines, LogoStyle.Render(line))
	}

	logo := lipgloss.JoinVertical(lipgloss.Center, coloredLines...)
	if message == "" {
		return logo
	}

	return lipgloss.JoinVertical(
		lipgloss.Center,
		logo,
		"",
		HelpStyle.Render(message),
	)
}

func ShowBanner(version string) {
	lines := make([]string, len(LogoLines)+1)
	copy(lines, LogoLines)
	lines[len(LogoLines)] = ""

	// Dynamic version tagline
	versionTag := version
	if versionTag != "" && versionTag != "dev" {
		if versionTag[0] != 'v' && versionTag[0] != 'V' {
			versionTag = "v" + versionTag
		}
		lines = append(lines, fmt.Sprintf("    %s %s", Tagline, versionTag))
	} else {
		lines = append(lines, "    "+Tagline)
	}

	// Apply gradient coloring to each line
	var coloredLines []string
	for i, line := range lines {
		if line == "" {
			coloredLines = append(coloredLines, line)
			continue
		}

		colorIdx := i % len(BannerColors)
		style := lipgloss.NewStyle().
			Foreground(BannerColors[colorIdx]).
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

	borderStyle := lipgloss.NewStyle().
		Border(borderChars).
		BorderForeground(AccentColor).
		Padding(1, 3).
		MarginTop(1)

	banner := lipgloss.JoinVertical(lipgloss.Center, coloredLines...)
	output := borderStyle.Render(banner)

	fmt.Println(lipgloss.NewStyle().
		Width(70).
		Align(lipgloss.Center).
		Render(output))

	separator := lipgloss.NewStyle().
		Foreground(SecondaryColor).
		Render("◆ ◇ ◆ ◇ ◆")

	fmt.Println(lipgloss.NewStyle().
		Width(70).
		Align(lipgloss.Center).
		MarginBottom(1).
		Render(separator))
}
