package components

import (
	"strconv"
	"strings"

	"github.com/theirongolddev/ccoach/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// StatusInfo is what the bottom bar reports on the right-hand side.
type StatusInfo struct {
	Period      string
	Updated     string // age of the last completed refresh, empty before the first one
	Refreshing  bool
	AutoRefresh bool
	Errors      int
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, info StatusInfo) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	warn := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).Bold(true)

	left := base.Render(" [?]help  [r]efresh  [p]eriod  [q]uit")

	var right []string
	if info.Errors > 0 {
		noun := "errors"
		if info.Errors == 1 {
			noun = "error"
		}
		right = append(right, warn.Render(strconv.Itoa(info.Errors)+" "+noun))
	}
	if info.Period != "" {
		right = append(right, base.Render("period ")+accent.Render(info.Period))
	}
	if info.AutoRefresh {
		right = append(right, accent.Render("auto"))
	}
	switch {
	case info.Refreshing:
		right = append(right, accent.Render("refreshing…"))
	case info.Updated != "":
		right = append(right, base.Render("updated "+info.Updated))
	}
	rightStr := strings.Join(right, base.Render(" │ ")) + base.Render(" ")

	padding := width - lipgloss.Width(left) - lipgloss.Width(rightStr)
	if padding < 0 {
		padding = 0
	}

	return left + base.Render(strings.Repeat(" ", padding)) + rightStr
}
