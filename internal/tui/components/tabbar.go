package components

import (
	"strings"

	"github.com/theirongolddev/ccoach/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tab is one entry of the tab bar. When Key occurs in Name it is highlighted in
// place, otherwise it is appended in brackets.
type Tab struct {
	Name     string
	Key      rune
	Resource string // backing dashboard resource; empty for local-only tabs
}

// Tabs is the tab order.
var Tabs = []Tab{
	{Name: "Overview", Key: 'o', Resource: "insights"},
	{Name: "Forecast", Key: 'f', Resource: "forecast"},
	{Name: "Coach", Key: 'c', Resource: "coach"},
	{Name: "Plan", Key: 'a', Resource: "plan"},
	{Name: "Simulate", Key: 's'},
}

const (
	tabPadding = 1
	tabAlert   = "•"
)

type segmentRole int

const (
	roleText segmentRole = iota
	roleBracket
	roleKey
	roleActive
	roleAlert
	rolePad
)

type segment struct {
	text string
	role segmentRole
}

func (t Tab) keyIndex() int {
	return strings.IndexRune(strings.ToLower(t.Name), t.Key)
}

// segments lays a tab out. Widths and rendering both come from here so mouse
// hitboxes always match what is drawn.
func (t Tab) segments(active, alert bool) []segment {
	pad := segment{strings.Repeat(" ", tabPadding), rolePad}
	segs := []segment{pad}
	switch i := t.keyIndex(); {
	case active:
		segs = append(segs, segment{t.Name, roleActive})
	case i >= 0:
		segs = append(segs,
			segment{t.Name[:i], roleText},
			segment{"[", roleBracket}, segment{t.Name[i : i+1], roleKey}, segment{"]", roleBracket},
			segment{t.Name[i+1:], roleText})
	default:
		segs = append(segs,
			segment{t.Name, roleText},
			segment{"[", roleBracket}, segment{string(t.Key), roleKey}, segment{"]", roleBracket})
	}
	if alert {
		segs = append(segs, segment{tabAlert, roleAlert})
	}
	return append(segs, pad)
}

// TabVisualWidth is the rendered width of a tab.
func TabVisualWidth(tab Tab, active, alert bool) int {
	w := 0
	for _, s := range tab.segments(active, alert) {
		w += lipgloss.Width(s.text)
	}
	return w
}

// RenderTabBar draws the tabs separated by one-column rules. alert reports which
// tabs get a failure marker and may be nil.
func RenderTabBar(activeIdx, width int, alert func(Tab) bool) string {
	t := theme.Active
	base := lipgloss.NewStyle().Background(t.Surface)
	styles := map[segmentRole]lipgloss.Style{
		roleText:    base.Foreground(t.TextMuted),
		roleBracket: base.Foreground(t.TextDim),
		roleKey:     base.Foreground(t.Accent).Bold(true),
		roleAlert:   base.Foreground(t.Red).Bold(true),
		rolePad:     base,
	}
	active := lipgloss.NewStyle().Background(t.SurfaceHover)
	styles[roleActive] = active.Foreground(t.AccentBright).Bold(true)

	parts := make([]string, 0, len(Tabs))
	for i, tab := range Tabs {
		isActive := i == activeIdx
		var sb strings.Builder
		for _, s := range tab.segments(isActive, alert != nil && alert(tab)) {
			st := styles[s.role]
			if isActive {
				st = st.Background(t.SurfaceHover)
			}
			sb.WriteString(st.Render(s.text))
		}
		parts = append(parts, sb.String())
	}
	sep := base.Foreground(t.Border).Render("│")
	return base.Width(width).Render(strings.Join(parts, sep))
}

// TabIdxByKey returns the tab index for a shortcut, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
