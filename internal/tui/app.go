// Package tui provides the interactive Bubble Tea dashboard for ccoach.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/ccoach/internal/carbonapi"
	"github.com/theirongolddev/ccoach/internal/cli"
	"github.com/theirongolddev/ccoach/internal/config"
	"github.com/theirongolddev/ccoach/internal/dashboard"
	"github.com/theirongolddev/ccoach/internal/fetch"
	"github.com/theirongolddev/ccoach/internal/simulate"
	"github.com/theirongolddev/ccoach/internal/tui/components"
	"github.com/theirongolddev/ccoach/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"k8s.io/klog/v2"
)

// API is everything the dashboard and the simulator call on the service.
type API interface {
	dashboard.API
	simulate.API
}

// Options configures NewApp.
type Options struct {
	Config config.Config
	// NewAPI builds the service client. It is called again after the setup form
	// saves new connection settings.
	NewAPI    func(cfg config.Config) API
	Observer  fetch.Observer
	NeedSetup bool
}

// StateChangedMsg is sent whenever a loader or the simulator changes state.
type StateChangedMsg struct{}

// RefreshDoneMsg is sent when every loader of a refresh has settled.
type RefreshDoneMsg struct {
	At time.Time
}

// SimulationDoneMsg is sent when a simulation request returns.
type SimulationDoneMsg struct{}

type tickMsg struct{}

// App is the root Bubble Tea model.
type App struct {
	cfg      config.Config
	newAPI   func(config.Config) API
	observer fetch.Observer

	// Core collaborators; replaced wholesale when setup changes the connection.
	dash    *dashboard.Dashboard
	sim     *simulate.Invoker
	ctx     context.Context
	cancel  context.CancelFunc
	changes chan struct{}

	// Snapshot of the core state, taken on every StateChangedMsg
	view     dashboard.View
	statuses []dashboard.ResourceStatus
	errs     []dashboard.ResourceError
	simState simulate.State

	loaded          bool
	refreshing      bool
	autoRefresh     bool
	refreshInterval time.Duration
	lastRefresh     time.Time

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	planWeek  int

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *setupValues
	needSetup bool

	// What-if simulation form
	simForm *huh.Form
	simVals *simValues
	lastSim string

	spinner spinner.Model
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180
	minContentHeight = 5

	minRefreshInterval = 30 * time.Second
	tickInterval       = time.Second
)

// NewApp creates the TUI model and its dashboard. The caller must call Close after
// the program exits.
func NewApp(opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	refreshInterval := time.Duration(opts.Config.Dashboard.RefreshIntervalSec) * time.Second
	if refreshInterval < minRefreshInterval {
		refreshInterval = minRefreshInterval
	}

	a := App{
		cfg:             opts.Config,
		newAPI:          opts.NewAPI,
		observer:        opts.Observer,
		changes:         make(chan struct{}, 1),
		autoRefresh:     opts.Config.Dashboard.AutoRefresh,
		refreshInterval: refreshInterval,
		planWeek:        1,
		needSetup:       opts.NeedSetup,
		simVals:         newSimValues(simulate.ChangeCommute),
		spinner:         sp,
	}
	a.connect()

	if a.needSetup {
		a.setupVals = newSetupValues(a.cfg)
		a.setupForm = newSetupForm(a.setupVals)
	}
	return a
}

// connect (re)builds the dashboard and simulator from the current config.
func (a *App) connect() {
	a.disconnect()

	api := a.newAPI(a.cfg)
	changes := a.changes
	notify := func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	}

	fetchOpts := []fetch.Option{fetch.WithOnChange(notify)}
	if a.observer != nil {
		fetchOpts = append(fetchOpts, fetch.WithObserver(a.observer))
	}

	a.ctx, a.cancel = context.WithCancel(context.Background())
	a.dash = dashboard.New(api, dashboard.Options{
		Period:       config.Period(a.cfg),
		ForecastDays: a.cfg.Dashboard.ForecastDays,
	}, fetchOpts...)
	a.sim = simulate.NewInvoker(api, simulate.WithOnChange(notify))
	a.snapshot()
}

func (a *App) disconnect() {
	if a.dash != nil {
		a.dash.Close()
	}
	if a.sim != nil {
		a.sim.Close()
	}
	if a.cancel != nil {
		a.cancel()
	}
}

// Close disposes the dashboard and simulator so late responses are dropped.
func (a App) Close() {
	a.disconnect()
}

func (a *App) snapshot() {
	a.view = a.dash.View()
	a.statuses = a.dash.Statuses()
	a.errs = a.dash.Errors()
	a.simState = a.sim.State()
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnableMouseCellMotion,
		a.spinner.Tick,
		tickCmd(),
		waitForChange(a.changes),
	}
	if a.needSetup && a.setupForm != nil {
		cmds = append(cmds, a.setupForm.Init())
	} else {
		cmds = append(cmds, waitForRefresh(a.dash.Refresh(a.ctx)))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		if a.simForm != nil {
			a.simForm = a.simForm.WithWidth(a.simFormWidth())
		}
		return a, nil

	case tea.MouseMsg:
		if a.showHelp || a.setupForm != nil || a.simForm != nil {
			return a, nil
		}
		if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case StateChangedMsg:
		a.snapshot()
		return a, waitForChange(a.changes)

	case RefreshDoneMsg:
		a.snapshot()
		a.loaded = true
		a.refreshing = false
		a.lastRefresh = msg.At
		return a, nil

	case SimulationDoneMsg:
		a.snapshot()
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if a.loaded && a.autoRefresh && !a.refreshing && a.setupForm == nil &&
			time.Since(a.lastRefresh) >= a.refreshInterval {
			cmds = append(cmds, a.startRefresh())
		}
		return a, tea.Batch(cmds...)
	}

	// Forward unhandled messages (cursor blinks, etc.) to an open form.
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.simForm != nil {
		return a.updateSimForm(msg)
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}

	// Forms intercept all keys
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.simForm != nil {
		if key == "esc" {
			a.simForm = nil
			return a, nil
		}
		return a.updateSimForm(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		if a.refreshing {
			return a, nil
		}
		return a, a.startRefresh()
	case "R":
		a.autoRefresh = !a.autoRefresh
		a.cfg.Dashboard.AutoRefresh = a.autoRefresh
		a.persistConfig()
		return a, nil
	case "p":
		next := a.dash.Period().Next()
		a.dash.SetPeriod(a.ctx, next)
		a.snapshot()
		return a, nil
	case "left", "shift+tab":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	case "1", "2", "3", "4", "5":
		a.activeTab = int(key[0] - '1')
		return a, nil
	}

	switch components.Tabs[a.activeTab].Name {
	case "Plan":
		switch key {
		case "j", "down", "]":
			if a.planWeek < planWeeks {
				a.planWeek++
			}
			return a, nil
		case "k", "up", "[":
			if a.planWeek > 1 {
				a.planWeek--
			}
			return a, nil
		}
	case "Simulate":
		switch key {
		case "enter", "n":
			a.simForm = newSimForm(a.simVals).WithWidth(a.simFormWidth())
			return a, a.simForm.Init()
		case "d", "esc":
			a.sim.Dismiss()
			a.lastSim = ""
			a.snapshot()
			return a, nil
		}
	}

	if len(msg.Runes) == 1 {
		if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

func (a *App) startRefresh() tea.Cmd {
	a.refreshing = true
	return waitForRefresh(a.dash.Refresh(a.ctx))
}

// persistConfig saves UI preferences best-effort; the TUI keeps running on failure.
func (a App) persistConfig() {
	if err := config.Save(a.cfg); err != nil {
		klog.V(1).InfoS("Could not save config", "err", err)
	}
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.cfg = a.setupVals.apply(a.cfg)
		theme.SetActive(a.cfg.Appearance.Theme)
		a.persistConfig()
		a.connect()
		a.needSetup = false
		a.setupForm = nil
		return a, a.startRefresh()
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, a.startRefresh()
	}
	return a, cmd
}

func (a App) updateSimForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.simForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.simForm = f
	}

	switch a.simForm.State {
	case huh.StateCompleted:
		a.simForm = nil
		ct, params, err := a.simVals.request()
		if err != nil {
			klog.V(1).InfoS("Invalid simulation form", "err", err)
			return a, nil
		}
		a.lastSim = describeRequest(ct, params)
		return a, simulateCmd(a.ctx, a.sim, ct, params)
	case huh.StateAborted:
		a.simForm = nil
		return a, nil
	}
	return a, cmd
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

func (a App) simFormWidth() int {
	return components.CardInnerWidth(a.contentWidth())
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  ccoach needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)

	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spinnerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)

	settled := 0
	for _, st := range a.statuses {
		if st.Status == fetch.Resolved.String() || st.Status == fetch.Failed.String() {
			settled++
		}
	}

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ ccoach"))
	b.WriteString(subtitleStyle.Render(" · Carbon Budget Coach"))
	b.WriteString("\n\n")
	b.WriteString(spinnerStyle.Render(a.spinner.View()))
	b.WriteString(subtitleStyle.Render(" Loading from " + config.GetAPIURL(a.cfg)))
	b.WriteString("\n\n")
	b.WriteString(components.ProgressBar(float64(settled)/float64(len(dashboard.Resources)), 32))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"o f c a s", "Jump to tab"},
			{"1-5", "Jump to tab"},
			{"← → tab", "Previous / Next tab"},
			{"j k", "Previous / Next plan week"},
		}},
		{"Actions", []struct{ key, desc string }{
			{"r", "Refresh all resources"},
			{"R", "Toggle auto-refresh"},
			{"p", "Cycle insights period"},
			{"Enter n", "New simulation"},
			{"d", "Dismiss simulation result"},
			{"Esc", "Cancel form"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, sec := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w, a.tabFailed)

	info := components.StatusInfo{
		Period:      string(a.dash.Period()),
		Refreshing:  a.refreshing || a.view.Loading,
		AutoRefresh: a.autoRefresh,
		Errors:      len(a.errs),
	}
	if !a.lastRefresh.IsZero() {
		info.Updated = cli.FormatAge(a.lastRefresh, time.Now())
	}
	statusBar := components.RenderStatusBar(w, info)

	contentH := h - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	var content string
	switch a.activeTab {
	case 0:
		content = a.renderOverviewTab(cw)
	case 1:
		content = a.renderForecastTab(cw)
	case 2:
		content = a.renderCoachTab(cw)
	case 3:
		content = a.renderPlanTab(cw)
	case 4:
		content = a.renderSimulateTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// resourceNotice renders the loading or failure line for one resource, or "" when it
// has data to show.
func (a App) resourceNotice(r dashboard.Resource, hasData bool) string {
	t := theme.Active
	for _, st := range a.statuses {
		if st.Resource != r {
			continue
		}
		switch {
		case st.Status == fetch.Failed.String():
			return lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).
				Render(fmt.Sprintf("Could not load %s: %s", r, st.Reason))
		case st.Status == fetch.Pending.String() && !hasData:
			return lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).
				Render(a.spinner.View() + " Loading " + string(r) + "…")
		}
	}
	if !hasData {
		return lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).
			Render("No " + string(r) + " data")
	}
	return ""
}

// ─── Commands ───────────────────────────────────────────────────

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// waitForChange blocks until a loader or the simulator signals a change.
func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return StateChangedMsg{}
	}
}

func waitForRefresh(done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-done
		return RefreshDoneMsg{At: time.Now()}
	}
}

func simulateCmd(ctx context.Context, inv *simulate.Invoker, ct simulate.ChangeType, params map[string]any) tea.Cmd {
	return func() tea.Msg {
		inv.Simulate(ctx, ct, params)
		return SimulationDoneMsg{}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// periodLabel is the human form of the insights period, e.g. "this week".
func periodLabel(p carbonapi.Period) string {
	switch p {
	case carbonapi.PeriodDay:
		return "today"
	case carbonapi.PeriodWeek:
		return "this week"
	default:
		return "this month"
	}
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabFailed reports whether the resource behind tab currently has an error.
func (a App) tabFailed(tab components.Tab) bool {
	for _, e := range a.errs {
		if string(e.Resource) == tab.Resource {
			return true
		}
	}
	return false
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab, a.tabFailed(tab))
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW

		// Separator is one column between tabs.
		if i < len(components.Tabs)-1 {
			pos++
		}
	}
	return -1
}

// column is a fixed-width table column; Right aligns numbers.
type column struct {
	Title string
	Width int
	Right bool
}

// renderRows renders a header plus rows with fixed column widths, truncating cells
// that overflow.
func renderRows(cols []column, rows [][]string) string {
	t := theme.Active
	headStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Bold(true)
	cellStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface).Render("  ")

	cell := func(s string, c column) string {
		s = cli.Truncate(s, c.Width)
		if c.Right {
			return fmt.Sprintf("%*s", c.Width, s)
		}
		return fmt.Sprintf("%-*s", c.Width, s)
	}

	var b strings.Builder
	for i, c := range cols {
		if i > 0 {
			b.WriteString(space)
		}
		b.WriteString(headStyle.Render(cell(c.Title, c)))
	}
	for _, row := range rows {
		b.WriteString("\n")
		for i, c := range cols {
			if i > 0 {
				b.WriteString(space)
			}
			v := ""
			if i < len(row) {
				v = row[i]
			}
			b.WriteString(cellStyle.Render(cell(v, c)))
		}
	}
	return b.String()
}
