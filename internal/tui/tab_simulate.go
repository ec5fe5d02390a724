package tui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/theirongolddev/ccoach/internal/cli"
	"github.com/theirongolddev/ccoach/internal/simulate"
	"github.com/theirongolddev/ccoach/internal/tui/components"
	"github.com/theirongolddev/ccoach/internal/tui/theme"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// simValues holds the form-bound simulation inputs. Numeric fields are kept as text
// because huh inputs bind to strings.
type simValues struct {
	changeType        string
	dietPercent       string
	removedItems      string
	fromMode          string
	toMode            string
	daysPerWeek       string
	shoppingPercent   string
	efficiencyPercent string
}

// newSimValues pre-fills every field from the per-type defaults.
func newSimValues(initial simulate.ChangeType) *simValues {
	diet := simulate.Defaults(simulate.ChangeDiet)
	commute := simulate.Defaults(simulate.ChangeCommute)
	shopping := simulate.Defaults(simulate.ChangeShopping)
	energy := simulate.Defaults(simulate.ChangeEnergy)

	return &simValues{
		changeType:        string(initial),
		dietPercent:       fmt.Sprint(diet["reduction_percent"]),
		fromMode:          fmt.Sprint(commute["from_mode"]),
		toMode:            fmt.Sprint(commute["to_mode"]),
		daysPerWeek:       fmt.Sprint(commute["days_per_week"]),
		shoppingPercent:   fmt.Sprint(shopping["reduction_percent"]),
		efficiencyPercent: fmt.Sprint(energy["efficiency_improvement_percent"]),
	}
}

// request converts the form into a change type and parameter map.
func (v *simValues) request() (simulate.ChangeType, map[string]any, error) {
	ct, err := simulate.ParseChangeType(v.changeType)
	if err != nil {
		return "", nil, err
	}

	params := map[string]any{}
	switch ct {
	case simulate.ChangeDiet:
		n, err := parsePercent(v.dietPercent)
		if err != nil {
			return "", nil, err
		}
		params["reduction_percent"] = n
		params["removed_items"] = splitList(v.removedItems)
	case simulate.ChangeCommute:
		days, err := parseDays(v.daysPerWeek)
		if err != nil {
			return "", nil, err
		}
		params["from_mode"] = v.fromMode
		params["to_mode"] = v.toMode
		params["days_per_week"] = days
	case simulate.ChangeShopping:
		n, err := parsePercent(v.shoppingPercent)
		if err != nil {
			return "", nil, err
		}
		params["reduction_percent"] = n
	case simulate.ChangeEnergy:
		n, err := parsePercent(v.efficiencyPercent)
		if err != nil {
			return "", nil, err
		}
		params["efficiency_improvement_percent"] = n
	}
	return ct, simulate.WithDefaults(ct, params), nil
}

func parsePercent(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%")))
	if err != nil || n < 0 || n > 100 {
		return 0, fmt.Errorf("enter a percentage between 0 and 100")
	}
	return n, nil
}

func parseDays(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 7 {
		return 0, fmt.Errorf("enter a number of days between 1 and 7")
	}
	return n, nil
}

func validatePercent(s string) error {
	_, err := parsePercent(s)
	return err
}

func validateDays(s string) error {
	_, err := parseDays(s)
	return err
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// newSimForm builds the what-if form. Only the group for the selected change type is shown.
func newSimForm(vals *simValues) *huh.Form {
	typeOpts := make([]huh.Option[string], 0, len(simulate.ChangeTypes))
	for _, ct := range simulate.ChangeTypes {
		typeOpts = append(typeOpts, huh.NewOption(ct.Label(), string(ct)))
	}
	modeOpts := make([]huh.Option[string], 0, len(simulate.CommuteModes))
	for _, m := range simulate.CommuteModes {
		modeOpts = append(modeOpts, huh.NewOption(strings.ReplaceAll(m, "_", " "), m))
	}
	hiddenUnless := func(ct simulate.ChangeType) func() bool {
		return func() bool { return vals.changeType != string(ct) }
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("What would you change?").
				Options(typeOpts...).
				Value(&vals.changeType),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Cut meat and animal products by (%)").
				Validate(validatePercent).
				Value(&vals.dietPercent),
			huh.NewInput().
				Title("Items to drop entirely").
				Description("Comma-separated, optional").
				Value(&vals.removedItems),
		).WithHideFunc(hiddenUnless(simulate.ChangeDiet)),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Current commute").
				Options(modeOpts...).
				Value(&vals.fromMode),
			huh.NewSelect[string]().
				Title("Switch to").
				Options(modeOpts...).
				Value(&vals.toMode),
			huh.NewInput().
				Title("Days per week").
				Validate(validateDays).
				Value(&vals.daysPerWeek),
		).WithHideFunc(hiddenUnless(simulate.ChangeCommute)),
		huh.NewGroup(
			huh.NewInput().
				Title("Buy less by (%)").
				Validate(validatePercent).
				Value(&vals.shoppingPercent),
		).WithHideFunc(hiddenUnless(simulate.ChangeShopping)),
		huh.NewGroup(
			huh.NewInput().
				Title("Improve home energy efficiency by (%)").
				Validate(validatePercent).
				Value(&vals.efficiencyPercent),
		).WithHideFunc(hiddenUnless(simulate.ChangeEnergy)),
	).WithShowHelp(true)
}

// describeRequest renders a one-line summary such as "Commute: days per week 5, from mode car".
func describeRequest(ct simulate.ChangeType, params map[string]any) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := params[k]
		if list, ok := v.([]string); ok {
			if len(list) == 0 {
				continue
			}
			v = strings.Join(list, ", ")
		}
		parts = append(parts, fmt.Sprintf("%s %v", strings.ReplaceAll(k, "_", " "), v))
	}
	return ct.Label() + ": " + strings.Join(parts, ", ")
}

func (a App) renderSimulateTab(cw int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(cw)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	goodStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface).Bold(true)
	errStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)

	if a.simForm != nil {
		return components.ContentCard("New Simulation", a.simForm.View(), cw)
	}

	var b strings.Builder
	st := a.simState

	if a.lastSim != "" {
		b.WriteString(labelStyle.Render("Scenario  "))
		b.WriteString(valueStyle.Render(cli.Truncate(a.lastSim, innerW-10)))
		b.WriteString("\n\n")
	}

	switch {
	case st.Loading:
		b.WriteString(labelStyle.Render(a.spinner.View() + " Simulating…"))
	case st.Err != "":
		b.WriteString(errStyle.Render("Simulation failed: " + st.Err))
	case st.Result != nil:
		res := st.Result
		cards := components.MetricCardRow([]components.Metric{
			{Label: "Estimated reduction", Value: cli.FormatKgValue(res.EstimatedReductionKg), Color: t.Green},
			{Label: "Of your footprint", Value: fmt.Sprintf("%.1f%%", res.EstimatedReductionPercent)},
			{Label: "Per year", Value: cli.FormatKgValue(res.AnnualImpactKg), Color: t.GreenBright},
		}, innerW)
		b.WriteString(cards)
		b.WriteString("\n")
		if res.ChangeDescription != "" {
			b.WriteString(goodStyle.Render(res.ChangeDescription))
			b.WriteString("\n")
		}
		if len(res.AffectedCategories) > 0 {
			b.WriteString(labelStyle.Render("Affects  "))
			b.WriteString(valueStyle.Render(strings.Join(res.AffectedCategories, ", ")))
			b.WriteString("\n")
		}
	default:
		b.WriteString(valueStyle.Render("Estimate how much a lifestyle change would cut your footprint."))
		b.WriteString("\n")
		for _, ct := range simulate.ChangeTypes {
			b.WriteString(dimStyle.Render("  • " + describeRequest(ct, simulate.Defaults(ct))))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("[enter] new simulation  [d] dismiss"))

	return components.ContentCard("What-if Simulator", b.String(), cw)
}
