package tui

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/theirongolddev/ccoach/internal/carbonapi"
	"github.com/theirongolddev/ccoach/internal/config"
	"github.com/theirongolddev/ccoach/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// setupValues holds the form-bound values for the first-run wizard.
type setupValues struct {
	baseURL string
	token   string
	period  string
	theme   string
}

func newSetupValues(cfg config.Config) *setupValues {
	return &setupValues{
		baseURL: config.GetAPIURL(cfg),
		period:  string(config.Period(cfg)),
		theme:   cfg.Appearance.Theme,
	}
}

// newSetupForm builds the huh form for first-run configuration.
func newSetupForm(vals *setupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, name := range theme.Names() {
		themeOpts = append(themeOpts, huh.NewOption(name, name))
	}

	periodOpts := make([]huh.Option[string], 0, len(carbonapi.Periods))
	for _, p := range carbonapi.Periods {
		periodOpts = append(periodOpts, huh.NewOption(string(p), string(p)))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to ccoach").
				Description("Connect to your carbon budgeting service.\nSettings are saved to "+config.ConfigPath()),

			huh.NewInput().
				Title("Service URL").
				Placeholder(carbonapi.DefaultBaseURL).
				Validate(validateBaseURL).
				Value(&vals.baseURL),

			huh.NewInput().
				Title("Access token (optional)").
				Description("Bearer token for the analytics API. $"+config.EnvToken+" overrides it.").
				EchoMode(huh.EchoModePassword).
				Value(&vals.token),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Default insights period").
				Options(periodOpts...).
				Value(&vals.period),

			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.theme),
		),
	).WithShowHelp(false)
}

func validateBaseURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("enter an http(s) URL")
	}
	return nil
}

// apply copies the form values onto cfg. A blank token keeps the existing one.
func (v *setupValues) apply(cfg config.Config) config.Config {
	if u := strings.TrimSpace(v.baseURL); u != "" {
		cfg.API.BaseURL = strings.TrimRight(u, "/")
	}
	if tok := strings.TrimSpace(v.token); tok != "" {
		cfg.API.Token = tok
	}
	if p, err := carbonapi.ParsePeriod(v.period); err == nil {
		cfg.Dashboard.Period = string(p)
	}
	if v.theme != "" {
		cfg.Appearance.Theme = v.theme
	}
	return cfg
}

// RunSetup runs the setup form outside the dashboard and returns cfg with the answers applied.
func RunSetup(cfg config.Config) (config.Config, error) {
	vals := newSetupValues(cfg)
	if err := newSetupForm(vals).WithShowHelp(true).Run(); err != nil {
		return cfg, err
	}
	return vals.apply(cfg), nil
}
