package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/theirongolddev/ccoach/internal/cli"
	"github.com/theirongolddev/ccoach/internal/config"
	"github.com/theirongolddev/ccoach/internal/dashboard"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check connectivity and the state of each resource",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

type statusOutput struct {
	BaseURL   string                     `json:"base_url"`
	Token     bool                       `json:"token_configured"`
	Resources []dashboard.ResourceStatus `json:"resources"`
}

func runStatus(_ *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	ctx, cancel := commandContext()
	defer cancel()

	start := time.Now()
	if err := s.load(ctx); err != nil {
		return err
	}
	elapsed := time.Since(start)

	statuses := s.dash.Statuses()
	if flagJSON {
		return printJSON(statusOutput{
			BaseURL:   s.client.BaseURL(),
			Token:     config.GetToken(s.cfg) != "",
			Resources: statuses,
		})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("CCOACH STATUS"))
	fmt.Println()
	fmt.Println(cli.RenderKV("Service", s.client.BaseURL()))
	if tok := config.GetToken(s.cfg); tok != "" {
		fmt.Println(cli.RenderKV("Token", config.MaskToken(tok)+", expires "+describeExpiry(tok, time.Now())))
	} else {
		fmt.Println(cli.RenderKV("Token", "not configured"))
	}
	fmt.Println(cli.RenderKV("Round trip", elapsed.Round(time.Millisecond).String()))
	fmt.Println()

	now := time.Now()
	rows := make([][]string, 0, len(statuses))
	for _, st := range statuses {
		rows = append(rows, []string{
			string(st.Resource),
			st.Status,
			fmt.Sprintf("%d", st.Cycle),
			cli.FormatAge(st.UpdatedAt, now),
			cli.Truncate(st.Reason, 40),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Resource", "Status", "Cycle", "Updated", "Reason"},
		Rows:    rows,
	}))

	// Point at the usual fix for an auth failure.
	for _, e := range s.dash.Errors() {
		if e.Reason == fmt.Sprintf("HTTP %d", http.StatusUnauthorized) || e.Reason == fmt.Sprintf("HTTP %d", http.StatusForbidden) {
			fmt.Println()
			fmt.Println(cli.RenderWarning("The service rejected the token. Run `ccoach setup` or set $" + config.EnvToken + "."))
			break
		}
	}

	if errs := s.dash.Errors(); len(errs) == len(dashboard.Resources) {
		return errors.New("no resource could be fetched")
	}
	return nil
}
