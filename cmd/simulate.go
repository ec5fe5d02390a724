package cmd

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/theirongolddev/ccoach/internal/cli"
	"github.com/theirongolddev/ccoach/internal/simulate"

	"github.com/spf13/cobra"
)

var (
	flagSimSet      []string
	flagSimPercent  int
	flagSimRemove   []string
	flagSimFrom     string
	flagSimTo       string
	flagSimDays     int
	flagSimDefaults bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <diet|commute|shopping|energy>",
	Short: "Estimate the impact of a lifestyle change",
	Example: `  ccoach simulate diet --percent 50 --remove beef,lamb
  ccoach simulate commute --from car --to public_transit --days-per-week 3
  ccoach simulate energy --set efficiency_improvement_percent=15`,
	Args: cobra.ExactArgs(1),
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().StringArrayVar(&flagSimSet, "set", nil, "Raw parameter as key=value (repeatable)")
	simulateCmd.Flags().IntVar(&flagSimPercent, "percent", -1, "Reduction percent for diet/shopping, improvement percent for energy")
	simulateCmd.Flags().StringSliceVar(&flagSimRemove, "remove", nil, "Diet items to drop entirely")
	simulateCmd.Flags().StringVar(&flagSimFrom, "from", "", "Current commute mode")
	simulateCmd.Flags().StringVar(&flagSimTo, "to", "", "New commute mode")
	simulateCmd.Flags().IntVar(&flagSimDays, "days-per-week", 0, "Commute days per week affected")
	simulateCmd.Flags().BoolVar(&flagSimDefaults, "defaults", true, "Fill missing parameters with the standard defaults")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(_ *cobra.Command, args []string) error {
	ct, err := simulate.ParseChangeType(args[0])
	if err != nil {
		return err
	}
	params, err := simulationParams(ct)
	if err != nil {
		return err
	}
	if flagSimDefaults {
		params = simulate.WithDefaults(ct, params)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	inv := simulate.NewInvoker(newClient(cfg))
	defer inv.Close()

	ctx, cancel := commandContext()
	defer cancel()

	progress("  Simulating %s...\n", strings.ToLower(ct.Label()))
	res := inv.Simulate(ctx, ct, params)
	if res == nil {
		return errors.New("simulation failed: " + inv.State().Err)
	}

	if flagJSON {
		return printJSON(res)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("WHAT IF  " + strings.ToUpper(ct.Label())))
	fmt.Println()
	for _, kv := range sortedParams(params) {
		fmt.Println(cli.RenderKV(strings.ReplaceAll(kv[0], "_", " "), kv[1]))
	}
	fmt.Println()
	fmt.Println(cli.RenderKV("Estimated reduction", cli.FormatKgValue(res.EstimatedReductionKg)))
	fmt.Println(cli.RenderKV("Of your footprint", fmt.Sprintf("%.1f%%", res.EstimatedReductionPercent)))
	fmt.Println(cli.RenderKV("Per year", cli.FormatKgValue(res.AnnualImpactKg)))
	if len(res.AffectedCategories) > 0 {
		fmt.Println(cli.RenderKV("Affects", strings.Join(res.AffectedCategories, ", ")))
	}
	fmt.Println()
	printParagraph(res.ChangeDescription)
	return nil
}

// simulationParams collects the typed flags and --set pairs. --set wins on conflict.
func simulationParams(ct simulate.ChangeType) (map[string]any, error) {
	params := map[string]any{}

	if flagSimPercent >= 0 {
		if flagSimPercent > 100 {
			return nil, fmt.Errorf("--percent must be between 0 and 100")
		}
		switch ct {
		case simulate.ChangeEnergy:
			params["efficiency_improvement_percent"] = flagSimPercent
		default:
			params["reduction_percent"] = flagSimPercent
		}
	}
	if len(flagSimRemove) > 0 {
		params["removed_items"] = flagSimRemove
	}
	if flagSimFrom != "" {
		params["from_mode"] = flagSimFrom
	}
	if flagSimTo != "" {
		params["to_mode"] = flagSimTo
	}
	if flagSimDays != 0 {
		if flagSimDays < 1 || flagSimDays > 7 {
			return nil, fmt.Errorf("--days-per-week must be between 1 and 7")
		}
		params["days_per_week"] = flagSimDays
	}

	for _, pair := range flagSimSet {
		k, v, err := parseParam(pair)
		if err != nil {
			return nil, err
		}
		params[k] = v
	}
	return params, nil
}

// parseParam splits "key=value" and types the value as int, float, bool or string.
func parseParam(pair string) (string, any, error) {
	k, v, ok := strings.Cut(pair, "=")
	k = strings.TrimSpace(k)
	if !ok || k == "" {
		return "", nil, fmt.Errorf("invalid --set %q (want key=value)", pair)
	}
	v = strings.TrimSpace(v)
	if n, err := strconv.Atoi(v); err == nil {
		return k, n, nil
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return k, f, nil
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return k, b, nil
	}
	return k, v, nil
}

func sortedParams(params map[string]any) [][2]string {
	out := make([][2]string, 0, len(params))
	for k, v := range params {
		s := fmt.Sprint(v)
		if list, ok := v.([]string); ok {
			if len(list) == 0 {
				continue
			}
			s = strings.Join(list, ", ")
		}
		out = append(out, [2]string{k, s})
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}
