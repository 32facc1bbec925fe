package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/claude/repcoach/internal/nutrition"
	"github.com/spf13/cobra"
)

var foodCount int

var foodCmd = &cobra.Command{
	Use:   "food <name>",
	Short: "Look up nutrition facts in USDA FoodData Central",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client := nutrition.NewFDCClient(cfg.USDA.BaseURL, cfg.USDA.APIKey, newLogger())

		facts, err := client.Lookup(cmd.Context(), strings.Join(args, " "), foodCount)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, facts)
		}
		if len(facts) == 0 {
			fmt.Fprintln(out, "No data found.")
			return nil
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ITEM\tBRAND\tKCAL\tPROTEIN\tCARBS\tFAT")
		for _, f := range facts {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				f.Item, f.Brand, num(f.Calories), num(f.Protein), num(f.Carbs), num(f.Fat))
		}
		return tw.Flush()
	},
}

func num(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *v)
}

func init() {
	foodCmd.Flags().IntVar(&foodCount, "count", 3, "number of matches (1-10)")
}
