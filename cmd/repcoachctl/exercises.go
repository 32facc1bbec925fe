package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/claude/repcoach/internal/catalog"
	"github.com/spf13/cobra"
)

var (
	exercisesLimit  int
	exercisesMuscle string
)

var exercisesCmd = &cobra.Command{
	Use:   "exercises [query]",
	Short: "Search the exercise catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cat, err := catalog.Load(cmd.Context(), cfg.Catalog.Source)
		if err != nil {
			return err
		}

		var found []catalog.Exercise
		if exercisesMuscle != "" {
			found = cat.Lookup(exercisesMuscle, nil)
			if exercisesLimit > 0 && len(found) > exercisesLimit {
				found = found[:exercisesLimit]
			}
		} else {
			found = cat.Search(strings.Join(args, " "), exercisesLimit)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, found)
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tMUSCLES\tEQUIPMENT\tMECHANIC\tFATIGUE")
		for _, ex := range found {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%g\n",
				ex.Name, strings.Join(ex.PrimaryMuscles, ","), ex.Equipment, ex.Mechanic, ex.FatigueScore)
		}
		return tw.Flush()
	},
}

func init() {
	exercisesCmd.Flags().IntVar(&exercisesLimit, "limit", 25, "maximum results (0 for all)")
	exercisesCmd.Flags().StringVar(&exercisesMuscle, "muscle", "", "list exercises for a muscle group instead of searching by name")
}
