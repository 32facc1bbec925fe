package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/claude/repcoach/internal/catalog"
	"github.com/claude/repcoach/internal/oracle/gemini"
	"github.com/claude/repcoach/internal/routine"
	"github.com/spf13/cobra"
)

var (
	routineSets      int
	routineReps      string
	routineEquipment []string
	routineInjuries  string
	routineWeight    float64
)

var routineCmd = &cobra.Command{
	Use:   "routine [request]",
	Short: "Generate a workout routine locally",
	Example: `  repcoachctl routine --sets 12 --reps 8-12 --equipment dumbbell,bench "push day"
  repcoachctl routine --sets 9 --equipment barbell --injuries "bad left knee"`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := newLogger()
		ctx := cmd.Context()

		cat, err := catalog.Load(ctx, cfg.Catalog.Source)
		if err != nil {
			return err
		}
		llm, err := gemini.New(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.Timeout, log)
		if err != nil {
			return err
		}
		planner := routine.New(llm, cat, routine.Config{
			MaxRoundTrips:  cfg.Planner.MaxRoundTrips,
			SelectionLimit: cfg.Planner.SelectionLimit,
		}, log)

		res, err := planner.Generate(ctx, routine.Preferences{
			TargetTotalSets: routineSets,
			RepRange:        routineReps,
			Equipment:       routineEquipment,
			Injuries:        routineInjuries,
			Query:           strings.Join(args, " "),
			DefaultWeight:   routineWeight,
		})
		if err != nil {
			return fmt.Errorf("%s: %w", routine.Reason(err), err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, map[string]any{"reply": res.Narrative, "exercises": res.Exercises, "round_trips": res.RoundTrips})
		}
		fmt.Fprintln(out, res.Narrative)
		fmt.Fprintln(out)
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "EXERCISE\tSETS\tREPS\tREST")
		for _, ex := range res.Exercises {
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", ex.Name, ex.Sets, ex.Reps, ex.Rest.Label())
		}
		fmt.Fprintf(tw, "TOTAL\t%d\t\t\n", res.TotalSets())
		return tw.Flush()
	},
}

func init() {
	routineCmd.Flags().IntVar(&routineSets, "sets", 10, "total number of sets")
	routineCmd.Flags().StringVar(&routineReps, "reps", "8-12", "rep range label ("+strings.Join(routine.RepRanges, ", ")+")")
	routineCmd.Flags().StringSliceVar(&routineEquipment, "equipment", nil, "available equipment, comma separated")
	routineCmd.Flags().StringVar(&routineInjuries, "injuries", "", "injuries or limitations to work around")
	routineCmd.Flags().Float64Var(&routineWeight, "weight", 0, "default weight for every exercise")
}
