package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	repmcp "github.com/claude/repcoach/internal/mcp"
	"github.com/claude/repcoach/internal/workoutimport"
	"github.com/spf13/cobra"
)

var (
	importServerURL string
	importWarmups   bool
	importUnit      string
	importDryRun    bool
)

var importCmd = &cobra.Command{
	Use:   "import <export.csv>",
	Short: "Import an Alpha Progression CSV export into the workout log",
	Long: `Uploads an Alpha Progression export to the RepCoach server at --server.
Dates that already have logged sets are skipped, so re-running the same
export is safe. With --dry-run the file is only parsed and summarized.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		unit, err := workoutimport.ParseUnit(importUnit)
		if err != nil {
			return err
		}
		opts := workoutimport.Options{Warmups: importWarmups, Unit: unit}

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		out := cmd.OutOrStdout()
		if importDryRun {
			sessions, err := workoutimport.Parse(f)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(out, sessions)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tSESSION\tEXERCISES\tSETS")
			for _, s := range sessions {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n",
					s.Date().Format("2006-01-02"), s.Name, len(s.Exercises), len(s.Rows(opts)))
			}
			return tw.Flush()
		}

		client := repmcp.NewHTTPClient(importServerURL)
		sum, err := client.ImportWorkouts(cmd.Context(), f, opts)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(out, sum)
		}
		fmt.Fprintf(out, "%d sessions, %d sets imported on %d days", sum.Sessions, sum.Sets, len(sum.Dates))
		if len(sum.Skipped) > 0 {
			fmt.Fprintf(out, ", %d days already logged", len(sum.Skipped))
		}
		fmt.Fprintln(out)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importServerURL, "server", "http://repcoach", "base URL of the RepCoach server")
	importCmd.Flags().BoolVar(&importWarmups, "warmups", false, "include warmup sets")
	importCmd.Flags().StringVar(&importUnit, "unit", "lb", "store weights in lb or kg")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "parse and summarize without uploading")
}
