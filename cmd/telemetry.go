package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/speedlearn/internal/store"
)

var telemetryCmd = &cobra.Command{
	Use:   "telemetry",
	Short: "Inspect recorded learner interactions",
}

var telemetryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded interactions",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		f := cmd.Flags()
		opts := store.QueryOpts{}
		opts.Limit, _ = f.GetInt("limit")
		opts.LessonID, _ = f.GetString("lesson")
		if all, _ := f.GetBool("all"); !all {
			opts.UserID, _ = f.GetString("user")
		}

		events, err := s.TelemetryRepo().QueryInteractions(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query interactions: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "No interactions found.")
			return nil
		}

		fmt.Fprintf(out, "%-6s  %-19s  %-12s  %-16s  %-8s  %7s  %6s  %s\n",
			"Seq", "Timestamp", "User", "Lesson", "Type", "Seconds", "Score", "Data")
		fmt.Fprintln(out, strings.Repeat("─", 96))
		for _, e := range events {
			score := "-"
			if e.EngagementScore != nil {
				score = fmt.Sprintf("%.2f", *e.EngagementScore)
			}
			data := ""
			if len(e.Data) > 0 {
				data = fmt.Sprint(e.Data)
			}
			fmt.Fprintf(out, "%-6d  %-19s  %-12s  %-16s  %-8s  %7.1f  %6s  %s\n",
				e.Sequence,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.UserID,
				e.LessonID,
				e.Type,
				e.TimeSpentSeconds,
				score,
				data,
			)
		}
		return nil
	},
}

func init() {
	telemetryListCmd.Flags().Int("limit", 50, "Maximum number of interactions")
	telemetryListCmd.Flags().String("lesson", "", "Only this lesson")
	telemetryListCmd.Flags().Bool("all", false, "Include every learner, not just --user")
	telemetryCmd.AddCommand(telemetryListCmd)
}
