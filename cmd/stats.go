package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/speedlearn/internal/speed"
	"github.com/abhisek/speedlearn/internal/ui/theme"
	"github.com/abhisek/speedlearn/internal/ui/view"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show session metrics, cache counters and LLM usage",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		plain, _ := cmd.Flags().GetBool("plain")
		th := theme.ForSpeed(speed.Default, plain)
		out := cmd.OutOrStdout()
		ctx := cmd.Context()

		snap, err := s.SnapshotRepo().Latest(ctx)
		if err != nil {
			return fmt.Errorf("load snapshot: %w", err)
		}
		if snap == nil {
			fmt.Fprintln(out, "No sessions recorded yet.")
		} else {
			fmt.Fprintln(out, th.Subtitle.Render("as of "+snap.Timestamp.Local().Format("2006-01-02 15:04:05")))
			fmt.Fprintln(out, view.Metrics(th, snap.Data.Session))

			c := snap.Data.Cache
			fmt.Fprintln(out)
			fmt.Fprintln(out, th.Title.Render("Cache"))
			fmt.Fprintf(out, "hits %d · misses %d · generations %d · failures %d\n",
				c.Hits, c.Misses, c.Generations, c.Failures)
			fmt.Fprintf(out, "lessons %d · personalised %d · queued %d\n", c.Lessons, c.Personalized, c.Queued)
		}

		usage, err := s.LLMEventRepo().UsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query LLM usage: %w", err)
		}
		if len(usage) == 0 {
			return nil
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, th.Title.Render("LLM usage"))
		fmt.Fprintf(out, "%-16s  %6s  %8s  %10s  %10s  %8s\n", "Purpose", "Calls", "Failed", "Input", "Output", "Avg Ms")
		fmt.Fprintln(out, strings.Repeat("─", 66))
		for _, u := range usage {
			fmt.Fprintf(out, "%-16s  %6d  %8d  %10d  %10d  %8d\n",
				u.Purpose, u.Calls, u.Failures, u.InputTokens, u.OutputTokens, u.AvgLatencyMs)
		}
		return nil
	},
}
