package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
)

var janitorCmd = &cobra.Command{
	Use:   "janitor",
	Short: "Run housekeeping jobs",
}

var janitorRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Sweep stale cache entries, redeliver telemetry and snapshot metrics",
	Long: "Runs every housekeeping job once. With --watch, keeps the scheduler running " +
		"for the given duration (or until interrupted) before exiting.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		watch, _ := cmd.Flags().GetDuration("watch")
		if watch <= 0 {
			r := a.janitor.RunOnce()
			a.print(fmt.Sprintf("swept %d · redelivered %d · snapshot %d · pruned %d",
				r.Swept, r.Retried, r.Snapshot, r.Pruned))
			return r.SnapshotErr
		}

		if err := a.janitor.Start(); err != nil {
			return err
		}
		defer a.janitor.Stop()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		a.print(fmt.Sprintf("janitor running for %s", watch))
		select {
		case <-ctx.Done():
		case <-time.After(watch):
		}
		return nil
	},
}

func init() {
	janitorRunCmd.Flags().Duration("watch", 0, "Keep the scheduler running for this long")
	janitorCmd.AddCommand(janitorRunCmd)
}
