package cmd

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/speedlearn/internal/engine"
	"github.com/abhisek/speedlearn/internal/session"
	"github.com/abhisek/speedlearn/internal/ui/view"
)

// simClock is a manually advanced clock for replaying a session quickly.
type simClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *simClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *simClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

var sessionCmd = &cobra.Command{
	Use:   "session <lesson-id>",
	Short: "Simulate a learning session and ask for a speed recommendation",
	Long: "Opens the lesson, replays --interactions learner interactions spread over --minutes " +
		"of simulated time, ends the session and then asks the speed advisor for a recommendation. " +
		"Interactions are written to the telemetry log and the metrics survive across runs.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		clock := &simClock{t: time.Now()}
		a, err := newApp(cmd, clock.now)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.applySpeed(cmd); err != nil {
			return err
		}

		f := cmd.Flags()
		count, _ := f.GetInt("interactions")
		minutes, _ := f.GetFloat64("minutes")
		completed, _ := f.GetBool("complete")
		struggle, _ := f.GetString("struggle")
		engagement, _ := f.GetFloat64("engagement")
		accept, _ := f.GetBool("accept")
		if count < 0 || minutes < 0 {
			return fmt.Errorf("interactions and minutes must not be negative")
		}

		ctx := cmd.Context()
		lessonID := args[0]
		if _, err := a.ctl.RequestContent(ctx, a.user, lessonID); err != nil {
			return fmt.Errorf("load lesson %s: %w", lessonID, err)
		}
		th := a.theme()

		a.ctl.StartSession(a.user, lessonID)
		step := time.Duration(0)
		if count > 0 {
			step = time.Duration(minutes * float64(time.Minute) / float64(count))
		}
		for i := range count {
			clock.advance(step)
			ix := session.Interaction{
				UserID:           a.user,
				LessonID:         lessonID,
				Type:             interactionAt(i, count, completed),
				TimeSpentSeconds: step.Seconds(),
			}
			if engagement >= 0 {
				score := engagement
				ix.EngagementScore = &score
			}
			if struggle != "" && i == count/2 {
				ix.Data = map[string]any{engine.SignalKey: engine.SignalStruggle, engine.SignalContextKey: struggle}
			}
			if err := a.ctl.AddInteraction(ix); err != nil {
				return fmt.Errorf("record interaction %d: %w", i, err)
			}
		}
		if count == 0 {
			clock.advance(time.Duration(minutes * float64(time.Minute)))
		}

		if h := a.ctl.State(a.user).Hint; h != nil {
			a.print(view.Hint(th, h))
		}

		ended := a.ctl.EndSession(a.user, completed)
		if ended == nil {
			return fmt.Errorf("session for %s was not active", lessonID)
		}
		a.print(th.Title.Render("Session"))
		a.print(fmt.Sprintf("%d interactions over %s · completed %v · engagement %.2f",
			len(ended.Interactions), ended.EndTime.Sub(ended.StartTime).Round(time.Second),
			ended.Completed, ended.Engagement(clock.now())))
		a.print("")
		a.print(view.Metrics(th, a.sessions.Metrics()))
		a.print("")

		rec, err := a.ctl.RequestRecommendation(ctx, a.user)
		if err != nil {
			return fmt.Errorf("recommendation: %w", err)
		}
		st := a.ctl.State(a.user)
		a.print(view.Recommendation(th, rec, st.Recommendation.ShowSuggestion))

		if accept && st.Recommendation.ShowSuggestion {
			a.ctl.AcceptRecommendation(a.user, 0)
			a.print(th.Highlight.Render(fmt.Sprintf("Switched to speed %d.", a.ctl.Speed(a.user))))
		}
		return nil
	},
}

// interactionAt cycles view and click interactions, closing a completed
// session with a complete interaction.
func interactionAt(i, count int, completed bool) session.InteractionType {
	if completed && i == count-1 {
		return session.InteractionComplete
	}
	if i%2 == 1 {
		return session.InteractionClick
	}
	return session.InteractionView
}

func init() {
	sessionCmd.Flags().Int("speed", 3, "Learning speed (1-5)")
	sessionCmd.Flags().Int("interactions", 11, "Number of interactions to replay")
	sessionCmd.Flags().Float64("minutes", 6, "Simulated session length in minutes")
	sessionCmd.Flags().Bool("complete", true, "Mark the session completed")
	sessionCmd.Flags().String("struggle", "", "Send a struggle signal with this context halfway through")
	sessionCmd.Flags().Float64("engagement", -1, "Client engagement score for each interaction (0-1, negative for none)")
	sessionCmd.Flags().Bool("accept", false, "Accept a surfaced speed recommendation")
}
