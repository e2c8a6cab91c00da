package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/speedlearn/internal/content"
	"github.com/abhisek/speedlearn/internal/ui/theme"
	"github.com/abhisek/speedlearn/internal/ui/view"
)

var lessonCmd = &cobra.Command{
	Use:   "lesson [lesson-id]",
	Short: "Show a lesson adapted to the learner's speed",
	Long: "Without arguments, lists the lessons in the built-in catalog. With a lesson id, " +
		"generates the lesson at --speed, optionally personalised with a learner profile.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		if len(args) == 0 {
			th := a.theme()
			a.print(th.Title.Render("Lessons"))
			for _, id := range a.catalog.IDs() {
				src, _ := a.catalog.Get(id)
				a.print(fmt.Sprintf("  %-18s %s", id, th.Subtitle.Render(src.Title)))
			}
			return nil
		}

		if err := a.applySpeed(cmd); err != nil {
			return err
		}
		profile, err := profileFromFlags(cmd)
		if err != nil {
			return err
		}
		if profile != nil {
			a.ctl.SetProfile(a.user, profile)
		}

		personalized, _ := cmd.Flags().GetBool("personalized")
		adjust, _ := cmd.Flags().GetFloat64("adjust")
		if !content.ValidDelta(adjust) {
			return fmt.Errorf("--adjust must be a finite number, got %v", adjust)
		}
		if adjust != 0 {
			personalized = true
		}

		ctx := cmd.Context()
		lessonID := args[0]
		if personalized {
			_, err = a.ctl.RequestPersonalized(ctx, a.user, lessonID)
		} else {
			_, err = a.ctl.RequestContent(ctx, a.user, lessonID)
		}
		if err != nil {
			return fmt.Errorf("load lesson %s: %w", lessonID, err)
		}

		if adjust != 0 {
			reason, _ := cmd.Flags().GetString("reason")
			ad, err := a.ctl.AdjustDifficulty(a.user, lessonID, adjust, reason)
			if err != nil {
				return err
			}
			a.print(a.theme().Subtitle.Render(fmt.Sprintf("difficulty %v → %v (%s)",
				ad.BeforeState["difficulty"], ad.AfterState["difficulty"], ad.Reasoning)))
		}

		st := a.ctl.State(a.user)
		if st.Content == nil {
			return fmt.Errorf("lesson %s has no content", lessonID)
		}
		a.print(view.Lesson(theme.For(st.Content.UIConfig, a.plain), st.Content, st.FromCache))
		return nil
	},
}

// profileFromFlags builds a personalization profile from the profile
// flags, or returns nil when none were set.
func profileFromFlags(cmd *cobra.Command) (*content.PersonalizationProfile, error) {
	f := cmd.Flags()
	if !f.Changed("style") && !f.Changed("complexity") && !f.Changed("interest") &&
		!f.Changed("strength") && !f.Changed("challenge") && !f.Changed("accessibility") {
		return nil, nil
	}

	p := &content.PersonalizationProfile{}
	style, _ := f.GetString("style")
	switch ls := content.LearningStyle(strings.ToLower(style)); ls {
	case "":
	case content.StyleVisual, content.StyleAuditory, content.StyleKinesthetic, content.StyleReading:
		p.LearningStyle = ls
	default:
		return nil, fmt.Errorf("unknown learning style %q", style)
	}
	if f.Changed("complexity") {
		c, _ := f.GetInt("complexity")
		if c < 0 || c > 100 {
			return nil, fmt.Errorf("complexity %d out of range 0-100", c)
		}
		p.PreferredComplexity = &c
	}
	p.Interests, _ = f.GetStringSlice("interest")
	p.Strengths, _ = f.GetStringSlice("strength")
	p.Challenges, _ = f.GetStringSlice("challenge")
	p.AccessibilityNeeds, _ = f.GetStringSlice("accessibility")
	return p, nil
}

func init() {
	lessonCmd.Flags().Int("speed", 3, "Learning speed (1-5)")
	lessonCmd.Flags().Bool("personalized", false, "Use the personalised-content cache")
	lessonCmd.Flags().Float64("adjust", 0, "Adjust personalised difficulty by this delta (-2 to 2)")
	lessonCmd.Flags().String("reason", "manual adjustment", "Reason recorded with --adjust")

	lessonCmd.Flags().String("style", "", "Learning style: visual, auditory, kinesthetic or reading")
	lessonCmd.Flags().Int("complexity", 50, "Preferred complexity (0-100)")
	lessonCmd.Flags().StringSlice("interest", nil, "Learner interests")
	lessonCmd.Flags().StringSlice("strength", nil, "Learner strengths")
	lessonCmd.Flags().StringSlice("challenge", nil, "Learner challenges")
	lessonCmd.Flags().StringSlice("accessibility", nil, "Accessibility needs: dyslexia, screen-reader, attention, low-vision, motion-sensitivity")
}
