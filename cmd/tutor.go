package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/speedlearn/internal/tutor"
	"github.com/abhisek/speedlearn/internal/ui/view"
)

var tutorCmd = &cobra.Command{
	Use:   "tutor",
	Short: "Ask the tutor for hints, questions, feedback and error analysis",
}

var tutorHintCmd = &cobra.Command{
	Use:   "hint <lesson-id>",
	Short: "Generate a hint for a learner stuck on a lesson",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, nil)
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.applySpeed(cmd); err != nil {
			return err
		}

		f := cmd.Flags()
		struggle, _ := f.GetString("context")
		style, _ := f.GetString("style")
		previous, _ := f.GetStringSlice("previous")

		h := a.ctl.GenerateHint(tutor.HintRequest{
			ContentID:       args[0],
			UserID:          a.user,
			StruggleContext: struggle,
			Style:           tutor.HintStyle(style),
			PreviousHints:   previous,
		})
		a.print(view.Hint(a.theme(), h))
		return nil
	},
}

var tutorQuestionCmd = &cobra.Command{
	Use:   "question <lesson-id>",
	Short: "Generate an adaptive question, optionally checking an answer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, nil)
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.applySpeed(cmd); err != nil {
			return err
		}

		f := cmd.Flags()
		progress, _ := f.GetFloat64("progress")
		mode, _ := f.GetString("mode")
		qtype, _ := f.GetString("type")
		topic, _ := f.GetString("topic")
		answer, _ := f.GetString("answer")
		if progress < 0 || progress > 1 {
			return fmt.Errorf("progress %v out of range 0-1", progress)
		}

		lessonID := args[0]
		if topic == "" {
			if src, ok := a.catalog.Get(lessonID); ok {
				topic = src.Title
			}
		}

		q := a.ctl.GenerateQuestion(tutor.QuestionRequest{
			ContentID: lessonID,
			UserID:    a.user,
			Topic:     topic,
			Progress:  progress,
			Mode:      tutor.QuestionMode(mode),
			Type:      tutor.QuestionType(qtype),
		})
		th := a.theme()
		a.print(view.Question(th, q))
		if q == nil || !f.Changed("answer") {
			return nil
		}

		correct, ok := a.ctl.AnswerQuestion(a.user, lessonID, q.ID, answer)
		if !ok {
			return fmt.Errorf("question %s is no longer current", q.ID)
		}
		if correct {
			a.print(th.Correct.Render("Correct!"))
		} else {
			a.print(th.Incorrect.Render("Not quite. Expected: " + q.CorrectAnswer))
		}
		if q.Explanation != "" {
			a.print(th.Hint.Render(q.Explanation))
		}
		return nil
	},
}

var tutorFeedbackCmd = &cobra.Command{
	Use:   "feedback <lesson-id>",
	Short: "Generate feedback on recent performance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		f := cmd.Flags()
		accuracy, _ := f.GetFloat64("accuracy")
		attempt, _ := f.GetInt("attempt")
		hints, _ := f.GetInt("hints-used")
		seconds, _ := f.GetFloat64("seconds")

		fb := a.ctl.GenerateFeedback(tutor.FeedbackRequest{
			UserID:    a.user,
			ContentID: args[0],
			RecentPerformance: tutor.Performance{
				Accuracy:         accuracy,
				TimeSpentSeconds: seconds,
				HintsUsed:        hints,
			},
			AttemptNumber: attempt,
		})
		if fb == nil {
			return fmt.Errorf("no feedback for accuracy %v", accuracy)
		}
		a.print(view.Feedback(a.theme(), fb))
		return nil
	},
}

var tutorAnalyzeCmd = &cobra.Command{
	Use:   "analyze <lesson-id>",
	Short: "Classify a wrong response and suggest a remediation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		f := cmd.Flags()
		response, _ := f.GetString("response")
		correct, _ := f.GetString("correct")
		errContext, _ := f.GetString("context")
		previous, _ := f.GetStringSlice("previous-errors")

		ea := a.ctl.AnalyzeError(tutor.ErrorRequest{
			UserID:         a.user,
			ContentID:      args[0],
			Response:       response,
			CorrectAnswer:  correct,
			Context:        errContext,
			PreviousErrors: previous,
		})
		if ea == nil {
			return fmt.Errorf("nothing to analyze")
		}
		a.print(view.ErrorAnalysis(a.theme(), ea))
		return nil
	},
}

func init() {
	tutorHintCmd.Flags().Int("speed", 3, "Learning speed (1-5)")
	tutorHintCmd.Flags().String("context", "", "What the learner is struggling with")
	tutorHintCmd.Flags().String("style", "", "Hint style: gentle, direct, encouraging or detailed (default by speed)")
	tutorHintCmd.Flags().StringSlice("previous", nil, "Hints already given")

	tutorQuestionCmd.Flags().Int("speed", 3, "Learning speed (1-5)")
	tutorQuestionCmd.Flags().Float64("progress", 0, "Learner progress through the lesson (0-1)")
	tutorQuestionCmd.Flags().String("mode", string(tutor.ModeAdaptive), "Difficulty mode: adaptive, progressive or fixed")
	tutorQuestionCmd.Flags().String("type", "", "Force a question type: multiple-choice, open-ended, true-false or fill-blank")
	tutorQuestionCmd.Flags().String("topic", "", "Topic woven into the question (default lesson title)")
	tutorQuestionCmd.Flags().String("answer", "", "Check this answer against the question")

	tutorFeedbackCmd.Flags().Float64("accuracy", 0, "Recent accuracy percentage (0-100)")
	tutorFeedbackCmd.Flags().Int("attempt", 1, "Attempt number")
	tutorFeedbackCmd.Flags().Int("hints-used", 0, "Hints used on recent work")
	tutorFeedbackCmd.Flags().Float64("seconds", 0, "Time spent on recent work in seconds")

	tutorAnalyzeCmd.Flags().String("response", "", "The learner's response")
	tutorAnalyzeCmd.Flags().String("correct", "", "The correct answer")
	tutorAnalyzeCmd.Flags().String("context", "", "Context of the error")
	tutorAnalyzeCmd.Flags().StringSlice("previous-errors", nil, "Earlier errors by the learner")

	tutorCmd.AddCommand(tutorHintCmd, tutorQuestionCmd, tutorFeedbackCmd, tutorAnalyzeCmd)
}
