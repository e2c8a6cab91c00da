package tutor

import (
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
)

const defaultTopic = "this lesson"

type questionTemplate struct {
	text        string
	options     []string
	answer      string
	explanation string
	followUps   []string
}

var questionTemplates = map[QuestionType][]questionTemplate{
	QuestionTrueFalse: {
		{
			text:        "True or false: the main idea of %s can be explained using its key words.",
			options:     []string{"true", "false"},
			answer:      "true",
			explanation: "The key words name the parts of the idea, so you can use them to explain it.",
		},
		{
			text:        "True or false: %s only matters inside a science classroom.",
			options:     []string{"true", "false"},
			answer:      "false",
			explanation: "Science ideas show up all around us, not just in class.",
		},
		{
			text:        "True or false: you can find an example of %s in everyday life.",
			options:     []string{"true", "false"},
			answer:      "true",
			explanation: "Looking for real examples is a good way to check you understand.",
		},
	},
	QuestionMultipleChoice: {
		{
			text: "Which choice best describes %s?",
			options: []string{
				"The main idea explained in the lesson",
				"A fact that has nothing to do with the lesson",
				"Something that only happens in stories",
				"A rule that is never true",
			},
			answer:      "The main idea explained in the lesson",
			explanation: "The lesson's main idea is the best summary.",
			followUps:   []string{"Which key word helped you choose?"},
		},
		{
			text: "What is the best first step to learn more about %s?",
			options: []string{
				"Reread the key ideas and look for examples",
				"Skip to the end",
				"Guess without reading",
				"Ignore the pictures",
			},
			answer:      "Reread the key ideas and look for examples",
			explanation: "Rereading and finding examples builds understanding.",
		},
	},
	QuestionOpenEnded: {
		{
			text:        "Explain how %s works, using an example from everyday life.",
			explanation: "A strong answer names the key idea and connects it to a real example.",
			followUps:   []string{"What would change if one part were missing?"},
		},
		{
			text:        "What question would a scientist ask next about %s, and how could they test it?",
			explanation: "Good scientific questions can be tested with an experiment or observation.",
			followUps:   []string{"What result would surprise you?"},
		},
		{
			text:        "Compare %s with another idea you have learned. How are they alike and different?",
			explanation: "Comparing ideas shows how well you understand each one.",
		},
	},
	QuestionFillBlank: {
		{
			text:        "Complete the sentence: The most important idea in %s is ____.",
			explanation: "Use the key idea from the lesson in your own words.",
		},
	},
}

// ChooseQuestionType picks a format from speed and progress.
func ChooseQuestionType(req QuestionRequest) QuestionType {
	if req.Type != "" {
		if _, ok := questionTemplates[req.Type]; ok {
			return req.Type
		}
	}
	switch {
	case req.Speed >= 4:
		return QuestionOpenEnded
	case req.Progress < 0.5:
		return QuestionTrueFalse
	default:
		return QuestionMultipleChoice
	}
}

// QuestionDifficulty maps progress to difficulty for a mode. Unknown
// modes behave as adaptive.
func QuestionDifficulty(mode QuestionMode, progress float64) float64 {
	progress = lo.Clamp(progress, 0, 1)
	switch mode {
	case ModeProgressive:
		return progress
	case ModeFixed:
		return 0.5
	default:
		return lo.Clamp(progress+0.1, 0.1, 0.9)
	}
}

// composeQuestion fills a template for the request, preferring templates
// whose text has not been asked before.
func composeQuestion(rng Rand, t QuestionType, req QuestionRequest) questionTemplate {
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		topic = defaultTopic
	}

	all := questionTemplates[t]
	fresh := lo.Filter(all, func(q questionTemplate, _ int) bool {
		return !slices.Contains(req.PreviousQuestions, fmt.Sprintf(q.text, topic))
	})
	if len(fresh) == 0 {
		fresh = all
	}

	q := fresh[rng.IntN(len(fresh))]
	q.text = fmt.Sprintf(q.text, topic)
	q.options = slices.Clone(q.options)
	q.followUps = slices.Clone(q.followUps)
	return q
}

// CheckAnswer reports whether answer is correct for q. Open-ended and
// fill-blank questions accept any non-empty answer.
func CheckAnswer(q Question, answer string) bool {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return false
	}
	if q.CorrectAnswer == "" {
		return true
	}
	return strings.EqualFold(answer, strings.TrimSpace(q.CorrectAnswer))
}
