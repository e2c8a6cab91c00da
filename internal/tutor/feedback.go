package tutor

// correctAccuracy is the accuracy percentage above which recent
// performance counts as correct.
const correctAccuracy = 70

// errorConfidence is the fixed confidence of a rule-based error analysis.
const errorConfidence = 0.8

// FeedbackTypeFor picks a feedback register for the request.
func FeedbackTypeFor(req FeedbackRequest) (FeedbackType, bool) {
	correct := req.RecentPerformance.Accuracy > correctAccuracy
	switch {
	case correct:
		return FeedbackPositive, true
	case req.AttemptNumber <= 1:
		return FeedbackEncouraging, false
	default:
		return FeedbackCorrective, false
	}
}

var feedbackText = map[FeedbackType]string{
	FeedbackPositive:    "Great work! You really understand this.",
	FeedbackEncouraging: "Good try! Mistakes help us learn, so let's look at this together.",
	FeedbackCorrective:  "Not quite yet. Let's go back over the key idea and try again.",
}

var feedbackSuggestions = map[FeedbackType][]string{
	FeedbackPositive: {
		"Try a harder question to stretch yourself",
		"Explain the idea to someone else",
	},
	FeedbackEncouraging: {
		"Reread the lesson slowly",
		"Ask for a hint if you get stuck",
		"Try the question again",
	},
	FeedbackCorrective: {
		"Review the key terms",
		"Look at the worked example again",
		"Break the question into smaller steps",
	},
}

var errorNotes = map[ErrorType]struct {
	description string
	remediation []string
}{
	ErrorCareless: {
		description: "The answer looks rushed or incomplete.",
		remediation: []string{
			"Slow down and reread the question",
			"Underline what the question asks for",
			"Check your answer before submitting",
		},
	},
	ErrorMisconception: {
		description: "The same kind of mistake keeps coming up, which points to a misunderstanding of the idea.",
		remediation: []string{
			"Revisit the core concept with a new example",
			"Compare the example with your answer",
			"Explain the idea back in your own words",
		},
	},
	ErrorKnowledgeGap: {
		description: "Some background knowledge needed for this question may be missing.",
		remediation: []string{
			"Review the earlier part of the lesson that introduces this idea",
			"Work through the key terms again",
			"Try an easier practice question first",
		},
	},
}
