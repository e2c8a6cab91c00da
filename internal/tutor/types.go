package tutor

import (
	"slices"
	"time"

	"github.com/abhisek/speedlearn/internal/content"
	"github.com/abhisek/speedlearn/internal/speed"
)

// HintType classifies what kind of help a hint offers.
type HintType string

const (
	HintConceptual    HintType = "conceptual"
	HintProcedural    HintType = "procedural"
	HintStrategic     HintType = "strategic"
	HintMetacognitive HintType = "metacognitive"
)

// HintStyle is the tone wrapped around a hint template.
type HintStyle string

const (
	StyleGentle      HintStyle = "gentle"
	StyleDirect      HintStyle = "direct"
	StyleEncouraging HintStyle = "encouraging"
	StyleDetailed    HintStyle = "detailed"
)

// Hint is one piece of tutor help for a content item.
type Hint struct {
	ID            string
	ContentID     string
	UserID        string
	Text          string
	Type          HintType
	Difficulty    float64
	Confidence    float64
	Used          bool
	Effectiveness *float64
	CreatedAt     time.Time
}

// HintRequest asks for a hint for a learner stuck on a content item.
type HintRequest struct {
	ContentID       string
	UserID          string
	StruggleContext string
	Speed           speed.Speed
	PreviousHints   []string

	// Style defaults by speed when empty.
	Style HintStyle
}

// QuestionType is the answer format of a question.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple-choice"
	QuestionOpenEnded      QuestionType = "open-ended"
	QuestionTrueFalse      QuestionType = "true-false"
	QuestionFillBlank      QuestionType = "fill-blank"
)

// QuestionMode selects how question difficulty follows progress.
type QuestionMode string

const (
	ModeAdaptive    QuestionMode = "adaptive"
	ModeProgressive QuestionMode = "progressive"
	ModeFixed       QuestionMode = "fixed"
)

// Question is an adaptive check-for-understanding question.
type Question struct {
	ID            string
	ContentID     string
	Text          string
	Type          QuestionType
	Difficulty    float64
	Options       []string
	CorrectAnswer string
	Explanation   string
	FollowUps     []string
	CreatedAt     time.Time
}

// QuestionRequest asks for the next question on a content item.
type QuestionRequest struct {
	ContentID string
	UserID    string

	// Topic is woven into the question text. Defaults to "this lesson".
	Topic string

	// Progress is the learner's 0-1 progress through the content.
	Progress          float64
	Speed             speed.Speed
	PreviousQuestions []string
	Mode              QuestionMode

	// Type forces a question type instead of choosing one from speed and progress.
	Type QuestionType
}

// FeedbackType is the register of a feedback message.
type FeedbackType string

const (
	FeedbackPositive    FeedbackType = "positive"
	FeedbackCorrective  FeedbackType = "corrective"
	FeedbackEncouraging FeedbackType = "encouraging"
	FeedbackStrategic   FeedbackType = "strategic"
)

// Performance summarises recent answers.
type Performance struct {
	// Accuracy is a percentage, 0-100.
	Accuracy         float64
	TimeSpentSeconds float64
	HintsUsed        int
}

// FeedbackRequest asks for feedback on recent performance.
type FeedbackRequest struct {
	UserID            string
	ContentID         string
	RecentPerformance Performance
	AttemptNumber     int
}

// Feedback is a personalised response to learner performance.
type Feedback struct {
	ID          string
	UserID      string
	ContentID   string
	Text        string
	Type        FeedbackType
	IsCorrect   bool
	Suggestions []string
	CreatedAt   time.Time
}

// ErrorType classifies a wrong response.
type ErrorType string

const (
	ErrorMisconception ErrorType = "misconception"
	ErrorProcedural    ErrorType = "procedural"
	ErrorCareless      ErrorType = "careless"
	ErrorKnowledgeGap  ErrorType = "knowledge-gap"
)

// ErrorRequest describes a wrong response to analyse.
type ErrorRequest struct {
	UserID         string
	ContentID      string
	Response       string
	CorrectAnswer  string
	Context        string
	PreviousErrors []string
}

// ErrorAnalysis is the tutor's reading of a wrong response.
type ErrorAnalysis struct {
	ID          string
	ErrorType   ErrorType
	Description string
	Remediation []string
	Confidence  float64
	CreatedAt   time.Time
}

// HintState is the per-content hint lifecycle.
type HintState string

const (
	HintIdle      HintState = "idle"
	HintRequested HintState = "hint-requested"
	HintAvailable HintState = "hint-available"
	HintUsed      HintState = "used"
	HintDismissed HintState = "dismissed"
)

// QuestionState is the per-content question lifecycle.
type QuestionState string

const (
	QuestionNone      QuestionState = "none"
	QuestionGenerated QuestionState = "generated"
	QuestionAnswered  QuestionState = "answered"
)

// Metrics are rolling counters over a tutor session.
type Metrics struct {
	TotalHintsProvided int
	HintsUsed          int

	// HintEffectiveness averages the effectiveness reported for used hints.
	HintEffectiveness    float64
	effectivenessSamples int

	QuestionsGenerated    int
	QuestionsAnswered     int
	CorrectAnswers        int
	FeedbackGiven         int
	ErrorsAnalyzed        int
	DifficultyAdjustments int

	// AverageConfidence averages confidence over hints and error analyses.
	AverageConfidence float64
	confidenceSamples int
}

// Session is one learner's tutoring history.
type Session struct {
	ID          string
	UserID      string
	StartedAt   time.Time
	Hints       []Hint
	Questions   []Question
	Feedback    []Feedback
	Errors      []ErrorAnalysis
	Adaptations []content.Adaptation
	Metrics     Metrics
}

func (s *Session) clone() *Session {
	out := *s
	out.Hints = append([]Hint(nil), s.Hints...)
	out.Questions = append([]Question(nil), s.Questions...)
	out.Feedback = append([]Feedback(nil), s.Feedback...)
	out.Errors = append([]ErrorAnalysis(nil), s.Errors...)
	for i := range out.Errors {
		out.Errors[i].Remediation = slices.Clone(out.Errors[i].Remediation)
	}
	out.Adaptations = append([]content.Adaptation(nil), s.Adaptations...)
	return &out
}

// Rand is the randomness the tutor draws on. Satisfied by *rand.Rand
// from math/rand/v2.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// Config holds tutor settings.
type Config struct {
	// HistoryLimit bounds each artifact list in a Session; the oldest
	// entries are dropped first.
	HistoryLimit int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{HistoryLimit: 50}
}
