// Package tutor generates hints, questions, feedback and error analyses
// for learners, and tracks each learner's tutoring session.
package tutor

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/abhisek/speedlearn/internal/cache"
	"github.com/abhisek/speedlearn/internal/content"
	"github.com/abhisek/speedlearn/internal/logger"
	"github.com/abhisek/speedlearn/internal/speed"
)

// ErrInvalidDelta is returned for a difficulty delta that is not a finite number.
var ErrInvalidDelta = errors.New("invalid difficulty delta")

// ContentStore holds the personalised content difficulty adjustments act
// on. Satisfied by *cache.Coordinator.
type ContentStore interface {
	Personalized(lessonID, userID string) (*cache.Entry, bool)
	ReplacePersonalized(lessonID, userID string, p content.Payload, ad content.Adaptation) error
}

type contentState struct {
	hint       HintState
	hintID     string
	question   QuestionState
	questionID string
}

type learner struct {
	session *Session
	content map[string]*contentState
}

// Tutor is the per-process tutoring service. All methods are safe for
// concurrent use.
type Tutor struct {
	store       ContentStore
	rng         Rand
	cfg         Config
	log         *logger.Logger
	now         func() time.Time
	hintRules   []HintRule
	classifiers []ErrorClassifier

	mu       sync.Mutex
	learners map[string]*learner
}

// Option configures a Tutor.
type Option func(*Tutor)

// WithClock overrides the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(t *Tutor) { t.now = now }
}

// NewTutor creates a Tutor. rng is only used under the tutor's lock, so a
// non-thread-safe source such as *rand.Rand is fine.
func NewTutor(store ContentStore, rng Rand, cfg Config, log *logger.Logger, opts ...Option) *Tutor {
	t := &Tutor{
		store:       store,
		rng:         rng,
		cfg:         cfg,
		log:         log.With("component", "tutor"),
		now:         time.Now,
		hintRules:   DefaultHintRules(),
		classifiers: DefaultErrorClassifiers(),
		learners:    make(map[string]*learner),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tutor) learnerLocked(userID string) *learner {
	l, ok := t.learners[userID]
	if !ok {
		l = &learner{
			session: &Session{
				ID:        uuid.NewString(),
				UserID:    userID,
				StartedAt: t.now(),
			},
			content: make(map[string]*contentState),
		}
		t.learners[userID] = l
	}
	return l
}

func (l *learner) contentLocked(contentID string) *contentState {
	cs, ok := l.content[contentID]
	if !ok {
		cs = &contentState{hint: HintIdle, question: QuestionNone}
		l.content[contentID] = cs
	}
	return cs
}

// GenerateHint produces a hint for the request and makes it the available
// hint for the content item. It returns nil for a request without a user
// or content id.
func (t *Tutor) GenerateHint(req HintRequest) *Hint {
	if req.UserID == "" || req.ContentID == "" {
		return nil
	}
	if !speed.Valid(req.Speed) {
		req.Speed = speed.Default
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	l := t.learnerLocked(req.UserID)
	cs := l.contentLocked(req.ContentID)
	cs.hint = HintRequested

	hintType := ClassifyStruggle(t.hintRules, req.StruggleContext)
	h := Hint{
		ID:         uuid.NewString(),
		ContentID:  req.ContentID,
		UserID:     req.UserID,
		Text:       composeHint(t.rng, hintType, req),
		Type:       hintType,
		Difficulty: speed.BaseDifficulty(req.Speed),
		Confidence: hintConfidence(t.rng),
		CreatedAt:  t.now(),
	}

	cs.hint = HintAvailable
	cs.hintID = h.ID

	s := l.session
	s.Hints = appendBounded(s.Hints, h, t.cfg.HistoryLimit)
	s.Metrics.TotalHintsProvided++
	s.Metrics.recordConfidence(h.Confidence)

	t.log.Debug("hint generated", "user_id", req.UserID, "content_id", req.ContentID, "type", string(hintType))
	return &h
}

// UseHint marks an available hint as used and records how effective the
// learner found it (0-1). It returns false if the hint is not the
// available hint for its content item.
func (t *Tutor) UseHint(userID, hintID string, effectiveness float64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, ok := t.learners[userID]
	if !ok {
		return false
	}
	s := l.session
	_, idx, found := lo.FindIndexOf(s.Hints, func(h Hint) bool { return h.ID == hintID })
	if !found {
		return false
	}
	h := &s.Hints[idx]
	cs := l.contentLocked(h.ContentID)
	if cs.hint != HintAvailable || cs.hintID != hintID {
		return false
	}

	eff := lo.Clamp(effectiveness, 0, 1)
	h.Used = true
	h.Effectiveness = &eff
	cs.hint = HintUsed

	m := &s.Metrics
	m.HintsUsed++
	m.HintEffectiveness = (m.HintEffectiveness*float64(m.effectivenessSamples) + eff) / float64(m.effectivenessSamples+1)
	m.effectivenessSamples++
	return true
}

// DismissHint closes the available hint on a content item without using it.
func (t *Tutor) DismissHint(userID, contentID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, ok := t.learners[userID]
	if !ok {
		return false
	}
	cs := l.contentLocked(contentID)
	if cs.hint != HintAvailable {
		return false
	}
	cs.hint = HintDismissed
	return true
}

// GenerateQuestion produces the next question for a content item. It
// returns nil for a request without a user or content id.
func (t *Tutor) GenerateQuestion(req QuestionRequest) *Question {
	if req.UserID == "" || req.ContentID == "" {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	l := t.learnerLocked(req.UserID)
	qType := ChooseQuestionType(req)
	tpl := composeQuestion(t.rng, qType, req)
	q := Question{
		ID:            uuid.NewString(),
		ContentID:     req.ContentID,
		Text:          tpl.text,
		Type:          qType,
		Difficulty:    QuestionDifficulty(req.Mode, req.Progress),
		Options:       tpl.options,
		CorrectAnswer: tpl.answer,
		Explanation:   tpl.explanation,
		FollowUps:     tpl.followUps,
		CreatedAt:     t.now(),
	}

	cs := l.contentLocked(req.ContentID)
	cs.question = QuestionGenerated
	cs.questionID = q.ID

	s := l.session
	s.Questions = appendBounded(s.Questions, q, t.cfg.HistoryLimit)
	s.Metrics.QuestionsGenerated++
	return &q
}

// AnswerQuestion records an answer to the current question on a content
// item. ok is false when questionID is not the current unanswered question.
func (t *Tutor) AnswerQuestion(userID, contentID, questionID, answer string) (correct, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, found := t.learners[userID]
	if !found {
		return false, false
	}
	cs := l.contentLocked(contentID)
	if cs.question != QuestionGenerated || cs.questionID != questionID {
		return false, false
	}
	q, found := lo.Find(l.session.Questions, func(q Question) bool { return q.ID == questionID })
	if !found {
		return false, false
	}

	correct = CheckAnswer(q, answer)
	cs.question = QuestionAnswered

	m := &l.session.Metrics
	m.QuestionsAnswered++
	if correct {
		m.CorrectAnswers++
	}
	return correct, true
}

// GenerateFeedback responds to recent performance. It returns nil for a
// request without a user id.
func (t *Tutor) GenerateFeedback(req FeedbackRequest) *Feedback {
	if req.UserID == "" {
		return nil
	}

	fbType, correct := FeedbackTypeFor(req)
	f := Feedback{
		ID:          uuid.NewString(),
		UserID:      req.UserID,
		ContentID:   req.ContentID,
		Text:        feedbackText[fbType],
		Type:        fbType,
		IsCorrect:   correct,
		Suggestions: append([]string(nil), feedbackSuggestions[fbType]...),
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	f.CreatedAt = t.now()
	s := t.learnerLocked(req.UserID).session
	s.Feedback = appendBounded(s.Feedback, f, t.cfg.HistoryLimit)
	s.Metrics.FeedbackGiven++
	return &f
}

// AnalyzeError classifies a wrong response. It returns nil for a request
// without a user id.
func (t *Tutor) AnalyzeError(req ErrorRequest) *ErrorAnalysis {
	if req.UserID == "" {
		return nil
	}

	errType := ClassifyError(t.classifiers, req)
	notes := errorNotes[errType]
	a := ErrorAnalysis{
		ID:          uuid.NewString(),
		ErrorType:   errType,
		Description: notes.description,
		Remediation: slices.Clone(notes.remediation),
		Confidence:  errorConfidence,
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	a.CreatedAt = t.now()
	s := t.learnerLocked(req.UserID).session
	stored := a
	stored.Remediation = slices.Clone(a.Remediation)
	s.Errors = appendBounded(s.Errors, stored, t.cfg.HistoryLimit)
	s.Metrics.ErrorsAnalyzed++
	s.Metrics.recordConfidence(a.Confidence)
	return &a
}

// AdjustDifficulty shifts the learner's personalised content for a lesson
// by delta (clamped to [-2, 2]) and records the adaptation. It returns
// nil, nil without a user id.
func (t *Tutor) AdjustDifficulty(userID, lessonID string, delta float64, reason string) (*content.Adaptation, error) {
	if userID == "" || lessonID == "" {
		return nil, nil
	}
	if !content.ValidDelta(delta) {
		return nil, fmt.Errorf("adjust difficulty for %s: %w: %v", cache.PersonalizedKey(lessonID, userID), ErrInvalidDelta, delta)
	}

	entry, ok := t.store.Personalized(lessonID, userID)
	if !ok {
		return nil, fmt.Errorf("adjust difficulty for %s: %w", cache.PersonalizedKey(lessonID, userID), cache.ErrNotCached)
	}
	adjusted, ad := content.AdjustDifficulty(entry.Content, entry.Key, delta, reason, t.now())
	if err := t.store.ReplacePersonalized(lessonID, userID, adjusted, ad); err != nil {
		return nil, fmt.Errorf("adjust difficulty for %s: %w", entry.Key, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.learnerLocked(userID).session
	s.Adaptations = appendBounded(s.Adaptations, ad, t.cfg.HistoryLimit)
	s.Metrics.DifficultyAdjustments++

	t.log.Info("difficulty adjusted",
		"user_id", userID,
		"lesson_id", lessonID,
		"before", ad.BeforeState["difficulty"],
		"after", ad.AfterState["difficulty"])
	return &ad, nil
}

// HintState returns the hint lifecycle state for a content item.
func (t *Tutor) HintState(userID, contentID string) HintState {
	t.mu.Lock()
	defer t.mu.Unlock()
	if l, ok := t.learners[userID]; ok {
		if cs, ok := l.content[contentID]; ok {
			return cs.hint
		}
	}
	return HintIdle
}

// QuestionState returns the question lifecycle state for a content item.
func (t *Tutor) QuestionState(userID, contentID string) QuestionState {
	t.mu.Lock()
	defer t.mu.Unlock()
	if l, ok := t.learners[userID]; ok {
		if cs, ok := l.content[contentID]; ok {
			return cs.question
		}
	}
	return QuestionNone
}

// Session returns a copy of the learner's tutoring session.
func (t *Tutor) Session(userID string) (*Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.learners[userID]
	if !ok {
		return nil, false
	}
	return l.session.clone(), true
}

// EndSession discards the learner's tutoring state and returns the final session.
func (t *Tutor) EndSession(userID string) *Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.learners[userID]
	if !ok {
		return nil
	}
	delete(t.learners, userID)
	return l.session
}

func (m *Metrics) recordConfidence(c float64) {
	m.AverageConfidence = (m.AverageConfidence*float64(m.confidenceSamples) + c) / float64(m.confidenceSamples+1)
	m.confidenceSamples++
}

func appendBounded[T any](s []T, v T, limit int) []T {
	s = append(s, v)
	if limit > 0 && len(s) > limit {
		s = append(s[:0:0], s[len(s)-limit:]...)
	}
	return s
}
