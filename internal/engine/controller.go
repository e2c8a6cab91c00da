// Package engine ties the content cache, session manager, recommendation
// engine and tutor together behind one Controller that renderers drive.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/samber/lo"

	"github.com/abhisek/speedlearn/internal/cache"
	"github.com/abhisek/speedlearn/internal/content"
	"github.com/abhisek/speedlearn/internal/logger"
	"github.com/abhisek/speedlearn/internal/recommend"
	"github.com/abhisek/speedlearn/internal/session"
	"github.com/abhisek/speedlearn/internal/speed"
	"github.com/abhisek/speedlearn/internal/tutor"
)

// ErrSuperseded is recorded when a content request finishes after a newer
// request for the same user has already been applied.
var ErrSuperseded = errors.New("content request superseded")

// Signal values read from Interaction.Data.
const (
	SignalKey        = "signal"
	SignalStruggle   = "struggle"
	SignalContextKey = "context"
)

// Deps are the components a Controller drives.
type Deps struct {
	Cache     *cache.Coordinator
	Sessions  *session.Manager
	Recommend *recommend.Engine
	Tutor     *tutor.Tutor
}

// State is a snapshot of everything a renderer shows for one user.
type State struct {
	UserID  string
	Speed   speed.Speed
	Profile *content.PersonalizationProfile

	// LessonID and Content describe the lesson currently on screen.
	LessonID  string
	Content   *cache.Entry
	FromCache bool

	Session        *session.LearningSession
	Recommendation recommend.State
	Hint           *tutor.Hint
	Question       *tutor.Question

	ContentError        error
	RecommendationError error
	TutorError          error
}

type userState struct {
	speed   speed.Speed
	profile *content.PersonalizationProfile

	lessonID  string
	entry     *cache.Entry
	fromCache bool

	// seq orders content requests; only the newest may replace entry.
	seq uint64

	hint     *tutor.Hint
	question *tutor.Question

	contentErr error
	recErr     error
	tutorErr   error
}

// Controller owns per-user speed, profile and view state. Component calls
// run without holding the controller lock; their results are applied
// under it.
type Controller struct {
	cache     *cache.Coordinator
	sessions  *session.Manager
	recommend *recommend.Engine
	tutor     *tutor.Tutor
	log       *logger.Logger

	mu    sync.Mutex
	users map[string]*userState
}

// New creates a Controller over the given components.
func New(deps Deps, log *logger.Logger) *Controller {
	return &Controller{
		cache:     deps.Cache,
		sessions:  deps.Sessions,
		recommend: deps.Recommend,
		tutor:     deps.Tutor,
		log:       log.With("component", "engine"),
		users:     make(map[string]*userState),
	}
}

func (c *Controller) userLocked(userID string) *userState {
	u, ok := c.users[userID]
	if !ok {
		u = &userState{speed: speed.Default}
		c.users[userID] = u
	}
	return u
}

// apply runs fn against the user's state under the controller lock.
func (c *Controller) apply(userID string, fn func(u *userState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.userLocked(userID))
}

// read returns the user's speed and profile.
func (c *Controller) read(userID string) (speed.Speed, *content.PersonalizationProfile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	u := c.userLocked(userID)
	return u.speed, u.profile
}

// SetSpeed changes the user's learning speed. It returns false for an
// unknown user id or speed.
func (c *Controller) SetSpeed(userID string, s speed.Speed) bool {
	if userID == "" || !speed.Valid(s) {
		return false
	}
	c.apply(userID, func(u *userState) { u.speed = s })
	return true
}

// Speed returns the user's learning speed.
func (c *Controller) Speed(userID string) speed.Speed {
	s, _ := c.read(userID)
	return s
}

// SetProfile stores the user's personalization profile. A nil profile
// clears it.
func (c *Controller) SetProfile(userID string, p *content.PersonalizationProfile) bool {
	if userID == "" {
		return false
	}
	if p != nil {
		cp := *p
		cp.UserID = userID
		p = &cp
	}
	c.apply(userID, func(u *userState) { u.profile = p })
	return true
}

// RequestContent loads a lesson at the user's speed and makes it the
// lesson on screen. On failure the previous content stays and the error is
// kept in State.ContentError until the next successful request.
func (c *Controller) RequestContent(ctx context.Context, userID, lessonID string) (cache.Result, error) {
	return c.requestContent(ctx, userID, lessonID, c.cache.RequestContent)
}

// RequestPersonalized is RequestContent against the personalised-content
// cache, whose entries difficulty adjustments act on.
func (c *Controller) RequestPersonalized(ctx context.Context, userID, lessonID string) (cache.Result, error) {
	return c.requestContent(ctx, userID, lessonID, c.cache.RequestPersonalized)
}

type fetchFunc func(ctx context.Context, lessonID, userID string, s speed.Speed, profile *content.PersonalizationProfile) (cache.Result, error)

func (c *Controller) requestContent(ctx context.Context, userID, lessonID string, fetch fetchFunc) (cache.Result, error) {
	if userID == "" || lessonID == "" {
		return cache.Result{}, nil
	}

	var (
		seq     uint64
		s       speed.Speed
		profile *content.PersonalizationProfile
	)
	c.apply(userID, func(u *userState) {
		u.seq++
		seq = u.seq
		s, profile = u.speed, u.profile
	})

	res, err := fetch(ctx, lessonID, userID, s, profile)

	c.mu.Lock()
	defer c.mu.Unlock()
	u := c.userLocked(userID)
	if u.seq != seq {
		c.log.Debug("dropping superseded content", "user_id", userID, "lesson_id", lessonID)
		if err != nil {
			return res, err
		}
		return res, ErrSuperseded
	}
	if err != nil {
		u.contentErr = err
		return res, err
	}
	u.contentErr = nil
	u.lessonID = lessonID
	u.entry = res.Entry
	u.fromCache = res.FromCache
	return res, nil
}

// StartSession opens a learning session for the lesson.
func (c *Controller) StartSession(userID, lessonID string) *session.LearningSession {
	return c.sessions.StartSession(userID, lessonID)
}

// AddInteraction records an interaction in the user's active session. A
// skip, or a struggle signal in Data, also asks the tutor for a hint using
// Data["context"] as the struggle context. Interactions the session
// manager rejects are returned as errors and request no hint.
func (c *Controller) AddInteraction(ix session.Interaction) error {
	if err := c.sessions.AddInteraction(ix); err != nil {
		return err
	}
	if !struggling(ix) {
		return nil
	}

	lessonID := ix.LessonID
	if lessonID == "" {
		if s, ok := c.sessions.Active(ix.UserID); ok {
			lessonID = s.LessonID
		}
	}
	struggle, _ := ix.Data[SignalContextKey].(string)
	c.GenerateHint(tutor.HintRequest{
		ContentID:       lessonID,
		UserID:          ix.UserID,
		StruggleContext: struggle,
	})
	return nil
}

func struggling(ix session.Interaction) bool {
	if ix.Type == session.InteractionSkip {
		return true
	}
	sig, _ := ix.Data[SignalKey].(string)
	return sig == SignalStruggle
}

// EndSession closes the user's active session.
func (c *Controller) EndSession(userID string, completed bool) *session.LearningSession {
	return c.sessions.EndSession(userID, completed)
}

// RequestRecommendation asks for a speed suggestion against the user's
// current speed. A throttled request returns nil, nil.
func (c *Controller) RequestRecommendation(ctx context.Context, userID string) (*recommend.Recommendation, error) {
	if userID == "" {
		return nil, nil
	}
	s, _ := c.read(userID)
	rec, err := c.recommend.RequestRecommendation(ctx, userID, s)
	c.apply(userID, func(u *userState) {
		if err != nil {
			u.recErr = err
			return
		}
		if rec != nil {
			u.recErr = nil
		}
	})
	return rec, err
}

// AcceptRecommendation switches the user to newSpeed, or to the newest
// suggestion when newSpeed is zero.
func (c *Controller) AcceptRecommendation(userID string, newSpeed speed.Speed) bool {
	if userID == "" {
		return false
	}
	if newSpeed == 0 {
		latest, ok := c.recommend.State(userID).Latest()
		if !ok {
			return false
		}
		newSpeed = latest.SuggestedSpeed
	}
	if _, ok := c.recommend.Accept(userID, newSpeed); !ok {
		return false
	}
	c.apply(userID, func(u *userState) { u.speed = newSpeed })
	return true
}

// Dismiss hides the user's speed suggestion.
func (c *Controller) Dismiss(userID string) {
	c.recommend.Dismiss(userID)
}

// GenerateHint asks the tutor for a hint. Speed defaults to the user's
// speed and PreviousHints to the hints already given for the content.
func (c *Controller) GenerateHint(req tutor.HintRequest) *tutor.Hint {
	if req.UserID == "" || req.ContentID == "" {
		return nil
	}
	if req.Speed == 0 {
		req.Speed, _ = c.read(req.UserID)
	}
	if req.PreviousHints == nil {
		req.PreviousHints = c.previousHints(req.UserID, req.ContentID)
	}

	h := c.tutor.GenerateHint(req)
	if h != nil {
		c.apply(req.UserID, func(u *userState) { u.hint = h })
	}
	return h
}

func (c *Controller) previousHints(userID, contentID string) []string {
	ts, ok := c.tutor.Session(userID)
	if !ok {
		return nil
	}
	return lo.FilterMap(ts.Hints, func(h tutor.Hint, _ int) (string, bool) {
		return h.Text, h.ContentID == contentID
	})
}

// UseHint marks the user's available hint as used.
func (c *Controller) UseHint(userID, hintID string, effectiveness float64) bool {
	return c.tutor.UseHint(userID, hintID, effectiveness)
}

// DismissHint dismisses the available hint for a content item.
func (c *Controller) DismissHint(userID, contentID string) bool {
	ok := c.tutor.DismissHint(userID, contentID)
	if ok {
		c.apply(userID, func(u *userState) {
			if u.hint != nil && u.hint.ContentID == contentID {
				u.hint = nil
			}
		})
	}
	return ok
}

// GenerateQuestion asks the tutor for the next question. Speed defaults to
// the user's speed.
func (c *Controller) GenerateQuestion(req tutor.QuestionRequest) *tutor.Question {
	if req.UserID == "" || req.ContentID == "" {
		return nil
	}
	if req.Speed == 0 {
		req.Speed, _ = c.read(req.UserID)
	}
	q := c.tutor.GenerateQuestion(req)
	if q != nil {
		c.apply(req.UserID, func(u *userState) { u.question = q })
	}
	return q
}

// AnswerQuestion checks an answer to the current question.
func (c *Controller) AnswerQuestion(userID, contentID, questionID, answer string) (correct, ok bool) {
	return c.tutor.AnswerQuestion(userID, contentID, questionID, answer)
}

// GenerateFeedback asks the tutor for feedback on recent performance.
func (c *Controller) GenerateFeedback(req tutor.FeedbackRequest) *tutor.Feedback {
	return c.tutor.GenerateFeedback(req)
}

// AnalyzeError asks the tutor to classify a wrong response.
func (c *Controller) AnalyzeError(req tutor.ErrorRequest) *tutor.ErrorAnalysis {
	return c.tutor.AnalyzeError(req)
}

// AdjustDifficulty shifts the user's personalised content for a lesson. A
// failure is kept in State.TutorError and leaves the content unchanged.
func (c *Controller) AdjustDifficulty(userID, lessonID string, delta float64, reason string) (*content.Adaptation, error) {
	if userID == "" || lessonID == "" {
		return nil, nil
	}
	ad, err := c.tutor.AdjustDifficulty(userID, lessonID, delta, reason)
	if err != nil {
		err = fmt.Errorf("adjust difficulty: %w", err)
	}
	c.apply(userID, func(u *userState) {
		u.tutorErr = err
		if err != nil || u.lessonID != lessonID {
			return
		}
		if e, ok := c.cache.Personalized(lessonID, userID); ok {
			u.entry = e
		}
	})
	return ad, err
}

// State returns a snapshot of the user's view state.
func (c *Controller) State(userID string) State {
	c.mu.Lock()
	u := c.userLocked(userID)
	st := State{
		UserID:              userID,
		Speed:               u.speed,
		Profile:             u.profile,
		LessonID:            u.lessonID,
		Content:             u.entry,
		FromCache:           u.fromCache,
		Hint:                u.hint,
		Question:            u.question,
		ContentError:        u.contentErr,
		RecommendationError: u.recErr,
		TutorError:          u.tutorErr,
	}
	c.mu.Unlock()

	if s, ok := c.sessions.Active(userID); ok {
		st.Session = s
	}
	st.Recommendation = c.recommend.State(userID)
	return st
}
