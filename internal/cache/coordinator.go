package cache

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/abhisek/speedlearn/internal/content"
	"github.com/abhisek/speedlearn/internal/logger"
	"github.com/abhisek/speedlearn/internal/speed"
)

type table int

const (
	tableLessons table = iota
	tablePersonalized
)

// Coordinator resolves content requests to fresh cached entries or new
// generations. Concurrent requests for the same key share one generation.
type Coordinator struct {
	source LessonSource
	cfg    Config
	log    *logger.Logger
	now    func() time.Time

	flight singleflight.Group

	mu           sync.Mutex
	lessons      map[string]*Entry
	personalized map[string]*Entry
	queue        []QueueItem
	stats        Stats

	// purges records invalidations made while generations are in flight.
	// A generation that started before a matching purge is not cached.
	purgeSeq uint64
	purges   []purge
	inflight int
}

type purge struct {
	seq    uint64
	table  table
	filter Filter
	key    string
}

func (p purge) covers(t table, e *Entry) bool {
	if p.table != t {
		return false
	}
	if t == tablePersonalized {
		return p.key == e.Key
	}
	return p.filter.matches(e)
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithClock overrides the clock used for TTL checks and timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// NewCoordinator creates a coordinator backed by source.
func NewCoordinator(source LessonSource, cfg Config, log *logger.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		source:       source,
		cfg:          cfg,
		log:          log.With("component", "cache"),
		now:          time.Now,
		lessons:      make(map[string]*Entry),
		personalized: make(map[string]*Entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type genRequest struct {
	table    table
	key      string
	lessonID string
	userID   string
	speed    speed.Speed
	profile  *content.PersonalizationProfile
	priority int
}

func (r genRequest) flightKey() string {
	if r.table == tablePersonalized {
		return "ai:" + r.key
	}
	return "lesson:" + r.key
}

// RequestContent returns the lesson-cache entry for (lesson, user, speed),
// generating it when missing or older than the lesson TTL. Cancelling ctx
// abandons the wait; a generation already shared with other callers keeps
// running and is cached.
func (c *Coordinator) RequestContent(ctx context.Context, lessonID, userID string, s speed.Speed, profile *content.PersonalizationProfile) (Result, error) {
	if err := validate(lessonID, userID, s); err != nil {
		return Result{}, err
	}
	return c.resolve(ctx, genRequest{
		table:    tableLessons,
		key:      LessonKey(lessonID, userID, s),
		lessonID: lessonID,
		userID:   userID,
		speed:    s,
		profile:  profile,
		priority: c.cfg.InteractivePriority,
	})
}

// RequestPersonalized returns the AI-content cache entry for (lesson, user),
// generating it at speed s with the given profile when missing or stale.
func (c *Coordinator) RequestPersonalized(ctx context.Context, lessonID, userID string, s speed.Speed, profile *content.PersonalizationProfile) (Result, error) {
	if err := validate(lessonID, userID, s); err != nil {
		return Result{}, err
	}
	return c.resolve(ctx, genRequest{
		table:    tablePersonalized,
		key:      PersonalizedKey(lessonID, userID),
		lessonID: lessonID,
		userID:   userID,
		speed:    s,
		profile:  profile,
		priority: c.cfg.InteractivePriority,
	})
}

// Prefetch warms the lesson cache in the background at the given queue
// priority. The returned channel receives the outcome and is then closed.
func (c *Coordinator) Prefetch(ctx context.Context, lessonID, userID string, s speed.Speed, profile *content.PersonalizationProfile, priority int) <-chan error {
	done := make(chan error, 1)
	if err := validate(lessonID, userID, s); err != nil {
		done <- err
		close(done)
		return done
	}
	req := genRequest{
		table:    tableLessons,
		key:      LessonKey(lessonID, userID, s),
		lessonID: lessonID,
		userID:   userID,
		speed:    s,
		profile:  profile,
		priority: priority,
	}
	go func() {
		defer close(done)
		_, err := c.resolve(context.WithoutCancel(ctx), req)
		if err != nil {
			c.log.Warn("prefetch failed", "key", req.key, "error", err)
		}
		done <- err
	}()
	return done
}

func (c *Coordinator) resolve(ctx context.Context, req genRequest) (Result, error) {
	if e, ok := c.lookup(req.table, req.key, true); ok {
		return Result{Entry: e, FromCache: true}, nil
	}

	ch := c.flight.DoChan(req.flightKey(), func() (any, error) {
		gctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.GenerationTimeout)
		defer cancel()
		return c.generate(gctx, req)
	})

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Result{}, res.Err
		}
		return Result{Entry: res.Val.(*Entry).clone()}, nil
	}
}

func (c *Coordinator) generate(ctx context.Context, req genRequest) (*Entry, error) {
	startedAt := c.now()
	seq := c.begin()
	defer c.end()
	c.enqueue(QueueItem{
		Key:         req.flightKey(),
		LessonID:    req.lessonID,
		UserID:      req.userID,
		Priority:    req.priority,
		RequestedAt: startedAt,
	})
	defer c.dequeue(req.flightKey())

	lesson, err := c.source.GetAdaptiveLesson(ctx, req.lessonID, req.userID, req.speed)
	if err != nil {
		return nil, c.fail(req.key, err)
	}
	if lesson == nil {
		return nil, c.fail(req.key, errors.New("lesson source returned no lesson"))
	}

	src := lesson.Source
	if src.LessonID == "" {
		src.LessonID = req.lessonID
	}
	g, err := content.Generate(src, req.speed, req.profile, startedAt)
	if err != nil {
		return nil, c.fail(req.key, err)
	}

	ui := speed.MustLookup(req.speed).UI
	if lesson.UIConfig != nil {
		ui = *lesson.UIConfig
	}
	ui = accessibleUI(ui, req.profile)

	trackingID := lesson.TrackingID
	if trackingID == "" {
		trackingID = uuid.NewString()
	}

	entry := &Entry{
		Key:                  req.key,
		LessonID:             req.lessonID,
		UserID:               req.userID,
		Speed:                req.speed,
		Content:              g.Payload,
		UIConfig:             ui,
		DifficultyLevel:      g.DifficultyLevel,
		PersonalizationLevel: g.PersonalizationLevel,
		GeneratedAt:          c.now(),
		TrackingID:           trackingID,
		Adaptations:          g.Adaptations,
	}
	return c.store(req.table, entry, startedAt, seq), nil
}

// begin marks a generation as in flight and returns the purge sequence it
// started under.
func (c *Coordinator) begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight++
	return c.purgeSeq
}

func (c *Coordinator) end() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight--
	if c.inflight == 0 {
		c.purges = nil
	}
}

// recordPurge must be called with c.mu held.
func (c *Coordinator) recordPurge(p purge) {
	if c.inflight == 0 {
		return
	}
	c.purgeSeq++
	p.seq = c.purgeSeq
	c.purges = append(c.purges, p)
}

// store writes entry unless an entry generated after startedAt is already
// present, in which case the newer one is kept and returned. An entry whose
// generation started before a matching purge is returned but not cached.
func (c *Coordinator) store(t table, entry *Entry, startedAt time.Time, seq uint64) *Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, p := range c.purges {
		if p.seq > seq && p.covers(t, entry) {
			c.log.Debug("discarding generation started before purge", "key", entry.Key)
			return entry
		}
	}
	m := c.tableFor(t)
	if existing, ok := m[entry.Key]; ok && existing.GeneratedAt.After(startedAt) {
		c.log.Debug("discarding superseded generation", "key", entry.Key)
		return existing
	}
	m[entry.Key] = entry
	c.stats.Generations++
	c.log.Debug("content generated", "key", entry.Key, "difficulty_level", entry.DifficultyLevel)
	return entry
}

func (c *Coordinator) fail(key string, err error) error {
	c.mu.Lock()
	c.stats.Failures++
	c.mu.Unlock()
	c.log.Warn("content generation failed", "key", key, "error", err)
	return &GenerationError{Key: key, Err: err}
}

func (c *Coordinator) lookup(t table, key string, count bool) (*Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.tableFor(t)[key]
	if ok && c.now().Sub(e.GeneratedAt) < c.ttl(t) {
		if count {
			c.stats.Hits++
		}
		return e.clone(), true
	}
	if count {
		c.stats.Misses++
	}
	return nil, false
}

// Personalized returns the fresh AI-content entry for (lesson, user).
func (c *Coordinator) Personalized(lessonID, userID string) (*Entry, bool) {
	return c.lookup(tablePersonalized, PersonalizedKey(lessonID, userID), false)
}

// ReplacePersonalized swaps the payload of a fresh AI-content entry and
// records the adaptation that produced it. GeneratedAt is left unchanged.
func (c *Coordinator) ReplacePersonalized(lessonID, userID string, p content.Payload, ad content.Adaptation) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := PersonalizedKey(lessonID, userID)
	e, ok := c.personalized[key]
	if !ok || c.now().Sub(e.GeneratedAt) >= c.cfg.AIContentTTL {
		return ErrNotCached
	}
	updated := e.clone()
	updated.Content = p.Clone()
	updated.DifficultyLevel = content.Level(p.Difficulty)
	updated.Adaptations = append(updated.Adaptations, ad)
	c.personalized[key] = updated
	return nil
}

// RecordEffectiveness stores an effectiveness score on a lesson-cache entry.
// It reports whether the entry existed.
func (c *Coordinator) RecordEffectiveness(lessonID, userID string, s speed.Speed, score float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lessons[LessonKey(lessonID, userID, s)]
	if !ok {
		return false
	}
	e.Effectiveness = &score
	return true
}

// Invalidate removes lesson-cache entries matching f and returns how many
// were removed. An empty filter clears the whole lesson cache.
func (c *Coordinator) Invalidate(f Filter) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.recordPurge(purge{table: tableLessons, filter: f})
	if f == (Filter{}) {
		n := len(c.lessons)
		c.lessons = make(map[string]*Entry)
		c.log.Info("lesson cache cleared", "removed", n)
		return n
	}
	n := 0
	for k, e := range c.lessons {
		if f.matches(e) {
			delete(c.lessons, k)
			n++
		}
	}
	c.log.Debug("lesson cache invalidated", "lesson_id", f.LessonID, "speed", int(f.Speed), "removed", n)
	return n
}

// InvalidatePersonalized drops the AI-content entry for (lesson, user).
func (c *Coordinator) InvalidatePersonalized(lessonID, userID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := PersonalizedKey(lessonID, userID)
	c.recordPurge(purge{table: tablePersonalized, key: key})
	_, ok := c.personalized[key]
	delete(c.personalized, key)
	return ok
}

// Sweep evicts stale entries from both caches and returns how many were removed.
func (c *Coordinator) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	n := 0
	for k, e := range c.lessons {
		if now.Sub(e.GeneratedAt) >= c.cfg.LessonTTL {
			delete(c.lessons, k)
			n++
		}
	}
	for k, e := range c.personalized {
		if now.Sub(e.GeneratedAt) >= c.cfg.AIContentTTL {
			delete(c.personalized, k)
			n++
		}
	}
	return n
}

// Enqueue adds an item to the generation queue and keeps the queue sorted
// by priority, highest first. Items with equal priority keep arrival order.
func (c *Coordinator) Enqueue(lessonID, userID string, priority int) QueueItem {
	item := QueueItem{
		Key:         "manual:" + PersonalizedKey(lessonID, userID),
		LessonID:    lessonID,
		UserID:      userID,
		Priority:    priority,
		RequestedAt: c.now(),
	}
	c.enqueue(item)
	return item
}

// Complete removes the first queued item for (lesson, user) that was added
// with Enqueue. It reports whether an item was removed.
func (c *Coordinator) Complete(lessonID, userID string) bool {
	return c.dequeue("manual:" + PersonalizedKey(lessonID, userID))
}

func (c *Coordinator) enqueue(item QueueItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue = append(c.queue, item)
	slices.SortStableFunc(c.queue, func(a, b QueueItem) int {
		return cmp.Compare(b.Priority, a.Priority)
	})
}

func (c *Coordinator) dequeue(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := slices.IndexFunc(c.queue, func(q QueueItem) bool { return q.Key == key })
	if i < 0 {
		return false
	}
	c.queue = slices.Delete(c.queue, i, i+1)
	return true
}

// Queue returns a snapshot of the generation queue.
func (c *Coordinator) Queue() []QueueItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.queue)
}

// Stats returns a snapshot of the coordinator counters.
func (c *Coordinator) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Lessons = len(c.lessons)
	s.Personalized = len(c.personalized)
	s.Queued = len(c.queue)
	return s
}

func (c *Coordinator) tableFor(t table) map[string]*Entry {
	if t == tablePersonalized {
		return c.personalized
	}
	return c.lessons
}

func (c *Coordinator) ttl(t table) time.Duration {
	if t == tablePersonalized {
		return c.cfg.AIContentTTL
	}
	return c.cfg.LessonTTL
}

func validate(lessonID, userID string, s speed.Speed) error {
	if lessonID == "" || userID == "" || !speed.Valid(s) {
		return ErrInvalidRequest
	}
	return nil
}

// accessibleUI adjusts UI knobs for profile accessibility needs. Needs are
// applied in order; a later need may override an earlier layout.
func accessibleUI(ui speed.UIConfig, profile *content.PersonalizationProfile) speed.UIConfig {
	if profile == nil {
		return ui
	}
	for _, need := range profile.AccessibilityNeeds {
		switch need {
		case "low-vision":
			ui.FontSize = "large"
			ui.Layout = "spacious"
		case "motion-sensitivity":
			ui.Animations = "slow"
			ui.Colors = "calming"
		case "attention":
			ui.Layout = "focused"
			ui.Colors = "calming"
		case "dyslexia":
			ui.Layout = "spacious"
			ui.FontSize = "large"
		}
	}
	return ui
}
