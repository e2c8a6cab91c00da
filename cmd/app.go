package cmd

import (
	"fmt"
	"errors"
	"io"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/speedlearn/internal/cache"
	"github.com/abhisek/speedlearn/internal/config"
	"github.com/abhisek/speedlearn/internal/engine"
	"github.com/abhisek/speedlearn/internal/janitor"
	"github.com/abhisek/speedlearn/internal/llm"
	"github.com/abhisek/speedlearn/internal/logger"
	"github.com/abhisek/speedlearn/internal/recommend"
	"github.com/abhisek/speedlearn/internal/remote"
	"github.com/abhisek/speedlearn/internal/session"
	"github.com/abhisek/speedlearn/internal/speed"
	"github.com/abhisek/speedlearn/internal/store"
	"github.com/abhisek/speedlearn/internal/tutor"
	"github.com/abhisek/speedlearn/internal/ui/theme"
)

var errEmptyUser = errors.New("--user must not be empty")

// app holds the wired engine for one command invocation.
type app struct {
	cfg   *config.Config
	log   *logger.Logger
	store *store.Store

	// provider is nil when no LLM provider is configured.
	provider llm.Provider

	catalog   *remote.Catalog
	cache     *cache.Coordinator
	sessions  *session.Manager
	recommend *recommend.Engine
	tutor     *tutor.Tutor
	ctl       *engine.Controller
	janitor   *janitor.Janitor

	// restored is the session count loaded from the latest snapshot.
	restored int

	user  string
	plain bool
	out   io.Writer
}

// newApp loads configuration, opens the store and wires every component.
// now overrides the components' clock; nil uses time.Now.
func newApp(cmd *cobra.Command, now func() time.Time) (*app, error) {
	ctx := cmd.Context()
	user, _ := cmd.Flags().GetString("user")
	if strings.TrimSpace(user) == "" {
		return nil, errEmptyUser
	}
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	dbPath, err := resolveDBPath(cmd, cfg.Store.DBPath)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	if now == nil {
		now = time.Now
	}

	a := &app{cfg: cfg, log: log, store: st, catalog: remote.NewCatalog(), out: cmd.OutOrStdout()}
	a.user = user
	a.plain, _ = cmd.Flags().GetBool("plain")

	if cfg.LLM.Enabled() {
		a.provider, err = llm.NewProvider(ctx, cfg.LLM, st.LLMEventRepo(), log)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("LLM provider: %w", err)
		}
	}

	var source cache.LessonSource = a.catalog
	if cfg.Source == config.SourceLLM {
		source = remote.NewLLMLessonSource(a.provider, a.catalog, cfg.LessonWriter)
	}
	a.cache = cache.NewCoordinator(source, cfg.Cache, log, cache.WithClock(now))
	sessionOpts := []session.Option{session.WithClock(now)}
	if snap, err := st.SnapshotRepo().Latest(ctx); err != nil {
		log.Warn("could not load metrics snapshot", "error", err)
	} else if snap != nil {
		a.restored = snap.Data.Session.TotalSessions
		sessionOpts = append(sessionOpts, session.WithMetrics(snap.Data.Session))
	}
	a.sessions = session.NewManager(st.TelemetryRepo(), cfg.Session, log, sessionOpts...)

	var advisor recommend.SpeedAdvisor = remote.NewMetricsAdvisor(a.sessions, cfg.RulesAdvisor)
	if cfg.Advisor == config.AdvisorLLM {
		advisor = remote.NewLLMSpeedAdvisor(a.provider, a.sessions)
	}
	a.recommend = recommend.NewEngine(advisor, a.cache, cfg.Recommend, log, recommend.WithClock(now))

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	a.tutor = tutor.NewTutor(a.cache, rand.New(rand.NewPCG(seed, seed>>1|1)), cfg.Tutor, log, tutor.WithClock(now))

	a.ctl = engine.New(engine.Deps{
		Cache:     a.cache,
		Sessions:  a.sessions,
		Recommend: a.recommend,
		Tutor:     a.tutor,
	}, log)
	a.janitor = janitor.New(a.cache, a.sessions, st.SnapshotRepo(), cfg.Janitor, log)
	return a, nil
}

// openStore opens only the database, for commands that read stored
// events and do not need the engine.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cmd, cfg.Store.DBPath)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// applySpeed sets the learner's speed from --speed when given.
func (a *app) applySpeed(cmd *cobra.Command) error {
	if !cmd.Flags().Changed("speed") {
		return nil
	}
	s, _ := cmd.Flags().GetInt("speed")
	if !a.ctl.SetSpeed(a.user, speed.Speed(s)) {
		return fmt.Errorf("invalid speed %d (want %d-%d)", s, speed.Min, speed.Max)
	}
	return nil
}

// theme returns the theme for the learner's current speed.
func (a *app) theme() theme.Theme {
	return theme.ForSpeed(a.ctl.Speed(a.user), a.plain)
}

func (a *app) print(s string) {
	fmt.Fprintln(a.out, s)
}

// Close flushes telemetry, records a metrics snapshot when sessions ended
// during the run, and closes the store.
func (a *app) Close() {
	a.sessions.Wait()
	if a.sessions.Metrics().TotalSessions > a.restored {
		if r := a.janitor.RunOnce(); r.SnapshotErr != nil {
			a.log.Warn("final snapshot failed", "error", r.SnapshotErr)
		}
	}
	a.store.Close()
	a.log.Sync()
}
