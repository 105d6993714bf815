package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/app"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/checkpoint"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/config"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/grading"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/history"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/llm"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/logger"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/passage"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/questiongen"
	sessionscreen "github.com/Oiubrab/edaccelerator-learning-assessment/internal/screens/session"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/store"
)

type runOptions struct {
	startReading bool
	skipSplash   bool
}

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command, opts runOptions) error {
	ctx := commandContext(cmd)
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	deps, err := e.sessionDeps(ctx)
	if err != nil {
		return err
	}

	e.log.Info("starting", "passage", deps.Passage.ID, "store", e.cfg.Store.Backend)
	return app.Run(app.Options{
		Deps:         deps,
		SkipSplash:   opts.skipSplash,
		StartReading: opts.startReading,
		Log:          e.log,
	})
}

// env is the opened configuration, logger and storage shared by the
// subcommands.
type env struct {
	cfg *config.Config
	log *logger.Logger
	kv  store.KV
	// events is nil with the memory backend.
	events  store.EventRepo
	closers []func() error
}

func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logPath, err := cfg.LogPath()
	if err != nil {
		return nil, fmt.Errorf("resolve log path: %w", err)
	}
	log, err := logger.New(cfg.Log.Mode, logPath)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	e := &env{cfg: cfg, log: log}
	if err := e.openStore(commandContext(cmd), cmd); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

// openStore connects the configured KV backend. The redis backend still
// keeps the LLM event log in the local SQLite file.
func (e *env) openStore(ctx context.Context, cmd *cobra.Command) error {
	if e.cfg.Store.Backend == "memory" {
		e.kv = store.NewMemory()
		return nil
	}

	dbPath, err := resolveDBPath(cmd, e.cfg)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	e.closers = append(e.closers, st.Close)
	e.kv = st.KV()
	e.events = st.EventRepo()

	if e.cfg.Store.Backend == "redis" {
		r := e.cfg.Store.Redis
		rkv, err := store.NewRedis(ctx, store.RedisOptions{
			Addr:     r.Addr,
			Password: r.Password,
			DB:       r.DB,
			Prefix:   r.Prefix,
		})
		if err != nil {
			return fmt.Errorf("open redis store: %w", err)
		}
		e.closers = append(e.closers, rkv.Close)
		e.kv = rkv
	}
	return nil
}

// Close releases the stores in reverse order and flushes the log.
func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			e.log.Warn("close store", "error", err)
		}
	}
	e.log.Sync()
}

func (e *env) loadPassage() (*passage.Passage, error) {
	if e.cfg.Passage.Path == "" {
		return passage.Default()
	}
	p, err := passage.Load(e.cfg.Passage.Path)
	if err != nil {
		return nil, fmt.Errorf("load passage %s: %w", e.cfg.Passage.Path, err)
	}
	return p, nil
}

func (e *env) matcher() *grading.Matcher {
	return grading.NewMatcher(grading.WithMinTermLength(e.cfg.Grading.MinTermLength))
}

func (e *env) checkpoints() *checkpoint.Store { return checkpoint.New(e.kv, e.log) }

func (e *env) history() *history.Store { return history.New(e.kv, e.log) }

// questionCache is the set cache without a generator behind it, for
// commands that only inspect or drop cached sets.
func (e *env) questionCache() *questiongen.CachedGenerator {
	return questiongen.NewCached(nil, e.kv, e.log)
}

// sessionDeps wires the collaborators of a reading session.
func (e *env) sessionDeps(ctx context.Context) (sessionscreen.Deps, error) {
	p, err := e.loadPassage()
	if err != nil {
		return sessionscreen.Deps{}, err
	}

	gen, grader, err := e.engines(ctx, p)
	if err != nil {
		return sessionscreen.Deps{}, err
	}

	return sessionscreen.Deps{
		Passage:     p,
		Questions:   questiongen.NewCached(gen, e.kv, e.log),
		Grader:      grader,
		Checkpoints: e.checkpoints(),
		History:     e.history(),
		Log:         e.log,
	}, nil
}

// engines picks the question generator and grader. Without a usable LLM
// provider the built-in question bank and the local matcher are used.
func (e *env) engines(ctx context.Context, p *passage.Passage) (questiongen.Generator, grading.Grader, error) {
	llmCfg := e.cfg.LLM
	if e.cfg.Grading.Offline || !llmCfg.Discover() {
		if !e.cfg.Grading.Offline {
			fmt.Fprintln(os.Stderr, "LLM provider not configured: using built-in questions and local grading.")
		}
		set, err := questiongen.Bank(p.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("offline mode: %w", err)
		}
		e.log.Info("offline mode", "passage", p.ID, "questions", set.Len())
		return &questiongen.StaticGenerator{Set: set}, grading.NewLocalGrader(e.matcher()), nil
	}

	provider, err := llm.NewProvider(ctx, llmCfg, e.events, e.log)
	if err != nil {
		return nil, nil, fmt.Errorf("build LLM provider: %w", err)
	}
	e.log.Info("llm provider ready", "provider", llmCfg.Provider, "model", provider.ModelID())

	genCfg := questiongen.DefaultConfig()
	genCfg.Timeout = llmCfg.Timeout
	grader := grading.NewCoordinator(grading.NewLLMGrader(provider),
		grading.WithPolicy(e.cfg.GradingPolicy()),
		grading.WithTimeout(e.cfg.Grading.Timeout),
		grading.WithMatcher(e.matcher()),
		grading.WithLogger(e.log),
	)
	return questiongen.New(provider, genCfg), grader, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
