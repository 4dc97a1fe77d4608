package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"github.com/mind-engage/mocktest/internal/achievements"
	api "github.com/mind-engage/mocktest/internal/api/http"
	"github.com/mind-engage/mocktest/internal/bank"
	"github.com/mind-engage/mocktest/internal/config"
	"github.com/mind-engage/mocktest/internal/db"
	"github.com/mind-engage/mocktest/internal/events"
	"github.com/mind-engage/mocktest/internal/exam"
	"github.com/mind-engage/mocktest/internal/formats"
	_ "github.com/mind-engage/mocktest/internal/formats/hp"
	"github.com/mind-engage/mocktest/internal/metrics"
	"github.com/mind-engage/mocktest/internal/results"
	syncx "github.com/mind-engage/mocktest/internal/sync"
)

func main() {
	cfg := config.Load()
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("examd stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("db open failed: %w", err)
	}
	defer dbh.Close()

	// --- Policy and question bank ---
	pol, prof, err := loadPolicy(cfg)
	if err != nil {
		return err
	}
	src, err := bankSource(cfg, dbh)
	if err != nil {
		return err
	}
	if err := bank.Validate(ctx, src, pol, prof); err != nil {
		return fmt.Errorf("question bank: %w", err)
	}
	var opts []bank.Option
	if samples(pol) {
		seed := cfg.SampleSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		opts = append(opts, bank.WithSampling(seed))
	}
	qb := bank.New(src, pol, opts...)

	// --- Results: SQL, Redis cache, completion events ---
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: cfg.RedisDB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, history cache will fall back to the database", "addr", cfg.RedisAddr, "err", err)
		}
		defer rdb.Close()
	}
	pub, err := events.NewPublisher(cfg.RabbitMQURI, logger)
	if err != nil {
		return err
	}
	defer pub.Close()

	var store results.Store = results.NewCached(results.NewSQLStore(dbh), rdb, cfg.HistoryTTL, logger)
	store = results.NewPublishing(store, pub, logger)

	mgr := exam.NewManager(exam.Deps{
		Bank:           qb,
		Budgets:        pol,
		Results:        store,
		History:        store,
		Earned:         store,
		Sections:       exam.PolicySections(pol),
		Scoring:        formats.Scorer{Key: pol.Scoring.RawToScale},
		Achievements:   achievements.New(),
		Notifier:       events.AbandonNotifier{Log: syncx.NewEventRepo(dbh), Pub: pub},
		Logger:         logger,
		PersistTimeout: cfg.PersistTimeout,
		LockBack:       cfg.LockBack || pol.Navigation.LockBack,
	})

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	api.Mount(r, mgr, store, pol)
	r.Handle("/metrics", metrics.Handler())

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r, ReadHeaderTimeout: 10 * time.Second}

	sig, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info("examd listening", "addr", cfg.HTTPAddr, "mode", cfg.Mode, "profile", pol.Profile)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-sig.Done():
	}

	logger.Info("shutting down", "live_sessions", mgr.Len())
	sctx, scancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer scancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Warn("http shutdown", "err", err)
	}
	mgr.Shutdown(sctx)
	return nil
}

// loadPolicy returns the registered profile's policy, or the YAML file at
// PolicyPath validated against that profile.
func loadPolicy(cfg config.Config) (formats.Policy, formats.Profile, error) {
	prof, ok := formats.Lookup(cfg.PolicyProfile)
	if !ok {
		return formats.Policy{}, nil, fmt.Errorf("unknown policy profile %q", cfg.PolicyProfile)
	}
	pol := prof.Policy()
	if cfg.PolicyPath != "" {
		var err error
		if pol, err = formats.LoadPolicy(cfg.PolicyPath); err != nil {
			return formats.Policy{}, nil, err
		}
	}
	if cfg.QuestionsPerSection > 0 {
		for i := range pol.Sections {
			pol.Sections[i].Questions = cfg.QuestionsPerSection
		}
	}
	return pol, prof, nil
}

// samples reports whether any section asks for a fixed question count,
// either from the policy itself or from QUESTIONS_PER_SECTION.
func samples(pol formats.Policy) bool {
	for _, s := range pol.Sections {
		if s.Questions > 0 {
			return true
		}
	}
	return false
}

func bankSource(cfg config.Config, dbh *sql.DB) (bank.Source, error) {
	switch cfg.BankDriver {
	case "file":
		fs, err := bank.LoadFile(cfg.BankPath)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case "sql":
		return bank.NewSQLSource(dbh), nil
	default:
		return nil, fmt.Errorf("unknown bank driver %q", cfg.BankDriver)
	}
}

func newLogger(level string) *slog.Logger {
	var lv slog.Level
	if err := lv.UnmarshalText([]byte(level)); err != nil {
		lv = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lv}))
}
