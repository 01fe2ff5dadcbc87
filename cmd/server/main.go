package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/p-n-ai/eduassist/internal/agent"
	"github.com/p-n-ai/eduassist/internal/ai"
	"github.com/p-n-ai/eduassist/internal/curriculum"
	"github.com/p-n-ai/eduassist/internal/platform/cache"
	"github.com/p-n-ai/eduassist/internal/platform/config"
	"github.com/p-n-ai/eduassist/internal/platform/database"
	"github.com/p-n-ai/eduassist/internal/platform/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log)
	slog.SetDefault(logger.Logger)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		_ = logger.Close()
		os.Exit(1)
	}

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	err = run(ctx, cfg)
	stop()

	if err != nil {
		slog.Error("server error", "error", err)
		_ = logger.Close()
		os.Exit(1)
	}
	_ = logger.Close()
}

func run(ctx context.Context, cfg *config.Config) error {
	usage := ai.NewUsageStats()
	observers := ai.MultiObserver{ai.LogObserver{}, usage}
	checks := map[string]checkFunc{}

	if cfg.Cache.URL != "" {
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			slog.Warn("cache unavailable, attempt counters stay in memory", "error", err)
		} else {
			defer c.Close()
			recorder := ai.NewAsyncObserver(c.Recorder(), 512)
			defer recorder.Close()
			observers = append(observers, recorder)
			checks["cache"] = c.HealthCheck
		}
	}

	var events agent.EventLogger = agent.NopEventLogger{}
	if cfg.Database.URL != "" {
		db, err := openDatabase(ctx, cfg.Database)
		if err != nil {
			slog.Warn("database unavailable, resolution events are not persisted", "error", err)
		} else {
			defer db.Close()
			async := agent.NewAsyncEventLogger(agent.NewPostgresEventLogger(db.Pool), 256)
			defer async.Close()
			events = async
			checks["database"] = db.HealthCheck
		}
	}

	providers := buildProviders(cfg.AI)
	router := ai.NewRouter(ai.WithObserver(observers))
	for _, p := range providers.chat {
		router.Register(p)
	}
	if !router.HasProvider() {
		slog.Warn("no AI provider configured, answering offline only")
	}

	banks, err := loadBanks(cfg.BanksDir)
	if err != nil {
		return err
	}

	engine := agent.NewEngine(agent.EngineConfig{
		AIRouter: router,
		Quiz: agent.NewQuizResolver(agent.QuizConfig{
			Providers: providers.quiz,
			Banks:     banks,
			Observer:  observers,
			MaxTokens: cfg.AI.MaxTokens,
		}),
		EventLogger: events,
		MaxTokens:   cfg.AI.MaxTokens,
		Temperature: cfg.AI.Temperature,
	})

	s := &server{
		engine:    engine,
		providers: router.Providers,
		usage:     usage,
		checks:    checks,
		now:       time.Now,
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// The full chain can walk several providers with their own timeouts.
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listening: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*database.DB, error) {
	db, err := database.New(ctx, cfg.URL, cfg.MaxConns, cfg.MinConns)
	if err != nil {
		return nil, err
	}
	if cfg.Migrate {
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}

// loadBanks uses the compiled-in banks unless dir is set.
func loadBanks(dir string) (*curriculum.Loader, error) {
	if dir == "" {
		return curriculum.NewLoader()
	}
	l, err := curriculum.NewLoaderFS(os.DirFS(dir))
	if err != nil {
		return nil, err
	}
	if len(l.Banks()) == 0 {
		return nil, fmt.Errorf("no quiz banks found in %s", dir)
	}
	return l, nil
}
