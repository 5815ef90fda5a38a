package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // postgres driver for the seen-set backend
	"github.com/redis/go-redis/v9"

	"github.com/prairielabs/trackwatch/internal/adapters/http/api"
	"github.com/prairielabs/trackwatch/internal/adapters/report"
	"github.com/prairielabs/trackwatch/internal/adapters/seenstore"
	"github.com/prairielabs/trackwatch/internal/adapters/source"
	"github.com/prairielabs/trackwatch/internal/adapters/source/athleticnet"
	"github.com/prairielabs/trackwatch/internal/adapters/source/fixture"
	app "github.com/prairielabs/trackwatch/internal/app"
	"github.com/prairielabs/trackwatch/internal/config"
	"github.com/prairielabs/trackwatch/internal/domain/dedupe"
	"github.com/prairielabs/trackwatch/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 5 * time.Minute // POST /api/v1/run blocks for the whole batch
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	seen, err := buildSeenSet(ctx, cfg)
	if err != nil {
		log.Error(ctx, "seen-set setup failed", logger.Error(err))
		return
	}
	// A failed load aborts startup: running with a wiped seen-set would
	// re-notify every historical result.
	if err := seen.Load(ctx); err != nil {
		log.Error(ctx, "seen-set load failed", logger.Error(err))
		return
	}
	log.Info(ctx, "seen-set loaded",
		logger.String("backend", cfg.StateBackend),
		logger.Int64("size", seen.Size()),
	)

	src, history := buildSource(cfg)

	opts := []app.Option{
		app.WithLogger(log.Named("service")),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithDaysBack(cfg.DaysBack),
		app.WithStaleFlagDowngrade(cfg.DowngradeStalePR),
		app.WithQualifyingSpots(cfg.QualifyingSpots),
	}
	if history != nil {
		opts = append(opts, app.WithHistoryProvider(history))
	}
	if cfg.FeedPath != "" {
		opts = append(opts, app.WithFeedPath(cfg.FeedPath))
	}
	if cfg.CSVPath != "" {
		opts = append(opts, app.WithCSVPath(cfg.CSVPath))
	}
	if cfg.Email.Enabled {
		opts = append(opts, app.WithNotifier(report.NewEmailNotifier(report.EmailConfig{
			Host:     cfg.Email.Host,
			Port:     cfg.Email.Port,
			From:     cfg.Email.From,
			To:       cfg.Email.To,
			Username: cfg.Email.Username,
		})))
	}
	svc := app.New(src, seen, opts...)

	// HTTP mux and routes.
	mux := http.NewServeMux()
	apiServer := api.NewServer(svc)
	apiServer.Register(mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			stop()
		}
	}()

	// Scheduler loop; with a zero interval one run executes and later runs
	// arrive via POST /api/v1/run.
	go svc.Run(ctx, time.Duration(cfg.PollIntervalMin)*time.Minute)

	<-ctx.Done()
	log.Info(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "HTTP shutdown failed", logger.Error(err))
	}

	// Final flush so results classified in the last run stay suppressed on
	// the next start.
	if err := seen.Persist(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "final seen-set persist failed", logger.Error(err))
	}
}

// buildSeenSet selects the seen-set backend from configuration.
func buildSeenSet(ctx context.Context, cfg *config.Config) (dedupe.SeenSet, error) {
	switch cfg.StateBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, err
		}
		return seenstore.NewRedisStore(client), nil
	case "postgres":
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			return nil, err
		}
		store := seenstore.NewPostgresStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return seenstore.NewFileStore(cfg.StatePath), nil
	}
}

// buildSource selects fixture replay or the live site, and returns the
// history provider when the source can serve one.
func buildSource(cfg *config.Config) (source.Provider, source.HistoryProvider) {
	if cfg.FixturePath != "" {
		p, err := fixture.New(cfg.FixturePath)
		if err != nil {
			logger.Get().Error(context.Background(), "fixture load failed", logger.Error(err))
			os.Exit(1)
		}
		return p, p
	}

	roster := make([]source.Athlete, 0, len(cfg.Watched))
	for _, a := range cfg.Watched {
		roster = append(roster, source.Athlete{ID: a.ID, Name: a.Name, Gender: a.Gender})
	}
	var opts []athleticnet.Option
	if cfg.SourceBaseURL != "" {
		opts = append(opts, athleticnet.WithBaseURL(cfg.SourceBaseURL))
	}
	if cfg.SeasonID != 0 {
		opts = append(opts, athleticnet.WithSeasonFilter(cfg.SeasonID))
	}
	client := athleticnet.NewClient(roster, cfg.Sport, opts...)
	return client, client
}
