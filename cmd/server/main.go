package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/yourname/leettrack/internal"
	"github.com/yourname/leettrack/internal/analytics"
	api "github.com/yourname/leettrack/internal/api"
	"github.com/yourname/leettrack/internal/auth"
	"github.com/yourname/leettrack/internal/clock"
	"github.com/yourname/leettrack/internal/config"
	"github.com/yourname/leettrack/internal/notify"
	"github.com/yourname/leettrack/internal/service"
	"github.com/yourname/leettrack/internal/storage"
	"github.com/yourname/leettrack/internal/upload"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "leettrack",
		Short:        "Track coding practice, goals and streaks",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newStatsCmd(), newMilestonesCmd())
	return root
}

// env holds what every command needs.
type env struct {
	cfg    *config.Config
	logger internal.Logger
	store  storage.Store
	clock  clock.Clock
}

func setup(ctx context.Context) (*env, error) {
	cfg := config.Load()
	logger, err := internal.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	store, err := storage.NewStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	return &env{cfg: cfg, logger: logger, store: store, clock: clock.System{Loc: loc}}, nil
}

func (e *env) close() {
	if err := e.store.Close(); err != nil {
		e.logger.Errorf("failed to close storage: %v", err)
	}
	_ = e.logger.Sync()
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the milestone watcher",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			e, err := setup(ctx)
			if err != nil {
				return err
			}
			defer e.close()
			return serve(ctx, e)
		},
	}
}

func serve(ctx context.Context, e *env) error {
	cfg, logger := e.cfg, e.logger

	catalog, err := analytics.LoadCatalog(cfg.PatternCatalog)
	if err != nil {
		return err
	}
	uploads, err := upload.NewStore(cfg.UploadDir, logger)
	if err != nil {
		return err
	}
	mailer, err := notify.New(cfg, logger)
	if err != nil {
		return err
	}
	if _, err := service.EnsureUser(ctx, e.store, cfg.DefaultUserID, cfg.DefaultDailyGoal, e.clock.Now()); err != nil {
		return fmt.Errorf("seed default user: %w", err)
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	deps := &api.Deps{
		Log:         logger,
		Records:     e.store,
		Mailer:      mailer,
		Screenshots: uploads,
		Now:         e.clock,
		Patterns:    catalog,
		DailyGoal:   cfg.DefaultDailyGoal,
	}
	router := api.NewRouter(deps, auth.NewHeaderProvider(cfg.DefaultUserID, logger), cfg.CORSOrigins)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	watcher := service.NewWatcher(e.store, mailer, e.clock, cfg.MilestoneInterval, cfg.DefaultDailyGoal, logger)
	watchDone := make(chan struct{})
	go func() {
		defer close(watchDone)
		if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Errorf("milestone watcher stopped: %v", err)
		}
	}()

	serveErr := make(chan error, 1)
	go func() {
		logger.Infof("Server running on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("http shutdown: %v", err)
	}
	<-watchDone
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newStatsCmd() *cobra.Command {
	var userID int64
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print a user's stats and pattern mastery as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := setup(ctx)
			if err != nil {
				return err
			}
			defer e.close()
			if userID == 0 {
				userID = e.cfg.DefaultUserID
			}

			catalog, err := analytics.LoadCatalog(e.cfg.PatternCatalog)
			if err != nil {
				return err
			}
			stats, err := service.CalculateUserStats(ctx, e.store, userID, e.clock.Now())
			if err != nil {
				return err
			}
			mastery, err := service.CalculatePatternMastery(ctx, e.store, userID, catalog)
			if err != nil {
				return err
			}
			goals, err := service.ListGoalProgress(ctx, e.store, userID, e.clock.Now())
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{"stats": stats, "mastery": mastery, "goals": goals})
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "user id (defaults to DEFAULT_USER_ID)")
	return cmd
}

func newMilestonesCmd() *cobra.Command {
	var userID int64
	cmd := &cobra.Command{
		Use:   "milestones",
		Short: "Print the milestones a user currently meets",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := setup(ctx)
			if err != nil {
				return err
			}
			defer e.close()
			if userID == 0 {
				userID = e.cfg.DefaultUserID
			}
			events, err := service.DetectMilestones(ctx, e.store, userID, e.cfg.DefaultDailyGoal, e.clock.Now())
			if err != nil {
				return err
			}
			return printJSON(cmd, events)
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "user id (defaults to DEFAULT_USER_ID)")
	return cmd
}
