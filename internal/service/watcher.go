package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/yourname/leettrack/internal"
	"github.com/yourname/leettrack/internal/analytics"
	"github.com/yourname/leettrack/internal/clock"
	"github.com/yourname/leettrack/internal/notify"
	"github.com/yourname/leettrack/internal/storage"
)

const DefaultWatchInterval = 30 * time.Second

// Watcher runs milestone detection after store changes, or on a fixed
// interval when the store cannot report them, and hands new events to the
// notifier.
type Watcher struct {
	store            storage.Store
	notifier         notify.Notifier
	tracker          *MilestoneTracker
	clock            clock.Clock
	interval         time.Duration
	defaultDailyGoal int
	logger           internal.Logger

	mu   sync.Mutex
	prev map[int64]analytics.UserStats
}

func NewWatcher(store storage.Store, notifier notify.Notifier, clk clock.Clock, interval time.Duration, defaultDailyGoal int, logger internal.Logger) *Watcher {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	return &Watcher{
		store:            store,
		notifier:         notifier,
		tracker:          NewMilestoneTracker(),
		clock:            clk,
		interval:         interval,
		defaultDailyGoal: defaultDailyGoal,
		logger:           logger,
		prev:             make(map[int64]analytics.UserStats),
	}
}

// Run blocks until ctx is cancelled or the store's change feed closes.
func (w *Watcher) Run(ctx context.Context) error {
	w.checkAll(ctx)

	if cn, ok := w.store.(storage.ChangeNotifier); ok {
		w.logger.Infof("milestone watcher following store changes")
		changes := cn.Subscribe()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case userID, ok := <-changes:
				if !ok {
					return nil
				}
				w.checkAndLog(ctx, userID)
			}
		}
	}

	w.logger.Infof("milestone watcher polling every %s", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.checkAll(ctx)
		}
	}
}

func (w *Watcher) checkAll(ctx context.Context) {
	users, err := w.store.ListUsers(ctx)
	if err != nil {
		w.logger.Errorf("milestone watcher: list users: %v", err)
		return
	}
	for _, u := range users {
		w.checkAndLog(ctx, u.ID)
	}
}

func (w *Watcher) checkAndLog(ctx context.Context, userID int64) {
	if _, err := w.Check(ctx, userID); err != nil && !errors.Is(err, context.Canceled) {
		w.logger.Errorf("milestone watcher: user %d: %v", userID, err)
	}
}

// Check evaluates one user's milestones and delivers the new ones. It
// returns the events delivered by this call.
func (w *Watcher) Check(ctx context.Context, userID int64) ([]analytics.MilestoneEvent, error) {
	now := w.clock.Now()
	problems, err := w.store.ListProblems(ctx, userID)
	if err != nil {
		return nil, err
	}
	goals, err := w.store.ListGoals(ctx, userID)
	if err != nil {
		return nil, err
	}

	dailyGoal := w.defaultDailyGoal
	user, err := w.store.GetUser(ctx, userID)
	switch {
	case err == nil:
		dailyGoal = user.DailyGoal
	case errors.Is(err, internal.ErrNotFound):
		user = nil
	default:
		return nil, err
	}

	stats := analytics.ComputeStats(problems, now)
	w.mu.Lock()
	var prev *analytics.UserStats
	if p, ok := w.prev[userID]; ok {
		prev = &p
	}
	w.prev[userID] = stats
	w.mu.Unlock()

	events := w.tracker.Filter(userID, stats.Date, analytics.Detect(stats, prev, goals, dailyGoal))
	if len(events) == 0 {
		return nil, nil
	}

	var to string
	if user != nil {
		st, err := w.store.GetSettings(ctx, userID)
		if err != nil && !errors.Is(err, internal.ErrNotFound) {
			return events, err
		}
		to = ReminderAddress(user, st)
	}

	for _, e := range events {
		w.logger.Infof("milestone for user %d: %s (%s)", userID, e.Title, e.Description)
		if to == "" {
			continue
		}
		data := notify.MilestoneData{Milestone: e.Title, Description: e.Description, TotalSolved: stats.TotalSolved}
		if err := w.notifier.Send(ctx, to, notify.KindMilestone, data); err != nil {
			w.logger.Warnf("milestone email for user %d failed: %v", userID, err)
		}
	}
	return events, nil
}
