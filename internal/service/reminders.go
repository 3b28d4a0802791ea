package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/yourname/leettrack/internal"
	"github.com/yourname/leettrack/internal/analytics"
	"github.com/yourname/leettrack/internal/notify"
	"github.com/yourname/leettrack/internal/storage"
)

const (
	ReminderTypeGoal    = "goal"
	ReminderTypeProblem = "problem"
)

type PendingReminder struct {
	Type         string    `json:"type"`
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	ReminderDate time.Time `json:"reminderDate"`
}

type ReminderResult struct {
	Sent    int    `json:"sent"`
	Message string `json:"message"`
}

// PendingReminders lists goals and problems whose reminder date has passed,
// oldest first.
func PendingReminders(ctx context.Context, store storage.Store, userID int64, now time.Time) ([]PendingReminder, error) {
	goals, err := store.ListGoals(ctx, userID)
	if err != nil {
		return nil, err
	}
	problems, err := store.ListProblems(ctx, userID)
	if err != nil {
		return nil, err
	}

	pending := []PendingReminder{}
	for _, g := range goals {
		if g.ReminderDate != nil && !g.ReminderDate.After(now) {
			pending = append(pending, PendingReminder{Type: ReminderTypeGoal, ID: g.ID, Name: g.Name, ReminderDate: *g.ReminderDate})
		}
	}
	for _, p := range problems {
		if p.ReminderDate != nil && !p.ReminderDate.After(now) {
			pending = append(pending, PendingReminder{Type: ReminderTypeProblem, ID: p.ID, Name: p.Name, ReminderDate: *p.ReminderDate})
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].ReminderDate.Before(pending[j].ReminderDate)
	})
	return pending, nil
}

// RemainingToday is how many more solves reach the daily goal, never negative.
func RemainingToday(dailyGoal, todaysSolved int) int {
	return max(0, dailyGoal-todaysSolved)
}

// ReminderDailyGoal is the daily target used for remaining-today counts:
// the user's goal, or defaultDailyGoal when the user is unknown or has none.
func ReminderDailyGoal(user *internal.User, defaultDailyGoal int) int {
	if user == nil || user.DailyGoal <= 0 {
		return defaultDailyGoal
	}
	return user.DailyGoal
}

// SendReminders emails the daily reminder (when notifications are on) and one
// reminder per goal whose reminder date has passed.
func SendReminders(ctx context.Context, store storage.Store, n notify.Notifier, userID int64, defaultDailyGoal int, now time.Time) (ReminderResult, error) {
	user, err := store.GetUser(ctx, userID)
	if err != nil {
		return ReminderResult{}, err
	}
	st, err := GetSettings(ctx, store, userID)
	if err != nil {
		return ReminderResult{}, err
	}
	to := ReminderAddress(user, st)
	if to == "" {
		return ReminderResult{Sent: 0, Message: "Email reminders not configured"}, nil
	}

	sent := 0
	if st.Notifications {
		stats, err := CalculateUserStats(ctx, store, userID, now)
		if err != nil {
			return ReminderResult{}, err
		}
		dailyGoal := ReminderDailyGoal(user, defaultDailyGoal)
		data := notify.DailyData{RemainingToday: RemainingToday(dailyGoal, stats.TodaysSolved), Streak: stats.CurrentStreak}
		if err := n.Send(ctx, to, notify.KindDaily, data); err != nil {
			return ReminderResult{Sent: sent}, err
		}
		sent++
	}

	goals, err := store.ListGoals(ctx, userID)
	if err != nil {
		return ReminderResult{Sent: sent}, err
	}
	for _, g := range goals {
		if g.ReminderDate == nil || g.ReminderDate.After(now) {
			continue
		}
		if err := n.Send(ctx, to, notify.KindGoal, goalReminderData(g, now.Location())); err != nil {
			return ReminderResult{Sent: sent}, err
		}
		sent++
	}

	return ReminderResult{Sent: sent, Message: fmt.Sprintf("Sent %d reminder emails", sent)}, nil
}

func goalReminderData(g internal.Goal, loc *time.Location) notify.GoalData {
	deadline := "No deadline"
	if g.Deadline != nil {
		deadline = g.Deadline.In(loc).Format("Jan 2, 2006")
	}
	return notify.GoalData{
		GoalName: g.Name,
		Progress: g.CurrentProgress,
		Target:   g.TargetProblems,
		Deadline: deadline,
	}
}

type CelebrateRequest struct {
	Milestone   string `json:"milestone" validate:"required,notblank,max=200"`
	TotalSolved int    `json:"totalSolved" validate:"gte=0"`
}

// CelebrateMilestone emails a milestone the client detected. Nothing is sent
// when the user has no reminder address.
func CelebrateMilestone(ctx context.Context, store storage.Store, n notify.Notifier, userID int64, req *CelebrateRequest) (bool, error) {
	if err := validate.Struct(req); err != nil {
		return false, invalid(err)
	}
	user, err := store.GetUser(ctx, userID)
	if err != nil {
		return false, err
	}
	st, err := GetSettings(ctx, store, userID)
	if err != nil {
		return false, err
	}
	to := ReminderAddress(user, st)
	if to == "" {
		return false, nil
	}
	if err := n.Send(ctx, to, notify.KindMilestone, notify.MilestoneData{Milestone: req.Milestone, TotalSolved: req.TotalSolved}); err != nil {
		return false, err
	}
	return true, nil
}

// DetectMilestones runs the detector against the user's current data without
// any dedup.
func DetectMilestones(ctx context.Context, store storage.Store, userID int64, defaultDailyGoal int, now time.Time) ([]analytics.MilestoneEvent, error) {
	stats, err := CalculateUserStats(ctx, store, userID, now)
	if err != nil {
		return nil, err
	}
	goals, err := store.ListGoals(ctx, userID)
	if err != nil {
		return nil, err
	}
	dailyGoal := defaultDailyGoal
	if user, err := store.GetUser(ctx, userID); err == nil {
		dailyGoal = user.DailyGoal
	}
	events := analytics.Detect(stats, nil, goals, dailyGoal)
	if events == nil {
		events = []analytics.MilestoneEvent{}
	}
	return events, nil
}
