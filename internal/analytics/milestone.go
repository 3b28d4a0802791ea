package analytics

import (
	"fmt"

	"github.com/yourname/leettrack/internal"
)

type MilestoneKind string

const (
	MilestoneDailyGoal MilestoneKind = "daily"
	MilestoneStreak3   MilestoneKind = "streak-3"
	MilestoneStreak7   MilestoneKind = "streak-7"
	MilestoneStreak30  MilestoneKind = "streak-30"
	MilestoneGoal50    MilestoneKind = "goal-50"
	MilestoneGoal100   MilestoneKind = "goal-100"
)

type MilestoneEvent struct {
	Kind        MilestoneKind `json:"kind"`
	GoalID      int64         `json:"goalId,omitempty"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
}

var streakMilestones = []struct {
	days  int
	kind  MilestoneKind
	title string
	desc  string
}{
	{3, MilestoneStreak3, "3-Day Streak!", "You're building momentum!"},
	{7, MilestoneStreak7, "7-Day Streak!", "One week of consistent practice!"},
	{30, MilestoneStreak30, "30-Day Streak!", "You're a coding champion!"},
}

// Detect returns every milestone whose threshold the snapshot matches, in
// rule order: daily goal, streak, then goals in the given order.
//
// When prev is non-nil, daily and streak events that prev already matched
// with the same value on the same day are left out. Detect keeps no state of
// its own; suppressing repeats across polls is up to the caller.
func Detect(stats UserStats, prev *UserStats, goals []internal.Goal, dailyGoal int) []MilestoneEvent {
	var events []MilestoneEvent

	if dailyGoal > 0 && stats.TodaysSolved == dailyGoal {
		seen := prev != nil && prev.Date == stats.Date && prev.TodaysSolved == dailyGoal
		if !seen {
			events = append(events, MilestoneEvent{
				Kind:        MilestoneDailyGoal,
				Title:       "Daily Goal Achieved!",
				Description: fmt.Sprintf("You've completed %d problems today!", stats.TodaysSolved),
			})
		}
	}

	for _, m := range streakMilestones {
		if stats.CurrentStreak != m.days {
			continue
		}
		if prev != nil && prev.Date == stats.Date && prev.CurrentStreak == m.days {
			continue
		}
		events = append(events, MilestoneEvent{Kind: m.kind, Title: m.title, Description: m.desc})
	}

	for _, g := range goals {
		if g.Status != internal.GoalStatusActive {
			continue
		}
		pct := ProgressPercent(g)
		switch {
		case pct >= 50 && pct < 60:
			events = append(events, MilestoneEvent{
				Kind:        MilestoneGoal50,
				GoalID:      g.ID,
				Title:       "Halfway There!",
				Description: fmt.Sprintf("50%% progress on %q", g.Name),
			})
		case pct >= 100:
			events = append(events, MilestoneEvent{
				Kind:        MilestoneGoal100,
				GoalID:      g.ID,
				Title:       "Goal Completed!",
				Description: fmt.Sprintf("%q achieved!", g.Name),
			})
		}
	}
	return events
}
