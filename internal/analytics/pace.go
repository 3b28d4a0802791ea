package analytics

import (
	"math"
	"time"

	"github.com/yourname/leettrack/internal"
)

// GoalPace describes how far a goal is and what daily rate meets its deadline.
// Remaining and DailyTarget can be negative once a goal is exceeded; clamp
// them for display with Clamped.
type GoalPace struct {
	GoalID        int64   `json:"goalId"`
	Remaining     int     `json:"remaining"`
	DaysRemaining *int    `json:"daysRemaining"`
	DailyTarget   int     `json:"dailyTarget"`
	Percent       float64 `json:"percent"`
	Overdue       bool    `json:"overdue"`
}

// Pace computes a goal's pace at now.
func Pace(goal internal.Goal, now time.Time) GoalPace {
	p := GoalPace{
		GoalID:    goal.ID,
		Remaining: goal.TargetProblems - goal.CurrentProgress,
		Percent:   ProgressPercent(goal),
	}
	if goal.TargetProblems <= 0 {
		// nothing to do for a zero target
		p.Remaining = 0
	}

	if goal.Deadline != nil {
		days := int(math.Ceil(goal.Deadline.Sub(now).Hours() / 24))
		p.DaysRemaining = &days
		p.Overdue = days < 0
		if days > 0 {
			p.DailyTarget = ceilDiv(p.Remaining, days)
		}
	}
	return p
}

// Clamped returns a copy with negative work figures raised to zero.
func (p GoalPace) Clamped() GoalPace {
	if p.Remaining < 0 {
		p.Remaining = 0
	}
	if p.DailyTarget < 0 {
		p.DailyTarget = 0
	}
	return p
}

// ProgressPercent is currentProgress / targetProblems * 100, unbounded above.
// A non-positive target counts as already met.
func ProgressPercent(goal internal.Goal) float64 {
	if goal.TargetProblems <= 0 {
		return 100
	}
	return float64(goal.CurrentProgress) / float64(goal.TargetProblems) * 100
}

// ceilDiv rounds a/b up for b > 0. Go division truncates toward zero, which
// is already the ceiling for negative a.
func ceilDiv(a, b int) int {
	q := a / b
	if a%b > 0 {
		q++
	}
	return q
}
