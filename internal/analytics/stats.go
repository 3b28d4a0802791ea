// Package analytics derives progress figures from a user's problems and goals.
// Everything here is a pure function of its inputs; callers pass "now".
package analytics

import (
	"time"

	"github.com/yourname/leettrack/internal"
)

const dayLayout = "2006-01-02"

type DifficultyCounts struct {
	Easy   int `json:"easy"`
	Medium int `json:"medium"`
	Hard   int `json:"hard"`
}

type DayActivity struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type UserStats struct {
	TotalSolved      int              `json:"totalSolved"`
	TodaysSolved     int              `json:"todaysSolved"`
	CurrentStreak    int              `json:"currentStreak"`
	DifficultyCounts DifficultyCounts `json:"difficultyCounts"`
	PatternCounts    map[string]int   `json:"patternCounts"`
	WeeklyActivity   []DayActivity    `json:"weeklyActivity"`
	// Date is now's calendar day. Milestone snapshots use it to tell days apart.
	Date string `json:"date"`
}

// dayKey returns t's calendar day in loc.
func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dayLayout)
}

// startOfDay returns midnight of t's calendar day in loc.
func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// ComputeStats builds UserStats from all of one user's problems. Calendar
// days are taken in now's location.
func ComputeStats(problems []internal.Problem, now time.Time) UserStats {
	loc := now.Location()
	today := startOfDay(now, loc)
	todayKey := today.Format(dayLayout)

	perDay := make(map[string]int, len(problems))
	stats := UserStats{
		TotalSolved:   len(problems),
		PatternCounts: make(map[string]int),
		Date:          todayKey,
	}

	for _, p := range problems {
		perDay[dayKey(p.SolvedAt, loc)]++

		switch p.Difficulty {
		case internal.DifficultyEasy:
			stats.DifficultyCounts.Easy++
		case internal.DifficultyMedium:
			stats.DifficultyCounts.Medium++
		case internal.DifficultyHard:
			stats.DifficultyCounts.Hard++
		}

		if p.Pattern != "" {
			stats.PatternCounts[p.Pattern]++
		}
	}

	stats.TodaysSolved = perDay[todayKey]
	stats.CurrentStreak = currentStreak(perDay, today)
	stats.WeeklyActivity = weeklyActivity(perDay, today)
	return stats
}

// currentStreak walks back from today. An empty today is skipped once; after
// that every day must have a solve or the walk ends.
func currentStreak(perDay map[string]int, today time.Time) int {
	streak := 0
	day := today
	for {
		if perDay[day.Format(dayLayout)] > 0 {
			streak++
		} else if !(streak == 0 && day.Equal(today)) {
			break
		}
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

func weeklyActivity(perDay map[string]int, today time.Time) []DayActivity {
	week := make([]DayActivity, 0, 7)
	for i := 6; i >= 0; i-- {
		key := today.AddDate(0, 0, -i).Format(dayLayout)
		week = append(week, DayActivity{Date: key, Count: perDay[key]})
	}
	return week
}
