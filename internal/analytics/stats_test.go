package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourname/leettrack/internal"
)

var tz = time.FixedZone("UTC+3", 3*60*60)

// now is mid-afternoon local time on 2024-03-15.
var now = time.Date(2024, 3, 15, 15, 30, 0, 0, tz)

func solvedDaysAgo(days int, mods ...func(*internal.Problem)) internal.Problem {
	p := internal.Problem{
		Name:       "p",
		Difficulty: internal.DifficultyEasy,
		Status:     internal.ProblemStatusSolved,
		SolvedAt:   now.AddDate(0, 0, -days),
	}
	for _, m := range mods {
		m(&p)
	}
	return p
}

func TestComputeStats_Empty(t *testing.T) {
	s := ComputeStats(nil, now)

	assert.Equal(t, 0, s.TotalSolved)
	assert.Equal(t, 0, s.TodaysSolved)
	assert.Equal(t, 0, s.CurrentStreak)
	assert.Equal(t, DifficultyCounts{}, s.DifficultyCounts)
	assert.NotNil(t, s.PatternCounts)
	assert.Empty(t, s.PatternCounts)
	require.Len(t, s.WeeklyActivity, 7)
	for _, d := range s.WeeklyActivity {
		assert.Zero(t, d.Count)
	}
	assert.Equal(t, "2024-03-15", s.Date)
}

func TestComputeStats_TotalEqualsLength(t *testing.T) {
	var problems []internal.Problem
	for i := 0; i < 25; i++ {
		problems = append(problems, solvedDaysAgo(i*3))
		assert.Equal(t, len(problems), ComputeStats(problems, now).TotalSolved)
	}
}

func TestComputeStats_TodaysSolved(t *testing.T) {
	problems := []internal.Problem{solvedDaysAgo(1), solvedDaysAgo(2)}
	assert.Equal(t, 0, ComputeStats(problems, now).TodaysSolved)

	prev := 0
	for i := 0; i < 4; i++ {
		problems = append(problems, solvedDaysAgo(0))
		got := ComputeStats(problems, now).TodaysSolved
		assert.GreaterOrEqual(t, got, prev)
		assert.Equal(t, i+1, got)
		prev = got
	}

	// other days never move it
	problems = append(problems, solvedDaysAgo(1), solvedDaysAgo(40))
	assert.Equal(t, 4, ComputeStats(problems, now).TodaysSolved)
}

func TestComputeStats_TodayUsesNowLocation(t *testing.T) {
	// 22:30 UTC on the 14th is 01:30 on the 15th in UTC+3.
	late := internal.Problem{SolvedAt: time.Date(2024, 3, 14, 22, 30, 0, 0, time.UTC)}
	s := ComputeStats([]internal.Problem{late}, now)
	assert.Equal(t, 1, s.TodaysSolved)

	inUTC := ComputeStats([]internal.Problem{late}, now.In(time.UTC))
	assert.Equal(t, 0, inUTC.TodaysSolved)
}

func TestComputeStats_DifficultyCounts(t *testing.T) {
	withDiff := func(d internal.Difficulty) func(*internal.Problem) {
		return func(p *internal.Problem) { p.Difficulty = d }
	}
	problems := []internal.Problem{
		solvedDaysAgo(0, withDiff(internal.DifficultyEasy)),
		solvedDaysAgo(0, withDiff(internal.DifficultyMedium)),
		solvedDaysAgo(0, withDiff(internal.DifficultyMedium)),
		solvedDaysAgo(0, withDiff(internal.DifficultyHard)),
		solvedDaysAgo(0, withDiff("Insane")),
		solvedDaysAgo(0, withDiff("easy")),
	}
	s := ComputeStats(problems, now)
	assert.Equal(t, DifficultyCounts{Easy: 1, Medium: 2, Hard: 1}, s.DifficultyCounts)
	assert.Equal(t, 6, s.TotalSolved)
}

func TestComputeStats_PatternCounts(t *testing.T) {
	withPattern := func(name string) func(*internal.Problem) {
		return func(p *internal.Problem) { p.Pattern = name }
	}
	problems := []internal.Problem{
		solvedDaysAgo(0, withPattern("Two Pointers")),
		solvedDaysAgo(1, withPattern("Two Pointers")),
		solvedDaysAgo(2, withPattern("Greedy")),
		solvedDaysAgo(3, withPattern("")),
		solvedDaysAgo(4),
	}
	s := ComputeStats(problems, now)
	assert.Equal(t, map[string]int{"Two Pointers": 2, "Greedy": 1}, s.PatternCounts)
	_, ok := s.PatternCounts[""]
	assert.False(t, ok)
}

func TestComputeStats_Streak(t *testing.T) {
	cases := []struct {
		name string
		days []int
		want int
	}{
		{"today and two before", []int{0, 1, 2}, 3},
		{"today skipped when empty", []int{1, 2}, 2},
		{"gap yesterday breaks", []int{2}, 0},
		{"gap after first run", []int{0, 1, 3, 4}, 2},
		{"only today", []int{0}, 1},
		{"duplicates on one day", []int{0, 0, 0, 1}, 2},
		{"future solves ignored", []int{-1, 0}, 1},
		{"none", nil, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var problems []internal.Problem
			for _, d := range tc.days {
				problems = append(problems, solvedDaysAgo(d))
			}
			assert.Equal(t, tc.want, ComputeStats(problems, now).CurrentStreak)
		})
	}
}

func TestComputeStats_LongStreakAcrossMonths(t *testing.T) {
	var problems []internal.Problem
	for d := 1; d <= 45; d++ {
		problems = append(problems, solvedDaysAgo(d))
	}
	assert.Equal(t, 45, ComputeStats(problems, now).CurrentStreak)
}

func TestComputeStats_WeeklyActivity(t *testing.T) {
	problems := []internal.Problem{
		solvedDaysAgo(0), solvedDaysAgo(0),
		solvedDaysAgo(3),
		solvedDaysAgo(6),
		solvedDaysAgo(7), // outside the window
	}
	s := ComputeStats(problems, now)

	require.Len(t, s.WeeklyActivity, 7)
	want := []DayActivity{
		{"2024-03-09", 1},
		{"2024-03-10", 0},
		{"2024-03-11", 0},
		{"2024-03-12", 1},
		{"2024-03-13", 0},
		{"2024-03-14", 0},
		{"2024-03-15", 2},
	}
	assert.Equal(t, want, s.WeeklyActivity)

	for i := 1; i < len(s.WeeklyActivity); i++ {
		prev, err := time.Parse(dayLayout, s.WeeklyActivity[i-1].Date)
		require.NoError(t, err)
		cur, err := time.Parse(dayLayout, s.WeeklyActivity[i].Date)
		require.NoError(t, err)
		assert.Equal(t, 24*time.Hour, cur.Sub(prev))
	}
}

func TestComputeStats_WeeklyActivityAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	// DST starts 2024-03-10 in New York.
	n := time.Date(2024, 3, 12, 0, 30, 0, 0, loc)
	s := ComputeStats(nil, n)
	assert.Equal(t, "2024-03-06", s.WeeklyActivity[0].Date)
	assert.Equal(t, "2024-03-12", s.WeeklyActivity[6].Date)
}
