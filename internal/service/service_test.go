package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourname/leettrack/internal"
	"github.com/yourname/leettrack/internal/analytics"
	"github.com/yourname/leettrack/internal/notify"
	"github.com/yourname/leettrack/internal/storage"
)

var testNow = time.Date(2024, 3, 15, 15, 30, 0, 0, time.UTC)

func newTestStore(t *testing.T) *storage.FileStorage {
	t.Helper()
	s, err := storage.NewFileStorage(t.TempDir(), internal.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

type sentMail struct {
	To   string
	Kind notify.Kind
	Data any
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (r *recordingNotifier) Send(ctx context.Context, to string, kind notify.Kind, data any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, sentMail{To: to, Kind: kind, Data: data})
	return nil
}

func (r *recordingNotifier) Sent() []sentMail {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sentMail(nil), r.sent...)
}

func ptr[T any](v T) *T { return &v }

func TestCreateProblem_Defaults(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	p, err := CreateProblem(ctx, s, 1, &ProblemRequest{Name: "  Two Sum ", Difficulty: "Easy"}, testNow)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
	assert.Equal(t, "Two Sum", p.Name)
	assert.Equal(t, internal.ProblemStatusSolved, p.Status)
	assert.Equal(t, testNow, p.SolvedAt)
	assert.Equal(t, testNow, p.CreatedAt)
	assert.NotNil(t, p.Topics)
	assert.NotNil(t, p.Tags)
}

func TestCreateProblem_ExplicitSolvedAt(t *testing.T) {
	solved := testNow.AddDate(0, 0, -3)
	p, err := CreateProblem(context.Background(), newTestStore(t), 1, &ProblemRequest{
		Name:       "3Sum",
		Difficulty: "Medium",
		Status:     internal.ProblemStatusInProgress,
		SolvedAt:   &solved,
	}, testNow)
	require.NoError(t, err)
	assert.Equal(t, solved, p.SolvedAt)
	assert.Equal(t, internal.ProblemStatusInProgress, p.Status)
}

func TestValidateProblemRequest(t *testing.T) {
	tests := []struct {
		name string
		req  ProblemRequest
		ok   bool
	}{
		{"valid", ProblemRequest{Name: "Two Sum", Difficulty: "Easy"}, true},
		{"missing name", ProblemRequest{Difficulty: "Easy"}, false},
		{"bad difficulty", ProblemRequest{Name: "x", Difficulty: "Trivial"}, false},
		{"bad status", ProblemRequest{Name: "x", Difficulty: "Hard", Status: "Done"}, false},
		{"in progress", ProblemRequest{Name: "x", Difficulty: "Hard", Status: "In Progress"}, true},
		{"negative time", ProblemRequest{Name: "x", Difficulty: "Hard", TimeSpent: ptr(-1)}, false},
		{"empty topic", ProblemRequest{Name: "x", Difficulty: "Hard", Topics: []string{""}}, false},
		{"blank name", ProblemRequest{Name: "   ", Difficulty: "Easy"}, false},
		{"blank tag", ProblemRequest{Name: "x", Difficulty: "Easy", Tags: []string{" \t"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProblemRequest(&tt.req)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, internal.ErrInvalidInput)
			}
		})
	}
}

func TestUpdateProblem_Partial(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	p, err := CreateProblem(ctx, s, 1, &ProblemRequest{
		Name: "Two Sum", Difficulty: "Easy", Pattern: "Hash Map", ScreenshotURL: "/uploads/old.png",
	}, testNow)
	require.NoError(t, err)

	updated, oldShot, err := UpdateProblem(ctx, s, 1, p.ID, &ProblemUpdate{
		Difficulty:    ptr("Medium"),
		ScreenshotURL: ptr("/uploads/new.png"),
		Topics:        []string{"Array"},
	})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/old.png", oldShot)
	assert.Equal(t, internal.DifficultyMedium, updated.Difficulty)
	assert.Equal(t, "Two Sum", updated.Name)
	assert.Equal(t, "Hash Map", updated.Pattern)
	assert.Equal(t, []string{"Array"}, updated.Topics)

	_, _, err = UpdateProblem(ctx, s, 1, p.ID, &ProblemUpdate{Name: ptr("")})
	assert.ErrorIs(t, err, internal.ErrInvalidInput)

	_, _, err = UpdateProblem(ctx, s, 2, p.ID, &ProblemUpdate{Name: ptr("x")})
	assert.ErrorIs(t, err, internal.ErrNotFound)
}

func TestListProblems_Filter(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	for _, r := range []ProblemRequest{
		{Name: "Two Sum", Difficulty: "Easy"},
		{Name: "LRU Cache", Difficulty: "Medium", Tags: []string{"design"}},
	} {
		_, err := CreateProblem(ctx, s, 1, &r, testNow)
		require.NoError(t, err)
	}

	got, err := ListProblems(ctx, s, 1, storage.ProblemFilter{Search: "DESIGN"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "LRU Cache", got[0].Name)
}

func TestGoals_CreateUpdateProgress(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	deadline := testNow.Add(10 * 24 * time.Hour)

	g, err := CreateGoal(ctx, s, 1, &GoalRequest{Name: "Blind 75", TargetProblems: 75, CurrentProgress: 25, Deadline: &deadline}, testNow)
	require.NoError(t, err)
	assert.Equal(t, internal.GoalStatusActive, g.Status)

	_, err = CreateGoal(ctx, s, 1, &GoalRequest{Name: "zero", TargetProblems: 0}, testNow)
	assert.ErrorIs(t, err, internal.ErrInvalidInput)
	_, err = CreateGoal(ctx, s, 1, &GoalRequest{Name: "neg", TargetProblems: 5, CurrentProgress: -1}, testNow)
	assert.ErrorIs(t, err, internal.ErrInvalidInput)
	_, err = CreateGoal(ctx, s, 1, &GoalRequest{Name: "status", TargetProblems: 5, Status: "Done"}, testNow)
	assert.ErrorIs(t, err, internal.ErrInvalidInput)

	g, err = UpdateGoal(ctx, s, 1, g.ID, &GoalUpdate{CurrentProgress: ptr(80)})
	require.NoError(t, err)
	assert.Equal(t, 80, g.CurrentProgress)
	assert.Equal(t, "Blind 75", g.Name)

	list, err := ListGoalProgress(ctx, s, 1, testNow)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 0, list[0].Pace.Remaining, "clamped for display")
	assert.Equal(t, 0, list[0].Pace.DailyTarget)
	require.NotNil(t, list[0].Pace.DaysRemaining)
	assert.Equal(t, 10, *list[0].Pace.DaysRemaining)
	assert.InDelta(t, 106.67, list[0].Pace.Percent, 0.01)
}

func TestBlankNamesRejected(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := CreateGoal(ctx, s, 1, &GoalRequest{Name: "  ", TargetProblems: 5}, testNow)
	assert.ErrorIs(t, err, internal.ErrInvalidInput)

	g, err := CreateGoal(ctx, s, 1, &GoalRequest{Name: " Blind 75 ", TargetProblems: 5}, testNow)
	require.NoError(t, err)
	assert.Equal(t, "Blind 75", g.Name)

	_, err = UpdateGoal(ctx, s, 1, g.ID, &GoalUpdate{Name: ptr("\t ")})
	assert.ErrorIs(t, err, internal.ErrInvalidInput)
	g, err = UpdateGoal(ctx, s, 1, g.ID, &GoalUpdate{Name: ptr("  NeetCode 150 ")})
	require.NoError(t, err)
	assert.Equal(t, "NeetCode 150", g.Name)

	p, err := CreateProblem(ctx, s, 1, &ProblemRequest{Name: "Two Sum", Difficulty: "Easy"}, testNow)
	require.NoError(t, err)
	_, _, err = UpdateProblem(ctx, s, 1, p.ID, &ProblemUpdate{Name: ptr("   ")})
	assert.ErrorIs(t, err, internal.ErrInvalidInput)
	p, _, err = UpdateProblem(ctx, s, 1, p.ID, &ProblemUpdate{Name: ptr(" 3Sum ")})
	require.NoError(t, err)
	assert.Equal(t, "3Sum", p.Name)
}

func TestCalculateUserStats(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	for i := 0; i < 3; i++ {
		solved := testNow.AddDate(0, 0, -i)
		_, err := CreateProblem(ctx, s, 1, &ProblemRequest{Name: "p", Difficulty: "Easy", Pattern: "Greedy", SolvedAt: &solved}, testNow)
		require.NoError(t, err)
	}

	stats, err := CalculateUserStats(ctx, s, 1, testNow)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalSolved)
	assert.Equal(t, 1, stats.TodaysSolved)
	assert.Equal(t, 3, stats.CurrentStreak)

	report, err := CalculatePatternMastery(ctx, s, 1, analytics.DefaultCatalog())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Uncategorized)
	for _, pm := range report.Patterns {
		if pm.Name == "Greedy" {
			assert.Equal(t, 3, pm.Solved)
		}
	}
}

func TestEnsureUserAndSettings(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u, err := EnsureUser(ctx, s, 1, 5, testNow)
	require.NoError(t, err)
	assert.Equal(t, 5, u.DailyGoal)

	st, err := s.GetSettings(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "dark", st.Theme)
	assert.True(t, st.Notifications)
	assert.False(t, st.EmailReminders)

	u, err = UpdateUser(ctx, s, 1, &UserUpdate{DailyGoal: ptr(3), Email: ptr("me@example.com")})
	require.NoError(t, err)
	assert.Equal(t, 3, u.DailyGoal)

	again, err := EnsureUser(ctx, s, 1, 5, testNow)
	require.NoError(t, err)
	assert.Equal(t, 3, again.DailyGoal, "existing user kept")

	_, err = UpdateUser(ctx, s, 1, &UserUpdate{Email: ptr("not-an-email")})
	assert.ErrorIs(t, err, internal.ErrInvalidInput)

	st, err = UpdateSettings(ctx, s, 1, &SettingsUpdate{Theme: ptr("light"), ReminderTime: ptr("09:30")})
	require.NoError(t, err)
	assert.Equal(t, "light", st.Theme)
	assert.Equal(t, "09:30", st.ReminderTime)

	_, err = UpdateSettings(ctx, s, 1, &SettingsUpdate{Theme: ptr("blue")})
	assert.ErrorIs(t, err, internal.ErrInvalidInput)
}

func TestReminderAddress(t *testing.T) {
	u := &internal.User{Email: "user@example.com"}
	assert.Equal(t, "", ReminderAddress(u, nil))
	assert.Equal(t, "", ReminderAddress(u, &internal.UserSettings{EmailReminders: false}))
	assert.Equal(t, "user@example.com", ReminderAddress(u, &internal.UserSettings{EmailReminders: true}))
	assert.Equal(t, "alt@example.com", ReminderAddress(u, &internal.UserSettings{EmailReminders: true, ReminderEmail: "alt@example.com"}))
}
