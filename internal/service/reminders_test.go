package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourname/leettrack/internal"
	"github.com/yourname/leettrack/internal/analytics"
	"github.com/yourname/leettrack/internal/notify"
)

func TestRemainingToday(t *testing.T) {
	assert.Equal(t, 3, RemainingToday(5, 2))
	assert.Equal(t, 0, RemainingToday(5, 5))
	assert.Equal(t, 0, RemainingToday(5, 9))
}

func TestReminderDailyGoal(t *testing.T) {
	assert.Equal(t, 5, ReminderDailyGoal(nil, 5))
	assert.Equal(t, 5, ReminderDailyGoal(&internal.User{DailyGoal: 0}, 5))
	assert.Equal(t, 3, ReminderDailyGoal(&internal.User{DailyGoal: 3}, 5))
}

func TestPendingReminders(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	past := testNow.Add(-2 * time.Hour)
	older := testNow.Add(-48 * time.Hour)
	future := testNow.Add(24 * time.Hour)

	_, err := CreateGoal(ctx, s, 1, &GoalRequest{Name: "due goal", TargetProblems: 10, ReminderDate: &past}, testNow)
	require.NoError(t, err)
	_, err = CreateGoal(ctx, s, 1, &GoalRequest{Name: "later goal", TargetProblems: 10, ReminderDate: &future}, testNow)
	require.NoError(t, err)
	_, err = CreateProblem(ctx, s, 1, &ProblemRequest{Name: "review me", Difficulty: "Hard", ReminderDate: &older}, testNow)
	require.NoError(t, err)
	_, err = CreateProblem(ctx, s, 1, &ProblemRequest{Name: "no reminder", Difficulty: "Hard"}, testNow)
	require.NoError(t, err)

	pending, err := PendingReminders(ctx, s, 1, testNow)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "review me", pending[0].Name)
	assert.Equal(t, ReminderTypeProblem, pending[0].Type)
	assert.Equal(t, "due goal", pending[1].Name)
	assert.Equal(t, ReminderTypeGoal, pending[1].Type)
}

func TestSendReminders(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedUser(t, ctx, s, 5, true)
	due := testNow.Add(-time.Hour)
	deadline := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
	_, err := CreateGoal(ctx, s, 1, &GoalRequest{Name: "Blind 75", TargetProblems: 75, CurrentProgress: 30, Deadline: &deadline, ReminderDate: &due}, testNow)
	require.NoError(t, err)
	_, err = CreateProblem(ctx, s, 1, &ProblemRequest{Name: "a", Difficulty: "Easy"}, testNow)
	require.NoError(t, err)
	n := &recordingNotifier{}

	res, err := SendReminders(ctx, s, n, 1, 5, testNow)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Sent)
	assert.Equal(t, "Sent 2 reminder emails", res.Message)

	sent := n.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, notify.KindDaily, sent[0].Kind)
	assert.Equal(t, notify.DailyData{RemainingToday: 4, Streak: 1}, sent[0].Data)
	assert.Equal(t, notify.KindGoal, sent[1].Kind)
	assert.Equal(t, notify.GoalData{GoalName: "Blind 75", Progress: 30, Target: 75, Deadline: "Apr 1, 2024"}, sent[1].Data)
}

func TestSendReminders_NotConfigured(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedUser(t, ctx, s, 5, false)
	n := &recordingNotifier{}

	res, err := SendReminders(ctx, s, n, 1, 5, testNow)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Sent)
	assert.Equal(t, "Email reminders not configured", res.Message)
	assert.Empty(t, n.Sent())
}

func TestSendReminders_NotifierError(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedUser(t, ctx, s, 5, true)
	n := &recordingNotifier{err: errors.New("smtp down")}

	_, err := SendReminders(ctx, s, n, 1, 5, testNow)
	assert.Error(t, err)
}

func TestSendReminders_UnknownUser(t *testing.T) {
	_, err := SendReminders(context.Background(), newTestStore(t), &recordingNotifier{}, 42, 5, testNow)
	assert.ErrorIs(t, err, internal.ErrNotFound)
}

func TestCelebrateMilestone(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedUser(t, ctx, s, 5, true)
	n := &recordingNotifier{}

	sent, err := CelebrateMilestone(ctx, s, n, 1, &CelebrateRequest{Milestone: "7-Day Streak!", TotalSolved: 12})
	require.NoError(t, err)
	assert.True(t, sent)
	require.Len(t, n.Sent(), 1)
	assert.Equal(t, notify.MilestoneData{Milestone: "7-Day Streak!", TotalSolved: 12}, n.Sent()[0].Data)

	_, err = CelebrateMilestone(ctx, s, n, 1, &CelebrateRequest{})
	assert.ErrorIs(t, err, internal.ErrInvalidInput)
}

func TestDetectMilestones(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedUser(t, ctx, s, 1, false)

	events, err := DetectMilestones(ctx, s, 1, 5, testNow)
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)

	_, err = CreateProblem(ctx, s, 1, &ProblemRequest{Name: "a", Difficulty: "Easy"}, testNow)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		events, err = DetectMilestones(ctx, s, 1, 5, testNow)
		require.NoError(t, err)
		require.Len(t, events, 1, "no dedup between calls")
		assert.Equal(t, analytics.MilestoneDailyGoal, events[0].Kind)
	}
}
