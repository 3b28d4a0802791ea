package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourname/leettrack/internal"
)

func newTestFileStorage(t *testing.T, dir string) *FileStorage {
	t.Helper()
	s, err := newFileStorage(dir, 10*time.Millisecond, internal.NewNopLogger())
	require.NoError(t, err)
	return s
}

func sampleProblem(userID int64, name string, solvedAt time.Time) *internal.Problem {
	return &internal.Problem{
		UserID:     userID,
		Name:       name,
		Difficulty: internal.DifficultyMedium,
		Status:     internal.ProblemStatusSolved,
		Pattern:    "Two Pointers",
		Topics:     []string{"Array"},
		Tags:       []string{"classic"},
		SolvedAt:   solvedAt,
		CreatedAt:  solvedAt,
	}
}

func TestFileStorage_ProblemCRUD(t *testing.T) {
	ctx := context.Background()
	s := newTestFileStorage(t, t.TempDir())
	defer s.Close()

	base := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	first := sampleProblem(1, "Two Sum", base)
	second := sampleProblem(1, "3Sum", base.Add(24*time.Hour))
	require.NoError(t, s.CreateProblem(ctx, first))
	require.NoError(t, s.CreateProblem(ctx, second))
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)

	list, err := s.ListProblems(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "3Sum", list[0].Name, "newest solve first")

	got, err := s.GetProblem(ctx, 1, first.ID)
	require.NoError(t, err)
	got.Name = "Two Sum II"
	require.NoError(t, s.UpdateProblem(ctx, got))

	got, err = s.GetProblem(ctx, 1, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Two Sum II", got.Name)

	require.NoError(t, s.DeleteProblem(ctx, 1, second.ID))
	_, err = s.GetProblem(ctx, 1, second.ID)
	assert.ErrorIs(t, err, internal.ErrNotFound)
	assert.ErrorIs(t, s.DeleteProblem(ctx, 1, second.ID), internal.ErrNotFound)
}

func TestFileStorage_UserScoping(t *testing.T) {
	ctx := context.Background()
	s := newTestFileStorage(t, t.TempDir())
	defer s.Close()

	p := sampleProblem(1, "Two Sum", time.Now())
	require.NoError(t, s.CreateProblem(ctx, p))

	_, err := s.GetProblem(ctx, 2, p.ID)
	assert.ErrorIs(t, err, internal.ErrNotFound)

	other := *p
	other.UserID = 2
	assert.ErrorIs(t, s.UpdateProblem(ctx, &other), internal.ErrNotFound)
	assert.ErrorIs(t, s.DeleteProblem(ctx, 2, p.ID), internal.ErrNotFound)

	list, err := s.ListProblems(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list)
}

func TestFileStorage_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := newTestFileStorage(t, t.TempDir())
	defer s.Close()

	p := sampleProblem(1, "Two Sum", time.Now())
	require.NoError(t, s.CreateProblem(ctx, p))
	p.Topics[0] = "mutated"

	got, err := s.GetProblem(ctx, 1, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Array"}, got.Topics)
}

func TestFileStorage_ReloadFromDisk(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := newTestFileStorage(t, dir)

	deadline := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.CreateProblem(ctx, sampleProblem(1, "Two Sum", time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC))))
	goal := &internal.Goal{UserID: 1, Name: "Blind 75", TargetProblems: 75, Status: internal.GoalStatusActive, Deadline: &deadline}
	require.NoError(t, s.CreateGoal(ctx, goal))
	require.NoError(t, s.SaveUser(ctx, &internal.User{ID: 1, Username: "demo", Name: "Demo", DailyGoal: 5}))
	require.NoError(t, s.SaveSettings(ctx, &internal.UserSettings{UserID: 1, Theme: "dark", EmailReminders: true}))
	require.NoError(t, s.Close())

	for _, name := range []string{problemsFile, goalsFile, usersFile, settingsFile} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	reloaded := newTestFileStorage(t, dir)
	defer reloaded.Close()

	problems, err := reloaded.ListProblems(ctx, 1)
	require.NoError(t, err)
	require.Len(t, problems, 1)
	assert.Equal(t, "Two Sum", problems[0].Name)

	g, err := reloaded.GetGoal(ctx, 1, goal.ID)
	require.NoError(t, err)
	assert.Equal(t, 75, g.TargetProblems)
	require.NotNil(t, g.Deadline)
	assert.True(t, deadline.Equal(*g.Deadline))

	u, err := reloaded.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, u.DailyGoal)

	st, err := reloaded.GetSettings(ctx, 1)
	require.NoError(t, err)
	assert.True(t, st.EmailReminders)

	next := sampleProblem(1, "Valid Parentheses", time.Now())
	require.NoError(t, reloaded.CreateProblem(ctx, next))
	assert.Equal(t, int64(2), next.ID, "ids continue after reload")
}

func TestFileStorage_CloseDuringPendingSaves(t *testing.T) {
	ctx := context.Background()
	solved := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	for round := 0; round < 20; round++ {
		dir := t.TempDir()
		s, err := newFileStorage(dir, time.Microsecond, internal.NewNopLogger())
		require.NoError(t, err)
		for i := 0; i < 200; i++ {
			require.NoError(t, s.CreateProblem(ctx, sampleProblem(1, "p", solved)))
		}
		require.NoError(t, s.Close(), "round %d", round)

		reloaded := newTestFileStorage(t, dir)
		problems, err := reloaded.ListProblems(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, problems, 200, "round %d", round)
		require.NoError(t, reloaded.Close())

		tmps, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
		require.NoError(t, err)
		assert.Empty(t, tmps)
	}
}

func TestFileStorage_DebouncedSave(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := newTestFileStorage(t, dir)
	defer s.Close()

	require.NoError(t, s.CreateGoal(ctx, &internal.Goal{UserID: 1, Name: "g", TargetProblems: 10, Status: internal.GoalStatusActive}))

	assert.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(dir, goalsFile))
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestFileStorage_Subscribe(t *testing.T) {
	ctx := context.Background()
	s := newTestFileStorage(t, t.TempDir())

	ch := s.Subscribe()
	require.NoError(t, s.CreateProblem(ctx, sampleProblem(7, "Two Sum", time.Now())))

	select {
	case userID := <-ch:
		assert.Equal(t, int64(7), userID)
	case <-time.After(time.Second):
		t.Fatal("no change notification")
	}

	require.NoError(t, s.Close())
	_, open := <-ch
	assert.False(t, open, "channel closes with the store")
}

func TestFileStorage_MissingRecords(t *testing.T) {
	ctx := context.Background()
	s := newTestFileStorage(t, t.TempDir())
	defer s.Close()

	_, err := s.GetGoal(ctx, 1, 99)
	assert.ErrorIs(t, err, internal.ErrNotFound)
	_, err = s.GetUser(ctx, 1)
	assert.ErrorIs(t, err, internal.ErrNotFound)
	_, err = s.GetSettings(ctx, 1)
	assert.ErrorIs(t, err, internal.ErrNotFound)
	assert.ErrorIs(t, s.UpdateGoal(ctx, &internal.Goal{ID: 99, UserID: 1}), internal.ErrNotFound)
}
