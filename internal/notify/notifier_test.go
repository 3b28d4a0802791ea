package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourname/leettrack/internal"
	"github.com/yourname/leettrack/internal/config"
)

func TestRender_Daily(t *testing.T) {
	msg, err := Render(KindDaily, DailyData{RemainingToday: 3, Streak: 12}, "http://localhost:5000")
	require.NoError(t, err)
	assert.Contains(t, msg.Subject, "Time to code")
	assert.Contains(t, msg.HTML, "<strong>3</strong> problems left")
	assert.Contains(t, msg.HTML, "<strong>12 days</strong>")
	assert.Contains(t, msg.HTML, `href="http://localhost:5000"`)
}

func TestRender_GoalEscapesName(t *testing.T) {
	msg, err := Render(KindGoal, GoalData{GoalName: "<b>Blind 75</b>", Progress: 40, Target: 75, Deadline: "No deadline"}, "")
	require.NoError(t, err)
	assert.Contains(t, msg.HTML, "&lt;b&gt;Blind 75&lt;/b&gt;")
	assert.Contains(t, msg.HTML, "40/75")
	assert.Contains(t, msg.HTML, "No deadline")
}

func TestRender_Milestone(t *testing.T) {
	msg, err := Render(KindMilestone, MilestoneData{Milestone: "7-Day Streak!", Description: "One week of consistent practice!", TotalSolved: 42}, "")
	require.NoError(t, err)
	assert.Contains(t, msg.Subject, "Milestone Achieved")
	assert.Contains(t, msg.HTML, "7-Day Streak!")
	assert.Contains(t, msg.HTML, "One week of consistent practice!")
	assert.Contains(t, msg.HTML, "<strong>42</strong>")
}

func TestRender_Errors(t *testing.T) {
	_, err := Render(Kind("weekly"), DailyData{}, "")
	assert.Error(t, err)

	_, err = Render(KindGoal, DailyData{}, "")
	assert.Error(t, err)
}

func TestNew_FallsBackToLogNotifier(t *testing.T) {
	n, err := New(&config.Config{AppURL: "http://localhost:5000"}, internal.NewNopLogger())
	require.NoError(t, err)
	require.IsType(t, &LogNotifier{}, n)
	assert.NoError(t, n.Send(context.Background(), "me@example.com", KindDaily, DailyData{RemainingToday: 1}))
}

func TestNew_SMTP(t *testing.T) {
	cfg := &config.Config{SMTP: config.SMTPConfig{Host: "smtp.example.com", Port: 587, User: "u", Password: "p", From: "noreply@example.com"}}
	n, err := New(cfg, internal.NewNopLogger())
	require.NoError(t, err)
	assert.IsType(t, &SMTPMailer{}, n)
}
