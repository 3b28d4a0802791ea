package service

import (
	"context"
	"strings"
	"time"

	"github.com/yourname/leettrack/internal"
	"github.com/yourname/leettrack/internal/analytics"
	"github.com/yourname/leettrack/internal/storage"
)

type GoalRequest struct {
	Name            string     `json:"name" validate:"required,notblank,max=200"`
	Description     string     `json:"description" validate:"max=2000"`
	TargetProblems  int        `json:"targetProblems" validate:"required,gte=1"`
	CurrentProgress int        `json:"currentProgress" validate:"gte=0"`
	Deadline        *time.Time `json:"deadline"`
	Status          string     `json:"status" validate:"omitempty,oneof=Active Completed Paused"`
	ReminderDate    *time.Time `json:"reminderDate"`
}

// GoalUpdate is a partial edit; nil fields are left alone.
type GoalUpdate struct {
	Name            *string    `json:"name" validate:"omitnil,notblank,max=200"`
	Description     *string    `json:"description" validate:"omitnil,max=2000"`
	TargetProblems  *int       `json:"targetProblems" validate:"omitnil,gte=1"`
	CurrentProgress *int       `json:"currentProgress" validate:"omitnil,gte=0"`
	Deadline        *time.Time `json:"deadline"`
	Status          *string    `json:"status" validate:"omitnil,oneof=Active Completed Paused"`
	ReminderDate    *time.Time `json:"reminderDate"`
}

// GoalProgress is a goal together with its pace at the time of the request.
type GoalProgress struct {
	internal.Goal
	Pace analytics.GoalPace `json:"pace"`
}

func ValidateGoalRequest(req *GoalRequest) error {
	if err := validate.Struct(req); err != nil {
		return invalid(err)
	}
	return nil
}

func ValidateGoalUpdate(req *GoalUpdate) error {
	if err := validate.Struct(req); err != nil {
		return invalid(err)
	}
	return nil
}

func CreateGoal(ctx context.Context, repo storage.GoalRepository, userID int64, req *GoalRequest, now time.Time) (*internal.Goal, error) {
	if err := ValidateGoalRequest(req); err != nil {
		return nil, err
	}
	goal := &internal.Goal{
		UserID:          userID,
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		TargetProblems:  req.TargetProblems,
		CurrentProgress: req.CurrentProgress,
		Deadline:        req.Deadline,
		Status:          req.Status,
		ReminderDate:    req.ReminderDate,
		CreatedAt:       now,
	}
	if goal.Status == "" {
		goal.Status = internal.GoalStatusActive
	}
	if err := repo.CreateGoal(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

func UpdateGoal(ctx context.Context, repo storage.GoalRepository, userID, id int64, u *GoalUpdate) (*internal.Goal, error) {
	if err := ValidateGoalUpdate(u); err != nil {
		return nil, err
	}
	goal, err := repo.GetGoal(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	setTrimmed(&goal.Name, u.Name)
	setString(&goal.Description, u.Description)
	if u.TargetProblems != nil {
		goal.TargetProblems = *u.TargetProblems
	}
	if u.CurrentProgress != nil {
		goal.CurrentProgress = *u.CurrentProgress
	}
	if u.Deadline != nil {
		goal.Deadline = u.Deadline
	}
	setString(&goal.Status, u.Status)
	if u.ReminderDate != nil {
		goal.ReminderDate = u.ReminderDate
	}
	if err := repo.UpdateGoal(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

// CalculateGoalProgress attaches the display pace to a goal.
func CalculateGoalProgress(goal internal.Goal, now time.Time) GoalProgress {
	return GoalProgress{
		Goal: goal,
		Pace: analytics.Pace(goal, now).Clamped(),
	}
}

func ListGoalProgress(ctx context.Context, repo storage.GoalRepository, userID int64, now time.Time) ([]GoalProgress, error) {
	goals, err := repo.ListGoals(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]GoalProgress, 0, len(goals))
	for _, g := range goals {
		out = append(out, CalculateGoalProgress(g, now))
	}
	return out, nil
}
