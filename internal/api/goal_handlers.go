package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourname/leettrack/internal/analytics"
	"github.com/yourname/leettrack/internal/auth"
	"github.com/yourname/leettrack/internal/service"
)

func ListGoals(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		goals, err := service.ListGoalProgress(c.Request.Context(), app.Store(), auth.UserID(c), app.Clock().Now())
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to fetch goals")
			return
		}
		HandleSuccess(c, app.Logger(), goals, map[string]any{"count": len(goals)})
	}
}

func PostGoal(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.GoalRequest
		if err := bindJSON(c, &req); err != nil {
			HandleError(c, app.Logger(), err, "Invalid goal data")
			return
		}

		now := app.Clock().Now()
		goal, err := service.CreateGoal(c.Request.Context(), app.Store(), auth.UserID(c), &req, now)
		if err != nil {
			HandleError(c, app.Logger(), err, "Invalid goal data")
			return
		}

		HandleCreated(c, app.Logger(), service.CalculateGoalProgress(*goal, now))
	}
}

func GetGoal(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c)
		if err != nil {
			HandleError(c, app.Logger(), err, "Invalid goal id")
			return
		}
		goal, err := app.Store().GetGoal(c.Request.Context(), auth.UserID(c), id)
		if err != nil {
			HandleError(c, app.Logger(), err, "Goal not found")
			return
		}
		HandleSuccess(c, app.Logger(), service.CalculateGoalProgress(*goal, app.Clock().Now()), nil)
	}
}

// GetGoalPace returns the raw pace; remaining and dailyTarget go negative
// once the goal is exceeded.
func GetGoalPace(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c)
		if err != nil {
			HandleError(c, app.Logger(), err, "Invalid goal id")
			return
		}
		goal, err := app.Store().GetGoal(c.Request.Context(), auth.UserID(c), id)
		if err != nil {
			HandleError(c, app.Logger(), err, "Goal not found")
			return
		}
		HandleSuccess(c, app.Logger(), analytics.Pace(*goal, app.Clock().Now()), nil)
	}
}

func PutGoal(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c)
		if err != nil {
			HandleError(c, app.Logger(), err, "Invalid goal id")
			return
		}
		var req service.GoalUpdate
		if err := bindJSON(c, &req); err != nil {
			HandleError(c, app.Logger(), err, "Failed to update goal")
			return
		}
		goal, err := service.UpdateGoal(c.Request.Context(), app.Store(), auth.UserID(c), id, &req)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to update goal")
			return
		}
		HandleSuccess(c, app.Logger(), service.CalculateGoalProgress(*goal, app.Clock().Now()), nil)
	}
}

func DeleteGoal(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c)
		if err != nil {
			HandleError(c, app.Logger(), err, "Invalid goal id")
			return
		}
		if err := app.Store().DeleteGoal(c.Request.Context(), auth.UserID(c), id); err != nil {
			HandleError(c, app.Logger(), err, "Goal not found")
			return
		}
		c.Status(http.StatusNoContent)
	}
}
