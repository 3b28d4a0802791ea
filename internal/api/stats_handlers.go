package api

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/yourname/leettrack/internal"
	"github.com/yourname/leettrack/internal/auth"
	"github.com/yourname/leettrack/internal/service"
)

func GetStats(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		userID := auth.UserID(c)
		stats, err := service.CalculateUserStats(ctx, app.Store(), userID, app.Clock().Now())
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to fetch stats")
			return
		}

		user, err := app.Store().GetUser(ctx, userID)
		switch {
		case errors.Is(err, internal.ErrNotFound):
			user = nil
		case err != nil:
			HandleError(c, app.Logger(), err, "Failed to fetch user")
			return
		}
		dailyGoal := service.ReminderDailyGoal(user, app.DefaultDailyGoal())
		meta := map[string]any{
			"dailyGoal":      dailyGoal,
			"remainingToday": service.RemainingToday(dailyGoal, stats.TodaysSolved),
		}
		HandleSuccess(c, app.Logger(), stats, meta)
	}
}

func GetPatternMastery(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := service.CalculatePatternMastery(c.Request.Context(), app.Store(), auth.UserID(c), app.Catalog())
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to fetch pattern mastery")
			return
		}
		HandleSuccess(c, app.Logger(), report, nil)
	}
}
