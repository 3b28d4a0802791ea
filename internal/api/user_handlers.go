package api

import (
	"github.com/gin-gonic/gin"
	"github.com/yourname/leettrack/internal/auth"
	"github.com/yourname/leettrack/internal/service"
)

func GetUser(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := service.EnsureUser(c.Request.Context(), app.Store(), auth.UserID(c), app.DefaultDailyGoal(), app.Clock().Now())
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to fetch user")
			return
		}
		HandleSuccess(c, app.Logger(), user, nil)
	}
}

func PutUser(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.UserUpdate
		if err := bindJSON(c, &req); err != nil {
			HandleError(c, app.Logger(), err, "Failed to update user")
			return
		}
		ctx := c.Request.Context()
		userID := auth.UserID(c)
		if _, err := service.EnsureUser(ctx, app.Store(), userID, app.DefaultDailyGoal(), app.Clock().Now()); err != nil {
			HandleError(c, app.Logger(), err, "Failed to fetch user")
			return
		}
		user, err := service.UpdateUser(ctx, app.Store(), userID, &req)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to update user")
			return
		}
		HandleSuccess(c, app.Logger(), user, nil)
	}
}

func GetSettings(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, err := service.GetSettings(c.Request.Context(), app.Store(), auth.UserID(c))
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to fetch settings")
			return
		}
		HandleSuccess(c, app.Logger(), st, nil)
	}
}

func PutSettings(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.SettingsUpdate
		if err := bindJSON(c, &req); err != nil {
			HandleError(c, app.Logger(), err, "Failed to update settings")
			return
		}
		st, err := service.UpdateSettings(c.Request.Context(), app.Store(), auth.UserID(c), &req)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to update settings")
			return
		}
		HandleSuccess(c, app.Logger(), st, nil)
	}
}
