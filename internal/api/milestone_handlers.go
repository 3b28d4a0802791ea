package api

import (
	"github.com/gin-gonic/gin"
	"github.com/yourname/leettrack/internal/auth"
	"github.com/yourname/leettrack/internal/service"
)

func GetMilestones(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := service.DetectMilestones(c.Request.Context(), app.Store(), auth.UserID(c), app.DefaultDailyGoal(), app.Clock().Now())
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to detect milestones")
			return
		}
		HandleSuccess(c, app.Logger(), events, nil)
	}
}

func PostCelebrate(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.CelebrateRequest
		if err := bindJSON(c, &req); err != nil {
			HandleError(c, app.Logger(), err, "Invalid milestone")
			return
		}
		sent, err := service.CelebrateMilestone(c.Request.Context(), app.Store(), app.Notifier(), auth.UserID(c), &req)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to send milestone celebration")
			return
		}
		msg := "Milestone celebration sent!"
		if !sent {
			msg = "Email reminders not configured"
		}
		HandleSuccess(c, app.Logger(), gin.H{"success": sent, "message": msg}, nil)
	}
}

func GetReminders(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		pending, err := service.PendingReminders(c.Request.Context(), app.Store(), auth.UserID(c), app.Clock().Now())
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to fetch reminders")
			return
		}
		HandleSuccess(c, app.Logger(), pending, map[string]any{"count": len(pending)})
	}
}

func PostSendReminders(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := service.SendReminders(c.Request.Context(), app.Store(), app.Notifier(), auth.UserID(c), app.DefaultDailyGoal(), app.Clock().Now())
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to send reminders")
			return
		}
		HandleSuccess(c, app.Logger(), res, nil)
	}
}
