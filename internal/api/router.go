package api

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/yourname/leettrack/internal/auth"
	"github.com/yourname/leettrack/internal/upload"
)

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID", auth.UserIDHeader},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

// NewRouter wires every route onto a fresh gin engine.
func NewRouter(app App, users auth.Provider, corsOrigins []string) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = 2 * upload.MaxScreenshotSize
	r.Use(gin.Recovery(), RequestIDMiddleware(), LoggerMiddleware(app.Logger()), corsMiddleware(corsOrigins))

	r.GET("/healthz", func(c *gin.Context) {
		HandleSuccess(c, app.Logger(), gin.H{"status": "ok"}, nil)
	})
	r.Static(upload.URLPrefix, app.Uploads().Dir())

	routes := r.Group("/api", auth.UserMiddleware(users))
	routes.GET("/user", GetUser(app))
	routes.PUT("/user", PutUser(app))
	routes.GET("/settings", GetSettings(app))
	routes.PUT("/settings", PutSettings(app))

	routes.GET("/problems", ListProblems(app))
	routes.POST("/problems", PostProblem(app))
	routes.GET("/problems/:id", GetProblem(app))
	routes.PUT("/problems/:id", PutProblem(app))
	routes.DELETE("/problems/:id", DeleteProblem(app))

	routes.GET("/goals", ListGoals(app))
	routes.POST("/goals", PostGoal(app))
	routes.GET("/goals/:id", GetGoal(app))
	routes.GET("/goals/:id/pace", GetGoalPace(app))
	routes.PUT("/goals/:id", PutGoal(app))
	routes.DELETE("/goals/:id", DeleteGoal(app))

	routes.GET("/stats", GetStats(app))
	routes.GET("/stats/patterns", GetPatternMastery(app))

	routes.GET("/milestones", GetMilestones(app))
	routes.POST("/milestones/celebrate", PostCelebrate(app))
	routes.GET("/reminders", GetReminders(app))
	routes.POST("/reminders/send", PostSendReminders(app))

	return r
}
