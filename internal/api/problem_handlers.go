package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yourname/leettrack/internal"
	"github.com/yourname/leettrack/internal/auth"
	"github.com/yourname/leettrack/internal/service"
	"github.com/yourname/leettrack/internal/storage"
	"github.com/yourname/leettrack/internal/upload"
)

// bindProblemBody decodes a JSON body, or a multipart form whose topics and
// tags fields hold JSON arrays. A "screenshot" file in the form is stored and
// its URL returned.
func bindProblemBody(c *gin.Context, app App, v any) (string, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		return "", bindJSON(c, v)
	}

	form, err := c.MultipartForm()
	if err != nil {
		return "", fmt.Errorf("%w: %v", internal.ErrInvalidInput, err)
	}
	fields := make(map[string]any, len(form.Value))
	for key, vals := range form.Value {
		if len(vals) == 0 || vals[0] == "" {
			continue
		}
		val := vals[0]
		switch key {
		case "topics", "tags":
			var list []string
			if err := json.Unmarshal([]byte(val), &list); err != nil {
				return "", fmt.Errorf("%w: %s must be a JSON array of strings", internal.ErrInvalidInput, key)
			}
			fields[key] = list
		case "timeSpent":
			n, err := strconv.Atoi(val)
			if err != nil {
				return "", fmt.Errorf("%w: timeSpent must be an integer", internal.ErrInvalidInput)
			}
			fields[key] = n
		default:
			fields[key] = val
		}
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return "", err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return "", fmt.Errorf("%w: %v", internal.ErrInvalidInput, err)
	}

	fh, err := c.FormFile("screenshot")
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", internal.ErrInvalidInput, err)
	}
	return app.Uploads().SaveFile(fh)
}

// checkScreenshotURL refuses an upload URL sent in the body unless it is the
// one the problem already has. Stored screenshots only come from uploads.
func checkScreenshotURL(url *string, current string) error {
	if url == nil || *url == current || !strings.HasPrefix(*url, upload.URLPrefix) {
		return nil
	}
	return upload.ErrForeign
}

func removeScreenshot(app App, url string) {
	if url == "" {
		return
	}
	if err := app.Uploads().Remove(url); err != nil {
		app.Logger().Warnf("failed to remove screenshot %s: %v", url, err)
	}
}

func ListProblems(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter storage.ProblemFilter
		if err := c.ShouldBindQuery(&filter); err != nil {
			HandleError(c, app.Logger(), fmt.Errorf("%w: %v", internal.ErrInvalidInput, err), "Invalid filter")
			return
		}
		problems, err := service.ListProblems(c.Request.Context(), app.Store(), auth.UserID(c), filter)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to fetch problems")
			return
		}
		HandleSuccess(c, app.Logger(), problems, map[string]any{"count": len(problems)})
	}
}

func GetProblem(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c)
		if err != nil {
			HandleError(c, app.Logger(), err, "Invalid problem id")
			return
		}
		p, err := app.Store().GetProblem(c.Request.Context(), auth.UserID(c), id)
		if err != nil {
			HandleError(c, app.Logger(), err, "Problem not found")
			return
		}
		HandleSuccess(c, app.Logger(), p, nil)
	}
}

func PostProblem(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.ProblemRequest
		shot, err := bindProblemBody(c, app, &req)
		if err != nil {
			HandleError(c, app.Logger(), err, "Invalid problem data")
			return
		}
		if shot != "" {
			req.ScreenshotURL = shot
		} else if err := checkScreenshotURL(&req.ScreenshotURL, ""); err != nil {
			HandleError(c, app.Logger(), err, "Invalid problem data")
			return
		}

		p, err := service.CreateProblem(c.Request.Context(), app.Store(), auth.UserID(c), &req, app.Clock().Now())
		if err != nil {
			removeScreenshot(app, shot)
			HandleError(c, app.Logger(), err, "Invalid problem data")
			return
		}
		HandleCreated(c, app.Logger(), p)
	}
}

func PutProblem(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c)
		if err != nil {
			HandleError(c, app.Logger(), err, "Invalid problem id")
			return
		}
		var req service.ProblemUpdate
		shot, err := bindProblemBody(c, app, &req)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to update problem")
			return
		}
		ctx := c.Request.Context()
		userID := auth.UserID(c)
		if shot != "" {
			req.ScreenshotURL = &shot
		} else if req.ScreenshotURL != nil {
			existing, err := app.Store().GetProblem(ctx, userID, id)
			if err != nil {
				HandleError(c, app.Logger(), err, "Failed to update problem")
				return
			}
			if err := checkScreenshotURL(req.ScreenshotURL, existing.ScreenshotURL); err != nil {
				HandleError(c, app.Logger(), err, "Failed to update problem")
				return
			}
		}

		p, old, err := service.UpdateProblem(ctx, app.Store(), userID, id, &req)
		if err != nil {
			removeScreenshot(app, shot)
			HandleError(c, app.Logger(), err, "Failed to update problem")
			return
		}
		if old != p.ScreenshotURL {
			removeScreenshot(app, old)
		}
		HandleSuccess(c, app.Logger(), p, nil)
	}
}

func DeleteProblem(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c)
		if err != nil {
			HandleError(c, app.Logger(), err, "Invalid problem id")
			return
		}
		ctx := c.Request.Context()
		userID := auth.UserID(c)
		p, err := app.Store().GetProblem(ctx, userID, id)
		if err != nil {
			HandleError(c, app.Logger(), err, "Problem not found")
			return
		}
		if err := app.Store().DeleteProblem(ctx, userID, id); err != nil {
			HandleError(c, app.Logger(), err, "Failed to delete problem")
			return
		}
		removeScreenshot(app, p.ScreenshotURL)
		c.Status(http.StatusNoContent)
	}
}
