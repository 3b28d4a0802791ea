package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/yourname/leettrack/internal"
	"github.com/yourname/leettrack/internal/storage"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// notblank rejects strings that are only whitespace
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// invalid wraps a validator failure in internal.ErrInvalidInput.
func invalid(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%w: %s", internal.ErrInvalidInput, strings.Join(msgs, "; "))
	}
	return fmt.Errorf("%w: %v", internal.ErrInvalidInput, err)
}

type ProblemRequest struct {
	Name              string     `json:"name" validate:"required,notblank,max=200"`
	Difficulty        string     `json:"difficulty" validate:"required,oneof=Easy Medium Hard"`
	Status            string     `json:"status" validate:"omitempty,oneof=Solved 'In Progress'"`
	Pattern           string     `json:"pattern" validate:"max=100"`
	Topics            []string   `json:"topics" validate:"dive,notblank"`
	Tags              []string   `json:"tags" validate:"dive,notblank"`
	TimeComplexity    string     `json:"timeComplexity"`
	SpaceComplexity   string     `json:"spaceComplexity"`
	WhyApplies        string     `json:"whyApplies"`
	Variations        string     `json:"variations"`
	ThoughtProcess    string     `json:"thoughtProcess"`
	Pseudocode        string     `json:"pseudocode"`
	ScreenshotURL     string     `json:"screenshotUrl"`
	ReviewedSolution1 string     `json:"reviewedSolution1"`
	ReviewedSolution2 string     `json:"reviewedSolution2"`
	ReminderDate      *time.Time `json:"reminderDate"`
	TimeSpent         *int       `json:"timeSpent" validate:"omitnil,gte=0"`
	SolvedAt          *time.Time `json:"solvedAt"`
}

// ProblemUpdate is a partial edit; nil fields are left alone.
type ProblemUpdate struct {
	Name              *string    `json:"name" validate:"omitnil,notblank,max=200"`
	Difficulty        *string    `json:"difficulty" validate:"omitnil,oneof=Easy Medium Hard"`
	Status            *string    `json:"status" validate:"omitnil,oneof=Solved 'In Progress'"`
	Pattern           *string    `json:"pattern" validate:"omitnil,max=100"`
	Topics            []string   `json:"topics" validate:"omitempty,dive,notblank"`
	Tags              []string   `json:"tags" validate:"omitempty,dive,notblank"`
	TimeComplexity    *string    `json:"timeComplexity"`
	SpaceComplexity   *string    `json:"spaceComplexity"`
	WhyApplies        *string    `json:"whyApplies"`
	Variations        *string    `json:"variations"`
	ThoughtProcess    *string    `json:"thoughtProcess"`
	Pseudocode        *string    `json:"pseudocode"`
	ScreenshotURL     *string    `json:"screenshotUrl"`
	ReviewedSolution1 *string    `json:"reviewedSolution1"`
	ReviewedSolution2 *string    `json:"reviewedSolution2"`
	ReminderDate      *time.Time `json:"reminderDate"`
	TimeSpent         *int       `json:"timeSpent" validate:"omitnil,gte=0"`
	SolvedAt          *time.Time `json:"solvedAt"`
}

func ValidateProblemRequest(req *ProblemRequest) error {
	if err := validate.Struct(req); err != nil {
		return invalid(err)
	}
	return nil
}

func ValidateProblemUpdate(req *ProblemUpdate) error {
	if err := validate.Struct(req); err != nil {
		return invalid(err)
	}
	return nil
}

func CreateProblem(ctx context.Context, repo storage.ProblemRepository, userID int64, req *ProblemRequest, now time.Time) (*internal.Problem, error) {
	if err := ValidateProblemRequest(req); err != nil {
		return nil, err
	}
	p := &internal.Problem{
		UserID:            userID,
		Name:              strings.TrimSpace(req.Name),
		Difficulty:        internal.Difficulty(req.Difficulty),
		Status:            req.Status,
		Pattern:           req.Pattern,
		Topics:            orEmpty(req.Topics),
		Tags:              orEmpty(req.Tags),
		TimeComplexity:    req.TimeComplexity,
		SpaceComplexity:   req.SpaceComplexity,
		WhyApplies:        req.WhyApplies,
		Variations:        req.Variations,
		ThoughtProcess:    req.ThoughtProcess,
		Pseudocode:        req.Pseudocode,
		ScreenshotURL:     req.ScreenshotURL,
		ReviewedSolution1: req.ReviewedSolution1,
		ReviewedSolution2: req.ReviewedSolution2,
		ReminderDate:      req.ReminderDate,
		TimeSpent:         req.TimeSpent,
		SolvedAt:          now,
		CreatedAt:         now,
	}
	if p.Status == "" {
		p.Status = internal.ProblemStatusSolved
	}
	if req.SolvedAt != nil {
		p.SolvedAt = *req.SolvedAt
	}
	if err := repo.CreateProblem(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ApplyProblemUpdate copies the set fields of u onto p.
func ApplyProblemUpdate(p *internal.Problem, u *ProblemUpdate) {
	setTrimmed(&p.Name, u.Name)
	if u.Difficulty != nil {
		p.Difficulty = internal.Difficulty(*u.Difficulty)
	}
	setString(&p.Status, u.Status)
	setString(&p.Pattern, u.Pattern)
	if u.Topics != nil {
		p.Topics = u.Topics
	}
	if u.Tags != nil {
		p.Tags = u.Tags
	}
	setString(&p.TimeComplexity, u.TimeComplexity)
	setString(&p.SpaceComplexity, u.SpaceComplexity)
	setString(&p.WhyApplies, u.WhyApplies)
	setString(&p.Variations, u.Variations)
	setString(&p.ThoughtProcess, u.ThoughtProcess)
	setString(&p.Pseudocode, u.Pseudocode)
	setString(&p.ScreenshotURL, u.ScreenshotURL)
	setString(&p.ReviewedSolution1, u.ReviewedSolution1)
	setString(&p.ReviewedSolution2, u.ReviewedSolution2)
	if u.ReminderDate != nil {
		p.ReminderDate = u.ReminderDate
	}
	if u.TimeSpent != nil {
		p.TimeSpent = u.TimeSpent
	}
	if u.SolvedAt != nil {
		p.SolvedAt = *u.SolvedAt
	}
}

// UpdateProblem validates u and applies it to the stored problem. The
// previous screenshot URL is returned so callers can clean it up.
func UpdateProblem(ctx context.Context, repo storage.ProblemRepository, userID, id int64, u *ProblemUpdate) (*internal.Problem, string, error) {
	if err := ValidateProblemUpdate(u); err != nil {
		return nil, "", err
	}
	p, err := repo.GetProblem(ctx, userID, id)
	if err != nil {
		return nil, "", err
	}
	oldScreenshot := p.ScreenshotURL
	ApplyProblemUpdate(p, u)
	if err := repo.UpdateProblem(ctx, p); err != nil {
		return nil, "", err
	}
	return p, oldScreenshot, nil
}

func ListProblems(ctx context.Context, repo storage.ProblemRepository, userID int64, f storage.ProblemFilter) ([]internal.Problem, error) {
	problems, err := repo.ListProblems(ctx, userID)
	if err != nil {
		return nil, err
	}
	return storage.FilterProblems(problems, f), nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setTrimmed(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
