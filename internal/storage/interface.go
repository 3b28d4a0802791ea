package storage

import (
	"context"

	"github.com/yourname/leettrack/internal"
)

// Records are scoped by user id. Lookups of a record owned by another user
// return internal.ErrNotFound.
type ProblemRepository interface {
	CreateProblem(ctx context.Context, p *internal.Problem) error
	GetProblem(ctx context.Context, userID, id int64) (*internal.Problem, error)
	UpdateProblem(ctx context.Context, p *internal.Problem) error
	DeleteProblem(ctx context.Context, userID, id int64) error
	ListProblems(ctx context.Context, userID int64) ([]internal.Problem, error)
}

type GoalRepository interface {
	CreateGoal(ctx context.Context, g *internal.Goal) error
	GetGoal(ctx context.Context, userID, id int64) (*internal.Goal, error)
	UpdateGoal(ctx context.Context, g *internal.Goal) error
	DeleteGoal(ctx context.Context, userID, id int64) error
	ListGoals(ctx context.Context, userID int64) ([]internal.Goal, error)
}

type UserRepository interface {
	GetUser(ctx context.Context, id int64) (*internal.User, error)
	SaveUser(ctx context.Context, u *internal.User) error
	ListUsers(ctx context.Context) ([]internal.User, error)
	GetSettings(ctx context.Context, userID int64) (*internal.UserSettings, error)
	SaveSettings(ctx context.Context, s *internal.UserSettings) error
}

type Store interface {
	ProblemRepository
	GoalRepository
	UserRepository
	Close() error
}

// ChangeNotifier is implemented by stores that can report their own writes.
// The channel receives the owning user id after each successful mutation;
// sends never block, so a slow reader may miss ticks.
type ChangeNotifier interface {
	Subscribe() <-chan int64
}
