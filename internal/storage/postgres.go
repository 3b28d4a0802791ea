package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yourname/leettrack/internal"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
	id BIGINT PRIMARY KEY,
	username TEXT NOT NULL,
	name TEXT NOT NULL,
	email TEXT NOT NULL DEFAULT '',
	avatar TEXT NOT NULL DEFAULT '',
	daily_goal INTEGER NOT NULL DEFAULT 5,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS user_settings (
	user_id BIGINT PRIMARY KEY,
	theme TEXT NOT NULL DEFAULT 'dark',
	notifications BOOLEAN NOT NULL DEFAULT TRUE,
	email_reminders BOOLEAN NOT NULL DEFAULT FALSE,
	reminder_time TEXT NOT NULL DEFAULT '',
	reminder_email TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS problems (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL,
	name TEXT NOT NULL,
	difficulty TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'Solved',
	pattern TEXT NOT NULL DEFAULT '',
	topics TEXT[] NOT NULL DEFAULT '{}',
	tags TEXT[] NOT NULL DEFAULT '{}',
	time_complexity TEXT NOT NULL DEFAULT '',
	space_complexity TEXT NOT NULL DEFAULT '',
	why_applies TEXT NOT NULL DEFAULT '',
	variations TEXT NOT NULL DEFAULT '',
	thought_process TEXT NOT NULL DEFAULT '',
	pseudocode TEXT NOT NULL DEFAULT '',
	screenshot_url TEXT NOT NULL DEFAULT '',
	reviewed_solution_1 TEXT NOT NULL DEFAULT '',
	reviewed_solution_2 TEXT NOT NULL DEFAULT '',
	reminder_date TIMESTAMPTZ,
	time_spent INTEGER,
	solved_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS problems_user_solved_idx ON problems (user_id, solved_at DESC);
CREATE TABLE IF NOT EXISTS goals (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	target_problems INTEGER NOT NULL,
	current_progress INTEGER NOT NULL DEFAULT 0,
	deadline TIMESTAMPTZ,
	status TEXT NOT NULL DEFAULT 'Active',
	reminder_date TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL
);
`

const problemColumns = `id, user_id, name, difficulty, status, pattern, topics, tags,
	time_complexity, space_complexity, why_applies, variations, thought_process, pseudocode,
	screenshot_url, reviewed_solution_1, reviewed_solution_2, reminder_date, time_spent,
	solved_at, created_at`

const goalColumns = `id, user_id, name, description, target_problems, current_progress,
	deadline, status, reminder_date, created_at`

// PostgresStorage does not implement ChangeNotifier: other processes may
// write the same database, so milestone checks poll it instead.
type PostgresStorage struct {
	pool   *pgxpool.Pool
	logger internal.Logger
}

func NewPostgresStorage(ctx context.Context, dsn string, logger internal.Logger) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		logger.Errorf("failed to create postgres schema: %v", err)
		return nil, fmt.Errorf("storage: create schema: %w", err)
	}
	return &PostgresStorage{pool: pool, logger: logger}, nil
}

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}

func notFoundOr(err error, what string, id int64) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("storage: %s %d: %w", what, id, internal.ErrNotFound)
	}
	return err
}

func scanProblem(row pgx.Row) (internal.Problem, error) {
	var pr internal.Problem
	var difficulty string
	err := row.Scan(&pr.ID, &pr.UserID, &pr.Name, &difficulty, &pr.Status, &pr.Pattern, &pr.Topics, &pr.Tags,
		&pr.TimeComplexity, &pr.SpaceComplexity, &pr.WhyApplies, &pr.Variations, &pr.ThoughtProcess, &pr.Pseudocode,
		&pr.ScreenshotURL, &pr.ReviewedSolution1, &pr.ReviewedSolution2, &pr.ReminderDate, &pr.TimeSpent,
		&pr.SolvedAt, &pr.CreatedAt)
	pr.Difficulty = internal.Difficulty(difficulty)
	return pr, err
}

func scanGoal(row pgx.Row) (internal.Goal, error) {
	var g internal.Goal
	err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.Description, &g.TargetProblems, &g.CurrentProgress,
		&g.Deadline, &g.Status, &g.ReminderDate, &g.CreatedAt)
	return g, err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// --- ProblemRepository ---
func (p *PostgresStorage) CreateProblem(ctx context.Context, pr *internal.Problem) error {
	err := p.pool.QueryRow(ctx, `INSERT INTO problems (user_id, name, difficulty, status, pattern, topics, tags,
		time_complexity, space_complexity, why_applies, variations, thought_process, pseudocode,
		screenshot_url, reviewed_solution_1, reviewed_solution_2, reminder_date, time_spent, solved_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20) RETURNING id`,
		pr.UserID, pr.Name, string(pr.Difficulty), pr.Status, pr.Pattern, nonNil(pr.Topics), nonNil(pr.Tags),
		pr.TimeComplexity, pr.SpaceComplexity, pr.WhyApplies, pr.Variations, pr.ThoughtProcess, pr.Pseudocode,
		pr.ScreenshotURL, pr.ReviewedSolution1, pr.ReviewedSolution2, pr.ReminderDate, pr.TimeSpent, pr.SolvedAt, pr.CreatedAt,
	).Scan(&pr.ID)
	if err != nil {
		p.logger.Errorf("failed to insert problem: %v", err)
		return err
	}
	return nil
}

func (p *PostgresStorage) GetProblem(ctx context.Context, userID, id int64) (*internal.Problem, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+problemColumns+` FROM problems WHERE id = $1 AND user_id = $2`, id, userID)
	pr, err := scanProblem(row)
	if err != nil {
		return nil, notFoundOr(err, "problem", id)
	}
	return &pr, nil
}

func (p *PostgresStorage) UpdateProblem(ctx context.Context, pr *internal.Problem) error {
	tag, err := p.pool.Exec(ctx, `UPDATE problems SET name = $3, difficulty = $4, status = $5, pattern = $6,
		topics = $7, tags = $8, time_complexity = $9, space_complexity = $10, why_applies = $11, variations = $12,
		thought_process = $13, pseudocode = $14, screenshot_url = $15, reviewed_solution_1 = $16,
		reviewed_solution_2 = $17, reminder_date = $18, time_spent = $19, solved_at = $20
		WHERE id = $1 AND user_id = $2`,
		pr.ID, pr.UserID, pr.Name, string(pr.Difficulty), pr.Status, pr.Pattern, nonNil(pr.Topics), nonNil(pr.Tags),
		pr.TimeComplexity, pr.SpaceComplexity, pr.WhyApplies, pr.Variations, pr.ThoughtProcess, pr.Pseudocode,
		pr.ScreenshotURL, pr.ReviewedSolution1, pr.ReviewedSolution2, pr.ReminderDate, pr.TimeSpent, pr.SolvedAt)
	if err != nil {
		p.logger.Errorf("failed to update problem: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("storage: problem %d: %w", pr.ID, internal.ErrNotFound)
	}
	return nil
}

func (p *PostgresStorage) DeleteProblem(ctx context.Context, userID, id int64) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM problems WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		p.logger.Errorf("failed to delete problem: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("storage: problem %d: %w", id, internal.ErrNotFound)
	}
	return nil
}

func (p *PostgresStorage) ListProblems(ctx context.Context, userID int64) ([]internal.Problem, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+problemColumns+` FROM problems WHERE user_id = $1 ORDER BY solved_at DESC, id DESC`, userID)
	if err != nil {
		p.logger.Errorf("failed to query problems: %v", err)
		return nil, err
	}
	defer rows.Close()

	problems := []internal.Problem{}
	for rows.Next() {
		pr, err := scanProblem(rows)
		if err != nil {
			p.logger.Errorf("failed to scan problem: %v", err)
			return nil, err
		}
		problems = append(problems, pr)
	}
	return problems, rows.Err()
}

// --- GoalRepository ---
func (p *PostgresStorage) CreateGoal(ctx context.Context, g *internal.Goal) error {
	err := p.pool.QueryRow(ctx, `INSERT INTO goals (user_id, name, description, target_problems, current_progress,
		deadline, status, reminder_date, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		g.UserID, g.Name, g.Description, g.TargetProblems, g.CurrentProgress, g.Deadline, g.Status, g.ReminderDate, g.CreatedAt,
	).Scan(&g.ID)
	if err != nil {
		p.logger.Errorf("failed to insert goal: %v", err)
		return err
	}
	return nil
}

func (p *PostgresStorage) GetGoal(ctx context.Context, userID, id int64) (*internal.Goal, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = $1 AND user_id = $2`, id, userID)
	g, err := scanGoal(row)
	if err != nil {
		return nil, notFoundOr(err, "goal", id)
	}
	return &g, nil
}

func (p *PostgresStorage) UpdateGoal(ctx context.Context, g *internal.Goal) error {
	tag, err := p.pool.Exec(ctx, `UPDATE goals SET name = $3, description = $4, target_problems = $5,
		current_progress = $6, deadline = $7, status = $8, reminder_date = $9 WHERE id = $1 AND user_id = $2`,
		g.ID, g.UserID, g.Name, g.Description, g.TargetProblems, g.CurrentProgress, g.Deadline, g.Status, g.ReminderDate)
	if err != nil {
		p.logger.Errorf("failed to update goal: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("storage: goal %d: %w", g.ID, internal.ErrNotFound)
	}
	return nil
}

func (p *PostgresStorage) DeleteGoal(ctx context.Context, userID, id int64) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM goals WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		p.logger.Errorf("failed to delete goal: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("storage: goal %d: %w", id, internal.ErrNotFound)
	}
	return nil
}

func (p *PostgresStorage) ListGoals(ctx context.Context, userID int64) ([]internal.Goal, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+goalColumns+` FROM goals WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		p.logger.Errorf("failed to query goals: %v", err)
		return nil, err
	}
	defer rows.Close()

	goals := []internal.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			p.logger.Errorf("failed to scan goal: %v", err)
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// --- UserRepository ---
func (p *PostgresStorage) GetUser(ctx context.Context, id int64) (*internal.User, error) {
	row := p.pool.QueryRow(ctx, `SELECT id, username, name, email, avatar, daily_goal, created_at FROM users WHERE id = $1`, id)
	var u internal.User
	if err := row.Scan(&u.ID, &u.Username, &u.Name, &u.Email, &u.Avatar, &u.DailyGoal, &u.CreatedAt); err != nil {
		return nil, notFoundOr(err, "user", id)
	}
	return &u, nil
}

func (p *PostgresStorage) SaveUser(ctx context.Context, u *internal.User) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO users (id, username, name, email, avatar, daily_goal, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET username = EXCLUDED.username, name = EXCLUDED.name, email = EXCLUDED.email,
		avatar = EXCLUDED.avatar, daily_goal = EXCLUDED.daily_goal`,
		u.ID, u.Username, u.Name, u.Email, u.Avatar, u.DailyGoal, u.CreatedAt)
	if err != nil {
		p.logger.Errorf("failed to save user: %v", err)
		return err
	}
	return nil
}

func (p *PostgresStorage) ListUsers(ctx context.Context) ([]internal.User, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, username, name, email, avatar, daily_goal, created_at FROM users ORDER BY id`)
	if err != nil {
		p.logger.Errorf("failed to query users: %v", err)
		return nil, err
	}
	defer rows.Close()

	users := []internal.User{}
	for rows.Next() {
		var u internal.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Name, &u.Email, &u.Avatar, &u.DailyGoal, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (p *PostgresStorage) GetSettings(ctx context.Context, userID int64) (*internal.UserSettings, error) {
	row := p.pool.QueryRow(ctx, `SELECT user_id, theme, notifications, email_reminders, reminder_time, reminder_email
		FROM user_settings WHERE user_id = $1`, userID)
	var s internal.UserSettings
	if err := row.Scan(&s.UserID, &s.Theme, &s.Notifications, &s.EmailReminders, &s.ReminderTime, &s.ReminderEmail); err != nil {
		return nil, notFoundOr(err, "settings for user", userID)
	}
	return &s, nil
}

func (p *PostgresStorage) SaveSettings(ctx context.Context, s *internal.UserSettings) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO user_settings (user_id, theme, notifications, email_reminders, reminder_time, reminder_email)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET theme = EXCLUDED.theme, notifications = EXCLUDED.notifications,
		email_reminders = EXCLUDED.email_reminders, reminder_time = EXCLUDED.reminder_time,
		reminder_email = EXCLUDED.reminder_email`,
		s.UserID, s.Theme, s.Notifications, s.EmailReminders, s.ReminderTime, s.ReminderEmail)
	if err != nil {
		p.logger.Errorf("failed to save settings: %v", err)
		return err
	}
	return nil
}

// --- Compile-time assertions ---
var _ Store = (*PostgresStorage)(nil)
