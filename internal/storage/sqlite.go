package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/yourname/leettrack/internal"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY,
	username TEXT NOT NULL,
	name TEXT NOT NULL,
	email TEXT NOT NULL DEFAULT '',
	avatar TEXT NOT NULL DEFAULT '',
	daily_goal INTEGER NOT NULL DEFAULT 5,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS user_settings (
	user_id INTEGER PRIMARY KEY,
	theme TEXT NOT NULL DEFAULT 'dark',
	notifications INTEGER NOT NULL DEFAULT 1,
	email_reminders INTEGER NOT NULL DEFAULT 0,
	reminder_time TEXT NOT NULL DEFAULT '',
	reminder_email TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS problems (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	difficulty TEXT NOT NULL,
	status TEXT NOT NULL,
	pattern TEXT NOT NULL DEFAULT '',
	topics TEXT NOT NULL DEFAULT '[]',
	tags TEXT NOT NULL DEFAULT '[]',
	time_complexity TEXT NOT NULL DEFAULT '',
	space_complexity TEXT NOT NULL DEFAULT '',
	why_applies TEXT NOT NULL DEFAULT '',
	variations TEXT NOT NULL DEFAULT '',
	thought_process TEXT NOT NULL DEFAULT '',
	pseudocode TEXT NOT NULL DEFAULT '',
	screenshot_url TEXT NOT NULL DEFAULT '',
	reviewed_solution_1 TEXT NOT NULL DEFAULT '',
	reviewed_solution_2 TEXT NOT NULL DEFAULT '',
	reminder_date TEXT,
	time_spent INTEGER,
	solved_at TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_problems_user ON problems (user_id, solved_at);
CREATE TABLE IF NOT EXISTS goals (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	target_problems INTEGER NOT NULL,
	current_progress INTEGER NOT NULL DEFAULT 0,
	deadline TEXT,
	status TEXT NOT NULL,
	reminder_date TEXT,
	created_at TEXT NOT NULL
);
`

// sqliteTime is fixed width so text order matches time order.
const sqliteTime = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStorage keeps everything in a single database file. Times are stored
// as UTC text, topics and tags as JSON arrays.
type SQLiteStorage struct {
	db      *sql.DB
	logger  internal.Logger
	changes broadcaster
}

func NewSQLiteStorage(ctx context.Context, path string, logger internal.Logger) (*SQLiteStorage, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("storage: create sqlite dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open sqlite: %w", err)
	}
	// A single connection serialises writers and keeps :memory: databases shared.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		logger.Errorf("failed to create sqlite schema: %v", err)
		return nil, fmt.Errorf("storage: create schema: %w", err)
	}
	return &SQLiteStorage{db: db, logger: logger}, nil
}

func (s *SQLiteStorage) Subscribe() <-chan int64 {
	return s.changes.Subscribe()
}

func (s *SQLiteStorage) Close() error {
	s.changes.close()
	return s.db.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(sqliteTime)
}

func formatTimePtr(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseTime(v string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, v)
}

func parseTimePtr(v sql.NullString) (*time.Time, error) {
	if !v.Valid {
		return nil, nil
	}
	t, err := parseTime(v.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func encodeList(v []string) (string, error) {
	b, err := json.Marshal(nonNil(v))
	return string(b), err
}

func decodeList(v string) ([]string, error) {
	out := []string{}
	if v == "" {
		return out, nil
	}
	err := json.Unmarshal([]byte(v), &out)
	return out, err
}

type scanner interface {
	Scan(dest ...any) error
}

func sqliteNotFound(err error, what string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("storage: %s %d: %w", what, id, internal.ErrNotFound)
	}
	return err
}

func scanSQLiteProblem(row scanner) (internal.Problem, error) {
	var (
		pr                       internal.Problem
		difficulty, topics, tags string
		solvedAt, createdAt      string
		reminderDate             sql.NullString
		timeSpent                sql.NullInt64
	)
	err := row.Scan(&pr.ID, &pr.UserID, &pr.Name, &difficulty, &pr.Status, &pr.Pattern, &topics, &tags,
		&pr.TimeComplexity, &pr.SpaceComplexity, &pr.WhyApplies, &pr.Variations, &pr.ThoughtProcess, &pr.Pseudocode,
		&pr.ScreenshotURL, &pr.ReviewedSolution1, &pr.ReviewedSolution2, &reminderDate, &timeSpent,
		&solvedAt, &createdAt)
	if err != nil {
		return pr, err
	}
	pr.Difficulty = internal.Difficulty(difficulty)
	if pr.Topics, err = decodeList(topics); err != nil {
		return pr, err
	}
	if pr.Tags, err = decodeList(tags); err != nil {
		return pr, err
	}
	if pr.ReminderDate, err = parseTimePtr(reminderDate); err != nil {
		return pr, err
	}
	if timeSpent.Valid {
		v := int(timeSpent.Int64)
		pr.TimeSpent = &v
	}
	if pr.SolvedAt, err = parseTime(solvedAt); err != nil {
		return pr, err
	}
	pr.CreatedAt, err = parseTime(createdAt)
	return pr, err
}

func scanSQLiteGoal(row scanner) (internal.Goal, error) {
	var (
		g                      internal.Goal
		deadline, reminderDate sql.NullString
		createdAt              string
	)
	err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.Description, &g.TargetProblems, &g.CurrentProgress,
		&deadline, &g.Status, &reminderDate, &createdAt)
	if err != nil {
		return g, err
	}
	if g.Deadline, err = parseTimePtr(deadline); err != nil {
		return g, err
	}
	if g.ReminderDate, err = parseTimePtr(reminderDate); err != nil {
		return g, err
	}
	g.CreatedAt, err = parseTime(createdAt)
	return g, err
}

func timeSpentArg(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func checkAffected(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("storage: %s %d: %w", what, id, internal.ErrNotFound)
	}
	return nil
}

// --- ProblemRepository ---
func (s *SQLiteStorage) CreateProblem(ctx context.Context, pr *internal.Problem) error {
	topics, err := encodeList(pr.Topics)
	if err != nil {
		return err
	}
	tags, err := encodeList(pr.Tags)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO problems (user_id, name, difficulty, status, pattern, topics, tags,
		time_complexity, space_complexity, why_applies, variations, thought_process, pseudocode,
		screenshot_url, reviewed_solution_1, reviewed_solution_2, reminder_date, time_spent, solved_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		pr.UserID, pr.Name, string(pr.Difficulty), pr.Status, pr.Pattern, topics, tags,
		pr.TimeComplexity, pr.SpaceComplexity, pr.WhyApplies, pr.Variations, pr.ThoughtProcess, pr.Pseudocode,
		pr.ScreenshotURL, pr.ReviewedSolution1, pr.ReviewedSolution2, formatTimePtr(pr.ReminderDate),
		timeSpentArg(pr.TimeSpent), formatTime(pr.SolvedAt), formatTime(pr.CreatedAt))
	if err != nil {
		s.logger.Errorf("failed to insert problem: %v", err)
		return err
	}
	if pr.ID, err = res.LastInsertId(); err != nil {
		return err
	}
	s.changes.publish(pr.UserID)
	return nil
}

func (s *SQLiteStorage) GetProblem(ctx context.Context, userID, id int64) (*internal.Problem, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+problemColumns+` FROM problems WHERE id = ? AND user_id = ?`, id, userID)
	pr, err := scanSQLiteProblem(row)
	if err != nil {
		return nil, sqliteNotFound(err, "problem", id)
	}
	return &pr, nil
}

func (s *SQLiteStorage) UpdateProblem(ctx context.Context, pr *internal.Problem) error {
	topics, err := encodeList(pr.Topics)
	if err != nil {
		return err
	}
	tags, err := encodeList(pr.Tags)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE problems SET name = ?, difficulty = ?, status = ?, pattern = ?,
		topics = ?, tags = ?, time_complexity = ?, space_complexity = ?, why_applies = ?, variations = ?,
		thought_process = ?, pseudocode = ?, screenshot_url = ?, reviewed_solution_1 = ?, reviewed_solution_2 = ?,
		reminder_date = ?, time_spent = ?, solved_at = ? WHERE id = ? AND user_id = ?`,
		pr.Name, string(pr.Difficulty), pr.Status, pr.Pattern, topics, tags,
		pr.TimeComplexity, pr.SpaceComplexity, pr.WhyApplies, pr.Variations, pr.ThoughtProcess, pr.Pseudocode,
		pr.ScreenshotURL, pr.ReviewedSolution1, pr.ReviewedSolution2, formatTimePtr(pr.ReminderDate),
		timeSpentArg(pr.TimeSpent), formatTime(pr.SolvedAt), pr.ID, pr.UserID)
	if err != nil {
		s.logger.Errorf("failed to update problem: %v", err)
		return err
	}
	if err := checkAffected(res, "problem", pr.ID); err != nil {
		return err
	}
	s.changes.publish(pr.UserID)
	return nil
}

func (s *SQLiteStorage) DeleteProblem(ctx context.Context, userID, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM problems WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		s.logger.Errorf("failed to delete problem: %v", err)
		return err
	}
	if err := checkAffected(res, "problem", id); err != nil {
		return err
	}
	s.changes.publish(userID)
	return nil
}

func (s *SQLiteStorage) ListProblems(ctx context.Context, userID int64) ([]internal.Problem, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+problemColumns+` FROM problems WHERE user_id = ? ORDER BY solved_at DESC, id DESC`, userID)
	if err != nil {
		s.logger.Errorf("failed to query problems: %v", err)
		return nil, err
	}
	defer rows.Close()

	problems := []internal.Problem{}
	for rows.Next() {
		pr, err := scanSQLiteProblem(rows)
		if err != nil {
			return nil, err
		}
		problems = append(problems, pr)
	}
	return problems, rows.Err()
}

// --- GoalRepository ---
func (s *SQLiteStorage) CreateGoal(ctx context.Context, g *internal.Goal) error {
	res, err := s.db.ExecContext(ctx, `INSERT INTO goals (user_id, name, description, target_problems, current_progress,
		deadline, status, reminder_date, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.UserID, g.Name, g.Description, g.TargetProblems, g.CurrentProgress, formatTimePtr(g.Deadline),
		g.Status, formatTimePtr(g.ReminderDate), formatTime(g.CreatedAt))
	if err != nil {
		s.logger.Errorf("failed to insert goal: %v", err)
		return err
	}
	if g.ID, err = res.LastInsertId(); err != nil {
		return err
	}
	s.changes.publish(g.UserID)
	return nil
}

func (s *SQLiteStorage) GetGoal(ctx context.Context, userID, id int64) (*internal.Goal, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = ? AND user_id = ?`, id, userID)
	g, err := scanSQLiteGoal(row)
	if err != nil {
		return nil, sqliteNotFound(err, "goal", id)
	}
	return &g, nil
}

func (s *SQLiteStorage) UpdateGoal(ctx context.Context, g *internal.Goal) error {
	res, err := s.db.ExecContext(ctx, `UPDATE goals SET name = ?, description = ?, target_problems = ?,
		current_progress = ?, deadline = ?, status = ?, reminder_date = ? WHERE id = ? AND user_id = ?`,
		g.Name, g.Description, g.TargetProblems, g.CurrentProgress, formatTimePtr(g.Deadline), g.Status,
		formatTimePtr(g.ReminderDate), g.ID, g.UserID)
	if err != nil {
		s.logger.Errorf("failed to update goal: %v", err)
		return err
	}
	if err := checkAffected(res, "goal", g.ID); err != nil {
		return err
	}
	s.changes.publish(g.UserID)
	return nil
}

func (s *SQLiteStorage) DeleteGoal(ctx context.Context, userID, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		s.logger.Errorf("failed to delete goal: %v", err)
		return err
	}
	if err := checkAffected(res, "goal", id); err != nil {
		return err
	}
	s.changes.publish(userID)
	return nil
}

func (s *SQLiteStorage) ListGoals(ctx context.Context, userID int64) ([]internal.Goal, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		s.logger.Errorf("failed to query goals: %v", err)
		return nil, err
	}
	defer rows.Close()

	goals := []internal.Goal{}
	for rows.Next() {
		g, err := scanSQLiteGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// --- UserRepository ---
func scanSQLiteUser(row scanner) (internal.User, error) {
	var u internal.User
	var createdAt string
	if err := row.Scan(&u.ID, &u.Username, &u.Name, &u.Email, &u.Avatar, &u.DailyGoal, &createdAt); err != nil {
		return u, err
	}
	var err error
	u.CreatedAt, err = parseTime(createdAt)
	return u, err
}

func (s *SQLiteStorage) GetUser(ctx context.Context, id int64) (*internal.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, username, name, email, avatar, daily_goal, created_at FROM users WHERE id = ?`, id)
	u, err := scanSQLiteUser(row)
	if err != nil {
		return nil, sqliteNotFound(err, "user", id)
	}
	return &u, nil
}

func (s *SQLiteStorage) SaveUser(ctx context.Context, u *internal.User) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO users (id, username, name, email, avatar, daily_goal, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET username = excluded.username, name = excluded.name, email = excluded.email,
		avatar = excluded.avatar, daily_goal = excluded.daily_goal`,
		u.ID, u.Username, u.Name, u.Email, u.Avatar, u.DailyGoal, formatTime(u.CreatedAt))
	if err != nil {
		s.logger.Errorf("failed to save user: %v", err)
		return err
	}
	s.changes.publish(u.ID)
	return nil
}

func (s *SQLiteStorage) ListUsers(ctx context.Context) ([]internal.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, username, name, email, avatar, daily_goal, created_at FROM users ORDER BY id`)
	if err != nil {
		s.logger.Errorf("failed to query users: %v", err)
		return nil, err
	}
	defer rows.Close()

	users := []internal.User{}
	for rows.Next() {
		u, err := scanSQLiteUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *SQLiteStorage) GetSettings(ctx context.Context, userID int64) (*internal.UserSettings, error) {
	row := s.db.QueryRowContext(ctx, `SELECT user_id, theme, notifications, email_reminders, reminder_time, reminder_email
		FROM user_settings WHERE user_id = ?`, userID)
	var st internal.UserSettings
	if err := row.Scan(&st.UserID, &st.Theme, &st.Notifications, &st.EmailReminders, &st.ReminderTime, &st.ReminderEmail); err != nil {
		return nil, sqliteNotFound(err, "settings for user", userID)
	}
	return &st, nil
}

func (s *SQLiteStorage) SaveSettings(ctx context.Context, st *internal.UserSettings) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO user_settings (user_id, theme, notifications, email_reminders, reminder_time, reminder_email)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET theme = excluded.theme, notifications = excluded.notifications,
		email_reminders = excluded.email_reminders, reminder_time = excluded.reminder_time,
		reminder_email = excluded.reminder_email`,
		st.UserID, st.Theme, st.Notifications, st.EmailReminders, st.ReminderTime, st.ReminderEmail)
	if err != nil {
		s.logger.Errorf("failed to save settings: %v", err)
		return err
	}
	s.changes.publish(st.UserID)
	return nil
}

// --- Compile-time assertions ---
var _ Store = (*SQLiteStorage)(nil)
var _ ChangeNotifier = (*SQLiteStorage)(nil)
