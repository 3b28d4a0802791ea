package internal

import "time"

type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

const (
	ProblemStatusSolved     = "Solved"
	ProblemStatusInProgress = "In Progress"
)

const (
	GoalStatusActive    = "Active"
	GoalStatusCompleted = "Completed"
	GoalStatusPaused    = "Paused"
)

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Avatar    string    `json:"avatar,omitempty"`
	DailyGoal int       `json:"dailyGoal"`
	CreatedAt time.Time `json:"createdAt"`
}

type UserSettings struct {
	UserID         int64  `json:"userId"`
	Theme          string `json:"theme"` // light, dark
	Notifications  bool   `json:"notifications"`
	EmailReminders bool   `json:"emailReminders"`
	ReminderTime   string `json:"reminderTime,omitempty"`
	ReminderEmail  string `json:"reminderEmail,omitempty"`
}

type Problem struct {
	ID                int64      `json:"id"`
	UserID            int64      `json:"userId"`
	Name              string     `json:"name"`
	Difficulty        Difficulty `json:"difficulty"`
	Status            string     `json:"status"`
	Pattern           string     `json:"pattern,omitempty"`
	Topics            []string   `json:"topics"`
	Tags              []string   `json:"tags"`
	TimeComplexity    string     `json:"timeComplexity,omitempty"`
	SpaceComplexity   string     `json:"spaceComplexity,omitempty"`
	WhyApplies        string     `json:"whyApplies,omitempty"`
	Variations        string     `json:"variations,omitempty"`
	ThoughtProcess    string     `json:"thoughtProcess,omitempty"`
	Pseudocode        string     `json:"pseudocode,omitempty"`
	ScreenshotURL     string     `json:"screenshotUrl,omitempty"`
	ReviewedSolution1 string     `json:"reviewedSolution1,omitempty"`
	ReviewedSolution2 string     `json:"reviewedSolution2,omitempty"`
	ReminderDate      *time.Time `json:"reminderDate,omitempty"`
	TimeSpent         *int       `json:"timeSpent,omitempty"` // minutes
	SolvedAt          time.Time  `json:"solvedAt"`
	CreatedAt         time.Time  `json:"createdAt"`
}

type Goal struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"userId"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	TargetProblems  int        `json:"targetProblems"`
	CurrentProgress int        `json:"currentProgress"`
	Deadline        *time.Time `json:"deadline,omitempty"`
	Status          string     `json:"status"`
	ReminderDate    *time.Time `json:"reminderDate,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}
