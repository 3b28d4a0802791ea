package service

import (
	"context"
	"errors"
	"time"

	"github.com/yourname/leettrack/internal"
	"github.com/yourname/leettrack/internal/storage"
)

type UserUpdate struct {
	Username  *string `json:"username" validate:"omitnil,notblank,max=50"`
	Name      *string `json:"name" validate:"omitnil,notblank,max=100"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Avatar    *string `json:"avatar"`
	DailyGoal *int    `json:"dailyGoal" validate:"omitnil,gte=0,lte=100"`
}

type SettingsUpdate struct {
	Theme          *string `json:"theme" validate:"omitnil,oneof=light dark"`
	Notifications  *bool   `json:"notifications"`
	EmailReminders *bool   `json:"emailReminders"`
	ReminderTime   *string `json:"reminderTime" validate:"omitempty,datetime=15:04"`
	ReminderEmail  *string `json:"reminderEmail" validate:"omitempty,email"`
}

// EnsureUser returns the user, creating it and its default settings on first
// use.
func EnsureUser(ctx context.Context, repo storage.UserRepository, userID int64, dailyGoal int, now time.Time) (*internal.User, error) {
	user, err := repo.GetUser(ctx, userID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, internal.ErrNotFound) {
		return nil, err
	}
	user = &internal.User{
		ID:        userID,
		Username:  "demo",
		Name:      "Demo User",
		DailyGoal: dailyGoal,
		CreatedAt: now,
	}
	if err := repo.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	if _, err := GetSettings(ctx, repo, userID); err != nil {
		return nil, err
	}
	return user, nil
}

func DefaultSettings(userID int64) *internal.UserSettings {
	return &internal.UserSettings{
		UserID:         userID,
		Theme:          "dark",
		Notifications:  true,
		EmailReminders: false,
	}
}

// GetSettings returns the stored settings, saving defaults if there are none.
func GetSettings(ctx context.Context, repo storage.UserRepository, userID int64) (*internal.UserSettings, error) {
	st, err := repo.GetSettings(ctx, userID)
	if err == nil {
		return st, nil
	}
	if !errors.Is(err, internal.ErrNotFound) {
		return nil, err
	}
	st = DefaultSettings(userID)
	if err := repo.SaveSettings(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func UpdateUser(ctx context.Context, repo storage.UserRepository, userID int64, u *UserUpdate) (*internal.User, error) {
	if err := validate.Struct(u); err != nil {
		return nil, invalid(err)
	}
	user, err := repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	setTrimmed(&user.Username, u.Username)
	setTrimmed(&user.Name, u.Name)
	setString(&user.Email, u.Email)
	setString(&user.Avatar, u.Avatar)
	if u.DailyGoal != nil {
		user.DailyGoal = *u.DailyGoal
	}
	if err := repo.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func UpdateSettings(ctx context.Context, repo storage.UserRepository, userID int64, u *SettingsUpdate) (*internal.UserSettings, error) {
	if err := validate.Struct(u); err != nil {
		return nil, invalid(err)
	}
	st, err := GetSettings(ctx, repo, userID)
	if err != nil {
		return nil, err
	}
	setString(&st.Theme, u.Theme)
	if u.Notifications != nil {
		st.Notifications = *u.Notifications
	}
	if u.EmailReminders != nil {
		st.EmailReminders = *u.EmailReminders
	}
	setString(&st.ReminderTime, u.ReminderTime)
	setString(&st.ReminderEmail, u.ReminderEmail)
	if err := repo.SaveSettings(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// ReminderAddress picks where a user's emails go, or "" when they have opted
// out or have no address.
func ReminderAddress(user *internal.User, st *internal.UserSettings) string {
	if st == nil || !st.EmailReminders {
		return ""
	}
	if st.ReminderEmail != "" {
		return st.ReminderEmail
	}
	return user.Email
}
