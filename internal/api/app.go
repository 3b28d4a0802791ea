package api

import (
	"github.com/yourname/leettrack/internal"
	"github.com/yourname/leettrack/internal/analytics"
	"github.com/yourname/leettrack/internal/clock"
	"github.com/yourname/leettrack/internal/notify"
	"github.com/yourname/leettrack/internal/storage"
	"github.com/yourname/leettrack/internal/upload"
)

type App interface {
	Logger() internal.Logger
	Store() storage.Store
	Notifier() notify.Notifier
	Uploads() *upload.Store
	Clock() clock.Clock
	Catalog() analytics.Catalog
	DefaultDailyGoal() int
}

// Deps is the App used by the server and tests.
type Deps struct {
	Log         internal.Logger
	Records     storage.Store
	Mailer      notify.Notifier
	Screenshots *upload.Store
	Now         clock.Clock
	Patterns    analytics.Catalog
	DailyGoal   int
}

func (d *Deps) Logger() internal.Logger    { return d.Log }
func (d *Deps) Store() storage.Store       { return d.Records }
func (d *Deps) Notifier() notify.Notifier  { return d.Mailer }
func (d *Deps) Uploads() *upload.Store     { return d.Screenshots }
func (d *Deps) Clock() clock.Clock         { return d.Now }
func (d *Deps) Catalog() analytics.Catalog { return d.Patterns }
func (d *Deps) DefaultDailyGoal() int      { return d.DailyGoal }
