package notify

import (
	"bytes"
	"fmt"
	"html/template"
)

type Kind string

const (
	KindDaily     Kind = "daily"
	KindGoal      Kind = "goal"
	KindMilestone Kind = "milestone"
)

type DailyData struct {
	RemainingToday int
	Streak         int
}

type GoalData struct {
	GoalName string
	Progress int
	Target   int
	Deadline string
}

type MilestoneData struct {
	Milestone   string
	Description string
	TotalSolved int
}

// Message is a rendered email.
type Message struct {
	Subject string
	HTML    string
}

type emailTemplate struct {
	subject string
	body    *template.Template
}

var templates = map[Kind]emailTemplate{
	KindDaily: {
		subject: "🔥 LeetTrack - Time to code!",
		body: template.Must(template.New("daily").Parse(`<h2>Don't break the chain! 🔗</h2>
<p>You have <strong>{{.Data.RemainingToday}}</strong> problems left to reach your daily goal.</p>
<p>Current streak: <strong>{{.Data.Streak}} days</strong></p>
<p><a href="{{.Link}}">Continue your coding journey</a></p>
`)),
	},
	KindGoal: {
		subject: "🎯 Goal Reminder - LeetTrack",
		body: template.Must(template.New("goal").Parse(`<h2>Goal Reminder: {{.Data.GoalName}}</h2>
<p>Progress: <strong>{{.Data.Progress}}/{{.Data.Target}}</strong> problems completed</p>
<p>Deadline: <strong>{{.Data.Deadline}}</strong></p>
<p><a href="{{.Link}}">Track your progress</a></p>
`)),
	},
	KindMilestone: {
		subject: "🎉 Milestone Achieved - LeetTrack",
		body: template.Must(template.New("milestone").Parse(`<h2>Congratulations! 🎉</h2>
<p>You've reached a new milestone: <strong>{{.Data.Milestone}}</strong></p>
{{- if .Data.Description}}
<p>{{.Data.Description}}</p>
{{- end}}
<p>Total problems solved: <strong>{{.Data.TotalSolved}}</strong></p>
<p>Keep up the amazing work!</p>
`)),
	},
}

// Render fills the template for kind. data must be the matching *Data type.
func Render(kind Kind, data any, link string) (Message, error) {
	tmpl, ok := templates[kind]
	if !ok {
		return Message{}, fmt.Errorf("notify: unknown message kind %q", kind)
	}
	if err := checkData(kind, data); err != nil {
		return Message{}, err
	}
	var buf bytes.Buffer
	err := tmpl.body.Execute(&buf, struct {
		Data any
		Link string
	}{data, link})
	if err != nil {
		return Message{}, fmt.Errorf("notify: render %s: %w", kind, err)
	}
	return Message{Subject: tmpl.subject, HTML: buf.String()}, nil
}

func checkData(kind Kind, data any) error {
	var ok bool
	switch kind {
	case KindDaily:
		_, ok = data.(DailyData)
	case KindGoal:
		_, ok = data.(GoalData)
	case KindMilestone:
		_, ok = data.(MilestoneData)
	}
	if !ok {
		return fmt.Errorf("notify: %T is not valid data for %s", data, kind)
	}
	return nil
}
