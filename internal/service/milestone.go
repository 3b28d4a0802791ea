package service

import (
	"strconv"
	"sync"

	"github.com/yourname/leettrack/internal/analytics"
)

// MilestoneTracker remembers which milestone events a user has already been
// given. Daily and streak events are remembered for the calendar day they
// fired on. Goal events are keyed by goal and remembered while the goal stays
// in the band that produced them; once a batch no longer carries the event
// (the goal dropped below the band, was deleted, or left the active status),
// it may fire again.
type MilestoneTracker struct {
	mu    sync.Mutex
	day   map[int64]string
	daily map[int64]map[string]struct{}
	goals map[int64]map[string]struct{}
}

func NewMilestoneTracker() *MilestoneTracker {
	return &MilestoneTracker{
		day:   make(map[int64]string),
		daily: make(map[int64]map[string]struct{}),
		goals: make(map[int64]map[string]struct{}),
	}
}

func eventKey(e analytics.MilestoneEvent) string {
	if e.GoalID != 0 {
		return string(e.Kind) + ":" + strconv.FormatInt(e.GoalID, 10)
	}
	return string(e.Kind)
}

// Filter returns the events in events that have not been delivered to userID
// yet and marks them delivered. date is the stats day (YYYY-MM-DD). events
// must be the user's full batch: goal events missing from it are forgotten.
func (t *MilestoneTracker) Filter(userID int64, date string, events []analytics.MilestoneEvent) []analytics.MilestoneEvent {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.day[userID] != date {
		t.day[userID] = date
		t.daily[userID] = make(map[string]struct{})
	}
	current := make(map[string]struct{})
	for _, e := range events {
		if e.GoalID != 0 {
			current[eventKey(e)] = struct{}{}
		}
	}
	if t.goals[userID] == nil {
		t.goals[userID] = make(map[string]struct{})
	}
	for key := range t.goals[userID] {
		if _, ok := current[key]; !ok {
			delete(t.goals[userID], key)
		}
	}

	var fresh []analytics.MilestoneEvent
	for _, e := range events {
		seen := t.daily[userID]
		if e.GoalID != 0 {
			seen = t.goals[userID]
		}
		key := eventKey(e)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		fresh = append(fresh, e)
	}
	return fresh
}
