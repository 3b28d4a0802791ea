package clock

import "time"

// Clock abstracts time so stats and milestones stay deterministic in tests.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock in Loc. Calendar days are derived from Loc.
type System struct {
	Loc *time.Location
}

func (s System) Now() time.Time {
	if s.Loc == nil {
		return time.Now()
	}
	return time.Now().In(s.Loc)
}

// Fixed always returns T.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time { return f.T }
