package storage

import (
	"strings"

	"github.com/yourname/leettrack/internal"
)

// ProblemFilter narrows a problem list. Empty fields and "All" match anything.
type ProblemFilter struct {
	Search     string `form:"search"`
	Difficulty string `form:"difficulty"`
	Status     string `form:"status"`
	Pattern    string `form:"pattern"`
}

func active(v string) bool {
	return v != "" && v != "All"
}

// Match reports whether p passes the filter. Search is a case-insensitive
// substring match on the name, topics and tags.
func (f ProblemFilter) Match(p internal.Problem) bool {
	if active(f.Difficulty) && string(p.Difficulty) != f.Difficulty {
		return false
	}
	if active(f.Status) && p.Status != f.Status {
		return false
	}
	if active(f.Pattern) && p.Pattern != f.Pattern {
		return false
	}
	if f.Search == "" {
		return true
	}
	needle := strings.ToLower(f.Search)
	if strings.Contains(strings.ToLower(p.Name), needle) {
		return true
	}
	for _, t := range p.Topics {
		if strings.Contains(strings.ToLower(t), needle) {
			return true
		}
	}
	for _, t := range p.Tags {
		if strings.Contains(strings.ToLower(t), needle) {
			return true
		}
	}
	return false
}

// FilterProblems returns the problems that pass f, in order.
func FilterProblems(problems []internal.Problem, f ProblemFilter) []internal.Problem {
	out := make([]internal.Problem, 0, len(problems))
	for _, p := range problems {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}
