package service

import (
	"context"
	"time"

	"github.com/yourname/leettrack/internal/analytics"
	"github.com/yourname/leettrack/internal/storage"
)

func CalculateUserStats(ctx context.Context, repo storage.ProblemRepository, userID int64, now time.Time) (analytics.UserStats, error) {
	problems, err := repo.ListProblems(ctx, userID)
	if err != nil {
		return analytics.UserStats{}, err
	}
	return analytics.ComputeStats(problems, now), nil
}

func CalculatePatternMastery(ctx context.Context, repo storage.ProblemRepository, userID int64, catalog analytics.Catalog) (analytics.MasteryReport, error) {
	problems, err := repo.ListProblems(ctx, userID)
	if err != nil {
		return analytics.MasteryReport{}, err
	}
	counts := make(map[string]int)
	uncategorized := 0
	for _, p := range problems {
		if p.Pattern == "" {
			uncategorized++
			continue
		}
		counts[p.Pattern]++
	}
	return analytics.Mastery(counts, catalog, uncategorized), nil
}
