package rules

import (
	"errors"
	"math"
	"time"
)

// Errors returned by Progress.
var (
	ErrZeroTarget  = errors.New("campaign target must be positive")
	ErrEmptyWindow = errors.New("campaign window must span at least one day")
)

// Milestone is one of the four fixed campaign milestones at 25/50/75/100%
// of the target. Thresholds are always recomputed from the target so a
// target change can never leave a stale threshold behind.
type Milestone struct {
	Percent   int  `json:"percent"`
	Threshold int  `json:"threshold"`
	Achieved  bool `json:"achieved"`
}

// CampaignProgress is the derived progress report for a campaign.
type CampaignProgress struct {
	Percent           float64     `json:"percent"`
	Milestones        []Milestone `json:"milestones"`
	TotalDays         int         `json:"total_days"`
	DaysPassed        int         `json:"days_passed"`
	DaysLeft          int         `json:"days_left"`
	ExpectedTrees     int         `json:"expected_trees"`
	IsAheadOfSchedule bool        `json:"is_ahead_of_schedule"`
	ScheduleDelta     int         `json:"schedule_delta"` // planted minus expected
}

// Progress computes percent-complete, milestone flags and schedule adherence
// for a campaign. Percent is clamped to [0, 100] even when planted exceeds
// the target. A non-positive target or an empty window is rejected outright
// instead of dividing by zero.
func Progress(target, planted int, start, end, now time.Time) (CampaignProgress, error) {
	if target <= 0 {
		return CampaignProgress{}, ErrZeroTarget
	}

	totalDays := int(math.Ceil(end.Sub(start).Hours() / 24))
	if totalDays <= 0 {
		return CampaignProgress{}, ErrEmptyWindow
	}

	percent := float64(planted) / float64(target) * 100
	if percent > 100 {
		percent = 100
	}
	if percent < 0 {
		percent = 0
	}

	milestones := make([]Milestone, 0, 4)
	for _, pct := range []int{25, 50, 75, 100} {
		threshold := target * pct / 100
		milestones = append(milestones, Milestone{
			Percent:   pct,
			Threshold: threshold,
			Achieved:  planted >= threshold,
		})
	}

	daysLeft := int(math.Ceil(end.Sub(now).Hours() / 24))
	if daysLeft < 0 {
		daysLeft = 0
	}
	if daysLeft > totalDays {
		daysLeft = totalDays
	}
	daysPassed := totalDays - daysLeft

	dailyTarget := float64(target) / float64(totalDays)
	expectedTrees := int(math.Floor(dailyTarget * float64(daysPassed)))

	return CampaignProgress{
		Percent:           percent,
		Milestones:        milestones,
		TotalDays:         totalDays,
		DaysPassed:        daysPassed,
		DaysLeft:          daysLeft,
		ExpectedTrees:     expectedTrees,
		IsAheadOfSchedule: planted > expectedTrees,
		ScheduleDelta:     planted - expectedTrees,
	}, nil
}
