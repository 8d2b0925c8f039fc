package rules

import (
	"errors"
	"testing"
)

func TestAwardPointValues(t *testing.T) {
	tests := []struct {
		kind     ActionKind
		expected int
	}{
		{ActionDiscussionCreated, 20},
		{ActionCommentCreated, 5},
		{ActionVoteCast, 2},
		{ActionInnovationSubmitted, 50},
		{ActionInnovationApproved, 100},
	}

	for _, tt := range tests {
		res, err := Award(0, tt.kind, 1)
		if err != nil {
			t.Fatalf("Award(0, %s, 1) failed: %v", tt.kind, err)
		}
		if res.Delta != tt.expected {
			t.Errorf("Award(0, %s, 1) delta = %d, expected %d", tt.kind, res.Delta, tt.expected)
		}
		if res.NewPoints != tt.expected {
			t.Errorf("Award(0, %s, 1) new points = %d, expected %d", tt.kind, res.NewPoints, tt.expected)
		}
	}
}

func TestAwardMultiplier(t *testing.T) {
	// 12 approved trees at 1 point each
	res, err := Award(10, ActionTreeApproved, 12)
	if err != nil {
		t.Fatalf("Award failed: %v", err)
	}
	if res.NewPoints != 22 {
		t.Errorf("expected 22 points, got %d", res.NewPoints)
	}
}

func TestAwardRejectsNegative(t *testing.T) {
	if _, err := Award(-1, ActionCommentCreated, 1); !errors.Is(err, ErrNegativePoints) {
		t.Errorf("expected ErrNegativePoints, got %v", err)
	}
	if _, err := Award(10, ActionCommentCreated, 0); !errors.Is(err, ErrNegativeDelta) {
		t.Errorf("expected ErrNegativeDelta for zero multiplier, got %v", err)
	}
	if _, err := Award(10, ActionCommentCreated, -3); !errors.Is(err, ErrNegativeDelta) {
		t.Errorf("expected ErrNegativeDelta for negative multiplier, got %v", err)
	}
	if _, err := Award(10, ActionKind("point_theft"), 1); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("expected ErrUnknownAction, got %v", err)
	}
}

// A new actor creates a discussion then three comments: 20 + 3*5 = 35 points,
// still below the 100-point tier.
func TestAwardScenarioDiscussionAndComments(t *testing.T) {
	points := 0

	res, err := Award(points, ActionDiscussionCreated, 1)
	if err != nil {
		t.Fatalf("Award failed: %v", err)
	}
	points = res.NewPoints

	for i := 0; i < 3; i++ {
		res, err = Award(points, ActionCommentCreated, 1)
		if err != nil {
			t.Fatalf("Award failed: %v", err)
		}
		points = res.NewPoints
		if len(res.NewlyEarnedTiers) != 0 {
			t.Errorf("unexpected tier earned at %d points", points)
		}
	}

	if points != 35 {
		t.Errorf("expected 35 points, got %d", points)
	}
	if tier := ResolveTier(points); tier.Name != "New Sprout" {
		t.Errorf("expected tier New Sprout, got %q", tier.Name)
	}
}

func TestAwardReportsCrossedTiers(t *testing.T) {
	res, err := Award(80, ActionInnovationApproved, 1)
	if err != nil {
		t.Fatalf("Award failed: %v", err)
	}
	if res.NewPoints != 180 {
		t.Errorf("expected 180 points, got %d", res.NewPoints)
	}
	if len(res.NewlyEarnedTiers) != 1 || res.NewlyEarnedTiers[0].Name != "Tree Hugger" {
		t.Errorf("expected Tree Hugger crossing, got %v", res.NewlyEarnedTiers)
	}
}
