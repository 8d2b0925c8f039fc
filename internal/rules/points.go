package rules

import (
	"errors"
	"fmt"
)

// ActionKind identifies a point-earning action.
type ActionKind string

// Point-earning actions.
const (
	ActionDiscussionCreated   ActionKind = "discussion_created"
	ActionCommentCreated      ActionKind = "comment_created"
	ActionVoteCast            ActionKind = "vote_cast"
	ActionTreeApproved        ActionKind = "tree_approved"
	ActionInnovationSubmitted ActionKind = "innovation_submitted"
	ActionInnovationApproved  ActionKind = "innovation_approved"
	ActionChallengeCompleted  ActionKind = "challenge_completed"
)

// Default point values per action. ActionTreeApproved and
// ActionChallengeCompleted are multiplied by the tree count and the
// challenge's reward respectively, so their base value is 1.
var defaultPointValues = map[ActionKind]int{
	ActionDiscussionCreated:   20,
	ActionCommentCreated:      5,
	ActionVoteCast:            2,
	ActionTreeApproved:        1,
	ActionInnovationSubmitted: 50,
	ActionInnovationApproved:  100,
	ActionChallengeCompleted:  1,
}

// Errors returned by Award.
var (
	ErrNegativeDelta  = errors.New("negative point delta is not supported")
	ErrNegativePoints = errors.New("cumulative points must be non-negative")
	ErrUnknownAction  = errors.New("unknown action kind")
)

// AwardResult is the outcome of applying one point-earning action.
type AwardResult struct {
	NewPoints        int
	Delta            int
	NewlyEarnedTiers []BadgeTier
}

// PointValue returns the default delta for an action kind.
func PointValue(kind ActionKind) (int, error) {
	v, ok := defaultPointValues[kind]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownAction, kind)
	}
	return v, nil
}

// Award applies an action to a cumulative point total and reports the new
// total plus any badge thresholds newly crossed, in ascending order. There is
// no deduction path: a non-positive multiplier or unknown action is an error,
// never a silent decrement.
func Award(points int, kind ActionKind, multiplier int) (AwardResult, error) {
	if points < 0 {
		return AwardResult{}, ErrNegativePoints
	}
	base, err := PointValue(kind)
	if err != nil {
		return AwardResult{}, err
	}
	if multiplier < 1 {
		return AwardResult{}, fmt.Errorf("%w: multiplier %d", ErrNegativeDelta, multiplier)
	}

	delta := base * multiplier
	newPoints := points + delta

	return AwardResult{
		NewPoints:        newPoints,
		Delta:            delta,
		NewlyEarnedTiers: TiersCrossed(points, newPoints),
	}, nil
}
