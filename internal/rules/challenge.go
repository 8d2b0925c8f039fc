package rules

// ChallengeState describes a participant's position in a challenge.
type ChallengeState string

// Challenge participation states. Completed is terminal.
const (
	ChallengeNotJoined  ChallengeState = "not_joined"
	ChallengeJoined     ChallengeState = "joined"
	ChallengeInProgress ChallengeState = "in_progress"
	ChallengeCompleted  ChallengeState = "completed"
)

// ChallengeStateFor derives the state of a (participant, challenge) pair.
// The completed flag wins over raw progress so a completion is never
// retroactively downgraded.
func ChallengeStateFor(joined, completed bool, progress, target int) ChallengeState {
	switch {
	case !joined:
		return ChallengeNotJoined
	case completed || progress >= target:
		return ChallengeCompleted
	case progress > 0:
		return ChallengeInProgress
	default:
		return ChallengeJoined
	}
}

// ReachedTarget reports whether a progress update crosses the completion
// threshold for the first time. The reward must be paid only when this is
// true; a participant already marked completed never qualifies again.
func ReachedTarget(alreadyCompleted bool, progress, target int) bool {
	return !alreadyCompleted && progress >= target
}

// DisplayProgress clamps raw progress to the target for presentation.
// Raw progress is stored unclamped for audit.
func DisplayProgress(progress, target int) int {
	if progress > target {
		return target
	}
	return progress
}
