// Package rules implements the impact scoring rules: point awards, badge
// tiers, campaign progress, challenge transitions and feed ranking. Every
// function here is pure; persistence belongs to the callers.
package rules

// BadgeTier is a named rank derived purely from a cumulative point total.
type BadgeTier struct {
	Name      string `json:"name"`
	Threshold int    `json:"threshold"`
}

// tiers is the canonical badge ladder, ascending by threshold.
// Thresholds must stay strictly increasing; ResolveTier relies on it.
var tiers = []BadgeTier{
	{Name: "New Sprout", Threshold: 0},
	{Name: "Tree Hugger", Threshold: 100},
	{Name: "Forest Guardian", Threshold: 500},
	{Name: "Eco Warrior", Threshold: 1000},
	{Name: "Planet Protector", Threshold: 2000},
	{Name: "Environmental Champion", Threshold: 5000},
}

// Tiers returns the full badge ladder in ascending threshold order.
func Tiers() []BadgeTier {
	out := make([]BadgeTier, len(tiers))
	copy(out, tiers)
	return out
}

// ResolveTier returns the tier with the highest threshold less than or equal
// to points. Monotonic: more points never resolves to a lower tier.
func ResolveTier(points int) BadgeTier {
	current := tiers[0]
	for _, t := range tiers {
		if points >= t.Threshold {
			current = t
		}
	}
	return current
}

// TiersCrossed returns the tiers whose thresholds lie in (oldPoints, newPoints],
// in ascending order. The zero-threshold base tier is never "crossed"; callers
// grant it when the actor is first seen.
func TiersCrossed(oldPoints, newPoints int) []BadgeTier {
	var crossed []BadgeTier
	for _, t := range tiers {
		if t.Threshold > oldPoints && t.Threshold <= newPoints {
			crossed = append(crossed, t)
		}
	}
	return crossed
}

// BaseTier returns the tier every actor holds from zero points.
func BaseTier() BadgeTier {
	return tiers[0]
}
