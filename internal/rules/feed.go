package rules

import (
	"sort"

	"github.com/Howards254/maathai-innovation-catalyst/internal/models"
)

// RankMode selects a feed ordering.
type RankMode string

// Feed orderings.
const (
	RankHot RankMode = "hot"
	RankNew RankMode = "new"
	RankTop RankMode = "top"
)

// ValidRankMode reports whether mode names a known ordering.
func ValidRankMode(mode RankMode) bool {
	return mode == RankHot || mode == RankNew || mode == RankTop
}

// HotScore is the "hot" ranking score: upvotes plus twice the comment count.
func HotScore(d *models.Discussion) int {
	return d.Upvotes + 2*d.CommentsCount
}

// Rank returns a new slice of discussions ordered by the given mode. The
// input is never mutated and the sort is stable, so ties keep their original
// relative order. Under "new", discussions with a zero timestamp sort last
// rather than masquerading as current.
func Rank(items []models.Discussion, mode RankMode) []models.Discussion {
	ranked := make([]models.Discussion, len(items))
	copy(ranked, items)

	switch mode {
	case RankNew:
		sort.SliceStable(ranked, func(i, j int) bool {
			ti, tj := ranked[i].CreatedAt, ranked[j].CreatedAt
			if ti.IsZero() != tj.IsZero() {
				return tj.IsZero()
			}
			return ti.After(tj)
		})
	case RankTop:
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].Upvotes > ranked[j].Upvotes
		})
	default: // hot
		sort.SliceStable(ranked, func(i, j int) bool {
			return HotScore(&ranked[i]) > HotScore(&ranked[j])
		})
	}

	return ranked
}
