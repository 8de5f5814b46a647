// Package ranking orders ideas for presentation. Sorting is kept out of the
// store so the same strategies apply to query results and freshly scraped
// candidates alike.
package ranking

import (
	"fmt"
	"sort"

	"github.com/letieu/ideaflow/internal/database"
)

type Strategy string

const (
	Trending   Strategy = "trending"
	Newest     Strategy = "newest"
	Pain       Strategy = "pain"
	Validation Strategy = "validation"
)

// ParseStrategy maps a query-string value to a Strategy. Empty defaults to
// trending.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case Trending, Newest, Pain, Validation:
		return Strategy(s), nil
	case "":
		return Trending, nil
	default:
		return "", fmt.Errorf("unknown sort strategy: %q", s)
	}
}

// Rank returns a new slice ordered by the strategy, descending. The sort is
// stable: equal keys keep the input order.
//
// Trending re-weights raw upvotes on top of the validation score, which
// already counts them. That matches the shipped behavior and is kept as is.
func Rank(ideas []database.Idea, strategy Strategy) []database.Idea {
	ranked := make([]database.Idea, len(ideas))
	copy(ranked, ideas)

	switch strategy {
	case Trending:
		sort.SliceStable(ranked, func(i, j int) bool {
			return trendingScore(ranked[i]) > trendingScore(ranked[j])
		})
	case Newest:
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].CreatedAt.After(ranked[j].CreatedAt)
		})
	case Pain:
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].PainScore > ranked[j].PainScore
		})
	case Validation:
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].ValidationScore > ranked[j].ValidationScore
		})
	}

	return ranked
}

func trendingScore(idea database.Idea) int {
	return idea.ValidationScore + (idea.Upvotes+idea.RedditUpvotes)*10
}
