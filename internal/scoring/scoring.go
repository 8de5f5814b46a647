package scoring

import (
	"math"
	"strings"
)

// Scorer classifies posts as problems and computes pain/validation scores
// from engagement metrics. Both keyword lists come from config so they can
// be tuned without a rebuild.
type Scorer struct {
	problemKeywords []string
	emotionalWords  []string
}

func NewScorer(problemKeywords, emotionalWords []string) *Scorer {
	return &Scorer{
		problemKeywords: problemKeywords,
		emotionalWords:  emotionalWords,
	}
}

// IsProblem reports whether the post text describes a problem worth
// tracking. Plain substring match over the lower-cased title+body, first
// hit wins.
func (s *Scorer) IsProblem(title, body string) bool {
	text := strings.ToLower(title + " " + body)
	for _, keyword := range s.problemKeywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// PainScore estimates how severe the described problem is, from 1 to 10.
//
// Base of 5, plus a capped engagement term and a capped emotional-language
// term. The caps keep viral posts from dominating the score.
func (s *Scorer) PainScore(title, body string, upvotes, comments int) int {
	score := 5.0

	engagement := (float64(upvotes)/100 + float64(comments)/20) / 2
	score += math.Min(engagement, 3)

	text := strings.ToLower(title + " " + body)
	emotionCount := 0
	for _, word := range s.emotionalWords {
		if strings.Contains(text, word) {
			emotionCount++
		}
	}
	score += math.Min(float64(emotionCount)*0.5, 2)

	rounded := int(math.Round(score))
	if rounded < 1 {
		return 1
	}
	if rounded > 10 {
		return 10
	}
	return rounded
}

// ValidationScore weighs community interest. Comments count for slightly
// more than upvotes since discussion depth beats raw approval. Unbounded.
func (s *Scorer) ValidationScore(upvotes, comments int) int {
	return upvotes*2 + comments*3
}
