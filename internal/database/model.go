package database

import "time"

// Idea is one classified, scored problem statement sourced from a Reddit
// post. Exactly one row exists per reddit_url.
type Idea struct {
	ID              int64       `json:"id"`
	Problem         string      `json:"problem"`
	Description     string      `json:"description,omitempty"`
	Category        string      `json:"category"`
	RedditURL       string      `json:"reddit_url"`
	RedditPostID    string      `json:"reddit_post_id,omitempty"`
	Subreddit       string      `json:"subreddit,omitempty"`
	PainScore       int         `json:"pain_score"`
	ValidationScore int         `json:"validation_score"`
	Upvotes         int         `json:"upvotes"`
	RedditUpvotes   int         `json:"reddit_upvotes"`
	RedditComments  int         `json:"reddit_comments"`
	AIAnalysis      *AIAnalysis `json:"ai_analysis,omitempty"`
	Analyzed        bool        `json:"analyzed"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// IdeaCandidate is a scored candidate produced by the scraper, before it
// has an identity or timestamps.
type IdeaCandidate struct {
	Problem         string `json:"problem"`
	Description     string `json:"description,omitempty"`
	Category        string `json:"category"`
	RedditURL       string `json:"reddit_url"`
	RedditPostID    string `json:"reddit_post_id,omitempty"`
	Subreddit       string `json:"subreddit,omitempty"`
	PainScore       int    `json:"pain_score"`
	ValidationScore int    `json:"validation_score"`
	RedditUpvotes   int    `json:"reddit_upvotes"`
	RedditComments  int    `json:"reddit_comments"`
}

// AIAnalysis is the optional enrichment produced by the Anthropic call.
// Field names mirror the JSON the model is prompted to return.
type AIAnalysis struct {
	Problem           string   `json:"problem"`
	PainLevel         int      `json:"painLevel"`
	TargetCustomer    string   `json:"targetCustomer"`
	MarketSize        string   `json:"marketSize"`        // Small / Medium / Large
	CompetitionLevel  string   `json:"competitionLevel"`  // Low / Medium / High
	MonetizationIdeas []string `json:"monetizationIdeas"`
	TechStack         []string `json:"techStack"`
	BuildTimeEstimate string   `json:"buildTimeEstimate"`
	KeyInsights       []string `json:"keyInsights"`
}

// Subscriber receives transactional email. Categories is an optional
// comma-separated allow list; empty means all categories.
type Subscriber struct {
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	IdeaAlerts   bool      `json:"idea_alerts"`
	WeeklyDigest bool      `json:"weekly_digest"`
	Categories   string    `json:"categories,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ReferralCode belongs to exactly one user.
type ReferralCode struct {
	UserID    string    `json:"user_id"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
}

// Referral is one tracked signup through a referral code.
type Referral struct {
	ID         int64     `json:"id"`
	ReferrerID string    `json:"referrer_id"`
	Code       string    `json:"code"`
	Status     string    `json:"status"` // pending / completed
	CreatedAt  time.Time `json:"created_at"`
}

// Stats summarizes the idea table for the admin dashboard.
type Stats struct {
	TotalIdeas    int            `json:"total_ideas"`
	AnalyzedIdeas int            `json:"analyzed_ideas"`
	AvgPainScore  float64        `json:"avg_pain_score"`
	ByCategory    map[string]int `json:"by_category"`
}
