// Package scrape turns raw Reddit posts into stored idea records: fetch,
// classify, score, insert-if-absent.
package scrape

import (
	"context"

	"github.com/letieu/ideaflow/internal/database"
	"github.com/letieu/ideaflow/internal/reddit"
	"github.com/letieu/ideaflow/internal/scoring"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// PostFetcher is the slice of the Reddit client the scraper needs.
type PostFetcher interface {
	GetTopPosts(ctx context.Context, subreddit, timeFilter string, limit int) ([]*reddit.Post, error)
}

// IdeaStore is the slice of the database the scraper needs.
type IdeaStore interface {
	InsertIdeaIfAbsent(ctx context.Context, cand database.IdeaCandidate) (*database.Idea, bool, error)
}

type Scraper struct {
	fetcher PostFetcher
	store   IdeaStore
	scorer  *scoring.Scorer
	limiter *rate.Limiter
	logger  *zap.Logger
}

// Options bound one ingestion run.
type Options struct {
	TimeFilter   string
	PostLimit    int
	MinUpvotes   int
	MinBodyChars int
}

// SourceResult reports one subreddit's outcome within a run.
type SourceResult struct {
	Subreddit string `json:"subreddit"`
	Found     int    `json:"found"`
	Created   int    `json:"created"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

// Report is the best-effort summary of a whole run.
type Report struct {
	Created int            `json:"created"`
	Results []SourceResult `json:"results"`
}

// New builds a Scraper. The limiter paces requests across subreddits;
// Reddit's public listings start returning 429s well under one request per
// second sustained.
func New(fetcher PostFetcher, store IdeaStore, scorer *scoring.Scorer, limiter *rate.Limiter, logger *zap.Logger) *Scraper {
	return &Scraper{
		fetcher: fetcher,
		store:   store,
		scorer:  scorer,
		limiter: limiter,
		logger:  logger,
	}
}

// Ingest processes the subreddits strictly in sequence. A failing subreddit
// is recorded in its result entry and never aborts the rest of the run.
// Storage errors are fatal to the run.
func (s *Scraper) Ingest(ctx context.Context, subreddits []string, opts Options) (*Report, error) {
	report := &Report{}

	for _, subreddit := range subreddits {
		if err := s.limiter.Wait(ctx); err != nil {
			return report, err
		}

		result := SourceResult{Subreddit: subreddit, Success: true}

		posts, err := s.fetcher.GetTopPosts(ctx, subreddit, opts.TimeFilter, opts.PostLimit)
		if err != nil {
			s.logger.Warn("fetch failed",
				zap.String("subreddit", subreddit),
				zap.Error(err),
			)
			result.Success = false
			result.Error = err.Error()
			report.Results = append(report.Results, result)
			continue
		}

		for _, post := range posts {
			if !s.keep(post, opts) {
				continue
			}
			result.Found++

			_, created, err := s.store.InsertIdeaIfAbsent(ctx, s.candidate(post))
			if err != nil {
				// the store is the one shared resource; give up on the run
				return report, err
			}
			if created {
				result.Created++
				report.Created++
			}
		}

		s.logger.Info("subreddit ingested",
			zap.String("subreddit", subreddit),
			zap.Int("found", result.Found),
			zap.Int("created", result.Created),
		)
		report.Results = append(report.Results, result)
	}

	return report, nil
}

// Preview fetches and scores without persisting anything. Backs the manual
// scrape endpoint.
func (s *Scraper) Preview(ctx context.Context, subreddits []string, opts Options) ([]database.IdeaCandidate, error) {
	var candidates []database.IdeaCandidate

	for _, subreddit := range subreddits {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		posts, err := s.fetcher.GetTopPosts(ctx, subreddit, opts.TimeFilter, opts.PostLimit)
		if err != nil {
			return nil, err
		}

		for _, post := range posts {
			if !s.keep(post, opts) {
				continue
			}
			candidates = append(candidates, s.candidate(post))
		}
	}

	return candidates, nil
}

// keep applies the engagement floor, the body-length floor and the problem
// classifier.
func (s *Scraper) keep(post *reddit.Post, opts Options) bool {
	if post.Ups < opts.MinUpvotes {
		return false
	}
	if len(post.Selftext) <= opts.MinBodyChars {
		return false
	}
	return s.scorer.IsProblem(post.Title, post.Selftext)
}

func (s *Scraper) candidate(post *reddit.Post) database.IdeaCandidate {
	return database.IdeaCandidate{
		Problem:         post.Title,
		Description:     post.Selftext,
		Category:        "Other",
		RedditURL:       post.URL,
		RedditPostID:    post.ID,
		Subreddit:       post.Subreddit,
		PainScore:       s.scorer.PainScore(post.Title, post.Selftext, post.Ups, post.NumComments),
		ValidationScore: s.scorer.ValidationScore(post.Ups, post.NumComments),
		RedditUpvotes:   post.Ups,
		RedditComments:  post.NumComments,
	}
}
