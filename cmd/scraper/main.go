package main

import (
	"context"
	"log"
	"time"

	"github.com/letieu/ideaflow/config"
	"github.com/letieu/ideaflow/internal/database"
	"github.com/letieu/ideaflow/internal/reddit"
	"github.com/letieu/ideaflow/internal/scoring"
	"github.com/letieu/ideaflow/internal/scrape"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// One-shot ingestion run, for local use and external schedulers that prefer
// a process over an HTTP hook.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.NewDB(cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redditClient, err := reddit.NewClient(cfg.Reddit.UserAgent)
	if err != nil {
		logger.Fatal("failed to build reddit client", zap.Error(err))
	}

	scorer := scoring.NewScorer(cfg.Scraper.ProblemKeywords, cfg.Scraper.EmotionalWords)
	limiter := rate.NewLimiter(rate.Every(time.Duration(cfg.Scraper.RateLimitSecs)*time.Second), 1)
	scraper := scrape.New(redditClient, db, scorer, limiter, logger)

	report, err := scraper.Ingest(context.Background(), cfg.Scraper.Subreddits, scrape.Options{
		TimeFilter:   cfg.Scraper.TimeFilter,
		PostLimit:    cfg.Scraper.PostLimit,
		MinUpvotes:   cfg.Scraper.MinUpvotes,
		MinBodyChars: cfg.Scraper.MinBodyChars,
	})
	if err != nil {
		logger.Fatal("ingestion failed", zap.Error(err))
	}

	for _, result := range report.Results {
		if !result.Success {
			logger.Warn("subreddit failed",
				zap.String("subreddit", result.Subreddit),
				zap.String("error", result.Error),
			)
			continue
		}
		logger.Info("subreddit done",
			zap.String("subreddit", result.Subreddit),
			zap.Int("found", result.Found),
			zap.Int("created", result.Created),
		)
	}
	logger.Info("ingestion complete", zap.Int("created", report.Created))
}
