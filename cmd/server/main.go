package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/letieu/ideaflow/config"
	"github.com/letieu/ideaflow/internal/analysis"
	"github.com/letieu/ideaflow/internal/database"
	"github.com/letieu/ideaflow/internal/email"
	"github.com/letieu/ideaflow/internal/reddit"
	"github.com/letieu/ideaflow/internal/scoring"
	"github.com/letieu/ideaflow/internal/scrape"
	"github.com/letieu/ideaflow/internal/server"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

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
	scrapeLimiter := rate.NewLimiter(rate.Every(time.Duration(cfg.Scraper.RateLimitSecs)*time.Second), 1)
	scraper := scrape.New(redditClient, db, scorer, scrapeLimiter, logger)

	var analyzer *analysis.Analyzer
	if cfg.Anthropic.APIKey != "" {
		analyzer = analysis.New(cfg)
	}

	var mailer email.Sender
	var digest *email.Digest
	if cfg.Resend.APIKey != "" {
		client := email.NewClient(cfg)
		mailer = client
		digestLimiter := rate.NewLimiter(rate.Every(100*time.Millisecond), 1)
		digest = email.NewDigest(db, client, digestLimiter, logger, cfg.Digest.MinPainScore, cfg.Digest.WindowHours)
	}

	srv := server.New(db, scraper, analyzer, mailer, digest, cfg, logger)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}
