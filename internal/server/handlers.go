package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/letieu/ideaflow/internal/database"
	"github.com/letieu/ideaflow/internal/email"
	"github.com/letieu/ideaflow/internal/ranking"
	"github.com/letieu/ideaflow/internal/scrape"
	"go.uber.org/zap"
)

const defaultListLimit = 20

type listIdeasResponse struct {
	Ideas []database.Idea `json:"ideas"`
	Count int             `json:"count"`
}

// handleListIdeas serves GET /api/ideas?category=&sort=&limit=.
func (s *Server) handleListIdeas(c echo.Context) error {
	strategy, err := ranking.ParseStrategy(c.QueryParam("sort"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	limit := defaultListLimit
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
	}

	ideas, err := s.db.ListIdeas(c.Request().Context(), database.IdeaFilter{
		Category: c.QueryParam("category"),
	})
	if err != nil {
		s.logger.Error("list ideas failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list ideas")
	}

	ranked := ranking.Rank(ideas, strategy)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	if ranked == nil {
		ranked = []database.Idea{}
	}

	return c.JSON(http.StatusOK, listIdeasResponse{Ideas: ranked, Count: len(ranked)})
}

type scrapeRequest struct {
	Subreddits []string `json:"subreddits"`
	TimeFilter string   `json:"time_filter"`
	Limit      int      `json:"limit"`
}

type scrapePreviewResponse struct {
	Ideas []database.IdeaCandidate `json:"ideas"`
	Count int                      `json:"count"`
}

// handleScrapePreview fetches and scores without persisting.
func (s *Server) handleScrapePreview(c echo.Context) error {
	var req scrapeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	opts := s.scrapeOptions()
	if req.TimeFilter != "" {
		opts.TimeFilter = req.TimeFilter
	}
	if req.Limit > 0 {
		opts.PostLimit = req.Limit
	}
	subreddits := req.Subreddits
	if len(subreddits) == 0 {
		subreddits = s.cfg.Scraper.Subreddits
	}

	candidates, err := s.scraper.Preview(c.Request().Context(), subreddits, opts)
	if err != nil {
		s.logger.Error("scrape preview failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to scrape reddit")
	}
	if candidates == nil {
		candidates = []database.IdeaCandidate{}
	}

	return c.JSON(http.StatusOK, scrapePreviewResponse{Ideas: candidates, Count: len(candidates)})
}

// handleCronScrape runs a full ingestion over the configured subreddits.
func (s *Server) handleCronScrape(c echo.Context) error {
	report, err := s.scraper.Ingest(c.Request().Context(), s.cfg.Scraper.Subreddits, s.scrapeOptions())
	if err != nil {
		s.logger.Error("cron scrape failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to scrape ideas")
	}

	return c.JSON(http.StatusOK, report)
}

func (s *Server) handleCronDigest(c echo.Context) error {
	if s.digest == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "email not configured")
	}

	sent, err := s.digest.SendDailyAlerts(c.Request().Context())
	if err != nil {
		s.logger.Error("daily digest failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to send digest")
	}

	return c.JSON(http.StatusOK, map[string]any{"success": true, "emails_sent": sent})
}

func (s *Server) handleCronWeeklyDigest(c echo.Context) error {
	if s.digest == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "email not configured")
	}

	sent, included, err := s.digest.SendWeeklyDigest(c.Request().Context())
	if err != nil {
		s.logger.Error("weekly digest failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to send weekly digest")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success":        true,
		"emails_sent":    sent,
		"ideas_included": included,
	})
}

type analyzeRequest struct {
	IdeaID int64 `json:"idea_id"`
}

// handleAnalyze runs the enrichment call for one stored idea. The analyzed
// flag records the attempt even when the call fails, so the admin view can
// tell "never tried" from "tried and failed".
func (s *Server) handleAnalyze(c echo.Context) error {
	if s.analyzer == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "anthropic API key not configured")
	}

	var req analyzeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.IdeaID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "idea_id is required")
	}

	ctx := c.Request().Context()
	idea, err := s.db.GetIdea(ctx, req.IdeaID)
	if errors.Is(err, database.ErrIdeaNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "idea not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load idea")
	}

	result, analyzeErr := s.analyzer.AnalyzeIdea(ctx, idea.Problem, idea.Description, idea.RedditUpvotes, idea.RedditComments)
	if err := s.db.SetAnalysis(ctx, idea.ID, result); err != nil {
		s.logger.Error("save analysis failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to save analysis")
	}
	if analyzeErr != nil {
		s.logger.Warn("analysis failed", zap.Int64("idea_id", idea.ID), zap.Error(analyzeErr))
		return echo.NewHTTPError(http.StatusBadGateway, "failed to analyze idea")
	}

	return c.JSON(http.StatusOK, map[string]any{"analysis": result})
}

func (s *Server) handleStats(c echo.Context) error {
	stats, err := s.db.IdeaStats(c.Request().Context())
	if err != nil {
		s.logger.Error("stats failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to compute stats")
	}
	return c.JSON(http.StatusOK, stats)
}

type generateReferralRequest struct {
	UserID string `json:"user_id"`
}

func (s *Server) handleGenerateReferral(c echo.Context) error {
	var req generateReferralRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.UserID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	code, err := s.db.GetOrCreateReferralCode(c.Request().Context(), req.UserID)
	if err != nil {
		s.logger.Error("generate referral failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to generate referral code")
	}

	return c.JSON(http.StatusOK, map[string]any{"success": true, "code": code})
}

type trackReferralRequest struct {
	Code string `json:"code"`
}

func (s *Server) handleTrackReferral(c echo.Context) error {
	var req trackReferralRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "code is required")
	}

	err := s.db.TrackReferral(c.Request().Context(), req.Code)
	if errors.Is(err, database.ErrCodeNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "invalid referral code")
	}
	if err != nil {
		s.logger.Error("track referral failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to track referral")
	}

	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

type welcomeEmailRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// handleWelcomeEmail subscribes the address and sends the welcome mail.
func (s *Server) handleWelcomeEmail(c echo.Context) error {
	if s.mailer == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "email not configured")
	}

	var req welcomeEmailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email is required")
	}

	ctx := c.Request().Context()
	err := s.db.UpsertSubscriber(ctx, database.Subscriber{
		Email:        req.Email,
		Name:         req.Name,
		IdeaAlerts:   true,
		WeeklyDigest: true,
	})
	if err != nil {
		s.logger.Error("subscribe failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to subscribe")
	}

	html, err := email.WelcomeHTML(req.Name)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to render email")
	}
	if _, err := s.mailer.Send(ctx, req.Email, "Welcome to IdeaFlow!", html); err != nil {
		s.logger.Error("welcome email failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to send welcome email")
	}

	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

func (s *Server) scrapeOptions() scrape.Options {
	return scrape.Options{
		TimeFilter:   s.cfg.Scraper.TimeFilter,
		PostLimit:    s.cfg.Scraper.PostLimit,
		MinUpvotes:   s.cfg.Scraper.MinUpvotes,
		MinBodyChars: s.cfg.Scraper.MinBodyChars,
	}
}
