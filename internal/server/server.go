// Package server exposes the HTTP API: idea listings, scrape and analyze
// triggers, cron hooks, referrals and email endpoints.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/letieu/ideaflow/config"
	"github.com/letieu/ideaflow/internal/analysis"
	"github.com/letieu/ideaflow/internal/database"
	"github.com/letieu/ideaflow/internal/email"
	"github.com/letieu/ideaflow/internal/scrape"
	"go.uber.org/zap"
)

type Server struct {
	echo     *echo.Echo
	db       *database.DB
	scraper  *scrape.Scraper
	analyzer *analysis.Analyzer // nil when no API key is configured
	mailer   email.Sender       // nil when no API key is configured
	digest   *email.Digest
	cfg      *config.Config
	logger   *zap.Logger
}

func New(db *database.DB, scraper *scrape.Scraper, analyzer *analysis.Analyzer, mailer email.Sender, digest *email.Digest, cfg *config.Config, logger *zap.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	s := &Server{
		echo:     e,
		db:       db,
		scraper:  scraper,
		analyzer: analyzer,
		mailer:   mailer,
		digest:   digest,
		cfg:      cfg,
		logger:   logger,
	}

	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)

	api := s.echo.Group("/api")
	api.GET("/ideas", s.handleListIdeas)
	api.POST("/scrape", s.handleScrapePreview)
	api.POST("/analyze", s.handleAnalyze)
	api.GET("/admin/stats", s.handleStats)
	api.POST("/referrals/generate", s.handleGenerateReferral)
	api.POST("/referrals/track", s.handleTrackReferral)
	api.POST("/emails/welcome", s.handleWelcomeEmail)

	cron := api.Group("/cron", s.cronAuth)
	cron.GET("/scrape-ideas", s.handleCronScrape)
	cron.GET("/daily-digest", s.handleCronDigest)
	cron.GET("/weekly-digest", s.handleCronWeeklyDigest)
}

// cronAuth guards the scheduler-only endpoints with a shared bearer secret.
func (s *Server) cronAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.cfg.Server.CronSecret == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "cron secret not configured")
		}
		header := c.Request().Header.Get("Authorization")
		if header != "Bearer "+s.cfg.Server.CronSecret {
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		return next(c)
	}
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
