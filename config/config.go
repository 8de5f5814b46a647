package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Reddit struct {
		UserAgent string
	}
	Anthropic struct {
		APIKey  string
		Model   string
		BaseURL string
	}
	Resend struct {
		APIKey  string
		From    string
		BaseURL string
	}
	Database struct {
		Type  string // "sqlite" or "libsql"
		Path  string // sqlite file path
		URL   string // libsql database url
		Token string // libsql auth token
	}
	Scraper struct {
		Subreddits      []string
		TimeFilter      string
		PostLimit       int
		MinUpvotes      int
		MinBodyChars    int
		RateLimitSecs   int
		ProblemKeywords []string
		EmotionalWords  []string
	}
	Digest struct {
		MinPainScore int
		WindowHours  int
	}
	Server struct {
		Host       string
		Port       int
		CronSecret string
	}
}

func Load() (*Config, error) {
	v := viper.New()

	// Set config file name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Set defaults
	setDefaults(v)

	// Read config file (optional - will use env vars if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using defaults and env vars
	}

	cfg := &Config{}

	// Reddit config
	cfg.Reddit.UserAgent = v.GetString("reddit.user_agent")

	// Anthropic config
	cfg.Anthropic.APIKey = v.GetString("anthropic.api_key")
	cfg.Anthropic.Model = v.GetString("anthropic.model")
	cfg.Anthropic.BaseURL = v.GetString("anthropic.base_url")

	// Resend config
	cfg.Resend.APIKey = v.GetString("resend.api_key")
	cfg.Resend.From = v.GetString("resend.from")
	cfg.Resend.BaseURL = v.GetString("resend.base_url")

	// Database config
	cfg.Database.Type = v.GetString("database.type")
	cfg.Database.Path = v.GetString("database.path")
	cfg.Database.URL = v.GetString("database.url")
	cfg.Database.Token = v.GetString("database.token")

	// Scraper config
	cfg.Scraper.Subreddits = v.GetStringSlice("scraper.subreddits")
	cfg.Scraper.TimeFilter = v.GetString("scraper.time_filter")
	cfg.Scraper.PostLimit = v.GetInt("scraper.post_limit")
	cfg.Scraper.MinUpvotes = v.GetInt("scraper.min_upvotes")
	cfg.Scraper.MinBodyChars = v.GetInt("scraper.min_body_chars")
	cfg.Scraper.RateLimitSecs = v.GetInt("scraper.rate_limit_secs")
	cfg.Scraper.ProblemKeywords = v.GetStringSlice("scraper.problem_keywords")
	cfg.Scraper.EmotionalWords = v.GetStringSlice("scraper.emotional_words")

	// Digest config
	cfg.Digest.MinPainScore = v.GetInt("digest.min_pain_score")
	cfg.Digest.WindowHours = v.GetInt("digest.window_hours")

	// Server config
	cfg.Server.Host = v.GetString("server.host")
	cfg.Server.Port = v.GetInt("server.port")
	cfg.Server.CronSecret = v.GetString("server.cron_secret")

	// Validate required fields
	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Reddit defaults
	v.SetDefault("reddit.user_agent", "IdeaFlow/1.0.0")

	// Anthropic defaults
	v.SetDefault("anthropic.model", "claude-3-5-sonnet-20241022")
	v.SetDefault("anthropic.base_url", "https://api.anthropic.com")

	// Resend defaults
	v.SetDefault("resend.from", "IdeaFlow <hello@ideaflow.app>")
	v.SetDefault("resend.base_url", "https://api.resend.com")

	// Database defaults
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.path", "ideaflow.db")

	// Scraper defaults
	v.SetDefault("scraper.subreddits", []string{
		"Entrepreneur",
		"SaaS",
		"smallbusiness",
		"startups",
		"EntrepreneurRideAlong",
		"SideProject",
	})
	v.SetDefault("scraper.time_filter", "day")
	v.SetDefault("scraper.post_limit", 25)
	v.SetDefault("scraper.min_upvotes", 10)
	v.SetDefault("scraper.min_body_chars", 50)
	v.SetDefault("scraper.rate_limit_secs", 2)
	v.SetDefault("scraper.problem_keywords", []string{
		"problem",
		"issue",
		"struggle",
		"frustrated",
		"pain",
		"difficult",
		"hard to",
		"waste",
		"need",
		"looking for",
		"how can i",
		"how do i",
		"can't find",
		"annoying",
		"inefficient",
		"time-consuming",
		"expensive",
		"complicated",
	})
	v.SetDefault("scraper.emotional_words", []string{
		"hate",
		"terrible",
		"awful",
		"frustrated",
		"angry",
		"desperate",
		"impossible",
		"nightmare",
	})

	// Digest defaults
	v.SetDefault("digest.min_pain_score", 7)
	v.SetDefault("digest.window_hours", 24)

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
}

func validate(cfg *Config) error {
	switch cfg.Database.Type {
	case "sqlite":
		if cfg.Database.Path == "" {
			return fmt.Errorf("database.path is required")
		}
	case "libsql":
		if cfg.Database.URL == "" {
			return fmt.Errorf("database.url is required")
		}
	default:
		return fmt.Errorf("unknown database.type: %s", cfg.Database.Type)
	}
	if len(cfg.Scraper.Subreddits) == 0 {
		return fmt.Errorf("scraper.subreddits is required")
	}
	if len(cfg.Scraper.ProblemKeywords) == 0 {
		return fmt.Errorf("scraper.problem_keywords is required")
	}
	return nil
}
