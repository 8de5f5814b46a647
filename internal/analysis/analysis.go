// Package analysis enriches ideas with a best-effort Anthropic call. An
// idea never needs an analysis to exist; callers treat failures as
// out-of-band.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/go-resty/resty/v2"
	"github.com/letieu/ideaflow/config"
	"github.com/letieu/ideaflow/internal/database"
)

const prompt = `You are an expert startup advisor analyzing potential business opportunities.

Analyze this problem statement and provide detailed insights:

Problem: %s
%s
Community Engagement: %d upvotes, %d comments

Provide a comprehensive analysis in JSON format with the following structure:
{
  "problem": "Refined problem statement",
  "painLevel": 1-10 (how severe is this pain point),
  "targetCustomer": "Detailed description of who has this problem",
  "marketSize": "Small/Medium/Large",
  "competitionLevel": "Low/Medium/High",
  "monetizationIdeas": ["idea 1", "idea 2", "idea 3"],
  "techStack": ["tech1", "tech2", "tech3", "tech4"],
  "buildTimeEstimate": "X weeks/months for MVP",
  "keyInsights": ["insight 1", "insight 2", "insight 3"]
}

Be specific, actionable, and realistic. Focus on practical business insights.`

var jsonObject = regexp.MustCompile(`(?s)\{.*\}`)

type Analyzer struct {
	client *resty.Client
	model  string
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func New(cfg *config.Config) *Analyzer {
	client := resty.New().
		SetBaseURL(cfg.Anthropic.BaseURL).
		SetHeader("x-api-key", cfg.Anthropic.APIKey).
		SetHeader("anthropic-version", "2023-06-01").
		SetHeader("Content-Type", "application/json")

	return &Analyzer{
		client: client,
		model:  cfg.Anthropic.Model,
	}
}

// AnalyzeIdea asks the model for a structured analysis of one problem
// statement and parses the JSON object out of the text reply.
func (a *Analyzer) AnalyzeIdea(ctx context.Context, problem, description string, redditUpvotes, redditComments int) (*database.AIAnalysis, error) {
	descriptionLine := ""
	if description != "" {
		descriptionLine = "Description: " + description + "\n"
	}

	req := messagesRequest{
		Model:     a.model,
		MaxTokens: 2000,
		Messages: []message{
			{
				Role:    "user",
				Content: fmt.Sprintf(prompt, problem, descriptionLine, redditUpvotes, redditComments),
			},
		},
	}

	var res messagesResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&res).
		Post("/v1/messages")
	if err != nil {
		return nil, fmt.Errorf("failed to call Anthropic API: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("anthropic API error (status %d): %s", resp.StatusCode(), resp.String())
	}

	if len(res.Content) == 0 || res.Content[0].Type != "text" {
		return nil, fmt.Errorf("unexpected response content")
	}

	raw := jsonObject.FindString(res.Content[0].Text)
	if raw == "" {
		return nil, fmt.Errorf("no JSON object in model response")
	}

	var analysis database.AIAnalysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis: %w", err)
	}

	return &analysis, nil
}
