// Package email sends transactional mail through the Resend HTTP API.
package email

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/letieu/ideaflow/config"
)

type Client struct {
	client *resty.Client
	from   string
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type sendResponse struct {
	ID string `json:"id"`
}

func NewClient(cfg *config.Config) *Client {
	client := resty.New().
		SetBaseURL(cfg.Resend.BaseURL).
		SetAuthToken(cfg.Resend.APIKey).
		SetHeader("Content-Type", "application/json")

	return &Client{
		client: client,
		from:   cfg.Resend.From,
	}
}

// Send delivers one HTML email and returns the provider's message id.
func (c *Client) Send(ctx context.Context, to, subject, html string) (string, error) {
	var res sendResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(sendRequest{
			From:    c.from,
			To:      []string{to},
			Subject: subject,
			HTML:    html,
		}).
		SetResult(&res).
		Post("/emails")
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("resend error (status %d): %s", resp.StatusCode(), resp.String())
	}
	return res.ID, nil
}
