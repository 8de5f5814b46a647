package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
)

// Client fetches posts through Reddit's public JSON listings. The TLS
// client presents a browser fingerprint, which the listing endpoints rate
// limit far less aggressively than default Go TLS.
type Client struct {
	httpClient tls_client.HttpClient
	userAgent  string
}

type Post struct {
	ID          string
	Title       string
	Selftext    string
	URL         string
	Ups         int
	NumComments int
	Subreddit   string
	CreatedAt   time.Time
}

type listingResponse struct {
	Data struct {
		Children []struct {
			Data listingPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type listingPost struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Permalink   string  `json:"permalink"`
	Ups         int     `json:"ups"`
	NumComments int     `json:"num_comments"`
	Subreddit   string  `json:"subreddit"`
	CreatedUTC  float64 `json:"created_utc"`
}

func NewClient(userAgent string) (*Client, error) {
	options := []tls_client.HttpClientOption{
		tls_client.WithTimeoutSeconds(20),
		tls_client.WithClientProfile(profiles.Chrome_124),
	}
	httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
	if err != nil {
		return nil, err
	}

	return &Client{
		httpClient: httpClient,
		userAgent:  userAgent,
	}, nil
}

// GetTopPosts fetches up to limit top posts for the time window
// ("hour", "day", "week", "month", "year", "all").
func (c *Client) GetTopPosts(ctx context.Context, subreddit, timeFilter string, limit int) ([]*Post, error) {
	url := fmt.Sprintf(
		"https://www.reddit.com/r/%s/top.json?t=%s&limit=%d",
		subreddit, timeFilter, limit,
	)

	req, err := fhttp.NewRequestWithContext(ctx, fhttp.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("reddit error %d: %s", resp.StatusCode, body)
	}

	var listing listingResponse
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, err
	}

	var posts []*Post
	for _, child := range listing.Data.Children {
		p := child.Data
		posts = append(posts, &Post{
			ID:          p.ID,
			Title:       p.Title,
			Selftext:    p.Selftext,
			URL:         "https://reddit.com" + p.Permalink,
			Ups:         p.Ups,
			NumComments: p.NumComments,
			Subreddit:   p.Subreddit,
			CreatedAt:   time.Unix(int64(p.CreatedUTC), 0),
		})
	}

	return posts, nil
}
