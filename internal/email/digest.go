package email

import (
	"context"
	"fmt"
	"html/template"
	"math"
	"strings"
	"time"

	"github.com/letieu/ideaflow/internal/database"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Sender is the part of Client the digest needs; tests swap in a fake.
type Sender interface {
	Send(ctx context.Context, to, subject, html string) (string, error)
}

// DigestStore is the slice of the database the digest needs.
type DigestStore interface {
	ListAlertSubscribers(ctx context.Context) ([]database.Subscriber, error)
	ListWeeklyDigestSubscribers(ctx context.Context) ([]database.Subscriber, error)
	RecentHighPainIdeas(ctx context.Context, since time.Time, minPain int) ([]database.Idea, error)
	TopIdeasSince(ctx context.Context, since time.Time, limit int) ([]database.Idea, error)
}

// Digest sends each opted-in subscriber the top recent high-pain idea in
// their categories.
type Digest struct {
	store        DigestStore
	sender       Sender
	limiter      *rate.Limiter
	logger       *zap.Logger
	minPainScore int
	window       time.Duration
}

func NewDigest(store DigestStore, sender Sender, limiter *rate.Limiter, logger *zap.Logger, minPainScore, windowHours int) *Digest {
	return &Digest{
		store:        store,
		sender:       sender,
		limiter:      limiter,
		logger:       logger,
		minPainScore: minPainScore,
		window:       time.Duration(windowHours) * time.Hour,
	}
}

// SendDailyAlerts returns the number of emails sent. Per-subscriber send
// failures are logged and skipped; the job always finishes the list.
func (d *Digest) SendDailyAlerts(ctx context.Context) (int, error) {
	subscribers, err := d.store.ListAlertSubscribers(ctx)
	if err != nil {
		return 0, err
	}
	if len(subscribers) == 0 {
		return 0, nil
	}

	since := time.Now().Add(-d.window)
	ideas, err := d.store.RecentHighPainIdeas(ctx, since, d.minPainScore)
	if err != nil {
		return 0, err
	}
	if len(ideas) == 0 {
		return 0, nil
	}

	sent := 0
	for _, sub := range subscribers {
		idea, ok := topIdeaFor(sub, ideas)
		if !ok {
			continue
		}

		if err := d.limiter.Wait(ctx); err != nil {
			return sent, err
		}

		subject := fmt.Sprintf("New %s Opportunity: %s", idea.Category, truncate(idea.Problem, 50))
		html, err := AlertHTML(sub.Name, idea)
		if err != nil {
			return sent, err
		}

		if _, err := d.sender.Send(ctx, sub.Email, subject, html); err != nil {
			d.logger.Warn("alert email failed",
				zap.String("email", sub.Email),
				zap.Error(err),
			)
			continue
		}
		sent++
	}

	return sent, nil
}

const weeklyIdeaLimit = 10

// SendWeeklyDigest mails the top ideas of the past week to every
// subscriber who opted into the weekly digest. Returns how many emails
// went out and how many ideas each one listed.
func (d *Digest) SendWeeklyDigest(ctx context.Context) (sent, included int, err error) {
	subscribers, err := d.store.ListWeeklyDigestSubscribers(ctx)
	if err != nil {
		return 0, 0, err
	}
	if len(subscribers) == 0 {
		return 0, 0, nil
	}

	since := time.Now().Add(-7 * 24 * time.Hour)
	ideas, err := d.store.TopIdeasSince(ctx, since, weeklyIdeaLimit)
	if err != nil {
		return 0, 0, err
	}
	if len(ideas) == 0 {
		return 0, 0, nil
	}

	week := weekNumber(time.Now())
	subject := fmt.Sprintf("%d Hot Startup Ideas This Week", len(ideas))

	for _, sub := range subscribers {
		if err := d.limiter.Wait(ctx); err != nil {
			return sent, len(ideas), err
		}

		html, err := WeeklyHTML(sub.Name, ideas, week)
		if err != nil {
			return sent, len(ideas), err
		}

		if _, err := d.sender.Send(ctx, sub.Email, subject, html); err != nil {
			d.logger.Warn("weekly digest email failed",
				zap.String("email", sub.Email),
				zap.Error(err),
			)
			continue
		}
		sent++
	}

	return sent, len(ideas), nil
}

// weekNumber counts calendar weeks since January 1st.
func weekNumber(t time.Time) int {
	start := time.Date(t.Year(), 1, 1, 0, 0, 0, 0, t.Location())
	return int(math.Ceil(t.Sub(start).Hours() / (24 * 7)))
}

// topIdeaFor picks the first (best validated) idea matching the
// subscriber's category preferences; no preferences means any category.
func topIdeaFor(sub database.Subscriber, ideas []database.Idea) (database.Idea, bool) {
	prefs := splitCategories(sub.Categories)
	if len(prefs) == 0 {
		return ideas[0], true
	}
	for _, idea := range ideas {
		for _, category := range prefs {
			if strings.EqualFold(idea.Category, category) {
				return idea, true
			}
		}
	}
	return database.Idea{}, false
}

func splitCategories(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// truncate counts runes, not bytes, so a multi-byte title never yields a
// broken subject line.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

var alertTemplate = template.Must(template.New("alert").Parse(`<html>
<body style="font-family: sans-serif; color: #1a1a1a;">
  <h2>Hi {{if .Name}}{{.Name}}{{else}}there{{end}},</h2>
  <p>A new validated problem just surfaced on IdeaFlow:</p>
  <h3>{{.Idea.Problem}}</h3>
  {{if .Idea.Description}}<p>{{.Idea.Description}}</p>{{end}}
  <ul>
    <li>Category: {{.Idea.Category}}</li>
    <li>Pain score: {{.Idea.PainScore}}/10</li>
    <li>Validation score: {{.Idea.ValidationScore}}</li>
    <li>Reddit engagement: {{.Idea.RedditUpvotes}} upvotes, {{.Idea.RedditComments}} comments</li>
  </ul>
  <p><a href="{{.Idea.RedditURL}}">Read the original discussion</a></p>
</body>
</html>`))

var welcomeTemplate = template.Must(template.New("welcome").Parse(`<html>
<body style="font-family: sans-serif; color: #1a1a1a;">
  <h2>Welcome to IdeaFlow, {{if .Name}}{{.Name}}{{else}}there{{end}}!</h2>
  <p>Every day we scan founder communities for real, validated problems and
  score them so you don't have to.</p>
  <p>You'll get an alert whenever a high-pain opportunity shows up.</p>
</body>
</html>`))

var weeklyTemplate = template.Must(template.New("weekly").Parse(`<html>
<body style="font-family: sans-serif; color: #1a1a1a;">
  <h2>Hi {{if .Name}}{{.Name}}{{else}}there{{end}},</h2>
  <p>The most validated problems founders surfaced in week {{.Week}}:</p>
  <ol>
  {{range .Ideas}}
    <li>
      <strong>{{.Problem}}</strong> ({{.Category}})<br>
      Pain {{.PainScore}}/10, validation {{.ValidationScore}}, {{.RedditUpvotes}} upvotes
    </li>
  {{end}}
  </ol>
  <p>See you next week.</p>
</body>
</html>`))

func AlertHTML(name string, idea database.Idea) (string, error) {
	var b strings.Builder
	err := alertTemplate.Execute(&b, struct {
		Name string
		Idea database.Idea
	}{name, idea})
	return b.String(), err
}

func WeeklyHTML(name string, ideas []database.Idea, week int) (string, error) {
	var b strings.Builder
	err := weeklyTemplate.Execute(&b, struct {
		Name  string
		Week  int
		Ideas []database.Idea
	}{name, week, ideas})
	return b.String(), err
}

func WelcomeHTML(name string) (string, error) {
	var b strings.Builder
	err := welcomeTemplate.Execute(&b, struct{ Name string }{name})
	return b.String(), err
}
