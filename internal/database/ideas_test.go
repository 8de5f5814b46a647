package database

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewSqliteDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testCandidate(url string) IdeaCandidate {
	return IdeaCandidate{
		Problem:         "Freelancers struggle to track billable hours",
		Description:     "I keep losing track of time spent per client and invoicing is a mess.",
		RedditURL:       url,
		RedditPostID:    "abc123",
		Subreddit:       "freelance",
		PainScore:       7,
		ValidationScore: 420,
		RedditUpvotes:   150,
		RedditComments:  40,
	}
}

func TestInsertIdeaIfAbsent(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	idea, created, err := db.InsertIdeaIfAbsent(ctx, testCandidate("https://reddit.com/r/freelance/1"))
	require.NoError(t, err)
	require.True(t, created)
	require.NotNil(t, idea)
	require.NotZero(t, idea.ID)
	require.Equal(t, "Other", idea.Category)
	require.False(t, idea.CreatedAt.IsZero())

	// same URL again: no-op skip, prior record untouched
	dup := testCandidate("https://reddit.com/r/freelance/1")
	dup.Problem = "a different title entirely"
	dup.PainScore = 2
	second, created, err := db.InsertIdeaIfAbsent(ctx, dup)
	require.NoError(t, err)
	require.False(t, created)
	require.Nil(t, second)

	ideas, err := db.ListIdeas(ctx, IdeaFilter{})
	require.NoError(t, err)
	require.Len(t, ideas, 1)
	require.Equal(t, "Freelancers struggle to track billable hours", ideas[0].Problem)
	require.Equal(t, 7, ideas[0].PainScore)
}

func TestInsertIdeaConcurrent(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	type outcome struct {
		created bool
		err     error
	}
	outcomes := make(chan outcome, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, created, err := db.InsertIdeaIfAbsent(ctx, testCandidate("https://reddit.com/r/startups/race"))
			outcomes <- outcome{created, err}
		}()
	}
	wg.Wait()
	close(outcomes)

	wins := 0
	for o := range outcomes {
		require.NoError(t, o.err)
		if o.created {
			wins++
		}
	}
	require.Equal(t, 1, wins)

	ideas, err := db.ListIdeas(ctx, IdeaFilter{})
	require.NoError(t, err)
	require.Len(t, ideas, 1)
}

func TestListIdeasFilter(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	saas := testCandidate("https://reddit.com/r/saas/1")
	saas.Category = "SaaS"
	_, _, err := db.InsertIdeaIfAbsent(ctx, saas)
	require.NoError(t, err)

	other := testCandidate("https://reddit.com/r/other/1")
	_, _, err = db.InsertIdeaIfAbsent(ctx, other)
	require.NoError(t, err)

	ideas, err := db.ListIdeas(ctx, IdeaFilter{Category: "saas"})
	require.NoError(t, err)
	require.Len(t, ideas, 1)
	require.Equal(t, "SaaS", ideas[0].Category)

	ideas, err = db.ListIdeas(ctx, IdeaFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, ideas, 1)

	ideas, err = db.ListIdeas(ctx, IdeaFilter{Category: "Fintech"})
	require.NoError(t, err)
	require.Empty(t, ideas)
}

func TestSetAnalysis(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	idea, _, err := db.InsertIdeaIfAbsent(ctx, testCandidate("https://reddit.com/r/x/1"))
	require.NoError(t, err)
	require.False(t, idea.Analyzed)

	analysis := &AIAnalysis{
		Problem:           "Refined statement",
		PainLevel:         8,
		TargetCustomer:    "Freelancers",
		MarketSize:        "Medium",
		CompetitionLevel:  "High",
		MonetizationIdeas: []string{"subscriptions"},
		TechStack:         []string{"Go", "SQLite"},
		BuildTimeEstimate: "6 weeks for MVP",
		KeyInsights:       []string{"invoicing is the wedge"},
	}
	require.NoError(t, db.SetAnalysis(ctx, idea.ID, analysis))

	got, err := db.GetIdea(ctx, idea.ID)
	require.NoError(t, err)
	require.True(t, got.Analyzed)
	require.NotNil(t, got.AIAnalysis)
	require.Equal(t, "Medium", got.AIAnalysis.MarketSize)
	require.Equal(t, []string{"Go", "SQLite"}, got.AIAnalysis.TechStack)

	// a failed attempt is still recorded
	idea2, _, err := db.InsertIdeaIfAbsent(ctx, testCandidate("https://reddit.com/r/x/2"))
	require.NoError(t, err)
	require.NoError(t, db.SetAnalysis(ctx, idea2.ID, nil))

	got2, err := db.GetIdea(ctx, idea2.ID)
	require.NoError(t, err)
	require.True(t, got2.Analyzed)
	require.Nil(t, got2.AIAnalysis)

	require.ErrorIs(t, db.SetAnalysis(ctx, 99999, analysis), ErrIdeaNotFound)
}

func TestGetIdeaNotFound(t *testing.T) {
	db := testDB(t)
	_, err := db.GetIdea(context.Background(), 12345)
	require.ErrorIs(t, err, ErrIdeaNotFound)
}

func TestRecentHighPainIdeas(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	low := testCandidate("https://reddit.com/r/a/1")
	low.PainScore = 4
	_, _, err := db.InsertIdeaIfAbsent(ctx, low)
	require.NoError(t, err)

	mid := testCandidate("https://reddit.com/r/a/2")
	mid.PainScore = 8
	mid.ValidationScore = 100
	_, _, err = db.InsertIdeaIfAbsent(ctx, mid)
	require.NoError(t, err)

	high := testCandidate("https://reddit.com/r/a/3")
	high.PainScore = 9
	high.ValidationScore = 900
	_, _, err = db.InsertIdeaIfAbsent(ctx, high)
	require.NoError(t, err)

	ideas, err := db.RecentHighPainIdeas(ctx, time.Now().Add(-time.Hour), 7)
	require.NoError(t, err)
	require.Len(t, ideas, 2)
	// best validated first
	require.Equal(t, 900, ideas[0].ValidationScore)
	require.Equal(t, 100, ideas[1].ValidationScore)

	// window excludes everything when since is in the future
	ideas, err = db.RecentHighPainIdeas(ctx, time.Now().Add(time.Hour), 7)
	require.NoError(t, err)
	require.Empty(t, ideas)
}

func TestTopIdeasSince(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	for i, validation := range []int{100, 900, 500} {
		cand := testCandidate(fmt.Sprintf("https://reddit.com/r/w/%d", i))
		cand.ValidationScore = validation
		_, _, err := db.InsertIdeaIfAbsent(ctx, cand)
		require.NoError(t, err)
	}

	ideas, err := db.TopIdeasSince(ctx, time.Now().Add(-time.Hour), 2)
	require.NoError(t, err)
	require.Len(t, ideas, 2)
	require.Equal(t, 900, ideas[0].ValidationScore)
	require.Equal(t, 500, ideas[1].ValidationScore)

	ideas, err = db.TopIdeasSince(ctx, time.Now().Add(time.Hour), 2)
	require.NoError(t, err)
	require.Empty(t, ideas)
}

func TestIdeaStats(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	saas := testCandidate("https://reddit.com/r/s/1")
	saas.Category = "SaaS"
	saas.PainScore = 8
	idea, _, err := db.InsertIdeaIfAbsent(ctx, saas)
	require.NoError(t, err)
	require.NoError(t, db.SetAnalysis(ctx, idea.ID, &AIAnalysis{Problem: "p"}))

	other := testCandidate("https://reddit.com/r/s/2")
	other.PainScore = 6
	_, _, err = db.InsertIdeaIfAbsent(ctx, other)
	require.NoError(t, err)

	stats, err := db.IdeaStats(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, stats.TotalIdeas)
	require.Equal(t, 1, stats.AnalyzedIdeas)
	require.InDelta(t, 7.0, stats.AvgPainScore, 0.001)
	require.Equal(t, map[string]int{"SaaS": 1, "Other": 1}, stats.ByCategory)
}
