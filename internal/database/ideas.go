package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// ErrIdeaNotFound is returned by GetIdea for unknown ids.
var ErrIdeaNotFound = errors.New("idea not found")

// IdeaFilter narrows ListIdeas. Zero value means everything.
type IdeaFilter struct {
	Category string
	Limit    int
}

const ideaColumns = `id, problem, description, category, reddit_url, reddit_post_id, subreddit,
	pain_score, validation_score, upvotes, reddit_upvotes, reddit_comments,
	ai_analysis, analyzed, created_at, updated_at`

// InsertIdeaIfAbsent creates a new idea unless one already exists for the
// candidate's reddit_url. The UNIQUE constraint makes the check-then-insert
// atomic; a conflict is a skip, not an error. Returns the created idea and
// whether a row was inserted.
func (db *DB) InsertIdeaIfAbsent(ctx context.Context, cand IdeaCandidate) (*Idea, bool, error) {
	category := cand.Category
	if category == "" {
		category = "Other"
	}
	now := time.Now().Unix()

	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO ideas (problem, description, category, reddit_url, reddit_post_id, subreddit,
			pain_score, validation_score, reddit_upvotes, reddit_comments, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (reddit_url) DO NOTHING`,
		cand.Problem,
		cand.Description,
		category,
		cand.RedditURL,
		cand.RedditPostID,
		cand.Subreddit,
		cand.PainScore,
		cand.ValidationScore,
		cand.RedditUpvotes,
		cand.RedditComments,
		now,
		now,
	)
	if err != nil {
		return nil, false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}
	if affected == 0 {
		// a prior record owns this URL, leave it untouched
		return nil, false, nil
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, false, err
	}

	return &Idea{
		ID:              id,
		Problem:         cand.Problem,
		Description:     cand.Description,
		Category:        category,
		RedditURL:       cand.RedditURL,
		RedditPostID:    cand.RedditPostID,
		Subreddit:       cand.Subreddit,
		PainScore:       cand.PainScore,
		ValidationScore: cand.ValidationScore,
		RedditUpvotes:   cand.RedditUpvotes,
		RedditComments:  cand.RedditComments,
		CreatedAt:       time.Unix(now, 0),
		UpdatedAt:       time.Unix(now, 0),
	}, true, nil
}

// ListIdeas returns ideas in storage order; sorting is the ranking
// package's job.
func (db *DB) ListIdeas(ctx context.Context, filter IdeaFilter) ([]Idea, error) {
	query := `SELECT ` + ideaColumns + ` FROM ideas`
	var args []any
	if filter.Category != "" {
		query += ` WHERE category = ? COLLATE NOCASE`
		args = append(args, filter.Category)
	}
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ideas []Idea
	for rows.Next() {
		idea, err := scanIdea(rows)
		if err != nil {
			return nil, err
		}
		ideas = append(ideas, *idea)
	}
	return ideas, rows.Err()
}

func (db *DB) GetIdea(ctx context.Context, id int64) (*Idea, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+ideaColumns+` FROM ideas WHERE id = ?`, id)
	idea, err := scanIdea(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrIdeaNotFound
	}
	return idea, err
}

// SetAnalysis records an enrichment attempt. A nil analysis still flips the
// analyzed flag so failed attempts are visible.
func (db *DB) SetAnalysis(ctx context.Context, id int64, analysis *AIAnalysis) error {
	var raw any
	if analysis != nil {
		data, err := json.Marshal(analysis)
		if err != nil {
			return err
		}
		raw = string(data)
	}

	res, err := db.conn.ExecContext(ctx,
		`UPDATE ideas SET ai_analysis = ?, analyzed = 1, updated_at = ? WHERE id = ?`,
		raw, time.Now().Unix(), id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrIdeaNotFound
	}
	return nil
}

// RecentHighPainIdeas returns ideas created after since with at least
// minPain, best validated first. Feeds the daily digest.
func (db *DB) RecentHighPainIdeas(ctx context.Context, since time.Time, minPain int) ([]Idea, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+ideaColumns+` FROM ideas
		WHERE created_at >= ? AND pain_score >= ?
		ORDER BY validation_score DESC`,
		since.Unix(), minPain)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ideas []Idea
	for rows.Next() {
		idea, err := scanIdea(rows)
		if err != nil {
			return nil, err
		}
		ideas = append(ideas, *idea)
	}
	return ideas, rows.Err()
}

// TopIdeasSince returns the best validated ideas created after since,
// capped at limit. Feeds the weekly digest.
func (db *DB) TopIdeasSince(ctx context.Context, since time.Time, limit int) ([]Idea, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+ideaColumns+` FROM ideas
		WHERE created_at >= ?
		ORDER BY validation_score DESC
		LIMIT ?`,
		since.Unix(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ideas []Idea
	for rows.Next() {
		idea, err := scanIdea(rows)
		if err != nil {
			return nil, err
		}
		ideas = append(ideas, *idea)
	}
	return ideas, rows.Err()
}

func (db *DB) IdeaStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{ByCategory: make(map[string]int)}

	row := db.conn.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(analyzed), 0), COALESCE(AVG(pain_score), 0) FROM ideas`)
	if err := row.Scan(&stats.TotalIdeas, &stats.AnalyzedIdeas, &stats.AvgPainScore); err != nil {
		return nil, err
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT category, COUNT(*) FROM ideas GROUP BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		stats.ByCategory[category] = count
	}
	return stats, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIdea(row rowScanner) (*Idea, error) {
	var idea Idea
	var analysisRaw sql.NullString
	var analyzed int
	var createdAt, updatedAt int64

	err := row.Scan(
		&idea.ID,
		&idea.Problem,
		&idea.Description,
		&idea.Category,
		&idea.RedditURL,
		&idea.RedditPostID,
		&idea.Subreddit,
		&idea.PainScore,
		&idea.ValidationScore,
		&idea.Upvotes,
		&idea.RedditUpvotes,
		&idea.RedditComments,
		&analysisRaw,
		&analyzed,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	idea.Analyzed = analyzed != 0
	idea.CreatedAt = time.Unix(createdAt, 0)
	idea.UpdatedAt = time.Unix(updatedAt, 0)

	if analysisRaw.Valid && analysisRaw.String != "" {
		var analysis AIAnalysis
		if err := json.Unmarshal([]byte(analysisRaw.String), &analysis); err != nil {
			return nil, err
		}
		idea.AIAnalysis = &analysis
	}

	return &idea, nil
}
