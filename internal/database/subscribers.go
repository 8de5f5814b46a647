package database

import (
	"context"
	"time"
)

// UpsertSubscriber creates or updates a subscriber record keyed by email.
func (db *DB) UpsertSubscriber(ctx context.Context, sub Subscriber) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO subscribers (email, name, idea_alerts, weekly_digest, categories, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (email) DO UPDATE SET
			name = excluded.name,
			idea_alerts = excluded.idea_alerts,
			weekly_digest = excluded.weekly_digest,
			categories = excluded.categories`,
		sub.Email,
		sub.Name,
		boolToInt(sub.IdeaAlerts),
		boolToInt(sub.WeeklyDigest),
		sub.Categories,
		time.Now().Unix(),
	)
	return err
}

// ListAlertSubscribers returns subscribers who opted into idea alerts.
func (db *DB) ListAlertSubscribers(ctx context.Context) ([]Subscriber, error) {
	return db.listSubscribers(ctx, "idea_alerts = 1")
}

// ListWeeklyDigestSubscribers returns subscribers who opted into the
// weekly digest.
func (db *DB) ListWeeklyDigestSubscribers(ctx context.Context) ([]Subscriber, error) {
	return db.listSubscribers(ctx, "weekly_digest = 1")
}

func (db *DB) listSubscribers(ctx context.Context, where string) ([]Subscriber, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT email, name, idea_alerts, weekly_digest, categories, created_at
		FROM subscribers WHERE `+where)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []Subscriber
	for rows.Next() {
		var sub Subscriber
		var alerts, digest int
		var createdAt int64
		if err := rows.Scan(&sub.Email, &sub.Name, &alerts, &digest, &sub.Categories, &createdAt); err != nil {
			return nil, err
		}
		sub.IdeaAlerts = alerts != 0
		sub.WeeklyDigest = digest != 0
		sub.CreatedAt = time.Unix(createdAt, 0)
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
