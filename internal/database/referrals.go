package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrCodeNotFound is returned when a referral code does not exist.
var ErrCodeNotFound = errors.New("referral code not found")

// GetOrCreateReferralCode returns the user's referral code, generating one
// on first use. Safe to call repeatedly.
func (db *DB) GetOrCreateReferralCode(ctx context.Context, userID string) (string, error) {
	var code string
	err := db.conn.QueryRowContext(ctx,
		`SELECT code FROM referral_codes WHERE user_id = ?`, userID).Scan(&code)
	if err == nil {
		return code, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}

	code = newReferralCode()
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO referral_codes (user_id, code, created_at) VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO NOTHING`,
		userID, code, time.Now().Unix())
	if err != nil {
		return "", err
	}

	// re-read in case a concurrent call won the insert
	err = db.conn.QueryRowContext(ctx,
		`SELECT code FROM referral_codes WHERE user_id = ?`, userID).Scan(&code)
	if err != nil {
		return "", err
	}
	return code, nil
}

// TrackReferral records a pending referral for a known code.
func (db *DB) TrackReferral(ctx context.Context, code string) error {
	var referrerID string
	err := db.conn.QueryRowContext(ctx,
		`SELECT user_id FROM referral_codes WHERE code = ?`, code).Scan(&referrerID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrCodeNotFound
	}
	if err != nil {
		return err
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO referrals (referrer_id, code, status, created_at)
		VALUES (?, ?, 'pending', ?)`,
		referrerID, code, time.Now().Unix())
	return err
}

// CompleteReferral flips a pending referral to completed.
func (db *DB) CompleteReferral(ctx context.Context, id int64) error {
	_, err := db.conn.ExecContext(ctx,
		`UPDATE referrals SET status = 'completed' WHERE id = ?`, id)
	return err
}

// CountReferrals returns pending and completed counts for a referrer.
func (db *DB) CountReferrals(ctx context.Context, referrerID string) (pending, completed int, err error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM referrals WHERE referrer_id = ? GROUP BY status`,
		referrerID)
	if err != nil {
		return 0, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return 0, 0, err
		}
		switch status {
		case "pending":
			pending = count
		case "completed":
			completed = count
		}
	}
	return pending, completed, rows.Err()
}

// codes are short and uppercase so they survive being read aloud
func newReferralCode() string {
	id := uuid.New().String()
	return strings.ToUpper(strings.ReplaceAll(id, "-", "")[:8])
}
