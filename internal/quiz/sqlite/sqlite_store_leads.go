package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"swipe-quiz/internal/quiz"
)

// SaveLead records a contact submission. Retries of the same session are
// ignored so the first submission is never overwritten.
func (s *SQLiteStore) SaveLead(ctx context.Context, sessionID string, contact quiz.Contact, createdAt time.Time) error {
	if sessionID == "" {
		return errors.New("session id is required")
	}
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO contact_submissions
			(session_id, first_name, last_name, email, phone_number, company_name, created_at_unix)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sessionID,
		contact.FirstName,
		contact.LastName,
		contact.Email,
		contact.PhoneNumber,
		contact.CompanyName,
		createdAt.UnixNano(),
	)
	return err
}

// SaveResult stores the winning profile of a session, replacing an earlier
// result for the same session (a visitor may start over and finish again).
// A write completed before the stored one is ignored.
func (s *SQLiteStore) SaveResult(ctx context.Context, result quiz.ResultRecord) error {
	if result.SessionID == "" {
		return errors.New("session id is required")
	}
	if result.CompletedAt.IsZero() {
		result.CompletedAt = time.Now().UTC()
	}

	scoresJSON, err := json.Marshal(result.Scores)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO profile_results (session_id, email, winner, scores_json, completed_at_unix)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET
			email = excluded.email,
			winner = excluded.winner,
			scores_json = excluded.scores_json,
			completed_at_unix = excluded.completed_at_unix
		 WHERE excluded.completed_at_unix >= profile_results.completed_at_unix`,
		result.SessionID,
		result.Email,
		string(result.Winner),
		string(scoresJSON),
		result.CompletedAt.UnixNano(),
	)
	return err
}

// GetLead returns the most recent submission for email together with its
// result, if the session was completed.
func (s *SQLiteStore) GetLead(ctx context.Context, email string) (quiz.LeadRecord, error) {
	var (
		lead          quiz.LeadRecord
		winner        sql.NullString
		createdAtUnix int64
	)
	err := s.db.QueryRowContext(
		ctx,
		`SELECT c.session_id, c.first_name, c.last_name, c.email, c.phone_number, c.company_name,
			c.created_at_unix, r.winner
		 FROM contact_submissions c
		 LEFT JOIN profile_results r ON r.session_id = c.session_id
		 WHERE c.email = ?
		 ORDER BY c.created_at_unix DESC
		 LIMIT 1`,
		email,
	).Scan(
		&lead.SessionID,
		&lead.Contact.FirstName,
		&lead.Contact.LastName,
		&lead.Contact.Email,
		&lead.Contact.PhoneNumber,
		&lead.Contact.CompanyName,
		&createdAtUnix,
		&winner,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return quiz.LeadRecord{}, quiz.ErrLeadNotFound
		}
		return quiz.LeadRecord{}, err
	}

	lead.CreatedAt = time.Unix(0, createdAtUnix).UTC()
	if winner.Valid {
		lead.Winner = quiz.Label(winner.String)
	}
	return lead, nil
}

// CountResults tallies stored results per winning profile.
func (s *SQLiteStore) CountResults(ctx context.Context) (map[quiz.Label]int, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT winner, COUNT(*) FROM profile_results GROUP BY winner`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[quiz.Label]int)
	for rows.Next() {
		var (
			winner string
			count  int
		)
		if err := rows.Scan(&winner, &count); err != nil {
			return nil, err
		}
		counts[quiz.Label(winner)] = count
	}
	return counts, rows.Err()
}
