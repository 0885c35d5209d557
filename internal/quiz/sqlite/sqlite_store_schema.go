package sqlite

import (
	"context"
)

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	// Results are keyed by session rather than email so a visitor who starts
	// over in a new session keeps both outcomes.
	statements := []string{
		`CREATE TABLE IF NOT EXISTS contact_submissions (
			session_id TEXT PRIMARY KEY,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			email TEXT NOT NULL,
			phone_number TEXT NOT NULL,
			company_name TEXT NOT NULL,
			created_at_unix INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS profile_results (
			session_id TEXT PRIMARY KEY,
			email TEXT NOT NULL,
			winner TEXT NOT NULL,
			scores_json TEXT NOT NULL,
			completed_at_unix INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_contact_submissions_email ON contact_submissions(email, created_at_unix DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_profile_results_email ON profile_results(email, completed_at_unix DESC);`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
