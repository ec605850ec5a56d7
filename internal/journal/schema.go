package journal

import "context"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS panel_journal (
		id          BIGSERIAL PRIMARY KEY,
		session_id  UUID        NOT NULL,
		direction   TEXT        NOT NULL,
		message_id  TEXT        NOT NULL,
		outcome     TEXT        NOT NULL,
		payload     JSONB,
		recorded_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS panel_journal_session_idx
		ON panel_journal (session_id, recorded_at)`,
}

const insertEntry = `
	INSERT INTO panel_journal (session_id, direction, message_id, outcome, payload, recorded_at)
	VALUES ($1, $2, $3, $4, $5, $6)
`

// EnsureSchema creates the journal table if it does not exist.
func (j *Journal) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := j.db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
