package autoreply

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	_ "embed"
)

//go:embed db/schema.sql
var schemaSql string

// Ledger records which notification ids have already been answered.
// The feed itself has no read/unread distinction the engine can trust
// across runs, so without a ledger an interrupted run re-answers events
// on the next invocation (at-least-once delivery). The ledger makes
// repeat runs skip them.
type Ledger struct {
	db *sql.DB
}

// OpenLedger opens (and if needed initializes) the ledger database.
func OpenLedger(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(schemaSql)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Ledger{db: db}, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

// Seen reports whether the event id was already answered.
func (l *Ledger) Seen(ctx context.Context, id string) bool {
	var one int
	err := l.db.QueryRowContext(
		ctx,
		"SELECT 1 FROM replied_events WHERE id = ?",
		id,
	).Scan(&one)
	return err == nil
}

// Record marks the event id as answered.
func (l *Ledger) Record(ctx context.Context, id string) error {
	_, err := l.db.ExecContext(
		ctx,
		"INSERT OR IGNORE INTO replied_events (id, replied_at) VALUES (?, ?)",
		id, time.Now().Unix(),
	)
	return err
}
