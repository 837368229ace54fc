package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sheetcaller/backend/internal/models"
)

const schema = `CREATE TABLE IF NOT EXISTS call_events (
	id          BIGSERIAL PRIMARY KEY,
	lead_id     TEXT NOT NULL,
	call_sid    TEXT NOT NULL DEFAULT '',
	kind        TEXT NOT NULL,
	raw_status  TEXT NOT NULL DEFAULT '',
	duration    INTEGER NOT NULL DEFAULT 0,
	digits      TEXT NOT NULL DEFAULT '',
	speech      TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT '',
	response    TEXT NOT NULL DEFAULT '',
	applied     BOOLEAN NOT NULL DEFAULT FALSE,
	received_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS call_events_lead_idx ON call_events (lead_id, received_at DESC);`

// Store is the Postgres call journal. Lead state is never kept here.
type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, schema)
	return err
}

func (s *Store) Record(ctx context.Context, ev models.CallEvent) error {
	_, err := s.Pool.Exec(ctx, `INSERT INTO call_events
		(lead_id, call_sid, kind, raw_status, duration, digits, speech, status, response, applied, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		ev.LeadID, ev.CallSID, ev.Kind, ev.RawStatus, ev.Duration, ev.Digits, ev.Speech,
		string(ev.Status), ev.Response, ev.Applied, ev.ReceivedAt)
	return err
}

// ListCallEvents returns the newest events first, optionally for one lead.
func (s *Store) ListCallEvents(ctx context.Context, leadID string, limit int) ([]models.CallEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var (
		rows pgx.Rows
		err  error
	)
	const cols = `SELECT id, lead_id, call_sid, kind, raw_status, duration, digits, speech, status, response, applied, received_at FROM call_events`
	if leadID != "" {
		rows, err = s.Pool.Query(ctx, cols+` WHERE lead_id = $1 ORDER BY received_at DESC, id DESC LIMIT $2`, leadID, limit)
	} else {
		rows, err = s.Pool.Query(ctx, cols+` ORDER BY received_at DESC, id DESC LIMIT $1`, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.CallEvent{}
	for rows.Next() {
		var (
			ev     models.CallEvent
			status string
		)
		if err := rows.Scan(&ev.ID, &ev.LeadID, &ev.CallSID, &ev.Kind, &ev.RawStatus, &ev.Duration,
			&ev.Digits, &ev.Speech, &status, &ev.Response, &ev.Applied, &ev.ReceivedAt); err != nil {
			return nil, err
		}
		ev.Status = models.LeadStatus(status)
		out = append(out, ev)
	}
	return out, rows.Err()
}
