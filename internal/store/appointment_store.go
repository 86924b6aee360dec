package store

import (
	"context"
	"fmt"
	"time"

	"github.com/KLM-Solutions/swarm-bot/internal/domain"
	"github.com/KLM-Solutions/swarm-bot/internal/ledger"
)

// AppointmentStore implements ledger.Store for one session's bookings.
type AppointmentStore struct {
	db        *DB
	sessionID string
}

// NewAppointmentStore returns the bookings owned by sessionID.
func NewAppointmentStore(db *DB, sessionID string) *AppointmentStore {
	return &AppointmentStore{db: db, sessionID: sessionID}
}

// Insert adds rec. The primary key rejects a second booking of the same slot.
func (s *AppointmentStore) Insert(ctx context.Context, rec domain.AppointmentRecord) error {
	res, err := s.db.sql.ExecContext(ctx,
		`INSERT INTO appointments (session_id, slot_key, date, time, booked_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (session_id, slot_key) DO NOTHING`,
		s.sessionID, rec.Key(), rec.Date, rec.Time, rec.BookedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting appointment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("inserting appointment: %w", err)
	}
	if n == 0 {
		return ledger.ErrSlotTaken
	}
	return nil
}

// List returns the session's bookings ordered by slot.
func (s *AppointmentStore) List(ctx context.Context) ([]domain.AppointmentRecord, error) {
	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT date, time, booked_at FROM appointments
		 WHERE session_id = ? ORDER BY slot_key`, s.sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}
	defer rows.Close()

	var out []domain.AppointmentRecord
	for rows.Next() {
		var rec domain.AppointmentRecord
		var bookedAt string
		if err := rows.Scan(&rec.Date, &rec.Time, &bookedAt); err != nil {
			return nil, fmt.Errorf("scanning appointment: %w", err)
		}
		rec.BookedAt, _ = time.Parse(time.RFC3339Nano, bookedAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Reset deletes the session's bookings.
func (s *AppointmentStore) Reset(ctx context.Context) error {
	if _, err := s.db.sql.ExecContext(ctx, `DELETE FROM appointments WHERE session_id = ?`, s.sessionID); err != nil {
		return fmt.Errorf("resetting appointments: %w", err)
	}
	return nil
}
