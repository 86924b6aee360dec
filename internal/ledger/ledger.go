// Package ledger books appointment slots keyed by date and time.
//
// A slot is booked at most once. A conflicting request is reported in the
// BookingResult, never as an error and never by overwriting.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KLM-Solutions/swarm-bot/internal/domain"
	"github.com/KLM-Solutions/swarm-bot/internal/logging"
)

// NextWednesday is the symbolic date resolved to the coming Wednesday.
const NextWednesday = "next_wednesday"

// ErrSlotTaken is returned by a Store when the slot key already exists.
var ErrSlotTaken = errors.New("slot already booked")

// Store holds booked appointments.
type Store interface {
	// Insert adds a record, failing with ErrSlotTaken if its key exists.
	Insert(ctx context.Context, rec domain.AppointmentRecord) error
	// List returns all records ordered by date and time.
	List(ctx context.Context) ([]domain.AppointmentRecord, error)
	// Reset removes every record.
	Reset(ctx context.Context) error
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock sets the time source used for booking times and date tokens.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithLogger sets the ledger's logger.
func WithLogger(log *logging.Logger) Option {
	return func(l *Ledger) { l.log = log.Sub("ledger") }
}

// Ledger books appointments into a Store.
type Ledger struct {
	store Store
	now   func() time.Time
	log   *logging.Logger
}

// New creates a ledger over store.
func New(store Store, opts ...Option) *Ledger {
	l := &Ledger{
		store: store,
		now:   time.Now,
		log:   logging.New(nil, "silent"),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Book reserves the slot at date and time. date may be NextWednesday.
func (l *Ledger) Book(ctx context.Context, date, slot string) domain.BookingResult {
	now := l.now()
	if date == NextWednesday {
		date = ResolveNextWednesday(now).Format(domain.DateLayout)
	}

	rec := domain.AppointmentRecord{Date: date, Time: slot, BookedAt: now}
	err := l.store.Insert(ctx, rec)
	switch {
	case err == nil:
		l.log.Info().Str("date", date).Str("time", slot).Msg("appointment booked")
		return domain.BookingResult{
			Message: fmt.Sprintf("Appointment booked for %s at %s.", date, slot),
			Success: true,
			Date:    date,
			Time:    slot,
		}
	case errors.Is(err, ErrSlotTaken):
		l.log.Info().Str("date", date).Str("time", slot).Msg("slot already booked")
		return domain.BookingResult{
			Message: fmt.Sprintf("The %s slot on %s is already booked. Please choose another time.", slot, date),
			Date:    date,
			Time:    slot,
		}
	default:
		l.log.Error().Err(err).Str("date", date).Str("time", slot).Msg("booking failed")
		return domain.BookingResult{
			Message: fmt.Sprintf("Unable to book %s at %s: %v", date, slot, err),
			Date:    date,
			Time:    slot,
		}
	}
}

// Appointments returns every booked record.
func (l *Ledger) Appointments(ctx context.Context) ([]domain.AppointmentRecord, error) {
	return l.store.List(ctx)
}

// Reset drops every booking.
func (l *Ledger) Reset(ctx context.Context) error {
	return l.store.Reset(ctx)
}

// ResolveNextWednesday returns the date of the coming Wednesday, which is
// today when today is a Wednesday. Weekdays count from Monday=0.
func ResolveNextWednesday(today time.Time) time.Time {
	monday0 := (int(today.Weekday()) + 6) % 7
	days := (2 - monday0 + 7) % 7
	y, m, d := today.Date()
	return time.Date(y, m, d+days, 0, 0, 0, 0, today.Location())
}
