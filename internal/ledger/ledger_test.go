package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/KLM-Solutions/swarm-bot/internal/agent"
	"github.com/KLM-Solutions/swarm-bot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 9, 30, 0, 0, time.UTC)
}

func fixedClock(t time.Time) Option {
	return WithClock(func() time.Time { return t })
}

func TestResolveNextWednesday(t *testing.T) {
	tests := []struct {
		name  string
		today time.Time
		want  string
	}{
		{"wednesday is same day", day(2024, time.January, 3), "2024-01-03"},
		{"thursday is six days ahead", day(2024, time.January, 4), "2024-01-10"},
		{"tuesday is one day ahead", day(2024, time.January, 2), "2024-01-03"},
		{"monday", day(2024, time.January, 1), "2024-01-03"},
		{"sunday", day(2024, time.January, 7), "2024-01-10"},
		{"across month end", day(2024, time.January, 31), "2024-01-31"},
		{"across year end", day(2025, time.December, 26), "2025-12-31"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveNextWednesday(tt.today)
			assert.Equal(t, tt.want, got.Format(domain.DateLayout))
			assert.Equal(t, time.Wednesday, got.Weekday())
		})
	}
}

func TestBook(t *testing.T) {
	store := NewMemoryStore()
	l := New(store, fixedClock(day(2024, time.January, 4)))
	ctx := context.Background()

	res := l.Book(ctx, "2024-02-01", "10:00")
	assert.True(t, res.Success)
	assert.Equal(t, "Appointment booked for 2024-02-01 at 10:00.", res.Message)
	assert.Equal(t, "2024-02-01", res.Date)
	assert.Equal(t, "10:00", res.Time)

	recs, err := l.Appointments(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "2024-02-01_10:00", recs[0].Key())
	assert.Equal(t, day(2024, time.January, 4), recs[0].BookedAt)
}

func TestBookTwiceRejectsSecond(t *testing.T) {
	store := NewMemoryStore()
	l := New(store, fixedClock(day(2024, time.January, 2)))
	ctx := context.Background()

	first := l.Book(ctx, NextWednesday, "15:00")
	second := l.Book(ctx, NextWednesday, "15:00")

	assert.True(t, first.Success)
	assert.Equal(t, "2024-01-03", first.Date)
	assert.False(t, second.Success)
	assert.Contains(t, second.Message, "already booked")
	assert.Equal(t, "The 15:00 slot on 2024-01-03 is already booked. Please choose another time.", second.Message)

	recs, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestBookSameDateDifferentTimes(t *testing.T) {
	l := New(NewMemoryStore())
	ctx := context.Background()
	assert.True(t, l.Book(ctx, "2024-03-01", "09:00").Success)
	assert.True(t, l.Book(ctx, "2024-03-01", "09:30").Success)

	recs, err := l.Appointments(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "09:00", recs[0].Time)
	assert.Equal(t, "09:30", recs[1].Time)
}

type failingStore struct{ MemoryStore }

func (f *failingStore) Insert(context.Context, domain.AppointmentRecord) error {
	return errors.New("disk full")
}

func TestBookStoreFailure(t *testing.T) {
	l := New(&failingStore{})
	res := l.Book(context.Background(), "2024-03-01", "09:00")
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "disk full")
}

func TestReset(t *testing.T) {
	l := New(NewMemoryStore())
	ctx := context.Background()
	l.Book(ctx, "2024-03-01", "09:00")
	require.NoError(t, l.Reset(ctx))

	recs, err := l.Appointments(ctx)
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.True(t, l.Book(ctx, "2024-03-01", "09:00").Success)
}

func TestBookTool(t *testing.T) {
	l := New(NewMemoryStore(), fixedClock(day(2024, time.January, 3)))
	tool := NewBookTool(l)
	var _ agent.Tool = tool

	assert.Equal(t, "book_appointment", tool.Name())
	assert.NotEmpty(t, tool.Description())

	out, err := tool.Execute(context.Background(), `{"date":"next_wednesday","time":"15:00"}`)
	require.NoError(t, err)

	var res domain.BookingResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.Success)
	assert.Equal(t, "2024-01-03", res.Date)

	out, err = tool.Execute(context.Background(), `{"date":"2024-01-03","time":"15:00"}`)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.False(t, res.Success)

	_, err = tool.Execute(context.Background(), `not json`)
	assert.Error(t, err)
}

func TestBookToolSchema(t *testing.T) {
	schema := NewBookTool(New(NewMemoryStore())).InputSchema()
	assert.NoError(t, agent.ValidateInput(schema, `{"date":"2024-01-03","time":"15:00"}`))
	assert.NoError(t, agent.ValidateInput(schema, `{"date":"next_wednesday","time":"09:05"}`))
	assert.Error(t, agent.ValidateInput(schema, `{"date":"tomorrow","time":"15:00"}`))
	assert.Error(t, agent.ValidateInput(schema, `{"date":"2024-01-03","time":"3pm"}`))
	assert.Error(t, agent.ValidateInput(schema, `{"date":"2024-01-03"}`))
}
