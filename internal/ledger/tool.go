package ledger

import (
	"context"
	"encoding/json"
	"fmt"
)

// ToolName is the name the scheduling agent calls the booking tool by.
const ToolName = "book_appointment"

const bookSchema = `{
  "type": "object",
  "properties": {
    "date": {
      "type": "string",
      "description": "Appointment date as YYYY-MM-DD, or next_wednesday for the coming Wednesday",
      "pattern": "^(\\d{4}-\\d{2}-\\d{2}|next_wednesday)$"
    },
    "time": {
      "type": "string",
      "description": "Appointment time as HH:MM (24-hour)",
      "pattern": "^\\d{2}:\\d{2}$"
    }
  },
  "required": ["date", "time"],
  "additionalProperties": false
}`

// BookTool exposes Ledger.Book to agents.
type BookTool struct {
	ledger *Ledger
}

// NewBookTool creates the booking tool over l.
func NewBookTool(l *Ledger) *BookTool {
	return &BookTool{ledger: l}
}

func (t *BookTool) Name() string { return ToolName }

func (t *BookTool) Description() string {
	return "Book an appointment slot. Fails if the slot is already booked."
}

func (t *BookTool) InputSchema() string { return bookSchema }

type bookInput struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// Execute books the slot and returns the BookingResult as JSON. A taken slot
// is a successful call with success=false in the output.
func (t *BookTool) Execute(ctx context.Context, input string) (string, error) {
	var in bookInput
	if err := json.Unmarshal([]byte(input), &in); err != nil {
		return "", fmt.Errorf("parsing booking input: %w", err)
	}
	res := t.ledger.Book(ctx, in.Date, in.Time)
	out, err := json.Marshal(res)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
