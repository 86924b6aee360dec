package domain

import "time"

// DateLayout is the layout of appointment dates (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// AppointmentRecord is a booked slot.
type AppointmentRecord struct {
	Date     string    `json:"date"`
	Time     string    `json:"time"`
	BookedAt time.Time `json:"bookedAt"`
}

// Key returns the ledger key of the record.
func (r AppointmentRecord) Key() string { return SlotKey(r.Date, r.Time) }

// SlotKey builds the ledger key for a date and time.
func SlotKey(date, time string) string { return date + "_" + time }

// BookingResult is the outcome of a booking request. A conflict is reported
// with Success false, never as an error.
type BookingResult struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
	Date    string `json:"date"`
	Time    string `json:"time"`
}
