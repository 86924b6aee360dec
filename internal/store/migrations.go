package store

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create appointments",
		SQL: `
			CREATE TABLE appointments (
				session_id  TEXT NOT NULL,
				slot_key    TEXT NOT NULL,
				date        TEXT NOT NULL,
				time        TEXT NOT NULL,
				booked_at   TEXT NOT NULL,
				PRIMARY KEY (session_id, slot_key)
			);
		`,
	},
	{
		Version: 2,
		Name:    "index appointments by date",
		SQL: `
			CREATE INDEX idx_appointments_date ON appointments (session_id, date, time);
		`,
	},
}
