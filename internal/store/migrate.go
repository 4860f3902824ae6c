package store

import (
	"context"
	"fmt"
	"strings"
)

// schema is shared by both dialects; {{ts}} is the timestamp column type.
const schema = `
CREATE TABLE IF NOT EXISTS students (
	id           TEXT PRIMARY KEY,
	reg_number   TEXT NOT NULL UNIQUE,
	name         TEXT NOT NULL,
	room_number  TEXT NOT NULL UNIQUE,
	phone_number TEXT
);

CREATE TABLE IF NOT EXISTS attendance (
	id         TEXT PRIMARY KEY,
	student_id TEXT NOT NULL REFERENCES students(id),
	day        TEXT NOT NULL,
	status     TEXT NOT NULL,
	UNIQUE (student_id, day)
);

CREATE TABLE IF NOT EXISTS complaints (
	id          TEXT PRIMARY KEY,
	student_id  TEXT NOT NULL REFERENCES students(id),
	department  TEXT NOT NULL,
	description TEXT NOT NULL,
	date_filed  {{ts}} NOT NULL,
	status      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS feedback (
	id             TEXT PRIMARY KEY,
	student_id     TEXT REFERENCES students(id),
	rating         INTEGER NOT NULL,
	comments       TEXT NOT NULL,
	date_submitted {{ts}} NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_attendance_day ON attendance(day);
CREATE INDEX IF NOT EXISTS idx_complaints_student ON complaints(student_id);
`

// Migrate creates the hostel tables if they do not exist.
func (d *DB) Migrate(ctx context.Context) error {
	ts := "TIMESTAMP"
	if d.Driver == DriverPostgres {
		ts = "TIMESTAMPTZ"
	}
	ddl := strings.ReplaceAll(schema, "{{ts}}", ts)
	for _, stmt := range strings.Split(ddl, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := d.Client.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
