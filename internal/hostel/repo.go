package hostel

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository persists hostel data through database/sql. The queries are
// portable between the Postgres (pgx) and SQLite drivers.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// FindStudent returns the student whose room or registration number equals
// identifier exactly, or nil when none does.
func (r *Repository) FindStudent(ctx context.Context, identifier string) (*Student, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, reg_number, name, room_number, phone_number
		FROM students
		WHERE room_number = $1 OR reg_number = $1
		LIMIT 1
	`, identifier)
	st, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &st, nil
}

// InsertAttendance appends a record unless one already exists for the
// same student and day, in which case it returns false.
func (r *Repository) InsertAttendance(ctx context.Context, rec AttendanceRecord) (bool, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Status == "" {
		rec.Status = StatusPresent
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance (id, student_id, day, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (student_id, day) DO NOTHING
	`, rec.ID, rec.StudentID, rec.Day.String(), rec.Status)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// InsertComplaint appends a complaint.
func (r *Repository) InsertComplaint(ctx context.Context, c Complaint) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.FiledAt.IsZero() {
		c.FiledAt = time.Now()
	}
	if c.Status == "" {
		c.Status = StatusPending
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO complaints (id, student_id, department, description, date_filed, status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, c.ID, c.StudentID, c.Department, c.Description, c.FiledAt.UTC(), c.Status)
	return err
}

// InsertFeedback appends a feedback entry.
func (r *Repository) InsertFeedback(ctx context.Context, f Feedback) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.SubmittedAt.IsZero() {
		f.SubmittedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO feedback (id, student_id, rating, comments, date_submitted)
		VALUES ($1, $2, $3, $4, $5)
	`, f.ID, f.StudentID, f.Rating, f.Comments, f.SubmittedAt.UTC())
	return err
}

// CountStudents returns the roster size.
func (r *Repository) CountStudents(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM students`).Scan(&n)
	return n, err
}

// InsertStudents bulk-loads a roster in one transaction. Identifiers are
// stored uppercase.
func (r *Repository) InsertStudents(ctx context.Context, students []Student) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO students (id, reg_number, name, room_number, phone_number)
		VALUES ($1, $2, $3, $4, $5)
	`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, st := range students {
		if st.ID == "" {
			st.ID = uuid.NewString()
		}
		if _, err := stmt.ExecContext(ctx, st.ID, Normalize(st.RegNumber), st.Name, Normalize(st.Room), st.Phone); err != nil {
			return fmt.Errorf("insert student %s: %w", st.RegNumber, err)
		}
	}
	return tx.Commit()
}

// Reset deletes every row, children first.
func (r *Repository) Reset(ctx context.Context) error {
	for _, table := range []string{"feedback", "complaints", "attendance", "students"} {
		if _, err := r.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// ListStudents returns all students ordered by room number.
func (r *Repository) ListStudents(ctx context.Context) ([]Student, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, reg_number, name, room_number, phone_number
		FROM students
		ORDER BY room_number
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Student
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, st)
	}
	return res, rows.Err()
}

// ListAttendance returns all attendance records ordered by day.
func (r *Repository) ListAttendance(ctx context.Context) ([]AttendanceRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, student_id, day, status
		FROM attendance
		ORDER BY day, student_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []AttendanceRecord
	for rows.Next() {
		var rec AttendanceRecord
		var day string
		if err := rows.Scan(&rec.ID, &rec.StudentID, &day, &rec.Status); err != nil {
			return nil, err
		}
		if rec.Day, err = ParseDate(day); err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

// ListComplaints returns all complaints in filing order.
func (r *Repository) ListComplaints(ctx context.Context) ([]Complaint, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, student_id, department, description, date_filed, status
		FROM complaints
		ORDER BY date_filed, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Complaint
	for rows.Next() {
		var c Complaint
		if err := rows.Scan(&c.ID, &c.StudentID, &c.Department, &c.Description, &c.FiledAt, &c.Status); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

// ListFeedback returns all feedback in submission order.
func (r *Repository) ListFeedback(ctx context.Context) ([]Feedback, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, student_id, rating, comments, date_submitted
		FROM feedback
		ORDER BY date_submitted, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Feedback
	for rows.Next() {
		var f Feedback
		var studentID sql.NullString
		if err := rows.Scan(&f.ID, &studentID, &f.Rating, &f.Comments, &f.SubmittedAt); err != nil {
			return nil, err
		}
		if studentID.Valid {
			f.StudentID = &studentID.String
		}
		res = append(res, f)
	}
	return res, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStudent(s scanner) (Student, error) {
	var st Student
	var phone sql.NullString
	if err := s.Scan(&st.ID, &st.RegNumber, &st.Name, &st.Room, &phone); err != nil {
		return Student{}, err
	}
	if phone.Valid {
		st.Phone = &phone.String
	}
	return st, nil
}
