package hostel

import (
	"context"
	"fmt"
)

// Reader lists every stored record. Repository implements it.
type Reader interface {
	ListStudents(ctx context.Context) ([]Student, error)
	ListAttendance(ctx context.Context) ([]AttendanceRecord, error)
	ListComplaints(ctx context.Context) ([]Complaint, error)
	ListFeedback(ctx context.Context) ([]Feedback, error)
}

// Snapshot is a raw dump of all four collections.
type Snapshot struct {
	Students   []Student          `json:"students"`
	Attendance []AttendanceRecord `json:"attendance"`
	Complaints []Complaint        `json:"complaints"`
	Feedback   []Feedback         `json:"feedback"`
}

// Reporter builds read-only snapshots for operational visibility.
type Reporter struct {
	reader Reader
}

// NewReporter creates a reporter over reader.
func NewReporter(reader Reader) *Reporter {
	return &Reporter{reader: reader}
}

// Snapshot reads every collection. Nil slices are replaced by empty ones so
// JSON consumers always see arrays.
func (r *Reporter) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	var err error
	if snap.Students, err = r.reader.ListStudents(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("list students: %w", err)
	}
	if snap.Attendance, err = r.reader.ListAttendance(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("list attendance: %w", err)
	}
	if snap.Complaints, err = r.reader.ListComplaints(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("list complaints: %w", err)
	}
	if snap.Feedback, err = r.reader.ListFeedback(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("list feedback: %w", err)
	}
	if snap.Students == nil {
		snap.Students = []Student{}
	}
	if snap.Attendance == nil {
		snap.Attendance = []AttendanceRecord{}
	}
	if snap.Complaints == nil {
		snap.Complaints = []Complaint{}
	}
	if snap.Feedback == nil {
		snap.Feedback = []Feedback{}
	}
	return snap, nil
}
