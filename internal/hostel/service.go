package hostel

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Outcome is the expected, user-facing result of a hostel operation.
// Storage faults are reported separately as errors.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeNotFound
	OutcomeAlreadyCheckedIn
)

// String returns a short machine-friendly label, used for metrics.
func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeAlreadyCheckedIn:
		return "already_checked_in"
	default:
		return "unknown"
	}
}

// Store is the persistence the service needs. InsertAttendance reports
// false, without error, when the (student, day) pair already exists.
type Store interface {
	FindStudent(ctx context.Context, identifier string) (*Student, error)
	InsertAttendance(ctx context.Context, rec AttendanceRecord) (bool, error)
	InsertComplaint(ctx context.Context, c Complaint) error
	InsertFeedback(ctx context.Context, f Feedback) error
}

// Service resolves identifiers and appends attendance, complaints and feedback.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates a service backed by a store. A nil clock defaults to time.Now.
func NewService(store Store, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, now: now}
}

// Normalize uppercases an identifier the way stored room and registration
// numbers are written.
func Normalize(identifier string) string {
	return strings.ToUpper(identifier)
}

// Resolve maps a room or registration number to a student. It returns
// nil, nil when nothing matches.
func (s *Service) Resolve(ctx context.Context, identifier string) (*Student, error) {
	if identifier == "" {
		return nil, nil
	}
	st, err := s.store.FindStudent(ctx, Normalize(identifier))
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", identifier, err)
	}
	return st, nil
}

// CheckIn marks the identified student present on day.
func (s *Service) CheckIn(ctx context.Context, identifier string, day Date) (Outcome, error) {
	st, err := s.Resolve(ctx, identifier)
	if err != nil {
		return 0, err
	}
	if st == nil {
		return OutcomeNotFound, nil
	}
	inserted, err := s.store.InsertAttendance(ctx, AttendanceRecord{
		StudentID: st.ID,
		Day:       day,
		Status:    StatusPresent,
	})
	if err != nil {
		return 0, fmt.Errorf("check in %s on %s: %w", st.ID, day, err)
	}
	if !inserted {
		return OutcomeAlreadyCheckedIn, nil
	}
	return OutcomeOK, nil
}

// FileComplaint records a pending complaint. The identifier must resolve.
func (s *Service) FileComplaint(ctx context.Context, identifier, department, description string) (Outcome, error) {
	st, err := s.Resolve(ctx, identifier)
	if err != nil {
		return 0, err
	}
	if st == nil {
		return OutcomeNotFound, nil
	}
	err = s.store.InsertComplaint(ctx, Complaint{
		StudentID:   st.ID,
		Department:  department,
		Description: description,
		FiledAt:     s.now(),
		Status:      StatusPending,
	})
	if err != nil {
		return 0, fmt.Errorf("file complaint for %s: %w", st.ID, err)
	}
	return OutcomeOK, nil
}

// SubmitFeedback records feedback. An empty or unknown identifier is
// tolerated and leaves the feedback unlinked; linked reports whether a
// student was attached.
func (s *Service) SubmitFeedback(ctx context.Context, identifier string, rating int, comments string) (out Outcome, linked bool, err error) {
	fb := Feedback{
		Rating:      rating,
		Comments:    comments,
		SubmittedAt: s.now(),
	}
	st, err := s.Resolve(ctx, identifier)
	if err != nil {
		return 0, false, err
	}
	if st != nil {
		id := st.ID
		fb.StudentID = &id
	}
	if err := s.store.InsertFeedback(ctx, fb); err != nil {
		return 0, false, fmt.Errorf("submit feedback: %w", err)
	}
	return OutcomeOK, st != nil, nil
}

// Today returns the current calendar day in loc, or the clock's own
// location when loc is nil.
func (s *Service) Today(loc *time.Location) Date {
	t := s.now()
	if loc != nil {
		t = t.In(loc)
	}
	return DateOf(t)
}
