package hostel

import (
	"errors"
	"fmt"
	"time"
)

// Status values written by this package.
const (
	StatusPresent = "Present"
	StatusPending = "Pending"
)

// ErrInvalidDate is returned when a calendar date cannot be parsed.
var ErrInvalidDate = errors.New("invalid date, want YYYY-MM-DD")

// Student is a hostel resident addressable by room or registration number.
type Student struct {
	ID        string  `json:"id"`
	RegNumber string  `json:"reg_number"`
	Name      string  `json:"name"`
	Room      string  `json:"room_number"`
	Phone     *string `json:"phone_number,omitempty"`
}

// AttendanceRecord marks a student present on a given day.
type AttendanceRecord struct {
	ID        string `json:"id"`
	StudentID string `json:"student_id"`
	Day       Date   `json:"date"`
	Status    string `json:"status"`
}

// Complaint is a student-filed issue for a department.
type Complaint struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"student_id"`
	Department  string    `json:"department"`
	Description string    `json:"description"`
	FiledAt     time.Time `json:"date_filed"`
	Status      string    `json:"status"`
}

// Feedback is a rating with comments; StudentID is nil when the submitter
// could not be identified.
type Feedback struct {
	ID          string    `json:"id"`
	StudentID   *string   `json:"student_id,omitempty"`
	Rating      int       `json:"rating"`
	Comments    string    `json:"comments"`
	SubmittedAt time.Time `json:"date_submitted"`
}

const dateLayout = "2006-01-02"

// Date is a calendar day with no time-of-day component.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

// String renders the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d == Date{} }

// AddDays returns the date n days after d.
func (d Date) AddDays(n int) Date {
	return DateOf(time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC))
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
