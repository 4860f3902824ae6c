package hostel

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore mirrors the uniqueness rules of the SQL schema.
type memStore struct {
	students   []Student
	attendance map[string]AttendanceRecord
	complaints []Complaint
	feedback   []Feedback
	lookups    []string
	err        error
}

func newMemStore(students ...Student) *memStore {
	return &memStore{students: students, attendance: map[string]AttendanceRecord{}}
}

func (m *memStore) FindStudent(_ context.Context, identifier string) (*Student, error) {
	m.lookups = append(m.lookups, identifier)
	if m.err != nil {
		return nil, m.err
	}
	for _, st := range m.students {
		if st.Room == identifier || st.RegNumber == identifier {
			st := st
			return &st, nil
		}
	}
	return nil, nil
}

func (m *memStore) InsertAttendance(_ context.Context, rec AttendanceRecord) (bool, error) {
	key := rec.StudentID + "/" + rec.Day.String()
	if _, ok := m.attendance[key]; ok {
		return false, nil
	}
	m.attendance[key] = rec
	return true, nil
}

func (m *memStore) InsertComplaint(_ context.Context, c Complaint) error {
	m.complaints = append(m.complaints, c)
	return nil
}

func (m *memStore) InsertFeedback(_ context.Context, f Feedback) error {
	m.feedback = append(m.feedback, f)
	return nil
}

var (
	alice = Student{ID: "s-1", RegNumber: "R000100", Name: "Alice Smith", Room: "A101"}
	bob   = Student{ID: "s-2", RegNumber: "R000101", Name: "Bob Jones", Room: "B150"}
)

func fixedClock() time.Time { return time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC) }

func TestResolveByRoomOrRegAnyCase(t *testing.T) {
	svc := NewService(newMemStore(alice, bob), fixedClock)
	ctx := context.Background()

	for _, st := range []Student{alice, bob} {
		for _, id := range []string{st.Room, st.RegNumber} {
			for _, variant := range []string{id, strings.ToLower(id)} {
				got, err := svc.Resolve(ctx, variant)
				require.NoError(t, err)
				require.NotNil(t, got, "identifier %q", variant)
				assert.Equal(t, st.ID, got.ID)
			}
		}
	}
}

func TestResolveNotFound(t *testing.T) {
	store := newMemStore(alice)
	svc := NewService(store, fixedClock)

	for _, id := range []string{"A102", "R999999", " a101", "s-1"} {
		got, err := svc.Resolve(context.Background(), id)
		require.NoError(t, err)
		assert.Nil(t, got, "identifier %q", id)
	}
}

func TestResolveEmptySkipsLookup(t *testing.T) {
	store := newMemStore(alice)
	got, err := NewService(store, fixedClock).Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Empty(t, store.lookups)
}

func TestResolvePropagatesStorageError(t *testing.T) {
	store := newMemStore(alice)
	store.err = errors.New("connection reset")
	_, err := NewService(store, fixedClock).Resolve(context.Background(), "A101")
	assert.ErrorIs(t, err, store.err)
}

func TestCheckInScenario(t *testing.T) {
	store := newMemStore(alice)
	svc := NewService(store, fixedClock)
	ctx := context.Background()
	jan1 := Date{Year: 2024, Month: time.January, Day: 1}

	got, err := svc.Resolve(ctx, "a101")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, alice.ID, got.ID)

	out, err := svc.CheckIn(ctx, "A101", jan1)
	require.NoError(t, err)
	assert.Equal(t, OutcomeOK, out)
	assert.Len(t, store.attendance, 1)

	out, err = svc.CheckIn(ctx, "A101", jan1)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyCheckedIn, out)

	out, err = svc.CheckIn(ctx, "r000100", jan1)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyCheckedIn, out, "reg number resolves to the same student")
	assert.Len(t, store.attendance, 1)

	out, err = svc.CheckIn(ctx, "A101", jan1.AddDays(1))
	require.NoError(t, err)
	assert.Equal(t, OutcomeOK, out)
	assert.Len(t, store.attendance, 2)

	rec := store.attendance[alice.ID+"/2024-01-01"]
	assert.Equal(t, StatusPresent, rec.Status)
}

func TestCheckInUnknownStudent(t *testing.T) {
	store := newMemStore(alice)
	out, err := NewService(store, fixedClock).CheckIn(context.Background(), "Z999", DateOf(fixedClock()))
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotFound, out)
	assert.Empty(t, store.attendance)
}

func TestFileComplaint(t *testing.T) {
	store := newMemStore(alice)
	svc := NewService(store, fixedClock)
	ctx := context.Background()

	out, err := svc.FileComplaint(ctx, "nobody", "Plumbing", "Leaking tap")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotFound, out)
	assert.Empty(t, store.complaints)

	out, err = svc.FileComplaint(ctx, "a101", "Plumbing", "Leaking tap")
	require.NoError(t, err)
	assert.Equal(t, OutcomeOK, out)
	require.Len(t, store.complaints, 1)
	c := store.complaints[0]
	assert.Equal(t, alice.ID, c.StudentID)
	assert.Equal(t, StatusPending, c.Status)
	assert.Equal(t, "Plumbing", c.Department)
	assert.Equal(t, fixedClock(), c.FiledAt)
}

func TestSubmitFeedbackToleratesMissingStudent(t *testing.T) {
	store := newMemStore(alice)
	svc := NewService(store, fixedClock)
	ctx := context.Background()

	for _, id := range []string{"", "unknown"} {
		out, linked, err := svc.SubmitFeedback(ctx, id, 4, "Good food")
		require.NoError(t, err)
		assert.Equal(t, OutcomeOK, out)
		assert.False(t, linked, id)
	}
	out, linked, err := svc.SubmitFeedback(ctx, "R000100", 5, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeOK, out)
	assert.True(t, linked)

	require.Len(t, store.feedback, 3)
	assert.Nil(t, store.feedback[0].StudentID)
	assert.Nil(t, store.feedback[1].StudentID)
	require.NotNil(t, store.feedback[2].StudentID)
	assert.Equal(t, alice.ID, *store.feedback[2].StudentID)
	assert.Equal(t, 5, store.feedback[2].Rating)
}

func TestToday(t *testing.T) {
	// 23:30 UTC is already the next day in Kolkata.
	clock := func() time.Time { return time.Date(2024, 1, 1, 23, 30, 0, 0, time.UTC) }
	svc := NewService(newMemStore(), clock)
	assert.Equal(t, "2024-01-01", svc.Today(nil).String())

	ist := time.FixedZone("IST", 5*3600+1800)
	assert.Equal(t, "2024-01-02", svc.Today(ist).String())
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "ok", OutcomeOK.String())
	assert.Equal(t, "not_found", OutcomeNotFound.String())
	assert.Equal(t, "already_checked_in", OutcomeAlreadyCheckedIn.String())
}
