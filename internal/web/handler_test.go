package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostel/internal/hostel"
	"hostel/internal/metrics"
	"hostel/internal/queue"
	"hostel/internal/store"
	"hostel/internal/tally"
)

type stubTally struct {
	counts tally.Counts
	err    error
}

func (s stubTally) Daily(context.Context, string) (tally.Counts, error) { return s.counts, s.err }

type fixture struct {
	router  *gin.Engine
	repo    *hostel.Repository
	events  *queue.InMemory
	metrics *metrics.Metrics
}

func newFixture(t *testing.T, tl DailyReader) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	db, err := store.NewDB(ctx, store.DriverSQLite, filepath.Join(t.TempDir(), "web.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(ctx))

	repo := hostel.NewRepository(db.Client)
	require.NoError(t, repo.InsertStudents(ctx, []hostel.Student{
		{RegNumber: "R000100", Name: "Alice Smith", Room: "A101"},
	}))

	clock := func() time.Time { return time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC) }
	f := &fixture{repo: repo, events: queue.NewInMemory(16), metrics: metrics.New()}
	h := New(Options{
		Service:  hostel.NewService(repo, clock),
		Reporter: hostel.NewReporter(repo),
		Events:   f.events,
		Tally:    tl,
		Metrics:  f.metrics,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Location: time.UTC,
		Health:   func(context.Context) map[string]bool { return map[string]bool{"db": true, "redis": false} },
	})
	tmpl, err := Templates("")
	require.NoError(t, err)
	f.router = gin.New()
	h.Register(f.router, tmpl)
	return f
}

func (f *fixture) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) postJSON(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestCheckInForm(t *testing.T) {
	f := newFixture(t, nil)

	w := f.postForm("/checkin", url.Values{"room": {"a101"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, MsgCheckedIn, w.Body.String())

	w = f.postForm("/checkin", url.Values{"room": {"R000100"}})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, MsgAlreadyCheckedIn, w.Body.String())

	w = f.postForm("/checkin", url.Values{"room": {"Z999"}})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, MsgStudentNotFound, w.Body.String())

	records, err := f.repo.ListAttendance(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2024-01-01", records[0].Day.String())

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CheckIns.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CheckIns.WithLabelValues("already_checked_in")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CheckIns.WithLabelValues("not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.EventsPublished.WithLabelValues(queue.KindCheckIn, "ok")))
}

func TestComplaintForm(t *testing.T) {
	f := newFixture(t, nil)

	w := f.postForm("/complaint", url.Values{"room": {"nobody"}, "department": {"Mess"}, "description": {"Cold food"}})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, MsgStudentNotFound, w.Body.String())

	w = f.postForm("/complaint", url.Values{"room": {"A101"}, "department": {"Mess"}, "description": {"Cold food"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, MsgComplaintFiled, w.Body.String())

	complaints, err := f.repo.ListComplaints(context.Background())
	require.NoError(t, err)
	require.Len(t, complaints, 1)
	assert.Equal(t, hostel.StatusPending, complaints[0].Status)
}

func TestFeedbackForm(t *testing.T) {
	f := newFixture(t, nil)

	w := f.postForm("/feedback", url.Values{"room": {""}, "rating": {"4"}, "comments": {"Nice"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, MsgFeedbackThanks, w.Body.String())

	w = f.postForm("/feedback", url.Values{"room": {"ghost"}, "rating": {"2"}})
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.postForm("/feedback", url.Values{"room": {"a101"}, "rating": {"5"}})
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.postForm("/feedback", url.Values{"rating": {"great"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	fb, err := f.repo.ListFeedback(context.Background())
	require.NoError(t, err)
	require.Len(t, fb, 3)
	linked := 0
	for _, entry := range fb {
		if entry.StudentID != nil {
			linked++
		}
	}
	assert.Equal(t, 1, linked)

	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.Feedback.WithLabelValues("unlinked")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Feedback.WithLabelValues("linked")))
}

func TestMalformedFormRejected(t *testing.T) {
	f := newFixture(t, nil)

	for _, path := range []string{"/checkin", "/complaint", "/feedback"} {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader("room=%zz"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Equal(t, MsgBadForm, w.Body.String(), path)
	}
	assert.Equal(t, 0.0, testutil.ToFloat64(f.metrics.CheckIns.WithLabelValues("not_found")))

	fb, err := f.repo.ListFeedback(context.Background())
	require.NoError(t, err)
	assert.Empty(t, fb)
}

func TestPagesRender(t *testing.T) {
	f := newFixture(t, nil)
	for _, path := range []string{"/", "/facilities", "/checkin", "/complaint", "/feedback"} {
		w := f.get(path)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Body.String(), "<nav>", path)
	}
	assert.Contains(t, f.get("/complaint").Body.String(), "<option>Plumbing</option>")
}

func TestViewShowsRecordsAndTally(t *testing.T) {
	f := newFixture(t, stubTally{counts: tally.Counts{CheckIns: 7}})
	f.postForm("/checkin", url.Values{"room": {"A101"}})

	w := f.get("/view")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Alice Smith")
	assert.Contains(t, body, "2024-01-01")
	assert.Contains(t, body, "7 check-ins")
}

func TestViewWithoutTally(t *testing.T) {
	f := newFixture(t, stubTally{err: errors.New("redis down")})
	w := f.get("/view")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "check-ins,")
}

func TestCheckInJSONWithExplicitDate(t *testing.T) {
	f := newFixture(t, nil)

	w := f.postJSON("/v1/checkins", `{"identifier":"a101","date":"2024-01-02"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["outcome"])
	assert.Equal(t, "2024-01-02", body["date"])

	w = f.postJSON("/v1/checkins", `{"identifier":"a101","date":"2024-01-02"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.postJSON("/v1/checkins", `{"identifier":"a101"}`)
	assert.Equal(t, http.StatusOK, w.Code, "today is a different day")

	w = f.postJSON("/v1/checkins", `{"identifier":"a101","date":"02/01/2024"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.postJSON("/v1/checkins", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResolveJSON(t *testing.T) {
	f := newFixture(t, nil)

	w := f.get("/v1/students/resolve?identifier=r000100")
	require.Equal(t, http.StatusOK, w.Code)
	var st hostel.Student
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.Equal(t, "A101", st.Room)

	assert.Equal(t, http.StatusNotFound, f.get("/v1/students/resolve?identifier=X1").Code)
	assert.Equal(t, http.StatusBadRequest, f.get("/v1/students/resolve").Code)
}

func TestComplaintAndFeedbackJSON(t *testing.T) {
	f := newFixture(t, nil)

	w := f.postJSON("/v1/complaints", `{"identifier":"A101","department":"Electrical","description":"No power"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = f.postJSON("/v1/complaints", `{"identifier":"nobody","department":"Electrical","description":"No power"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.postJSON("/v1/feedback", `{"rating":3}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = f.postJSON("/v1/feedback", `{"comments":"no rating"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.get("/v1/report")
	require.Equal(t, http.StatusOK, w.Code)
	var snap hostel.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Len(t, snap.Students, 1)
	assert.Len(t, snap.Complaints, 1)
	assert.Len(t, snap.Feedback, 1)
	assert.Empty(t, snap.Attendance)
}

func TestHealthz(t *testing.T) {
	f := newFixture(t, nil)
	w := f.get("/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","db":true,"redis":false}`, w.Body.String())
}

func TestEventsPublishedOnSuccessOnly(t *testing.T) {
	f := newFixture(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, err := f.events.Consume(ctx)
	require.NoError(t, err)

	f.postForm("/checkin", url.Values{"room": {"nobody"}})
	f.postForm("/checkin", url.Values{"room": {"A101"}})

	select {
	case evt := <-events:
		assert.Equal(t, queue.KindCheckIn, evt.Kind)
		assert.Equal(t, "2024-01-01", evt.Day)
	case <-time.After(time.Second):
		t.Fatal("no event published")
	}
	select {
	case evt := <-events:
		t.Fatalf("unexpected event %+v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}
