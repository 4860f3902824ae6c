package web

import (
	"context"
	"embed"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"hostel/internal/hostel"
	"hostel/internal/metrics"
	"hostel/internal/queue"
	"hostel/internal/tally"
)

//go:embed templates/*.html
var embedded embed.FS

// User-facing replies for each operation.
const (
	MsgCheckedIn        = "Checked In"
	MsgAlreadyCheckedIn = "Already checked in today."
	MsgStudentNotFound  = "Student not found."
	MsgComplaintFiled   = "Complaint registered"
	MsgFeedbackThanks   = "Thank You!"
	MsgInvalidRating    = "Rating must be a whole number."
	MsgBadForm          = "Could not read the submitted form."
	msgInternal         = "Something went wrong, please try again."
	publishTimeout      = 2 * time.Second
)

// Departments offered on the complaint form.
var Departments = []string{"Electrical", "Plumbing", "Housekeeping", "Mess", "Other"}

// DailyReader reports a day's activity tally. *tally.Tally implements it.
type DailyReader interface {
	Daily(ctx context.Context, day string) (tally.Counts, error)
}

// Health reports backing service availability for /healthz.
type Health func(ctx context.Context) map[string]bool

// Handler serves the hostel pages and JSON API.
type Handler struct {
	svc      *hostel.Service
	reporter *hostel.Reporter
	events   queue.Queue
	tally    DailyReader
	metrics  *metrics.Metrics
	log      *slog.Logger
	loc      *time.Location
	health   Health
}

// Options wires the handler's collaborators. Events, Tally and Health may
// be nil.
type Options struct {
	Service  *hostel.Service
	Reporter *hostel.Reporter
	Events   queue.Queue
	Tally    DailyReader
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
	Location *time.Location
	Health   Health
}

// New builds a handler from opts.
func New(opts Options) *Handler {
	h := &Handler{
		svc:      opts.Service,
		reporter: opts.Reporter,
		events:   opts.Events,
		tally:    opts.Tally,
		metrics:  opts.Metrics,
		log:      opts.Logger,
		loc:      opts.Location,
		health:   opts.Health,
	}
	if h.events == nil {
		h.events = queue.Discard{}
	}
	if h.metrics == nil {
		h.metrics = metrics.New()
	}
	if h.log == nil {
		h.log = slog.Default()
	}
	if h.loc == nil {
		h.loc = time.Local
	}
	return h
}

// Templates parses the page templates from dir, or from the embedded copy
// when dir is empty.
func Templates(dir string) (*template.Template, error) {
	var fsys fs.FS = embedded
	pattern := "templates/*.html"
	if dir != "" {
		fsys = os.DirFS(dir)
		pattern = "*.html"
	}
	return template.ParseFS(fsys, pattern)
}

// Register installs templates and routes on r.
func (h *Handler) Register(r *gin.Engine, tmpl *template.Template) {
	r.SetHTMLTemplate(tmpl)

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(h.metrics.Handler()))

	r.GET("/", h.page("index.html", "Hostel Management", nil))
	r.GET("/facilities", h.page("facilities.html", "Facilities", nil))
	r.GET("/checkin", h.page("checkin.html", "Daily Check-in", nil))
	r.GET("/complaint", h.page("complaint.html", "File a Complaint", gin.H{"Departments": Departments}))
	r.GET("/feedback", h.page("feedback.html", "Feedback", gin.H{"Ratings": []int{5, 4, 3, 2, 1}}))
	r.GET("/view", h.View)

	r.POST("/checkin", h.CheckInForm)
	r.POST("/complaint", h.ComplaintForm)
	r.POST("/feedback", h.FeedbackForm)

	api := r.Group("/v1")
	{
		api.GET("/students/resolve", h.ResolveJSON)
		api.POST("/checkins", h.CheckInJSON)
		api.POST("/complaints", h.ComplaintJSON)
		api.POST("/feedback", h.FeedbackJSON)
		api.GET("/report", h.ReportJSON)
	}
}

func (h *Handler) page(name, title string, data gin.H) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload := gin.H{"Title": title}
		for k, v := range data {
			payload[k] = v
		}
		c.HTML(http.StatusOK, name, payload)
	}
}

// Healthz reports database and redis reachability.
func (h *Handler) Healthz(c *gin.Context) {
	deps := map[string]bool{}
	if h.health != nil {
		deps = h.health(c.Request.Context())
	}
	status := http.StatusOK
	body := gin.H{"status": "ok"}
	for name, ok := range deps {
		body[name] = ok
		if name == "db" && !ok {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
		}
	}
	c.JSON(status, body)
}

// ---------- Forms ----------

type checkInForm struct {
	Room string `form:"room"`
}

// CheckInForm marks today's attendance for the submitted room or reg number.
func (h *Handler) CheckInForm(c *gin.Context) {
	var req checkInForm
	if err := c.ShouldBind(&req); err != nil {
		h.log.Debug("bad form submission", "path", c.FullPath(), "error", err)
		c.String(http.StatusBadRequest, MsgBadForm)
		return
	}
	day := h.svc.Today(h.loc)
	out, ok := h.checkIn(c, req.Room, day)
	if !ok {
		c.String(http.StatusInternalServerError, msgInternal)
		return
	}
	c.String(checkInStatus(out), checkInMessage(out))
}

type complaintForm struct {
	Room        string `form:"room"`
	Department  string `form:"department"`
	Description string `form:"description"`
}

// ComplaintForm files a complaint for the submitted student.
func (h *Handler) ComplaintForm(c *gin.Context) {
	var req complaintForm
	if err := c.ShouldBind(&req); err != nil {
		h.log.Debug("bad form submission", "path", c.FullPath(), "error", err)
		c.String(http.StatusBadRequest, MsgBadForm)
		return
	}
	out, ok := h.fileComplaint(c, req.Room, req.Department, req.Description)
	if !ok {
		c.String(http.StatusInternalServerError, msgInternal)
		return
	}
	if out == hostel.OutcomeNotFound {
		c.String(http.StatusNotFound, MsgStudentNotFound)
		return
	}
	c.String(http.StatusOK, MsgComplaintFiled)
}

type feedbackForm struct {
	Room     string `form:"room"`
	Rating   string `form:"rating"`
	Comments string `form:"comments"`
}

// FeedbackForm stores feedback; the student identifier is optional.
func (h *Handler) FeedbackForm(c *gin.Context) {
	var req feedbackForm
	if err := c.ShouldBind(&req); err != nil {
		h.log.Debug("bad form submission", "path", c.FullPath(), "error", err)
		c.String(http.StatusBadRequest, MsgBadForm)
		return
	}
	rating, err := strconv.Atoi(req.Rating)
	if err != nil {
		c.String(http.StatusBadRequest, MsgInvalidRating)
		return
	}
	if _, ok := h.submitFeedback(c, req.Room, rating, req.Comments); !ok {
		c.String(http.StatusInternalServerError, msgInternal)
		return
	}
	c.String(http.StatusOK, MsgFeedbackThanks)
}

// View renders every stored record plus today's tally when available.
func (h *Handler) View(c *gin.Context) {
	ctx := c.Request.Context()
	snap, err := h.reporter.Snapshot(ctx)
	if err != nil {
		h.log.Error("snapshot failed", "error", err)
		c.String(http.StatusInternalServerError, msgInternal)
		return
	}
	today := h.svc.Today(h.loc).String()
	c.HTML(http.StatusOK, "view.html", gin.H{
		"Title":    "Hostel Records",
		"Snapshot": snap,
		"Today":    today,
		"Tally":    h.dailyTally(ctx, today),
	})
}

func (h *Handler) dailyTally(ctx context.Context, day string) *tally.Counts {
	if h.tally == nil {
		return nil
	}
	counts, err := h.tally.Daily(ctx, day)
	if err != nil {
		h.log.Warn("tally unavailable", "error", err)
		return nil
	}
	return &counts
}

// ---------- Shared operation paths ----------

// checkIn runs the ledger and records metrics and events. ok is false on a
// storage fault, which has already been logged.
func (h *Handler) checkIn(c *gin.Context, identifier string, day hostel.Date) (hostel.Outcome, bool) {
	out, err := h.svc.CheckIn(c.Request.Context(), identifier, day)
	if err != nil {
		h.log.Error("check-in failed", "error", err)
		h.metrics.CheckIns.WithLabelValues("error").Inc()
		return 0, false
	}
	h.metrics.CheckIns.WithLabelValues(out.String()).Inc()
	if out == hostel.OutcomeOK {
		h.publish(c, queue.KindCheckIn, day)
	}
	return out, true
}

func (h *Handler) fileComplaint(c *gin.Context, identifier, department, description string) (hostel.Outcome, bool) {
	out, err := h.svc.FileComplaint(c.Request.Context(), identifier, department, description)
	if err != nil {
		h.log.Error("complaint failed", "error", err)
		h.metrics.Complaints.WithLabelValues("error").Inc()
		return 0, false
	}
	h.metrics.Complaints.WithLabelValues(out.String()).Inc()
	if out == hostel.OutcomeOK {
		h.publish(c, queue.KindComplaint, h.svc.Today(h.loc))
	}
	return out, true
}

func (h *Handler) submitFeedback(c *gin.Context, identifier string, rating int, comments string) (hostel.Outcome, bool) {
	out, linked, err := h.svc.SubmitFeedback(c.Request.Context(), identifier, rating, comments)
	if err != nil {
		h.log.Error("feedback failed", "error", err)
		h.metrics.Feedback.WithLabelValues("error").Inc()
		return 0, false
	}
	student := "unlinked"
	if linked {
		student = "linked"
	}
	h.metrics.Feedback.WithLabelValues(student).Inc()
	h.publish(c, queue.KindFeedback, h.svc.Today(h.loc))
	return out, true
}

// publish hands an activity event to the queue. Failures never change the
// reply the user sees.
func (h *Handler) publish(c *gin.Context, kind string, day hostel.Date) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), publishTimeout)
	defer cancel()
	evt := queue.Event{Kind: kind, Day: day.String(), At: time.Now().UTC()}
	if err := h.events.Publish(ctx, evt); err != nil {
		h.log.Warn("event publish failed", "kind", kind, "error", err)
		h.metrics.EventsPublished.WithLabelValues(kind, "error").Inc()
		return
	}
	h.metrics.EventsPublished.WithLabelValues(kind, "ok").Inc()
}

func checkInStatus(out hostel.Outcome) int {
	switch out {
	case hostel.OutcomeNotFound:
		return http.StatusNotFound
	case hostel.OutcomeAlreadyCheckedIn:
		return http.StatusConflict
	default:
		return http.StatusOK
	}
}

func checkInMessage(out hostel.Outcome) string {
	switch out {
	case hostel.OutcomeNotFound:
		return MsgStudentNotFound
	case hostel.OutcomeAlreadyCheckedIn:
		return MsgAlreadyCheckedIn
	default:
		return MsgCheckedIn
	}
}
