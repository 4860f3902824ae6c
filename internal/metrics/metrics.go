package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the hostel counters on a private registry.
type Metrics struct {
	reg *prometheus.Registry

	CheckIns        *prometheus.CounterVec
	Complaints      *prometheus.CounterVec
	Feedback        *prometheus.CounterVec
	EventsPublished *prometheus.CounterVec
}

// New registers the hostel counters plus Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		CheckIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hostel_checkins_total",
			Help: "Attendance check-in attempts by outcome.",
		}, []string{"outcome"}),
		Complaints: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hostel_complaints_total",
			Help: "Complaint submissions by outcome.",
		}, []string{"outcome"}),
		Feedback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hostel_feedback_total",
			Help: "Feedback submissions, split by whether they resolved to a student.",
		}, []string{"student"}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hostel_events_published_total",
			Help: "Activity events handed to the queue.",
		}, []string{"kind", "result"}),
	}
	m.reg.MustRegister(
		m.CheckIns,
		m.Complaints,
		m.Feedback,
		m.EventsPublished,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}
