package complaint

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the complaint subsystem.
type Metrics struct {
	SubmitsTotal        *prometheus.CounterVec
	StatusUpdatesTotal  *prometheus.CounterVec
	PriorityTotal       *prometheus.CounterVec
	SentimentTotal      *prometheus.CounterVec
	ClassifyDuration    prometheus.Histogram
	ClassifyConfidence  prometheus.Histogram
	IDCollisionsTotal   prometheus.Counter
	PriorityRuleMatches *prometheus.CounterVec
}

// NewMetrics registers and returns complaint metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SubmitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tanggap_submits_total",
			Help: "Total complaint submissions by result.",
		}, []string{"result"}),
		StatusUpdatesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tanggap_status_updates_total",
			Help: "Total admin status updates by result.",
		}, []string{"result"}),
		PriorityTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tanggap_complaints_priority_total",
			Help: "Accepted complaints by assigned priority.",
		}, []string{"priority"}),
		SentimentTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tanggap_complaints_sentiment_total",
			Help: "Accepted complaints by sentiment label.",
		}, []string{"sentiment"}),
		ClassifyDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tanggap_classify_duration_seconds",
			Help:    "Duration of sentiment classification calls.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 9), // 0.5ms .. ~33s
		}),
		ClassifyConfidence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tanggap_classify_confidence_percent",
			Help:    "Confidence reported by the sentiment classifier.",
			Buckets: prometheus.LinearBuckets(0, 10, 11), // 0 .. 100
		}),
		IDCollisionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tanggap_tracking_id_collisions_total",
			Help: "Tracking id collisions detected at insert. Any non-zero value is a bug.",
		}),
		PriorityRuleMatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tanggap_priority_decisions_total",
			Help: "Priority decisions by source (keyword or sentiment fallback).",
		}, []string{"source"}),
	}

	reg.MustRegister(
		m.SubmitsTotal,
		m.StatusUpdatesTotal,
		m.PriorityTotal,
		m.SentimentTotal,
		m.ClassifyDuration,
		m.ClassifyConfidence,
		m.IDCollisionsTotal,
		m.PriorityRuleMatches,
	)

	return m
}

func (m *Metrics) submit(result string) {
	if m == nil {
		return
	}
	m.SubmitsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) statusUpdate(result string) {
	if m == nil {
		return
	}
	m.StatusUpdatesTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) classified(s Sentiment, seconds float64) {
	if m == nil {
		return
	}
	m.ClassifyDuration.Observe(seconds)
	m.ClassifyConfidence.Observe(s.Confidence)
}

func (m *Metrics) accepted(c *Complaint, keywordMatched bool) {
	if m == nil {
		return
	}
	m.PriorityTotal.WithLabelValues(string(c.Priority)).Inc()
	m.SentimentTotal.WithLabelValues(c.Sentiment).Inc()
	source := "sentiment"
	if keywordMatched {
		source = "keyword"
	}
	m.PriorityRuleMatches.WithLabelValues(source).Inc()
}

func (m *Metrics) collision() {
	if m == nil {
		return
	}
	m.IDCollisionsTotal.Inc()
}
