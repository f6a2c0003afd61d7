package notify

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for notification delivery.
type Metrics struct {
	NotificationsTotal *prometheus.CounterVec
	SendDuration       *prometheus.HistogramVec
}

// NewMetrics registers and returns notification metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		NotificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tanggap_notifications_total",
			Help: "Reporter notifications by event and outcome.",
		}, []string{"event", "outcome"}),
		SendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tanggap_notification_send_duration_seconds",
			Help:    "Duration of gateway send calls.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 9), // 50ms .. ~12.8s
		}, []string{"event"}),
	}
	reg.MustRegister(m.NotificationsTotal, m.SendDuration)
	return m
}

func (m *Metrics) observe(o Outcome) {
	if m == nil {
		return
	}
	m.NotificationsTotal.WithLabelValues(string(o.Event), string(o.Status)).Inc()
	if o.Status != OutcomeSkipped {
		m.SendDuration.WithLabelValues(string(o.Event)).Observe(o.Duration.Seconds())
	}
}
