package metrics

import "github.com/prometheus/client_golang/prometheus"

// MailMetrics counts outbound order notifications.
type MailMetrics struct {
	sends *prometheus.CounterVec
}

func NewMailMetrics(reg prometheus.Registerer) *MailMetrics {
	if reg == nil {
		return &MailMetrics{}
	}
	sends := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mail_send_total",
		Help: "Outbound mail attempts by result.",
	}, []string{"result"})
	reg.MustRegister(sends)
	return &MailMetrics{sends: sends}
}

// IncResult increments the counter for result (sent, failed, rejected).
func (m *MailMetrics) IncResult(result string) {
	if m == nil || m.sends == nil {
		return
	}
	m.sends.WithLabelValues(result).Inc()
}
