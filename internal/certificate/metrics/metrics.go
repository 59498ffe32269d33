package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the certificate lifecycle.
type Metrics struct {
	CertificatesIssued  prometheus.Counter
	CertificatesRevoked prometheus.Counter
	Reissues            prometheus.Counter
	IssueFailures       *prometheus.CounterVec
	OrphanedAnchors     prometheus.Counter
	VerifyResults       *prometheus.CounterVec
	AnchorDuration      prometheus.Histogram
	RenderDuration      prometheus.Histogram
	HTTPLatency         *prometheus.HistogramVec
}

func New() *Metrics {
	return &Metrics{
		CertificatesIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certo_certificates_issued_total",
			Help: "Total number of certificates issued",
		}),
		CertificatesRevoked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certo_certificates_revoked_total",
			Help: "Total number of certificates revoked",
		}),
		Reissues: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certo_certificates_reissued_total",
			Help: "Total number of certificate reissues",
		}),
		IssueFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "certo_certificate_issue_failures_total",
			Help: "Issue failures by stage",
		}, []string{"stage"}),
		OrphanedAnchors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certo_orphaned_anchors_total",
			Help: "Anchors confirmed on chain with no persisted certificate record",
		}),
		VerifyResults: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "certo_verifications_total",
			Help: "Verification outcomes",
		}, []string{"result"}),
		AnchorDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "certo_anchor_duration_seconds",
			Help:    "Time to confirm an anchoring transaction",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		RenderDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "certo_render_duration_seconds",
			Help:    "Time to render a certificate PDF",
			Buckets: prometheus.DefBuckets,
		}),
		HTTPLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "certo_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
}

func (m *Metrics) IncrementIssued() {
	if m == nil {
		return
	}
	m.CertificatesIssued.Inc()
}

func (m *Metrics) IncrementRevoked() {
	if m == nil {
		return
	}
	m.CertificatesRevoked.Inc()
}

func (m *Metrics) IncrementReissued() {
	if m == nil {
		return
	}
	m.Reissues.Inc()
}

func (m *Metrics) IncrementIssueFailure(stage string) {
	if m == nil {
		return
	}
	m.IssueFailures.WithLabelValues(stage).Inc()
}

func (m *Metrics) IncrementOrphanedAnchor() {
	if m == nil {
		return
	}
	m.OrphanedAnchors.Inc()
}

func (m *Metrics) RecordVerify(result string) {
	if m == nil {
		return
	}
	m.VerifyResults.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveAnchorDuration(seconds float64) {
	if m == nil {
		return
	}
	m.AnchorDuration.Observe(seconds)
}

func (m *Metrics) ObserveRenderDuration(seconds float64) {
	if m == nil {
		return
	}
	m.RenderDuration.Observe(seconds)
}

// ObserveHTTPLatency implements middleware.LatencyObserver.
func (m *Metrics) ObserveHTTPLatency(method, path, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPLatency.WithLabelValues(method, path, status).Observe(seconds)
}
