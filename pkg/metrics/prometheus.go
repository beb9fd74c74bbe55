package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	scansTotal         *prometheus.CounterVec
	opportunitiesFound prometheus.Counter
	tradesTotal        *prometheus.CounterVec
	providerErrors     *prometheus.CounterVec
	breakerTrips       prometheus.Counter
	bankroll           prometheus.Gauge
	latency            *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		scansTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tempquant_scans_total",
				Help: "Total number of market scan cycles by operating mode",
			},
			[]string{"mode"},
		),
		opportunitiesFound: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "tempquant_opportunities_total",
				Help: "Total number of mispricing opportunities surfaced",
			},
		),
		tradesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tempquant_trades_total",
				Help: "Total number of trade submissions by result",
			},
			[]string{"result"},
		),
		providerErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tempquant_provider_errors_total",
				Help: "Total number of upstream provider errors",
			},
			[]string{"provider"},
		),
		breakerTrips: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "tempquant_breaker_trips_total",
				Help: "Total number of risk circuit breaker trips",
			},
		),
		bankroll: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "tempquant_bankroll_cents",
				Help: "Last observed exchange balance in cents",
			},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tempquant_operation_duration_seconds",
				Help:    "Duration of engine operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordScan records a completed scan cycle.
func (r *Recorder) RecordScan(mode string) {
	r.scansTotal.WithLabelValues(mode).Inc()
}

// RecordOpportunities records surfaced opportunities.
func (r *Recorder) RecordOpportunities(n int) {
	r.opportunitiesFound.Add(float64(n))
}

// RecordTrade records a trade submission outcome ("ok", "declined", "error").
func (r *Recorder) RecordTrade(result string) {
	r.tradesTotal.WithLabelValues(result).Inc()
}

// RecordProviderError records an upstream provider error.
func (r *Recorder) RecordProviderError(provider string) {
	r.providerErrors.WithLabelValues(provider).Inc()
}

// RecordBreakerTrip records a circuit breaker trip.
func (r *Recorder) RecordBreakerTrip() {
	r.breakerTrips.Inc()
}

// RecordBankroll records the last observed balance.
func (r *Recorder) RecordBankroll(cents int64) {
	r.bankroll.Set(float64(cents))
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
