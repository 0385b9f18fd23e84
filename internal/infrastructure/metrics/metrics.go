package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PaymentMetrics holds the settlement and sweep counters.
type PaymentMetrics struct {
	PaymentsCreatedTotal   prometheus.CounterVec
	PaymentsCompletedTotal prometheus.CounterVec
	PaymentsFailedTotal    prometheus.CounterVec
	PaymentsExpiredTotal   prometheus.Counter

	SettlementDuration prometheus.HistogramVec

	SweepAttemptsTotal prometheus.CounterVec
	SweptAmountTotal   prometheus.CounterVec
}

func NewPaymentMetrics() *PaymentMetrics {
	return &PaymentMetrics{
		PaymentsCreatedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_created_total",
				Help: "Total number of created payments",
			},
			[]string{"service_name"},
		),

		PaymentsCompletedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_completed_total",
				Help: "Total number of completed payments",
			},
			[]string{"service_name", "chain"},
		),

		PaymentsFailedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_failed_total",
				Help: "Total number of failed payments",
			},
			[]string{"service_name", "chain"},
		),

		PaymentsExpiredTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "payments_expired_total",
				Help: "Total number of payments expired before settlement",
			},
		),

		SettlementDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "settlement_duration_seconds",
				Help:    "Time from settlement start to chain confirmation",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
			},
			[]string{"chain"},
		),

		SweepAttemptsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sweep_attempts_total",
				Help: "Total number of treasury sweep attempts",
			},
			[]string{"chain", "success"},
		),

		SweptAmountTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swept_amount_total",
				Help: "Total USDT moved to the treasury",
			},
			[]string{"chain"},
		),
	}
}
