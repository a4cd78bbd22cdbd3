package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type BusinessMetrics struct {
	EligibilityDecisions *prometheus.CounterVec
	LoansIssued          prometheus.Counter
	IssuedPrincipal      prometheus.Counter
	CustomersRegistered  *prometheus.CounterVec
	IngestedRows         *prometheus.CounterVec
	DebtSnapshotsUpdated prometheus.Counter
}

var (
	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "credit_approval_db_query_duration_seconds",
				Help:    "Histogram of database query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}

	Business = BusinessMetrics{
		EligibilityDecisions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credit_approval_eligibility_decisions_total",
				Help: "Eligibility evaluations by outcome.",
			},
			[]string{"reason"},
		),
		LoansIssued: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "credit_approval_loans_issued_total",
				Help: "Total number of loans issued.",
			},
		),
		IssuedPrincipal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "credit_approval_issued_principal_total",
				Help: "Sum of principal over issued loans.",
			},
		),
		CustomersRegistered: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credit_approval_customer_registrations_total",
				Help: "Registrations split by created or updated.",
			},
			[]string{"result"},
		),
		IngestedRows: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credit_approval_ingested_rows_total",
				Help: "Spreadsheet rows processed by the bulk loader.",
			},
			[]string{"sheet", "result"},
		),
		DebtSnapshotsUpdated: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "credit_approval_debt_snapshots_updated_total",
				Help: "Customers whose current debt was refreshed by the batch job.",
			},
		),
	}
)

func RecordDBQuery(queryName, status string, duration time.Duration) {
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(duration.Seconds())
}

func RecordEligibilityDecision(reason string) {
	Business.EligibilityDecisions.WithLabelValues(reason).Inc()
}

func RecordLoanIssued(principal float64) {
	Business.LoansIssued.Inc()
	Business.IssuedPrincipal.Add(principal)
}

func RecordRegistration(created bool) {
	result := "updated"
	if created {
		result = "created"
	}
	Business.CustomersRegistered.WithLabelValues(result).Inc()
}

func RecordIngestedRow(sheet, result string) {
	Business.IngestedRows.WithLabelValues(sheet, result).Inc()
}

func RecordDebtSnapshotUpdated() {
	Business.DebtSnapshotsUpdated.Inc()
}
