package monitoring

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordEligibilityDecision(t *testing.T) {
	Business.EligibilityDecisions.Reset()

	RecordEligibilityDecision("approved")
	RecordEligibilityDecision("approved")
	RecordEligibilityDecision("score_too_low")

	expected := `
		# HELP credit_approval_eligibility_decisions_total Eligibility evaluations by outcome.
		# TYPE credit_approval_eligibility_decisions_total counter
		credit_approval_eligibility_decisions_total{reason="approved"} 2
		credit_approval_eligibility_decisions_total{reason="score_too_low"} 1
	`
	err := testutil.CollectAndCompare(Business.EligibilityDecisions, strings.NewReader(expected))
	assert.NoError(t, err)
}

func TestRecordLoanIssued(t *testing.T) {
	before := testutil.ToFloat64(Business.LoansIssued)
	beforePrincipal := testutil.ToFloat64(Business.IssuedPrincipal)

	RecordLoanIssued(250000)

	assert.Equal(t, before+1, testutil.ToFloat64(Business.LoansIssued))
	assert.Equal(t, beforePrincipal+250000, testutil.ToFloat64(Business.IssuedPrincipal))
}

func TestRecordRegistration(t *testing.T) {
	Business.CustomersRegistered.Reset()

	RecordRegistration(true)
	RecordRegistration(false)
	RecordRegistration(false)

	assert.Equal(t, float64(1), testutil.ToFloat64(Business.CustomersRegistered.WithLabelValues("created")))
	assert.Equal(t, float64(2), testutil.ToFloat64(Business.CustomersRegistered.WithLabelValues("updated")))
}

func TestRecordDBQuery(t *testing.T) {
	DB.QueryDuration.Reset()

	RecordDBQuery("GetLoanByID", "success", 3*time.Millisecond)

	assert.Equal(t, 1, testutil.CollectAndCount(DB.QueryDuration))
}
