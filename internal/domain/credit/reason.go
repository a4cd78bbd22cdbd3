package credit

// Reason is the outcome tag of an eligibility decision.
type Reason int

const (
	ReasonApproved Reason = iota
	ReasonExposureExceeded
	ReasonIncomeRatioExceeded
	ReasonScoreTooLow
)

var reasonMessages = map[Reason]string{
	ReasonApproved:            "Loan approved",
	ReasonExposureExceeded:    "Existing loan exposure exceeds approved limit",
	ReasonIncomeRatioExceeded: "Current EMIs consume more than 50% of monthly income",
	ReasonScoreTooLow:         "Credit rating too low to approve a loan",
}

func (r Reason) String() string {
	if msg, ok := reasonMessages[r]; ok {
		return msg
	}
	return "Unknown decision"
}

func (r Reason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Code is a stable machine-readable name used for metrics labels and events.
func (r Reason) Code() string {
	switch r {
	case ReasonApproved:
		return "approved"
	case ReasonExposureExceeded:
		return "exposure_exceeded"
	case ReasonIncomeRatioExceeded:
		return "income_ratio_exceeded"
	case ReasonScoreTooLow:
		return "score_too_low"
	default:
		return "unknown"
	}
}
