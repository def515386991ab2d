package probe

import (
	"time"

	"github.com/okian/riskterm/internal/domain/types"
)

// Defaults.
const (
	DefaultBaseURL = "http://localhost:3000"
	DefaultTimeout = 90 * time.Second
)

// Config holds the probe targets.
type Config struct {
	BaseURL string        // Front-end root
	APIURL  string        // Scoring service root, used by direct checks
	Timeout time.Duration // Per-request timeout
}

// HealthReport is the outcome of one health check.
type HealthReport struct {
	Target  string
	Status  int
	Latency time.Duration
	Payload any
}

// PredictReport is the outcome of a reference prediction.
type PredictReport struct {
	Record  types.ApplicantRecord
	Result  types.PredictionResult
	Latency time.Duration
}

// ReferenceApplicant returns the applicant used by predict and report probes.
func ReferenceApplicant() types.ApplicantRecord {
	return types.ApplicantRecord{
		Age:            "32",
		Income:         "850000",
		LoanAmount:     "150000",
		CreditScore:    "720",
		MonthsEmployed: "48",
		NumCreditLines: "2",
		InterestRate:   "5.5",
		LoanTerm:       "36",
		DTIRatio:       "0.35",
		Education:      "Bachelor's",
		EmploymentType: "Full-time",
		MaritalStatus:  "Single",
		HasMortgage:    "No",
		HasDependents:  "No",
		LoanPurpose:    "Home",
		HasCosigner:    "No",
		ApplicantName:  "Probe Applicant",
	}
}
