// Package types contains common types used across the application
package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// FeatureCount is the fixed length of the vector the scoring model expects.
const FeatureCount = 16

// Errors returned while decoding upstream payloads.
var (
	ErrMalformedPrediction = errors.New("malformed prediction payload")
	ErrFeatureCount        = errors.New("feature vector must have exactly 16 elements")
)

// Applicant record field names, shared by the form, JSON payloads and the report.
const (
	FieldAge            = "age"
	FieldIncome         = "income"
	FieldLoanAmount     = "loan_amount"
	FieldCreditScore    = "credit_score"
	FieldMonthsEmployed = "months_employed"
	FieldNumCreditLines = "num_credit_lines"
	FieldInterestRate   = "interest_rate"
	FieldLoanTerm       = "loan_term"
	FieldDTIRatio       = "dti_ratio"
	FieldEducation      = "education"
	FieldEmploymentType = "employment_type"
	FieldMaritalStatus  = "marital_status"
	FieldHasMortgage    = "has_mortgage"
	FieldHasDependents  = "has_dependents"
	FieldLoanPurpose    = "loan_purpose"
	FieldHasCosigner    = "has_cosigner"
	FieldApplicantName  = "applicant_name"
)

// ApplicantRecord holds the applicant fields exactly as entered. Everything is
// a string until the encoder parses it.
type ApplicantRecord struct {
	Age            string `json:"age"`
	Income         string `json:"income"`
	LoanAmount     string `json:"loan_amount"`
	CreditScore    string `json:"credit_score"`
	MonthsEmployed string `json:"months_employed"`
	NumCreditLines string `json:"num_credit_lines"`
	InterestRate   string `json:"interest_rate"`
	LoanTerm       string `json:"loan_term"`
	DTIRatio       string `json:"dti_ratio"`

	Education      string `json:"education"`
	EmploymentType string `json:"employment_type"`
	MaritalStatus  string `json:"marital_status"`
	HasMortgage    string `json:"has_mortgage"`
	HasDependents  string `json:"has_dependents"`
	LoanPurpose    string `json:"loan_purpose"`
	HasCosigner    string `json:"has_cosigner"`

	// ApplicantName is display-only and never reaches the model.
	ApplicantName string `json:"applicant_name,omitempty"`
}

// RecordFields lists every field name accepted by Set, in form order.
var RecordFields = []string{ //nolint:gochecknoglobals // read-only field table
	FieldAge, FieldIncome, FieldLoanAmount, FieldCreditScore, FieldMonthsEmployed,
	FieldNumCreditLines, FieldInterestRate, FieldLoanTerm, FieldDTIRatio,
	FieldEducation, FieldEmploymentType, FieldMaritalStatus, FieldHasMortgage,
	FieldHasDependents, FieldLoanPurpose, FieldHasCosigner, FieldApplicantName,
}

// field returns a pointer to the named field, or nil.
func (r *ApplicantRecord) field(name string) *string {
	switch name {
	case FieldAge:
		return &r.Age
	case FieldIncome:
		return &r.Income
	case FieldLoanAmount:
		return &r.LoanAmount
	case FieldCreditScore:
		return &r.CreditScore
	case FieldMonthsEmployed:
		return &r.MonthsEmployed
	case FieldNumCreditLines:
		return &r.NumCreditLines
	case FieldInterestRate:
		return &r.InterestRate
	case FieldLoanTerm:
		return &r.LoanTerm
	case FieldDTIRatio:
		return &r.DTIRatio
	case FieldEducation:
		return &r.Education
	case FieldEmploymentType:
		return &r.EmploymentType
	case FieldMaritalStatus:
		return &r.MaritalStatus
	case FieldHasMortgage:
		return &r.HasMortgage
	case FieldHasDependents:
		return &r.HasDependents
	case FieldLoanPurpose:
		return &r.LoanPurpose
	case FieldHasCosigner:
		return &r.HasCosigner
	case FieldApplicantName:
		return &r.ApplicantName
	}
	return nil
}

// Set assigns value to the named field. It reports false for unknown names.
func (r *ApplicantRecord) Set(name, value string) bool {
	p := r.field(name)
	if p == nil {
		return false
	}
	*p = value
	return true
}

// Value returns the named field, or "" for unknown names.
func (r ApplicantRecord) Value(name string) string {
	if p := r.field(name); p != nil {
		return *p
	}
	return ""
}

// FeatureVector is the positional input of the scoring model. Order is a
// contract with the upstream service.
type FeatureVector [FeatureCount]float64

// FeatureNames are the upstream model's column names, index-aligned with FeatureVector.
var FeatureNames = [FeatureCount]string{ //nolint:gochecknoglobals // read-only schema
	"Age", "Income", "LoanAmount", "CreditScore", "MonthsEmployed",
	"NumCreditLines", "InterestRate", "LoanTerm", "DTIRatio",
	"Education", "EmploymentType", "MaritalStatus", "HasMortgage",
	"HasDependents", "LoanPurpose", "HasCoSigner",
}

// MarshalJSON writes the vector as a JSON array. NaN and infinities have no
// JSON form and are written as null, which is what a browser sends for NaN.
func (v FeatureVector) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			buf.WriteByte(',')
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			buf.WriteString("null")
			continue
		}
		buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a 16-element array; null elements become NaN.
func (v *FeatureVector) UnmarshalJSON(data []byte) error {
	var raw []*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode feature vector: %w", err)
	}
	if len(raw) != FeatureCount {
		return fmt.Errorf("%w: got %d", ErrFeatureCount, len(raw))
	}
	for i, f := range raw {
		if f == nil {
			v[i] = math.NaN()
			continue
		}
		v[i] = *f
	}
	return nil
}

// PredictRequest is the body sent to the scoring service.
type PredictRequest struct {
	Features FeatureVector `json:"features"`
}

// Verdict is the two-state classification shown to the user.
type Verdict string

// Verdict values.
const (
	VerdictHighRisk Verdict = "high_risk"
	VerdictLowRisk  Verdict = "low_risk"
)

// PredictionResult is the scoring service response. Only Prediction and
// DefaultProbability are interpreted; everything else is carried in Extra.
type PredictionResult struct {
	Prediction         int            `json:"prediction"`
	DefaultProbability float64        `json:"default_probability"`
	Extra              map[string]any `json:"-"`
}

// HighRisk reports whether the model flagged the applicant for default.
func (p PredictionResult) HighRisk() bool { return p.Prediction == 1 }

// Verdict maps the prediction onto its display verdict.
func (p PredictionResult) Verdict() Verdict {
	if p.HighRisk() {
		return VerdictHighRisk
	}
	return VerdictLowRisk
}

// MarshalJSON writes the interpreted fields plus the passthrough extras.
func (p PredictionResult) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Extra)+2)
	for k, v := range p.Extra {
		out[k] = v
	}
	out["prediction"] = p.Prediction
	out["default_probability"] = p.DefaultProbability
	return json.Marshal(out)
}

// UnmarshalJSON decodes a scoring response object.
func (p *PredictionResult) UnmarshalJSON(data []byte) error {
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedPrediction, err)
	}
	res, err := PredictionFromPayload(payload)
	if err != nil {
		return err
	}
	*p = res
	return nil
}

// PredictionFromPayload interprets an already-decoded JSON value. Missing
// fields keep their zero value; a non-object payload is malformed.
func PredictionFromPayload(payload any) (PredictionResult, error) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return PredictionResult{}, fmt.Errorf("%w: expected object, got %T", ErrMalformedPrediction, payload)
	}
	var res PredictionResult
	for k, v := range obj {
		switch k {
		case "prediction":
			n, ok := v.(float64)
			if !ok {
				return PredictionResult{}, fmt.Errorf("%w: prediction is %T", ErrMalformedPrediction, v)
			}
			res.Prediction = int(n)
		case "default_probability":
			f, ok := v.(float64)
			if !ok {
				return PredictionResult{}, fmt.Errorf("%w: default_probability is %T", ErrMalformedPrediction, v)
			}
			res.DefaultProbability = f
		default:
			if res.Extra == nil {
				res.Extra = make(map[string]any)
			}
			res.Extra[k] = v
		}
	}
	return res, nil
}
