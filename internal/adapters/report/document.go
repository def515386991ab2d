// Package report renders a one-page PDF summary of a risk assessment.
package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/okian/riskterm/internal/domain/types"
)

// Filename is the download name for every rendered report.
const Filename = "risk_assessment_report.pdf"

// Fixed report copy.
const (
	Brand    = "RISKTERM"
	Title    = "LOAN DEFAULT RISK ASSESSMENT"
	Subtitle = "RISK_ASSESSMENT_TERMINAL // AUTOMATED CREDIT ANALYSIS"

	VerdictHighRisk = "HIGH RISK"
	VerdictLowRisk  = "LOW RISK"

	AdvisoryHighRisk = "Entity flagged for high probability of default. Recommend enhanced due diligence and collateral verification."
	AdvisoryLowRisk  = "Entity clears standard risk thresholds. Auto-approval protocols engaged."

	SectionFinancial = "FINANCIAL VECTORS"
	SectionPersonal  = "PERSONAL IDENTIFIERS"

	notProvided = "N/A"
	dateLayout  = "2006-01-02"
)

// Input is everything a report is built from.
type Input struct {
	Result types.PredictionResult `json:"result"`
	Record types.ApplicantRecord  `json:"record"`
}

// Row is one label/value line of the field table.
type Row struct {
	Label string
	Value string
}

// Section groups rows under a fixed header.
type Section struct {
	Title string
	Rows  []Row
}

// Document is the content of a report, independent of how it is drawn.
type Document struct {
	ReferenceID string
	Date        string
	Applicant   string
	HighRisk    bool
	Verdict     string
	Advisory    string
	Probability string
	Drivers     []Row
	Sections    []Section
}

// FormatProbability renders p (0..1) as a percentage with two decimals.
func FormatProbability(p float64) string {
	return fmt.Sprintf("%.2f%%", p*100)
}

// Compose builds the report content for in, stamped with the renderer's
// clock and a fresh reference id.
func (r *Renderer) Compose(in Input) Document {
	return r.compose(in, r.now())
}

func (r *Renderer) compose(in Input, ts time.Time) Document {
	rec := in.Record
	p := message.NewPrinter(r.lang)
	money := func(s string) string { return r.money(p, s) }

	doc := Document{
		ReferenceID: r.newID(),
		Date:        ts.Format(dateLayout),
		Applicant:   orDefault(strings.TrimSpace(rec.ApplicantName), "UNNAMED APPLICANT"),
		HighRisk:    in.Result.HighRisk(),
		Probability: FormatProbability(in.Result.DefaultProbability),
	}
	if doc.HighRisk {
		doc.Verdict, doc.Advisory = VerdictHighRisk, AdvisoryHighRisk
	} else {
		doc.Verdict, doc.Advisory = VerdictLowRisk, AdvisoryLowRisk
	}

	doc.Drivers = []Row{
		{Label: "CREDIT SCORE", Value: plain(rec.CreditScore)},
		{Label: "DTI RATIO", Value: plain(rec.DTIRatio)},
		{Label: "ANNUAL INCOME", Value: money(rec.Income)},
		{Label: "LOAN AMOUNT", Value: money(rec.LoanAmount)},
	}

	doc.Sections = []Section{
		{
			Title: SectionFinancial,
			Rows: []Row{
				{Label: "Annual Income", Value: money(rec.Income)},
				{Label: "Loan Amount", Value: money(rec.LoanAmount)},
				{Label: "Credit Score", Value: plain(rec.CreditScore)},
				{Label: "Interest Rate", Value: suffixed(rec.InterestRate, "%")},
				{Label: "Loan Term", Value: suffixed(rec.LoanTerm, " months")},
				{Label: "DTI Ratio", Value: plain(rec.DTIRatio)},
				{Label: "Months Employed", Value: plain(rec.MonthsEmployed)},
				{Label: "Credit Lines", Value: plain(rec.NumCreditLines)},
			},
		},
		{
			Title: SectionPersonal,
			Rows: []Row{
				{Label: "Applicant", Value: doc.Applicant},
				{Label: "Age", Value: plain(rec.Age)},
				{Label: "Education", Value: plain(rec.Education)},
				{Label: "Employment", Value: plain(rec.EmploymentType)},
				{Label: "Marital Status", Value: plain(rec.MaritalStatus)},
				{Label: "Loan Purpose", Value: plain(rec.LoanPurpose)},
				{Label: "Mortgage", Value: yesNo(rec.HasMortgage)},
				{Label: "Dependents", Value: yesNo(rec.HasDependents)},
				{Label: "Co-Signer", Value: yesNo(rec.HasCosigner)},
			},
		},
	}
	return doc
}

// money formats s with thousands separators and the currency prefix. Values
// that do not parse are shown as entered.
func (r *Renderer) money(p *message.Printer, s string) string {
	s = strings.TrimSpace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return plain(s)
	}
	return r.currency + p.Sprint(number.Decimal(f, number.MaxFractionDigits(2)))
}

// yesNo renders a binary field through the same parse the encoder uses, so
// the report never disagrees with what the model was sent.
func yesNo(s string) string {
	v, _ := types.ParseYesNo(s)
	return v.String()
}

func plain(s string) string {
	return orDefault(strings.TrimSpace(s), notProvided)
}

func suffixed(s, suffix string) string {
	if s = strings.TrimSpace(s); s == "" {
		return notProvided
	}
	return s + suffix
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
