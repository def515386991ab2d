package site

import "github.com/okian/riskterm/internal/domain/types"

// formField describes one input of the assessment form.
type formField struct {
	Name        string
	Label       string
	Help        string
	Placeholder string
	Type        string
	Step        string
	Options     []string
	Value       string
}

// Select reports whether the field renders as a drop-down.
func (f formField) Select() bool { return len(f.Options) > 0 }

type formSection struct {
	Title  string
	Fields []formField
}

func numberField(name, label, placeholder, help string) formField {
	return formField{Name: name, Label: label, Placeholder: placeholder, Help: help, Type: "number", Step: "any"}
}

func selectField(name, label, help string, options []string) formField {
	return formField{Name: name, Label: label, Help: help, Options: options}
}

// formLayout is the assessment form in display order.
func formLayout() []formSection {
	return []formSection{
		{
			Title: "Financial_Vectors",
			Fields: []formField{
				numberField(types.FieldIncome, "Annual Income", "850000", "Total gross annual income before taxes."),
				numberField(types.FieldLoanAmount, "Loan Amount", "150000", "The total principal amount requested for the loan."),
				numberField(types.FieldCreditScore, "Credit Score", "720", "FICO score (range: 300-850)."),
				numberField(types.FieldInterestRate, "Interest Rate (%)", "5.5", "Proposed annual interest rate."),
				numberField(types.FieldLoanTerm, "Term (Mos)", "36", "Duration of the loan in months."),
				numberField(types.FieldDTIRatio, "DTI Ratio", "0.35", "Debt-to-Income Ratio (Total Monthly Debt / Gross Monthly Income)."),
			},
		},
		{
			Title: "Personal_Identifiers",
			Fields: []formField{
				{Name: types.FieldApplicantName, Label: "Applicant Name", Placeholder: "Optional", Help: "Shown on the exported report only.", Type: "text"},
				numberField(types.FieldAge, "Age", "32", "Applicant's age in years."),
				numberField(types.FieldMonthsEmployed, "Employ. Mos", "48", "Total months of continuous employment."),
				numberField(types.FieldNumCreditLines, "Cred Lines", "2", "Number of active or past credit lines."),
				selectField(types.FieldEducation, "Education", "Highest level of education completed.", types.EducationOptions),
				selectField(types.FieldEmploymentType, "Employment", "Current employment status.", types.EmploymentTypeOptions),
				selectField(types.FieldMaritalStatus, "Marital", "Current marital status.", types.MaritalStatusOptions),
				selectField(types.FieldLoanPurpose, "Purpose", "Primary reason for requesting the loan.", types.LoanPurposeOptions),
				selectField(types.FieldHasMortgage, "Mortgage?", "Do you currently have an active mortgage?", types.YesNoOptions),
				selectField(types.FieldHasDependents, "Dependents?", "Do you have any financial dependents?", types.YesNoOptions),
				selectField(types.FieldHasCosigner, "Co-Signer?", "Is there a co-signer for this loan?", types.YesNoOptions),
			},
		},
	}
}

// filledForm returns the form layout with values taken from rec.
func filledForm(rec types.ApplicantRecord) []formSection {
	sections := formLayout()
	for i := range sections {
		for j := range sections[i].Fields {
			f := &sections[i].Fields[j]
			f.Value = rec.Value(f.Name)
		}
	}
	return sections
}
