package types

// Categorical applicant fields. The integer value of each constant is the code
// the scoring model was trained on, so the const order must not change.

// Education is the highest completed education level.
type Education int

// Education codes.
const (
	EducationHighSchool Education = iota
	EducationBachelors
	EducationMasters
	EducationPhD
)

// EmploymentType is the applicant's current employment status.
type EmploymentType int

// EmploymentType codes.
const (
	EmploymentUnemployed EmploymentType = iota
	EmploymentPartTime
	EmploymentFullTime
	EmploymentSelfEmployed
)

// MaritalStatus is the applicant's marital status.
type MaritalStatus int

// MaritalStatus codes.
const (
	MaritalSingle MaritalStatus = iota
	MaritalMarried
	MaritalDivorced
	MaritalWidowed
)

// LoanPurpose is the primary reason for the loan.
type LoanPurpose int

// LoanPurpose codes.
const (
	PurposeBusiness LoanPurpose = iota
	PurposeHome
	PurposeEducation
	PurposePersonal
	PurposeAuto
	PurposeOther
)

// YesNo is the canonical binary answer used by mortgage, dependents and co-signer.
type YesNo int

// YesNo codes.
const (
	No YesNo = iota
	Yes
)

// Labels indexed by code.
var ( //nolint:gochecknoglobals // lookup tables
	educationLabels  = []string{"High School", "Bachelor's", "Master's", "PhD"}
	employmentLabels = []string{"Unemployed", "Part-time", "Full-time", "Self-employed"}
	maritalLabels    = []string{"Single", "Married", "Divorced", "Widowed"}
	purposeLabels    = []string{"Business", "Home", "Education", "Personal", "Auto", "Other"}
	yesNoLabels      = []string{"No", "Yes"}
)

func label(labels []string, code int) string {
	if code < 0 || code >= len(labels) {
		return ""
	}
	return labels[code]
}

func lookup(labels []string, s string) (int, bool) {
	for i, l := range labels {
		if l == s {
			return i, true
		}
	}
	return 0, false
}

func (e Education) String() string      { return label(educationLabels, int(e)) }
func (e EmploymentType) String() string { return label(employmentLabels, int(e)) }
func (m MaritalStatus) String() string  { return label(maritalLabels, int(m)) }
func (p LoanPurpose) String() string    { return label(purposeLabels, int(p)) }
func (y YesNo) String() string          { return label(yesNoLabels, int(y)) }

// ParseEducation matches s exactly against the option labels. Unknown input
// returns the zero code and false.
func ParseEducation(s string) (Education, bool) {
	i, ok := lookup(educationLabels, s)
	return Education(i), ok
}

// ParseEmploymentType matches s exactly against the option labels.
func ParseEmploymentType(s string) (EmploymentType, bool) {
	i, ok := lookup(employmentLabels, s)
	return EmploymentType(i), ok
}

// ParseMaritalStatus matches s exactly against the option labels.
func ParseMaritalStatus(s string) (MaritalStatus, bool) {
	i, ok := lookup(maritalLabels, s)
	return MaritalStatus(i), ok
}

// ParseLoanPurpose matches s exactly against the option labels.
func ParseLoanPurpose(s string) (LoanPurpose, bool) {
	i, ok := lookup(purposeLabels, s)
	return LoanPurpose(i), ok
}

// ParseYesNo accepts only "Yes" and "No".
func ParseYesNo(s string) (YesNo, bool) {
	i, ok := lookup(yesNoLabels, s)
	return YesNo(i), ok
}

// Option lists in the order the assessment form presents them. Employment is
// shown most-common first, which differs from its code order.
var ( //nolint:gochecknoglobals // form data
	EducationOptions      = []string{"High School", "Bachelor's", "Master's", "PhD"}
	EmploymentTypeOptions = []string{"Full-time", "Part-time", "Self-employed", "Unemployed"}
	MaritalStatusOptions  = []string{"Single", "Married", "Divorced", "Widowed"}
	LoanPurposeOptions    = []string{"Business", "Home", "Education", "Personal", "Auto", "Other"}
	YesNoOptions          = []string{"No", "Yes"}
)
