// Package encoding turns an applicant record into the positional feature
// vector the scoring model expects.
package encoding

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/okian/riskterm/internal/domain/types"
)

// Feature is one named slot of an encoded vector.
type Feature struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Encode maps rec onto the 16-slot vector. It never fails: numeric fields that
// are empty or unparseable become NaN, unknown categoricals become 0.
func Encode(rec types.ApplicantRecord) types.FeatureVector {
	education, _ := types.ParseEducation(rec.Education)
	employment, _ := types.ParseEmploymentType(rec.EmploymentType)
	marital, _ := types.ParseMaritalStatus(rec.MaritalStatus)
	mortgage, _ := types.ParseYesNo(rec.HasMortgage)
	dependents, _ := types.ParseYesNo(rec.HasDependents)
	purpose, _ := types.ParseLoanPurpose(rec.LoanPurpose)
	cosigner, _ := types.ParseYesNo(rec.HasCosigner)

	return types.FeatureVector{
		number(rec.Age),
		number(rec.Income),
		number(rec.LoanAmount),
		number(rec.CreditScore),
		number(rec.MonthsEmployed),
		number(rec.NumCreditLines),
		number(rec.InterestRate),
		number(rec.LoanTerm),
		number(rec.DTIRatio),
		float64(education),
		float64(employment),
		float64(marital),
		float64(mortgage),
		float64(dependents),
		float64(purpose),
		float64(cosigner),
	}
}

// Unrecognised lists the categorical fields of rec that fell back to code 0
// because their value was not one of the known options.
func Unrecognised(rec types.ApplicantRecord) []string {
	var out []string
	check := func(field string, ok bool) {
		if !ok {
			out = append(out, field)
		}
	}
	_, ok := types.ParseEducation(rec.Education)
	check(types.FieldEducation, ok)
	_, ok = types.ParseEmploymentType(rec.EmploymentType)
	check(types.FieldEmploymentType, ok)
	_, ok = types.ParseMaritalStatus(rec.MaritalStatus)
	check(types.FieldMaritalStatus, ok)
	_, ok = types.ParseYesNo(rec.HasMortgage)
	check(types.FieldHasMortgage, ok)
	_, ok = types.ParseYesNo(rec.HasDependents)
	check(types.FieldHasDependents, ok)
	_, ok = types.ParseLoanPurpose(rec.LoanPurpose)
	check(types.FieldLoanPurpose, ok)
	_, ok = types.ParseYesNo(rec.HasCosigner)
	check(types.FieldHasCosigner, ok)
	return out
}

// Describe pairs each slot of vec with the model's column name.
func Describe(vec types.FeatureVector) []Feature {
	out := make([]Feature, types.FeatureCount)
	for i, v := range vec {
		out[i] = Feature{Name: types.FeatureNames[i], Value: v}
	}
	return out
}

// number parses s the way a browser's Number() does, except that empty input
// yields NaN rather than 0. Unsigned 0x, 0o and 0b integer literals are
// accepted; Go-only forms (hex floats, "inf", "nan") are not.
func number(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	if len(s) > 2 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X':
			return radix(s[2:], 16)
		case 'o', 'O':
			return radix(s[2:], 8)
		case 'b', 'B':
			return radix(s[2:], 2)
		}
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if strings.ContainsAny(s, "xXiInN_") {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return f
}

// radix parses an unsigned integer literal body in base. Digits only.
func radix(digits string, base int) float64 {
	var f float64
	for _, c := range strings.ToLower(digits) {
		var d int
		switch {
		case c >= '0' && c <= '9':
			d = int(c - '0')
		case c >= 'a' && c <= 'f':
			d = int(c-'a') + 10
		default:
			return math.NaN()
		}
		if d >= base {
			return math.NaN()
		}
		f = f*float64(base) + float64(d)
	}
	return f
}
