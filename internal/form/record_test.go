package form

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "olea/pkg/domain-errors"
)

type RecordSuite struct {
	suite.Suite
}

func TestRecordSuite(t *testing.T) {
	suite.Run(t, new(RecordSuite))
}

// ===== Construction =====

func (s *RecordSuite) TestNewHasEveryFieldAtDefault() {
	r := New()
	s.Len(r, Count())

	for _, f := range Fields() {
		v, ok := r[f]
		s.Require().True(ok, "field %s missing", f)
		s.True(v.IsZero(), "field %s not at default", f)
	}

	s.Equal(KindDigits, r[FieldAdultDependents].Kind)
	s.Equal(KindBool, r[FieldExistingPolicyholder].Kind)
	s.Equal(KindText, r[FieldEmploymentStatus].Kind)
}

func (s *RecordSuite) TestCloneIsIndependent() {
	r := New()
	s.Require().NoError(r.SetText(FieldRegionCode, "R-042"))

	c := r.Clone()
	s.Require().NoError(c.SetText(FieldRegionCode, "R-999"))

	s.Equal("R-042", r.Text(FieldRegionCode))
	s.Equal("R-999", c.Text(FieldRegionCode))
}

// ===== Update contract =====

func (s *RecordSuite) TestSetRejectsUnknownField() {
	r := New()
	err := r.Set("Not_A_Field", TextValue("x"))
	s.Require().ErrorIs(err, dErrors.New(dErrors.CodeValidation, ""))
}

func (s *RecordSuite) TestSetRejectsKindMismatch() {
	r := New()
	err := r.Set(FieldExistingPolicyholder, TextValue("yes"))
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *RecordSuite) TestSetTextGuardsBooleanFields() {
	r := New()
	s.True(dErrors.HasCode(r.SetText(FieldExistingPolicyholder, "yes"), dErrors.CodeValidation))
	s.True(dErrors.HasCode(r.SetBool(FieldRegionCode, true), dErrors.CodeValidation))

	s.Require().NoError(r.SetBool(FieldExistingPolicyholder, true))
	s.True(r.Flag(FieldExistingPolicyholder))
}

// ===== Loose input coercion =====

func (s *RecordSuite) TestFromRawCoercesScalars() {
	r := FromRaw(map[string]any{
		"Adult_Dependents":               float64(2), // JSON numbers arrive as float64
		"Estimated_Annual_Income":        85000.5,
		"Employment_Status":              "Employed",
		"Existing_Policyholder":          true,
		"Policy_Cancelled_Post_Purchase": "no",
		"totally_unknown_key":            "ignored",
	})

	s.Len(r, Count())
	s.Equal("2", r.Text(FieldAdultDependents))
	s.Equal("85000.5", r.Text(FieldEstimatedAnnualIncome))
	s.Equal("Employed", r.Text(FieldEmploymentStatus))
	s.True(r.Flag(FieldExistingPolicyholder))
	s.False(r.Flag(FieldPolicyCancelledPostPurchase))
}

func (s *RecordSuite) TestTruthyTokens() {
	s.True(Truthy(true))
	s.True(Truthy("yes"))
	s.True(Truthy("anything else"))
	s.True(Truthy(1))

	s.False(Truthy(nil))
	s.False(Truthy(""))
	s.False(Truthy(" NO "))
	s.False(Truthy("false"))
	s.False(Truthy("0"))
	s.False(Truthy(float64(0)))
}

func (s *RecordSuite) TestRenderWholeFloatsKeepDigitShape() {
	s.Equal("2", Render(float64(2)))
	s.Equal("85000.5", Render(85000.5))
	s.Equal("42", Render(42))
	s.Equal("true", Render(true))
	s.Equal("", Render(nil))
}

// ===== JSON round trip =====

func (s *RecordSuite) TestJSONRoundTrip() {
	r := New()
	s.Require().NoError(r.SetText(FieldAdultDependents, "3"))
	s.Require().NoError(r.SetBool(FieldExistingPolicyholder, true))
	s.Require().NoError(r.SetText(FieldEmploymentStatus, "Retired"))

	data, err := json.Marshal(r)
	s.Require().NoError(err)

	var back Record
	s.Require().NoError(json.Unmarshal(data, &back))
	s.Equal(r, back)
}

// ===== Schema integrity =====

func (s *RecordSuite) TestAliasIndexPointsAtRealFields() {
	idx := AliasIndex()
	s.NotEmpty(idx)
	for alias, f := range idx {
		_, ok := SpecOf(f)
		s.True(ok, "alias %q maps to unknown field %s", alias, f)
	}
}

func (s *RecordSuite) TestLookupAcceptsCanonicalNames() {
	for _, f := range Fields() {
		got, ok := Lookup(string(f))
		s.Require().True(ok, "Lookup(%s)", f)
		s.Equal(f, got)
	}
	_, ok := Lookup("No_Such_Field")
	s.False(ok)
}
