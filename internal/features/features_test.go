package features

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"olea/internal/form"
)

type FeaturesSuite struct {
	suite.Suite
	now time.Time
}

func (s *FeaturesSuite) SetupTest() {
	// Thursday 2026-03-19, ISO week 12.
	s.now = time.Date(2026, time.March, 19, 10, 0, 0, 0, time.UTC)
}

func TestFeaturesSuite(t *testing.T) {
	suite.Run(t, new(FeaturesSuite))
}

func (s *FeaturesSuite) record(set map[form.Field]string) form.Record {
	rec := form.New()
	for f, v := range set {
		s.Require().NoError(rec.SetText(f, v))
	}
	return rec
}

func (s *FeaturesSuite) TestCountsAndDecimals() {
	s.Run("parses filled counts", func() {
		v := Build(s.record(map[form.Field]string{
			form.FieldAdultDependents: "2",
			form.FieldChildDependents: "3",
		}), s.now)
		s.Equal(2, v.AdultDependents)
		s.Equal(3, v.ChildDependents)
	})

	s.Run("empty and non-numeric counts fall back to zero", func() {
		v := Build(s.record(map[form.Field]string{
			form.FieldPreviousClaimsFiled: "several",
		}), s.now)
		s.Zero(v.PreviousClaimsFiled)
		s.Zero(v.VehiclesOnPolicy)
	})

	s.Run("parses income as a decimal", func() {
		v := Build(s.record(map[form.Field]string{
			form.FieldEstimatedAnnualIncome: "85000.5",
		}), s.now)
		s.InDelta(85000.5, v.EstimatedAnnualIncome, 0.001)
	})

	s.Run("empty income falls back to zero", func() {
		v := Build(form.New(), s.now)
		s.Zero(v.EstimatedAnnualIncome)
	})
}

func (s *FeaturesSuite) TestFlags() {
	rec := form.New()
	s.Require().NoError(rec.SetBool(form.FieldExistingPolicyholder, true))

	v := Build(rec, s.now)
	s.Equal(1, v.ExistingPolicyholder)
	s.Equal(0, v.PolicyCancelledPostPurchase)
}

func (s *FeaturesSuite) TestEnumDefaults() {
	s.Run("blank enums take their defaults", func() {
		v := Build(form.New(), s.now)
		s.Equal("Employed", v.EmploymentStatus)
		s.Equal("Monthly", v.PaymentSchedule)
	})

	s.Run("filled enums pass through", func() {
		v := Build(s.record(map[form.Field]string{
			form.FieldEmploymentStatus: "Retired",
			form.FieldPaymentSchedule:  "Annual",
		}), s.now)
		s.Equal("Retired", v.EmploymentStatus)
		s.Equal("Annual", v.PaymentSchedule)
	})
}

func (s *FeaturesSuite) TestOptionalText() {
	s.Run("blank optionals are absent", func() {
		v := Build(form.New(), s.now)
		s.Nil(v.RegionCode)
		s.Nil(v.DeductibleTier)
		s.Nil(v.AcquisitionChannel)
		s.Nil(v.BrokerAgencyType)
	})

	s.Run("filled optionals carry through", func() {
		v := Build(s.record(map[form.Field]string{
			form.FieldRegionCode:     "R-042",
			form.FieldDeductibleTier: "High",
		}), s.now)
		s.Require().NotNil(v.RegionCode)
		s.Equal("R-042", *v.RegionCode)
		s.Require().NotNil(v.DeductibleTier)
		s.Equal("High", *v.DeductibleTier)
	})
}

func (s *FeaturesSuite) TestIdentifiers() {
	s.Run("extracts the digit run", func() {
		v := Build(s.record(map[form.Field]string{
			form.FieldBrokerID:   "BRK-4421",
			form.FieldEmployerID: "EMP-8832",
		}), s.now)
		s.Require().NotNil(v.BrokerID)
		s.InDelta(4421, *v.BrokerID, 0.001)
		s.Require().NotNil(v.EmployerID)
		s.InDelta(8832, *v.EmployerID, 0.001)
	})

	s.Run("blank identifier is absent", func() {
		v := Build(form.New(), s.now)
		s.Nil(v.BrokerID)
		s.Nil(v.EmployerID)
	})

	s.Run("identifier with no digits is absent", func() {
		v := Build(s.record(map[form.Field]string{
			form.FieldBrokerID: "NOID",
		}), s.now)
		s.Nil(v.BrokerID)
	})
}

func (s *FeaturesSuite) TestStartDateFallbacks() {
	s.Run("blank date components anchor to the clock", func() {
		v := Build(form.New(), s.now)
		s.Equal(2026, v.PolicyStartYear)
		s.Equal("March", v.PolicyStartMonth)
		s.Equal(12, v.PolicyStartWeek)
		s.Equal(19, v.PolicyStartDay)
	})

	s.Run("filled date components pass through", func() {
		v := Build(s.record(map[form.Field]string{
			form.FieldPolicyStartYear:  "2027",
			form.FieldPolicyStartMonth: "january",
			form.FieldPolicyStartWeek:  "2",
			form.FieldPolicyStartDay:   "5",
		}), s.now)
		s.Equal(2027, v.PolicyStartYear)
		s.Equal("January", v.PolicyStartMonth)
		s.Equal(2, v.PolicyStartWeek)
		s.Equal(5, v.PolicyStartDay)
	})
}

func (s *FeaturesSuite) TestDeterminism() {
	rec := s.record(map[form.Field]string{
		form.FieldAdultDependents:       "2",
		form.FieldEstimatedAnnualIncome: "60000",
		form.FieldBrokerID:              "BRK-100",
	})

	a := Build(rec, s.now)
	b := Build(rec, s.now)
	s.Equal(a, b)
}

// TestSerializedFieldNames pins the wire contract: every vector key must use
// the schema's canonical spelling, or a schema-validating scorer drops the
// field.
func (s *FeaturesSuite) TestSerializedFieldNames() {
	// Fill the optional fields so nothing is omitted from the payload.
	rec := s.record(map[form.Field]string{
		form.FieldRegionCode:         "R-042",
		form.FieldDeductibleTier:     "High",
		form.FieldAcquisitionChannel: "Broker",
		form.FieldBrokerAgencyType:   "Small",
		form.FieldBrokerID:           "BRK-4421",
		form.FieldEmployerID:         "EMP-8832",
	})

	data, err := json.Marshal(Build(rec, s.now))
	s.Require().NoError(err)

	var payload map[string]any
	s.Require().NoError(json.Unmarshal(data, &payload))

	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}

	want := make([]string, 0, form.Count())
	for _, f := range form.Fields() {
		want = append(want, string(f))
	}
	s.ElementsMatch(want, keys)
}
