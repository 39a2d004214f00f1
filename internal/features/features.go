// Package features turns a client record into the numeric vector the scoring
// model consumes. Building is pure: same record and clock in, same vector
// out. Every field has a deterministic fallback so a partially filled record
// still scores.
package features

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"olea/internal/form"
)

// digitRunRE pulls the first run of digits (and dots) out of an identifier
// like "BRK-4421".
var digitRunRE = regexp.MustCompile(`[\d.]+`)

// Vector is the model input. Field names follow the schema's canonical
// names; optional fields are omitted when the record gives no usable value.
type Vector struct {
	AdultDependents              int      `json:"Adult_Dependents"`
	ChildDependents              int      `json:"Child_Dependents"`
	InfantDependents             int      `json:"Infant_Dependents"`
	EstimatedAnnualIncome        float64  `json:"Estimated_Annual_Income"`
	EmploymentStatus             string   `json:"Employment_Status"`
	RegionCode                   *string  `json:"Region_Code,omitempty"`
	ExistingPolicyholder         int      `json:"Existing_Policyholder"`
	PreviousClaimsFiled          int      `json:"Previous_Claims_Filed"`
	YearsWithoutClaims           int      `json:"Years_Without_Claims"`
	PreviousPolicyDurationMonths int      `json:"Previous_Policy_Duration_Months"`
	PolicyCancelledPostPurchase  int      `json:"Policy_Cancelled_Post_Purchase"`
	DeductibleTier               *string  `json:"Deductible_Tier,omitempty"`
	PaymentSchedule              string   `json:"Payment_Schedule"`
	VehiclesOnPolicy             int      `json:"Vehicles_on_Policy"`
	CustomRidersRequested        int      `json:"Custom_Riders_Requested"`
	GracePeriodExtensions        int      `json:"Grace_Period_Extensions"`
	DaysSinceQuote               int      `json:"Days_Since_Quote"`
	UnderwritingProcessingDays   int      `json:"Underwriting_Processing_Days"`
	PolicyAmendmentsCount        int      `json:"Policy_Amendments_Count"`
	AcquisitionChannel           *string  `json:"Acquisition_Channel,omitempty"`
	BrokerAgencyType             *string  `json:"Broker_Agency_Type,omitempty"`
	BrokerID                     *float64 `json:"Broker_ID,omitempty"`
	EmployerID                   *float64 `json:"Employer_ID,omitempty"`
	PolicyStartYear              int      `json:"Policy_Start_Year"`
	PolicyStartMonth             string   `json:"Policy_Start_Month"`
	PolicyStartWeek              int      `json:"Policy_Start_Week"`
	PolicyStartDay               int      `json:"Policy_Start_Day"`
}

// Build derives the feature vector from a record. now anchors the date
// component fallbacks.
func Build(rec form.Record, now time.Time) Vector {
	_, week := now.ISOWeek()
	return Vector{
		AdultDependents:              count(rec, form.FieldAdultDependents),
		ChildDependents:              count(rec, form.FieldChildDependents),
		InfantDependents:             count(rec, form.FieldInfantDependents),
		EstimatedAnnualIncome:        decimal(rec, form.FieldEstimatedAnnualIncome),
		EmploymentStatus:             enum(rec, form.FieldEmploymentStatus),
		RegionCode:                   optText(rec, form.FieldRegionCode),
		ExistingPolicyholder:         flag(rec, form.FieldExistingPolicyholder),
		PreviousClaimsFiled:          count(rec, form.FieldPreviousClaimsFiled),
		YearsWithoutClaims:           count(rec, form.FieldYearsWithoutClaims),
		PreviousPolicyDurationMonths: count(rec, form.FieldPreviousPolicyDurationMonths),
		PolicyCancelledPostPurchase:  flag(rec, form.FieldPolicyCancelledPostPurchase),
		DeductibleTier:               optText(rec, form.FieldDeductibleTier),
		PaymentSchedule:              enum(rec, form.FieldPaymentSchedule),
		VehiclesOnPolicy:             count(rec, form.FieldVehiclesOnPolicy),
		CustomRidersRequested:        count(rec, form.FieldCustomRidersRequested),
		GracePeriodExtensions:        count(rec, form.FieldGracePeriodExtensions),
		DaysSinceQuote:               count(rec, form.FieldDaysSinceQuote),
		UnderwritingProcessingDays:   count(rec, form.FieldUnderwritingProcessingDays),
		PolicyAmendmentsCount:        count(rec, form.FieldPolicyAmendmentsCount),
		AcquisitionChannel:           optText(rec, form.FieldAcquisitionChannel),
		BrokerAgencyType:             optText(rec, form.FieldBrokerAgencyType),
		BrokerID:                     identifier(rec, form.FieldBrokerID),
		EmployerID:                   identifier(rec, form.FieldEmployerID),
		PolicyStartYear:              intOr(rec, form.FieldPolicyStartYear, now.Year()),
		PolicyStartMonth:             startMonth(rec, now),
		PolicyStartWeek:              intOr(rec, form.FieldPolicyStartWeek, week),
		PolicyStartDay:               intOr(rec, form.FieldPolicyStartDay, now.Day()),
	}
}

// count parses a non-negative tally, falling back to 0.
func count(rec form.Record, f form.Field) int {
	return intOr(rec, f, 0)
}

func intOr(rec form.Record, f form.Field, fallback int) int {
	text := strings.TrimSpace(rec.Text(f))
	if text == "" {
		return fallback
	}
	if n, err := strconv.Atoi(text); err == nil {
		return n
	}
	// Digits-as-text may carry a decimal tail from upstream casting.
	if fl, err := strconv.ParseFloat(text, 64); err == nil {
		return int(fl)
	}
	return fallback
}

func decimal(rec form.Record, f form.Field) float64 {
	text := strings.TrimSpace(rec.Text(f))
	if text == "" {
		return 0
	}
	fl, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0
	}
	return fl
}

// flag maps a boolean field to the 0/1 encoding the model expects.
func flag(rec form.Record, f form.Field) int {
	if rec.Flag(f) {
		return 1
	}
	return 0
}

// enum returns the stored value or the schema's enumerated default.
func enum(rec form.Record, f form.Field) string {
	if text := strings.TrimSpace(rec.Text(f)); text != "" {
		return text
	}
	spec, _ := form.SpecOf(f)
	return spec.EnumDefault
}

// optText returns nil for blank optional fields so they drop out of the
// vector entirely.
func optText(rec form.Record, f form.Field) *string {
	text := strings.TrimSpace(rec.Text(f))
	if text == "" {
		return nil
	}
	return &text
}

// identifier extracts the numeric run from a free-form identifier. No
// digits means the field is absent.
func identifier(rec form.Record, f form.Field) *float64 {
	text := strings.TrimSpace(rec.Text(f))
	if text == "" {
		return nil
	}
	run := digitRunRE.FindString(text)
	if run == "" {
		return nil
	}
	fl, err := strconv.ParseFloat(strings.Trim(run, "."), 64)
	if err != nil {
		return nil
	}
	return &fl
}

// startMonth normalizes the stored month name against the calendar, falling
// back to the current month.
func startMonth(rec form.Record, now time.Time) string {
	text := strings.TrimSpace(rec.Text(form.FieldPolicyStartMonth))
	if text == "" {
		return now.Month().String()
	}
	for _, m := range form.MonthNames {
		if strings.EqualFold(m, text) {
			return m
		}
	}
	return text
}
