// Package form defines the canonical insurance application record: the fixed
// set of fields the whole pipeline operates over, their semantic kinds, and
// the coercion rules the feature builder applies when converting an editable
// record into the scoring contract.
package form

import "strings"

// Field is a canonical field name. The set of fields is fixed at compile
// time; no field may be added or removed at runtime.
type Field string

const (
	// Demographics & financials
	FieldAdultDependents       Field = "Adult_Dependents"
	FieldChildDependents       Field = "Child_Dependents"
	FieldInfantDependents      Field = "Infant_Dependents"
	FieldEstimatedAnnualIncome Field = "Estimated_Annual_Income"
	FieldEmploymentStatus      Field = "Employment_Status"
	FieldRegionCode            Field = "Region_Code"

	// Customer history & risk profile
	FieldExistingPolicyholder         Field = "Existing_Policyholder"
	FieldPreviousClaimsFiled          Field = "Previous_Claims_Filed"
	FieldYearsWithoutClaims           Field = "Years_Without_Claims"
	FieldPreviousPolicyDurationMonths Field = "Previous_Policy_Duration_Months"
	FieldPolicyCancelledPostPurchase  Field = "Policy_Cancelled_Post_Purchase"

	// Policy details & preferences
	FieldDeductibleTier        Field = "Deductible_Tier"
	FieldPaymentSchedule       Field = "Payment_Schedule"
	FieldVehiclesOnPolicy      Field = "Vehicles_on_Policy"
	FieldCustomRidersRequested Field = "Custom_Riders_Requested"
	FieldGracePeriodExtensions Field = "Grace_Period_Extensions"

	// Sales & underwriting
	FieldDaysSinceQuote             Field = "Days_Since_Quote"
	FieldUnderwritingProcessingDays Field = "Underwriting_Processing_Days"
	FieldPolicyAmendmentsCount      Field = "Policy_Amendments_Count"
	FieldAcquisitionChannel         Field = "Acquisition_Channel"
	FieldBrokerAgencyType           Field = "Broker_Agency_Type"
	FieldBrokerID                   Field = "Broker_ID"
	FieldEmployerID                 Field = "Employer_ID"

	// Timeline
	FieldPolicyStartYear  Field = "Policy_Start_Year"
	FieldPolicyStartMonth Field = "Policy_Start_Month"
	FieldPolicyStartWeek  Field = "Policy_Start_Week"
	FieldPolicyStartDay   Field = "Policy_Start_Day"
)

// Kind is the semantic type a field's value has inside the editable record.
type Kind int

const (
	// KindText holds free-form or categorical text.
	KindText Kind = iota
	// KindDigits holds numeric text entered as a string, validated lazily.
	KindDigits
	// KindBool holds a real boolean.
	KindBool
)

// Coercion names the rule the feature builder applies to a field when
// producing the strict scoring contract.
type Coercion int

const (
	// CoerceCount parses a base-10 integer, falling back to 0.
	CoerceCount Coercion = iota
	// CoerceDecimal parses a float, falling back to 0.
	CoerceDecimal
	// CoerceFlag converts a boolean to exactly 1 or 0.
	CoerceFlag
	// CoerceOptionalText passes non-empty text through and is otherwise
	// absent from the output.
	CoerceOptionalText
	// CoerceIdentifier extracts the first digit run from an identifier
	// string ("BRK-4421" -> 4421) and is otherwise absent.
	CoerceIdentifier
	// CoerceEnum passes non-empty text through and substitutes the spec's
	// named default when empty; the output field is always present.
	CoerceEnum
	// CoerceStartYear, CoerceStartMonth, CoerceStartWeek, and CoerceStartDay
	// fall back to the corresponding component of the current date, since 0
	// is not a valid calendar value.
	CoerceStartYear
	CoerceStartMonth
	CoerceStartWeek
	CoerceStartDay
)

// Spec describes one canonical field: how the record stores it, how the
// feature builder coerces it, what a paper form might call it, and which
// categorical values it accepts.
type Spec struct {
	Name        Field
	Kind        Kind
	Coercion    Coercion
	EnumDefault string
	Aliases     []string
	ValidValues []string
	Description string
}

// MonthNames are the accepted Policy_Start_Month values, January first.
var MonthNames = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// Specs lists every canonical field in order. Aliases cover what a human
// might write on a paper form; the extraction parser matches against them.
var Specs = []Spec{
	{
		Name: FieldAdultDependents, Kind: KindDigits, Coercion: CoerceCount,
		Aliases: []string{
			"adult dependents", "adults", "adult deps", "nombre adultes",
			"nb adults", "number of adults", "adult members", "adults covered",
		},
		Description: "Number of adults covered under the plan",
	},
	{
		Name: FieldChildDependents, Kind: KindDigits, Coercion: CoerceCount,
		Aliases: []string{
			"child dependents", "children", "child deps", "nombre enfants",
			"nb children", "number of children", "kids", "minors",
		},
		Description: "Number of children covered",
	},
	{
		Name: FieldInfantDependents, Kind: KindDigits, Coercion: CoerceCount,
		Aliases: []string{
			"infant dependents", "infants", "infant deps", "nombre nourrissons",
			"nb infants", "number of infants", "babies", "newborns",
		},
		Description: "Number of infants covered",
	},
	{
		Name: FieldEstimatedAnnualIncome, Kind: KindDigits, Coercion: CoerceDecimal,
		Aliases: []string{
			"estimated annual income", "annual income", "yearly income", "income",
			"revenu annuel", "salary", "household income", "revenue", "earnings",
		},
		Description: "Estimated yearly household income",
	},
	{
		Name: FieldEmploymentStatus, Kind: KindText, Coercion: CoerceEnum,
		EnumDefault: "Employed",
		Aliases: []string{
			"employment status", "employment", "job status", "statut emploi",
			"work status", "profession", "occupation", "emploi",
		},
		ValidValues: []string{
			"Employed", "Self-Employed", "Unemployed", "Retired",
			"Student", "Part-Time", "Freelancer",
		},
		Description: "Professional working arrangement",
	},
	{
		Name: FieldRegionCode, Kind: KindText, Coercion: CoerceOptionalText,
		Aliases: []string{
			"region code", "region", "zone", "code region", "area",
			"location", "geographic zone",
		},
		Description: "Anonymized geographic location",
	},
	{
		Name: FieldExistingPolicyholder, Kind: KindBool, Coercion: CoerceFlag,
		Aliases: []string{
			"existing policyholder", "existing policy", "current client",
			"already insured", "has policy", "active policy", "client existant",
		},
		Description: "Already has another active policy with the company",
	},
	{
		Name: FieldPreviousClaimsFiled, Kind: KindDigits, Coercion: CoerceCount,
		Aliases: []string{
			"previous claims filed", "claims filed", "prior claims", "nb claims",
			"number of claims", "sinistres", "claims history", "total claims",
		},
		Description: "Total prior insurance claims filed",
	},
	{
		Name: FieldYearsWithoutClaims, Kind: KindDigits, Coercion: CoerceCount,
		Aliases: []string{
			"years without claims", "claim free years", "no claims years",
			"clean years", "claims free", "annees sans sinistre", "years no claims",
		},
		Description: "Consecutive claim-free years",
	},
	{
		Name: FieldPreviousPolicyDurationMonths, Kind: KindDigits, Coercion: CoerceCount,
		Aliases: []string{
			"previous policy duration months", "policy duration months",
			"prior policy months", "previous policy duration", "policy duration",
			"duree police precedente", "months insured",
		},
		Description: "Months the user held their prior policy",
	},
	{
		Name: FieldPolicyCancelledPostPurchase, Kind: KindBool, Coercion: CoerceFlag,
		Aliases: []string{
			"policy cancelled post purchase", "cancelled post purchase",
			"cancelled after buying", "policy cancellation", "cancelled",
			"annulation police", "cancel history",
		},
		Description: "History of canceling shortly after buying",
	},
	{
		Name: FieldDeductibleTier, Kind: KindText, Coercion: CoerceOptionalText,
		Aliases: []string{
			"deductible tier", "deductible", "deductible level", "franchise",
			"tier", "out of pocket",
		},
		ValidValues: []string{"Low", "Medium", "High"},
		Description: "Out-of-pocket deductible level chosen",
	},
	{
		Name: FieldPaymentSchedule, Kind: KindText, Coercion: CoerceEnum,
		EnumDefault: "Monthly",
		Aliases: []string{
			"payment schedule", "payment frequency", "billing cycle", "schedule",
			"pay frequency", "echeancier", "payment plan",
		},
		ValidValues: []string{"Monthly", "Quarterly", "Semi-Annual", "Annual"},
		Description: "Premium payment frequency",
	},
	{
		Name: FieldVehiclesOnPolicy, Kind: KindDigits, Coercion: CoerceCount,
		Aliases: []string{
			"vehicles on policy", "vehicles", "nb vehicles", "number of vehicles",
			"cars", "vehicules", "autos",
		},
		Description: "Number of vehicles in coverage portfolio",
	},
	{
		Name: FieldCustomRidersRequested, Kind: KindDigits, Coercion: CoerceCount,
		Aliases: []string{
			"custom riders requested", "riders", "add-ons", "special coverage",
			"extras", "options supplementaires", "riders requested",
		},
		Description: "Special coverage add-ons requested",
	},
	{
		Name: FieldGracePeriodExtensions, Kind: KindDigits, Coercion: CoerceCount,
		Aliases: []string{
			"grace period extensions", "grace extensions", "payment extensions",
			"deadline extensions", "extensions de delai",
		},
		Description: "Times the user extended payment deadline",
	},
	{
		Name: FieldDaysSinceQuote, Kind: KindDigits, Coercion: CoerceCount,
		Aliases: []string{
			"days since quote", "quote age", "days from quote",
			"jours depuis devis", "days since initial quote", "quote days",
		},
		Description: "Days between quote request and finalizing",
	},
	{
		Name: FieldUnderwritingProcessingDays, Kind: KindDigits, Coercion: CoerceCount,
		Aliases: []string{
			"underwriting processing days", "underwriting days", "processing days",
			"jours traitement", "uw days", "approval days",
		},
		Description: "Days for underwriting to approve risk",
	},
	{
		Name: FieldPolicyAmendmentsCount, Kind: KindDigits, Coercion: CoerceCount,
		Aliases: []string{
			"policy amendments count", "amendments", "modifications",
			"nb amendments", "quote modifications", "changes count",
		},
		Description: "Times user modified quote before signing",
	},
	{
		Name: FieldAcquisitionChannel, Kind: KindText, Coercion: CoerceOptionalText,
		Aliases: []string{
			"acquisition channel", "channel", "sales channel", "canal acquisition",
			"how acquired", "source", "referral channel",
		},
		ValidValues: []string{"Online", "Agent", "Phone", "Broker", "Direct", "Referral"},
		Description: "Platform/method through which policy was sold",
	},
	{
		Name: FieldBrokerAgencyType, Kind: KindText, Coercion: CoerceOptionalText,
		Aliases: []string{
			"broker agency type", "agency type", "broker type", "type agence",
			"brokerage type", "agency size", "firm type",
		},
		ValidValues: []string{"Small", "Medium", "Large", "Corporate", "Independent"},
		Description: "Scale of the brokerage firm",
	},
	{
		Name: FieldBrokerID, Kind: KindText, Coercion: CoerceIdentifier,
		Aliases: []string{
			"broker id", "broker", "agent id", "id courtier", "sales agent", "agent",
		},
		Description: "Unique identifier for the sales agent",
	},
	{
		Name: FieldEmployerID, Kind: KindText, Coercion: CoerceIdentifier,
		Aliases: []string{
			"employer id", "employer", "company id", "id employeur",
			"workplace", "employer code",
		},
		Description: "Unique identifier for user's employer",
	},
	{
		Name: FieldPolicyStartYear, Kind: KindDigits, Coercion: CoerceStartYear,
		Aliases: []string{
			"policy start year", "start year", "year", "annee debut",
		},
		Description: "Year coverage officially begins",
	},
	{
		Name: FieldPolicyStartMonth, Kind: KindText, Coercion: CoerceStartMonth,
		Aliases: []string{
			"policy start month", "start month", "month", "mois debut",
		},
		ValidValues: MonthNames,
		Description: "Month coverage begins",
	},
	{
		Name: FieldPolicyStartWeek, Kind: KindDigits, Coercion: CoerceStartWeek,
		Aliases: []string{
			"policy start week", "start week", "week", "semaine debut", "week number",
		},
		Description: "Week of year coverage begins",
	},
	{
		Name: FieldPolicyStartDay, Kind: KindDigits, Coercion: CoerceStartDay,
		Aliases: []string{
			"policy start day", "start day", "day", "jour debut", "day of month",
		},
		Description: "Day of month coverage begins",
	},
}

var (
	specByName = make(map[Field]*Spec, len(Specs))
	fieldOrder = make([]Field, 0, len(Specs))

	// aliasIndex maps every lowercased alias, canonical name, and
	// space-separated canonical name to its field.
	aliasIndex = make(map[string]Field)
)

func init() {
	for i := range Specs {
		spec := &Specs[i]
		specByName[spec.Name] = spec
		fieldOrder = append(fieldOrder, spec.Name)

		lower := lowerField(spec.Name)
		aliasIndex[lower] = spec.Name
		aliasIndex[spaceSeparated(lower)] = spec.Name
		for _, alias := range spec.Aliases {
			aliasIndex[alias] = spec.Name
		}
	}
}

// Fields returns every canonical field in schema order.
func Fields() []Field {
	out := make([]Field, len(fieldOrder))
	copy(out, fieldOrder)
	return out
}

// Count returns the size of the canonical field set.
func Count() int { return len(Specs) }

// SpecOf returns the schema entry for a canonical field.
func SpecOf(f Field) (Spec, bool) {
	spec, ok := specByName[f]
	if !ok {
		return Spec{}, false
	}
	return *spec, true
}

// Lookup resolves an arbitrary name (canonical or not) to a canonical field.
func Lookup(name string) (Field, bool) {
	f := Field(name)
	_, ok := specByName[f]
	return f, ok
}

// AliasIndex returns a copy of the alias -> field index for parsers.
func AliasIndex() map[string]Field {
	out := make(map[string]Field, len(aliasIndex))
	for k, v := range aliasIndex {
		out[k] = v
	}
	return out
}

func lowerField(f Field) string { return strings.ToLower(string(f)) }

func spaceSeparated(s string) string { return strings.ReplaceAll(s, "_", " ") }
