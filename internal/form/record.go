package form

import (
	"encoding/json"
	"strconv"
	"strings"

	dErrors "olea/pkg/domain-errors"
)

// Value is the tagged union a record stores per field: text for KindText and
// KindDigits fields, a real boolean for KindBool fields.
type Value struct {
	Kind Kind
	Text string
	Bool bool
}

// TextValue builds a text-kind value.
func TextValue(s string) Value { return Value{Kind: KindText, Text: s} }

// DigitsValue builds a digits-kind value.
func DigitsValue(s string) Value { return Value{Kind: KindDigits, Text: s} }

// BoolValue builds a boolean-kind value.
func BoolValue(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// IsZero reports whether the value is at its field default.
func (v Value) IsZero() bool {
	if v.Kind == KindBool {
		return !v.Bool
	}
	return v.Text == ""
}

// Record is the canonical editable application record. The key set is fixed:
// New always yields all 27 fields at their defaults and Set rejects unknown
// fields, so a Record can never grow or shrink.
type Record map[Field]Value

// New returns the all-default record: empty text for text and digits fields,
// false for boolean fields.
func New() Record {
	r := make(Record, len(Specs))
	for i := range Specs {
		spec := &Specs[i]
		switch spec.Kind {
		case KindBool:
			r[spec.Name] = Value{Kind: KindBool}
		case KindDigits:
			r[spec.Name] = Value{Kind: KindDigits}
		default:
			r[spec.Name] = Value{Kind: KindText}
		}
	}
	return r
}

// Clone returns an independent copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for f, v := range r {
		out[f] = v
	}
	return out
}

// Set is the per-field update contract: it rejects unknown fields and values
// whose kind does not match the schema.
func (r Record) Set(f Field, v Value) error {
	spec, ok := specByName[f]
	if !ok {
		return dErrors.Newf(dErrors.CodeValidation, "unknown field %q", f)
	}
	if v.Kind != spec.Kind {
		return dErrors.Newf(dErrors.CodeValidation, "field %q expects kind %d", f, spec.Kind)
	}
	r[f] = v
	return nil
}

// SetText sets a text or digits field from user input.
func (r Record) SetText(f Field, s string) error {
	spec, ok := specByName[f]
	if !ok {
		return dErrors.Newf(dErrors.CodeValidation, "unknown field %q", f)
	}
	if spec.Kind == KindBool {
		return dErrors.Newf(dErrors.CodeValidation, "field %q is boolean", f)
	}
	r[f] = Value{Kind: spec.Kind, Text: s}
	return nil
}

// SetBool sets a boolean field from user input.
func (r Record) SetBool(f Field, b bool) error {
	spec, ok := specByName[f]
	if !ok {
		return dErrors.Newf(dErrors.CodeValidation, "unknown field %q", f)
	}
	if spec.Kind != KindBool {
		return dErrors.Newf(dErrors.CodeValidation, "field %q is not boolean", f)
	}
	r[f] = Value{Kind: KindBool, Bool: b}
	return nil
}

// Text returns the textual value of a field ("" for boolean fields).
func (r Record) Text(f Field) string { return r[f].Text }

// Flag returns the boolean value of a field (false for non-boolean fields).
func (r Record) Flag(f Field) bool { return r[f].Bool }

// FromRaw builds a record from a loosely-typed field map (API input or
// extraction output). Unknown keys are ignored so over-reporting producers
// stay forward compatible; known keys are coerced per the schema.
func FromRaw(raw map[string]any) Record {
	r := New()
	for name, value := range raw {
		f, ok := Lookup(name)
		if !ok || value == nil {
			continue
		}
		r[f] = Coerce(f, value)
	}
	return r
}

// Coerce converts a shallow scalar into the record value for a field:
// truthiness for boolean fields, text rendering for everything else (digits
// stay digits-as-text; numeric typing happens in the feature builder).
func Coerce(f Field, value any) Value {
	spec := specByName[f]
	if spec.Kind == KindBool {
		return Value{Kind: KindBool, Bool: Truthy(value)}
	}
	return Value{Kind: spec.Kind, Text: Render(value)}
}

// Truthy interprets a shallow scalar as a boolean. Explicit negative tokens
// ("no", "false", "0") are false; other non-empty strings are true.
func Truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "", "0", "false", "no", "n":
			return false
		}
		return true
	default:
		return false
	}
}

// Render converts a shallow scalar to its text representation. Whole floats
// render without a fractional part so JSON-decoded integers keep their
// digits-as-text shape.
func Render(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// MarshalJSON renders the record as a flat field -> raw value object, the
// shape the original form API exposes.
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[Field]any, len(r))
	for f, v := range r {
		if v.Kind == KindBool {
			out[f] = v.Bool
		} else {
			out[f] = v.Text
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts the flat object shape and coerces it per the schema.
func (r *Record) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*r = FromRaw(raw)
	return nil
}
