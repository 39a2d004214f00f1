// Package reconcile folds an extraction result into a working client record.
// Only cleanly extracted values touch the record; empty, failed, and missing
// fields leave the existing value alone so nothing regresses on a rescan.
package reconcile

import (
	"olea/internal/extraction"
	"olea/internal/form"
)

// Provenance records which fields the last extraction filled and how
// confident it was, so a reviewer can see what came from the document
// versus what was typed in.
type Provenance struct {
	Filled       map[form.Field]bool               `json:"filled"`
	Statuses     map[form.Field]extraction.Status  `json:"statuses"`
	Confidences  map[form.Field]float64            `json:"confidences"`
	Confidence   float64                           `json:"confidence"`
	MatchedCount int                               `json:"matched_count"`
	TotalFields  int                               `json:"total_fields"`
}

// Merge applies res onto a copy of rec. A field is written only when its
// status is extracted and its value is present; every other status keeps
// the current value. Unknown result keys are ignored.
func Merge(res extraction.Result, rec form.Record) (form.Record, Provenance) {
	merged := rec.Clone()
	prov := Provenance{
		Filled:       make(map[form.Field]bool, form.Count()),
		Statuses:     make(map[form.Field]extraction.Status, form.Count()),
		Confidences:  make(map[form.Field]float64, form.Count()),
		Confidence:   res.Confidence,
		MatchedCount: res.Stats.MatchedFields,
		TotalFields:  form.Count(),
	}

	for _, f := range form.Fields() {
		name := string(f)

		status, ok := res.Statuses[name]
		if !ok {
			status = extraction.StatusMissing
		}
		prov.Statuses[f] = status
		prov.Confidences[f] = res.Confidences[name]
		prov.Filled[f] = false

		if status != extraction.StatusExtracted {
			continue
		}
		value, ok := res.Fields[name]
		if !ok || value == nil {
			continue
		}

		merged[f] = form.Coerce(f, value)
		prov.Filled[f] = true
	}

	return merged, prov
}
