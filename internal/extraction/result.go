// Package extraction turns raw OCR text into a structured extraction result:
// per-field values, statuses, and confidences over the canonical field set.
// The OCR engine itself (image -> text) is an external collaborator reached
// through the Engine interface.
package extraction

import (
	"olea/internal/form"
)

// Status tags how a field fared during extraction.
type Status string

const (
	// StatusExtracted means the field was found and its value cast cleanly.
	StatusExtracted Status = "extracted"
	// StatusEmpty means the field was on the document but left blank.
	StatusEmpty Status = "empty"
	// StatusFailed means the field was found but its value would not cast;
	// the raw text is kept so the user can fix it.
	StatusFailed Status = "failed"
	// StatusMissing means the field was not on the document at all.
	StatusMissing Status = "missing"
)

// Stats summarizes extraction quality across the canonical field set.
type Stats struct {
	TotalLines    int `json:"total_lines"`
	MatchedFields int `json:"matched_fields"`
	EmptyFields   int `json:"empty_fields"`
	MissingFields int `json:"missing_fields"`
	FailedFields  int `json:"failed_fields"`
	TotalFiles    int `json:"total_files,omitempty"`
}

// Result is the immutable outcome of one extraction: produced once per scan
// and consumed exactly once by the reconciler.
type Result struct {
	Filename       string             `json:"filename"`
	ExtractedText  string             `json:"extracted_text"`
	Engine         string             `json:"ocr_engine"`
	Fields         map[string]any     `json:"fields"`
	Confidences    map[string]float64 `json:"field_confidences"`
	Statuses       map[string]Status  `json:"field_statuses"`
	Confidence     float64            `json:"confidence"`
	Stats          Stats              `json:"stats"`
	UnmatchedLines []string           `json:"unmatched_lines"`
}

// EmptyResult returns a result with every canonical field missing, used when
// no text could be read from a document.
func EmptyResult(filename, reason string) Result {
	fields := make(map[string]any, form.Count())
	confidences := make(map[string]float64, form.Count())
	statuses := make(map[string]Status, form.Count())
	for _, f := range form.Fields() {
		fields[string(f)] = nil
		confidences[string(f)] = 0
		statuses[string(f)] = StatusMissing
	}
	if reason == "" {
		reason = "No text extracted"
	}
	return Result{
		Filename:       filename,
		ExtractedText:  reason,
		Engine:         "none",
		Fields:         fields,
		Confidences:    confidences,
		Statuses:       statuses,
		Stats:          Stats{MissingFields: form.Count()},
		UnmatchedLines: []string{},
	}
}
