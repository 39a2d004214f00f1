package extraction

import (
	"fmt"
	"strings"

	"olea/internal/form"
)

// MergeResults combines per-document extraction results into one. For each
// field the value with the strictly higher confidence wins among extracted
// results; an empty status only upgrades a field that is still untouched.
func MergeResults(results []Result) Result {
	if len(results) == 0 {
		return EmptyResult("", "No documents provided")
	}
	if len(results) == 1 {
		merged := results[0]
		merged.Stats.TotalFiles = 1
		return merged
	}

	fields := make(map[string]any, form.Count())
	confidences := make(map[string]float64, form.Count())
	statuses := make(map[string]Status, form.Count())
	for _, f := range form.Fields() {
		fields[string(f)] = nil
		confidences[string(f)] = 0
		statuses[string(f)] = StatusMissing
	}

	var filenames []string
	var texts []string
	unmatched := []string{}
	totalLines := 0

	for _, res := range results {
		filenames = append(filenames, res.Filename)
		texts = append(texts, fmt.Sprintf("--- %s ---\n%s", res.Filename, res.ExtractedText))
		unmatched = append(unmatched, res.UnmatchedLines...)
		totalLines += res.Stats.TotalLines

		for _, f := range form.Fields() {
			name := string(f)
			status, ok := res.Statuses[name]
			if !ok {
				continue
			}
			conf := res.Confidences[name]

			switch status {
			case StatusExtracted:
				if conf > confidences[name] {
					fields[name] = res.Fields[name]
					confidences[name] = conf
					statuses[name] = StatusExtracted
				}
			case StatusEmpty:
				if statuses[name] == StatusMissing && confidences[name] == 0 {
					confidences[name] = conf
					statuses[name] = StatusEmpty
				}
			}
		}
	}

	stats := Stats{
		TotalLines: totalLines,
		TotalFiles: len(results),
	}
	confSum := 0.0
	for _, f := range form.Fields() {
		name := string(f)
		confSum += confidences[name]
		switch statuses[name] {
		case StatusExtracted:
			stats.MatchedFields++
		case StatusEmpty:
			stats.EmptyFields++
		case StatusMissing:
			stats.MissingFields++
		case StatusFailed:
			stats.FailedFields++
		}
	}

	engine := results[0].Engine
	return Result{
		Filename:       strings.Join(filenames, ", "),
		ExtractedText:  strings.Join(texts, "\n\n"),
		Engine:         engine,
		Fields:         fields,
		Confidences:    confidences,
		Statuses:       statuses,
		Confidence:     round3(confSum / float64(form.Count())),
		Stats:          stats,
		UnmatchedLines: unmatched,
	}
}
