package extraction

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"olea/internal/form"
)

// OCR noise patterns: dotted fill lines, underscores, dashes, table pipes,
// checkbox glyphs.
var noiseRE = regexp.MustCompile(`\.{3,}|_{3,}|-{3,}|\||□|■|☐|☑`)

var (
	intRE      = regexp.MustCompile(`[-+]?\d+`)
	numericRE  = regexp.MustCompile(`[^0-9.\-+]`)
	keyNoiseRE = regexp.MustCompile(`[^a-z0-9_\s]`)
	spacesRE   = regexp.MustCompile(`\s+`)
)

// nullTokens are value spellings that mean "not filled in".
var nullTokens = map[string]struct{}{
	"n/a": {}, "na": {}, "none": {}, "-": {}, "null": {}, "....": {}, "......": {},
}

// sortedAliases holds every known alias longest-first so boundary detection
// prefers "estimated annual income" over its substring alias "income".
var sortedAliases = func() []string {
	index := form.AliasIndex()
	aliases := make([]string, 0, len(index))
	for alias := range index {
		aliases = append(aliases, alias)
	}
	sort.Slice(aliases, func(i, j int) bool {
		if len(aliases[i]) != len(aliases[j]) {
			return len(aliases[i]) > len(aliases[j])
		}
		return aliases[i] < aliases[j]
	})
	return aliases
}()

var aliasToField = form.AliasIndex()

// FieldResult is the outcome of extracting a single field.
type FieldResult struct {
	Field      form.Field
	RawKey     string
	RawValue   string
	Parsed     any
	Confidence float64
	Status     Status
}

// ParseResult is the complete parsing result for a document.
type ParseResult struct {
	Fields         map[form.Field]FieldResult
	UnmatchedLines []string
	TotalLines     int
	MatchedCount   int
	EmptyCount     int
}

// Parse maps raw OCR text onto the canonical field set. Expects lines in the
// paper form shape:
//
//	Field Name: value
//	Field Name: ......   (blank / unfilled)
//
// Lines carrying several key:value pairs are re-split first. Per-line OCR
// confidences feed the per-field confidence scores; missing entries default
// conservatively.
func Parse(rawText string, lineConfidences []float64) ParseResult {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(rawText), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	if lineConfidences == nil {
		lineConfidences = make([]float64, len(lines))
		for i := range lineConfidences {
			lineConfidences[i] = 0.8
		}
	}
	for len(lineConfidences) < len(lines) {
		lineConfidences = append(lineConfidences, 0.5)
	}

	lines, lineConfidences = resplitLines(lines, lineConfidences)

	fields := make(map[form.Field]FieldResult, form.Count())
	for _, f := range form.Fields() {
		fields[f] = FieldResult{Field: f, Status: StatusMissing}
	}

	result := ParseResult{
		TotalLines:     len(lines),
		UnmatchedLines: []string{},
	}

	for i, line := range lines {
		lineConf := 0.5
		if i < len(lineConfidences) {
			lineConf = lineConfidences[i]
		}

		key, value, ok := splitKeyValue(line)
		if !ok {
			result.UnmatchedLines = append(result.UnmatchedLines, line)
			continue
		}

		field, ok := matchFieldName(key)
		if !ok {
			result.UnmatchedLines = append(result.UnmatchedLines, line)
			continue
		}

		cleaned := cleanValue(value)
		spec, _ := form.SpecOf(field)

		if cleaned == "" {
			// Field exists on the document but the value is blank/dots.
			fields[field] = FieldResult{
				Field:      field,
				RawKey:     key,
				RawValue:   value,
				Confidence: lineConf * 0.9,
				Status:     StatusEmpty,
			}
			result.EmptyCount++
			continue
		}

		parsed, castOK := castValue(spec, cleaned)
		fr := FieldResult{
			Field:    field,
			RawKey:   key,
			RawValue: value,
			Parsed:   parsed,
		}
		if castOK {
			fr.Confidence = lineConf * 0.95
			fr.Status = StatusExtracted
			result.MatchedCount++
		} else {
			// Keep the cleaned raw value so the user can fix it.
			fr.Parsed = cleaned
			fr.Confidence = lineConf * 0.5
			fr.Status = StatusFailed
		}
		fields[field] = fr
	}

	result.Fields = fields
	return result
}

// resplitLines re-splits lines that contain multiple key:value pairs. OCR
// often concatenates several fields onto one physical line.
func resplitLines(lines []string, confidences []float64) ([]string, []float64) {
	var newLines []string
	var newConfs []float64

	for i, line := range lines {
		conf := 0.5
		if i < len(confidences) {
			conf = confidences[i]
		}
		for _, sub := range findFieldBoundaries(line) {
			newLines = append(newLines, sub)
			newConfs = append(newConfs, conf)
		}
	}
	return newLines, newConfs
}

type aliasMatch struct {
	pos int
	len int
}

// findFieldBoundaries detects multiple field:value pairs within one line and
// splits them, using the alias table to identify where new field names start.
// Overlapping aliases ("income" inside "estimated annual income") are handled
// by keeping the longest match at each position.
func findFieldBoundaries(line string) []string {
	lineLower := strings.ToLower(line)

	var raw []aliasMatch
	for _, alias := range sortedAliases {
		aliasLen := len(alias)
		start := 0
		for start <= len(lineLower)-aliasLen {
			pos := strings.Index(lineLower[start:], alias)
			if pos == -1 {
				break
			}
			pos += start

			// Must be at a word boundary (start of line or preceded by whitespace).
			if pos > 0 && lineLower[pos-1] != ' ' && lineLower[pos-1] != '\t' {
				start = pos + 1
				continue
			}

			// Must be followed (after optional spaces) by a colon.
			after := strings.TrimLeft(line[pos+aliasLen:], " \t")
			if strings.HasPrefix(after, ":") {
				raw = append(raw, aliasMatch{pos: pos, len: aliasLen})
			}

			start = pos + 1
		}
	}

	if len(raw) == 0 {
		return []string{line}
	}

	sort.Slice(raw, func(i, j int) bool {
		if raw[i].pos != raw[j].pos {
			return raw[i].pos < raw[j].pos
		}
		return raw[i].len > raw[j].len
	})

	// Drop matches whose start falls inside an earlier match's alias span,
	// and duplicates at the same position (the longer one sorted first).
	var kept []aliasMatch
	for _, m := range raw {
		subsumed := false
		for _, k := range kept {
			if m.pos > k.pos && m.pos < k.pos+k.len {
				subsumed = true
				break
			}
		}
		if subsumed {
			continue
		}
		if len(kept) > 0 && kept[len(kept)-1].pos == m.pos {
			continue
		}
		kept = append(kept, m)
	}

	if len(kept) <= 1 {
		return []string{line}
	}

	var segments []string
	if kept[0].pos > 0 {
		if prefix := strings.TrimSpace(line[:kept[0].pos]); prefix != "" {
			segments = append(segments, prefix)
		}
	}
	for i, m := range kept {
		end := len(line)
		if i+1 < len(kept) {
			end = kept[i+1].pos
		}
		if segment := strings.TrimSpace(line[m.pos:end]); segment != "" {
			segments = append(segments, segment)
		}
	}

	if len(segments) == 0 {
		return []string{line}
	}
	return segments
}

// splitKeyValue splits a line into key and value on the first colon, with
// an equals sign fallback for forms that use "Field = value".
func splitKeyValue(line string) (string, string, bool) {
	stripped := strings.TrimSpace(line)
	if len(stripped) < 3 {
		return "", "", false
	}

	var key, value string
	if idx := strings.Index(stripped, ":"); idx >= 0 {
		key, value = stripped[:idx], stripped[idx+1:]
	} else if idx := strings.Index(stripped, "="); idx >= 0 {
		key, value = stripped[:idx], stripped[idx+1:]
	} else {
		return "", "", false
	}

	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)

	// Key should be at least 2 chars and not just numbers.
	if len(key) < 2 || isAllDigits(key) {
		return "", "", false
	}
	return key, value, true
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// matchFieldName resolves a raw OCR field name to a canonical field: exact
// alias match first, then the underscored variant, then substring
// containment, then word overlap against short canonical names.
func matchFieldName(rawKey string) (form.Field, bool) {
	normalized := strings.ToLower(strings.TrimSpace(rawKey))
	normalized = strings.TrimSpace(keyNoiseRE.ReplaceAllString(normalized, ""))
	normalized = spacesRE.ReplaceAllString(normalized, " ")

	if f, ok := aliasToField[normalized]; ok {
		return f, true
	}
	if f, ok := aliasToField[strings.ReplaceAll(normalized, " ", "_")]; ok {
		return f, true
	}

	for alias, f := range aliasToField {
		if len(alias) >= 4 && strings.Contains(normalized, alias) {
			return f, true
		}
	}

	keyWords := wordSet(normalized)
	var best form.Field
	bestOverlap := 0
	for _, f := range form.Fields() {
		canonWords := wordSet(strings.ReplaceAll(strings.ToLower(string(f)), "_", " "))
		if len(canonWords) > 3 {
			continue
		}
		overlap := 0
		for w := range canonWords {
			if _, ok := keyWords[w]; ok {
				overlap++
			}
		}
		if overlap > bestOverlap {
			bestOverlap = overlap
			best = f
		}
	}
	if bestOverlap >= 1 {
		return best, true
	}

	return "", false
}

func wordSet(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		out[w] = struct{}{}
	}
	return out
}

// cleanValue strips OCR noise patterns and stray punctuation from a value.
func cleanValue(raw string) string {
	cleaned := noiseRE.ReplaceAllString(raw, "")
	cleaned = strings.TrimSpace(cleaned)
	return strings.Trim(cleaned, ".,;:|-_ ")
}

// castValue casts a cleaned value to the type the schema expects for the
// field. Returns (value, ok); ok=false marks the field as failed.
func castValue(spec form.Spec, cleaned string) (any, bool) {
	if _, isNull := nullTokens[strings.ToLower(cleaned)]; isNull || cleaned == "" {
		return nil, false
	}

	switch {
	case spec.Kind == form.KindBool:
		return castBool(cleaned)
	case spec.Kind == form.KindDigits && spec.Coercion == form.CoerceDecimal:
		return castFloat(cleaned)
	case spec.Kind == form.KindDigits:
		return castInt(cleaned)
	default:
		return castText(spec, cleaned), true
	}
}

func castInt(cleaned string) (any, bool) {
	match := intRE.FindString(strings.ReplaceAll(cleaned, ",", ""))
	if match == "" {
		return nil, false
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return nil, false
	}
	return n, true
}

func castFloat(cleaned string) (any, bool) {
	stripped := numericRE.ReplaceAllString(strings.ReplaceAll(cleaned, ",", ""), "")
	if stripped == "" {
		return nil, false
	}
	f, err := strconv.ParseFloat(stripped, 64)
	if err != nil {
		return nil, false
	}
	return f, true
}

func castBool(cleaned string) (any, bool) {
	switch strings.ToLower(cleaned) {
	case "yes", "true", "1", "y", "oui", "x", "✓", "✔":
		return true, true
	case "no", "false", "0", "n", "non":
		return false, true
	}
	return nil, false
}

// BuildResult assembles a full extraction result from the parsed fields.
// Overall confidence weighs the engine's own confidence at 40% and the
// field match ratio at 60%.
func BuildResult(filename, engine, text string, engineConf float64, pr ParseResult) Result {
	fields := make(map[string]any, form.Count())
	confidences := make(map[string]float64, form.Count())
	statuses := make(map[string]Status, form.Count())

	stats := Stats{
		TotalLines:    pr.TotalLines,
		MatchedFields: pr.MatchedCount,
		EmptyFields:   pr.EmptyCount,
	}
	for _, f := range form.Fields() {
		fr := pr.Fields[f]
		fields[string(f)] = fr.Parsed
		confidences[string(f)] = round3(fr.Confidence)
		statuses[string(f)] = fr.Status
		switch fr.Status {
		case StatusMissing:
			stats.MissingFields++
		case StatusFailed:
			stats.FailedFields++
		}
	}

	matchRatio := float64(pr.MatchedCount) / float64(form.Count())
	overall := 0.4*engineConf + 0.6*matchRatio

	return Result{
		Filename:       filename,
		ExtractedText:  text,
		Engine:         engine,
		Fields:         fields,
		Confidences:    confidences,
		Statuses:       statuses,
		Confidence:     round3(overall),
		Stats:          stats,
		UnmatchedLines: pr.UnmatchedLines,
	}
}

func round3(f float64) float64 {
	return float64(int(f*1000+0.5)) / 1000
}

// castText normalizes categorical values against the field's accepted list
// (exact match, then substring either way) and otherwise keeps the raw text
// so the user can fix it.
func castText(spec form.Spec, cleaned string) string {
	if len(spec.ValidValues) == 0 {
		return cleaned
	}
	lower := strings.ToLower(cleaned)
	for _, v := range spec.ValidValues {
		if lower == strings.ToLower(v) {
			return v
		}
	}
	for _, v := range spec.ValidValues {
		vLower := strings.ToLower(v)
		if strings.Contains(vLower, lower) || strings.Contains(lower, vLower) {
			return v
		}
	}
	return cleaned
}
