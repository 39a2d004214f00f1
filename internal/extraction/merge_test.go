package extraction

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"olea/internal/form"
)

type MergeSuite struct {
	suite.Suite
}

func TestMergeSuite(t *testing.T) {
	suite.Run(t, new(MergeSuite))
}

// result builds an all-missing result and applies the given field overrides.
func (s *MergeSuite) result(filename string, overrides map[form.Field]FieldResult) Result {
	res := EmptyResult(filename, "text of "+filename)
	res.Engine = "ocr_engine"
	for f, fr := range overrides {
		name := string(f)
		res.Fields[name] = fr.Parsed
		res.Confidences[name] = fr.Confidence
		res.Statuses[name] = fr.Status
	}
	return res
}

func (s *MergeSuite) TestMergeResults() {
	s.Run("higher confidence wins for extracted fields", func() {
		a := s.result("a.jpg", map[form.Field]FieldResult{
			form.FieldAdultDependents: {Parsed: 2, Confidence: 0.7, Status: StatusExtracted},
		})
		b := s.result("b.jpg", map[form.Field]FieldResult{
			form.FieldAdultDependents: {Parsed: 3, Confidence: 0.9, Status: StatusExtracted},
		})

		merged := MergeResults([]Result{a, b})
		s.Equal(3, merged.Fields[string(form.FieldAdultDependents)])
		s.Equal(StatusExtracted, merged.Statuses[string(form.FieldAdultDependents)])
	})

	s.Run("tie keeps the earlier document's value", func() {
		a := s.result("a.jpg", map[form.Field]FieldResult{
			form.FieldAdultDependents: {Parsed: 2, Confidence: 0.8, Status: StatusExtracted},
		})
		b := s.result("b.jpg", map[form.Field]FieldResult{
			form.FieldAdultDependents: {Parsed: 5, Confidence: 0.8, Status: StatusExtracted},
		})

		merged := MergeResults([]Result{a, b})
		s.Equal(2, merged.Fields[string(form.FieldAdultDependents)])
	})

	s.Run("empty only upgrades an untouched field", func() {
		a := s.result("a.jpg", map[form.Field]FieldResult{
			form.FieldRegionCode: {Confidence: 0.6, Status: StatusEmpty},
		})
		b := s.result("b.jpg", map[form.Field]FieldResult{
			form.FieldEmploymentStatus: {Parsed: "Employed", Confidence: 0.9, Status: StatusExtracted},
			form.FieldEmployerID:       {Confidence: 0.7, Status: StatusEmpty},
		})

		merged := MergeResults([]Result{a, b})
		s.Equal(StatusEmpty, merged.Statuses[string(form.FieldRegionCode)])
		s.Equal(StatusEmpty, merged.Statuses[string(form.FieldEmployerID)])
		s.Equal(StatusExtracted, merged.Statuses[string(form.FieldEmploymentStatus)])
	})

	s.Run("empty never downgrades an extracted field", func() {
		a := s.result("a.jpg", map[form.Field]FieldResult{
			form.FieldEmploymentStatus: {Parsed: "Retired", Confidence: 0.9, Status: StatusExtracted},
		})
		b := s.result("b.jpg", map[form.Field]FieldResult{
			form.FieldEmploymentStatus: {Confidence: 0.95, Status: StatusEmpty},
		})

		merged := MergeResults([]Result{a, b})
		s.Equal("Retired", merged.Fields[string(form.FieldEmploymentStatus)])
		s.Equal(StatusExtracted, merged.Statuses[string(form.FieldEmploymentStatus)])
	})

	s.Run("joins filenames and tags per-document text", func() {
		a := s.result("a.jpg", nil)
		b := s.result("b.jpg", nil)

		merged := MergeResults([]Result{a, b})
		s.Equal("a.jpg, b.jpg", merged.Filename)
		s.Contains(merged.ExtractedText, "--- a.jpg ---")
		s.Contains(merged.ExtractedText, "--- b.jpg ---")
		s.Equal(2, merged.Stats.TotalFiles)
	})

	s.Run("recomputes stats over merged fields", func() {
		a := s.result("a.jpg", map[form.Field]FieldResult{
			form.FieldAdultDependents: {Parsed: 2, Confidence: 0.8, Status: StatusExtracted},
		})
		b := s.result("b.jpg", map[form.Field]FieldResult{
			form.FieldChildDependents: {Parsed: 1, Confidence: 0.8, Status: StatusExtracted},
			form.FieldRegionCode:      {Confidence: 0.5, Status: StatusEmpty},
		})

		merged := MergeResults([]Result{a, b})
		s.Equal(2, merged.Stats.MatchedFields)
		s.Equal(1, merged.Stats.EmptyFields)
		s.Equal(form.Count()-3, merged.Stats.MissingFields)
	})

	s.Run("single result passes through with a file count", func() {
		a := s.result("a.jpg", nil)
		merged := MergeResults([]Result{a})
		s.Equal("a.jpg", merged.Filename)
		s.Equal(1, merged.Stats.TotalFiles)
	})

	s.Run("no results yields an all-missing result", func() {
		merged := MergeResults(nil)
		s.Equal(form.Count(), merged.Stats.MissingFields)
	})
}
