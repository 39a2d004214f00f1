package extraction

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"olea/internal/form"
	dErrors "olea/pkg/domain-errors"
)

type ServiceSuite struct {
	suite.Suite
	ctx context.Context
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) doc(name string) Document {
	return Document{Filename: name, ContentType: "image/jpeg", Data: []byte("fake-image-bytes")}
}

func (s *ServiceSuite) TestExtract() {
	s.Run("parses recognized text into fields", func() {
		svc := NewService(&StaticEngine{Output: EngineOutput{
			Text:       "Adult Dependents: 2\nEmployment Status: Retired",
			Confidence: 0.9,
			Name:       "ocr_engine",
		}})

		res, err := svc.Extract(s.ctx, s.doc("form.jpg"))
		s.Require().NoError(err)
		s.Equal("form.jpg", res.Filename)
		s.Equal(2, res.Fields[string(form.FieldAdultDependents)])
		s.Equal("Retired", res.Fields[string(form.FieldEmploymentStatus)])
		s.Equal(2, res.Stats.MatchedFields)
	})

	s.Run("surfaces engine failures", func() {
		engineErr := dErrors.New(dErrors.CodeUnavailable, "ocr engine returned 503")
		svc := NewService(&StaticEngine{Err: engineErr})

		_, err := svc.Extract(s.ctx, s.doc("form.jpg"))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	})

	s.Run("blank text yields an all-missing result", func() {
		svc := NewService(&StaticEngine{Output: EngineOutput{Text: "   \n  ", Confidence: 0.3}})

		res, err := svc.Extract(s.ctx, s.doc("blank.jpg"))
		s.Require().NoError(err)
		s.Equal(form.Count(), res.Stats.MissingFields)
		s.Zero(res.Stats.MatchedFields)
	})

	s.Run("rejects oversized documents", func() {
		svc := NewService(&StaticEngine{})
		doc := s.doc("big.jpg")
		doc.Data = make([]byte, MaxFileSize+1)

		_, err := svc.Extract(s.ctx, doc)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects unsupported content types", func() {
		svc := NewService(&StaticEngine{})
		doc := s.doc("sheet.xlsx")
		doc.ContentType = "application/vnd.ms-excel"

		_, err := svc.Extract(s.ctx, doc)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects empty documents", func() {
		svc := NewService(&StaticEngine{})
		doc := s.doc("empty.jpg")
		doc.Data = nil

		_, err := svc.Extract(s.ctx, doc)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ServiceSuite) TestExtractMerged() {
	s.Run("merges values across documents", func() {
		svc := NewService(&StaticEngine{Output: EngineOutput{
			Text:       "Adult Dependents: 2",
			Confidence: 0.9,
		}})

		res, err := svc.ExtractMerged(s.ctx, []Document{s.doc("a.jpg"), s.doc("b.jpg")})
		s.Require().NoError(err)
		s.Equal(2, res.Stats.TotalFiles)
		s.Equal(2, res.Fields[string(form.FieldAdultDependents)])
	})

	s.Run("rejects empty batches", func() {
		svc := NewService(&StaticEngine{})
		_, err := svc.ExtractMerged(s.ctx, nil)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("caps the number of documents", func() {
		svc := NewService(&StaticEngine{})
		docs := make([]Document, MaxFiles+1)
		for i := range docs {
			docs[i] = s.doc("form.jpg")
		}

		_, err := svc.ExtractMerged(s.ctx, docs)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("fails fast when one document errors", func() {
		svc := NewService(&StaticEngine{Err: dErrors.New(dErrors.CodeUnavailable, "down")})
		_, err := svc.ExtractMerged(s.ctx, []Document{s.doc("a.jpg")})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	})
}
