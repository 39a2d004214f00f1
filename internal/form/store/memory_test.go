package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"olea/internal/form"
	id "olea/pkg/domain"
	dErrors "olea/pkg/domain-errors"
)

type FormStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *FormStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestFormStoreSuite(t *testing.T) {
	suite.Run(t, new(FormStoreSuite))
}

func (s *FormStoreSuite) newSubmission() *form.Submission {
	rec := form.New()
	s.Require().NoError(rec.SetText(form.FieldAdultDependents, "2"))
	now := time.Now()
	return &form.Submission{
		ID:        id.NewFormID(),
		FormType:  "insurance",
		Status:    form.SubmissionSubmitted,
		Record:    rec,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *FormStoreSuite) TestCreateAndGet() {
	s.Run("round-trips a submission", func() {
		sub := s.newSubmission()
		s.Require().NoError(s.store.Create(s.ctx, sub))

		got, err := s.store.Get(s.ctx, sub.ID)
		s.Require().NoError(err)
		s.Equal(sub.FormType, got.FormType)
		s.Equal("2", got.Record.Text(form.FieldAdultDependents))
	})

	s.Run("rejects duplicate ids", func() {
		sub := s.newSubmission()
		s.Require().NoError(s.store.Create(s.ctx, sub))
		err := s.store.Create(s.ctx, sub)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("unknown id yields not found", func() {
		_, err := s.store.Get(s.ctx, id.NewFormID())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("stored copy is isolated from the caller", func() {
		sub := s.newSubmission()
		s.Require().NoError(s.store.Create(s.ctx, sub))
		s.Require().NoError(sub.Record.SetText(form.FieldAdultDependents, "9"))

		got, err := s.store.Get(s.ctx, sub.ID)
		s.Require().NoError(err)
		s.Equal("2", got.Record.Text(form.FieldAdultDependents))
	})
}

func (s *FormStoreSuite) TestUpdateAndDelete() {
	s.Run("updates an existing submission", func() {
		sub := s.newSubmission()
		s.Require().NoError(s.store.Create(s.ctx, sub))

		sub.Status = form.SubmissionProcessed
		s.Require().NoError(s.store.Update(s.ctx, sub))

		got, err := s.store.Get(s.ctx, sub.ID)
		s.Require().NoError(err)
		s.Equal(form.SubmissionProcessed, got.Status)
	})

	s.Run("update of a missing submission fails", func() {
		err := s.store.Update(s.ctx, s.newSubmission())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("delete removes the submission", func() {
		sub := s.newSubmission()
		s.Require().NoError(s.store.Create(s.ctx, sub))
		s.Require().NoError(s.store.Delete(s.ctx, sub.ID))

		_, err := s.store.Get(s.ctx, sub.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *FormStoreSuite) TestList() {
	for range [3]int{} {
		s.Require().NoError(s.store.Create(s.ctx, s.newSubmission()))
	}

	all, err := s.store.List(s.ctx, 0)
	s.Require().NoError(err)
	s.Len(all, 3)

	capped, err := s.store.List(s.ctx, 2)
	s.Require().NoError(err)
	s.Len(capped, 2)
}
