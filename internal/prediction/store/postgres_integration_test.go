//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"olea/internal/prediction/models"
	"olea/internal/prediction/store"
	id "olea/pkg/domain"
	dErrors "olea/pkg/domain-errors"
	"olea/pkg/testutil/containers"
)

type PostgresPredictionStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestPostgresPredictionStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresPredictionStoreSuite))
}

func (s *PostgresPredictionStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)

	err := s.store.Migrate(context.Background())
	s.Require().NoError(err)
}

func (s *PostgresPredictionStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "predictions")
	s.Require().NoError(err)
}

func newTestOutcome() *models.Outcome {
	return &models.Outcome{
		ID:           id.NewPredictionID(),
		FormID:       id.NewFormID(),
		ModelVersion: "v2.3.1",
		Result: models.Result{
			Bundle:     models.BundleNames[3],
			Confidence: 0.87,
			Probabilities: map[string]float64{
				models.BundleNames[3]: 0.87,
				models.BundleNames[0]: 0.13,
			},
		},
		Confidence: 0.87,
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
}

func (s *PostgresPredictionStoreSuite) TestCreateAndGet() {
	ctx := context.Background()

	outcome := newTestOutcome()
	err := s.store.Create(ctx, outcome)
	s.Require().NoError(err)

	found, err := s.store.Get(ctx, outcome.ID)
	s.Require().NoError(err)
	s.Equal(outcome.ID, found.ID)
	s.Equal(outcome.FormID, found.FormID)
	s.Equal(outcome.ModelVersion, found.ModelVersion)
	s.Equal(outcome.Result, found.Result)
	s.Equal(outcome.CreatedAt, found.CreatedAt)
	s.Nil(found.Explanation)
}

// TestExplanationRoundTrip verifies the optional jsonb explanation column.
func (s *PostgresPredictionStoreSuite) TestExplanationRoundTrip() {
	ctx := context.Background()

	narrative := "Income and tenure dominate this prediction."
	outcome := newTestOutcome()
	outcome.Explanation = &models.Explanation{
		Method: "shap",
		FeatureImportances: []models.FeatureImportance{
			{Feature: "Estimated_Annual_Income", Importance: 0.42, Direction: "positive"},
			{Feature: "Years_Without_Claims", Importance: 0.18, Direction: "negative"},
		},
		Summary:   "2 features drive the score",
		Narrative: &narrative,
	}

	err := s.store.Create(ctx, outcome)
	s.Require().NoError(err)

	found, err := s.store.Get(ctx, outcome.ID)
	s.Require().NoError(err)
	s.Require().NotNil(found.Explanation)
	s.Equal(outcome.Explanation.Method, found.Explanation.Method)
	s.Equal(outcome.Explanation.FeatureImportances, found.Explanation.FeatureImportances)
	s.Require().NotNil(found.Explanation.Narrative)
	s.Equal(narrative, *found.Explanation.Narrative)
}

// TestNilFormID verifies outcomes from ad-hoc feature payloads persist with a
// null form reference.
func (s *PostgresPredictionStoreSuite) TestNilFormID() {
	ctx := context.Background()

	outcome := newTestOutcome()
	outcome.FormID = id.FormID{}

	err := s.store.Create(ctx, outcome)
	s.Require().NoError(err)

	found, err := s.store.Get(ctx, outcome.ID)
	s.Require().NoError(err)
	s.True(found.FormID.IsNil())
}

func (s *PostgresPredictionStoreSuite) TestGetNotFound() {
	ctx := context.Background()

	_, err := s.store.Get(ctx, id.NewPredictionID())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *PostgresPredictionStoreSuite) TestListNewestFirst() {
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Microsecond)
	for i := 0; i < 4; i++ {
		outcome := newTestOutcome()
		outcome.CreatedAt = base.Add(time.Duration(i) * time.Second)
		err := s.store.Create(ctx, outcome)
		s.Require().NoError(err)
	}

	listed, err := s.store.List(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(listed, 4)
	for i := 1; i < len(listed); i++ {
		s.False(listed[i-1].CreatedAt.Before(listed[i].CreatedAt))
	}

	limited, err := s.store.List(ctx, 2)
	s.Require().NoError(err)
	s.Len(limited, 2)
}
