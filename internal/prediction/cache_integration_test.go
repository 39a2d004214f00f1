//go:build integration

package prediction_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"olea/internal/features"
	"olea/internal/form"
	"olea/internal/platform/redis"
	"olea/internal/prediction"
	"olea/internal/prediction/models"
	"olea/pkg/testutil/containers"
)

type CacheIntegrationSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *prediction.Cache
}

func TestCacheIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(CacheIntegrationSuite))
}

func (s *CacheIntegrationSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := &redis.Client{Client: s.redis.Client}
	s.cache = prediction.NewCache(client, time.Minute, logger)
}

func (s *CacheIntegrationSuite) SetupTest() {
	err := s.redis.FlushAll(context.Background())
	s.Require().NoError(err)
}

func (s *CacheIntegrationSuite) testVector() features.Vector {
	rec := form.FromRaw(map[string]any{
		"Adult_Dependents":        2,
		"Estimated_Annual_Income": 85000.5,
		"Employment_Status":       "Employed",
	})
	return features.Build(rec, time.Date(2026, time.March, 19, 10, 0, 0, 0, time.UTC))
}

func (s *CacheIntegrationSuite) TestMissThenHit() {
	ctx := context.Background()
	vec := s.testVector()

	_, _, ok := s.cache.Get(ctx, vec)
	s.False(ok)

	want := models.Result{Bundle: models.BundleNames[5], Confidence: 0.77}
	s.cache.Set(ctx, vec, want, "v2.0.0")

	got, version, ok := s.cache.Get(ctx, vec)
	s.Require().True(ok)
	s.Equal(want, got)
	s.Equal("v2.0.0", version)
}

// TestDistinctVectorsDistinctKeys verifies two different records never share
// a cache entry.
func (s *CacheIntegrationSuite) TestDistinctVectorsDistinctKeys() {
	ctx := context.Background()

	vecA := s.testVector()
	recB := form.FromRaw(map[string]any{"Adult_Dependents": 5})
	vecB := features.Build(recB, time.Date(2026, time.March, 19, 10, 0, 0, 0, time.UTC))

	s.cache.Set(ctx, vecA, models.Result{Bundle: models.BundleNames[0], Confidence: 0.5}, "v1")

	_, _, ok := s.cache.Get(ctx, vecB)
	s.False(ok)
}

// TestEntryExpires verifies the TTL is applied on write.
func (s *CacheIntegrationSuite) TestEntryExpires() {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	short := prediction.NewCache(&redis.Client{Client: s.redis.Client}, time.Second, logger)

	vec := s.testVector()
	short.Set(ctx, vec, models.Result{Bundle: models.BundleNames[1], Confidence: 0.6}, "v1")

	ttl, err := s.redis.Client.TTL(ctx, prediction.CacheKey(vec)).Result()
	s.Require().NoError(err)
	s.True(ttl > 0 && ttl <= time.Second)
}
