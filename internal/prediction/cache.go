package prediction

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"math"
	"sort"
	"time"

	"olea/internal/features"
	"olea/internal/platform/redis"
	"olea/internal/prediction/models"
)

const cacheKeyPrefix = "olea:pred:"

// cacheEntry is the scoring result kept in Redis, without the explanation
// or any per-request identity.
type cacheEntry struct {
	ModelVersion string        `json:"model_version"`
	Result       models.Result `json:"result"`
}

// Cache memoizes scoring results keyed by the feature vector. Fail-open:
// with no Redis configured, every lookup misses and every store is a no-op.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached scoring result for the vector, if any.
func (c *Cache) Get(ctx context.Context, vec features.Vector) (models.Result, string, bool) {
	if c == nil || c.client == nil {
		return models.Result{}, "", false
	}

	raw, err := c.client.Get(ctx, CacheKey(vec)).Result()
	if err != nil || raw == "" {
		return models.Result{}, "", false
	}

	var entry cacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		c.logger.WarnContext(ctx, "corrupt prediction cache entry", "error", err)
		return models.Result{}, "", false
	}
	return entry.Result, entry.ModelVersion, true
}

// Set stores a scoring result. Best effort: failures are logged only.
func (c *Cache) Set(ctx context.Context, vec features.Vector, result models.Result, modelVersion string) {
	if c == nil || c.client == nil {
		return
	}

	payload, err := json.Marshal(cacheEntry{ModelVersion: modelVersion, Result: result})
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, CacheKey(vec), payload, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "prediction cache store failed", "error", err)
	}
}

// CacheKey hashes the feature vector deterministically. Identifier fields
// vary per client without changing the model's answer, so they are
// excluded; floats are rounded so serialization jitter cannot split keys.
func CacheKey(vec features.Vector) string {
	flat := map[string]any{}
	raw, _ := json.Marshal(vec)
	_ = json.Unmarshal(raw, &flat)

	delete(flat, "Broker_ID")
	delete(flat, "Employer_ID")

	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		v := flat[k]
		if f, ok := v.(float64); ok {
			v = math.Round(f*1e6) / 1e6
		}
		part, _ := json.Marshal(map[string]any{k: v})
		h.Write(part)
	}
	return cacheKeyPrefix + hex.EncodeToString(h.Sum(nil))
}
