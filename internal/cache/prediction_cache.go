package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/campuskit/campuskit-backend/internal/platform/logger"
	"github.com/campuskit/campuskit-backend/internal/types"
)

// PredictionCache is a read-through cache in front of the risk_prediction
// table. It is strictly an optimization: a nil client, a miss or any redis
// error all fall through to the database.
type PredictionCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

func NewPredictionCache(client *redis.Client, ttl time.Duration, baseLog *logger.Logger) *PredictionCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &PredictionCache{
		client: client,
		ttl:    ttl,
		log:    baseLog.With("component", "PredictionCache"),
	}
}

func predictionKey(schoolID, studentID uuid.UUID) string {
	return fmt.Sprintf("risk:pred:%s:%s", schoolID, studentID)
}

func (c *PredictionCache) Get(ctx context.Context, schoolID, studentID uuid.UUID) (*types.RiskPrediction, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, predictionKey(schoolID, studentID)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.log.Warn("prediction cache read failed", "error", err)
		return nil, false
	}
	var prediction types.RiskPrediction
	if err := json.Unmarshal(raw, &prediction); err != nil {
		c.log.Warn("prediction cache entry corrupt, dropping", "error", err)
		_ = c.client.Del(ctx, predictionKey(schoolID, studentID)).Err()
		return nil, false
	}
	return &prediction, true
}

func (c *PredictionCache) Set(ctx context.Context, prediction *types.RiskPrediction) {
	if c == nil || c.client == nil || prediction == nil {
		return
	}
	raw, err := json.Marshal(prediction)
	if err != nil {
		return
	}
	key := predictionKey(prediction.SchoolID, prediction.StudentID)
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("prediction cache write failed", "error", err)
	}
}

func (c *PredictionCache) Invalidate(ctx context.Context, schoolID, studentID uuid.UUID) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, predictionKey(schoolID, studentID)).Err(); err != nil {
		c.log.Warn("prediction cache invalidation failed", "error", err)
	}
}
