package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"talentflow_backend/internal/model"
	"talentflow_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	assessmentKeyPrefix = "talentflow:assessment:"
	jobKeyPrefix        = "talentflow:assessment:job:"
)

// CachedAssessmentStore caches assessment reads in redis in front of another
// store. Submissions always go to the underlying store. Redis failures are
// logged and fall through.
type CachedAssessmentStore struct {
	AssessmentStore
	Redis *redis.Client
	TTL   time.Duration
}

func NewCachedAssessmentStore(store AssessmentStore, rdb *redis.Client, ttl time.Duration) *CachedAssessmentStore {
	return &CachedAssessmentStore{AssessmentStore: store, Redis: rdb, TTL: ttl}
}

func (c *CachedAssessmentStore) LoadAssessment(ctx context.Context, id string) (*model.Assessment, error) {
	var cached model.Assessment
	if c.get(ctx, assessmentKeyPrefix+id, &cached) {
		return &cached, nil
	}
	a, err := c.AssessmentStore.LoadAssessment(ctx, id)
	if err != nil {
		return nil, err
	}
	c.set(ctx, assessmentKeyPrefix+id, a)
	return a, nil
}

func (c *CachedAssessmentStore) LoadAssessmentsByJob(ctx context.Context, jobID string) ([]*model.Assessment, error) {
	var cached []*model.Assessment
	if c.get(ctx, jobKeyPrefix+jobID, &cached) {
		return cached, nil
	}
	list, err := c.AssessmentStore.LoadAssessmentsByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if len(list) > 0 {
		c.set(ctx, jobKeyPrefix+jobID, list)
	}
	return list, nil
}

func (c *CachedAssessmentStore) SaveAssessment(ctx context.Context, a *model.Assessment) (*model.Assessment, error) {
	saved, err := c.AssessmentStore.SaveAssessment(ctx, a)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, assessmentKeyPrefix+a.ID, jobKeyPrefix+a.JobID)
	return saved, nil
}

func (c *CachedAssessmentStore) DeleteAssessment(ctx context.Context, id string) error {
	keys := []string{assessmentKeyPrefix + id}
	if a, err := c.AssessmentStore.LoadAssessment(ctx, id); err == nil {
		keys = append(keys, jobKeyPrefix+a.JobID)
	}
	if err := c.AssessmentStore.DeleteAssessment(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, keys...)
	return nil
}

func (c *CachedAssessmentStore) get(ctx context.Context, key string, dst interface{}) bool {
	raw, err := c.Redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Log.Warn("assessment cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		logger.Log.Warn("assessment cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *CachedAssessmentStore) set(ctx context.Context, key string, v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.Redis.Set(ctx, key, raw, c.TTL).Err(); err != nil {
		logger.Log.Warn("assessment cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *CachedAssessmentStore) invalidate(ctx context.Context, keys ...string) {
	if err := c.Redis.Del(ctx, keys...).Err(); err != nil {
		logger.Log.Warn("assessment cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
