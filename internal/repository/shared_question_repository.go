package repository

import (
	"context"
	"encoding/json"
	"time"

	"english_lt_backend/internal/selection"

	"github.com/go-redis/redis/v8"
)

const sharedQuestionKeyPrefix = "unified_test:questions:"

// 统一测试题目集合的保留时间，兜底清理，正常流程由 Clear 显式清除
const sharedQuestionTTL = 12 * time.Hour

// SharedQuestionRepository 用 Redis 存放统一出题模式下整班共享的题目集合。
// SetIfAbsent 借助 SETNX 保证并发开考时只有一份题目集合生效。
type SharedQuestionRepository struct {
	RDB *redis.Client
}

func NewSharedQuestionRepository(rdb *redis.Client) *SharedQuestionRepository {
	return &SharedQuestionRepository{RDB: rdb}
}

func (r *SharedQuestionRepository) key(cohort string) string {
	return sharedQuestionKeyPrefix + cohort
}

func (r *SharedQuestionRepository) Get(ctx context.Context, cohort string) ([]selection.SessionQuestion, bool, error) {
	data, err := r.RDB.Get(ctx, r.key(cohort)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var questions []selection.SessionQuestion
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, false, err
	}
	return questions, true, nil
}

func (r *SharedQuestionRepository) SetIfAbsent(ctx context.Context, cohort string, questions []selection.SessionQuestion) (bool, error) {
	data, err := json.Marshal(questions)
	if err != nil {
		return false, err
	}
	return r.RDB.SetNX(ctx, r.key(cohort), data, sharedQuestionTTL).Result()
}

func (r *SharedQuestionRepository) Clear(ctx context.Context, cohort string) error {
	return r.RDB.Del(ctx, r.key(cohort)).Err()
}
