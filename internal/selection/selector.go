// Package selection 从静态题库按题型配置随机抽取测试题目
package selection

import (
	"fmt"
	"math/rand"
	"time"

	"english_lt_backend/internal/model"
)

// Selector handles randomized question drawing per type config
type Selector struct {
	rand *rand.Rand
}

// NewSelector creates a selector with a time-seeded random source
func NewSelector() *Selector {
	return NewSelectorWithSeed(time.Now().UnixNano())
}

// NewSelectorWithSeed creates a selector with a fixed seed, for deterministic tests
func NewSelectorWithSeed(seed int64) *Selector {
	return &Selector{rand: rand.New(rand.NewSource(seed))}
}

// ValidateConfigs 校验题型参数的取值范围
func ValidateConfigs(configs []TypeConfig) error {
	for _, c := range configs {
		if c.Count < 0 {
			return fmt.Errorf("category %s: count must be >= 0", c.Category)
		}
		if c.Count == 0 {
			continue
		}
		if c.PointValue < 1 {
			return fmt.Errorf("category %s: point value must be >= 1", c.Category)
		}
		if c.TimeLimitSeconds < 5 {
			return fmt.Errorf("category %s: time limit must be >= 5 seconds", c.Category)
		}
		if c.MinTimeSeconds < 1 || c.MinTimeSeconds > c.TimeLimitSeconds {
			return fmt.Errorf("category %s: min time must be between 1 and the time limit", c.Category)
		}
	}
	return nil
}

// Generate 对每个 count > 0 的题型：按分类（和教材，如有筛选）过滤题库，
// 洗牌后取前 count 道，并把题型参数盖印到题目上。
// 不足时返回 Shortfall 记录，结果集内题目 id 不重复。
func (s *Selector) Generate(configs []TypeConfig, catalog []model.Question, textbook string) *Result {
	result := &Result{}
	seen := make(map[uint]bool)

	for _, cfg := range configs {
		if cfg.Count <= 0 {
			continue
		}

		pool := make([]model.Question, 0)
		for _, q := range catalog {
			if q.Category != cfg.Category {
				continue
			}
			if textbook != "" && textbook != model.TextbookAll && q.Textbook != textbook {
				continue
			}
			if seen[q.ID] {
				continue
			}
			pool = append(pool, q)
		}

		// Fisher-Yates，无偏排列
		s.rand.Shuffle(len(pool), func(i, j int) {
			pool[i], pool[j] = pool[j], pool[i]
		})

		take := cfg.Count
		if take > len(pool) {
			take = len(pool)
			result.Shortfalls = append(result.Shortfalls, Shortfall{
				Category:  cfg.Category,
				Requested: cfg.Count,
				Available: len(pool),
			})
		}

		for _, q := range pool[:take] {
			seen[q.ID] = true
			result.Questions = append(result.Questions, SessionQuestion{
				Question:         q,
				PointValue:       cfg.PointValue,
				TimeLimitSeconds: cfg.TimeLimitSeconds,
				MinTimeSeconds:   cfg.MinTimeSeconds,
			})
		}
	}

	return result
}
