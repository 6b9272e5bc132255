package session

import (
	"context"

	"english_lt_backend/internal/selection"
)

// SharedQuestionStore 统一出题模式的共享题目集合，按班级（cohort）维度存取。
// 语义为 read-if-present / write-if-absent：第一个开始统一测试的学生
// 固定题目集合，后续读取复用，直至显式清除。生命周期随宿主进程。
type SharedQuestionStore interface {
	Get(ctx context.Context, cohort string) ([]selection.SessionQuestion, bool, error)
	SetIfAbsent(ctx context.Context, cohort string, questions []selection.SessionQuestion) (bool, error)
	Clear(ctx context.Context, cohort string) error
}
