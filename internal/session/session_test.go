package session

import (
	"testing"
	"time"

	"english_lt_backend/internal/model"
	"english_lt_backend/internal/selection"
)

// fakeClock 可手动快进的时钟
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func wordQuestions(n int, pointValue float64, timeLimit, minTime int) []selection.SessionQuestion {
	answers := []string{"apple", "balance", "courage", "dream"}
	qs := make([]selection.SessionQuestion, 0, n)
	for i := 0; i < n; i++ {
		q := model.Question{Category: model.CategoryWord, Prompt: "题目", Answer: answers[i%len(answers)]}
		q.ID = uint(i + 1)
		qs = append(qs, selection.SessionQuestion{
			Question:         q,
			PointValue:       pointValue,
			TimeLimitSeconds: timeLimit,
			MinTimeSeconds:   minTime,
		})
	}
	return qs
}

func TestNewRequiresQuestions(t *testing.T) {
	if _, err := New(ModeInput, nil, newFakeClock()); err != ErrNoQuestions {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
}

func TestNewInitializesTotals(t *testing.T) {
	s, err := New(ModeInput, wordQuestions(2, 25, 5, 2), newFakeClock())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if s.Status() != StatusActive {
		t.Errorf("status = %s, expected active", s.Status())
	}
	if s.MaxPossibleScore() != 50 {
		t.Errorf("maxPossibleScore = %.1f, expected 50", s.MaxPossibleScore())
	}
	if s.RemainingSeconds() != 10 {
		t.Errorf("remainingSeconds = %d, expected 10", s.RemainingSeconds())
	}
	if s.CurrentIndex() != 0 {
		t.Errorf("currentIndex = %d, expected 0", s.CurrentIndex())
	}
}

func TestInputModeEndToEndPerfectScore(t *testing.T) {
	clock := newFakeClock()
	s, _ := New(ModeInput, wordQuestions(2, 25, 5, 2), clock)

	if err := s.Answer(1, TextAnswer(" Apple ")); err != nil {
		t.Fatalf("answer 1: %v", err)
	}
	if err := s.Answer(2, TextAnswer("balance")); err != nil {
		t.Fatalf("answer 2: %v", err)
	}
	if s.CurrentIndex() != 0 {
		t.Errorf("input mode must not advance the index, got %d", s.CurrentIndex())
	}

	outcome, err := s.Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if outcome == nil {
		t.Fatal("expected an outcome")
	}
	if outcome.Record.Score != 50 {
		t.Errorf("score = %.1f, expected 50", outcome.Record.Score)
	}
	if !outcome.Perfect {
		t.Error("expected perfect score event")
	}
	if outcome.Record.Score != outcome.Record.MaxScore {
		t.Error("perfect outcome must satisfy score == maxScore")
	}
	if len(outcome.Record.Details) != 2 {
		t.Fatalf("expected 2 details, got %d", len(outcome.Record.Details))
	}
	if s.Status() != StatusCompleted {
		t.Errorf("status = %s, expected completed", s.Status())
	}
}

func TestInputModeWrongAndUnansweredScoreZero(t *testing.T) {
	s, _ := New(ModeInput, wordQuestions(2, 25, 5, 2), newFakeClock())

	if err := s.Answer(1, TextAnswer("banana")); err != nil {
		t.Fatalf("answer: %v", err)
	}

	outcome, err := s.Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if outcome.Record.Score != 0 {
		t.Errorf("score = %.1f, expected 0", outcome.Record.Score)
	}
	if outcome.Perfect {
		t.Error("unexpected perfect score")
	}
	for _, d := range outcome.Record.Details {
		if d.IsCorrect {
			t.Errorf("question %d marked correct", d.QuestionID)
		}
	}
}

func TestSubmitIdempotent(t *testing.T) {
	// 模拟倒计时归零与最后一题作答同时触发提交
	s, _ := New(ModeInput, wordQuestions(1, 25, 5, 2), newFakeClock())
	s.Answer(1, TextAnswer("apple"))

	first, err := s.Submit()
	if err != nil || first == nil {
		t.Fatalf("first submit: outcome=%v err=%v", first, err)
	}

	second, err := s.Submit()
	if err != nil {
		t.Fatalf("second submit errored: %v", err)
	}
	if second != nil {
		t.Error("second submit must be a no-op")
	}
}

func TestSubmitRecoversFromGradingPanic(t *testing.T) {
	s, _ := New(ModeInput, wordQuestions(1, 25, 5, 2), newFakeClock())
	s.Answer(1, TextAnswer("apple"))

	original := s.grade
	s.grade = func(selection.SessionQuestion) Detail { panic("grading blew up") }

	outcome, err := s.Submit()
	if err == nil {
		t.Fatal("expected an error from the failed submit")
	}
	if outcome != nil {
		t.Fatalf("failed submit must not produce an outcome, got %+v", outcome)
	}
	if s.Status() != StatusActive {
		t.Errorf("status = %s, expected active so the session can retry", s.Status())
	}
	if s.submitting {
		t.Error("in-flight flag must be cleared after the failure")
	}

	// 恢复判分后重试成功，且只产出这一次结果
	s.grade = original
	retry, err := s.Submit()
	if err != nil {
		t.Fatalf("retry submit: %v", err)
	}
	if retry == nil {
		t.Fatal("retry submit must produce the outcome")
	}
	if retry.Record.Score != 25 {
		t.Errorf("score = %.1f, expected 25", retry.Record.Score)
	}
	if s.Status() != StatusCompleted {
		t.Errorf("status = %s, expected completed", s.Status())
	}
	if again, _ := s.Submit(); again != nil {
		t.Error("submit after the successful retry must be a no-op")
	}
}

func TestAnswerRejectedAfterCompletion(t *testing.T) {
	s, _ := New(ModeInput, wordQuestions(1, 25, 5, 2), newFakeClock())
	s.Submit()

	if err := s.Answer(1, TextAnswer("apple")); err != ErrSessionNotActive {
		t.Errorf("expected ErrSessionNotActive, got %v", err)
	}
}

func TestReAnswerLastWriteWins(t *testing.T) {
	s, _ := New(ModeInput, wordQuestions(1, 25, 5, 2), newFakeClock())

	s.Answer(1, TextAnswer("wrong"))
	s.Answer(1, TextAnswer("apple"))

	outcome, _ := s.Submit()
	if outcome.Record.Score != 25 {
		t.Errorf("score = %.1f, expected 25 after overwrite", outcome.Record.Score)
	}
}

func TestAnswerKindMustMatchMode(t *testing.T) {
	s, _ := New(ModeInput, wordQuestions(1, 25, 5, 2), newFakeClock())
	if err := s.Answer(1, FlipAnswer(true)); err != ErrWrongAnswerKind {
		t.Errorf("input mode with flip answer: expected ErrWrongAnswerKind, got %v", err)
	}

	c, _ := New(ModeCard, wordQuestions(1, 25, 5, 2), newFakeClock())
	if err := c.Answer(1, TextAnswer("apple")); err != ErrWrongAnswerKind {
		t.Errorf("card mode with text answer: expected ErrWrongAnswerKind, got %v", err)
	}
}

func TestCardModeScoresAtAnswerTime(t *testing.T) {
	clock := newFakeClock()
	s, _ := New(ModeCard, wordQuestions(2, 100, 10, 3), clock)

	// 第一题 2 秒内自评知道：满分
	clock.advance(2 * time.Second)
	if err := s.Answer(1, FlipAnswer(true)); err != nil {
		t.Fatalf("answer 1: %v", err)
	}
	if !s.Flipped(1) {
		t.Error("card 1 should be flipped")
	}
	if s.CurrentScore() != 100 {
		t.Errorf("currentScore = %.2f, expected 100", s.CurrentScore())
	}

	if err := s.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if s.CurrentIndex() != 1 {
		t.Fatalf("currentIndex = %d, expected 1", s.CurrentIndex())
	}

	// 第二题 6 秒后自评知道：进入衰减区间
	clock.advance(6 * time.Second)
	if err := s.Answer(2, FlipAnswer(true)); err != nil {
		t.Fatalf("answer 2: %v", err)
	}

	outcome, err := s.Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	// 100 + 100*(1-(6-3)/(10-3))^2 = 100 + 32.65
	expected := 132.65
	if diff := outcome.Record.Score - expected; diff > 0.001 || diff < -0.001 {
		t.Errorf("score = %.2f, expected %.2f", outcome.Record.Score, expected)
	}
	if outcome.Perfect {
		t.Error("decayed score must not be perfect")
	}
}

func TestCardModeOnlyCurrentQuestion(t *testing.T) {
	s, _ := New(ModeCard, wordQuestions(2, 25, 5, 2), newFakeClock())
	if err := s.Answer(2, FlipAnswer(true)); err != ErrNotCurrentQuestion {
		t.Errorf("expected ErrNotCurrentQuestion, got %v", err)
	}
}

func TestCardModeIndexNeverDecreases(t *testing.T) {
	s, _ := New(ModeCard, wordQuestions(2, 25, 5, 2), newFakeClock())
	s.Answer(1, FlipAnswer(true))
	s.Advance()
	s.Advance() // 已在最后一题，保持不变
	if s.CurrentIndex() != 1 {
		t.Errorf("currentIndex = %d, expected 1", s.CurrentIndex())
	}
}

func TestCardModeAutoSubmitWhenAllAnswered(t *testing.T) {
	s, _ := New(ModeCard, wordQuestions(2, 25, 5, 2), newFakeClock())

	s.Answer(1, FlipAnswer(false))
	if s.ShouldAutoSubmit() {
		t.Error("auto submit must wait for the full set")
	}
	s.Advance()
	s.Answer(2, FlipAnswer(true))
	if !s.ShouldAutoSubmit() {
		t.Error("expected auto submit once every card is answered")
	}
}

func TestTimeoutForcesSubmitExactlyOnce(t *testing.T) {
	// 单题限时 5 秒，倒计时走完第 5 次 tick 时强制提交
	s, _ := New(ModeInput, wordQuestions(1, 25, 5, 2), newFakeClock())

	var outcomes []*Outcome
	for i := 0; i < 5; i++ {
		o, err := s.Tick()
		if err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
		if o != nil {
			outcomes = append(outcomes, o)
		}
	}

	if len(outcomes) != 1 {
		t.Fatalf("expected exactly one outcome, got %d", len(outcomes))
	}
	if s.Status() != StatusCompleted {
		t.Errorf("status = %s, expected completed", s.Status())
	}
	if outcomes[0].Record.Score != 0 {
		t.Errorf("unanswered timeout score = %.1f, expected 0", outcomes[0].Record.Score)
	}

	// 完成后继续 tick 是空操作
	if o, _ := s.Tick(); o != nil {
		t.Error("tick after completion must be a no-op")
	}
}

func TestSnapshotReflectsState(t *testing.T) {
	clock := newFakeClock()
	s, _ := New(ModeCard, wordQuestions(2, 25, 5, 2), clock)

	s.Tick()
	s.Answer(1, FlipAnswer(true))

	snap := s.Snapshot()
	if snap.Status != StatusActive || snap.Mode != ModeCard {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	if snap.RemainingSeconds != 9 {
		t.Errorf("remainingSeconds = %d, expected 9", snap.RemainingSeconds)
	}
	if snap.AnsweredCount != 1 || snap.QuestionCount != 2 {
		t.Errorf("counts = %d/%d, expected 1/2", snap.AnsweredCount, snap.QuestionCount)
	}
	if snap.MaxPossibleScore != 50 {
		t.Errorf("maxPossibleScore = %.1f, expected 50", snap.MaxPossibleScore)
	}
	if snap.CurrentScore != 25 {
		t.Errorf("currentScore = %.1f, expected 25", snap.CurrentScore)
	}
}
