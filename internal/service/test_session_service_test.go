package service

import (
	"context"
	"sync"
	"testing"

	"english_lt_backend/internal/model"
	"english_lt_backend/internal/selection"
	"english_lt_backend/internal/session"
	"english_lt_backend/internal/util"

	"gorm.io/gorm"
)

type fakeCatalog struct {
	questions []model.Question
}

func (f *fakeCatalog) Catalog(categories []string, textbook string) ([]model.Question, error) {
	if len(categories) == 0 {
		return f.questions, nil
	}
	want := make(map[string]bool, len(categories))
	for _, c := range categories {
		want[c] = true
	}
	var out []model.Question
	for _, q := range f.questions {
		if want[q.Category] {
			out = append(out, q)
		}
	}
	return out, nil
}

type fakeHistory struct {
	mu       sync.Mutex
	appended []*model.TestHistory
}

func (f *fakeHistory) Append(h *model.TestHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appended = append(f.appended, h)
	h.Seq = len(f.appended)
	return nil
}

func (f *fakeHistory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.appended)
}

type fakeStudents struct {
	students map[string]*model.Student
}

func (f *fakeStudents) FindByID(id string) (*model.Student, error) {
	st, ok := f.students[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return st, nil
}

type memShared struct {
	mu   sync.Mutex
	sets map[string][]selection.SessionQuestion
}

func newMemShared() *memShared {
	return &memShared{sets: make(map[string][]selection.SessionQuestion)}
}

func (m *memShared) Get(ctx context.Context, cohort string) ([]selection.SessionQuestion, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	qs, ok := m.sets[cohort]
	return qs, ok, nil
}

func (m *memShared) SetIfAbsent(ctx context.Context, cohort string, questions []selection.SessionQuestion) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sets[cohort]; ok {
		return false, nil
	}
	m.sets[cohort] = questions
	return true, nil
}

func (m *memShared) Clear(ctx context.Context, cohort string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sets, cohort)
	return nil
}

func wordQuestions(n int) []model.Question {
	out := make([]model.Question, 0, n)
	prompts := []string{"苹果", "平衡", "颜色", "书", "猫", "狗"}
	answers := []string{"apple", "balance", "color", "book", "cat", "dog"}
	for i := 0; i < n; i++ {
		out = append(out, model.Question{
			BaseModel: model.BaseModel{ID: uint(i + 1)},
			Category:  model.CategoryWord,
			Prompt:    prompts[i%len(prompts)],
			Answer:    answers[i%len(answers)],
		})
	}
	return out
}

func newTestService(questions []model.Question, students ...*model.Student) (*TestSessionService, *fakeHistory) {
	history := &fakeHistory{}
	roster := &fakeStudents{students: make(map[string]*model.Student)}
	for _, st := range students {
		roster.students[st.ID] = st
	}
	svc := NewTestSessionService(&fakeCatalog{questions: questions}, history, roster, newMemShared())
	return svc, history
}

func student(id, grade, class string) *model.Student {
	return &model.Student{UUIDBase: model.UUIDBase{ID: id}, Name: "学生" + id, Grade: grade, Class: class}
}

func wordConfig(count int) []selection.TypeConfig {
	return []selection.TypeConfig{{
		Category:         model.CategoryWord,
		Count:            count,
		PointValue:       25,
		TimeLimitSeconds: 10,
		MinTimeSeconds:   3,
	}}
}

func TestStartRejectsBadRequests(t *testing.T) {
	svc, _ := newTestService(wordQuestions(4), student("s1", "三年级", "1班"))
	ctx := context.Background()

	_, err := svc.Start(ctx, &StartTestRequest{
		StudentID: "missing", Mode: session.ModeInput, Types: wordConfig(2),
	})
	if err != util.ErrStudentNotFound {
		t.Fatalf("unknown student: got %v, want ErrStudentNotFound", err)
	}

	_, err = svc.Start(ctx, &StartTestRequest{
		StudentID: "s1", Mode: session.ModeInput, Types: wordConfig(0),
	})
	if err != util.ErrNoQuestionsSelected {
		t.Fatalf("zero count: got %v, want ErrNoQuestionsSelected", err)
	}

	empty, _ := newTestService(nil, student("s2", "三年级", "1班"))
	_, err = empty.Start(ctx, &StartTestRequest{
		StudentID: "s2", Mode: session.ModeInput, Types: wordConfig(2),
	})
	if err != util.ErrNoQuestionsFound {
		t.Fatalf("empty catalog: got %v, want ErrNoQuestionsFound", err)
	}
}

func TestStartRejectsSecondActiveSession(t *testing.T) {
	svc, _ := newTestService(wordQuestions(4), student("s1", "三年级", "1班"))
	ctx := context.Background()

	req := &StartTestRequest{StudentID: "s1", Mode: session.ModeInput, Types: wordConfig(2)}
	if _, err := svc.Start(ctx, req); err != nil {
		t.Fatalf("first start failed: %v", err)
	}
	if _, err := svc.Start(ctx, req); err != util.ErrSessionInProgress {
		t.Fatalf("second start: got %v, want ErrSessionInProgress", err)
	}

	// 作废后可以重新开始
	svc.Reset("s1")
	if _, err := svc.Start(ctx, req); err != nil {
		t.Fatalf("start after reset failed: %v", err)
	}
}

func TestInputModeFlow(t *testing.T) {
	svc, history := newTestService(wordQuestions(2), student("s1", "三年级", "1班"))
	ctx := context.Background()

	resp, err := svc.Start(ctx, &StartTestRequest{
		StudentID: "s1", Mode: session.ModeInput, Types: wordConfig(2),
	})
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if len(resp.Questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(resp.Questions))
	}

	for _, q := range resp.Questions {
		text := q.Answer
		_, done, err := svc.Answer("s1", &AnswerRequest{QuestionID: q.ID, Text: &text})
		if err != nil {
			t.Fatalf("answer failed: %v", err)
		}
		if done != nil {
			t.Fatal("input mode must not auto-submit")
		}
	}

	result, err := svc.Submit("s1")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if !result.Perfect {
		t.Error("all correct answers should yield a perfect result")
	}
	if result.History.Score != 50 || result.History.MaxScore != 50 {
		t.Errorf("got score %v/%v, want 50/50", result.History.Score, result.History.MaxScore)
	}
	if history.count() != 1 {
		t.Fatalf("history appended %d times, want 1", history.count())
	}

	// 重复交卷返回归档结果，不再写历史
	again, err := svc.Submit("s1")
	if err != nil {
		t.Fatalf("repeat submit failed: %v", err)
	}
	if again.History != result.History {
		t.Error("repeat submit should return the archived record")
	}
	if history.count() != 1 {
		t.Fatalf("history appended %d times after repeat submit, want 1", history.count())
	}
}

func TestCardModeAutoSubmitsWhenAllAnswered(t *testing.T) {
	svc, history := newTestService(wordQuestions(3), student("s1", "三年级", "1班"))
	ctx := context.Background()

	resp, err := svc.Start(ctx, &StartTestRequest{
		StudentID: "s1", Mode: session.ModeCard, Types: wordConfig(3),
	})
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}

	knew := true
	var final *SubmitResponse
	for i, q := range resp.Questions {
		_, done, err := svc.Answer("s1", &AnswerRequest{QuestionID: q.ID, Knew: &knew})
		if err != nil {
			t.Fatalf("answer %d failed: %v", i, err)
		}
		if i < len(resp.Questions)-1 {
			if done != nil {
				t.Fatal("auto-submit fired before all cards were answered")
			}
			if _, err := svc.Advance("s1"); err != nil {
				t.Fatalf("advance failed: %v", err)
			}
		} else {
			final = done
		}
	}

	if final == nil {
		t.Fatal("answering the last card should auto-submit")
	}
	if !final.Perfect {
		t.Error("instant correct flips should score full points")
	}
	if history.count() != 1 {
		t.Fatalf("history appended %d times, want 1", history.count())
	}
}

func TestTimeoutForcesSubmitOnce(t *testing.T) {
	questions := wordQuestions(1)
	svc, history := newTestService(questions, student("s1", "三年级", "1班"))
	ctx := context.Background()

	types := []selection.TypeConfig{{
		Category:         model.CategoryWord,
		Count:            1,
		PointValue:       25,
		TimeLimitSeconds: 5,
		MinTimeSeconds:   1,
	}}
	if _, err := svc.Start(ctx, &StartTestRequest{StudentID: "s1", Mode: session.ModeInput, Types: types}); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		svc.tickAll()
	}

	if history.count() != 1 {
		t.Fatalf("history appended %d times after countdown ran out, want 1", history.count())
	}
	result, err := svc.Result("s1")
	if err != nil {
		t.Fatalf("result failed: %v", err)
	}
	if result.History.Score != 0 {
		t.Errorf("unanswered timeout got score %v, want 0", result.History.Score)
	}

	// 到期后的 tick 是空操作
	svc.tickAll()
	if history.count() != 1 {
		t.Fatal("ticks after completion must not write history again")
	}
}

func TestUnifiedModeSharesQuestionSet(t *testing.T) {
	svc, _ := newTestService(wordQuestions(6),
		student("s1", "三年级", "1班"),
		student("s2", "三年级", "1班"),
	)
	ctx := context.Background()

	req := func(id string) *StartTestRequest {
		return &StartTestRequest{
			StudentID:    id,
			Mode:         session.ModeInput,
			QuestionMode: session.QuestionsUnified,
			Types:        wordConfig(3),
		}
	}

	first, err := svc.Start(ctx, req("s1"))
	if err != nil {
		t.Fatalf("first start failed: %v", err)
	}
	second, err := svc.Start(ctx, req("s2"))
	if err != nil {
		t.Fatalf("second start failed: %v", err)
	}

	if len(first.Questions) != len(second.Questions) {
		t.Fatalf("question counts differ: %d vs %d", len(first.Questions), len(second.Questions))
	}
	for i := range first.Questions {
		if first.Questions[i].ID != second.Questions[i].ID {
			t.Fatalf("question %d differs: %d vs %d", i, first.Questions[i].ID, second.Questions[i].ID)
		}
	}

	if err := svc.ClearShared(ctx, "三年级/1班"); err != nil {
		t.Fatalf("clear shared failed: %v", err)
	}
	if _, found, _ := svc.Shared.Get(ctx, "三年级/1班"); found {
		t.Fatal("shared set should be gone after clear")
	}
}
