package service

import (
	"context"
	"sync"
	"time"

	"english_lt_backend/internal/model"
	"english_lt_backend/internal/selection"
	"english_lt_backend/internal/session"
	"english_lt_backend/internal/util"
	"english_lt_backend/pkg/logger"
	"english_lt_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// QuestionCatalog 抽题候选集来源
type QuestionCatalog interface {
	Catalog(categories []string, textbook string) ([]model.Question, error)
}

// HistoryStore 测试记录的追加式存储
type HistoryStore interface {
	Append(history *model.TestHistory) error
}

// StudentFinder 学生档案查询
type StudentFinder interface {
	FindByID(id string) (*model.Student, error)
}

// sessionEntry 单个学生的会话及其归档结果
type sessionEntry struct {
	sess    *session.Session
	cohort  string
	result  *model.TestHistory
	perfect bool
}

// TestSessionService 测试会话宿主：每个学生至多持有一个会话，
// 所有会话操作经同一把锁串行化，后台每秒驱动一次倒计时。
type TestSessionService struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry

	selector *selection.Selector
	clock    session.Clock

	Catalog  QuestionCatalog
	History  HistoryStore
	Students StudentFinder
	Shared   session.SharedQuestionStore
}

func NewTestSessionService(
	catalog QuestionCatalog,
	history HistoryStore,
	students StudentFinder,
	shared session.SharedQuestionStore,
) *TestSessionService {
	return &TestSessionService{
		sessions: make(map[string]*sessionEntry),
		selector: selection.NewSelector(),
		clock:    session.SystemClock(),
		Catalog:  catalog,
		History:  history,
		Students: students,
		Shared:   shared,
	}
}

type StartTestRequest struct {
	StudentID    string                 `json:"studentId" binding:"required"`
	Mode         session.Mode           `json:"mode" binding:"required,oneof=input card"`
	QuestionMode session.QuestionMode   `json:"questionMode" binding:"omitempty,oneof=random unified"`
	Textbook     string                 `json:"textbook"`
	Types        []selection.TypeConfig `json:"types" binding:"required,dive"`
}

type StartTestResponse struct {
	Questions  []selection.SessionQuestion `json:"questions"`
	Shortfalls []selection.Shortfall       `json:"shortfalls,omitempty"`
	Snapshot   session.Snapshot            `json:"snapshot"`
}

type SessionStateResponse struct {
	Questions []selection.SessionQuestion `json:"questions"`
	Snapshot  session.Snapshot            `json:"snapshot"`
}

type SubmitResponse struct {
	History *model.TestHistory `json:"history"`
	Perfect bool               `json:"perfect"`
}

// Start 开始一次测试。统一出题模式下同班学生共享同一套题目，
// 第一个开考的学生固定题目集合，之后的学生直接复用。
func (s *TestSessionService) Start(ctx context.Context, req *StartTestRequest) (*StartTestResponse, error) {
	student, err := s.Students.FindByID(req.StudentID)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrStudentNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := selection.ValidateConfigs(req.Types); err != nil {
		return nil, err
	}
	if selection.TotalRequested(req.Types) == 0 {
		return nil, util.ErrNoQuestionsSelected
	}

	s.mu.Lock()
	if entry, ok := s.sessions[req.StudentID]; ok && entry.sess.Status() == session.StatusActive {
		s.mu.Unlock()
		return nil, util.ErrSessionInProgress
	}
	s.mu.Unlock()

	var questions []selection.SessionQuestion
	var shortfalls []selection.Shortfall
	cohort := ""

	if req.QuestionMode == session.QuestionsUnified {
		cohort = student.Grade + "/" + student.Class
		questions, shortfalls, err = s.resolveUnified(ctx, cohort, req)
	} else {
		var result *selection.Result
		result, err = s.generate(req)
		if result != nil {
			questions, shortfalls = result.Questions, result.Shortfalls
		}
	}
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, util.ErrNoQuestionsFound
	}

	sess, err := session.New(req.Mode, questions, s.clock)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	// 拿锁期间可能有并发 Start 抢先，后到者放弃
	if entry, ok := s.sessions[req.StudentID]; ok && entry.sess.Status() == session.StatusActive {
		s.mu.Unlock()
		return nil, util.ErrSessionInProgress
	}
	s.sessions[req.StudentID] = &sessionEntry{sess: sess, cohort: cohort}
	s.mu.Unlock()

	monitoring.SessionsStarted.WithLabelValues(string(req.Mode)).Inc()
	logger.Log.Info("test session started",
		zap.String("studentId", req.StudentID),
		zap.String("mode", string(req.Mode)),
		zap.Int("questions", len(questions)))

	return &StartTestResponse{
		Questions:  questions,
		Shortfalls: shortfalls,
		Snapshot:   sess.Snapshot(),
	}, nil
}

// generate 按题型参数从题库抽题
func (s *TestSessionService) generate(req *StartTestRequest) (*selection.Result, error) {
	categories := make([]string, 0, len(req.Types))
	for _, t := range req.Types {
		if t.Count > 0 {
			categories = append(categories, t.Category)
		}
	}

	catalog, err := s.Catalog.Catalog(categories, req.Textbook)
	if err != nil {
		return nil, err
	}

	return s.selector.Generate(req.Types, catalog, req.Textbook), nil
}

// resolveUnified 读取或固定整班共享的题目集合。
// SetIfAbsent 落败说明并发开考的另一个学生先固定了集合，改读对方的。
func (s *TestSessionService) resolveUnified(ctx context.Context, cohort string, req *StartTestRequest) ([]selection.SessionQuestion, []selection.Shortfall, error) {
	existing, found, err := s.Shared.Get(ctx, cohort)
	if err != nil {
		return nil, nil, err
	}
	if found {
		return existing, nil, nil
	}

	result, err := s.generate(req)
	if err != nil {
		return nil, nil, err
	}
	if len(result.Questions) == 0 {
		return nil, nil, nil
	}

	ok, err := s.Shared.SetIfAbsent(ctx, cohort, result.Questions)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		existing, _, err := s.Shared.Get(ctx, cohort)
		if err != nil {
			return nil, nil, err
		}
		if len(existing) > 0 {
			return existing, nil, nil
		}
	}

	return result.Questions, result.Shortfalls, nil
}

type AnswerRequest struct {
	QuestionID uint    `json:"questionId" binding:"required"`
	Text       *string `json:"text,omitempty"`
	Knew       *bool   `json:"knew,omitempty"`
}

// Answer 记录一次作答。翻卡模式下答满全部题目即自动提交。
func (s *TestSessionService) Answer(studentID string, req *AnswerRequest) (*session.Snapshot, *SubmitResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[studentID]
	if !ok {
		return nil, nil, util.ErrSessionNotFound
	}

	var value session.AnswerValue
	switch {
	case req.Text != nil:
		value = session.TextAnswer(*req.Text)
	case req.Knew != nil:
		value = session.FlipAnswer(*req.Knew)
	default:
		return nil, nil, session.ErrWrongAnswerKind
	}

	if err := entry.sess.Answer(req.QuestionID, value); err != nil {
		return nil, nil, err
	}

	if entry.sess.ShouldAutoSubmit() {
		outcome, err := entry.sess.Submit()
		if err != nil {
			return nil, nil, err
		}
		if outcome != nil {
			result := s.finalizeLocked(studentID, entry, outcome, "auto")
			snap := entry.sess.Snapshot()
			return &snap, result, nil
		}
	}

	snap := entry.sess.Snapshot()
	return &snap, nil, nil
}

// Advance 翻卡模式推进到下一张卡片
func (s *TestSessionService) Advance(studentID string) (*session.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[studentID]
	if !ok {
		return nil, util.ErrSessionNotFound
	}
	if err := entry.sess.Advance(); err != nil {
		return nil, err
	}
	snap := entry.sess.Snapshot()
	return &snap, nil
}

// State 当前会话的题目与进度视图
func (s *TestSessionService) State(studentID string) (*SessionStateResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[studentID]
	if !ok {
		return nil, util.ErrSessionNotFound
	}
	return &SessionStateResponse{
		Questions: entry.sess.Questions(),
		Snapshot:  entry.sess.Snapshot(),
	}, nil
}

// Submit 主动交卷
func (s *TestSessionService) Submit(studentID string) (*SubmitResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[studentID]
	if !ok {
		return nil, util.ErrSessionNotFound
	}

	outcome, err := entry.sess.Submit()
	if err != nil {
		return nil, err
	}
	if outcome == nil {
		// 已经提交过，返回归档的结果
		if entry.result != nil {
			return &SubmitResponse{History: entry.result, Perfect: entry.perfect}, nil
		}
		return nil, util.ErrSessionNotFound
	}

	return s.finalizeLocked(studentID, entry, outcome, "manual"), nil
}

// Result 已完成会话的归档结果
func (s *TestSessionService) Result(studentID string) (*SubmitResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[studentID]
	if !ok || entry.result == nil {
		return nil, util.ErrSessionNotFound
	}
	return &SubmitResponse{History: entry.result, Perfect: entry.perfect}, nil
}

// Reset 丢弃该学生的会话（进行中的直接作废，不落历史）
func (s *TestSessionService) Reset(studentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, studentID)
}

// ClearShared 清除某班级的统一题目集合，下次开考重新抽题
func (s *TestSessionService) ClearShared(ctx context.Context, cohort string) error {
	return s.Shared.Clear(ctx, cohort)
}

// Run 倒计时驱动循环，每秒对所有活跃会话 Tick 一次，
// 计时归零的会话被强制提交。随 ctx 取消退出。
func (s *TestSessionService) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tickAll()
		}
	}
}

func (s *TestSessionService) tickAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for studentID, entry := range s.sessions {
		outcome, err := entry.sess.Tick()
		if err != nil {
			logger.Log.Error("session tick failed",
				zap.String("studentId", studentID), zap.Error(err))
			continue
		}
		if outcome != nil {
			s.finalizeLocked(studentID, entry, outcome, "timeout")
		}
	}
}

// finalizeLocked 把提交结果落为历史记录并上报指标。调用方必须持锁。
// 会话本身保证 Submit 至多产出一次 outcome，这里不会重复写历史。
func (s *TestSessionService) finalizeLocked(studentID string, entry *sessionEntry, outcome *session.Outcome, trigger string) *SubmitResponse {
	history := &model.TestHistory{
		StudentID: studentID,
		Date:      outcome.Record.Date,
		Score:     outcome.Record.Score,
		MaxScore:  outcome.Record.MaxScore,
		Mode:      string(outcome.Record.Mode),
	}
	for _, d := range outcome.Record.Details {
		history.Details = append(history.Details, model.TestDetail{
			QuestionID:    d.QuestionID,
			UserAnswer:    d.UserAnswer,
			IsCorrect:     d.IsCorrect,
			Score:         d.Score,
			ElapsedMillis: d.ElapsedMillis,
		})
	}

	if err := s.History.Append(history); err != nil {
		logger.Log.Error("failed to persist test history",
			zap.String("studentId", studentID), zap.Error(err))
	}

	entry.result = history
	entry.perfect = outcome.Perfect

	monitoring.SessionsCompleted.WithLabelValues(string(outcome.Record.Mode), trigger).Inc()
	logger.Log.Info("test session completed",
		zap.String("studentId", studentID),
		zap.String("trigger", trigger),
		zap.Float64("score", outcome.Record.Score),
		zap.Float64("maxScore", outcome.Record.MaxScore))

	return &SubmitResponse{History: history, Perfect: outcome.Perfect}
}
