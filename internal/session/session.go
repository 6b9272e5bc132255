// Package session 实现一次测试的状态机：题目顺序、倒计时、作答与提交
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"english_lt_backend/internal/grading"
	"english_lt_backend/internal/selection"
)

type Mode string

const (
	ModeInput Mode = "input" // 输入模式：自由作答，提交时统一判分
	ModeCard  Mode = "card"  // 翻卡模式：逐题计时，作答即计分
)

type QuestionMode string

const (
	QuestionsRandom  QuestionMode = "random"
	QuestionsUnified QuestionMode = "unified"
)

type Status string

const (
	StatusConfiguring Status = "configuring"
	StatusActive      Status = "active"
	StatusCompleted   Status = "completed"
)

var (
	ErrNoQuestions          = errors.New("no questions in session")
	ErrSessionNotActive     = errors.New("session not active")
	ErrQuestionNotInSession = errors.New("question not in session")
	ErrWrongAnswerKind      = errors.New("answer kind does not match session mode")
	ErrNotCurrentQuestion   = errors.New("only the current card can be answered")
	ErrNotCardMode          = errors.New("operation only valid in card mode")
)

// Detail 提交后单题的判分明细
type Detail struct {
	QuestionID    uint
	UserAnswer    string
	IsCorrect     bool
	Score         float64
	ElapsedMillis int64
}

// Record 提交产出的测试记录，交给历史存储后由对方持有（传值）
type Record struct {
	Date     time.Time
	Mode     Mode
	Score    float64
	MaxScore float64
	Details  []Detail
}

// Outcome 一次成功提交的结果
type Outcome struct {
	Record  Record
	Perfect bool
}

// Snapshot 暴露给展示层的会话视图
type Snapshot struct {
	Status           Status  `json:"status"`
	Mode             Mode    `json:"mode"`
	CurrentIndex     int     `json:"currentIndex"`
	RemainingSeconds int     `json:"remainingSeconds"`
	CurrentScore     float64 `json:"currentScore"`
	MaxPossibleScore float64 `json:"maxPossibleScore"`
	QuestionCount    int     `json:"questionCount"`
	AnsweredCount    int     `json:"answeredCount"`
}

// Session 一次测试，从开始到提交。非并发安全，由宿主串行驱动。
type Session struct {
	mode      Mode
	questions []selection.SessionQuestion
	answers   map[uint]Answer
	flipped   map[uint]bool

	currentIndex     int
	remainingSeconds int
	maxPossibleScore float64

	status            Status
	startedAt         time.Time
	questionStartedAt time.Time

	clock      Clock
	submitting bool
	submitted  bool

	// grade 默认指向 gradeQuestion，测试可替换以驱动判分失败路径
	grade func(selection.SessionQuestion) Detail
}

// New 用已抽取的题目创建活跃会话。
// 总时长为各题限时之和，满分为各题分值之和，开始后均不再变化。
func New(mode Mode, questions []selection.SessionQuestion, clock Clock) (*Session, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	if clock == nil {
		clock = SystemClock()
	}

	totalTime := 0
	maxScore := 0.0
	for _, q := range questions {
		totalTime += q.TimeLimitSeconds
		maxScore += q.PointValue
	}

	now := clock.Now()
	s := &Session{
		mode:              mode,
		questions:         questions,
		answers:           make(map[uint]Answer, len(questions)),
		flipped:           make(map[uint]bool, len(questions)),
		remainingSeconds:  totalTime,
		maxPossibleScore:  maxScore,
		status:            StatusActive,
		startedAt:         now,
		questionStartedAt: now,
		clock:             clock,
	}
	s.grade = s.gradeQuestion
	return s, nil
}

func (s *Session) Mode() Mode                { return s.mode }
func (s *Session) Status() Status            { return s.status }
func (s *Session) CurrentIndex() int         { return s.currentIndex }
func (s *Session) RemainingSeconds() int     { return s.remainingSeconds }
func (s *Session) MaxPossibleScore() float64 { return s.maxPossibleScore }

// Questions 返回会话题目的有序副本
func (s *Session) Questions() []selection.SessionQuestion {
	out := make([]selection.SessionQuestion, len(s.questions))
	copy(out, s.questions)
	return out
}

// CurrentScore 已作答题目的累计得分（输入模式在提交前恒为 0）
func (s *Session) CurrentScore() float64 {
	total := 0.0
	for _, a := range s.answers {
		total += a.Score
	}
	return total
}

// Flipped 翻卡模式下某题是否已翻开
func (s *Session) Flipped(questionID uint) bool {
	return s.flipped[questionID]
}

// Snapshot 当前会话视图
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Status:           s.status,
		Mode:             s.mode,
		CurrentIndex:     s.currentIndex,
		RemainingSeconds: s.remainingSeconds,
		CurrentScore:     s.CurrentScore(),
		MaxPossibleScore: s.maxPossibleScore,
		QuestionCount:    len(s.questions),
		AnsweredCount:    len(s.answers),
	}
}

// Answer 记录一次作答。活跃期内重答同一题为整体覆盖，提交后拒绝。
// 输入模式记录原始文本且不推进题目；翻卡模式只接受当前题，
// 按本题参数即时计分并标记翻开。
func (s *Session) Answer(questionID uint, value AnswerValue) error {
	if s.status != StatusActive {
		return ErrSessionNotActive
	}

	q, ok := s.findQuestion(questionID)
	if !ok {
		return ErrQuestionNotInSession
	}

	switch s.mode {
	case ModeInput:
		if value.kind != kindText {
			return ErrWrongAnswerKind
		}
		s.answers[questionID] = Answer{Value: value}
		return nil

	case ModeCard:
		if value.kind != kindFlip {
			return ErrWrongAnswerKind
		}
		if s.questions[s.currentIndex].ID != questionID {
			return ErrNotCurrentQuestion
		}
		elapsed := s.clock.Now().Sub(s.questionStartedAt).Milliseconds()
		score := grading.Score(elapsed, q.PointValue, value.knew, q.TimeLimitSeconds, q.MinTimeSeconds)
		s.answers[questionID] = Answer{Value: value, ElapsedMillis: elapsed, Score: score}
		s.flipped[questionID] = true
		return nil

	default:
		return fmt.Errorf("unknown session mode %q", s.mode)
	}
}

// Advance 翻卡模式推进到下一题并重置单题计时起点。索引只增不减。
func (s *Session) Advance() error {
	if s.mode != ModeCard {
		return ErrNotCardMode
	}
	if s.status != StatusActive {
		return ErrSessionNotActive
	}
	if s.currentIndex < len(s.questions)-1 {
		s.currentIndex++
		s.questionStartedAt = s.clock.Now()
	}
	return nil
}

// AllAnswered 所有题目均已有作答记录
func (s *Session) AllAnswered() bool {
	return len(s.answers) == len(s.questions)
}

// ShouldAutoSubmit 翻卡模式下答满即触发自动提交
func (s *Session) ShouldAutoSubmit() bool {
	return s.mode == ModeCard && s.status == StatusActive && s.AllAnswered()
}

// Tick 倒计时减一秒；归零时强制提交并返回结果。非活跃状态为空操作。
func (s *Session) Tick() (*Outcome, error) {
	if s.status != StatusActive || s.remainingSeconds <= 0 {
		return nil, nil
	}
	s.remainingSeconds--
	if s.remainingSeconds == 0 {
		return s.Submit()
	}
	return nil, nil
}

// Submit 判分并结束会话。幂等：计时归零和答满两个触发源竞争时，
// 副作用至多执行一次，后到的调用是空操作。
// 判分阶段的意外 panic 在此边界捕获：会话保持活跃、进行中标志清除，
// 错误上抛给调用方，可以重试。
func (s *Session) Submit() (outcome *Outcome, err error) {
	if s.submitted || s.submitting {
		return nil, nil
	}
	s.submitting = true

	defer func() {
		if r := recover(); r != nil {
			s.submitting = false
			outcome = nil
			err = fmt.Errorf("submit failed: %v", r)
		}
	}()

	record := Record{
		Date:     s.clock.Now(),
		Mode:     s.mode,
		MaxScore: s.maxPossibleScore,
		Details:  make([]Detail, 0, len(s.questions)),
	}

	total := 0.0
	for _, q := range s.questions {
		detail := s.grade(q)
		total += detail.Score
		record.Details = append(record.Details, detail)
	}
	record.Score = total

	s.status = StatusCompleted
	s.submitted = true
	s.submitting = false

	return &Outcome{
		Record:  record,
		Perfect: total == s.maxPossibleScore,
	}, nil
}

// gradeQuestion 输入模式用答案比对器判对错、对则得满分值；
// 翻卡模式沿用作答时算好的衰减得分
func (s *Session) gradeQuestion(q selection.SessionQuestion) Detail {
	ans, answered := s.answers[q.ID]

	detail := Detail{QuestionID: q.ID}

	switch s.mode {
	case ModeInput:
		text := ""
		if answered {
			text = strings.TrimSpace(ans.Value.text)
		}
		detail.UserAnswer = text
		detail.IsCorrect = grading.IsCorrectAnswer(text, q.AnswerAlternatives())
		if detail.IsCorrect {
			detail.Score = q.PointValue
		}

	case ModeCard:
		knew := answered && ans.Value.knew
		if knew {
			detail.UserAnswer = "正确"
		} else {
			detail.UserAnswer = "错误"
		}
		detail.IsCorrect = knew
		detail.Score = ans.Score
		detail.ElapsedMillis = ans.ElapsedMillis
	}

	return detail
}

func (s *Session) findQuestion(id uint) (selection.SessionQuestion, bool) {
	for _, q := range s.questions {
		if q.ID == id {
			return q, true
		}
	}
	return selection.SessionQuestion{}, false
}
