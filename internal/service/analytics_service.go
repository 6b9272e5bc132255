package service

import (
	"sort"

	"english_lt_backend/internal/model"
	"english_lt_backend/internal/repository"
	"english_lt_backend/internal/util"

	"gorm.io/gorm"
)

type AnalyticsService struct {
	StudentRepo  *repository.StudentRepository
	HistoryRepo  *repository.TestHistoryRepository
	QuestionRepo *repository.QuestionRepository
}

func NewAnalyticsService(
	studentRepo *repository.StudentRepository,
	historyRepo *repository.TestHistoryRepository,
	questionRepo *repository.QuestionRepository,
) *AnalyticsService {
	return &AnalyticsService{
		StudentRepo:  studentRepo,
		HistoryRepo:  historyRepo,
		QuestionRepo: questionRepo,
	}
}

// TrendPoint 单次测试在成绩走势图上的一个点
type TrendPoint struct {
	Seq        int     `json:"seq"`
	Date       string  `json:"date"`
	Score      float64 `json:"score"`
	MaxScore   float64 `json:"maxScore"`
	Percentage float64 `json:"percentage"`
	Mode       string  `json:"mode"`
}

// AccuracyStat 某个维度（题型、知识点、能力）上的正确率
type AccuracyStat struct {
	Name     string  `json:"name"`
	Correct  int     `json:"correct"`
	Total    int     `json:"total"`
	Accuracy float64 `json:"accuracy"`
}

// MistakeItem 错题本条目
type MistakeItem struct {
	QuestionID uint   `json:"questionId"`
	Category   string `json:"category"`
	Prompt     string `json:"prompt"`
	Answer     string `json:"answer"`
	UserAnswer string `json:"userAnswer"`
	KeyPoint   string `json:"keyPoint"`
	Ability    string `json:"ability"`
	Times      int    `json:"times"` // 累计答错次数
}

// StudentReport 学生个人学情报告
type StudentReport struct {
	Student          *model.Student `json:"student"`
	TestCount        int            `json:"testCount"`
	AveragePercent   float64        `json:"averagePercent"`
	Trend            []TrendPoint   `json:"trend"`
	CategoryAccuracy []AccuracyStat `json:"categoryAccuracy"`
	KeyPointAccuracy []AccuracyStat `json:"keyPointAccuracy"`
	AbilityAccuracy  []AccuracyStat `json:"abilityAccuracy"`
}

func percentage(score, maxScore float64) float64 {
	if maxScore <= 0 {
		return 0
	}
	return score / maxScore * 100
}

// StudentReport 汇总单个学生的全部测试记录
func (s *AnalyticsService) StudentReport(studentID string) (*StudentReport, error) {
	student, err := s.StudentRepo.FindByID(studentID)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrStudentNotFound
	}
	if err != nil {
		return nil, err
	}

	histories, err := s.HistoryRepo.ListByStudent(studentID)
	if err != nil {
		return nil, err
	}

	report := &StudentReport{
		Student:   student,
		TestCount: len(histories),
		Trend:     make([]TrendPoint, 0, len(histories)),
	}

	sumPercent := 0.0
	for _, h := range histories {
		p := percentage(h.Score, h.MaxScore)
		sumPercent += p
		report.Trend = append(report.Trend, TrendPoint{
			Seq:        h.Seq,
			Date:       h.Date.Format(util.DateFormat),
			Score:      h.Score,
			MaxScore:   h.MaxScore,
			Percentage: p,
			Mode:       h.Mode,
		})
	}
	if len(histories) > 0 {
		report.AveragePercent = sumPercent / float64(len(histories))
	}

	questions, err := s.questionIndex(histories)
	if err != nil {
		return nil, err
	}

	category := map[string]*AccuracyStat{}
	keyPoint := map[string]*AccuracyStat{}
	ability := map[string]*AccuracyStat{}

	for _, h := range histories {
		for _, d := range h.Details {
			q, ok := questions[d.QuestionID]
			if !ok {
				continue
			}
			bump(category, q.Category, d.IsCorrect)
			if q.KeyPoint != "" {
				bump(keyPoint, q.KeyPoint, d.IsCorrect)
			}
			if q.Ability != "" {
				bump(ability, q.Ability, d.IsCorrect)
			}
		}
	}

	report.CategoryAccuracy = collectStats(category)
	report.KeyPointAccuracy = collectStats(keyPoint)
	report.AbilityAccuracy = collectStats(ability)
	return report, nil
}

// Mistakes 学生错题本，同一题多次答错合并计次，可按题型过滤
func (s *AnalyticsService) Mistakes(studentID, category string) ([]MistakeItem, error) {
	if _, err := s.StudentRepo.FindByID(studentID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrStudentNotFound
		}
		return nil, err
	}

	histories, err := s.HistoryRepo.ListByStudent(studentID)
	if err != nil {
		return nil, err
	}

	questions, err := s.questionIndex(histories)
	if err != nil {
		return nil, err
	}

	byQuestion := map[uint]*MistakeItem{}
	for _, h := range histories {
		for _, d := range h.Details {
			if d.IsCorrect {
				continue
			}
			item, ok := byQuestion[d.QuestionID]
			if !ok {
				q, found := questions[d.QuestionID]
				if !found {
					continue
				}
				if category != "" && q.Category != category {
					continue
				}
				item = &MistakeItem{
					QuestionID: d.QuestionID,
					Category:   q.Category,
					Prompt:     q.Prompt,
					Answer:     q.Answer,
					KeyPoint:   q.KeyPoint,
					Ability:    q.Ability,
				}
				byQuestion[d.QuestionID] = item
			}
			item.Times++
			item.UserAnswer = d.UserAnswer
		}
	}

	items := make([]MistakeItem, 0, len(byQuestion))
	for _, item := range byQuestion {
		items = append(items, *item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Times != items[j].Times {
			return items[i].Times > items[j].Times
		}
		return items[i].QuestionID < items[j].QuestionID
	})
	return items, nil
}

// ClassStat 班级维度的汇总
type ClassStat struct {
	Grade          string         `json:"grade"`
	Class          string         `json:"class"`
	StudentCount   int            `json:"studentCount"`
	TestCount      int            `json:"testCount"`
	AveragePercent float64        `json:"averagePercent"`
	Ranking        []StudentScore `json:"ranking"`
}

// StudentScore 班级排名中的一行
type StudentScore struct {
	StudentID      string  `json:"studentId"`
	Name           string  `json:"name"`
	TestCount      int     `json:"testCount"`
	AveragePercent float64 `json:"averagePercent"`
}

// ClassReport 按班级汇总平均分并给出学生排名
func (s *AnalyticsService) ClassReport(grade, class string) (*ClassStat, error) {
	students, err := s.StudentRepo.ListByClass(grade, class)
	if err != nil {
		return nil, err
	}

	stat := &ClassStat{
		Grade:        grade,
		Class:        class,
		StudentCount: len(students),
		Ranking:      make([]StudentScore, 0, len(students)),
	}
	if len(students) == 0 {
		return stat, nil
	}

	ids := make([]string, 0, len(students))
	names := make(map[string]string, len(students))
	for _, st := range students {
		ids = append(ids, st.ID)
		names[st.ID] = st.Name
	}

	histories, err := s.HistoryRepo.ListByStudents(ids)
	if err != nil {
		return nil, err
	}

	perStudent := map[string]*StudentScore{}
	classSum := 0.0
	for _, h := range histories {
		p := percentage(h.Score, h.MaxScore)
		classSum += p
		stat.TestCount++

		row, ok := perStudent[h.StudentID]
		if !ok {
			row = &StudentScore{StudentID: h.StudentID, Name: names[h.StudentID]}
			perStudent[h.StudentID] = row
		}
		row.TestCount++
		row.AveragePercent += p
	}
	if stat.TestCount > 0 {
		stat.AveragePercent = classSum / float64(stat.TestCount)
	}

	for _, st := range students {
		row, ok := perStudent[st.ID]
		if !ok {
			stat.Ranking = append(stat.Ranking, StudentScore{StudentID: st.ID, Name: st.Name})
			continue
		}
		row.AveragePercent /= float64(row.TestCount)
		stat.Ranking = append(stat.Ranking, *row)
	}
	sort.Slice(stat.Ranking, func(i, j int) bool {
		return stat.Ranking[i].AveragePercent > stat.Ranking[j].AveragePercent
	})
	return stat, nil
}

// HistoryContext 取一条测试记录关联的学生、题目和作答明细，供 AI 分析组装提示词
func (s *AnalyticsService) HistoryContext(historyID uint) (*model.Student, []model.Question, []model.TestDetail, error) {
	history, err := s.HistoryRepo.FindByID(historyID)
	if err != nil {
		return nil, nil, nil, err
	}

	student, err := s.StudentRepo.FindByID(history.StudentID)
	if err != nil {
		return nil, nil, nil, err
	}

	index, err := s.questionIndex([]model.TestHistory{*history})
	if err != nil {
		return nil, nil, nil, err
	}
	questions := make([]model.Question, 0, len(index))
	for _, q := range index {
		questions = append(questions, q)
	}

	return student, questions, history.Details, nil
}

// questionIndex 把历史明细涉及的题目一次性查出来建索引
func (s *AnalyticsService) questionIndex(histories []model.TestHistory) (map[uint]model.Question, error) {
	idSet := map[uint]bool{}
	for _, h := range histories {
		for _, d := range h.Details {
			idSet[d.QuestionID] = true
		}
	}
	if len(idSet) == 0 {
		return map[uint]model.Question{}, nil
	}

	ids := make([]uint, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	var questions []model.Question
	if err := s.QuestionRepo.DB.Where("id IN ?", ids).Find(&questions).Error; err != nil {
		return nil, err
	}

	index := make(map[uint]model.Question, len(questions))
	for _, q := range questions {
		index[q.ID] = q
	}
	return index, nil
}

func bump(stats map[string]*AccuracyStat, name string, correct bool) {
	st, ok := stats[name]
	if !ok {
		st = &AccuracyStat{Name: name}
		stats[name] = st
	}
	st.Total++
	if correct {
		st.Correct++
	}
}

func collectStats(stats map[string]*AccuracyStat) []AccuracyStat {
	out := make([]AccuracyStat, 0, len(stats))
	for _, st := range stats {
		if st.Total > 0 {
			st.Accuracy = float64(st.Correct) / float64(st.Total) * 100
		}
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
