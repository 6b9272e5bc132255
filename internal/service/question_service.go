package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"time"

	"english_lt_backend/internal/model"
	"english_lt_backend/internal/repository"
	"english_lt_backend/internal/util"
	"english_lt_backend/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type QuestionService struct {
	QuestionRepo *repository.QuestionRepository
	Storage      *StorageService
}

func NewQuestionService(questionRepo *repository.QuestionRepository, storage *StorageService) *QuestionService {
	return &QuestionService{
		QuestionRepo: questionRepo,
		Storage:      storage,
	}
}

type QuestionRequest struct {
	Category string `json:"category" binding:"required,oneof=word phrase sentence grammar"`
	Prompt   string `json:"prompt" binding:"required"`
	Answer   string `json:"answer" binding:"required"`
	Hint     string `json:"hint"`
	Textbook string `json:"textbook"`
	KeyPoint string `json:"keyPoint"`
	Ability  string `json:"ability"`
}

func (s *QuestionService) Create(req *QuestionRequest) (*model.Question, error) {
	q := &model.Question{
		Category: req.Category,
		Prompt:   req.Prompt,
		Answer:   req.Answer,
		Hint:     req.Hint,
		Textbook: req.Textbook,
		KeyPoint: req.KeyPoint,
		Ability:  req.Ability,
	}
	if err := s.QuestionRepo.Create(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuestionService) Get(id uint) (*model.Question, error) {
	q, err := s.QuestionRepo.FindByID(id)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrQuestionNotFound
	}
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuestionService) Update(id uint, req *QuestionRequest) (*model.Question, error) {
	q, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	q.Category = req.Category
	q.Prompt = req.Prompt
	q.Answer = req.Answer
	q.Hint = req.Hint
	q.Textbook = req.Textbook
	q.KeyPoint = req.KeyPoint
	q.Ability = req.Ability

	if err := s.QuestionRepo.Update(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuestionService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.QuestionRepo.Delete(id)
}

func (s *QuestionService) List(page, limit int, category, textbook, keyword string) ([]model.Question, int64, error) {
	return s.QuestionRepo.List(page, limit, category, textbook, keyword)
}

func (s *QuestionService) Textbooks() ([]string, error) {
	return s.QuestionRepo.ListTextbooks()
}

func (s *QuestionService) CountByCategory() (map[string]int64, error) {
	return s.QuestionRepo.CountByCategory()
}

// Import 批量导入 JSON 题目文件，原始文件归档到对象存储
func (s *QuestionService) Import(ctx context.Context, file *multipart.FileHeader) (int, error) {
	src, err := file.Open()
	if err != nil {
		return 0, err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return 0, err
	}

	var reqs []QuestionRequest
	if err := json.Unmarshal(data, &reqs); err != nil {
		return 0, fmt.Errorf("导入文件格式错误: %w", err)
	}

	questions := make([]model.Question, 0, len(reqs))
	for _, r := range reqs {
		if r.Category == "" || r.Prompt == "" || r.Answer == "" {
			continue
		}
		questions = append(questions, model.Question{
			Category: r.Category,
			Prompt:   r.Prompt,
			Answer:   r.Answer,
			Hint:     r.Hint,
			Textbook: r.Textbook,
			KeyPoint: r.KeyPoint,
			Ability:  r.Ability,
		})
	}

	if err := s.QuestionRepo.BatchCreate(questions); err != nil {
		return 0, err
	}

	// 归档失败不影响导入结果，但要留日志
	archiveName := fmt.Sprintf("imports/%s_%s%s",
		time.Now().Format("20060102"), uuid.New().String(), filepath.Ext(file.Filename))
	if src2, err := file.Open(); err != nil {
		logger.Log.Warn("failed to archive import file",
			zap.String("object", archiveName), zap.Error(err))
	} else {
		defer src2.Close()
		if _, err := s.Storage.Upload(ctx, archiveName, src2, file.Size, "application/json"); err != nil {
			logger.Log.Warn("failed to archive import file",
				zap.String("object", archiveName), zap.Error(err))
		}
	}

	return len(questions), nil
}
