package repository

import (
	"english_lt_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) Create(question *model.Question) error {
	return r.DB.Create(question).Error
}

func (r *QuestionRepository) BatchCreate(questions []model.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return r.DB.CreateInBatches(questions, 100).Error
}

func (r *QuestionRepository) FindByID(id uint) (*model.Question, error) {
	var q model.Question
	err := r.DB.First(&q, id).Error
	return &q, err
}

func (r *QuestionRepository) Update(question *model.Question) error {
	return r.DB.Save(question).Error
}

func (r *QuestionRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Question{}, id).Error
}

func (r *QuestionRepository) List(page, limit int, category, textbook, keyword string) ([]model.Question, int64, error) {
	query := r.DB.Model(&model.Question{})

	if category != "" {
		query = query.Where("category = ?", category)
	}
	if textbook != "" && textbook != model.TextbookAll {
		query = query.Where("textbook = ?", textbook)
	}
	if keyword != "" {
		query = query.Where("prompt LIKE ? OR answer LIKE ?", "%"+keyword+"%", "%"+keyword+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var questions []model.Question
	if limit > 0 {
		offset := (page - 1) * limit
		query = query.Offset(offset).Limit(limit)
	}
	err := query.Order("id asc").Find(&questions).Error
	return questions, total, err
}

// Catalog 取抽题候选集，一次全量读出后在内存中抽取
func (r *QuestionRepository) Catalog(categories []string, textbook string) ([]model.Question, error) {
	query := r.DB.Model(&model.Question{})
	if len(categories) > 0 {
		query = query.Where("category IN ?", categories)
	}
	if textbook != "" && textbook != model.TextbookAll {
		query = query.Where("textbook = ?", textbook)
	}

	var questions []model.Question
	err := query.Find(&questions).Error
	return questions, err
}

// ListTextbooks 题库中出现过的教材名，去重
func (r *QuestionRepository) ListTextbooks() ([]string, error) {
	var textbooks []string
	err := r.DB.Model(&model.Question{}).
		Where("textbook <> ''").
		Distinct("textbook").
		Order("textbook asc").
		Pluck("textbook", &textbooks).Error
	return textbooks, err
}

func (r *QuestionRepository) CountByCategory() (map[string]int64, error) {
	type row struct {
		Category string
		Count    int64
	}
	var rows []row
	err := r.DB.Model(&model.Question{}).
		Select("category, COUNT(*) as count").
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Category] = r.Count
	}
	return counts, nil
}
