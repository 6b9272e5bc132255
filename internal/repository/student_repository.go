package repository

import (
	"english_lt_backend/internal/model"

	"gorm.io/gorm"
)

type StudentRepository struct {
	DB *gorm.DB
}

func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{DB: db}
}

func (r *StudentRepository) Create(student *model.Student) error {
	return r.DB.Create(student).Error
}

func (r *StudentRepository) FindByID(id string) (*model.Student, error) {
	var student model.Student
	err := r.DB.First(&student, "id = ?", id).Error
	return &student, err
}

func (r *StudentRepository) Update(student *model.Student) error {
	return r.DB.Save(student).Error
}

func (r *StudentRepository) Delete(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var historyIDs []uint
		if err := tx.Model(&model.TestHistory{}).Where("student_id = ?", id).Pluck("id", &historyIDs).Error; err != nil {
			return err
		}
		if len(historyIDs) > 0 {
			if err := tx.Where("history_id IN ?", historyIDs).Delete(&model.TestDetail{}).Error; err != nil {
				return err
			}
			if err := tx.Where("student_id = ?", id).Delete(&model.TestHistory{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&model.Student{}, "id = ?", id).Error
	})
}

func (r *StudentRepository) List(page, limit int, grade, class, name string) ([]model.Student, int64, error) {
	query := r.DB.Model(&model.Student{})

	if grade != "" {
		query = query.Where("grade = ?", grade)
	}
	if class != "" {
		query = query.Where("class = ?", class)
	}
	if name != "" {
		query = query.Where("name LIKE ?", "%"+name+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var students []model.Student
	if limit > 0 {
		offset := (page - 1) * limit
		query = query.Offset(offset).Limit(limit)
	}
	err := query.Order("created_at asc").Find(&students).Error
	return students, total, err
}

// ListByClass 取同班全部学生，统一出题和班级分析用
func (r *StudentRepository) ListByClass(grade, class string) ([]model.Student, error) {
	var students []model.Student
	err := r.DB.Where("grade = ? AND class = ?", grade, class).Find(&students).Error
	return students, err
}
