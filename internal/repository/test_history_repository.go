package repository

import (
	"english_lt_backend/internal/model"

	"gorm.io/gorm"
)

type TestHistoryRepository struct {
	DB *gorm.DB
}

func NewTestHistoryRepository(db *gorm.DB) *TestHistoryRepository {
	return &TestHistoryRepository{DB: db}
}

// Append 追加一条测试记录并在同一事务内计算该学生的下一个序号。
// 记录只增不改，Seq 在学生维度内从 1 连续递增。
func (r *TestHistoryRepository) Append(history *model.TestHistory) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var maxSeq int
		err := tx.Model(&model.TestHistory{}).
			Where("student_id = ?", history.StudentID).
			Select("COALESCE(MAX(seq), 0)").
			Scan(&maxSeq).Error
		if err != nil {
			return err
		}

		history.Seq = maxSeq + 1
		return tx.Create(history).Error
	})
}

func (r *TestHistoryRepository) FindByID(id uint) (*model.TestHistory, error) {
	var history model.TestHistory
	err := r.DB.Preload("Details").First(&history, id).Error
	return &history, err
}

func (r *TestHistoryRepository) ListByStudent(studentID string) ([]model.TestHistory, error) {
	var histories []model.TestHistory
	err := r.DB.Preload("Details").
		Where("student_id = ?", studentID).
		Order("seq asc").
		Find(&histories).Error
	return histories, err
}

// ListByStudents 批量取多个学生的全部记录，班级分析用
func (r *TestHistoryRepository) ListByStudents(studentIDs []string) ([]model.TestHistory, error) {
	if len(studentIDs) == 0 {
		return nil, nil
	}
	var histories []model.TestHistory
	err := r.DB.Preload("Details").
		Where("student_id IN ?", studentIDs).
		Order("student_id asc, seq asc").
		Find(&histories).Error
	return histories, err
}

func (r *TestHistoryRepository) CountByStudent(studentID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.TestHistory{}).
		Where("student_id = ?", studentID).
		Count(&count).Error
	return count, err
}
