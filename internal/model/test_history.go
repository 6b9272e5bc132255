package model

import "time"

// TestHistory 一次已完成测试的结果记录，按学生追加，不修改不删除
// swagger:model TestHistory
type TestHistory struct {
	BaseModel
	StudentID string    `gorm:"size:36;index;not null" json:"studentId"`
	Seq       int       `gorm:"not null" json:"seq"` // 同一学生内的序号，从 1 递增
	Date      time.Time `gorm:"not null" json:"date"`
	Score     float64   `gorm:"not null" json:"score"`
	MaxScore  float64   `gorm:"not null" json:"maxScore"`
	Mode      string    `gorm:"size:10" json:"mode"` // input / card

	Details []TestDetail `gorm:"foreignKey:HistoryID" json:"details,omitempty"`
}

func (TestHistory) TableName() string {
	return "test_histories"
}

// TestDetail 单题作答明细
// swagger:model TestDetail
type TestDetail struct {
	BaseModel
	HistoryID     uint    `gorm:"index;not null" json:"-"`
	QuestionID    uint    `gorm:"index;not null" json:"questionId"`
	UserAnswer    string  `gorm:"type:text" json:"userAnswer"`
	IsCorrect     bool    `json:"isCorrect"`
	Score         float64 `json:"score"`
	ElapsedMillis int64   `json:"time"`
}

func (TestDetail) TableName() string {
	return "test_details"
}
