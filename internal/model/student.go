package model

// swagger:model Student
type Student struct {
	UUIDBase
	Name  string `gorm:"size:100;not null" json:"name"`
	Grade string `gorm:"size:50;index" json:"grade"`
	Class string `gorm:"size:50;index" json:"class"`

	TestHistories []TestHistory `gorm:"foreignKey:StudentID" json:"testHistory,omitempty"`
}

func (Student) TableName() string {
	return "students"
}
