package service

import (
	"english_lt_backend/internal/model"
	"english_lt_backend/internal/repository"
	"english_lt_backend/internal/util"

	"gorm.io/gorm"
)

type StudentService struct {
	StudentRepo *repository.StudentRepository
	HistoryRepo *repository.TestHistoryRepository
}

func NewStudentService(studentRepo *repository.StudentRepository, historyRepo *repository.TestHistoryRepository) *StudentService {
	return &StudentService{
		StudentRepo: studentRepo,
		HistoryRepo: historyRepo,
	}
}

type CreateStudentRequest struct {
	Name  string `json:"name" binding:"required"`
	Grade string `json:"grade"`
	Class string `json:"class"`
}

type UpdateStudentRequest struct {
	Name  string `json:"name"`
	Grade string `json:"grade"`
	Class string `json:"class"`
}

func (s *StudentService) Create(req *CreateStudentRequest) (*model.Student, error) {
	student := &model.Student{
		Name:  req.Name,
		Grade: req.Grade,
		Class: req.Class,
	}
	if err := s.StudentRepo.Create(student); err != nil {
		return nil, err
	}
	return student, nil
}

func (s *StudentService) Get(id string) (*model.Student, error) {
	student, err := s.StudentRepo.FindByID(id)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrStudentNotFound
	}
	if err != nil {
		return nil, err
	}
	return student, nil
}

func (s *StudentService) Update(id string, req *UpdateStudentRequest) (*model.Student, error) {
	student, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		student.Name = req.Name
	}
	if req.Grade != "" {
		student.Grade = req.Grade
	}
	if req.Class != "" {
		student.Class = req.Class
	}

	if err := s.StudentRepo.Update(student); err != nil {
		return nil, err
	}
	return student, nil
}

func (s *StudentService) Delete(id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.StudentRepo.Delete(id)
}

func (s *StudentService) List(page, limit int, grade, class, name string) ([]model.Student, int64, error) {
	return s.StudentRepo.List(page, limit, grade, class, name)
}

// History 某学生的全部测试记录，按序号升序
func (s *StudentService) History(studentID string) ([]model.TestHistory, error) {
	if _, err := s.Get(studentID); err != nil {
		return nil, err
	}
	return s.HistoryRepo.ListByStudent(studentID)
}
