package util

import "errors"

var (
	ErrEmailRegistered    = errors.New("该邮箱已被注册")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrStudentNotFound    = errors.New("student not found")
	ErrQuestionNotFound   = errors.New("question not found")

	// 测试会话相关
	ErrNoQuestionsSelected = errors.New("请至少选择一道题目")
	ErrNoQuestionsFound    = errors.New("没有找到符合条件的题目")
	ErrSessionInProgress   = errors.New("该学生已有进行中的测试")
	ErrSessionNotFound     = errors.New("没有进行中的测试会话")
)
