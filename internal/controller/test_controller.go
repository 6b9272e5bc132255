package controller

import (
	"errors"

	"english_lt_backend/internal/service"
	"english_lt_backend/internal/session"
	"english_lt_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TestController struct {
	TestService *service.TestSessionService
}

func NewTestController(testService *service.TestSessionService) *TestController {
	return &TestController{TestService: testService}
}

// Start godoc
// @Summary 开始测试
// @Description 按题型配置抽题并创建会话。统一出题模式下同班学生共享同一套题目。
// @Tags 测试
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.StartTestRequest true "测试配置"
// @Success 200 {object} util.Response{data=service.StartTestResponse} "成功"
// @Failure 400 {object} util.Response "配置无效或没有可用题目"
// @Failure 404 {object} util.Response "学生不存在"
// @Failure 409 {object} util.Response "该学生已有进行中的测试"
// @Router /api/tests/start [post]
func (c *TestController) Start(ctx *gin.Context) {
	var req service.StartTestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resp, err := c.TestService.Start(ctx.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrStudentNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrSessionInProgress):
			util.Conflict(ctx, err.Error())
		case errors.Is(err, util.ErrNoQuestionsSelected), errors.Is(err, util.ErrNoQuestionsFound):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, resp)
}

// Answer godoc
// @Summary 提交单题作答
// @Description 输入模式记录文本答案；翻卡模式记录自评并即时计分，答满自动交卷
// @Tags 测试
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   studentId path string true "学生ID"
// @Param   body body service.AnswerRequest true "作答内容"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 400 {object} util.Response "作答无效"
// @Failure 404 {object} util.Response "没有进行中的测试会话"
// @Router /api/tests/{studentId}/answer [post]
func (c *TestController) Answer(ctx *gin.Context) {
	var req service.AnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	snap, done, err := c.TestService.Answer(ctx.Param("studentId"), &req)
	if err != nil {
		c.answerError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"snapshot": snap,
		"result":   done,
	})
}

func (c *TestController) answerError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrSessionNotFound):
		util.NotFound(ctx)
	case errors.Is(err, session.ErrSessionNotActive),
		errors.Is(err, session.ErrQuestionNotInSession),
		errors.Is(err, session.ErrWrongAnswerKind),
		errors.Is(err, session.ErrNotCurrentQuestion),
		errors.Is(err, session.ErrNotCardMode):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// Advance godoc
// @Summary 翻卡模式切换到下一题
// @Tags 测试
// @Produce  json
// @Security ApiKeyAuth
// @Param   studentId path string true "学生ID"
// @Success 200 {object} util.Response{data=session.Snapshot} "成功"
// @Failure 400 {object} util.Response "非翻卡模式或会话已结束"
// @Failure 404 {object} util.Response "没有进行中的测试会话"
// @Router /api/tests/{studentId}/advance [post]
func (c *TestController) Advance(ctx *gin.Context) {
	snap, err := c.TestService.Advance(ctx.Param("studentId"))
	if err != nil {
		c.answerError(ctx, err)
		return
	}
	util.Success(ctx, snap)
}

// State godoc
// @Summary 会话当前状态
// @Description 返回题目列表与进度快照，页面刷新后恢复用
// @Tags 测试
// @Produce  json
// @Security ApiKeyAuth
// @Param   studentId path string true "学生ID"
// @Success 200 {object} util.Response{data=service.SessionStateResponse} "成功"
// @Failure 404 {object} util.Response "没有进行中的测试会话"
// @Router /api/tests/{studentId} [get]
func (c *TestController) State(ctx *gin.Context) {
	state, err := c.TestService.State(ctx.Param("studentId"))
	if err != nil {
		if errors.Is(err, util.ErrSessionNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, state)
}

// Submit godoc
// @Summary 交卷
// @Description 判分、落历史记录并结束会话。重复交卷返回已归档的结果。
// @Tags 测试
// @Produce  json
// @Security ApiKeyAuth
// @Param   studentId path string true "学生ID"
// @Success 200 {object} util.Response{data=service.SubmitResponse} "成功"
// @Failure 404 {object} util.Response "没有进行中的测试会话"
// @Router /api/tests/{studentId}/submit [post]
func (c *TestController) Submit(ctx *gin.Context) {
	result, err := c.TestService.Submit(ctx.Param("studentId"))
	if err != nil {
		if errors.Is(err, util.ErrSessionNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, result)
}

// Result godoc
// @Summary 已完成测试的结果
// @Tags 测试
// @Produce  json
// @Security ApiKeyAuth
// @Param   studentId path string true "学生ID"
// @Success 200 {object} util.Response{data=service.SubmitResponse} "成功"
// @Failure 404 {object} util.Response "没有已完成的测试"
// @Router /api/tests/{studentId}/result [get]
func (c *TestController) Result(ctx *gin.Context) {
	result, err := c.TestService.Result(ctx.Param("studentId"))
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, result)
}

// Reset godoc
// @Summary 作废当前会话
// @Description 丢弃该学生的会话，进行中的不落历史记录
// @Tags 测试
// @Produce  json
// @Security ApiKeyAuth
// @Param   studentId path string true "学生ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/tests/{studentId}/reset [post]
func (c *TestController) Reset(ctx *gin.Context) {
	c.TestService.Reset(ctx.Param("studentId"))
	util.Success(ctx, nil)
}

type ClearSharedRequest struct {
	Grade string `json:"grade" binding:"required"`
	Class string `json:"class" binding:"required"`
}

// ClearShared godoc
// @Summary 清除班级统一题目集合
// @Description 老师操作，清除后该班下次开考重新抽题
// @Tags 测试
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body ClearSharedRequest true "班级"
// @Success 200 {object} util.Response "成功"
// @Router /api/tests/shared/clear [post]
func (c *TestController) ClearShared(ctx *gin.Context) {
	var req ClearSharedRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	cohort := req.Grade + "/" + req.Class
	if err := c.TestService.ClearShared(ctx.Request.Context(), cohort); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
