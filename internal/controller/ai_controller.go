package controller

import (
	"strconv"

	"english_lt_backend/internal/service"
	"english_lt_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AIController struct {
	AIService        *service.AIService
	AnalyticsService *service.AnalyticsService
}

func NewAIController(aiService *service.AIService, analyticsService *service.AnalyticsService) *AIController {
	return &AIController{
		AIService:        aiService,
		AnalyticsService: analyticsService,
	}
}

// AnalyzeStream godoc
// @Summary 错题 AI 分析（流式）
// @Description 针对一次测试的错题生成分析和练习建议，SSE 流式返回
// @Tags AI
// @Produce  text/event-stream
// @Security ApiKeyAuth
// @Param   historyId path int true "测试记录ID"
// @Success 200 {string} string "SSE 流"
// @Failure 404 {object} util.Response "测试记录不存在"
// @Router /api/ai/analysis/{historyId}/stream [get]
func (c *AIController) AnalyzeStream(ctx *gin.Context) {
	historyID, err := strconv.ParseUint(ctx.Param("historyId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid history id")
		return
	}

	student, questions, details, err := c.AnalyticsService.HistoryContext(uint(historyID))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	stream, errChan := c.AIService.AnalyzeMistakesStream(student, questions, details)

	// 设置SSE响应头
	ctx.Header("Content-Type", "text/event-stream")
	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")
	ctx.Header("Transfer-Encoding", "chunked")

	for content := range stream {
		ctx.SSEvent("message", content)
		ctx.Writer.Flush()
	}

	if err := <-errChan; err != nil {
		ctx.SSEvent("error", err.Error())
		ctx.Writer.Flush()
	}

	ctx.SSEvent("end", "done")
	ctx.Writer.Flush()
}

// Analyze godoc
// @Summary 错题 AI 分析
// @Description 非流式版本，一次性返回完整分析
// @Tags AI
// @Produce  json
// @Security ApiKeyAuth
// @Param   historyId path int true "测试记录ID"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 404 {object} util.Response "测试记录不存在"
// @Router /api/ai/analysis/{historyId} [get]
func (c *AIController) Analyze(ctx *gin.Context) {
	historyID, err := strconv.ParseUint(ctx.Param("historyId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid history id")
		return
	}

	student, questions, details, err := c.AnalyticsService.HistoryContext(uint(historyID))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	analysis, err := c.AIService.AnalyzeMistakes(student, questions, details)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"analysis": analysis})
}
