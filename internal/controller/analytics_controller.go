package controller

import (
	"errors"

	"english_lt_backend/internal/service"
	"english_lt_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	AnalyticsService *service.AnalyticsService
}

func NewAnalyticsController(analyticsService *service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{AnalyticsService: analyticsService}
}

// StudentReport godoc
// @Summary 学生学情报告
// @Description 成绩走势、题型正确率、知识点与能力维度统计
// @Tags 分析
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "学生ID"
// @Success 200 {object} util.Response{data=service.StudentReport} "成功"
// @Failure 404 {object} util.Response "学生不存在"
// @Router /api/analytics/students/{id} [get]
func (c *AnalyticsController) StudentReport(ctx *gin.Context) {
	report, err := c.AnalyticsService.StudentReport(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrStudentNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, report)
}

// Mistakes godoc
// @Summary 学生错题本
// @Description 历史答错的题目，按累计答错次数降序
// @Tags 分析
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "学生ID"
// @Param   category query string false "题型过滤" Enums(word, phrase, sentence, grammar)
// @Success 200 {object} util.Response{data=[]service.MistakeItem} "成功"
// @Failure 404 {object} util.Response "学生不存在"
// @Router /api/analytics/students/{id}/mistakes [get]
func (c *AnalyticsController) Mistakes(ctx *gin.Context) {
	items, err := c.AnalyticsService.Mistakes(ctx.Param("id"), ctx.Query("category"))
	if err != nil {
		if errors.Is(err, util.ErrStudentNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, items)
}

// ClassReport godoc
// @Summary 班级学情汇总
// @Description 班级平均分和学生排名
// @Tags 分析
// @Produce  json
// @Security ApiKeyAuth
// @Param   grade query string true "年级"
// @Param   class query string true "班级"
// @Success 200 {object} util.Response{data=service.ClassStat} "成功"
// @Router /api/analytics/class [get]
func (c *AnalyticsController) ClassReport(ctx *gin.Context) {
	grade := ctx.Query("grade")
	class := ctx.Query("class")
	if grade == "" || class == "" {
		util.BadRequest(ctx, "grade and class are required")
		return
	}

	stat, err := c.AnalyticsService.ClassReport(grade, class)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, stat)
}
