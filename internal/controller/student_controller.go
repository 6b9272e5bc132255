package controller

import (
	"errors"
	"strconv"

	"english_lt_backend/internal/service"
	"english_lt_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type StudentController struct {
	StudentService *service.StudentService
}

func NewStudentController(studentService *service.StudentService) *StudentController {
	return &StudentController{StudentService: studentService}
}

// Create godoc
// @Summary 新建学生档案
// @Tags 学生
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.CreateStudentRequest true "学生信息"
// @Success 201 {object} util.Response{data=model.Student} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/students [post]
func (c *StudentController) Create(ctx *gin.Context) {
	var req service.CreateStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	student, err := c.StudentService.Create(&req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, student)
}

// Get godoc
// @Summary 查询学生档案
// @Tags 学生
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "学生ID"
// @Success 200 {object} util.Response{data=model.Student} "成功"
// @Failure 404 {object} util.Response "学生不存在"
// @Router /api/students/{id} [get]
func (c *StudentController) Get(ctx *gin.Context) {
	student, err := c.StudentService.Get(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrStudentNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, student)
}

// Update godoc
// @Summary 更新学生档案
// @Tags 学生
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "学生ID"
// @Param   body body service.UpdateStudentRequest true "更新内容"
// @Success 200 {object} util.Response{data=model.Student} "成功"
// @Failure 404 {object} util.Response "学生不存在"
// @Router /api/students/{id} [put]
func (c *StudentController) Update(ctx *gin.Context) {
	var req service.UpdateStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	student, err := c.StudentService.Update(ctx.Param("id"), &req)
	if err != nil {
		if errors.Is(err, util.ErrStudentNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, student)
}

// Delete godoc
// @Summary 删除学生档案及其全部测试记录
// @Tags 学生
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "学生ID"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "学生不存在"
// @Router /api/students/{id} [delete]
func (c *StudentController) Delete(ctx *gin.Context) {
	if err := c.StudentService.Delete(ctx.Param("id")); err != nil {
		if errors.Is(err, util.ErrStudentNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

// List godoc
// @Summary 学生列表
// @Description 支持按年级、班级过滤和姓名模糊搜索
// @Tags 学生
// @Produce  json
// @Security ApiKeyAuth
// @Param   page query int false "页码" default(1)
// @Param   limit query int false "每页数量" default(20)
// @Param   grade query string false "年级"
// @Param   class query string false "班级"
// @Param   name query string false "姓名关键词"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Router /api/students [get]
func (c *StudentController) List(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}

	students, total, err := c.StudentService.List(page, limit,
		ctx.Query("grade"), ctx.Query("class"), ctx.Query("name"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  students,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// History godoc
// @Summary 学生测试历史
// @Description 按序号升序返回该学生全部测试记录及单题明细
// @Tags 学生
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "学生ID"
// @Success 200 {object} util.Response{data=[]model.TestHistory} "成功"
// @Failure 404 {object} util.Response "学生不存在"
// @Router /api/students/{id}/history [get]
func (c *StudentController) History(ctx *gin.Context) {
	histories, err := c.StudentService.History(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrStudentNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, histories)
}
