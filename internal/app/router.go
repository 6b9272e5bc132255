package app

import (
	"english_lt_backend/docs"
	"english_lt_backend/internal/config"
	"english_lt_backend/internal/middleware"
	"english_lt_backend/internal/model"
	"english_lt_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由（无需登录）
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// 需要授权的路由（教师端浏览器应用）
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/profile", c.auth.GetProfile)

		// 学生档案
		students := authGroup.Group("/students")
		{
			students.POST("", c.student.Create)
			students.GET("", c.student.List)
			students.GET("/:id", c.student.Get)
			students.PUT("/:id", c.student.Update)
			students.DELETE("/:id", c.student.Delete)
			students.GET("/:id/history", c.student.History)
		}

		// 题库
		questions := authGroup.Group("/questions")
		{
			questions.GET("", c.question.List)
			questions.GET("/textbooks", c.question.Textbooks)
			questions.GET("/stats", c.question.Stats)
			questions.GET("/:id", c.question.Get)
		}

		// 题库写操作仅限教师及以上
		questionAdmin := authGroup.Group("/questions")
		questionAdmin.Use(middleware.RoleMiddleware(model.Teacher))
		{
			questionAdmin.POST("", c.question.Create)
			questionAdmin.PUT("/:id", c.question.Update)
			questionAdmin.DELETE("/:id", c.question.Delete)
			questionAdmin.POST("/import", c.question.Import)
		}

		// 测试会话
		tests := authGroup.Group("/tests")
		{
			tests.POST("/start", c.test.Start)
			tests.POST("/shared/clear", middleware.RoleMiddleware(model.Teacher), c.test.ClearShared)
			tests.GET("/:studentId", c.test.State)
			tests.POST("/:studentId/answer", c.test.Answer)
			tests.POST("/:studentId/advance", c.test.Advance)
			tests.POST("/:studentId/submit", c.test.Submit)
			tests.GET("/:studentId/result", c.test.Result)
			tests.POST("/:studentId/reset", c.test.Reset)
		}

		// 学情分析
		analytics := authGroup.Group("/analytics")
		{
			analytics.GET("/students/:id", c.analytics.StudentReport)
			analytics.GET("/students/:id/mistakes", c.analytics.Mistakes)
			analytics.GET("/class", c.analytics.ClassReport)
		}

		// AI 错题分析
		ai := authGroup.Group("/ai")
		{
			ai.GET("/analysis/:historyId", c.ai.Analyze)
			ai.GET("/analysis/:historyId/stream", c.ai.AnalyzeStream)
		}
	}
}
