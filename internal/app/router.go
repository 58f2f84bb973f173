package app

import (
	"talentflow_backend/docs"
	"talentflow_backend/internal/controller"
	"talentflow_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	api.GET("/health", c.health.HealthCheck)

	RegisterAssessmentRoutes(api, c.assessment, c.submission)
}

// RegisterAssessmentRoutes 候选人与编辑器共用一组岗位评估路由；鉴权由上游网关负责
func RegisterAssessmentRoutes(api *gin.RouterGroup, ac *controller.AssessmentController, sc *controller.SubmissionController) {
	assessments := api.Group("/assessments/:jobId")
	{
		assessments.GET("", ac.GetAssessment)
		assessments.GET("/builder", ac.GetBuilder)
		assessments.PUT("", ac.SaveAssessment)
		assessments.DELETE("", ac.DeleteAssessment)
		assessments.POST("/template", ac.CreateFromTemplate)

		assessments.POST("/sections", ac.AddSection)
		assessments.PUT("/sections/order", ac.ReorderSections)
		assessments.PATCH("/sections/:sectionId", ac.UpdateSection)
		assessments.DELETE("/sections/:sectionId", ac.DeleteSection)
		assessments.POST("/sections/:sectionId/questions", ac.AddQuestion)
		assessments.PUT("/sections/:sectionId/questions/order", ac.ReorderQuestions)

		assessments.PATCH("/questions/:questionId", ac.UpdateQuestion)
		assessments.DELETE("/questions/:questionId", ac.DeleteQuestion)
		assessments.POST("/questions/:questionId/duplicate", ac.DuplicateQuestion)

		assessments.POST("/evaluate", ac.Evaluate)
		assessments.POST("/uploads", sc.UploadFile)
		assessments.POST("/submit", sc.Submit)
		assessments.GET("/submissions/:candidateId", sc.GetSubmission)
		assessments.GET("/responses", sc.Responses)
		assessments.GET("/responses/export", sc.ExportResponses)
	}
}
