package controller

import (
	"time"

	"talentflow_backend/internal/engine"
	"talentflow_backend/internal/model"
	"talentflow_backend/internal/service"
	"talentflow_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AssessmentController struct {
	Service *service.AssessmentService
}

func NewAssessmentController(svc *service.AssessmentService) *AssessmentController {
	return &AssessmentController{Service: svc}
}

type TemplateRequest struct {
	Template string `json:"template"`
}

type AddQuestionRequest struct {
	Type model.QuestionType `json:"type" binding:"required"`
}

type ReorderSectionsRequest struct {
	SectionIDs []string `json:"sectionIds" binding:"required,min=1,dive,required"`
}

type ReorderQuestionsRequest struct {
	From *int `json:"from" binding:"required,gte=0"`
	To   *int `json:"to" binding:"required,gte=0"`
}

type EvaluateRequest struct {
	Answers   model.AnswerSet `json:"answers"`
	SectionID string          `json:"sectionId"`
}

type SubmitRequest struct {
	AssessmentID string          `json:"assessmentId"`
	CandidateID  string          `json:"candidateId"`
	Answers      model.AnswerSet `json:"answers"`
	StartedAt    *time.Time      `json:"startedAt"`
}

// @Summary 获取候选人视图的评估
// @Description 返回岗位的评估，选项中的正确答案已移除
// @Tags 评估
// @Produce json
// @Param jobId path string true "岗位ID"
// @Success 200 {object} util.Response{data=model.Assessment}
// @Failure 404 {object} util.Response
// @Router /api/assessments/{jobId} [get]
func (c *AssessmentController) GetAssessment(ctx *gin.Context) {
	a, err := c.Service.GetSanitized(ctx.Request.Context(), ctx.Param("jobId"))
	if err != nil {
		handleError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// @Summary 获取编辑器视图的评估
// @Tags 评估编辑
// @Produce json
// @Param jobId path string true "岗位ID"
// @Success 200 {object} util.Response{data=model.Assessment}
// @Failure 404 {object} util.Response
// @Router /api/assessments/{jobId}/builder [get]
func (c *AssessmentController) GetBuilder(ctx *gin.Context) {
	a, err := c.Service.GetForJob(ctx.Request.Context(), ctx.Param("jobId"))
	if err != nil {
		handleError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// @Summary 保存评估
// @Description 整体替换岗位的评估；需要标题、至少一道题且条件逻辑引用合法
// @Tags 评估编辑
// @Accept json
// @Produce json
// @Param jobId path string true "岗位ID"
// @Param body body model.Assessment true "评估"
// @Success 200 {object} util.Response{data=model.Assessment}
// @Failure 422 {object} util.Response
// @Router /api/assessments/{jobId} [put]
func (c *AssessmentController) SaveAssessment(ctx *gin.Context) {
	var req model.Assessment
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	a, err := c.Service.Replace(ctx.Request.Context(), ctx.Param("jobId"), &req)
	if err != nil {
		handleError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// @Summary 删除评估
// @Description 同时删除该评估的全部提交记录
// @Tags 评估编辑
// @Produce json
// @Param jobId path string true "岗位ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/assessments/{jobId} [delete]
func (c *AssessmentController) DeleteAssessment(ctx *gin.Context) {
	if err := c.Service.Delete(ctx.Request.Context(), ctx.Param("jobId")); err != nil {
		handleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": true})
}

// @Summary 从模板创建评估
// @Tags 评估编辑
// @Accept json
// @Produce json
// @Param jobId path string true "岗位ID"
// @Param body body TemplateRequest false "模板名，默认 screening"
// @Success 201 {object} util.Response{data=model.Assessment}
// @Failure 409 {object} util.Response
// @Router /api/assessments/{jobId}/template [post]
func (c *AssessmentController) CreateFromTemplate(ctx *gin.Context) {
	var req TemplateRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}
	if req.Template == "" {
		req.Template = engine.TemplateScreening
	}
	a, err := c.Service.CreateFromTemplate(ctx.Request.Context(), ctx.Param("jobId"), req.Template)
	if err != nil {
		handleError(ctx, err)
		return
	}
	util.Created(ctx, a)
}

// @Summary 添加分节
// @Tags 评估编辑
// @Produce json
// @Param jobId path string true "岗位ID"
// @Success 201 {object} util.Response{data=model.Assessment}
// @Router /api/assessments/{jobId}/sections [post]
func (c *AssessmentController) AddSection(ctx *gin.Context) {
	a, section, err := c.Service.AddSection(ctx.Request.Context(), ctx.Param("jobId"))
	if err != nil {
		handleError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"assessment": a, "section": section})
}

// @Summary 修改分节
// @Tags 评估编辑
// @Accept json
// @Produce json
// @Param jobId path string true "岗位ID"
// @Param sectionId path string true "分节ID"
// @Param body body engine.SectionPatch true "修改内容"
// @Success 200 {object} util.Response{data=model.Assessment}
// @Failure 404 {object} util.Response
// @Router /api/assessments/{jobId}/sections/{sectionId} [patch]
func (c *AssessmentController) UpdateSection(ctx *gin.Context) {
	var patch engine.SectionPatch
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	a, err := c.Service.UpdateSection(ctx.Request.Context(), ctx.Param("jobId"), ctx.Param("sectionId"), patch)
	if err != nil {
		handleError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// @Summary 删除分节
// @Tags 评估编辑
// @Produce json
// @Param jobId path string true "岗位ID"
// @Param sectionId path string true "分节ID"
// @Success 200 {object} util.Response{data=model.Assessment}
// @Failure 404 {object} util.Response
// @Router /api/assessments/{jobId}/sections/{sectionId} [delete]
func (c *AssessmentController) DeleteSection(ctx *gin.Context) {
	a, err := c.Service.DeleteSection(ctx.Request.Context(), ctx.Param("jobId"), ctx.Param("sectionId"))
	if err != nil {
		handleError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// @Summary 调整分节顺序
// @Tags 评估编辑
// @Accept json
// @Produce json
// @Param jobId path string true "岗位ID"
// @Param body body ReorderSectionsRequest true "全部分节ID的新顺序"
// @Success 200 {object} util.Response{data=model.Assessment}
// @Failure 400 {object} util.Response
// @Router /api/assessments/{jobId}/sections/order [put]
func (c *AssessmentController) ReorderSections(ctx *gin.Context) {
	var req ReorderSectionsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	a, err := c.Service.ReorderSections(ctx.Request.Context(), ctx.Param("jobId"), req.SectionIDs)
	if err != nil {
		handleError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// @Summary 添加题目
// @Tags 评估编辑
// @Accept json
// @Produce json
// @Param jobId path string true "岗位ID"
// @Param sectionId path string true "分节ID"
// @Param body body AddQuestionRequest true "题型"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/assessments/{jobId}/sections/{sectionId}/questions [post]
func (c *AssessmentController) AddQuestion(ctx *gin.Context) {
	var req AddQuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	a, q, err := c.Service.AddQuestion(ctx.Request.Context(), ctx.Param("jobId"), ctx.Param("sectionId"), req.Type)
	if err != nil {
		handleError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"assessment": a, "question": q})
}

// @Summary 调整分节内题目顺序
// @Tags 评估编辑
// @Accept json
// @Produce json
// @Param jobId path string true "岗位ID"
// @Param sectionId path string true "分节ID"
// @Param body body ReorderQuestionsRequest true "原位置与目标位置"
// @Success 200 {object} util.Response{data=model.Assessment}
// @Failure 400 {object} util.Response
// @Router /api/assessments/{jobId}/sections/{sectionId}/questions/order [put]
func (c *AssessmentController) ReorderQuestions(ctx *gin.Context) {
	var req ReorderQuestionsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	a, err := c.Service.ReorderQuestions(ctx.Request.Context(), ctx.Param("jobId"), ctx.Param("sectionId"), *req.From, *req.To)
	if err != nil {
		handleError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// @Summary 修改题目
// @Description 修改题型时会重置校验规则与选项
// @Tags 评估编辑
// @Accept json
// @Produce json
// @Param jobId path string true "岗位ID"
// @Param questionId path string true "题目ID"
// @Param body body engine.QuestionPatch true "修改内容"
// @Success 200 {object} util.Response{data=model.Assessment}
// @Failure 404 {object} util.Response
// @Router /api/assessments/{jobId}/questions/{questionId} [patch]
func (c *AssessmentController) UpdateQuestion(ctx *gin.Context) {
	var patch engine.QuestionPatch
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	a, err := c.Service.UpdateQuestion(ctx.Request.Context(), ctx.Param("jobId"), ctx.Param("questionId"), patch)
	if err != nil {
		handleError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// @Summary 删除题目
// @Tags 评估编辑
// @Produce json
// @Param jobId path string true "岗位ID"
// @Param questionId path string true "题目ID"
// @Success 200 {object} util.Response{data=model.Assessment}
// @Failure 404 {object} util.Response
// @Router /api/assessments/{jobId}/questions/{questionId} [delete]
func (c *AssessmentController) DeleteQuestion(ctx *gin.Context) {
	a, err := c.Service.DeleteQuestion(ctx.Request.Context(), ctx.Param("jobId"), ctx.Param("questionId"))
	if err != nil {
		handleError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// @Summary 复制题目
// @Tags 评估编辑
// @Produce json
// @Param jobId path string true "岗位ID"
// @Param questionId path string true "题目ID"
// @Success 201 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/assessments/{jobId}/questions/{questionId}/duplicate [post]
func (c *AssessmentController) DuplicateQuestion(ctx *gin.Context) {
	a, q, err := c.Service.DuplicateQuestion(ctx.Request.Context(), ctx.Param("jobId"), ctx.Param("questionId"))
	if err != nil {
		handleError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"assessment": a, "question": q})
}

// @Summary 预览答题状态
// @Description 返回当前答案下可见的题目以及校验错误，可按分节校验
// @Tags 评估
// @Accept json
// @Produce json
// @Param jobId path string true "岗位ID"
// @Param body body EvaluateRequest true "答案"
// @Success 200 {object} util.Response{data=service.EvaluateResult}
// @Router /api/assessments/{jobId}/evaluate [post]
func (c *AssessmentController) Evaluate(ctx *gin.Context) {
	var req EvaluateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if req.Answers == nil {
		req.Answers = model.AnswerSet{}
	}
	res, err := c.Service.Evaluate(ctx.Request.Context(), ctx.Param("jobId"), req.Answers, req.SectionID)
	if err != nil {
		handleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}
