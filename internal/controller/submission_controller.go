package controller

import (
	"net/http"
	"strings"
	"time"

	"talentflow_backend/internal/model"
	"talentflow_backend/internal/service"
	"talentflow_backend/internal/util"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type SubmissionController struct {
	Service *service.SubmissionService
	Export  *service.ExportService
	Upload  *service.UploadService
}

func NewSubmissionController(svc *service.SubmissionService, export *service.ExportService, upload *service.UploadService) *SubmissionController {
	return &SubmissionController{Service: svc, Export: export, Upload: upload}
}

// SubmitResponse 候选人提交结果，不含题目快照与答案
type SubmitResponse struct {
	Score       int            `json:"score"`
	Passed      bool           `json:"passed"`
	SubmittedAt time.Time      `json:"submittedAt"`
	Feedback    model.Feedback `json:"feedback"`
}

// candidateID 请求体优先，其次取请求头
func candidateID(ctx *gin.Context, fromBody string) string {
	if id := strings.TrimSpace(fromBody); id != "" {
		return id
	}
	return strings.TrimSpace(ctx.GetHeader(util.HeaderCandidateID))
}

// @Summary 提交评估
// @Description 校验可见题目、评分并保存一次作答；校验失败返回 422，不允许重考时重复提交返回 409
// @Tags 评估
// @Accept json
// @Produce json
// @Param jobId path string true "岗位ID"
// @Param X-Candidate-ID header string false "候选人ID"
// @Param body body SubmitRequest true "答案"
// @Success 201 {object} util.Response{data=SubmitResponse}
// @Failure 409 {object} util.Response
// @Failure 422 {object} util.Response
// @Router /api/assessments/{jobId}/submit [post]
func (c *SubmissionController) Submit(ctx *gin.Context) {
	var req SubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	in := service.SubmitInput{
		JobID:        ctx.Param("jobId"),
		AssessmentID: req.AssessmentID,
		CandidateID:  candidateID(ctx, req.CandidateID),
		Answers:      req.Answers,
	}
	if in.CandidateID == "" {
		util.BadRequest(ctx, util.ErrCandidateIDRequired.Error())
		return
	}
	if in.Answers == nil {
		in.Answers = model.AnswerSet{}
	}
	if req.StartedAt != nil {
		in.StartedAt = *req.StartedAt
	}

	res, err := c.Service.Submit(ctx.Request.Context(), in)
	if err != nil {
		handleError(ctx, err)
		return
	}
	util.Created(ctx, SubmitResponse{
		Score:       res.Submission.Score,
		Passed:      res.Submission.Passed,
		SubmittedAt: res.Submission.SubmittedAt,
		Feedback:    res.Feedback,
	})
}

// @Summary 获取候选人最近一次提交
// @Tags 评估
// @Produce json
// @Param jobId path string true "岗位ID"
// @Param candidateId path string true "候选人ID"
// @Success 200 {object} util.Response{data=model.Submission}
// @Failure 404 {object} util.Response
// @Router /api/assessments/{jobId}/submissions/{candidateId} [get]
func (c *SubmissionController) GetSubmission(ctx *gin.Context) {
	sub, err := c.Service.GetSubmission(ctx.Request.Context(), ctx.Param("jobId"), ctx.Param("candidateId"))
	if err != nil {
		handleError(ctx, err)
		return
	}
	util.Success(ctx, sub.ForCandidate())
}

// @Summary 获取评估的全部提交与统计
// @Tags 评估结果
// @Produce json
// @Param jobId path string true "岗位ID"
// @Success 200 {object} util.Response{data=service.Responses}
// @Failure 404 {object} util.Response
// @Router /api/assessments/{jobId}/responses [get]
func (c *SubmissionController) Responses(ctx *gin.Context) {
	res, err := c.Service.Responses(ctx.Request.Context(), ctx.Param("jobId"))
	if err != nil {
		handleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// @Summary 导出提交记录
// @Tags 评估结果
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param jobId path string true "岗位ID"
// @Success 200 {file} file
// @Failure 404 {object} util.Response
// @Router /api/assessments/{jobId}/responses/export [get]
func (c *SubmissionController) ExportResponses(ctx *gin.Context) {
	data, name, err := c.Export.ExportResponses(ctx.Request.Context(), ctx.Param("jobId"))
	if err != nil {
		handleError(ctx, err)
		return
	}
	ctx.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	ctx.Header("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	ctx.Data(http.StatusOK, xlsxContentType, data)
}

// @Summary 上传答题文件
// @Description 为 file-upload 题目上传文件，返回的 url 作为该题答案提交
// @Tags 评估
// @Accept multipart/form-data
// @Produce json
// @Param jobId path string true "岗位ID"
// @Param questionId formData string true "题目ID"
// @Param candidateId formData string false "候选人ID，也可通过 X-Candidate-ID 传入"
// @Param file formData file true "文件"
// @Success 201 {object} util.Response{data=service.UploadedFile}
// @Failure 400 {object} util.Response
// @Failure 413 {object} util.Response
// @Router /api/assessments/{jobId}/uploads [post]
func (c *SubmissionController) UploadFile(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}
	questionID := ctx.PostForm("questionId")
	if questionID == "" {
		util.BadRequest(ctx, "questionId is required")
		return
	}

	out, err := c.Upload.Upload(ctx.Request.Context(), ctx.Param("jobId"), questionID, candidateID(ctx, ctx.PostForm("candidateId")), file)
	if err != nil {
		handleError(ctx, err)
		return
	}
	util.Created(ctx, out)
}
