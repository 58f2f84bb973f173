package controller

import (
	"errors"
	"net/http"

	"talentflow_backend/internal/engine"
	"talentflow_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// handleError 把服务层错误映射为 HTTP 状态与错误码
func handleError(ctx *gin.Context, err error) {
	if se, ok := engine.AsSubmissionError(err); ok {
		switch se.Code {
		case engine.CodeValidationFailed:
			util.ErrorWithDetails(ctx, http.StatusUnprocessableEntity, util.CodeValidationError, "Validation failed", se.Violations)
		case engine.CodeAlreadySubmitted:
			util.ErrorWithDetails(ctx, http.StatusConflict, util.CodeAlreadySubmitted, "Assessment already submitted", nil)
		case engine.CodeNotFound:
			util.ErrorWithDetails(ctx, http.StatusNotFound, util.CodeNotFound, "Assessment not found", nil)
		default:
			util.LogSubmissionError(ctx, se)
		}
		return
	}

	if issues := engine.StructureIssues(err); issues != nil {
		util.ErrorWithDetails(ctx, http.StatusUnprocessableEntity, util.CodeValidationError, "Invalid assessment", issues)
		return
	}

	switch {
	case errors.Is(err, util.ErrAssessmentNotFound),
		errors.Is(err, util.ErrSubmissionNotFound),
		errors.Is(err, engine.ErrSectionNotFound),
		errors.Is(err, engine.ErrQuestionNotFound):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, util.ErrAssessmentExists):
		util.Error(ctx, http.StatusConflict, err.Error())
	case errors.Is(err, util.ErrFileTooLarge):
		util.ErrorWithDetails(ctx, http.StatusRequestEntityTooLarge, util.CodeBadRequest, err.Error(), nil)
	case errors.Is(err, engine.ErrInvalidReorder),
		errors.Is(err, engine.ErrInvalidQuestionType),
		errors.Is(err, engine.ErrUnknownTemplate),
		errors.Is(err, util.ErrNotFileQuestion),
		errors.Is(err, util.ErrFileTypeNotAllowed),
		errors.Is(err, util.ErrEmptyFile),
		errors.Is(err, util.ErrCandidateIDRequired):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
