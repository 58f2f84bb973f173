package service

import (
	"context"
	"errors"
	"fmt"

	"talentflow_backend/internal/engine"
	"talentflow_backend/internal/model"
	"talentflow_backend/internal/repository"
	"talentflow_backend/internal/util"
	"talentflow_backend/pkg/logger"
	"talentflow_backend/pkg/monitoring"

	"go.uber.org/zap"
)

type AssessmentService struct {
	Store repository.AssessmentStore
}

func NewAssessmentService(store repository.AssessmentStore) *AssessmentService {
	return &AssessmentService{Store: store}
}

// GetForJob 返回岗位的评估；同一岗位存在多个时取最早创建的一个
func (s *AssessmentService) GetForJob(ctx context.Context, jobID string) (*model.Assessment, error) {
	list, err := s.Store.LoadAssessmentsByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, util.ErrAssessmentNotFound
	}
	if len(list) > 1 {
		logger.Log.Debug("multiple assessments for job, using the first",
			zap.String("jobId", jobID), zap.Int("count", len(list)))
	}
	return list[0], nil
}

// GetSanitized 候选人视图，去掉正确答案
func (s *AssessmentService) GetSanitized(ctx context.Context, jobID string) (*model.Assessment, error) {
	a, err := s.GetForJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return engine.Sanitize(a), nil
}

// Replace PUT 语义：整体替换岗位的评估。保存前校验标题、至少一道题及结构
func (s *AssessmentService) Replace(ctx context.Context, jobID string, in *model.Assessment) (*model.Assessment, error) {
	a := in.Clone()
	a.JobID = jobID

	existing, err := s.GetForJob(ctx, jobID)
	switch {
	case err == nil:
		a.ID = existing.ID
		a.CreatedAt = existing.CreatedAt
		a.Version = existing.Version
	case errors.Is(err, util.ErrAssessmentNotFound):
		if a.ID == "" {
			a.ID = engine.NewID()
		}
		a.CreatedAt = engine.Now()
		a.Version = 0
	default:
		return nil, err
	}

	fillIDs(a)
	engine.Renumber(a)
	if err := engine.ValidateStructure(a); err != nil {
		return nil, err
	}
	a.Status = engine.SuggestedStatus(a)
	return s.save(ctx, a)
}

func (s *AssessmentService) Delete(ctx context.Context, jobID string) error {
	a, err := s.GetForJob(ctx, jobID)
	if err != nil {
		return err
	}
	if err := s.Store.DeleteAssessment(ctx, a.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return util.ErrAssessmentNotFound
		}
		return err
	}
	logger.Log.Info("assessment deleted", zap.String("jobId", jobID), zap.String("assessmentId", a.ID))
	return nil
}

// CreateFromTemplate 用内置模板为岗位创建草稿；岗位已有评估时返回 ErrAssessmentExists
func (s *AssessmentService) CreateFromTemplate(ctx context.Context, jobID, template string) (*model.Assessment, error) {
	if _, err := s.GetForJob(ctx, jobID); err == nil {
		return nil, util.ErrAssessmentExists
	} else if !errors.Is(err, util.ErrAssessmentNotFound) {
		return nil, err
	}
	a, err := engine.NewFromTemplate(jobID, template)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, a)
}

// AddSection 岗位还没有评估时先建一个空草稿
func (s *AssessmentService) AddSection(ctx context.Context, jobID string) (*model.Assessment, model.Section, error) {
	a, err := s.GetForJob(ctx, jobID)
	if errors.Is(err, util.ErrAssessmentNotFound) {
		a = engine.NewAssessment(jobID, "Untitled Assessment")
	} else if err != nil {
		return nil, model.Section{}, err
	}
	next, section := engine.AddSection(a)
	saved, err := s.save(ctx, next)
	if err == nil {
		monitoring.RecordMutation("add_section")
	}
	return saved, section, err
}

func (s *AssessmentService) UpdateSection(ctx context.Context, jobID, sectionID string, patch engine.SectionPatch) (*model.Assessment, error) {
	return s.mutate(ctx, jobID, "update_section", func(a *model.Assessment) (*model.Assessment, error) {
		return engine.UpdateSection(a, sectionID, patch)
	})
}

func (s *AssessmentService) DeleteSection(ctx context.Context, jobID, sectionID string) (*model.Assessment, error) {
	return s.mutate(ctx, jobID, "delete_section", func(a *model.Assessment) (*model.Assessment, error) {
		return engine.DeleteSection(a, sectionID)
	})
}

func (s *AssessmentService) ReorderSections(ctx context.Context, jobID string, order []string) (*model.Assessment, error) {
	return s.mutate(ctx, jobID, "reorder_sections", func(a *model.Assessment) (*model.Assessment, error) {
		return engine.ReorderSections(a, order)
	})
}

func (s *AssessmentService) AddQuestion(ctx context.Context, jobID, sectionID string, t model.QuestionType) (*model.Assessment, model.Question, error) {
	var created model.Question
	a, err := s.mutate(ctx, jobID, "add_question", func(a *model.Assessment) (*model.Assessment, error) {
		next, q, err := engine.AddQuestion(a, sectionID, t)
		created = q
		return next, err
	})
	return a, created, err
}

func (s *AssessmentService) UpdateQuestion(ctx context.Context, jobID, questionID string, patch engine.QuestionPatch) (*model.Assessment, error) {
	return s.mutate(ctx, jobID, "update_question", func(a *model.Assessment) (*model.Assessment, error) {
		next, err := engine.UpdateQuestion(a, questionID, patch)
		if err != nil {
			return nil, err
		}
		// 被修改的题目的 showIf 必须指向已存在的题目
		if err := engine.ValidateQuestions(next, questionID); err != nil {
			return nil, err
		}
		return next, nil
	})
}

func (s *AssessmentService) DeleteQuestion(ctx context.Context, jobID, questionID string) (*model.Assessment, error) {
	return s.mutate(ctx, jobID, "delete_question", func(a *model.Assessment) (*model.Assessment, error) {
		return engine.DeleteQuestion(a, questionID)
	})
}

func (s *AssessmentService) DuplicateQuestion(ctx context.Context, jobID, questionID string) (*model.Assessment, model.Question, error) {
	var dup model.Question
	a, err := s.mutate(ctx, jobID, "duplicate_question", func(a *model.Assessment) (*model.Assessment, error) {
		next, q, err := engine.DuplicateQuestion(a, questionID)
		dup = q
		return next, err
	})
	return a, dup, err
}

func (s *AssessmentService) ReorderQuestions(ctx context.Context, jobID, sectionID string, from, to int) (*model.Assessment, error) {
	return s.mutate(ctx, jobID, "reorder_questions", func(a *model.Assessment) (*model.Assessment, error) {
		return engine.ReorderQuestions(a, sectionID, from, to)
	})
}

// EvaluateResult 预览/分节校验：当前可见题目及其校验结果
type EvaluateResult struct {
	VisibleQuestionIDs []string                      `json:"visibleQuestionIds"`
	Violations         map[string][]engine.Violation `json:"violations"`
	Valid              bool                          `json:"valid"`
}

// Evaluate 对一份（可能未完成的）答案计算可见性与校验结果；sectionID 为空时校验整份评估
func (s *AssessmentService) Evaluate(ctx context.Context, jobID string, answers model.AnswerSet, sectionID string) (*EvaluateResult, error) {
	a, err := s.GetForJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	visible := engine.VisibleQuestions(a, answers)
	res := &EvaluateResult{
		VisibleQuestionIDs: make([]string, 0, len(visible)),
		Violations:         engine.ValidateAnswers(a, answers, sectionID),
	}
	for _, q := range visible {
		res.VisibleQuestionIDs = append(res.VisibleQuestionIDs, q.ID)
	}
	res.Valid = len(res.Violations) == 0
	return res, nil
}

func (s *AssessmentService) mutate(ctx context.Context, jobID, op string, fn func(*model.Assessment) (*model.Assessment, error)) (*model.Assessment, error) {
	a, err := s.GetForJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	next, err := fn(a)
	if err != nil {
		return nil, err
	}
	if err := engine.ValidateQuestions(next); err != nil {
		return nil, err
	}
	saved, err := s.save(ctx, next)
	if err == nil {
		monitoring.RecordMutation(op)
	}
	return saved, err
}

// save 版本号加一后持久化；并发编辑为后写覆盖
func (s *AssessmentService) save(ctx context.Context, a *model.Assessment) (*model.Assessment, error) {
	a.Version++
	a.UpdatedAt = engine.Now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = a.UpdatedAt
	}
	saved, err := s.Store.SaveAssessment(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("save assessment: %w", err)
	}
	return saved, nil
}

// fillIDs 为客户端未提供 id 的分节、题目和选项生成 id
func fillIDs(a *model.Assessment) {
	for si := range a.Sections {
		sec := &a.Sections[si]
		if sec.ID == "" {
			sec.ID = engine.NewID()
		}
		for qi := range sec.Questions {
			q := &sec.Questions[qi]
			if q.ID == "" {
				q.ID = engine.NewID()
			}
			for oi := range q.Options {
				if q.Options[oi].ID == "" {
					q.Options[oi].ID = engine.NewID()
				}
			}
		}
	}
}
