package service

import (
	"context"
	"errors"
	"time"

	"talentflow_backend/internal/engine"
	"talentflow_backend/internal/model"
	"talentflow_backend/internal/repository"
	"talentflow_backend/internal/util"
	"talentflow_backend/pkg/logger"
	"talentflow_backend/pkg/monitoring"
	"talentflow_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// SubmitInput 一次提交；AssessmentID 为空时按 JobID 取岗位评估
type SubmitInput struct {
	JobID        string
	AssessmentID string
	CandidateID  string
	Answers      model.AnswerSet
	StartedAt    time.Time
}

type SubmissionService struct {
	Store               repository.AssessmentStore
	DefaultPassingScore int
}

func NewSubmissionService(store repository.AssessmentStore, defaultPassingScore int) *SubmissionService {
	if defaultPassingScore <= 0 {
		defaultPassingScore = model.DefaultPassingScore
	}
	return &SubmissionService{Store: store, DefaultPassingScore: defaultPassingScore}
}

// Submit 校验、评分并追加一条提交记录。所有失败都以 *engine.SubmissionError 返回
func (s *SubmissionService) Submit(ctx context.Context, in SubmitInput) (*model.SubmissionResult, error) {
	ctx, span := tracing.Tracer.Start(ctx, "SubmissionService.Submit")
	defer span.End()
	span.SetAttributes(
		attribute.String("job.id", in.JobID),
		attribute.String("candidate.id", in.CandidateID),
	)

	res, err := s.submit(ctx, in)
	if err != nil {
		outcome := monitoring.OutcomeStorageFailure
		if se, ok := engine.AsSubmissionError(err); ok {
			outcome = outcomeLabel(se.Code)
		}
		monitoring.RecordSubmission(outcome, 0)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	monitoring.RecordSubmission(monitoring.OutcomeAccepted, res.Submission.Score)
	span.SetAttributes(
		attribute.Int("submission.score", res.Submission.Score),
		attribute.Int("submission.attempt", res.Submission.Attempt),
	)
	return res, nil
}

func (s *SubmissionService) submit(ctx context.Context, in SubmitInput) (*model.SubmissionResult, error) {
	a, err := s.loadAssessment(ctx, in)
	if err != nil {
		if errors.Is(err, util.ErrAssessmentNotFound) {
			return nil, engine.NotFound(err)
		}
		return nil, engine.StorageFailure(err)
	}

	out, err := engine.Grade(a, in.Answers, s.DefaultPassingScore)
	if err != nil {
		logger.Log.Debug("submission rejected",
			zap.String("assessmentId", a.ID),
			zap.String("candidateId", in.CandidateID),
			zap.Error(err))
		return nil, err
	}

	prior, err := s.Store.ListCandidateSubmissions(ctx, a.ID, in.CandidateID)
	if err != nil {
		return nil, engine.StorageFailure(err)
	}
	if len(prior) > 0 && !a.Settings.AllowRetakes {
		return nil, engine.AlreadySubmitted()
	}

	submittedAt := engine.Now()
	if engine.OverTimeLimit(a, in.StartedAt, submittedAt) {
		logger.Log.Info("late submission accepted",
			zap.String("assessmentId", a.ID),
			zap.String("candidateId", in.CandidateID),
			zap.Duration("elapsed", submittedAt.Sub(in.StartedAt)))
	}

	sub, err := engine.NewSubmission(a, in.CandidateID, in.Answers, in.StartedAt, submittedAt, len(prior)+1, out)
	if err != nil {
		return nil, engine.StorageFailure(err)
	}
	saved, err := s.Store.SaveSubmission(ctx, sub)
	if errors.Is(err, repository.ErrDuplicateAttempt) {
		// 并发提交抢到了同一个 attempt 号
		if a.Settings.AllowRetakes {
			return nil, engine.StorageFailure(err)
		}
		return nil, engine.AlreadySubmitted()
	}
	if err != nil {
		logger.Log.Error("failed to save submission",
			zap.String("assessmentId", a.ID),
			zap.String("candidateId", in.CandidateID),
			zap.Error(err))
		return nil, engine.StorageFailure(err)
	}

	logger.Log.Info("submission accepted",
		zap.String("assessmentId", a.ID),
		zap.String("candidateId", in.CandidateID),
		zap.Int("attempt", saved.Attempt),
		zap.Int("score", saved.Score),
		zap.Bool("passed", saved.Passed))

	return &model.SubmissionResult{
		Submission: saved,
		Feedback:   engine.BuildFeedback(a, out.ScoreResult, out.Passed),
	}, nil
}

func (s *SubmissionService) loadAssessment(ctx context.Context, in SubmitInput) (*model.Assessment, error) {
	if in.AssessmentID != "" {
		a, err := s.Store.LoadAssessment(ctx, in.AssessmentID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, util.ErrAssessmentNotFound
		}
		if err != nil {
			return nil, err
		}
		if in.JobID != "" && a.JobID != in.JobID {
			return nil, util.ErrAssessmentNotFound
		}
		return a, nil
	}
	list, err := s.Store.LoadAssessmentsByJob(ctx, in.JobID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, util.ErrAssessmentNotFound
	}
	return list[0], nil
}

// GetSubmission 返回候选人最近一次提交
func (s *SubmissionService) GetSubmission(ctx context.Context, jobID, candidateID string) (*model.Submission, error) {
	a, err := s.loadAssessment(ctx, SubmitInput{JobID: jobID})
	if err != nil {
		return nil, err
	}
	sub, err := s.Store.LoadSubmission(ctx, a.ID, candidateID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, util.ErrSubmissionNotFound
	}
	return sub, err
}

// Responses 岗位评估的全部提交及统计
type Responses struct {
	AssessmentID string              `json:"assessmentId"`
	Submissions  []model.Submission  `json:"submissions"`
	Stats        model.ResponseStats `json:"stats"`
}

func (s *SubmissionService) Responses(ctx context.Context, jobID string) (*Responses, error) {
	a, err := s.loadAssessment(ctx, SubmitInput{JobID: jobID})
	if err != nil {
		return nil, err
	}
	subs, err := s.Store.ListSubmissions(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	if subs == nil {
		subs = []model.Submission{}
	}
	return &Responses{
		AssessmentID: a.ID,
		Submissions:  subs,
		Stats:        engine.Stats(subs),
	}, nil
}

func outcomeLabel(code engine.ErrorCode) string {
	switch code {
	case engine.CodeValidationFailed:
		return monitoring.OutcomeValidationFailed
	case engine.CodeAlreadySubmitted:
		return monitoring.OutcomeAlreadySubmitted
	case engine.CodeNotFound:
		return monitoring.OutcomeNotFound
	}
	return monitoring.OutcomeStorageFailure
}
