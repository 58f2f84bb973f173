package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"talentflow_backend/internal/model"
	"talentflow_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AssessmentRepository stores assessments and submissions as JSON documents
// with a few indexed columns for lookups.
type AssessmentRepository struct {
	DB *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{DB: db}
}

var _ AssessmentStore = (*AssessmentRepository)(nil)

func (r *AssessmentRepository) LoadAssessment(ctx context.Context, id string) (*model.Assessment, error) {
	ctx, span := tracing.Tracer.Start(ctx, "AssessmentRepository.LoadAssessment")
	defer span.End()
	span.SetAttributes(attribute.String("assessment.id", id))

	var rec model.AssessmentRecord
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, notFound(err)
	}
	return decodeAssessment(&rec)
}

func (r *AssessmentRepository) LoadAssessmentsByJob(ctx context.Context, jobID string) ([]*model.Assessment, error) {
	ctx, span := tracing.Tracer.Start(ctx, "AssessmentRepository.LoadAssessmentsByJob")
	defer span.End()
	span.SetAttributes(attribute.String("job.id", jobID))

	var recs []model.AssessmentRecord
	err := r.DB.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("created_at asc").Order("id asc").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	out := make([]*model.Assessment, 0, len(recs))
	for i := range recs {
		a, err := decodeAssessment(&recs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *AssessmentRepository) SaveAssessment(ctx context.Context, a *model.Assessment) (*model.Assessment, error) {
	ctx, span := tracing.Tracer.Start(ctx, "AssessmentRepository.SaveAssessment")
	defer span.End()

	doc, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	rec := model.AssessmentRecord{
		UUIDBase: model.UUIDBase{ID: a.ID, CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt},
		JobID:    a.JobID,
		Title:    a.Title,
		Status:   string(a.Status),
		Version:  a.Version,
		Document: datatypes.JSON(doc),
	}
	if err := r.DB.WithContext(ctx).Save(&rec).Error; err != nil {
		return nil, err
	}
	return a.Clone(), nil
}

func (r *AssessmentRepository) DeleteAssessment(ctx context.Context, id string) error {
	ctx, span := tracing.Tracer.Start(ctx, "AssessmentRepository.DeleteAssessment")
	defer span.End()

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&model.AssessmentRecord{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("assessment_id = ?", id).Delete(&model.SubmissionRecord{}).Error
	})
}

func (r *AssessmentRepository) LoadSubmission(ctx context.Context, assessmentID, candidateID string) (*model.Submission, error) {
	ctx, span := tracing.Tracer.Start(ctx, "AssessmentRepository.LoadSubmission")
	defer span.End()

	var rec model.SubmissionRecord
	err := r.DB.WithContext(ctx).
		Where("assessment_id = ? AND candidate_id = ?", assessmentID, candidateID).
		Order("attempt desc").
		First(&rec).Error
	if err != nil {
		return nil, notFound(err)
	}
	return decodeSubmission(&rec)
}

func (r *AssessmentRepository) ListCandidateSubmissions(ctx context.Context, assessmentID, candidateID string) ([]model.Submission, error) {
	ctx, span := tracing.Tracer.Start(ctx, "AssessmentRepository.ListCandidateSubmissions")
	defer span.End()

	var recs []model.SubmissionRecord
	err := r.DB.WithContext(ctx).
		Where("assessment_id = ? AND candidate_id = ?", assessmentID, candidateID).
		Order("attempt asc").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return decodeSubmissions(recs)
}

func (r *AssessmentRepository) SaveSubmission(ctx context.Context, s *model.Submission) (*model.Submission, error) {
	ctx, span := tracing.Tracer.Start(ctx, "AssessmentRepository.SaveSubmission")
	defer span.End()

	doc, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	rec := model.SubmissionRecord{
		UUIDBase:          model.UUIDBase{ID: s.ID},
		AssessmentID:      s.AssessmentID,
		CandidateID:       s.CandidateID,
		Attempt:           s.Attempt,
		AssessmentVersion: s.AssessmentVersion,
		Score:             s.Score,
		Passed:            s.Passed,
		SubmittedAt:       s.SubmittedAt,
		Document:          datatypes.JSON(doc),
	}
	if err := r.DB.WithContext(ctx).Create(&rec).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, ErrDuplicateAttempt
		}
		return nil, err
	}
	out := *s
	out.ID = rec.ID
	return &out, nil
}

func (r *AssessmentRepository) ListSubmissions(ctx context.Context, assessmentID string) ([]model.Submission, error) {
	ctx, span := tracing.Tracer.Start(ctx, "AssessmentRepository.ListSubmissions")
	defer span.End()

	var recs []model.SubmissionRecord
	err := r.DB.WithContext(ctx).
		Where("assessment_id = ?", assessmentID).
		Order("submitted_at asc").Order("attempt asc").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return decodeSubmissions(recs)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// isDuplicateKey 依赖 TranslateError；未开启时按驱动错误文本兜底
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint")
}

func decodeAssessment(rec *model.AssessmentRecord) (*model.Assessment, error) {
	var a model.Assessment
	if err := json.Unmarshal(rec.Document, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func decodeSubmission(rec *model.SubmissionRecord) (*model.Submission, error) {
	var s model.Submission
	if err := json.Unmarshal(rec.Document, &s); err != nil {
		return nil, err
	}
	s.ID = rec.ID
	return &s, nil
}

func decodeSubmissions(recs []model.SubmissionRecord) ([]model.Submission, error) {
	out := make([]model.Submission, 0, len(recs))
	for i := range recs {
		s, err := decodeSubmission(&recs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, nil
}
