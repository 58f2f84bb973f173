package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// swagger:model
type UUIDBase struct {
	ID        string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (b *UUIDBase) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return
}

func GenerateUUID() string {
	return uuid.New().String()
}

// AssessmentRecord 持久化的评估文档；Document 为完整 Assessment JSON
type AssessmentRecord struct {
	UUIDBase
	JobID    string         `gorm:"size:64;index;not null" json:"jobId"`
	Title    string         `gorm:"size:255" json:"title"`
	Status   string         `gorm:"size:20;default:'draft'" json:"status"`
	Version  int            `gorm:"default:0" json:"version"`
	Document datatypes.JSON `json:"document"`
}

func (AssessmentRecord) TableName() string {
	return "assessments"
}

// SubmissionRecord 每次提交追加一行，不做覆盖；(assessment_id, candidate_id, attempt) 唯一
type SubmissionRecord struct {
	UUIDBase
	AssessmentID      string         `gorm:"size:36;uniqueIndex:idx_submission_attempt,priority:1;not null" json:"assessmentId"`
	CandidateID       string         `gorm:"size:64;uniqueIndex:idx_submission_attempt,priority:2;not null" json:"candidateId"`
	Attempt           int            `gorm:"uniqueIndex:idx_submission_attempt,priority:3;not null" json:"attempt"`
	AssessmentVersion int            `json:"assessmentVersion"`
	Score             int            `json:"score"`
	Passed            bool           `json:"passed"`
	SubmittedAt       time.Time      `gorm:"index" json:"submittedAt"`
	Document          datatypes.JSON `json:"document"`
}

func (SubmissionRecord) TableName() string {
	return "assessment_submissions"
}
