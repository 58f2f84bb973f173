package service

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"talentflow_backend/internal/model"
	"talentflow_backend/internal/util"
	"talentflow_backend/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
)

// UploadedFile 上传结果；URL 作为 file-upload 题目的答案提交
type UploadedFile struct {
	QuestionID string `json:"questionId"`
	URL        string `json:"url"`
	FileName   string `json:"fileName"`
	Size       int64  `json:"size"`
	MimeType   string `json:"mimeType"`
	Checksum   string `json:"checksum"` // blake2b-256
}

type UploadService struct {
	Assessments *AssessmentService
	Storage     *StorageService
	MaxSizeMB   float64
}

func NewUploadService(assessments *AssessmentService, storage *StorageService, maxSizeMB float64) *UploadService {
	return &UploadService{Assessments: assessments, Storage: storage, MaxSizeMB: maxSizeMB}
}

// Upload 保存候选人为 file-upload 题目上传的文件，按题目的 fileTypes/maxFileSize 校验
func (s *UploadService) Upload(ctx context.Context, jobID, questionID, candidateID string, fh *multipart.FileHeader) (*UploadedFile, error) {
	file, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return s.Store(ctx, jobID, questionID, candidateID, fh.Filename, fh.Size, file)
}

func (s *UploadService) Store(ctx context.Context, jobID, questionID, candidateID, filename string, size int64, file io.ReadSeeker) (*UploadedFile, error) {
	if strings.TrimSpace(candidateID) == "" {
		return nil, util.ErrCandidateIDRequired
	}
	a, err := s.Assessments.GetForJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	q, ok := a.FindQuestion(questionID)
	if !ok || q.Type != model.FileUpload {
		return nil, util.ErrNotFileQuestion
	}
	if size <= 0 {
		return nil, util.ErrEmptyFile
	}
	if limit := s.limitBytes(q); limit > 0 && size > limit {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", util.ErrFileTooLarge, size, limit)
	}

	mimeType, err := util.DetectMimeType(file)
	if err != nil {
		return nil, util.ErrEmptyFile
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	if !util.ExtensionAllowed(filename, mimeType, q.Validation.FileTypes) {
		return nil, util.ErrFileTypeNotAllowed
	}

	base := filepath.Base(filename)
	key := path.Join("assessments", a.ID, url.PathEscape(candidateID), uuid.NewString()+strings.ToLower(filepath.Ext(base)))
	hasher, err := blake2b.New256(nil)
	if err != nil {
		return nil, err
	}
	fileURL, err := s.Storage.Upload(ctx, key, io.TeeReader(file, hasher), size, mimeType)
	if err != nil {
		logger.Log.Error("failed to store answer file",
			zap.String("assessmentId", a.ID),
			zap.String("questionId", questionID),
			zap.Error(err))
		return nil, err
	}

	return &UploadedFile{
		QuestionID: questionID,
		URL:        fileURL,
		FileName:   base,
		Size:       size,
		MimeType:   mimeType,
		Checksum:   hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

// limitBytes 取题目 maxFileSize 与全局上限中较小者
func (s *UploadService) limitBytes(q model.Question) int64 {
	limit := s.MaxSizeMB
	if maxMB := q.Validation.MaxFileSize; maxMB != nil && *maxMB > 0 {
		if limit <= 0 || *maxMB < limit {
			limit = *maxMB
		}
	}
	return int64(limit * util.BytesPerMB)
}
