package service

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"talentflow_backend/internal/config"
	"talentflow_backend/internal/model"
	"talentflow_backend/internal/util"

	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/blake2b"
)

func TestExportResponses(t *testing.T) {
	f := newFixture(t)
	f.seed(t, nil)
	ctx := context.Background()
	if _, err := f.submissions.Submit(ctx, SubmitInput{JobID: testJob, CandidateID: "cand-1", Answers: model.AnswerSet{"q1": "b", "q2": "because"}}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	exporter := NewExportService(f.assessments, f.submissions)
	data, name, err := exporter.ExportResponses(ctx, testJob)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.HasSuffix(name, ".xlsx") {
		t.Fatalf("unexpected file name %q", name)
	}

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer wb.Close()

	rows, err := wb.GetRows(responsesSheet)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %d", len(rows))
	}
	header := rows[0]
	if header[0] != "candidate_id" || header[len(header)-2] != "Pick b" || header[len(header)-1] != "Why b?" {
		t.Fatalf("unexpected header: %v", header)
	}
	row := rows[1]
	if row[0] != "cand-1" || row[3] != "100" || row[len(row)-2] != "b" || row[len(row)-1] != "because" {
		t.Fatalf("unexpected row: %v", row)
	}

	total, err := wb.GetCellValue(summarySheet, "B2")
	if err != nil || total != "1" {
		t.Fatalf("unexpected summary total %q (%v)", total, err)
	}

	if _, _, err := exporter.ExportResponses(ctx, "missing"); !errors.Is(err, util.ErrAssessmentNotFound) {
		t.Fatalf("expected ErrAssessmentNotFound, got %v", err)
	}
}

func TestFormatAnswer(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{[]string{"a", "b"}, "a, b"},
		{[]any{"a", 2.0}, "a, 2"},
		{12.5, "12.5"},
	}
	for _, tt := range tests {
		if got := formatAnswer(tt.in); got != tt.want {
			t.Fatalf("formatAnswer(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func newUploadFixture(t *testing.T) (*fixture, *UploadService, string) {
	t.Helper()
	f := newFixture(t)
	maxMB := 0.001
	f.seed(t, func(a *model.Assessment) {
		a.Sections[0].Questions = append(a.Sections[0].Questions, model.Question{
			ID:         "resume",
			Type:       model.FileUpload,
			Title:      "Resume",
			Points:     1,
			Validation: model.Validation{FileTypes: []string{".pdf", "text/"}, MaxFileSize: &maxMB},
		})
	})
	root := t.TempDir()
	storage := NewStorageService(&config.Config{Storage: config.StorageConfig{Type: util.StorageLocal, LocalPath: root}})
	return f, NewUploadService(f.assessments, storage, 25), root
}

func TestUpload(t *testing.T) {
	ctx := context.Background()
	pdf := []byte("%PDF-1.4 fake")

	t.Run("stores accepted file", func(t *testing.T) {
		_, svc, root := newUploadFixture(t)
		out, err := svc.Store(ctx, testJob, "resume", "cand-1", "CV.PDF", int64(len(pdf)), bytes.NewReader(pdf))
		if err != nil {
			t.Fatalf("upload: %v", err)
		}
		if out.MimeType != "application/pdf" || out.FileName != "CV.PDF" {
			t.Fatalf("unexpected upload: %+v", out)
		}
		if !strings.HasPrefix(out.URL, "/uploads/assessments/") || !strings.HasSuffix(out.URL, ".pdf") {
			t.Fatalf("unexpected url %q", out.URL)
		}
		stored, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(out.URL, "/uploads/"))))
		if err != nil {
			t.Fatalf("read stored file: %v", err)
		}
		if !bytes.Equal(stored, pdf) {
			t.Fatalf("stored content differs")
		}
		sum := blake2b.Sum256(pdf)
		if out.Checksum != hex.EncodeToString(sum[:]) {
			t.Fatalf("unexpected checksum %q", out.Checksum)
		}
	})

	tests := []struct {
		name       string
		questionID string
		candidate  string
		filename   string
		content    []byte
		want       error
	}{
		{"missing candidate", "resume", "", "cv.pdf", pdf, util.ErrCandidateIDRequired},
		{"not a file question", "q1", "c", "cv.pdf", pdf, util.ErrNotFileQuestion},
		{"unknown question", "nope", "c", "cv.pdf", pdf, util.ErrNotFileQuestion},
		{"empty file", "resume", "c", "cv.pdf", nil, util.ErrEmptyFile},
		{"type not allowed", "resume", "c", "cv.exe", []byte{0x4d, 0x5a, 0x90, 0x00}, util.ErrFileTypeNotAllowed},
		{"too large", "resume", "c", "cv.pdf", bytes.Repeat([]byte("a"), 2048), util.ErrFileTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, svc, _ := newUploadFixture(t)
			_, err := svc.Store(ctx, testJob, tt.questionID, tt.candidate, tt.filename, int64(len(tt.content)), bytes.NewReader(tt.content))
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	t.Run("text mime prefix accepted", func(t *testing.T) {
		_, svc, _ := newUploadFixture(t)
		body := []byte("plain notes")
		if _, err := svc.Store(ctx, testJob, "resume", "c", "notes.md", int64(len(body)), bytes.NewReader(body)); err != nil {
			t.Fatalf("upload: %v", err)
		}
	})
}
