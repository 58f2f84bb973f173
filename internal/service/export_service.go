package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"talentflow_backend/internal/util"

	"github.com/xuri/excelize/v2"
)

const (
	responsesSheet = "Responses"
	summarySheet   = "Summary"
)

// ExportService 导出岗位评估的提交记录为 xlsx
type ExportService struct {
	Assessments *AssessmentService
	Submissions *SubmissionService
}

func NewExportService(assessments *AssessmentService, submissions *SubmissionService) *ExportService {
	return &ExportService{Assessments: assessments, Submissions: submissions}
}

// ExportResponses 每次提交一行，题目按当前版本的顺序展开成列；第二个工作表是汇总统计
func (s *ExportService) ExportResponses(ctx context.Context, jobID string) ([]byte, string, error) {
	a, err := s.Assessments.GetForJob(ctx, jobID)
	if err != nil {
		return nil, "", err
	}
	resp, err := s.Submissions.Responses(ctx, jobID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), responsesSheet); err != nil {
		return nil, "", fmt.Errorf("rename sheet: %w", err)
	}

	questions := a.Questions()
	headers := []string{"candidate_id", "attempt", "assessment_version", "score", "passed", "started_at", "submitted_at", "time_taken_seconds", "questions_answered", "total_questions"}
	fixed := len(headers)
	for _, q := range questions {
		headers = append(headers, q.Title)
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(responsesSheet, cell, h)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(responsesSheet, "A1", last, style)
	}

	for i, sub := range resp.Submissions {
		row := i + 2
		values := []any{
			sub.CandidateID,
			sub.Attempt,
			sub.AssessmentVersion,
			sub.Score,
			sub.Passed,
			sub.StartedAt.Format(util.TimeFormat),
			sub.SubmittedAt.Format(util.TimeFormat),
			sub.TimeTaken,
			sub.QuestionsAnswered,
			sub.TotalQuestions,
		}
		for _, q := range questions {
			values = append(values, formatAnswer(sub.Responses[q.ID]))
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(responsesSheet, cell, v)
		}
	}
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	_ = f.SetColWidth(responsesSheet, "A", lastCol, 20)
	if len(questions) > 0 {
		firstQ, _ := excelize.ColumnNumberToName(fixed + 1)
		_ = f.SetColWidth(responsesSheet, firstQ, lastCol, 32)
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, "", fmt.Errorf("create summary sheet: %w", err)
	}
	summary := [][]any{
		{"assessment", a.Title},
		{"total_submissions", resp.Stats.TotalSubmissions},
		{"unique_candidates", resp.Stats.UniqueCandidates},
		{"average_score", resp.Stats.AverageScore},
		{"pass_rate", resp.Stats.PassRate},
		{"average_time_taken_seconds", resp.Stats.AverageTimeTaken},
	}
	for i, kv := range summary {
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", i+1), kv[0])
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", i+1), kv[1])
	}
	_ = f.SetColWidth(summarySheet, "A", "B", 28)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), fmt.Sprintf("assessment-%s-responses.xlsx", jobID), nil
}

func formatAnswer(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []string:
		return strings.Join(x, ", ")
	case []any:
		parts := make([]string, 0, len(x))
		for _, p := range x {
			parts = append(parts, fmt.Sprint(p))
		}
		return strings.Join(parts, ", ")
	}
	return fmt.Sprint(v)
}
