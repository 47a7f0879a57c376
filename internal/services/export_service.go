package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/binhtph/quiz-app/internal/leaderboard"
	"github.com/binhtph/quiz-app/internal/models"
	"github.com/binhtph/quiz-app/internal/repositories"
	"github.com/xuri/excelize/v2"
)

const (
	leaderboardSheet = "Leaderboard"
	resultsSheet     = "Results"
	exportTimeLayout = "2006-01-02 15:04:05"
)

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
	log    *ServiceLogger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
		log:    NewServiceLogger(logger, LogConfig{Service: "quiz-app", Component: "export"}),
	}
}

// ExportResults writes a workbook with the full leaderboard on the first sheet
// and every attempt, anonymous ones included, on the second.
func (s *exportService) ExportResults(ctx context.Context, examID uint) (*bytes.Buffer, string, error) {
	op := s.log.WithOperation(ctx, "export_results")

	exam, err := s.repo.Exam().GetByID(ctx, nil, examID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			err = ErrExamNotFound
		}
		op.LogResult(examID, "exam", err)
		return nil, "", err
	}

	results, err := s.repo.Result().ListByExam(ctx, nil, examID)
	if err != nil {
		op.LogResult(examID, "exam", err)
		return nil, "", fmt.Errorf("failed to get exam results: %w", err)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("Failed to close workbook", "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", leaderboardSheet); err != nil {
		return nil, "", fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	if _, err := f.NewSheet(resultsSheet); err != nil {
		return nil, "", fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, "", fmt.Errorf("failed to create Excel style: %w", err)
	}

	entries := leaderboard.BestPerUser(results, 0)
	rows := make([][]any, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, []any{i + 1, e.UserName, e.Score, e.Total, e.Percentage, e.TimeTaken, e.Attempts})
	}
	if err := writeSheet(f, leaderboardSheet, headerStyle,
		[]string{"Rank", "Name", "Score", "Total", "Percentage", "Time (seconds)", "Attempts"}, rows); err != nil {
		return nil, "", err
	}

	rows = make([][]any, 0, len(results))
	for i := range results {
		r := &results[i]
		rows = append(rows, []any{
			r.ID,
			displayName(r),
			r.Score,
			r.Total,
			r.Percentage(),
			r.TimeTaken,
			r.CompletedAt.Format(exportTimeLayout),
		})
	}
	if err := writeSheet(f, resultsSheet, headerStyle,
		[]string{"ID", "Name", "Score", "Total", "Percentage", "Time (seconds)", "Completed At"}, rows); err != nil {
		return nil, "", err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		op.LogResult(examID, "exam", err)
		return nil, "", fmt.Errorf("failed to write Excel file: %w", err)
	}

	op.LogResult(examID, "exam", nil)
	s.logger.Debug("Exported exam results", "exam_id", exam.ID, "results", len(results), "bytes", buf.Len())
	return buf, fmt.Sprintf("exam-%d-results.xlsx", examID), nil
}

func writeSheet(f *excelize.File, sheet string, headerStyle int, headers []string, rows [][]any) error {
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for rowIndex, row := range rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIndex+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to write row %d: %w", rowIndex+2, err)
			}
		}
	}
	return nil
}

func displayName(r *models.Result) string {
	if name := r.Name(); name != "" {
		return name
	}
	return "(anonymous)"
}
