package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/lumenlearn/attempt-service/internal/models"
	"github.com/lumenlearn/attempt-service/internal/repositories"
)

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ExportAssessmentAttempts renders every attempt of an assessment as an xlsx
// workbook for instructors.
func (s *exportService) ExportAssessmentAttempts(ctx context.Context, caller Caller, assessmentID string) ([]byte, error) {
	if caller.Role == models.RoleLearner {
		return nil, NewPermissionError(caller.UserID, "attempt", "export", "learners cannot export attempt results")
	}

	assessment, err := s.repo.Assessment().GetByID(ctx, caller.TenantID, assessmentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidAssessment
		}
		return nil, fmt.Errorf("failed to load assessment %s: %w", assessmentID, err)
	}

	attempts, err := s.repo.Attempt().ListByAssessment(ctx, caller.TenantID, assessmentID, repositories.AttemptFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts for assessment %s: %w", assessmentID, err)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("Failed to close workbook", "error", err)
		}
	}()

	const sheet = "Attempts"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		s.logger.Warn("Failed to delete default sheet", "error", err)
	}

	headers := []string{"Attempt ID", "Learner ID", "Status", "Score", "Max Score", "Answered Items", "Submitted At", "Started At"}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for row, attempt := range attempts {
		values := []interface{}{
			attempt.ID,
			attempt.UserID,
			string(attempt.Status),
			floatOrEmpty(attempt.Score),
			floatOrEmpty(attempt.MaxScore),
			len(attempt.Responses),
			timeOrEmpty(attempt.SubmittedAt),
			attempt.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", row+2, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	s.logger.Info("Exported assessment attempts",
		"assessment_id", assessment.ID,
		"attempts", len(attempts))

	return buf.Bytes(), nil
}

func floatOrEmpty(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func timeOrEmpty(t *time.Time) interface{} {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}
