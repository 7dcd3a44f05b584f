package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/lumenlearn/attempt-service/internal/models"
	"github.com/lumenlearn/attempt-service/internal/repositories"
)

// AttemptPostgreSQL persists attempts. No cache here: attempts mutate on
// every patch and a stale read would lose answers.
type AttemptPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{db: db}
}

func (a *AttemptPostgreSQL) Save(ctx context.Context, attempt *models.Attempt) error {
	if err := a.db.WithContext(ctx).Save(attempt).Error; err != nil {
		return fmt.Errorf("failed to save attempt: %w", err)
	}
	return nil
}

func (a *AttemptPostgreSQL) GetByID(ctx context.Context, tenantID, id string) (*models.Attempt, error) {
	var attempt models.Attempt
	err := a.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) ListByLearner(ctx context.Context, tenantID, assessmentID, userID string) ([]*models.Attempt, error) {
	var attempts []*models.Attempt
	err := a.db.WithContext(ctx).
		Where("tenant_id = ? AND assessment_id = ? AND user_id = ?", tenantID, assessmentID, userID).
		Order("created_at ASC").
		Find(&attempts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts by learner: %w", err)
	}
	return attempts, nil
}

func (a *AttemptPostgreSQL) ListByAssessment(ctx context.Context, tenantID, assessmentID string, filters repositories.AttemptFilters) ([]*models.Attempt, error) {
	query := a.db.WithContext(ctx).
		Where("tenant_id = ? AND assessment_id = ?", tenantID, assessmentID)

	var attempts []*models.Attempt
	if err := applyAttemptFilters(query, filters).Find(&attempts).Error; err != nil {
		return nil, fmt.Errorf("failed to list attempts by assessment: %w", err)
	}
	return attempts, nil
}

func (a *AttemptPostgreSQL) ListByUser(ctx context.Context, tenantID, userID string, filters repositories.AttemptFilters) ([]*models.Attempt, error) {
	query := a.db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID)

	var attempts []*models.Attempt
	if err := applyAttemptFilters(query, filters).Find(&attempts).Error; err != nil {
		return nil, fmt.Errorf("failed to list attempts by user: %w", err)
	}
	return attempts, nil
}

func applyAttemptFilters(query *gorm.DB, filters repositories.AttemptFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	return query.Order("created_at DESC")
}
