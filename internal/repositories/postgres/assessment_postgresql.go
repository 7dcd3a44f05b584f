package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/lumenlearn/attempt-service/internal/cache"
	"github.com/lumenlearn/attempt-service/internal/models"
	"github.com/lumenlearn/attempt-service/internal/repositories"
)

type AssessmentPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewAssessmentPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.AssessmentRepository {
	return &AssessmentPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

func (a *AssessmentPostgreSQL) GetByID(ctx context.Context, tenantID, id string) (*models.Assessment, error) {
	cacheKey := fmt.Sprintf("%s:%s", tenantID, id)

	var cached models.Assessment
	if err := a.cacheManager.Assessment.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	var assessment models.Assessment
	err := a.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&assessment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}

	// Best-effort; a cache write failure never fails the read.
	_ = a.cacheManager.Assessment.Set(ctx, cacheKey, &assessment, cache.AssessmentCacheConfig.TTL)

	return &assessment, nil
}
