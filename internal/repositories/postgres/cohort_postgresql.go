package postgres

import (
	"context"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/lumenlearn/attempt-service/internal/cache"
	"github.com/lumenlearn/attempt-service/internal/models"
	"github.com/lumenlearn/attempt-service/internal/repositories"
)

type CohortPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewCohortPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.CohortRepository {
	return &CohortPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

// ListByLearner returns the cohorts containing the learner. The membership
// test runs against the jsonb learner list; results are cached briefly since
// the eligibility gate hits this on every start.
func (c *CohortPostgreSQL) ListByLearner(ctx context.Context, tenantID, userID string) ([]*models.Cohort, error) {
	cacheKey := fmt.Sprintf("%s:learner:%s", tenantID, userID)

	var cached []*models.Cohort
	if err := c.cacheManager.Cohort.Get(ctx, cacheKey, &cached); err == nil {
		return cached, nil
	}

	var cohorts []*models.Cohort
	err := c.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where(datatypes.JSONArrayQuery("learner_ids").Contains(userID)).
		Order("created_at ASC").
		Find(&cohorts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cohorts by learner: %w", err)
	}

	_ = c.cacheManager.Cohort.Set(ctx, cacheKey, cohorts, cache.CohortCacheConfig.TTL)

	return cohorts, nil
}
