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

// ItemPostgreSQL serves read-only item lookups. Items are hot during grading
// (every submit resolves the full item list), so hits are cached.
type ItemPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewItemPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.ItemRepository {
	return &ItemPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

func (i *ItemPostgreSQL) GetByID(ctx context.Context, tenantID, id string) (*models.Item, error) {
	cacheKey := fmt.Sprintf("%s:%s", tenantID, id)

	var cached models.Item
	if err := i.cacheManager.Item.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	var item models.Item
	err := i.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	_ = i.cacheManager.Item.Set(ctx, cacheKey, &item, cache.ItemCacheConfig.TTL)

	return &item, nil
}
