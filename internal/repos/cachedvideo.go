package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ytfeed/ytfeed-backend/internal/logger"
	"github.com/ytfeed/ytfeed-backend/internal/types"
)

type CachedVideoRepo interface {
	Create(ctx context.Context, tx *gorm.DB, cached *types.CachedVideoData) error
	DeleteAll(ctx context.Context, tx *gorm.DB) error
	GetByTagCategory(ctx context.Context, tx *gorm.DB, tag string) ([]*types.CachedVideoData, error)
}

type cachedVideoRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCachedVideoRepo(db *gorm.DB, baseLog *logger.Logger) CachedVideoRepo {
	repoLog := baseLog.With("repo", "CachedVideoRepo")
	return &cachedVideoRepo{db: db, log: repoLog}
}

func (cvr *cachedVideoRepo) Create(ctx context.Context, tx *gorm.DB, cached *types.CachedVideoData) error {
	transaction := tx
	if transaction == nil {
		transaction = cvr.db
	}

	if cached.ID == uuid.Nil {
		cached.ID = uuid.New()
	}
	return transaction.WithContext(ctx).Create(cached).Error
}

func (cvr *cachedVideoRepo) DeleteAll(ctx context.Context, tx *gorm.DB) error {
	transaction := tx
	if transaction == nil {
		transaction = cvr.db
	}

	return transaction.WithContext(ctx).
		Where("1 = 1").
		Delete(&types.CachedVideoData{}).Error
}

func (cvr *cachedVideoRepo) GetByTagCategory(ctx context.Context, tx *gorm.DB, tag string) ([]*types.CachedVideoData, error) {
	transaction := tx
	if transaction == nil {
		transaction = cvr.db
	}

	var results []*types.CachedVideoData
	if err := transaction.WithContext(ctx).
		Where("tag_category = ?", tag).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
