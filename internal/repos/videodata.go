package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ytfeed/ytfeed-backend/internal/logger"
	"github.com/ytfeed/ytfeed-backend/internal/types"
)

type VideoDataRepo interface {
	Create(ctx context.Context, tx *gorm.DB, video *types.VideoData) error
	GetByVideoID(ctx context.Context, tx *gorm.DB, videoID string) (*types.VideoData, error)
	IncrementCount(ctx context.Context, tx *gorm.DB, videoID string) error
	ResetCount(ctx context.Context, tx *gorm.DB, videoID string) error
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.VideoData, error)
	GetByTagLike(ctx context.Context, tx *gorm.DB, tag string) ([]*types.VideoData, error)
	GetTopByTagLike(ctx context.Context, tx *gorm.DB, tag string, limit int) ([]*types.VideoData, error)
}

type videoDataRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVideoDataRepo(db *gorm.DB, baseLog *logger.Logger) VideoDataRepo {
	repoLog := baseLog.With("repo", "VideoDataRepo")
	return &videoDataRepo{db: db, log: repoLog}
}

func (vdr *videoDataRepo) Create(ctx context.Context, tx *gorm.DB, video *types.VideoData) error {
	transaction := tx
	if transaction == nil {
		transaction = vdr.db
	}

	if video.ID == uuid.Nil {
		video.ID = uuid.New()
	}
	return transaction.WithContext(ctx).Create(video).Error
}

func (vdr *videoDataRepo) GetByVideoID(ctx context.Context, tx *gorm.DB, videoID string) (*types.VideoData, error) {
	transaction := tx
	if transaction == nil {
		transaction = vdr.db
	}

	var result types.VideoData
	err := transaction.WithContext(ctx).
		Where("video_id = ?", videoID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (vdr *videoDataRepo) IncrementCount(ctx context.Context, tx *gorm.DB, videoID string) error {
	transaction := tx
	if transaction == nil {
		transaction = vdr.db
	}

	return transaction.WithContext(ctx).
		Model(&types.VideoData{}).
		Where("video_id = ?", videoID).
		UpdateColumn("count", gorm.Expr("count + 1")).Error
}

func (vdr *videoDataRepo) ResetCount(ctx context.Context, tx *gorm.DB, videoID string) error {
	transaction := tx
	if transaction == nil {
		transaction = vdr.db
	}

	return transaction.WithContext(ctx).
		Model(&types.VideoData{}).
		Where("video_id = ?", videoID).
		UpdateColumn("count", 0).Error
}

func (vdr *videoDataRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.VideoData, error) {
	transaction := tx
	if transaction == nil {
		transaction = vdr.db
	}

	var results []*types.VideoData
	if err := transaction.WithContext(ctx).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (vdr *videoDataRepo) GetByTagLike(ctx context.Context, tx *gorm.DB, tag string) ([]*types.VideoData, error) {
	transaction := tx
	if transaction == nil {
		transaction = vdr.db
	}

	var results []*types.VideoData
	if err := transaction.WithContext(ctx).
		Where("tags LIKE ?", "%"+tag+"%").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (vdr *videoDataRepo) GetTopByTagLike(ctx context.Context, tx *gorm.DB, tag string, limit int) ([]*types.VideoData, error) {
	transaction := tx
	if transaction == nil {
		transaction = vdr.db
	}

	var results []*types.VideoData
	if err := transaction.WithContext(ctx).
		Where("tags LIKE ?", "%"+tag+"%").
		Order("count DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
