package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ytfeed/ytfeed-backend/internal/logger"
	"github.com/ytfeed/ytfeed-backend/internal/types"
)

type UserDataRepo interface {
	Create(ctx context.Context, tx *gorm.DB, record *types.UserData) error
	CountByUserInWindow(ctx context.Context, tx *gorm.DB, googleID string, start, end time.Time) (int64, error)
	Exists(ctx context.Context, tx *gorm.DB, googleID, videoID string) (bool, error)
	GetByUser(ctx context.Context, tx *gorm.DB, googleID string) ([]*types.UserData, error)
}

type userDataRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserDataRepo(db *gorm.DB, baseLog *logger.Logger) UserDataRepo {
	repoLog := baseLog.With("repo", "UserDataRepo")
	return &userDataRepo{db: db, log: repoLog}
}

func (udr *userDataRepo) Create(ctx context.Context, tx *gorm.DB, record *types.UserData) error {
	transaction := tx
	if transaction == nil {
		transaction = udr.db
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return transaction.WithContext(ctx).Create(record).Error
}

func (udr *userDataRepo) CountByUserInWindow(ctx context.Context, tx *gorm.DB, googleID string, start, end time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = udr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.UserData{}).
		Where("google_id = ? AND timestamp >= ? AND timestamp < ?", googleID, start, end).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (udr *userDataRepo) Exists(ctx context.Context, tx *gorm.DB, googleID, videoID string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = udr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.UserData{}).
		Where("google_id = ? AND video_id = ?", googleID, videoID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (udr *userDataRepo) GetByUser(ctx context.Context, tx *gorm.DB, googleID string) ([]*types.UserData, error) {
	transaction := tx
	if transaction == nil {
		transaction = udr.db
	}

	var results []*types.UserData
	if err := transaction.WithContext(ctx).
		Where("google_id = ?", googleID).
		Order("timestamp DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
