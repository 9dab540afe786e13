package types

import (
	"time"

	"github.com/google/uuid"
)

// CachedVideoData is a denormalized snapshot of one "top video" under one
// tag, enriched with catalog metadata. The whole table is rebuilt by every
// refresh cycle; rows never carry history.
type CachedVideoData struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	VideoID         string    `gorm:"not null;column:video_id" json:"video_id"`
	TagCategory     string    `gorm:"not null;index;column:tag_category" json:"tag_category"`
	Title           string    `gorm:"column:title" json:"title"`
	ThumbnailURL    string    `gorm:"column:thumbnail_url" json:"thumbnail_url"`
	ViewCount       int64     `gorm:"column:view_count" json:"view_count"`
	VideoCreatedAt  string    `gorm:"column:video_created_at" json:"video_created_at"`
	ChannelName     string    `gorm:"column:channel_name" json:"channel_name"`
	ChannelPhotoURL string    `gorm:"column:channel_photo_url" json:"channel_photo_url"`
	CacheTimestamp  time.Time `gorm:"not null;column:cache_timestamp" json:"cache_timestamp"`
}

func (CachedVideoData) TableName() string {
	return "cached_video_data"
}
