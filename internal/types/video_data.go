package types

import (
	"time"

	"github.com/google/uuid"
)

// VideoData is the per-video aggregate: one row per distinct video id, with
// the comma-joined tag string and a running submission counter. The counter
// is bumped by submissions and reset to zero when the refresh job enriches
// the video into the cache.
type VideoData struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	VideoID   string    `gorm:"uniqueIndex;not null;column:video_id" json:"video_id"`
	Tags      string    `gorm:"not null;column:tags" json:"tags"`
	Timestamp time.Time `gorm:"not null;column:timestamp" json:"timestamp"`
	Count     int       `gorm:"not null;default:1;column:count" json:"count"`
}

func (VideoData) TableName() string {
	return "video_data"
}
