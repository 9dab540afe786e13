package types

import (
	"time"

	"github.com/google/uuid"
)

// UserData is one per-user contribution record: which video a user tagged,
// with which tags, and when. The timestamp drives the daily quota window.
type UserData struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GoogleID  string    `gorm:"not null;index;column:google_id" json:"google_id"`
	VideoID   string    `gorm:"not null;index;column:video_id" json:"video_id"`
	Tags      string    `gorm:"not null;column:tags" json:"tags"`
	Timestamp time.Time `gorm:"not null;index;column:timestamp" json:"timestamp"`
}

func (UserData) TableName() string {
	return "user_data"
}
