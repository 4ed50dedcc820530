package channel

import (
	"time"

	"github.com/google/uuid"
)

// Channel represents the channels table
type Channel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	IsDM      bool      `json:"isDM"`
	CreatedAt time.Time `json:"createdAt"`
}

// Participant represents channel_participants
type Participant struct {
	ChannelID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	JoinedAt  time.Time
}

func (Channel) TableName() string {
	return "channels"
}

func (Participant) TableName() string {
	return "channel_participants"
}
