package message

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Attachment is an opaque file reference produced by the upload service and
// copied through unchanged.
type Attachment struct {
	URL         string `json:"url"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	Key         string `json:"key"`
}

// Reaction groups the users who reacted with one emoji. An entry with an
// empty user set is removed, never stored.
type Reaction struct {
	Emoji string   `json:"emoji"`
	Users []string `json:"users"`
}

// Message represents the messages table. Reactions and the optional
// attachment are JSON columns, mutated only through the service layer which
// serializes writes per message id.
type Message struct {
	ID               uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ChannelID        uuid.UUID     `gorm:"type:uuid;index;not null" json:"channelId"`
	SenderID         uuid.UUID     `gorm:"type:uuid;index;not null" json:"senderId"`
	Content          string        `gorm:"not null" json:"content"`
	Timestamp        time.Time     `gorm:"index" json:"timestamp"`
	Attachment       *Attachment   `gorm:"serializer:json" json:"attachment,omitempty"`
	ParentID         uuid.NullUUID `gorm:"type:uuid;index" json:"parentId,omitempty"`
	IsThreadParent   bool          `json:"isThreadParent"`
	ThreadReplyCount int           `json:"threadReplyCount"`
	LastReplyAt      sql.NullTime  `json:"lastReplyAt,omitempty"`
	Reactions        []Reaction    `gorm:"serializer:json" json:"reactions"`
}

func (Message) TableName() string {
	return "messages"
}

// ToggleReaction flips userID's membership under emoji and returns the
// updated list. Creating, joining, leaving and emptying an entry are the four
// possible transitions; toggling twice always restores the prior state.
func ToggleReaction(reactions []Reaction, emoji, userID string) []Reaction {
	for i, r := range reactions {
		if r.Emoji != emoji {
			continue
		}
		for j, u := range r.Users {
			if u != userID {
				continue
			}
			users := append(r.Users[:j:j], r.Users[j+1:]...)
			if len(users) == 0 {
				return append(reactions[:i:i], reactions[i+1:]...)
			}
			updated := make([]Reaction, len(reactions))
			copy(updated, reactions)
			updated[i].Users = users
			return updated
		}
		updated := make([]Reaction, len(reactions))
		copy(updated, reactions)
		updated[i].Users = append(r.Users[:len(r.Users):len(r.Users)], userID)
		return updated
	}
	return append(reactions[:len(reactions):len(reactions)], Reaction{Emoji: emoji, Users: []string{userID}})
}

// RecordReplies applies thread bookkeeping for n newly persisted replies.
func (m *Message) RecordReplies(n int, at time.Time) {
	m.IsThreadParent = true
	m.ThreadReplyCount += n
	m.LastReplyAt = sql.NullTime{Time: at, Valid: true}
}
