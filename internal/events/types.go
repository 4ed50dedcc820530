package events

import (
	"time"

	"nebula-chat/internal/domain/message"
)

// Outbound event names carried on the websocket wire.
const (
	ReceiveMessage   = "receiveMessage"
	AITyping         = "aiTyping"
	ReactionUpdated  = "reactionUpdated"
	UserStatusChange = "userStatusChange"
)

// PresenceRoom is the room every connection joins on connect; status
// changes fan out through it.
const PresenceRoom = "presence"

// Inbound event names.
const (
	SendMessage  = "sendMessage"
	JoinChannel  = "joinChannel"
	LeaveChannel = "leaveChannel"
)

type MessagePayload struct {
	ID         string              `json:"id"`
	SenderID   string              `json:"senderId"`
	SenderName string              `json:"senderName"`
	Content    string              `json:"content"`
	ChannelID  string              `json:"channelId"`
	Timestamp  time.Time           `json:"timestamp"`
	Attachment *message.Attachment `json:"attachment,omitempty"`
	ParentID   string              `json:"parentId,omitempty"`
}

type TypingPayload struct {
	ChannelID string `json:"channelId"`
	IsTyping  bool   `json:"isTyping"`
}

type ReactionPayload struct {
	MessageID string             `json:"messageId"`
	Reactions []message.Reaction `json:"reactions"`
}

type StatusPayload struct {
	UserID string `json:"userId"`
	Status string `json:"status"`
}
