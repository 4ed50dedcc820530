package ws

import (
	"encoding/json"

	"nebula-chat/internal/domain/message"
)

// Envelope frames every websocket message in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// SendMessageRequest is the inbound sendMessage payload.
type SendMessageRequest struct {
	Content         string              `json:"content"`
	ChannelID       string              `json:"channelId"`
	Attachment      *message.Attachment `json:"attachment,omitempty"`
	ParentMessageID string              `json:"parentMessageId,omitempty"`
}

// ChannelRequest is the inbound joinChannel/leaveChannel payload.
type ChannelRequest struct {
	ChannelID string `json:"channelId"`
}
