package httpdto

import "nebula-chat/internal/domain/message"

type ToggleReactionRequest struct {
	Emoji string `json:"emoji" binding:"required"`
}

type ToggleReactionResponse struct {
	Reactions []message.Reaction `json:"reactions"`
}

type CreateThreadReplyRequest struct {
	Content    string              `json:"content"`
	Attachment *message.Attachment `json:"attachment,omitempty"`
}
