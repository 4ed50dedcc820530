package httpdto

import "nebula-chat/internal/domain/message"

type UploadResponse struct {
	File message.Attachment `json:"file"`
}
