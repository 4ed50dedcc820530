package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"nebula-chat/internal/domain/message"
	"nebula-chat/internal/storage"
	nebula_errors "nebula-chat/pkg/errors"
)

const maxUploadBytes = 10 << 20 // 10MB

var allowedUploadTypes = map[string]bool{
	"image/jpeg":         true,
	"image/png":          true,
	"image/gif":          true,
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"text/plain": true,
}

// UploadService stores attachment blobs and produces the opaque file value
// messages carry through unchanged.
type UploadService struct {
	storage *storage.Client
}

func NewUploadService(storage *storage.Client) *UploadService {
	return &UploadService{storage: storage}
}

type UploadInput struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

func (s *UploadService) Upload(ctx context.Context, in UploadInput) (message.Attachment, error) {
	if s.storage == nil {
		return message.Attachment{}, fmt.Errorf("object storage is not configured: %w", nebula_errors.ErrInvalidInput)
	}
	if in.Filename == "" || in.Body == nil {
		return message.Attachment{}, nebula_errors.ErrInvalidInput
	}
	if in.Size <= 0 || in.Size > maxUploadBytes {
		return message.Attachment{}, nebula_errors.ErrInvalidInput
	}
	if !allowedUploadTypes[in.ContentType] {
		return message.Attachment{}, nebula_errors.ErrInvalidInput
	}

	key := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), in.Filename)
	if err := s.storage.Upload(ctx, key, in.ContentType, in.Size, in.Body); err != nil {
		return message.Attachment{}, err
	}

	url, err := s.storage.PresignGet(ctx, key)
	if err != nil {
		return message.Attachment{}, err
	}

	return message.Attachment{
		URL:         url,
		Filename:    in.Filename,
		ContentType: in.ContentType,
		Size:        in.Size,
		Key:         key,
	}, nil
}

// RefreshURL issues a new download URL for a stored attachment key.
func (s *UploadService) RefreshURL(ctx context.Context, key string) (string, error) {
	if s.storage == nil {
		return "", fmt.Errorf("object storage is not configured: %w", nebula_errors.ErrInvalidInput)
	}
	if key == "" {
		return "", nebula_errors.ErrInvalidInput
	}
	return s.storage.PresignGet(ctx, key)
}
