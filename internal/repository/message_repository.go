package repository

import (
	"context"
	"errors"

	"nebula-chat/internal/domain/message"
	nebula_errors "nebula-chat/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &PostgresMessageRepository{db: db}
}

func (r *PostgresMessageRepository) Create(ctx context.Context, m *message.Message) error {
	res := r.db.WithContext(ctx).Create(m)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return nebula_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresMessageRepository) GetByID(ctx context.Context, id uuid.UUID) (message.Message, error) {
	var m message.Message
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message.Message{}, nebula_errors.ErrNotFound
		}
		return message.Message{}, err
	}
	return m, nil
}

func (r *PostgresMessageRepository) UpdateReactions(ctx context.Context, id uuid.UUID, reactions []message.Reaction) error {
	res := r.db.WithContext(ctx).
		Model(&message.Message{}).
		Where("id = ?", id).
		Update("reactions", reactions)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return nebula_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresMessageRepository) UpdateThreadStats(ctx context.Context, m message.Message) error {
	res := r.db.WithContext(ctx).
		Model(&message.Message{}).
		Where("id = ?", m.ID).
		Updates(map[string]interface{}{
			"is_thread_parent":   m.IsThreadParent,
			"thread_reply_count": m.ThreadReplyCount,
			"last_reply_at":      m.LastReplyAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return nebula_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresMessageRepository) GetChannelMessages(ctx context.Context, channelID uuid.UUID) ([]message.Message, error) {
	var messages []message.Message
	err := r.db.WithContext(ctx).
		Where("channel_id = ?", channelID).
		Order("timestamp ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *PostgresMessageRepository) GetThreadReplies(ctx context.Context, parentID uuid.UUID, limit, offset int) ([]message.Message, int64, error) {
	var total int64
	q := r.db.WithContext(ctx).
		Model(&message.Message{}).
		Where("parent_id = ?", parentID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var replies []message.Message
	err := r.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("timestamp ASC").
		Limit(limit).
		Offset(offset).
		Find(&replies).Error
	if err != nil {
		return nil, 0, err
	}
	return replies, total, nil
}

func (r *PostgresMessageRepository) ListBatch(ctx context.Context, offset, limit int) ([]message.Message, error) {
	var messages []message.Message
	err := r.db.WithContext(ctx).
		Order("timestamp ASC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *PostgresMessageRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&message.Message{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
