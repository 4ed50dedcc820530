package repository

import (
	"context"
	"errors"
	"time"

	"nebula-chat/internal/domain/channel"
	"nebula-chat/internal/domain/user"
	nebula_errors "nebula-chat/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresChannelRepository struct {
	db *gorm.DB
}

func NewChannelRepository(db *gorm.DB) ChannelRepository {
	return &PostgresChannelRepository{db: db}
}

func (r *PostgresChannelRepository) Create(ctx context.Context, ch *channel.Channel, participantIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(ch).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nebula_errors.ErrAlreadyExists
			}
			return err
		}
		now := time.Now()
		for _, userID := range participantIDs {
			p := channel.Participant{ChannelID: ch.ID, UserID: userID, JoinedAt: now}
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PostgresChannelRepository) GetByID(ctx context.Context, id uuid.UUID) (channel.Channel, error) {
	var ch channel.Channel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&ch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return channel.Channel{}, nebula_errors.ErrNotFound
		}
		return channel.Channel{}, err
	}
	return ch, nil
}

func (r *PostgresChannelRepository) List(ctx context.Context) ([]channel.Channel, error) {
	var channels []channel.Channel
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&channels).Error; err != nil {
		return nil, err
	}
	return channels, nil
}

func (r *PostgresChannelRepository) GetParticipants(ctx context.Context, channelID uuid.UUID) ([]user.User, error) {
	var users []user.User
	err := r.db.WithContext(ctx).
		Joins("JOIN channel_participants ON channel_participants.user_id = users.id").
		Where("channel_participants.channel_id = ?", channelID).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *PostgresChannelRepository) GetAccessibleChannelIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&channel.Channel{}).
		Distinct("channels.id").
		Joins("LEFT JOIN channel_participants ON channel_participants.channel_id = channels.id").
		Where("channels.is_dm = ? OR channel_participants.user_id = ?", false, userID).
		Pluck("channels.id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
