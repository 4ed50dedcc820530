package repository

import (
	"context"

	"nebula-chat/internal/domain/channel"
	"nebula-chat/internal/domain/message"
	"nebula-chat/internal/domain/user"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

type ChannelRepository interface {
	Create(ctx context.Context, ch *channel.Channel, participantIDs []uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (channel.Channel, error)
	List(ctx context.Context) ([]channel.Channel, error)
	GetParticipants(ctx context.Context, channelID uuid.UUID) ([]user.User, error)
	// GetAccessibleChannelIDs returns every non-DM channel plus the DM
	// channels the user participates in.
	GetAccessibleChannelIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type MessageRepository interface {
	Create(ctx context.Context, m *message.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (message.Message, error)
	UpdateReactions(ctx context.Context, id uuid.UUID, reactions []message.Reaction) error
	UpdateThreadStats(ctx context.Context, m message.Message) error
	GetChannelMessages(ctx context.Context, channelID uuid.UUID) ([]message.Message, error)
	GetThreadReplies(ctx context.Context, parentID uuid.UUID, limit, offset int) ([]message.Message, int64, error)
	ListBatch(ctx context.Context, offset, limit int) ([]message.Message, error)
	CountAll(ctx context.Context) (int64, error)
}
