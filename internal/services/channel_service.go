package services

import (
	"context"
	"strings"
	"time"

	"nebula-chat/internal/domain/channel"
	"nebula-chat/internal/domain/user"
	"nebula-chat/internal/repository"
	nebula_errors "nebula-chat/pkg/errors"

	"github.com/google/uuid"
)

type ChannelService struct {
	channelRepo repository.ChannelRepository
	userRepo    repository.UserRepository
}

func NewChannelService(channelRepo repository.ChannelRepository, userRepo repository.UserRepository) *ChannelService {
	return &ChannelService{channelRepo: channelRepo, userRepo: userRepo}
}

type CreateChannelInput struct {
	Name           string
	IsDM           bool
	ParticipantIDs []uuid.UUID
}

// ChannelDetail pairs a channel with its resolved participants.
type ChannelDetail struct {
	Channel      channel.Channel `json:"channel"`
	Participants []user.User     `json:"participants"`
}

func (s *ChannelService) Create(ctx context.Context, in CreateChannelInput) (channel.Channel, error) {
	if strings.TrimSpace(in.Name) == "" || len(in.ParticipantIDs) == 0 {
		return channel.Channel{}, nebula_errors.ErrInvalidInput
	}

	automated := 0
	for _, id := range in.ParticipantIDs {
		u, err := s.userRepo.GetByID(ctx, id)
		if err != nil {
			return channel.Channel{}, err
		}
		if u.IsAI {
			automated++
		}
	}
	// A DM with two automated participants has no well-defined reply flow.
	if in.IsDM && automated > 1 {
		return channel.Channel{}, nebula_errors.ErrInvalidInput
	}
	if in.IsDM && len(in.ParticipantIDs) != 2 {
		return channel.Channel{}, nebula_errors.ErrInvalidInput
	}

	ch := channel.Channel{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(in.Name),
		IsDM:      in.IsDM,
		CreatedAt: time.Now(),
	}
	if err := s.channelRepo.Create(ctx, &ch, in.ParticipantIDs); err != nil {
		return channel.Channel{}, err
	}
	return ch, nil
}

func (s *ChannelService) List(ctx context.Context) ([]channel.Channel, error) {
	return s.channelRepo.List(ctx)
}

func (s *ChannelService) Get(ctx context.Context, id uuid.UUID) (ChannelDetail, error) {
	ch, err := s.channelRepo.GetByID(ctx, id)
	if err != nil {
		return ChannelDetail{}, err
	}
	participants, err := s.channelRepo.GetParticipants(ctx, id)
	if err != nil {
		return ChannelDetail{}, err
	}
	return ChannelDetail{Channel: ch, Participants: participants}, nil
}
