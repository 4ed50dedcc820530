package services

import (
	"context"

	"nebula-chat/internal/domain/user"
	"nebula-chat/internal/events"
	"nebula-chat/internal/redis"
	"nebula-chat/internal/repository"
	nebula_errors "nebula-chat/pkg/errors"
	"nebula-chat/pkg/logger"

	"github.com/google/uuid"
)

// UserService serves the user directory and presence updates. Status
// changes are persisted, mirrored to the redis presence store, and
// broadcast to every connected user's own room.
type UserService struct {
	userRepo  repository.UserRepository
	presence  *redis.PresenceStore
	broadcast Broadcaster
	log       *logger.Logger
}

func NewUserService(userRepo repository.UserRepository, presence *redis.PresenceStore, broadcast Broadcaster, log *logger.Logger) *UserService {
	return &UserService{userRepo: userRepo, presence: presence, broadcast: broadcast, log: log}
}

func (s *UserService) List(ctx context.Context) ([]user.User, error) {
	return s.userRepo.List(ctx)
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) UpdateStatus(ctx context.Context, userID uuid.UUID, status string) error {
	if !user.ValidStatus(status) {
		return nebula_errors.ErrInvalidInput
	}
	if err := s.userRepo.UpdateStatus(ctx, userID, status); err != nil {
		return err
	}

	if s.presence != nil {
		if err := s.presence.SetStatus(ctx, userID.String(), status); err != nil && s.log != nil {
			s.log.Warnf("presence update for %s: %v", userID, err)
		}
	}
	if s.broadcast != nil {
		s.broadcast.EmitToChannel(events.PresenceRoom, events.UserStatusChange, events.StatusPayload{
			UserID: userID.String(),
			Status: status,
		})
	}
	return nil
}
