package services

import (
	"context"
	"testing"

	"nebula-chat/internal/domain/user"
	"nebula-chat/internal/events"
	nebula_errors "nebula-chat/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_UpdateStatus(t *testing.T) {
	f := newChatFixture(t, "unused")
	svc := NewUserService(f.users, nil, f.broadcast, nil)

	alice := f.createUser(t, "alice", false, user.PersonaNone)

	require.NoError(t, svc.UpdateStatus(context.Background(), alice.ID, "away"))

	stored, err := svc.GetByID(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "away", stored.Status)

	evts := f.broadcast.Events()
	require.Len(t, evts, 1)
	assert.Equal(t, events.PresenceRoom, evts[0].ChannelID)
	assert.Equal(t, events.UserStatusChange, evts[0].Event)
	assert.Equal(t, "away", evts[0].Payload.(events.StatusPayload).Status)
}

func TestUserService_UpdateStatusRejectsUnknownState(t *testing.T) {
	f := newChatFixture(t, "unused")
	svc := NewUserService(f.users, nil, f.broadcast, nil)

	alice := f.createUser(t, "alice", false, user.PersonaNone)

	err := svc.UpdateStatus(context.Background(), alice.ID, "invisible")
	assert.ErrorIs(t, err, nebula_errors.ErrInvalidInput)
	assert.Empty(t, f.broadcast.Events())
}

func TestUserService_UpdateStatusUnknownUser(t *testing.T) {
	f := newChatFixture(t, "unused")
	svc := NewUserService(f.users, nil, f.broadcast, nil)

	err := svc.UpdateStatus(context.Background(), uuid.New(), "online")
	assert.ErrorIs(t, err, nebula_errors.ErrNotFound)
}

func TestUserService_List(t *testing.T) {
	f := newChatFixture(t, "unused")
	svc := NewUserService(f.users, nil, f.broadcast, nil)

	f.createUser(t, "alice", false, user.PersonaNone)
	f.createUser(t, "assistant", true, user.PersonaDirect)

	users, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
