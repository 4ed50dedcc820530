package services

import (
	"context"
	"testing"

	"nebula-chat/internal/domain/user"
	nebula_errors "nebula-chat/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelService_CreateGroup(t *testing.T) {
	f := newChatFixture(t, "unused")
	svc := NewChannelService(f.channels, f.users)

	alice := f.createUser(t, "alice", false, user.PersonaNone)
	bob := f.createUser(t, "bob", false, user.PersonaNone)

	ch, err := svc.Create(context.Background(), CreateChannelInput{
		Name:           "general",
		ParticipantIDs: []uuid.UUID{alice.ID, bob.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "general", ch.Name)
	assert.False(t, ch.IsDM)

	detail, err := svc.Get(context.Background(), ch.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Participants, 2)
}

func TestChannelService_CreateDM(t *testing.T) {
	f := newChatFixture(t, "unused")
	svc := NewChannelService(f.channels, f.users)

	alice := f.createUser(t, "alice", false, user.PersonaNone)
	assistant := f.createUser(t, "assistant", true, user.PersonaDirect)

	ch, err := svc.Create(context.Background(), CreateChannelInput{
		Name:           "alice-assistant",
		IsDM:           true,
		ParticipantIDs: []uuid.UUID{alice.ID, assistant.ID},
	})
	require.NoError(t, err)
	assert.True(t, ch.IsDM)
}

func TestChannelService_CreateValidation(t *testing.T) {
	f := newChatFixture(t, "unused")
	svc := NewChannelService(f.channels, f.users)
	ctx := context.Background()

	alice := f.createUser(t, "alice", false, user.PersonaNone)
	bot1 := f.createUser(t, "bot1", true, user.PersonaDirect)
	bot2 := f.createUser(t, "bot2", true, user.PersonaSupervisor)

	_, err := svc.Create(ctx, CreateChannelInput{Name: " ", ParticipantIDs: []uuid.UUID{alice.ID}})
	assert.ErrorIs(t, err, nebula_errors.ErrInvalidInput)

	_, err = svc.Create(ctx, CreateChannelInput{Name: "empty"})
	assert.ErrorIs(t, err, nebula_errors.ErrInvalidInput)

	// Two automated participants cannot share a DM.
	_, err = svc.Create(ctx, CreateChannelInput{
		Name: "bots", IsDM: true, ParticipantIDs: []uuid.UUID{bot1.ID, bot2.ID},
	})
	assert.ErrorIs(t, err, nebula_errors.ErrInvalidInput)

	// A DM is exactly two participants.
	_, err = svc.Create(ctx, CreateChannelInput{
		Name: "crowded-dm", IsDM: true, ParticipantIDs: []uuid.UUID{alice.ID, bot1.ID, bot2.ID},
	})
	assert.ErrorIs(t, err, nebula_errors.ErrInvalidInput)

	_, err = svc.Create(ctx, CreateChannelInput{
		Name: "ghost", ParticipantIDs: []uuid.UUID{uuid.New()},
	})
	assert.ErrorIs(t, err, nebula_errors.ErrNotFound)
}

func TestChannelService_GetUnknown(t *testing.T) {
	f := newChatFixture(t, "unused")
	svc := NewChannelService(f.channels, f.users)

	_, err := svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, nebula_errors.ErrNotFound)
}
