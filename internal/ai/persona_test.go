package ai

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"nebula-chat/internal/domain/channel"
	"nebula-chat/internal/domain/user"
	nebula_errors "nebula-chat/pkg/errors"
	"nebula-chat/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type invocation struct {
	Mode   Mode
	Script string
	Args   []string
}

// stubRunner records invocations and plays back canned output.
type stubRunner struct {
	out   []byte
	err   error
	calls []invocation
}

func (r *stubRunner) Invoke(ctx context.Context, mode Mode, script string, args []string, timeout time.Duration) ([]byte, error) {
	r.calls = append(r.calls, invocation{Mode: mode, Script: script, Args: args})
	return r.out, r.err
}

type stubChannelRepo struct {
	accessible []uuid.UUID
	err        error
}

func (s *stubChannelRepo) Create(ctx context.Context, ch *channel.Channel, participantIDs []uuid.UUID) error {
	panic("not implemented")
}

func (s *stubChannelRepo) GetByID(ctx context.Context, id uuid.UUID) (channel.Channel, error) {
	panic("not implemented")
}

func (s *stubChannelRepo) List(ctx context.Context) ([]channel.Channel, error) {
	panic("not implemented")
}

func (s *stubChannelRepo) GetParticipants(ctx context.Context, channelID uuid.UUID) ([]user.User, error) {
	panic("not implemented")
}

func (s *stubChannelRepo) GetAccessibleChannelIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return s.accessible, s.err
}

func TestDispatcher_DirectPersona(t *testing.T) {
	runner := &stubRunner{out: []byte("a direct answer")}
	d := NewDispatcher(runner, &stubChannelRepo{}, time.Second, logger.NewNop())

	got := d.Reply(context.Background(), user.PersonaDirect, uuid.New(), "what is go")
	assert.Equal(t, "a direct answer", got)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, ModeText, runner.calls[0].Mode)
	assert.Equal(t, "rag_wrapper.py", runner.calls[0].Script)
	assert.Equal(t, []string{"what is go"}, runner.calls[0].Args)
}

func TestDispatcher_SupervisorPersona(t *testing.T) {
	chID := uuid.New()
	senderID := uuid.New()
	runner := &stubRunner{out: []byte(`{"response": "found it in #general"}`)}
	d := NewDispatcher(runner, &stubChannelRepo{accessible: []uuid.UUID{chID}}, time.Second, logger.NewNop())

	got := d.Reply(context.Background(), user.PersonaSupervisor, senderID, "where did we discuss this")
	assert.Equal(t, "found it in #general", got)

	require.Len(t, runner.calls, 1)
	call := runner.calls[0]
	assert.Equal(t, ModeJSON, call.Mode)
	assert.Equal(t, "snoopervisor_wrapper.py", call.Script)
	require.Len(t, call.Args, 4)
	assert.Equal(t, "query", call.Args[0])
	assert.Equal(t, "where did we discuss this", call.Args[1])
	assert.Equal(t, senderID.String(), call.Args[3])

	var ids []uuid.UUID
	require.NoError(t, json.Unmarshal([]byte(call.Args[2]), &ids))
	assert.Equal(t, []uuid.UUID{chID}, ids)
}

func TestDispatcher_FallbackOnRunnerError(t *testing.T) {
	runner := &stubRunner{err: nebula_errors.ErrTimeout}
	d := NewDispatcher(runner, &stubChannelRepo{}, time.Second, logger.NewNop())

	got := d.Reply(context.Background(), user.PersonaDirect, uuid.New(), "anyone there")
	assert.Equal(t, FallbackReply, got)
}

func TestDispatcher_FallbackOnEmptyOutput(t *testing.T) {
	runner := &stubRunner{out: []byte("")}
	d := NewDispatcher(runner, &stubChannelRepo{}, time.Second, logger.NewNop())

	got := d.Reply(context.Background(), user.PersonaDirect, uuid.New(), "hello")
	assert.Equal(t, FallbackReply, got)
}

func TestDispatcher_FallbackOnMissingResponseField(t *testing.T) {
	runner := &stubRunner{out: []byte(`{"status": "ok"}`)}
	d := NewDispatcher(runner, &stubChannelRepo{}, time.Second, logger.NewNop())

	got := d.Reply(context.Background(), user.PersonaSupervisor, uuid.New(), "hello")
	assert.Equal(t, FallbackReply, got)
}

func TestDispatcher_FallbackOnUnknownPersona(t *testing.T) {
	runner := &stubRunner{out: []byte("never used")}
	d := NewDispatcher(runner, &stubChannelRepo{}, time.Second, logger.NewNop())

	got := d.Reply(context.Background(), user.PersonaNone, uuid.New(), "hello")
	assert.Equal(t, FallbackReply, got)
	assert.Empty(t, runner.calls)
}
