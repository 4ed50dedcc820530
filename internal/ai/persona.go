package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"nebula-chat/internal/domain/user"
	"nebula-chat/internal/repository"
	nebula_errors "nebula-chat/pkg/errors"
	"nebula-chat/pkg/logger"

	"github.com/google/uuid"
)

// FallbackReply is persisted as the automated reply whenever generation
// fails or times out.
const FallbackReply = "I apologize, but I'm having trouble processing your request right now. Please try again in a moment."

const (
	answerScript     = "rag_wrapper.py"
	supervisorScript = "snoopervisor_wrapper.py"
)

// Dispatcher picks the calling convention for an automated participant's
// persona and turns any failure into the fixed fallback reply.
type Dispatcher struct {
	runner   Runner
	channels repository.ChannelRepository
	timeout  time.Duration
	log      *logger.Logger
}

func NewDispatcher(runner Runner, channels repository.ChannelRepository, timeout time.Duration, log *logger.Logger) *Dispatcher {
	return &Dispatcher{runner: runner, channels: channels, timeout: timeout, log: log}
}

// Reply generates the automated response for content sent by senderID. It
// never fails: generation errors are logged and replaced with FallbackReply.
func (d *Dispatcher) Reply(ctx context.Context, persona user.Persona, senderID uuid.UUID, content string) string {
	text, err := d.generate(ctx, persona, senderID, content)
	if err != nil {
		if d.log != nil {
			d.log.Errorf("persona %q reply failed: %v", persona, err)
		}
		return FallbackReply
	}
	return text
}

func (d *Dispatcher) generate(ctx context.Context, persona user.Persona, senderID uuid.UUID, content string) (string, error) {
	switch persona {
	case user.PersonaDirect:
		return d.directAnswer(ctx, content)
	case user.PersonaSupervisor:
		return d.supervisorAnswer(ctx, senderID, content)
	default:
		return "", fmt.Errorf("%w: unknown persona %q", nebula_errors.ErrInvalidInput, persona)
	}
}

func (d *Dispatcher) directAnswer(ctx context.Context, content string) (string, error) {
	out, err := d.runner.Invoke(ctx, ModeText, answerScript, []string{content}, d.timeout)
	if err != nil {
		return "", err
	}
	if len(out) == 0 {
		return "", nebula_errors.ErrProcessFailure
	}
	return string(out), nil
}

func (d *Dispatcher) supervisorAnswer(ctx context.Context, senderID uuid.UUID, content string) (string, error) {
	channelIDs, err := d.channels.GetAccessibleChannelIDs(ctx, senderID)
	if err != nil {
		return "", err
	}
	accessible, err := json.Marshal(channelIDs)
	if err != nil {
		return "", err
	}

	args := []string{"query", content, string(accessible), senderID.String()}
	out, err := d.runner.Invoke(ctx, ModeJSON, supervisorScript, args, d.timeout)
	if err != nil {
		return "", err
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(out, &parsed); err != nil {
		return "", nebula_errors.ErrMalformedResponse
	}
	text, ok := parsed["response"].(string)
	if !ok {
		return "", nebula_errors.ErrMalformedResponse
	}
	return text, nil
}
