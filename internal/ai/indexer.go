package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"nebula-chat/internal/domain/channel"
	"nebula-chat/internal/domain/message"
	"nebula-chat/internal/domain/user"
	"nebula-chat/internal/repository"
	nebula_errors "nebula-chat/pkg/errors"
	"nebula-chat/pkg/logger"

	"github.com/google/uuid"
)

const reindexBatchSize = 10
const reindexBatchPause = 200 * time.Millisecond

type indexPayload struct {
	ID               string    `json:"id"`
	Content          string    `json:"content"`
	ChannelID        string    `json:"channelId"`
	ChannelName      string    `json:"channelName"`
	SenderID         string    `json:"senderId"`
	SenderName       string    `json:"senderName"`
	Timestamp        time.Time `json:"timestamp"`
	IsDM             bool      `json:"isDM"`
	DMParticipantIDs []string  `json:"dmParticipantIds"`
}

// ReindexReport summarizes a full historical reindex run.
type ReindexReport struct {
	TotalMessages int64 `json:"totalMessages"`
	IndexedCount  int   `json:"indexedCount"`
	ErrorCount    int   `json:"errorCount"`
}

// Indexer submits messages to the external search index. Indexing is
// best-effort: errors are logged by callers, never surfaced to senders.
type Indexer struct {
	runner   Runner
	messages repository.MessageRepository
	channels repository.ChannelRepository
	users    repository.UserRepository
	timeout  time.Duration
	log      *logger.Logger
}

func NewIndexer(runner Runner, messages repository.MessageRepository, channels repository.ChannelRepository, users repository.UserRepository, timeout time.Duration, log *logger.Logger) *Indexer {
	return &Indexer{
		runner:   runner,
		messages: messages,
		channels: channels,
		users:    users,
		timeout:  timeout,
		log:      log,
	}
}

// Index submits one message synchronously. The orchestrator runs it in a
// goroutine so the send path never waits on it.
func (ix *Indexer) Index(ctx context.Context, msg message.Message, ch channel.Channel, senderName string, participants []user.User) error {
	payload := indexPayload{
		ID:          msg.ID.String(),
		Content:     msg.Content,
		ChannelID:   ch.ID.String(),
		ChannelName: ch.Name,
		SenderID:    msg.SenderID.String(),
		SenderName:  senderName,
		Timestamp:   msg.Timestamp,
		IsDM:        ch.IsDM,
	}
	if ch.IsDM {
		for _, p := range participants {
			payload.DMParticipantIDs = append(payload.DMParticipantIDs, p.ID.String())
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	out, err := ix.runner.Invoke(ctx, ModeJSON, supervisorScript, []string{"index", string(body)}, ix.timeout)
	if err != nil {
		return err
	}

	var result struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(out, &result); err != nil {
		return nebula_errors.ErrMalformedResponse
	}
	if !result.Success {
		return fmt.Errorf("indexer rejected message: %s", result.Error)
	}
	return nil
}

// ReindexAll walks every stored message in fixed-size batches, indexing each
// one and pausing briefly between batches. Per-message failures are counted,
// never aborting the run.
func (ix *Indexer) ReindexAll(ctx context.Context) (ReindexReport, error) {
	total, err := ix.messages.CountAll(ctx)
	if err != nil {
		return ReindexReport{}, err
	}
	report := ReindexReport{TotalMessages: total}

	channelCache := make(map[uuid.UUID]channel.Channel)
	participantCache := make(map[uuid.UUID][]user.User)
	nameCache := make(map[uuid.UUID]string)

	for offset := 0; int64(offset) < total; offset += reindexBatchSize {
		batch, err := ix.messages.ListBatch(ctx, offset, reindexBatchSize)
		if err != nil {
			return report, err
		}
		for _, msg := range batch {
			ch, ok := channelCache[msg.ChannelID]
			if !ok {
				ch, err = ix.channels.GetByID(ctx, msg.ChannelID)
				if err != nil {
					report.ErrorCount++
					ix.log.Errorf("reindex: load channel %s: %v", msg.ChannelID, err)
					continue
				}
				channelCache[msg.ChannelID] = ch

				participants, err := ix.channels.GetParticipants(ctx, ch.ID)
				if err != nil {
					participants = nil
				}
				participantCache[ch.ID] = participants
				for _, p := range participants {
					nameCache[p.ID] = p.Name
				}
			}

			senderName, ok := nameCache[msg.SenderID]
			if !ok {
				if sender, err := ix.users.GetByID(ctx, msg.SenderID); err == nil {
					senderName = sender.Name
				}
				nameCache[msg.SenderID] = senderName
			}

			if err := ix.Index(ctx, msg, ch, senderName, participantCache[ch.ID]); err != nil {
				report.ErrorCount++
				ix.log.Errorf("reindex: message %s: %v", msg.ID, err)
				continue
			}
			report.IndexedCount++
		}

		if int64(offset+reindexBatchSize) < total {
			select {
			case <-ctx.Done():
				return report, ctx.Err()
			case <-time.After(reindexBatchPause):
			}
		}
	}
	return report, nil
}
