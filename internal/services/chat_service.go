package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"nebula-chat/internal/domain/channel"
	"nebula-chat/internal/domain/message"
	"nebula-chat/internal/domain/user"
	"nebula-chat/internal/events"
	"nebula-chat/internal/repository"
	nebula_errors "nebula-chat/pkg/errors"
	"nebula-chat/pkg/logger"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync"
)

// Broadcaster delivers an event to every connection joined to a channel
// room. Injected so nothing in the service layer reaches for a global
// socket registry.
type Broadcaster interface {
	EmitToChannel(channelID string, event string, payload interface{})
}

// Responder produces the automated reply for a persona. Implementations
// must not fail; generation errors collapse into a fixed fallback text.
type Responder interface {
	Reply(ctx context.Context, persona user.Persona, senderID uuid.UUID, content string) string
}

// MessageIndexer submits one message to the external search index.
type MessageIndexer interface {
	Index(ctx context.Context, msg message.Message, ch channel.Channel, senderName string, participants []user.User) error
}

// ChatService orchestrates message delivery: persistence, thread
// bookkeeping, reaction toggles, AI dispatch and fan-out.
type ChatService struct {
	messages  repository.MessageRepository
	channels  repository.ChannelRepository
	users     repository.UserRepository
	broadcast Broadcaster
	responder Responder
	indexer   MessageIndexer
	log       *logger.Logger

	// locks serializes read-modify-write cycles per message id so
	// concurrent reaction toggles and reply counters never lose updates.
	locks *xsync.MapOf[string, *sync.Mutex]
}

func NewChatService(
	messages repository.MessageRepository,
	channels repository.ChannelRepository,
	users repository.UserRepository,
	broadcast Broadcaster,
	responder Responder,
	indexer MessageIndexer,
	log *logger.Logger,
) *ChatService {
	return &ChatService{
		messages:  messages,
		channels:  channels,
		users:     users,
		broadcast: broadcast,
		responder: responder,
		indexer:   indexer,
		log:       log,
		locks:     xsync.NewMapOf[*sync.Mutex](),
	}
}

type SubmitMessageInput struct {
	SenderID        uuid.UUID
	Content         string
	ChannelID       uuid.UUID
	Attachment      *message.Attachment
	ParentMessageID uuid.NullUUID
}

// SubmitMessage persists a human message, fires background indexing, and
// either broadcasts it alone or runs the AI reply flow for an eligible DM.
// It returns every message it persisted: one, or two when an automated
// reply (or its fallback) was generated.
func (s *ChatService) SubmitMessage(ctx context.Context, in SubmitMessageInput) ([]message.Message, error) {
	if in.SenderID == uuid.Nil || in.ChannelID == uuid.Nil {
		return nil, nebula_errors.ErrInvalidInput
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		if in.Attachment == nil {
			return nil, nebula_errors.ErrInvalidInput
		}
		content = in.Attachment.Filename
	}

	sender, err := s.users.GetByID(ctx, in.SenderID)
	if err != nil {
		return nil, err
	}

	msg := message.Message{
		ID:         uuid.New(),
		ChannelID:  in.ChannelID,
		SenderID:   in.SenderID,
		Content:    content,
		Timestamp:  time.Now(),
		Attachment: in.Attachment,
		ParentID:   in.ParentMessageID,
		Reactions:  []message.Reaction{},
	}
	if err := s.messages.Create(ctx, &msg); err != nil {
		return nil, err
	}

	ch, err := s.channels.GetByID(ctx, in.ChannelID)
	if err != nil {
		return nil, err
	}
	participants, err := s.channels.GetParticipants(ctx, in.ChannelID)
	if err != nil {
		return nil, err
	}

	s.indexAsync(msg, ch, sender.Name, participants)

	aiUser := eligibleResponder(ch, participants, sender.ID)
	if aiUser == nil {
		s.emitMessage(msg, sender.Name)
		return []message.Message{msg}, nil
	}

	s.emitMessage(msg, sender.Name)
	s.broadcast.EmitToChannel(ch.ID.String(), events.AITyping, events.TypingPayload{ChannelID: ch.ID.String(), IsTyping: true})

	replyText := s.responder.Reply(ctx, aiUser.Persona, sender.ID, content)

	s.broadcast.EmitToChannel(ch.ID.String(), events.AITyping, events.TypingPayload{ChannelID: ch.ID.String(), IsTyping: false})

	reply := message.Message{
		ID:        uuid.New(),
		ChannelID: ch.ID,
		SenderID:  aiUser.ID,
		Content:   replyText,
		Timestamp: time.Now(),
		ParentID:  in.ParentMessageID,
		Reactions: []message.Reaction{},
	}
	if err := s.messages.Create(ctx, &reply); err != nil {
		// The human message already went out; the conversation survives
		// a lost reply.
		if s.log != nil {
			s.log.Errorf("persisting automated reply in channel %s: %v", ch.ID, err)
		}
		return []message.Message{msg}, nil
	}

	s.indexAsync(reply, ch, aiUser.Name, participants)
	s.emitMessage(reply, aiUser.Name)
	return []message.Message{msg, reply}, nil
}

// ToggleReaction flips userID's reaction under emoji and broadcasts the
// updated list after it is durably applied.
func (s *ChatService) ToggleReaction(ctx context.Context, messageID uuid.UUID, emoji string, userID uuid.UUID) ([]message.Reaction, error) {
	if emoji == "" || userID == uuid.Nil {
		return nil, nebula_errors.ErrInvalidInput
	}

	mu := s.lockFor(messageID)
	mu.Lock()
	defer mu.Unlock()

	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}

	updated := message.ToggleReaction(msg.Reactions, emoji, userID.String())
	if err := s.messages.UpdateReactions(ctx, messageID, updated); err != nil {
		return nil, err
	}

	s.broadcast.EmitToChannel(msg.ChannelID.String(), events.ReactionUpdated, events.ReactionPayload{
		MessageID: messageID.String(),
		Reactions: updated,
	})
	return updated, nil
}

// RecordReply applies thread bookkeeping on the parent after repliesAdded
// reply messages were durably persisted. Called once per reply submission.
func (s *ChatService) RecordReply(ctx context.Context, parentID uuid.UUID, repliesAdded int) error {
	mu := s.lockFor(parentID)
	mu.Lock()
	defer mu.Unlock()

	parent, err := s.messages.GetByID(ctx, parentID)
	if err != nil {
		return err
	}
	parent.RecordReplies(repliesAdded, time.Now())
	return s.messages.UpdateThreadStats(ctx, parent)
}

// CreateThreadReply submits a reply under parentID, then records the thread
// stats for every message the submission produced.
func (s *ChatService) CreateThreadReply(ctx context.Context, parentID uuid.UUID, in SubmitMessageInput) ([]message.Message, error) {
	parent, err := s.messages.GetByID(ctx, parentID)
	if err != nil {
		return nil, err
	}

	in.ChannelID = parent.ChannelID
	in.ParentMessageID = uuid.NullUUID{UUID: parentID, Valid: true}

	msgs, err := s.SubmitMessage(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := s.RecordReply(ctx, parentID, len(msgs)); err != nil {
		return msgs, err
	}
	return msgs, nil
}

type ThreadRepliesResult struct {
	Replies []message.Message `json:"replies"`
	HasMore bool              `json:"hasMore"`
	Total   int64             `json:"total"`
}

func (s *ChatService) ListThreadReplies(ctx context.Context, parentID uuid.UUID, limit, offset int) (ThreadRepliesResult, error) {
	if _, err := s.messages.GetByID(ctx, parentID); err != nil {
		return ThreadRepliesResult{}, err
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	replies, total, err := s.messages.GetThreadReplies(ctx, parentID, limit, offset)
	if err != nil {
		return ThreadRepliesResult{}, err
	}
	return ThreadRepliesResult{
		Replies: replies,
		HasMore: int64(offset+len(replies)) < total,
		Total:   total,
	}, nil
}

func (s *ChatService) GetChannelMessages(ctx context.Context, channelID uuid.UUID) ([]message.Message, error) {
	if _, err := s.channels.GetByID(ctx, channelID); err != nil {
		return nil, err
	}
	return s.messages.GetChannelMessages(ctx, channelID)
}

// eligibleResponder returns the automated participant that must reply, or
// nil. Only DMs qualify, and the sender never answers itself.
func eligibleResponder(ch channel.Channel, participants []user.User, senderID uuid.UUID) *user.User {
	if !ch.IsDM {
		return nil
	}
	for i := range participants {
		if participants[i].IsAI && participants[i].ID != senderID {
			return &participants[i]
		}
	}
	return nil
}

func (s *ChatService) emitMessage(msg message.Message, senderName string) {
	payload := events.MessagePayload{
		ID:         msg.ID.String(),
		SenderID:   msg.SenderID.String(),
		SenderName: senderName,
		Content:    msg.Content,
		ChannelID:  msg.ChannelID.String(),
		Timestamp:  msg.Timestamp,
		Attachment: msg.Attachment,
	}
	if msg.ParentID.Valid {
		payload.ParentID = msg.ParentID.UUID.String()
	}
	s.broadcast.EmitToChannel(msg.ChannelID.String(), events.ReceiveMessage, payload)
}

// indexAsync fires the background indexer without blocking the send path.
// Failures are logged, never surfaced.
func (s *ChatService) indexAsync(msg message.Message, ch channel.Channel, senderName string, participants []user.User) {
	if s.indexer == nil {
		return
	}
	go func() {
		if err := s.indexer.Index(context.Background(), msg, ch, senderName, participants); err != nil {
			if s.log != nil {
				s.log.Errorf("indexing message %s: %v", msg.ID, err)
			}
		}
	}()
}

func (s *ChatService) lockFor(messageID uuid.UUID) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(messageID.String(), &sync.Mutex{})
	return mu
}
