package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"nebula-chat/internal/domain/channel"
	"nebula-chat/internal/domain/message"
	"nebula-chat/internal/domain/user"
	"nebula-chat/internal/repository"
	"nebula-chat/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestIndexer_Index(t *testing.T) {
	runner := &stubRunner{out: []byte(`{"success": true}`)}
	ix := NewIndexer(runner, nil, nil, nil, time.Second, logger.NewNop())

	chID := uuid.New()
	alice := user.User{ID: uuid.New(), Name: "alice"}
	bob := user.User{ID: uuid.New(), Name: "bob"}
	msg := message.Message{
		ID:        uuid.New(),
		ChannelID: chID,
		SenderID:  alice.ID,
		Content:   "remember this",
		Timestamp: time.Now(),
	}
	ch := channel.Channel{ID: chID, Name: "alice-bob", IsDM: true}

	require.NoError(t, ix.Index(context.Background(), msg, ch, "alice", []user.User{alice, bob}))

	require.Len(t, runner.calls, 1)
	call := runner.calls[0]
	assert.Equal(t, ModeJSON, call.Mode)
	assert.Equal(t, "snoopervisor_wrapper.py", call.Script)
	require.Len(t, call.Args, 2)
	assert.Equal(t, "index", call.Args[0])

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(call.Args[1]), &payload))
	assert.Equal(t, msg.ID.String(), payload["id"])
	assert.Equal(t, "remember this", payload["content"])
	assert.Equal(t, "alice-bob", payload["channelName"])
	assert.Equal(t, true, payload["isDM"])
	assert.Len(t, payload["dmParticipantIds"], 2)
}

func TestIndexer_IndexRejected(t *testing.T) {
	runner := &stubRunner{out: []byte(`{"success": false, "error": "index is full"}`)}
	ix := NewIndexer(runner, nil, nil, nil, time.Second, logger.NewNop())

	err := ix.Index(context.Background(), message.Message{ID: uuid.New()}, channel.Channel{ID: uuid.New()}, "alice", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index is full")
}

func TestIndexer_ReindexAll(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&user.User{}, &channel.Channel{}, &channel.Participant{}, &message.Message{},
	))

	users := repository.NewUserRepository(db)
	channels := repository.NewChannelRepository(db)
	messages := repository.NewMessageRepository(db)

	alice := user.User{ID: uuid.New(), Name: "alice", Email: "alice@example.com"}
	require.NoError(t, users.Create(context.Background(), &alice))
	ch := channel.Channel{ID: uuid.New(), Name: "general"}
	require.NoError(t, channels.Create(context.Background(), &ch, []uuid.UUID{alice.ID}))

	const stored = 23
	for i := 0; i < stored; i++ {
		msg := message.Message{
			ID:        uuid.New(),
			ChannelID: ch.ID,
			SenderID:  alice.ID,
			Content:   fmt.Sprintf("message %d", i),
			Timestamp: time.Now().Add(time.Duration(i) * time.Second),
			Reactions: []message.Reaction{},
		}
		require.NoError(t, messages.Create(context.Background(), &msg))
	}

	runner := &stubRunner{out: []byte(`{"success": true}`)}
	ix := NewIndexer(runner, messages, channels, users, time.Second, logger.NewNop())

	report, err := ix.ReindexAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(stored), report.TotalMessages)
	assert.Equal(t, stored, report.IndexedCount)
	assert.Equal(t, 0, report.ErrorCount)
	assert.Len(t, runner.calls, stored)
}

func TestIndexer_ReindexAllCountsFailures(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&user.User{}, &channel.Channel{}, &channel.Participant{}, &message.Message{},
	))

	users := repository.NewUserRepository(db)
	channels := repository.NewChannelRepository(db)
	messages := repository.NewMessageRepository(db)

	alice := user.User{ID: uuid.New(), Name: "alice", Email: "alice@example.com"}
	require.NoError(t, users.Create(context.Background(), &alice))
	ch := channel.Channel{ID: uuid.New(), Name: "general"}
	require.NoError(t, channels.Create(context.Background(), &ch, []uuid.UUID{alice.ID}))

	for i := 0; i < 3; i++ {
		msg := message.Message{
			ID:        uuid.New(),
			ChannelID: ch.ID,
			SenderID:  alice.ID,
			Content:   fmt.Sprintf("message %d", i),
			Timestamp: time.Now(),
			Reactions: []message.Reaction{},
		}
		require.NoError(t, messages.Create(context.Background(), &msg))
	}

	runner := &stubRunner{out: []byte(`{"success": false, "error": "nope"}`)}
	ix := NewIndexer(runner, messages, channels, users, time.Second, logger.NewNop())

	report, err := ix.ReindexAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), report.TotalMessages)
	assert.Equal(t, 0, report.IndexedCount)
	assert.Equal(t, 3, report.ErrorCount)
}
