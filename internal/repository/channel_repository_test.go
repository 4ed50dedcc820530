package repository

import (
	"context"
	"testing"

	"nebula-chat/internal/domain/channel"
	"nebula-chat/internal/domain/message"
	"nebula-chat/internal/domain/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&user.User{}, &channel.Channel{}, &channel.Participant{}, &message.Message{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string) user.User {
	t.Helper()
	u := user.User{ID: uuid.New(), Name: name, Email: name + "@example.com"}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), &u))
	return u
}

func TestChannelRepository_GetAccessibleChannelIDs(t *testing.T) {
	db := newTestDB(t)
	repo := NewChannelRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")

	general := channel.Channel{ID: uuid.New(), Name: "general"}
	require.NoError(t, repo.Create(ctx, &general, []uuid.UUID{alice.ID, bob.ID}))

	aliceDM := channel.Channel{ID: uuid.New(), Name: "alice-bob", IsDM: true}
	require.NoError(t, repo.Create(ctx, &aliceDM, []uuid.UUID{alice.ID, bob.ID}))

	otherDM := channel.Channel{ID: uuid.New(), Name: "bob-carol", IsDM: true}
	require.NoError(t, repo.Create(ctx, &otherDM, []uuid.UUID{bob.ID, carol.ID}))

	ids, err := repo.GetAccessibleChannelIDs(ctx, alice.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{general.ID, aliceDM.ID}, ids)

	// Group channels are visible even to non-participants; foreign DMs
	// stay hidden.
	ids, err = repo.GetAccessibleChannelIDs(ctx, carol.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{general.ID, otherDM.ID}, ids)
}

func TestChannelRepository_GetParticipants(t *testing.T) {
	db := newTestDB(t)
	repo := NewChannelRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	ch := channel.Channel{ID: uuid.New(), Name: "general"}
	require.NoError(t, repo.Create(ctx, &ch, []uuid.UUID{alice.ID, bob.ID}))

	participants, err := repo.GetParticipants(ctx, ch.ID)
	require.NoError(t, err)
	require.Len(t, participants, 2)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.Error(t, err)
}
