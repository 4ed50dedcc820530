package message

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleReaction_AddFirst(t *testing.T) {
	got := ToggleReaction(nil, "👍", "alice")
	require.Len(t, got, 1)
	assert.Equal(t, "👍", got[0].Emoji)
	assert.Equal(t, []string{"alice"}, got[0].Users)
}

func TestToggleReaction_JoinExisting(t *testing.T) {
	start := []Reaction{{Emoji: "👍", Users: []string{"alice"}}}
	got := ToggleReaction(start, "👍", "bob")
	require.Len(t, got, 1)
	assert.Equal(t, []string{"alice", "bob"}, got[0].Users)
}

func TestToggleReaction_LeaveKeepsOthers(t *testing.T) {
	start := []Reaction{{Emoji: "👍", Users: []string{"alice", "bob"}}}
	got := ToggleReaction(start, "👍", "alice")
	require.Len(t, got, 1)
	assert.Equal(t, []string{"bob"}, got[0].Users)
}

func TestToggleReaction_RemovesEmptyEntry(t *testing.T) {
	start := []Reaction{
		{Emoji: "👍", Users: []string{"alice"}},
		{Emoji: "🎉", Users: []string{"bob"}},
	}
	got := ToggleReaction(start, "👍", "alice")
	require.Len(t, got, 1)
	assert.Equal(t, "🎉", got[0].Emoji)
}

func TestToggleReaction_Involution(t *testing.T) {
	start := []Reaction{
		{Emoji: "👍", Users: []string{"alice", "bob"}},
		{Emoji: "🎉", Users: []string{"carol"}},
	}
	once := ToggleReaction(start, "🎉", "alice")
	twice := ToggleReaction(once, "🎉", "alice")
	assert.Equal(t, start, twice)
}

func TestToggleReaction_DoesNotMutateInput(t *testing.T) {
	start := []Reaction{{Emoji: "👍", Users: []string{"alice"}}}
	_ = ToggleReaction(start, "👍", "bob")
	assert.Equal(t, []string{"alice"}, start[0].Users)
}

func TestRecordReplies(t *testing.T) {
	var m Message
	first := time.Now()
	m.RecordReplies(1, first)
	assert.True(t, m.IsThreadParent)
	assert.Equal(t, 1, m.ThreadReplyCount)
	require.True(t, m.LastReplyAt.Valid)
	assert.Equal(t, first, m.LastReplyAt.Time)

	later := first.Add(time.Minute)
	m.RecordReplies(2, later)
	assert.Equal(t, 3, m.ThreadReplyCount)
	assert.Equal(t, later, m.LastReplyAt.Time)
}
