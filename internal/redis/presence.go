package redis

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// PresenceStatus represents a user's live presence record.
type PresenceStatus struct {
	UserID   string    `json:"user_id"`
	IsOnline bool      `json:"is_online"`
	LastSeen time.Time `json:"last_seen"`
	Status   string    `json:"status"` // online, away, dnd, offline
}

// PresenceStore handles presence tracking in Redis
type PresenceStore struct {
	client *goredis.Client
	ttl    time.Duration
}

const (
	presenceKeyPrefix = "presence:"
	presenceOnlineSet = "presence:online"
)

func NewPresenceStore(client *goredis.Client, ttl time.Duration) *PresenceStore {
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &PresenceStore{client: client, ttl: ttl}
}

// SetOnline marks a user as online.
func (p *PresenceStore) SetOnline(ctx context.Context, userID string) error {
	return p.write(ctx, PresenceStatus{
		UserID:   userID,
		IsOnline: true,
		LastSeen: time.Now(),
		Status:   "online",
	})
}

// SetOffline marks a user as offline.
func (p *PresenceStore) SetOffline(ctx context.Context, userID string) error {
	if err := p.client.SRem(ctx, presenceOnlineSet, userID).Err(); err != nil {
		return err
	}
	return p.write(ctx, PresenceStatus{
		UserID:   userID,
		IsOnline: false,
		LastSeen: time.Now(),
		Status:   "offline",
	})
}

// SetStatus records a user-chosen status without touching the online set.
func (p *PresenceStore) SetStatus(ctx context.Context, userID, status string) error {
	current, err := p.GetStatus(ctx, userID)
	if err != nil {
		current = PresenceStatus{UserID: userID}
	}
	current.Status = status
	current.LastSeen = time.Now()
	current.IsOnline = status != "offline"
	return p.write(ctx, current)
}

// GetStatus returns the stored presence record for a user.
func (p *PresenceStore) GetStatus(ctx context.Context, userID string) (PresenceStatus, error) {
	raw, err := p.client.Get(ctx, presenceKeyPrefix+userID).Bytes()
	if err != nil {
		return PresenceStatus{}, err
	}
	var status PresenceStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return PresenceStatus{}, err
	}
	return status, nil
}

// OnlineUsers returns the ids of users currently marked online.
func (p *PresenceStore) OnlineUsers(ctx context.Context) ([]string, error) {
	return p.client.SMembers(ctx, presenceOnlineSet).Result()
}

func (p *PresenceStore) write(ctx context.Context, status PresenceStatus) error {
	raw, err := json.Marshal(status)
	if err != nil {
		return err
	}
	pipe := p.client.Pipeline()
	pipe.Set(ctx, presenceKeyPrefix+status.UserID, raw, p.ttl)
	if status.IsOnline {
		pipe.SAdd(ctx, presenceOnlineSet, status.UserID)
	}
	_, err = pipe.Exec(ctx)
	return err
}
