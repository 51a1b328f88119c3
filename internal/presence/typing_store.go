package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"mockchat/internal/model"
)

// TypingStore keeps per-conversation typing signals in a redis hash keyed by
// user name. Signals carry their own last-activity timestamp; ActiveTyping
// filters by the TTL window and lazily removes expired entries. The hash key
// itself expires shortly after the last activity so idle conversations leave
// nothing behind.
type TypingStore struct {
	client *redisv9.Client
	ttl    time.Duration
}

type typingEntry struct {
	Role      string `json:"role"`
	UpdatedAt int64  `json:"updated_at_ms"`
}

func NewTypingStore(client *redisv9.Client, ttl time.Duration) *TypingStore {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &TypingStore{
		client: client,
		ttl:    ttl,
	}
}

func (s *TypingStore) TTL() time.Duration {
	return s.ttl
}

// Upsert records that userName is typing in convKey right now.
func (s *TypingStore) Upsert(ctx context.Context, convKey, userName, role string) error {
	entry := typingEntry{
		Role:      role,
		UpdatedAt: time.Now().UnixMilli(),
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal typing entry failed: %w", err)
	}

	key := s.key(convKey)
	if err := s.client.HSet(ctx, key, userName, payload).Err(); err != nil {
		return fmt.Errorf("redis set typing entry failed: %w", err)
	}
	if err := s.client.Expire(ctx, key, s.ttl*4).Err(); err != nil {
		return fmt.Errorf("redis expire typing key failed: %w", err)
	}
	return nil
}

// Clear removes the signal for userName ("stop typing").
func (s *TypingStore) Clear(ctx context.Context, convKey, userName string) error {
	if err := s.client.HDel(ctx, s.key(convKey), userName).Err(); err != nil {
		return fmt.Errorf("redis delete typing entry failed: %w", err)
	}
	return nil
}

// ActiveTyping returns the signals whose last activity falls within the TTL
// window. Expired entries found on the way are deleted.
func (s *TypingStore) ActiveTyping(ctx context.Context, convKey string) ([]model.TypingSignal, error) {
	key := s.key(convKey)
	raw, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list typing entries failed: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	active, stale := filterActive(convKey, raw, time.Now(), s.ttl)

	if len(stale) > 0 {
		if err := s.client.HDel(ctx, key, stale...).Err(); err != nil {
			return nil, fmt.Errorf("redis trim typing entries failed: %w", err)
		}
	}
	return active, nil
}

// filterActive splits raw hash entries into signals within the TTL window
// and stale field names to delete. Unparseable entries count as stale.
func filterActive(convKey string, raw map[string]string, now time.Time, ttl time.Duration) ([]model.TypingSignal, []string) {
	cutoff := now.Add(-ttl).UnixMilli()

	var active []model.TypingSignal
	var stale []string
	for userName, value := range raw {
		var entry typingEntry
		if err := json.Unmarshal([]byte(value), &entry); err != nil {
			stale = append(stale, userName)
			continue
		}
		if entry.UpdatedAt < cutoff {
			stale = append(stale, userName)
			continue
		}
		active = append(active, model.TypingSignal{
			ConvKey:   convKey,
			UserName:  userName,
			Role:      entry.Role,
			UpdatedAt: time.UnixMilli(entry.UpdatedAt),
		})
	}
	return active, stale
}

func (s *TypingStore) key(convKey string) string {
	return fmt.Sprintf("chat:typing:%s", convKey)
}
