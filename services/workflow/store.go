package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"shipflow/models"

	"github.com/go-redis/redis/v8"
)

// SessionState is the resumable unit of wizard progress: the draft plus the
// index of the step the customer should land on next.
type SessionState struct {
	SessionID string              `json:"sessionId"`
	Draft     models.BookingDraft `json:"draft"`
	StepIndex int                 `json:"stepIndex"`
}

// CurrentStep returns the step the session is parked on.
func (s *SessionState) CurrentStep() StepID {
	return StepAt(s.StepIndex)
}

// SessionStore persists resumable wizard state. Entries are scoped by
// session id so two bookings attempted in sequence never contaminate each
// other.
type SessionStore interface {
	Save(ctx context.Context, state *SessionState) error
	Load(ctx context.Context, sessionID string) (*SessionState, error)
	Clear(ctx context.Context, sessionID string) error
}

// RedisSessionStore keeps wizard state as a JSON blob per session id with a
// sliding TTL.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func wizardKey(sessionID string) string {
	return "wizard:" + sessionID + ":state"
}

func (s *RedisSessionStore) Save(ctx context.Context, state *SessionState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal wizard state: %w", err)
	}
	if err := s.client.Set(ctx, wizardKey(state.SessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store wizard state: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Load(ctx context.Context, sessionID string) (*SessionState, error) {
	data, err := s.client.Get(ctx, wizardKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read wizard state: %w", err)
	}
	var state SessionState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("failed to parse wizard state: %w", err)
	}
	return &state, nil
}

func (s *RedisSessionStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, wizardKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear wizard state: %w", err)
	}
	return nil
}
