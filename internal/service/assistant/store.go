package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hyrx/studio-backend/internal/model/chat"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrVersionConflict = errors.New("session version conflict")
)

// Store persists conversation sessions. Sessions are transient widget
// state; drivers may expire them after a TTL.
type Store interface {
	Create(ctx context.Context, session *chat.Session) error
	Get(ctx context.Context, id string) (*chat.Session, error)
	Update(ctx context.Context, session *chat.Session) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// NewMemoryStore returns an in-process store suitable for single-node
// deployments and tests.
func NewMemoryStore() Store {
	return &memoryStore{sessions: make(map[string]*chat.Session)}
}

// NewRedisStore returns a store backed by the given Redis client. Keys
// expire after ttl; reads refresh the TTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &redisStore{client: client, ttl: ttl}
}

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*chat.Session
}

func (s *memoryStore) Create(_ context.Context, session *chat.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now
	session.Version = 1

	s.sessions[session.ID] = cloneSession(session)
	return nil
}

func (s *memoryStore) Get(_ context.Context, id string) (*chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return cloneSession(stored), nil
}

func (s *memoryStore) Update(_ context.Context, session *chat.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.sessions[session.ID]
	if !ok {
		return ErrSessionNotFound
	}
	if stored.Version != session.Version {
		return ErrVersionConflict
	}

	session.Version++
	session.UpdatedAt = time.Now().UTC()
	s.sessions[session.ID] = cloneSession(session)
	return nil
}

func (s *memoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

func (s *memoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = nil
	return nil
}

func cloneSession(in *chat.Session) *chat.Session {
	out := *in
	out.Messages = make([]chat.Message, len(in.Messages))
	copy(out.Messages, in.Messages)
	return &out
}

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func sessionKey(id string) string {
	return "assistant:session:" + id
}

func (s *redisStore) Create(ctx context.Context, session *chat.Session) error {
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now
	session.Version = 1

	val, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(session.ID), val, s.ttl).Err()
}

func (s *redisStore) Get(ctx context.Context, id string) (*chat.Session, error) {
	key := sessionKey(id)
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var session chat.Session
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, err
	}

	// Keep active conversations alive.
	_ = s.client.Expire(ctx, key, s.ttl).Err()

	return &session, nil
}

func (s *redisStore) Update(ctx context.Context, session *chat.Session) error {
	key := sessionKey(session.ID)

	return s.client.Watch(ctx, func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key).Result()
		if err == redis.Nil {
			return ErrSessionNotFound
		}
		if err != nil {
			return err
		}

		var stored chat.Session
		if err := json.Unmarshal([]byte(val), &stored); err != nil {
			return err
		}
		if stored.Version != session.Version {
			return ErrVersionConflict
		}

		session.Version++
		session.UpdatedAt = time.Now().UTC()

		newVal, err := json.Marshal(session)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, newVal, s.ttl)
			return nil
		})
		return err
	}, key)
}

func (s *redisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, sessionKey(id)).Err()
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
