package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore holds each learner's active section attempt. Get returns
// ErrNoSession when the learner has none.
type SessionStore interface {
	Name() string
	Get(ctx context.Context, learnerID string) (*Session, error)
	Save(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, learnerID string) error
	Count(ctx context.Context) (int, error)
}

// ── Memory ───────────────────────────────────────────────

type MemorySessions struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{sessions: make(map[string]Session)}
}

func (m *MemorySessions) Name() string { return "memory" }

func (m *MemorySessions) Get(ctx context.Context, learnerID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[learnerID]
	if !ok {
		return nil, ErrNoSession
	}
	sess.Answered = append([]string{}, sess.Answered...)
	return &sess, nil
}

func (m *MemorySessions) Save(ctx context.Context, sess *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *sess
	copied.Answered = append([]string{}, sess.Answered...)
	m.sessions[sess.LearnerID] = copied
	return nil
}

func (m *MemorySessions) Delete(ctx context.Context, learnerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, learnerID)
	return nil
}

func (m *MemorySessions) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions), nil
}

// ── Redis ────────────────────────────────────────────────

const sessionKeyPrefix = "session:active:"

// RedisSessions stores sessions as JSON with a sliding TTL, so an attempt
// abandoned without a DELETE eventually disappears.
type RedisSessions struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessions(client *redis.Client, ttl time.Duration) *RedisSessions {
	return &RedisSessions{client: client, ttl: ttl}
}

// ConnectRedis parses a redis:// URL and verifies the server answers.
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (r *RedisSessions) Name() string { return "redis" }

func sessionKey(learnerID string) string {
	return sessionKeyPrefix + learnerID
}

func (r *RedisSessions) Get(ctx context.Context, learnerID string) (*Session, error) {
	data, err := r.client.Get(ctx, sessionKey(learnerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	sess, err := decodeSession(data)
	if err != nil {
		log.Printf("[progress] dropping unreadable session for %s: %v", learnerID, err)
		r.client.Del(ctx, sessionKey(learnerID))
		return nil, ErrNoSession
	}
	return sess, nil
}

func decodeSession(data []byte) (*Session, error) {
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	if sess.LearnerID == "" || sess.SectionID <= 0 {
		return nil, errors.New("session payload missing learner or section")
	}
	return &sess, nil
}

func (r *RedisSessions) Save(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(sess.LearnerID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *RedisSessions) Delete(ctx context.Context, learnerID string) error {
	if err := r.client.Del(ctx, sessionKey(learnerID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *RedisSessions) Count(ctx context.Context) (int, error) {
	var cursor uint64
	count := 0
	for {
		keys, next, err := r.client.Scan(ctx, cursor, sessionKeyPrefix+"*", 200).Result()
		if err != nil {
			return 0, fmt.Errorf("scan sessions: %w", err)
		}
		count += len(keys)
		cursor = next
		if cursor == 0 {
			return count, nil
		}
	}
}
