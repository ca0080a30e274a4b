package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/cro-engine/internal/domain"
)

// keyPrefix namespaces session records in Redis.
const keyPrefix = "cro:session:"

// connectTimeout bounds the initial connection check.
const connectTimeout = 5 * time.Second

// RedisStore is a Redis-backed Store. Each session is one JSON value under
// a fixed key, written whole on every mutation and refreshed to the
// configured TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	maxLog int
	now    func() time.Time
}

// NewRedisStore creates a RedisStore and verifies the connection.
func NewRedisStore(client *redis.Client, ttl time.Duration, maxLog int) (*RedisStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisStore{
		client: client,
		ttl:    ttl,
		maxLog: maxLog,
		now:    time.Now,
	}, nil
}

// Get returns the session for the given id, creating it if absent.
func (r *RedisStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID != "" {
		s, err := r.read(ctx, sessionID)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, redis.Nil) {
			return nil, err
		}
	}

	s := reviveSession(sessionID, r.now())
	if err := r.write(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Touch updates the session's last-activity time.
func (r *RedisStore) Touch(ctx context.Context, sessionID string) error {
	return r.update(ctx, sessionID, func(*domain.Session) {})
}

// SetAttribution caches the session's attribution (last-touch wins).
func (r *RedisStore) SetAttribution(ctx context.Context, sessionID string, attr domain.Attribution) error {
	return r.update(ctx, sessionID, func(s *domain.Session) {
		s.Attribution = &attr
	})
}

// SetLeadScore caches the most recent lead score.
func (r *RedisStore) SetLeadScore(ctx context.Context, sessionID string, score int) error {
	return r.update(ctx, sessionID, func(s *domain.Session) {
		s.LeadScore = &score
	})
}

// SetAssignment records the variant assigned for an experiment.
func (r *RedisStore) SetAssignment(ctx context.Context, sessionID, experimentID, variantID string) error {
	return r.update(ctx, sessionID, func(s *domain.Session) {
		if s.ExperimentAssignments == nil {
			s.ExperimentAssignments = make(map[string]string)
		}
		s.ExperimentAssignments[experimentID] = variantID
	})
}

// AppendConversion appends an event to the session's conversion log.
func (r *RedisStore) AppendConversion(ctx context.Context, sessionID string, ev domain.ConversionEvent) error {
	return r.update(ctx, sessionID, func(s *domain.Session) {
		s.ConversionLog = capLog(append(s.ConversionLog, ev), r.maxLog)
	})
}

// update is a read-modify-write of the whole session record. The write
// replaces the previous value; concurrent writers are last-write-wins
// (see the package comment).
func (r *RedisStore) update(ctx context.Context, sessionID string, mutate func(*domain.Session)) error {
	s, err := r.read(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			return err
		}
		s = reviveSession(sessionID, r.now())
	}

	mutate(s)
	s.LastActivityTime = r.now()
	return r.write(ctx, s)
}

func (r *RedisStore) read(ctx context.Context, sessionID string) (*domain.Session, error) {
	data, err := r.client.Get(ctx, keyPrefix+sessionID).Bytes()
	if err != nil {
		return nil, err
	}

	var s domain.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return &s, nil
}

func (r *RedisStore) write(ctx context.Context, s *domain.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", s.SessionID, err)
	}

	if err := r.client.Set(ctx, keyPrefix+s.SessionID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("write session %s: %w", s.SessionID, err)
	}
	return nil
}
