package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/aretw0/autograde/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by the store and locker.
const DefaultPrefix = "autograde:session:"

// Hash fields of a session key.
const (
	fieldCompleted = "completed"
	fieldUpdatedAt = "updated_at"
)

// Store implements ports.ProgressStore using Redis.
//
// Each session is a hash holding the completed exercise names and the
// last update time. A sorted set scores session IDs by expiry so List can
// skip sessions whose hash Redis already evicted.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithTTL expires sessions that have not been saved for ttl. Zero keeps
// them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix overrides DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New connects to the Redis server at address.
func New(address, password string, db int, opts ...Option) *Store {
	return NewFromClient(backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	}), opts...)
}

// NewFromClient wraps an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	s := &Store{client: client, prefix: DefaultPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Client returns the underlying client, e.g. to share it with a Locker.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) sessionKey(sessionID string) string {
	return s.prefix + sessionID
}

func (s *Store) expiryIndex() string {
	return s.prefix + "index"
}

// expiresAt is the index score of a session saved at now.
func (s *Store) expiresAt(now time.Time) float64 {
	if s.ttl <= 0 {
		return float64(time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC).Unix())
	}
	return float64(now.Add(s.ttl).Unix())
}

// Save writes the session hash and refreshes its expiry in one transaction.
// Expired index entries are pruned on the way.
func (s *Store) Save(ctx context.Context, sessionID string, progress *domain.Progress) error {
	completed, err := json.Marshal(progress.Completed)
	if err != nil {
		return fmt.Errorf("encode completed exercises: %w", err)
	}
	updatedAt := progress.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	now := time.Now()
	key := s.sessionKey(sessionID)
	_, err = s.client.TxPipelined(ctx, func(tx backend.Pipeliner) error {
		tx.HSet(ctx, key, fieldCompleted, completed, fieldUpdatedAt, updatedAt.Format(time.RFC3339Nano))
		if s.ttl > 0 {
			tx.Expire(ctx, key, s.ttl)
		} else {
			tx.Persist(ctx, key)
		}
		tx.ZAdd(ctx, s.expiryIndex(), backend.Z{Score: s.expiresAt(now), Member: sessionID})
		tx.ZRemRangeByScore(ctx, s.expiryIndex(), "-inf", "("+strconv.FormatInt(now.Unix(), 10))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save %s: %w", sessionID, err)
	}
	return nil
}

// Load reads the session hash. A missing or evicted hash is
// domain.ErrSessionNotFound.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.Progress, error) {
	fields, err := s.client.HGetAll(ctx, s.sessionKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis load %s: %w", sessionID, err)
	}
	if len(fields) == 0 {
		return nil, domain.ErrSessionNotFound
	}

	progress := &domain.Progress{SessionID: sessionID, Completed: []string{}}
	if raw := fields[fieldCompleted]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &progress.Completed); err != nil {
			return nil, fmt.Errorf("decode completed exercises of %s: %w", sessionID, err)
		}
		if progress.Completed == nil {
			progress.Completed = []string{}
		}
	}
	if raw := fields[fieldUpdatedAt]; raw != "" {
		if progress.UpdatedAt, err = time.Parse(time.RFC3339Nano, raw); err != nil {
			return nil, fmt.Errorf("decode update time of %s: %w", sessionID, err)
		}
	}
	return progress, nil
}

// Delete removes the session hash and its index entry.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	_, err := s.client.TxPipelined(ctx, func(tx backend.Pipeliner) error {
		tx.Del(ctx, s.sessionKey(sessionID))
		tx.ZRem(ctx, s.expiryIndex(), sessionID)
		return nil
	})
	return err
}

// List returns the sessions whose expiry lies in the future.
func (s *Store) List(ctx context.Context) ([]string, error) {
	ids, err := s.client.ZRangeByScore(ctx, s.expiryIndex(), &backend.ZRangeBy{
		Min: "(" + strconv.FormatInt(time.Now().Unix(), 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list sessions: %w", err)
	}
	return ids, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
