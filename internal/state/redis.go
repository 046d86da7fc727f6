package state

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	backend "github.com/redis/go-redis/v9"
)

const (
	fieldID           = "id"
	fieldFirstName    = "first_name"
	fieldLastName     = "last_name"
	fieldUsername     = "username"
	fieldLang         = "lang"
	fieldState        = "state"
	fieldLastActivity = "last_activity"
)

// RedisStore keeps users in Redis hashes named {prefix}user:{id}.
type RedisStore struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// Option configures a RedisStore.
type Option func(*RedisStore)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// WithTTL expires idle users after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

// NewRedis connects to Redis.
func NewRedis(address, password string, db int, opts ...Option) *RedisStore {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient wraps an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *RedisStore {
	s := &RedisStore{client: client, prefix: "navigator:", now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(userID int64) string {
	return s.prefix + "user:" + strconv.FormatInt(userID, 10)
}

// Register implements Store.
func (s *RedisStore) Register(ctx context.Context, p Profile, initial string) (Profile, error) {
	key := s.key(p.ID)
	now := s.now()

	values, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return Profile{}, fmt.Errorf("load user %d: %w", p.ID, err)
	}

	pipe := s.client.TxPipeline()
	if _, ok := values[fieldID]; !ok {
		p.State = initial
		p.LastActivity = now
		pipe.HSet(ctx, key,
			fieldID, p.ID,
			fieldFirstName, p.FirstName,
			fieldLastName, p.LastName,
			fieldUsername, p.Username,
			fieldLang, p.Lang,
			fieldState, p.State,
			fieldLastActivity, strconv.FormatFloat(unixSeconds(now), 'f', -1, 64),
		)
	} else {
		p = profileFrom(p.ID, values)
		p.LastActivity = now
		pipe.HSet(ctx, key, fieldLastActivity, strconv.FormatFloat(unixSeconds(now), 'f', -1, 64))
	}
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return Profile{}, fmt.Errorf("save user %d: %w", p.ID, err)
	}
	return p, nil
}

// State implements Store.
func (s *RedisStore) State(ctx context.Context, userID int64) (string, error) {
	value, err := s.client.HGet(ctx, s.key(userID), fieldState).Result()
	if errors.Is(err, backend.Nil) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load state of user %d: %w", userID, err)
	}
	return value, nil
}

// SetState implements Store.
func (s *RedisStore) SetState(ctx context.Context, userID int64, status string) error {
	return s.setField(ctx, userID, fieldState, status)
}

// SetLang implements Store.
func (s *RedisStore) SetLang(ctx context.Context, userID int64, lang string) error {
	return s.setField(ctx, userID, fieldLang, lang)
}

func (s *RedisStore) setField(ctx context.Context, userID int64, field, value string) error {
	key := s.key(userID)
	exists, err := s.client.HExists(ctx, key, fieldID).Result()
	if err != nil {
		return fmt.Errorf("check user %d: %w", userID, err)
	}
	if !exists {
		return ErrUserNotFound
	}
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, field, value, fieldLastActivity, strconv.FormatFloat(unixSeconds(s.now()), 'f', -1, 64))
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save %s of user %d: %w", field, userID, err)
	}
	return nil
}

func profileFrom(id int64, values map[string]string) Profile {
	p := Profile{
		ID:        id,
		FirstName: values[fieldFirstName],
		LastName:  values[fieldLastName],
		Username:  values[fieldUsername],
		Lang:      values[fieldLang],
		State:     values[fieldState],
	}
	if raw, ok := values[fieldLastActivity]; ok {
		if seconds, err := strconv.ParseFloat(raw, 64); err == nil {
			p.LastActivity = time.Unix(0, int64(seconds*float64(time.Second)))
		}
	}
	return p
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
