package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoValue is returned when a key has no stored value.
var ErrNoValue = errors.New("session: no value")

// Persisted state keys. All of them are written together on login and
// removed together on logout or resolution failure.
const (
	KeyToken        = "token"
	KeyUser         = "user"
	KeyPhone        = "phoneNumber"
	KeyAuthProvider = "authProvider"
	KeyAuthType     = "authType"
	KeyAvatar       = "userImage"
	KeyInitial      = "userInitial"
	KeyEmployeeID   = "employeeId"
	KeyOrgRoleID    = "roleId"
)

// Keys lists every persisted session key.
func Keys() []string {
	return []string{
		KeyToken, KeyUser, KeyPhone, KeyAuthProvider, KeyAuthType,
		KeyAvatar, KeyInitial, KeyEmployeeID, KeyOrgRoleID,
	}
}

// Store is the persisted half of the session, injected explicitly
// instead of living in ambient global state.
type Store interface {
	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, error)
	Clear(ctx context.Context) error
}

// Save writes the user, token and derived convenience fields as one
// key set.
func Save(ctx context.Context, store Store, user *User, token string) error {
	serialized, err := json.Marshal(user)
	if err != nil {
		return err
	}

	values := map[string]string{
		KeyToken:        token,
		KeyUser:         string(serialized),
		KeyPhone:        user.PhoneNumber,
		KeyAuthProvider: user.AuthProvider,
		KeyAuthType:     user.AuthProvider,
		KeyAvatar:       user.AvatarImage(),
		KeyInitial:      user.Initial(),
		KeyEmployeeID:   user.Org.EmployeeID,
		KeyOrgRoleID:    user.OrgRoleID,
	}
	for key, value := range values {
		if err := store.Set(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}

// Load reads back the persisted user and token. Both must be present;
// a partial session is treated as absent.
func Load(ctx context.Context, store Store) (*User, string, error) {
	token, err := store.Get(ctx, KeyToken)
	if err != nil {
		return nil, "", err
	}
	serialized, err := store.Get(ctx, KeyUser)
	if err != nil {
		return nil, "", err
	}

	var user User
	if err := json.Unmarshal([]byte(serialized), &user); err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

// redisCommander narrows the redis client surface the store needs.
type redisCommander interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStore persists session state in redis, keyed per client. It is
// the store embedding bridge clients use in production.
type RedisStore struct {
	client redisCommander
	prefix string
}

// NewRedisStore creates a store scoped to one client/device identifier.
func NewRedisStore(client redisCommander, clientID string) *RedisStore {
	return &RedisStore{client: client, prefix: "session:" + clientID + ":"}
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.prefix+key, value, 0).Err()
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Result()
	if err == redis.Nil {
		return "", ErrNoValue
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	keys := make([]string, 0, len(Keys()))
	for _, key := range Keys() {
		keys = append(keys, s.prefix+key)
	}
	return s.client.Del(ctx, keys...).Err()
}

// MemoryStore is an in-process store used by tests and by embedded
// clients without a redis.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	if !ok {
		return "", ErrNoValue
	}
	return value, nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]string)
	return nil
}
