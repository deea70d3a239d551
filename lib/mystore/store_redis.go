package mystore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps every entity as a json document under "<kind>:<uid>".
// Transactions are serialized per process only.
type RedisStore[T any] struct {
	sync.Mutex
	client *redis.Client
	kind   string
}

func NewRedisStore[T any](c context.Context, addr string) (*RedisStore[T], func(), error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	err := client.Ping(c).Err()
	if err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("error connecting to redis on %s: %s", addr, err)
	}

	return NewRedisStoreWithClient[T](client), func() {
		client.Close()
	}, nil
}

func NewRedisStoreWithClient[T any](client *redis.Client) *RedisStore[T] {
	return &RedisStore[T]{
		client: client,
		kind:   kindOf[T](),
	}
}

func (s *RedisStore[T]) key(uid string) string {
	return s.kind + ":" + uid
}

func (s *RedisStore[T]) RunInTransaction(c context.Context, f func(c context.Context) error) error {
	s.Lock()
	defer s.Unlock()

	return f(context.WithValue(c, ctxTransactionKey{}, s))
}

func (s *RedisStore[T]) Put(c context.Context, uid string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("error marshalling entity %s with uid %s: %s", s.kind, uid, err)
	}

	err = s.client.Set(c, s.key(uid), data, 0).Err()
	if err != nil {
		return fmt.Errorf("error storing entity %s with uid %s: %s", s.kind, uid, err)
	}

	return nil
}

func (s *RedisStore[T]) Get(c context.Context, uid string) (T, bool, error) {
	var value T

	data, err := s.client.Get(c, s.key(uid)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return value, false, nil
		}
		return value, false, fmt.Errorf("error fetching entity %s with uid %s: %s", s.kind, uid, err)
	}

	err = json.Unmarshal(data, &value)
	if err != nil {
		return value, false, fmt.Errorf("error unmarshalling entity %s with uid %s: %s", s.kind, uid, err)
	}

	return value, true, nil
}

func (s *RedisStore[T]) List(c context.Context) ([]T, error) {
	keys := []string{}
	iter := s.client.Scan(c, 0, s.kind+":*", 100).Iterator()
	for iter.Next(c) {
		keys = append(keys, iter.Val())
	}
	err := iter.Err()
	if err != nil {
		return nil, fmt.Errorf("error scanning entities %s: %s", s.kind, err)
	}

	result := make([]T, 0, len(keys))
	for _, key := range keys {
		value, found, err := s.Get(c, strings.TrimPrefix(key, s.kind+":"))
		if err != nil {
			return nil, err
		}
		if found {
			result = append(result, value)
		}
	}

	return result, nil
}

// Query ignores filters and ordering, like the in-memory store.
func (s *RedisStore[T]) Query(c context.Context, filters []Filter, orderByField string) ([]T, error) {
	return s.List(c)
}
