package mystore

import (
	"context"
	"sync"
)

type InMemoryStore[T any] struct {
	sync.Mutex
	Items map[string]T
}

func NewInMemoryStore[T any](c context.Context) (*InMemoryStore[T], func(), error) {
	return &InMemoryStore[T]{
		Items: make(map[string]T),
	}, func() {}, nil
}

// RunInTransaction holds the store lock while f runs. The context is marked with this store only,
// so a transaction on one store does not bypass the lock of another.
func (s *InMemoryStore[T]) RunInTransaction(c context.Context, f func(c context.Context) error) error {
	s.Lock()
	defer s.Unlock()

	return f(context.WithValue(c, ctxTransactionKey{}, s))
}

func (s *InMemoryStore[T]) inTransaction(c context.Context) bool {
	owner, ok := c.Value(ctxTransactionKey{}).(*InMemoryStore[T])
	return ok && owner == s
}

func (s *InMemoryStore[T]) Put(c context.Context, uid string, value T) error {
	if !s.inTransaction(c) {
		s.Lock()
		defer s.Unlock()
	}

	s.Items[uid] = value

	return nil
}

func (s *InMemoryStore[T]) Get(c context.Context, uid string) (T, bool, error) {
	if !s.inTransaction(c) {
		s.Lock()
		defer s.Unlock()
	}

	result, exists := s.Items[uid]

	return result, exists, nil
}

func (s *InMemoryStore[T]) List(c context.Context) ([]T, error) {
	if !s.inTransaction(c) {
		s.Lock()
		defer s.Unlock()
	}

	result := make([]T, 0, len(s.Items))
	for _, v := range s.Items {
		result = append(result, v)
	}

	return result, nil
}

// Query ignores filters and ordering; callers must not rely on them in memory.
func (s *InMemoryStore[T]) Query(c context.Context, filters []Filter, orderByField string) ([]T, error) {
	return s.List(c)
}
