package mystore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"cloud.google.com/go/datastore"
)

const maxTransactionAttempts = 3

type gcloudStore[T any] struct {
	client *datastore.Client
	kind   string
}

func newGcloudStore[T any](c context.Context) (*gcloudStore[T], func(), error) {
	client, err := datastore.NewClient(c, os.Getenv("GOOGLE_CLOUD_PROJECT"))
	if err != nil {
		return nil, nil, fmt.Errorf("error creating datastore-client: %s", err)
	}

	return &gcloudStore[T]{
			client: client,
			kind:   kindOf[T](),
		}, func() {
			client.Close()
		}, nil
}

// kindOf derives the entity kind from the unqualified type name, e.g. "Snapshot" for cart.Snapshot.
func kindOf[T any]() string {
	kind := fmt.Sprintf("%T", *new(T))
	if idx := strings.LastIndex(kind, "."); idx >= 0 {
		kind = kind[idx+1:]
	}
	return kind
}

func (s *gcloudStore[T]) RunInTransaction(c context.Context, f func(c context.Context) error) error {
	var err error
	for attempt := 1; attempt <= maxTransactionAttempts; attempt++ {
		err = s.runInTransaction(c, f)
		if errors.Is(err, datastore.ErrConcurrentTransaction) {
			// retrying requires the logic in f to be idempotent
			log.Printf("Concurrent transaction on %s, retrying (%d of %d): %s", s.kind, attempt, maxTransactionAttempts, err)
			continue
		}
		return err
	}
	return err
}

func (s *gcloudStore[T]) runInTransaction(c context.Context, f func(c context.Context) error) error {
	tx, err := s.client.NewTransaction(c)
	if err != nil {
		return fmt.Errorf("error creating transaction: %s", err)
	}

	err = f(context.WithValue(c, ctxTransactionKey{}, tx))
	if err != nil {
		rollbackErr := tx.Rollback()
		if rollbackErr != nil {
			log.Printf("error rolling-back transaction on %s: %s", s.kind, rollbackErr)
		}
		return err
	}

	_, err = tx.Commit()
	if err != nil {
		return fmt.Errorf("error committing transaction on %s: %w", s.kind, err)
	}

	return nil
}

func transactionFrom(c context.Context) *datastore.Transaction {
	tx, _ := c.Value(ctxTransactionKey{}).(*datastore.Transaction)
	return tx
}

func (s *gcloudStore[T]) Put(c context.Context, uid string, value T) error {
	key := datastore.NameKey(s.kind, uid, nil)

	var err error
	if tx := transactionFrom(c); tx != nil {
		_, err = tx.Put(key, &value)
	} else {
		_, err = s.client.Put(c, key, &value)
	}
	if err != nil {
		return fmt.Errorf("error storing entity %s with uid %s: %s", s.kind, uid, err)
	}

	return nil
}

func (s *gcloudStore[T]) Get(c context.Context, uid string) (T, bool, error) {
	value := new(T)
	key := datastore.NameKey(s.kind, uid, nil)

	var err error
	if tx := transactionFrom(c); tx != nil {
		err = tx.Get(key, value)
	} else {
		err = s.client.Get(c, key, value)
	}
	if err != nil {
		if errors.Is(err, datastore.ErrNoSuchEntity) {
			return *value, false, nil
		}
		return *value, false, fmt.Errorf("error fetching entity %s with uid %s: %s", s.kind, uid, err)
	}

	return *value, true, nil
}

func (s *gcloudStore[T]) List(c context.Context) ([]T, error) {
	return s.getAll(c, datastore.NewQuery(s.kind).Limit(100))
}

func (s *gcloudStore[T]) Query(c context.Context, filters []Filter, orderByField string) ([]T, error) {
	q := datastore.NewQuery(s.kind)
	for _, f := range filters {
		q = q.FilterField(f.Field, f.Compare, f.Value)
	}
	if orderByField != "" {
		q = q.Order(orderByField)
	}
	return s.getAll(c, q)
}

func (s *gcloudStore[T]) getAll(c context.Context, q *datastore.Query) ([]T, error) {
	if tx := transactionFrom(c); tx != nil {
		q = q.Transaction(tx)
	}

	objectsToFetch := []T{}
	_, err := s.client.GetAll(c, q, &objectsToFetch)
	if err != nil {
		return nil, fmt.Errorf("error fetching entities %s: %s", s.kind, err)
	}
	return objectsToFetch, nil
}
