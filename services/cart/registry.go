package cart

import (
	"context"
	"sync"
)

// carts hands out one CartStore per cart uid, restoring it from its snapshot on first use.
type carts struct {
	sync.Mutex
	stores map[string]*CartStore
	open   func(c context.Context, cartUID string) (*CartStore, error)
}

func newCarts(open func(c context.Context, cartUID string) (*CartStore, error)) *carts {
	return &carts{
		stores: map[string]*CartStore{},
		open:   open,
	}
}

func (r *carts) get(c context.Context, cartUID string) (*CartStore, error) {
	r.Lock()
	defer r.Unlock()

	store, found := r.stores[cartUID]
	if found {
		return store, nil
	}

	store, err := r.open(c, cartUID)
	if err != nil {
		return nil, err
	}
	r.stores[cartUID] = store

	return store, nil
}
