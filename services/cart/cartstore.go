package cart

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/MarcGrol/cartbackend/lib/myerrors"
	"github.com/MarcGrol/cartbackend/lib/myevents"
	"github.com/MarcGrol/cartbackend/lib/mylog"
	"github.com/MarcGrol/cartbackend/lib/mypublisher"
	"github.com/MarcGrol/cartbackend/lib/mystore"
	"github.com/MarcGrol/cartbackend/lib/mytime"
	"github.com/MarcGrol/cartbackend/services/cart/cartevents"
	"github.com/MarcGrol/cartbackend/services/catalog"
)

// CartStore owns a single cart. Mutations are validated against the catalog and, when accepted,
// persisted as a snapshot under the cart uid. Rejections and failures never reach the caller:
// they leave the cart as it was and are reported through the notifier.
//
// Operations on one CartStore run one at a time, remote lookups included, so two quick
// adds of the same product cannot overwrite each other.
type CartStore struct {
	sync.Mutex
	cartUID   string
	cart      Cart
	snapshots mystore.Store[Snapshot]
	catalog   catalog.Client
	notifier  Notifier
	publisher mypublisher.Publisher
	nower     mytime.Nower
	logger    mylog.Logger
}

// NewCartStore restores the cart from its snapshot. A missing or unparsable snapshot yields an empty cart.
func NewCartStore(c context.Context, cartUID string, snapshots mystore.Store[Snapshot], catalogClient catalog.Client,
	notifier Notifier, publisher mypublisher.Publisher, nower mytime.Nower, logger mylog.Logger) (*CartStore, error) {

	s := &CartStore{
		cartUID:   cartUID,
		cart:      Cart{},
		snapshots: snapshots,
		catalog:   catalogClient,
		notifier:  notifier,
		publisher: publisher,
		nower:     nower,
		logger:    logger,
	}

	snapshot, found, err := snapshots.Get(c, cartUID)
	if err != nil {
		return nil, myerrors.NewInternalError(err)
	}
	if !found {
		return s, nil
	}

	cart, err := snapshot.cart()
	if err != nil {
		logger.Log(c, cartUID, mylog.SeverityWarn, "Starting with empty cart: %s", err)
		return s, nil
	}
	s.cart = cart

	return s, nil
}

func (s *CartStore) UID() string {
	return s.cartUID
}

// Cart returns a copy of the current cart.
func (s *CartStore) Cart() Cart {
	s.Lock()
	defer s.Unlock()

	return append(Cart{}, s.cart...)
}

func (s *CartStore) AddProduct(c context.Context, productID int) {
	s.Lock()
	defer s.Unlock()

	s.logger.Log(c, s.cartUID, mylog.SeverityInfo, "Add product %d to cart %s", productID, s.cartUID)

	product, stock, err := s.fetchProductAndStock(c, productID)
	if err != nil {
		s.notify(c, MessageAddFailed, err)
		return
	}

	if stock.Amount < 1 {
		s.notify(c, MessageOutOfStock, fmt.Errorf("product %d has no stock", productID))
		return
	}

	var newCart Cart
	var amount int
	idx := s.cart.indexOf(productID)
	if idx >= 0 {
		amount = s.cart[idx].Amount + 1
		if stock.Amount < amount {
			s.notify(c, MessageOutOfStock, fmt.Errorf("product %d: requested %d, in stock %d", productID, amount, stock.Amount))
			return
		}
		newCart = s.cart.withAmount(idx, amount)
	} else {
		// the cart is keyed on the requested id, whatever the catalog echoes back
		product.ID = productID
		amount = 1
		newCart = s.cart.withProduct(Product{Product: product, Amount: amount})
	}

	err = s.commit(c, newCart, cartevents.ProductAdded{
		CartUID:   s.cartUID,
		ProductID: productID,
		Amount:    amount,
	})
	if err != nil {
		s.notify(c, MessageAddFailed, err)
		return
	}
}

func (s *CartStore) RemoveProduct(c context.Context, productID int) {
	s.Lock()
	defer s.Unlock()

	s.logger.Log(c, s.cartUID, mylog.SeverityInfo, "Remove product %d from cart %s", productID, s.cartUID)

	idx := s.cart.indexOf(productID)
	if idx < 0 {
		s.notify(c, MessageRemoveFailed, fmt.Errorf("product %d is not in cart", productID))
		return
	}

	err := s.commit(c, s.cart.without(idx), cartevents.ProductRemoved{
		CartUID:   s.cartUID,
		ProductID: productID,
	})
	if err != nil {
		s.notify(c, MessageRemoveFailed, err)
		return
	}
}

// UpdateProductAmount is the only place where a requested amount is validated: it must be at least 1
// and not exceed the current stock. Updating a product that is not in the cart changes nothing.
func (s *CartStore) UpdateProductAmount(c context.Context, update UpdateProductAmount) {
	s.Lock()
	defer s.Unlock()

	s.logger.Log(c, s.cartUID, mylog.SeverityInfo, "Update amount of product %d in cart %s to %d", update.ProductID, s.cartUID, update.Amount)

	stock, err := s.catalog.GetStock(c, update.ProductID)
	if err != nil {
		s.notify(c, MessageUpdateFailed, err)
		return
	}

	if update.Amount < 1 || update.Amount > stock.Amount {
		s.notify(c, MessageOutOfStock, fmt.Errorf("product %d: requested %d, in stock %d", update.ProductID, update.Amount, stock.Amount))
		return
	}

	idx := s.cart.indexOf(update.ProductID)
	if idx < 0 {
		return
	}

	err = s.commit(c, s.cart.withAmount(idx, update.Amount), cartevents.ProductAmountUpdated{
		CartUID:   s.cartUID,
		ProductID: update.ProductID,
		Amount:    update.Amount,
	})
	if err != nil {
		s.notify(c, MessageUpdateFailed, err)
		return
	}
}

func (s *CartStore) fetchProductAndStock(c context.Context, productID int) (catalog.Product, catalog.Stock, error) {
	var product catalog.Product
	var stock catalog.Stock

	g, gc := errgroup.WithContext(c)
	g.Go(func() error {
		var err error
		product, err = s.catalog.GetProduct(gc, productID)
		return err
	})
	g.Go(func() error {
		var err error
		stock, err = s.catalog.GetStock(gc, productID)
		return err
	})
	err := g.Wait()
	if err != nil {
		return catalog.Product{}, catalog.Stock{}, err
	}

	return product, stock, nil
}

// commit persists the new cart and announces the change; only when both succeed does it become current.
func (s *CartStore) commit(c context.Context, newCart Cart, event myevents.Event) error {
	snapshot, err := newSnapshot(s.cartUID, newCart, s.nower.Now())
	if err != nil {
		return myerrors.NewInternalError(err)
	}

	err = s.snapshots.RunInTransaction(c, func(c context.Context) error {
		// publish first: not every store can roll back a snapshot that was already written
		err := s.publisher.Publish(c, cartevents.TopicName, event)
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		err = s.snapshots.Put(c, s.cartUID, snapshot)
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.cart = newCart

	return nil
}

func (s *CartStore) notify(c context.Context, message string, reason error) {
	s.logger.Log(c, s.cartUID, mylog.SeverityWarn, "%s: %s", message, reason)
	s.notifier.Notify(c, s.cartUID, message)
}
