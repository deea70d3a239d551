package cart

import (
	"context"

	"github.com/MarcGrol/cartbackend/lib/mylog"
	"github.com/MarcGrol/cartbackend/lib/mypublisher"
	"github.com/MarcGrol/cartbackend/lib/mystore"
	"github.com/MarcGrol/cartbackend/lib/mytime"
	"github.com/MarcGrol/cartbackend/lib/myuuid"
	"github.com/MarcGrol/cartbackend/services/catalog"
)

type service struct {
	carts     *carts
	toaster   *toaster
	publisher mypublisher.Publisher
	uuider    myuuid.UUIDer
	logger    mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(snapshots mystore.Store[Snapshot], toasts mystore.Store[Toasts], catalogClient catalog.Client,
	pub mypublisher.Publisher, nower mytime.Nower, uuider myuuid.UUIDer, logger mylog.Logger) *service {

	t := newToaster(toasts, logger)
	return &service{
		carts: newCarts(func(c context.Context, cartUID string) (*CartStore, error) {
			return NewCartStore(c, cartUID, snapshots, catalogClient, t, pub, nower, logger)
		}),
		toaster:   t,
		publisher: pub,
		uuider:    uuider,
		logger:    logger,
	}
}

func (s *service) createCart(c context.Context) string {
	cartUID := s.uuider.Create()
	s.logger.Log(c, cartUID, mylog.SeverityInfo, "Created cart %s", cartUID)
	return cartUID
}

func (s *service) getCart(c context.Context, cartUID string) (CartView, error) {
	store, err := s.carts.get(c, cartUID)
	if err != nil {
		return CartView{}, err
	}

	return s.view(c, store)
}

func (s *service) addProduct(c context.Context, cartUID string, productID int) (CartView, error) {
	store, err := s.carts.get(c, cartUID)
	if err != nil {
		return CartView{}, err
	}

	store.AddProduct(c, productID)

	return s.view(c, store)
}

func (s *service) removeProduct(c context.Context, cartUID string, productID int) (CartView, error) {
	store, err := s.carts.get(c, cartUID)
	if err != nil {
		return CartView{}, err
	}

	store.RemoveProduct(c, productID)

	return s.view(c, store)
}

func (s *service) updateProductAmount(c context.Context, cartUID string, update UpdateProductAmount) (CartView, error) {
	store, err := s.carts.get(c, cartUID)
	if err != nil {
		return CartView{}, err
	}

	store.UpdateProductAmount(c, update)

	return s.view(c, store)
}

func (s *service) view(c context.Context, store *CartStore) (CartView, error) {
	notifications, err := s.toaster.Pop(c, store.UID())
	if err != nil {
		return CartView{}, err
	}

	return CartView{
		CartUID:       store.UID(),
		Products:      store.Cart(),
		Notifications: notifications,
	}, nil
}
