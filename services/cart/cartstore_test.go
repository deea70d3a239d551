package cart

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/cartbackend/lib/myerrors"
	"github.com/MarcGrol/cartbackend/lib/mylog"
	"github.com/MarcGrol/cartbackend/lib/mypublisher"
	"github.com/MarcGrol/cartbackend/lib/mystore"
	"github.com/MarcGrol/cartbackend/lib/mytime"
	"github.com/MarcGrol/cartbackend/services/cart/cartevents"
	"github.com/MarcGrol/cartbackend/services/catalog"
)

const cartUID = "123"

var (
	sneaker  = catalog.Product{ID: 1, Title: "Walking sneaker", Price: 179.9, Image: "tenis1.jpg"}
	runner   = catalog.Product{ID: 2, Title: "VR sneaker", Price: 139.9, Image: "tenis2.jpg"}
	trainer  = catalog.Product{ID: 3, Title: "Adidas Duramo Lite 2.0", Price: 219.9, Image: "tenis3.jpg"}
	notFound = myerrors.NewNotFoundError(fmt.Errorf("product not found"))
)

func line(p catalog.Product, amount int) Product {
	return Product{Product: p, Amount: amount}
}

type testContext struct {
	c         context.Context
	snapshots *mystore.InMemoryStore[Snapshot]
	catalog   *catalog.MockClient
	notifier  *MockNotifier
	publisher *mypublisher.MockPublisher
}

func (tc testContext) newStore(t *testing.T) *CartStore {
	nower := mytime.NewMockNower(gomock.NewController(t))
	nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

	sut, err := NewCartStore(tc.c, cartUID, tc.snapshots, tc.catalog, tc.notifier, tc.publisher, nower, mylog.New("cart"))
	assert.NoError(t, err)
	return sut
}

func (tc testContext) storedPayload(t *testing.T) string {
	snapshot, found, err := tc.snapshots.Get(tc.c, cartUID)
	assert.NoError(t, err)
	if !found {
		return ""
	}
	return snapshot.Payload
}

func setup(t *testing.T, ctrl *gomock.Controller, initial Cart) (testContext, *CartStore) {
	c := context.TODO()
	snapshots, _, _ := mystore.NewInMemoryStore[Snapshot](c)
	if initial != nil {
		snapshot, err := newSnapshot(cartUID, initial, mytime.ExampleTime)
		assert.NoError(t, err)
		snapshots.Put(c, cartUID, snapshot)
	}

	tc := testContext{
		c:         c,
		snapshots: snapshots,
		catalog:   catalog.NewMockClient(ctrl),
		notifier:  NewMockNotifier(ctrl),
		publisher: mypublisher.NewMockPublisher(ctrl),
	}
	return tc, tc.newStore(t)
}

func TestCartStoreInitialization(t *testing.T) {

	t.Run("No snapshot starts empty", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// when
		tc, sut := setup(t, ctrl, nil)

		// then
		assert.Equal(t, Cart{}, sut.Cart())
		assert.Equal(t, "", tc.storedPayload(t))
	})

	t.Run("Snapshot is restored", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// when
		_, sut := setup(t, ctrl, Cart{line(sneaker, 2), line(runner, 1)})

		// then
		assert.Equal(t, Cart{line(sneaker, 2), line(runner, 1)}, sut.Cart())
	})

	t.Run("Unparsable snapshot starts empty", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		tc, _ := setup(t, ctrl, nil)
		tc.snapshots.Put(tc.c, cartUID, Snapshot{UID: cartUID, Payload: `[{"id":"one"`})

		// when
		sut := tc.newStore(t)

		// then
		assert.Equal(t, Cart{}, sut.Cart())
	})

	t.Run("Null snapshot starts empty", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		tc, _ := setup(t, ctrl, nil)
		tc.snapshots.Put(tc.c, cartUID, Snapshot{UID: cartUID, Payload: `null`})

		// when
		sut := tc.newStore(t)

		// then
		assert.Equal(t, Cart{}, sut.Cart())
	})

	t.Run("Unreadable store fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// when
		_, err := NewCartStore(context.TODO(), cartUID, brokenStore{}, catalog.NewMockClient(ctrl), NewMockNotifier(ctrl),
			mypublisher.NewMockPublisher(ctrl), mytime.NewMockNower(ctrl), mylog.New("cart"))

		// then
		assert.Error(t, err)
		assert.Equal(t, 500, myerrors.GetHTTPStatus(err))
	})

	t.Run("Returned cart is a copy", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		_, sut := setup(t, ctrl, Cart{line(sneaker, 2)})

		// when
		got := sut.Cart()
		got[0].Amount = 99

		// then
		assert.Equal(t, 2, sut.Cart()[0].Amount)
	})
}

func TestAddProduct(t *testing.T) {

	t.Run("Add new product", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		tc, sut := setup(t, ctrl, nil)
		tc.catalog.EXPECT().GetProduct(gomock.Any(), 1).Return(sneaker, nil)
		tc.catalog.EXPECT().GetStock(gomock.Any(), 1).Return(catalog.Stock{ID: 1, Amount: 1}, nil)
		tc.publisher.EXPECT().Publish(gomock.Any(), cartevents.TopicName, cartevents.ProductAdded{CartUID: cartUID, ProductID: 1, Amount: 1}).Return(nil)

		// when
		sut.AddProduct(tc.c, 1)

		// then
		assert.Equal(t, Cart{line(sneaker, 1)}, sut.Cart())
		assert.Equal(t, `[{"id":1,"title":"Walking sneaker","price":179.9,"image":"tenis1.jpg","amount":1}]`, tc.storedPayload(t))
	})

	t.Run("Add new product appends to the end", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		tc, sut := setup(t, ctrl, Cart{line(sneaker, 2)})
		tc.catalog.EXPECT().GetProduct(gomock.Any(), 2).Return(runner, nil)
		tc.catalog.EXPECT().GetStock(gomock.Any(), 2).Return(catalog.Stock{ID: 2, Amount: 5}, nil)
		tc.publisher.EXPECT().Publish(gomock.Any(), cartevents.TopicName, cartevents.ProductAdded{CartUID: cartUID, ProductID: 2, Amount: 1}).Return(nil)

		// when
		sut.AddProduct(tc.c, 2)

		// then
		assert.Equal(t, Cart{line(sneaker, 2), line(runner, 1)}, sut.Cart())
	})

	t.Run("Add existing product increments amount in place", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		tc, sut := setup(t, ctrl, Cart{line(sneaker, 2), line(runner, 1), line(trainer, 1)})
		tc.catalog.EXPECT().GetProduct(gomock.Any(), 2).Return(runner, nil)
		tc.catalog.EXPECT().GetStock(gomock.Any(), 2).Return(catalog.Stock{ID: 2, Amount: 2}, nil)
		tc.publisher.EXPECT().Publish(gomock.Any(), cartevents.TopicName, cartevents.ProductAdded{CartUID: cartUID, ProductID: 2, Amount: 2}).Return(nil)

		// when
		sut.AddProduct(tc.c, 2)

		// then
		assert.Equal(t, Cart{line(sneaker, 2), line(runner, 2), line(trainer, 1)}, sut.Cart())
	})

	t.Run("Add existing product when stock is exhausted", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		tc, sut := setup(t, ctrl, Cart{line(sneaker, 2)})
		before := tc.storedPayload(t)
		tc.catalog.EXPECT().GetProduct(gomock.Any(), 1).Return(sneaker, nil)
		tc.catalog.EXPECT().GetStock(gomock.Any(), 1).Return(catalog.Stock{ID: 1, Amount: 2}, nil)
		tc.notifier.EXPECT().Notify(gomock.Any(), cartUID, MessageOutOfStock)

		// when
		sut.AddProduct(tc.c, 1)

		// then
		assert.Equal(t, Cart{line(sneaker, 2)}, sut.Cart())
		assert.Equal(t, before, tc.storedPayload(t))
	})

	t.Run("Add existing product when one more is in stock", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		tc, sut := setup(t, ctrl, Cart{line(sneaker, 2)})
		tc.catalog.EXPECT().GetProduct(gomock.Any(), 1).Return(sneaker, nil)
		tc.catalog.EXPECT().GetStock(gomock.Any(), 1).Return(catalog.Stock{ID: 1, Amount: 3}, nil)
		tc.publisher.EXPECT().Publish(gomock.Any(), cartevents.TopicName, cartevents.ProductAdded{CartUID: cartUID, ProductID: 1, Amount: 3}).Return(nil)

		// when
		sut.AddProduct(tc.c, 1)

		// then
		assert.Equal(t, Cart{line(sneaker, 3)}, sut.Cart())
	})

	t.Run("Add product without stock", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		tc, sut := setup(t, ctrl, nil)
		tc.catalog.EXPECT().GetProduct(gomock.Any(), 1).Return(sneaker, nil)
		tc.catalog.EXPECT().GetStock(gomock.Any(), 1).Return(catalog.Stock{ID: 1, Amount: 0}, nil)
		tc.notifier.EXPECT().Notify(gomock.Any(), cartUID, MessageOutOfStock)

		// when
		sut.AddProduct(tc.c, 1)

		// then
		assert.Equal(t, Cart{}, sut.Cart())
		assert.Equal(t, "", tc.storedPayload(t))
	})

	t.Run("Add unknown product", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		tc, sut := setup(t, ctrl, Cart{line(sneaker, 1)})
		before := tc.storedPayload(t)
		tc.catalog.EXPECT().GetProduct(gomock.Any(), 99).Return(catalog.Product{}, notFound)
		tc.catalog.EXPECT().GetStock(gomock.Any(), 99).Return(catalog.Stock{}, notFound).MaxTimes(1)
		tc.notifier.EXPECT().Notify(gomock.Any(), cartUID, MessageAddFailed)

		// when
		sut.AddProduct(tc.c, 99)

		// then
		assert.Equal(t, Cart{line(sneaker, 1)}, sut.Cart())
		assert.Equal(t, before, tc.storedPayload(t))
	})

	t.Run("Add product when stock lookup fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		tc, sut := setup(t, ctrl, nil)
		tc.catalog.EXPECT().GetProduct(gomock.Any(), 1).Return(sneaker, nil).MaxTimes(1)
		tc.catalog.EXPECT().GetStock(gomock.Any(), 1).Return(catalog.Stock{}, myerrors.NewUnavailableError(fmt.Errorf("timeout")))
		tc.notifier.EXPECT().Notify(gomock.Any(), cartUID, MessageAddFailed)

		// when
		sut.AddProduct(tc.c, 1)

		// then
		assert.Equal(t, Cart{}, sut.Cart())
	})

	t.Run("Add product when commit fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		tc, sut := setup(t, ctrl, nil)
		tc.catalog.EXPECT().GetProduct(gomock.Any(), 1).Return(sneaker, nil)
		tc.catalog.EXPECT().GetStock(gomock.Any(), 1).Return(catalog.Stock{ID: 1, Amount: 3}, nil)
		tc.publisher.EXPECT().Publish(gomock.Any(), cartevents.TopicName, gomock.Any()).Return(fmt.Errorf("outbox unavailable"))
		tc.notifier.EXPECT().Notify(gomock.Any(), cartUID, MessageAddFailed)

		// when
		sut.AddProduct(tc.c, 1)

		// then
		assert.Equal(t, Cart{}, sut.Cart())
		assert.Equal(t, "", tc.storedPayload(t))
	})

	t.Run("Catalog echoing another id keeps cart keyed on requested id", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		tc, sut := setup(t, ctrl, nil)
		tc.catalog.EXPECT().GetProduct(gomock.Any(), 1).Return(catalog.Product{Title: "Walking sneaker"}, nil)
		tc.catalog.EXPECT().GetStock(gomock.Any(), 1).Return(catalog.Stock{ID: 1, Amount: 3}, nil)
		tc.publisher.EXPECT().Publish(gomock.Any(), cartevents.TopicName, gomock.Any()).Return(nil)

		// when
		sut.AddProduct(tc.c, 1)

		// then
		assert.Equal(t, 1, sut.Cart()[0].ID)
	})

	t.Run("Concurrent adds do not lose updates", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		tc, sut := setup(t, ctrl, nil)
		tc.catalog.EXPECT().GetProduct(gomock.Any(), 1).Return(sneaker, nil).Times(5)
		tc.catalog.EXPECT().GetStock(gomock.Any(), 1).Return(catalog.Stock{ID: 1, Amount: 10}, nil).Times(5)
		tc.publisher.EXPECT().Publish(gomock.Any(), cartevents.TopicName, gomock.Any()).Return(nil).Times(5)

		// when
		wg := sync.WaitGroup{}
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				sut.AddProduct(tc.c, 1)
			}()
		}
		wg.Wait()

		// then
		assert.Equal(t, Cart{line(sneaker, 5)}, sut.Cart())
	})
}

func TestRemoveProduct(t *testing.T) {

	t.Run("Remove product in cart", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		tc, sut := setup(t, ctrl, Cart{line(sneaker, 2), line(runner, 1), line(trainer, 3)})
		tc.publisher.EXPECT().Publish(gomock.Any(), cartevents.TopicName, cartevents.ProductRemoved{CartUID: cartUID, ProductID: 2}).Return(nil)

		// when
		sut.RemoveProduct(tc.c, 2)

		// then
		assert.Equal(t, Cart{line(sneaker, 2), line(trainer, 3)}, sut.Cart())
		restored, _ := Snapshot{Payload: tc.storedPayload(t)}.cart()
		assert.Equal(t, Cart{line(sneaker, 2), line(trainer, 3)}, restored)
	})

	t.Run("Remove last product", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		tc, sut := setup(t, ctrl, Cart{line(sneaker, 2)})
		tc.publisher.EXPECT().Publish(gomock.Any(), cartevents.TopicName, cartevents.ProductRemoved{CartUID: cartUID, ProductID: 1}).Return(nil)

		// when
		sut.RemoveProduct(tc.c, 1)

		// then
		assert.Equal(t, Cart{}, sut.Cart())
		assert.Equal(t, "[]", tc.storedPayload(t))
	})

	t.Run("Remove product not in cart", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		tc, sut := setup(t, ctrl, Cart{line(sneaker, 2)})
		before := tc.storedPayload(t)
		tc.notifier.EXPECT().Notify(gomock.Any(), cartUID, MessageRemoveFailed)

		// when
		sut.RemoveProduct(tc.c, 2)

		// then
		assert.Equal(t, Cart{line(sneaker, 2)}, sut.Cart())
		assert.Equal(t, before, tc.storedPayload(t))
	})

	t.Run("Remove product when commit fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		tc, sut := setup(t, ctrl, Cart{line(sneaker, 2)})
		tc.publisher.EXPECT().Publish(gomock.Any(), cartevents.TopicName, gomock.Any()).Return(fmt.Errorf("outbox unavailable"))
		tc.notifier.EXPECT().Notify(gomock.Any(), cartUID, MessageRemoveFailed)

		// when
		sut.RemoveProduct(tc.c, 1)

		// then
		assert.Equal(t, Cart{line(sneaker, 2)}, sut.Cart())
	})
}

func TestUpdateProductAmount(t *testing.T) {

	t.Run("Update amount within stock", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		tc, sut := setup(t, ctrl, Cart{line(sneaker, 1), line(runner, 1)})
		tc.catalog.EXPECT().GetStock(gomock.Any(), 1).Return(catalog.Stock{ID: 1, Amount: 3}, nil)
		tc.publisher.EXPECT().Publish(gomock.Any(), cartevents.TopicName, cartevents.ProductAmountUpdated{CartUID: cartUID, ProductID: 1, Amount: 3}).Return(nil)

		// when
		sut.UpdateProductAmount(tc.c, UpdateProductAmount{ProductID: 1, Amount: 3})

		// then
		assert.Equal(t, Cart{line(sneaker, 3), line(runner, 1)}, sut.Cart())
	})

	t.Run("Update amount to one", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		tc, sut := setup(t, ctrl, Cart{line(sneaker, 3)})
		tc.catalog.EXPECT().GetStock(gomock.Any(), 1).Return(catalog.Stock{ID: 1, Amount: 3}, nil)
		tc.publisher.EXPECT().Publish(gomock.Any(), cartevents.TopicName, cartevents.ProductAmountUpdated{CartUID: cartUID, ProductID: 1, Amount: 1}).Return(nil)

		// when
		sut.UpdateProductAmount(tc.c, UpdateProductAmount{ProductID: 1, Amount: 1})

		// then
		assert.Equal(t, Cart{line(sneaker, 1)}, sut.Cart())
	})

	testCases := []struct {
		name   string
		amount int
	}{
		{name: "Update amount to zero", amount: 0},
		{name: "Update amount to negative", amount: -1},
		{name: "Update amount beyond stock", amount: 4},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			// given
			tc, sut := setup(t, ctrl, Cart{line(sneaker, 2)})
			before := tc.storedPayload(t)
			tc.catalog.EXPECT().GetStock(gomock.Any(), 1).Return(catalog.Stock{ID: 1, Amount: 3}, nil)
			tc.notifier.EXPECT().Notify(gomock.Any(), cartUID, MessageOutOfStock)

			// when
			sut.UpdateProductAmount(tc.c, UpdateProductAmount{ProductID: 1, Amount: testCase.amount})

			// then
			assert.Equal(t, Cart{line(sneaker, 2)}, sut.Cart())
			assert.Equal(t, before, tc.storedPayload(t))
		})
	}

	t.Run("Update amount when stock lookup fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		tc, sut := setup(t, ctrl, Cart{line(sneaker, 2)})
		tc.catalog.EXPECT().GetStock(gomock.Any(), 1).Return(catalog.Stock{}, myerrors.NewUnavailableError(fmt.Errorf("timeout")))
		tc.notifier.EXPECT().Notify(gomock.Any(), cartUID, MessageUpdateFailed)

		// when
		sut.UpdateProductAmount(tc.c, UpdateProductAmount{ProductID: 1, Amount: 1})

		// then
		assert.Equal(t, Cart{line(sneaker, 2)}, sut.Cart())
	})

	t.Run("Update amount of product not in cart", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		tc, sut := setup(t, ctrl, Cart{line(sneaker, 2)})
		before := tc.storedPayload(t)
		tc.catalog.EXPECT().GetStock(gomock.Any(), 2).Return(catalog.Stock{ID: 2, Amount: 5}, nil)

		// when
		sut.UpdateProductAmount(tc.c, UpdateProductAmount{ProductID: 2, Amount: 1})

		// then
		assert.Equal(t, Cart{line(sneaker, 2)}, sut.Cart())
		assert.Equal(t, before, tc.storedPayload(t))
	})

	t.Run("Update amount when commit fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		tc, sut := setup(t, ctrl, Cart{line(sneaker, 2)})
		tc.catalog.EXPECT().GetStock(gomock.Any(), 1).Return(catalog.Stock{ID: 1, Amount: 3}, nil)
		tc.publisher.EXPECT().Publish(gomock.Any(), cartevents.TopicName, gomock.Any()).Return(fmt.Errorf("outbox unavailable"))
		tc.notifier.EXPECT().Notify(gomock.Any(), cartUID, MessageUpdateFailed)

		// when
		sut.UpdateProductAmount(tc.c, UpdateProductAmount{ProductID: 1, Amount: 3})

		// then
		assert.Equal(t, Cart{line(sneaker, 2)}, sut.Cart())
	})
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// given
	tc, sut := setup(t, ctrl, nil)
	tc.catalog.EXPECT().GetProduct(gomock.Any(), 3).Return(trainer, nil)
	tc.catalog.EXPECT().GetStock(gomock.Any(), 3).Return(catalog.Stock{ID: 3, Amount: 2}, nil)
	tc.catalog.EXPECT().GetProduct(gomock.Any(), 1).Return(sneaker, nil)
	tc.catalog.EXPECT().GetStock(gomock.Any(), 1).Return(catalog.Stock{ID: 1, Amount: 3}, nil).Times(2)
	tc.publisher.EXPECT().Publish(gomock.Any(), cartevents.TopicName, gomock.Any()).Return(nil).Times(3)

	sut.AddProduct(tc.c, 3)
	sut.AddProduct(tc.c, 1)
	sut.UpdateProductAmount(tc.c, UpdateProductAmount{ProductID: 1, Amount: 3})

	// when
	reloaded := tc.newStore(t)

	// then
	assert.Equal(t, Cart{line(trainer, 1), line(sneaker, 3)}, sut.Cart())
	assert.Equal(t, sut.Cart(), reloaded.Cart())
}

func TestCartIsNeverModifiedInPlace(t *testing.T) {
	original := Cart{line(sneaker, 1), line(runner, 2)}

	updated := original.withAmount(0, 5)
	appended := original.withProduct(line(trainer, 1))
	removed := original.without(0)

	assert.Equal(t, Cart{line(sneaker, 1), line(runner, 2)}, original)
	assert.Equal(t, Cart{line(sneaker, 5), line(runner, 2)}, updated)
	assert.Equal(t, Cart{line(sneaker, 1), line(runner, 2), line(trainer, 1)}, appended)
	assert.Equal(t, Cart{line(runner, 2)}, removed)
}

type brokenStore struct {
	mystore.Store[Snapshot]
}

func (s brokenStore) Get(c context.Context, uid string) (Snapshot, bool, error) {
	return Snapshot{}, false, fmt.Errorf("store unavailable")
}
