package contracttests

import (
	"context"
	"fmt"
	"strconv"

	"github.com/MarcGrol/cartbackend/lib/myerrors"
	"github.com/MarcGrol/cartbackend/lib/mystore"
	"github.com/MarcGrol/cartbackend/services/catalog"
)

// FakeCatalog is an in-memory catalog.Client that must behave like the remote catalog.
type FakeCatalog struct {
	Products *mystore.InMemoryStore[catalog.Product]
	Stock    *mystore.InMemoryStore[catalog.Stock]
}

func NewFakeCatalog(products []catalog.Product, stock []catalog.Stock) *FakeCatalog {
	c := context.Background()
	productStore, _, _ := mystore.NewInMemoryStore[catalog.Product](c)
	stockStore, _, _ := mystore.NewInMemoryStore[catalog.Stock](c)

	for _, p := range products {
		productStore.Put(c, strconv.Itoa(p.ID), p)
	}
	for _, s := range stock {
		stockStore.Put(c, strconv.Itoa(s.ID), s)
	}

	return &FakeCatalog{
		Products: productStore,
		Stock:    stockStore,
	}
}

func (f *FakeCatalog) GetProduct(c context.Context, productID int) (catalog.Product, error) {
	product, exists, err := f.Products.Get(c, strconv.Itoa(productID))
	if err != nil {
		return catalog.Product{}, myerrors.NewInternalError(err)
	}
	if !exists {
		return catalog.Product{}, myerrors.NewNotFoundError(fmt.Errorf("product %d not found", productID))
	}
	return product, nil
}

func (f *FakeCatalog) GetStock(c context.Context, productID int) (catalog.Stock, error) {
	stock, exists, err := f.Stock.Get(c, strconv.Itoa(productID))
	if err != nil {
		return catalog.Stock{}, myerrors.NewInternalError(err)
	}
	if !exists {
		return catalog.Stock{}, myerrors.NewNotFoundError(fmt.Errorf("stock of product %d not found", productID))
	}
	return stock, nil
}
