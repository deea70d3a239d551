package catalog

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/MarcGrol/cartbackend/lib/myerrors"
	"github.com/MarcGrol/cartbackend/lib/mylog"
	"github.com/MarcGrol/cartbackend/lib/mystore"
)

type service struct {
	productStore mystore.Store[Product]
	stockStore   mystore.Store[Stock]
	logger       mylog.Logger
}

func newService(productStore mystore.Store[Product], stockStore mystore.Store[Stock], logger mylog.Logger) *service {
	return &service{
		productStore: productStore,
		stockStore:   stockStore,
		logger:       logger,
	}
}

func (s *service) listProducts(c context.Context) ([]Product, error) {
	products, err := s.productStore.List(c)
	if err != nil {
		return nil, myerrors.NewInternalError(err)
	}

	sort.Slice(products, func(i, j int) bool {
		return products[i].ID < products[j].ID
	})
	return products, nil
}

func (s *service) getProduct(c context.Context, productID int) (Product, error) {
	product, found, err := s.productStore.Get(c, strconv.Itoa(productID))
	if err != nil {
		return Product{}, myerrors.NewInternalError(err)
	}
	if !found {
		return Product{}, myerrors.NewNotFoundError(fmt.Errorf("product with id %d not found", productID))
	}
	return product, nil
}

func (s *service) getStock(c context.Context, productID int) (Stock, error) {
	stock, found, err := s.stockStore.Get(c, strconv.Itoa(productID))
	if err != nil {
		return Stock{}, myerrors.NewInternalError(err)
	}
	if !found {
		return Stock{}, myerrors.NewNotFoundError(fmt.Errorf("stock of product %d not found", productID))
	}
	return stock, nil
}

// seed stores the given products and their stock, leaving entries that already exist untouched.
func (s *service) seed(c context.Context, products []Product, stock []Stock) error {
	for _, p := range products {
		_, found, err := s.productStore.Get(c, strconv.Itoa(p.ID))
		if err != nil {
			return myerrors.NewInternalError(err)
		}
		if found {
			continue
		}
		err = s.productStore.Put(c, strconv.Itoa(p.ID), p)
		if err != nil {
			return myerrors.NewInternalError(err)
		}
	}

	for _, st := range stock {
		_, found, err := s.stockStore.Get(c, strconv.Itoa(st.ID))
		if err != nil {
			return myerrors.NewInternalError(err)
		}
		if found {
			continue
		}
		err = s.stockStore.Put(c, strconv.Itoa(st.ID), st)
		if err != nil {
			return myerrors.NewInternalError(err)
		}
	}

	s.logger.Log(c, "", mylog.SeverityInfo, "Seeded catalog with %d products", len(products))

	return nil
}

var (
	initialProducts = []Product{
		{ID: 1, Title: "Lightweight comfortable walking sneaker", Price: 179.9, Image: "https://rocketseat-cdn.s3-sa-east-1.amazonaws.com/modulo-redux/tenis1.jpg"},
		{ID: 2, Title: "VR walking sneaker with leather details", Price: 139.9, Image: "https://rocketseat-cdn.s3-sa-east-1.amazonaws.com/modulo-redux/tenis2.jpg"},
		{ID: 3, Title: "Adidas Duramo Lite 2.0", Price: 219.9, Image: "https://rocketseat-cdn.s3-sa-east-1.amazonaws.com/modulo-redux/tenis3.jpg"},
		{ID: 4, Title: "VR walking sneaker with leather details", Price: 139.9, Image: "https://rocketseat-cdn.s3-sa-east-1.amazonaws.com/modulo-redux/tenis2.jpg"},
		{ID: 5, Title: "VR walking sneaker with leather details", Price: 139.9, Image: "https://rocketseat-cdn.s3-sa-east-1.amazonaws.com/modulo-redux/tenis2.jpg"},
		{ID: 6, Title: "Adidas Duramo Lite 2.0", Price: 219.9, Image: "https://rocketseat-cdn.s3-sa-east-1.amazonaws.com/modulo-redux/tenis3.jpg"},
	}
	initialStock = []Stock{
		{ID: 1, Amount: 3},
		{ID: 2, Amount: 5},
		{ID: 3, Amount: 2},
		{ID: 4, Amount: 1},
		{ID: 5, Amount: 5},
		{ID: 6, Amount: 10},
	}
)
