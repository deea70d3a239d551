package catalog

import "context"

//go:generate mockgen -source=api.go -package catalog -destination client_mock.go Client
type Client interface {
	GetProduct(c context.Context, productID int) (Product, error)
	GetStock(c context.Context, productID int) (Stock, error)
}
