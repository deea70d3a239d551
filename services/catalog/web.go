package catalog

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/cartbackend/lib/mycontext"
	"github.com/MarcGrol/cartbackend/lib/myerrors"
	"github.com/MarcGrol/cartbackend/lib/myhttp"
	"github.com/MarcGrol/cartbackend/lib/mylog"
	"github.com/MarcGrol/cartbackend/lib/mystore"
)

type webService struct {
	service *service
	logger  mylog.Logger
}

// NewService exposes the read-only catalog. Use dependency injection to isolate the infrastructure and easy testing
func NewService(productStore mystore.Store[Product], stockStore mystore.Store[Stock]) *webService {
	logger := mylog.New("catalog")
	return &webService{
		service: newService(productStore, stockStore, logger),
		logger:  logger,
	}
}

// Seed fills an empty catalog with the storefront's sneakers.
func (s *webService) Seed(c context.Context) error {
	return s.service.seed(c, initialProducts, initialStock)
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/products", s.listProducts()).Methods("GET")
	router.HandleFunc("/products/{productID}", s.getProduct()).Methods("GET")
	router.HandleFunc("/stock/{productID}", s.getStock()).Methods("GET")
}

func (s *webService) listProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		products, err := s.service.listProducts(c)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, products)
	}
}

func (s *webService) getProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		productID, err := productIDFromRequest(r)
		if err != nil {
			responseWriter.WriteError(c, w, 2, err)
			return
		}

		product, err := s.service.getProduct(c, productID)
		if err != nil {
			responseWriter.WriteError(c, w, 3, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, product)
	}
}

func (s *webService) getStock() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		productID, err := productIDFromRequest(r)
		if err != nil {
			responseWriter.WriteError(c, w, 4, err)
			return
		}

		stock, err := s.service.getStock(c, productID)
		if err != nil {
			responseWriter.WriteError(c, w, 5, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, stock)
	}
}

func productIDFromRequest(r *http.Request) (int, error) {
	raw := mux.Vars(r)["productID"]
	productID, err := strconv.Atoi(raw)
	if err != nil {
		return 0, myerrors.NewInvalidInputError(fmt.Errorf("invalid product id '%s'", raw))
	}
	return productID, nil
}
