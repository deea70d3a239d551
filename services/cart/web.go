package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	formcodec "github.com/go-playground/form/v4"
	"github.com/gorilla/mux"

	"github.com/MarcGrol/cartbackend/lib/mycontext"
	"github.com/MarcGrol/cartbackend/lib/myerrors"
	"github.com/MarcGrol/cartbackend/lib/myhttp"
	"github.com/MarcGrol/cartbackend/lib/mylog"
	"github.com/MarcGrol/cartbackend/lib/mypublisher"
	"github.com/MarcGrol/cartbackend/lib/mystore"
	"github.com/MarcGrol/cartbackend/lib/mytime"
	"github.com/MarcGrol/cartbackend/lib/myuuid"
	"github.com/MarcGrol/cartbackend/services/cart/cartevents"
	"github.com/MarcGrol/cartbackend/services/catalog"
)

type webService struct {
	service *service
	logger  mylog.Logger
}

func NewService(snapshots mystore.Store[Snapshot], toasts mystore.Store[Toasts], catalogClient catalog.Client,
	pub mypublisher.Publisher, nower mytime.Nower, uuider myuuid.UUIDer) *webService {

	logger := mylog.New("cart")
	return &webService{
		service: newService(snapshots, toasts, catalogClient, pub, nower, uuider, logger),
		logger:  logger,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	err := s.service.publisher.CreateTopic(c, cartevents.TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %s", cartevents.TopicName, err)
	}

	router.HandleFunc("/api/cart", s.createCart()).Methods("POST")
	router.HandleFunc("/api/cart/{cartUID}", s.getCart()).Methods("GET")
	router.HandleFunc("/api/cart/{cartUID}/product", s.addProduct()).Methods("POST")
	router.HandleFunc("/api/cart/{cartUID}/product/{productID}", s.removeProduct()).Methods("DELETE")
	router.HandleFunc("/api/cart/{cartUID}/product/{productID}", s.updateProductAmount()).Methods("PUT")

	return nil
}

// Warmup restores the storefront's default cart before the first request needs it.
func (s *webService) Warmup(c context.Context) error {
	_, err := s.service.carts.get(c, DefaultCartUID)
	return err
}

type createCartResponse struct {
	CartUID string `json:"cartUID"`
}

func (s *webService) createCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		cartUID := s.service.createCart(c)

		w.Header().Set("Location", fmt.Sprintf("%s/api/cart/%s", myhttp.HostnameWithScheme(r), cartUID))
		responseWriter.Write(c, w, http.StatusCreated, createCartResponse{
			CartUID: cartUID,
		})
	}
}

func (s *webService) getCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		view, err := s.service.getCart(c, mux.Vars(r)["cartUID"])
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, view)
	}
}

type addProductRequest struct {
	ProductID int `json:"productId" form:"productId"`
}

func (s *webService) addProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		req := addProductRequest{}
		err := decodeRequest(r, &req)
		if err != nil {
			responseWriter.WriteError(c, w, 2, err)
			return
		}

		view, err := s.service.addProduct(c, mux.Vars(r)["cartUID"], req.ProductID)
		if err != nil {
			responseWriter.WriteError(c, w, 3, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, view)
	}
}

func (s *webService) removeProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		productID, err := productIDFromRequest(r)
		if err != nil {
			responseWriter.WriteError(c, w, 4, err)
			return
		}

		view, err := s.service.removeProduct(c, mux.Vars(r)["cartUID"], productID)
		if err != nil {
			responseWriter.WriteError(c, w, 5, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, view)
	}
}

type updateProductAmountRequest struct {
	Amount int `json:"amount" form:"amount"`
}

func (s *webService) updateProductAmount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		productID, err := productIDFromRequest(r)
		if err != nil {
			responseWriter.WriteError(c, w, 6, err)
			return
		}

		req := updateProductAmountRequest{}
		err = decodeRequest(r, &req)
		if err != nil {
			responseWriter.WriteError(c, w, 7, err)
			return
		}

		view, err := s.service.updateProductAmount(c, mux.Vars(r)["cartUID"], UpdateProductAmount{
			ProductID: productID,
			Amount:    req.Amount,
		})
		if err != nil {
			responseWriter.WriteError(c, w, 8, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, view)
	}
}

// decodeRequest accepts json bodies as well as plain html form posts.
func decodeRequest(r *http.Request, dest any) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		err := json.NewDecoder(r.Body).Decode(dest)
		if err != nil {
			return myerrors.NewInvalidInputErrorf("error decoding json request: %s", err)
		}
		return nil
	}

	err := r.ParseForm()
	if err != nil {
		return myerrors.NewInvalidInputError(err)
	}

	err = formcodec.NewDecoder().Decode(dest, r.Form)
	if err != nil {
		return myerrors.NewInvalidInputErrorf("error decoding form request: %s", err)
	}
	return nil
}

func productIDFromRequest(r *http.Request) (int, error) {
	raw := mux.Vars(r)["productID"]
	productID, err := strconv.Atoi(raw)
	if err != nil {
		return 0, myerrors.NewInvalidInputError(fmt.Errorf("invalid product id '%s'", raw))
	}
	return productID, nil
}
