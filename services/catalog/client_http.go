package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/MarcGrol/cartbackend/lib/myerrors"
	"github.com/MarcGrol/cartbackend/lib/myhttpclient"
)

type httpClient struct {
	baseURL string
	sender  myhttpclient.HTTPSender
}

// NewHTTPClient talks to the remote catalog. It only reads; stock is never decremented from here.
func NewHTTPClient(baseURL string, sender myhttpclient.HTTPSender) Client {
	return &httpClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		sender:  sender,
	}
}

func (cl *httpClient) GetProduct(c context.Context, productID int) (Product, error) {
	product := Product{}
	err := cl.get(c, fmt.Sprintf("%s/products/%d", cl.baseURL, productID), &product)
	if err != nil {
		return Product{}, errors.Wrapf(err, "error fetching product %d", productID)
	}
	return product, nil
}

func (cl *httpClient) GetStock(c context.Context, productID int) (Stock, error) {
	stock := Stock{}
	err := cl.get(c, fmt.Sprintf("%s/stock/%d", cl.baseURL, productID), &stock)
	if err != nil {
		return Stock{}, errors.Wrapf(err, "error fetching stock of product %d", productID)
	}
	return stock, nil
}

func (cl *httpClient) get(c context.Context, url string, result any) error {
	httpStatus, respBody, err := cl.sender.Send(c, http.MethodGet, url, nil)
	if err != nil {
		return myerrors.NewUnavailableError(err)
	}

	switch {
	case httpStatus == http.StatusNotFound:
		return myerrors.NewNotFoundError(fmt.Errorf("%s not found", url))
	case httpStatus < 200 || httpStatus >= 300:
		return myerrors.NewUnavailableError(fmt.Errorf("unexpected http-status %d for %s", httpStatus, url))
	}

	err = json.Unmarshal(respBody, result)
	if err != nil {
		return myerrors.NewInternalError(errors.Wrapf(err, "malformed response for %s", url))
	}

	return nil
}
