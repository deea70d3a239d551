package cart

import (
	"context"

	"github.com/MarcGrol/cartbackend/lib/myerrors"
	"github.com/MarcGrol/cartbackend/lib/mylog"
	"github.com/MarcGrol/cartbackend/lib/mystore"
)

const (
	MessageOutOfStock   = "Requested quantity is out of stock"
	MessageAddFailed    = "Error adding product"
	MessageRemoveFailed = "Error removing product"
	MessageUpdateFailed = "Error changing product quantity"
)

//go:generate mockgen -source=notifier.go -package cart -destination notifier_mock.go Notifier
type Notifier interface {
	Notify(c context.Context, cartUID string, message string)
}

// toaster keeps notifications per cart until the user interface picks them up, then forgets them.
type toaster struct {
	store  mystore.Store[Toasts]
	logger mylog.Logger
}

func newToaster(store mystore.Store[Toasts], logger mylog.Logger) *toaster {
	return &toaster{
		store:  store,
		logger: logger,
	}
}

func (t *toaster) Notify(c context.Context, cartUID string, message string) {
	err := t.store.RunInTransaction(c, func(c context.Context) error {
		toasts, _, err := t.store.Get(c, cartUID)
		if err != nil {
			return err
		}

		toasts.CartUID = cartUID
		toasts.Messages = append(toasts.Messages, message)

		return t.store.Put(c, cartUID, toasts)
	})
	if err != nil {
		t.logger.Log(c, cartUID, mylog.SeverityError, "Error storing notification '%s' for cart %s: %s", message, cartUID, err)
	}
}

func (t *toaster) Pop(c context.Context, cartUID string) ([]string, error) {
	messages := []string{}

	err := t.store.RunInTransaction(c, func(c context.Context) error {
		toasts, found, err := t.store.Get(c, cartUID)
		if err != nil {
			return err
		}
		if !found || len(toasts.Messages) == 0 {
			return nil
		}

		messages = append(messages, toasts.Messages...)

		return t.store.Put(c, cartUID, Toasts{CartUID: cartUID, Messages: []string{}})
	})
	if err != nil {
		return nil, myerrors.NewInternalError(err)
	}

	return messages, nil
}
