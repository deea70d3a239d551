package cart

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/MarcGrol/cartbackend/services/catalog"
)

// DefaultCartUID is the key used when a single storefront keeps exactly one cart.
const DefaultCartUID = "@RocketShoes:cart"

// Product is a catalog product that has been put in the cart.
type Product struct {
	catalog.Product
	Amount int `json:"amount"`
}

// Cart is ordered and holds at most one line per product id.
// Every method returns a new Cart; the receiver is never modified.
type Cart []Product

func (c Cart) indexOf(productID int) int {
	for idx, p := range c {
		if p.ID == productID {
			return idx
		}
	}
	return -1
}

func (c Cart) withProduct(p Product) Cart {
	result := make(Cart, 0, len(c)+1)
	result = append(result, c...)
	return append(result, p)
}

func (c Cart) withAmount(idx int, amount int) Cart {
	result := append(Cart{}, c...)
	result[idx].Amount = amount
	return result
}

func (c Cart) without(idx int) Cart {
	result := make(Cart, 0, len(c))
	result = append(result, c[:idx]...)
	return append(result, c[idx+1:]...)
}

type UpdateProductAmount struct {
	ProductID int `json:"productId" form:"productId"`
	Amount    int `json:"amount" form:"amount"`
}

// Snapshot is the persisted form of a cart.
type Snapshot struct {
	UID          string
	Payload      string `datastore:",noindex"`
	LastModified time.Time
}

func newSnapshot(cartUID string, cart Cart, lastModified time.Time) (Snapshot, error) {
	payload, err := json.Marshal(cart)
	if err != nil {
		return Snapshot{}, fmt.Errorf("error serializing cart %s: %s", cartUID, err)
	}
	return Snapshot{
		UID:          cartUID,
		Payload:      string(payload),
		LastModified: lastModified,
	}, nil
}

func (s Snapshot) cart() (Cart, error) {
	cart := Cart{}
	err := json.Unmarshal([]byte(s.Payload), &cart)
	if err != nil {
		return Cart{}, fmt.Errorf("error parsing snapshot of cart %s: %s", s.UID, err)
	}
	if cart == nil {
		cart = Cart{}
	}
	return cart, nil
}

// Toasts are the notifications of a cart that have not been shown yet.
type Toasts struct {
	CartUID  string
	Messages []string `datastore:",noindex"`
}

type CartView struct {
	CartUID       string   `json:"cartUID"`
	Products      Cart     `json:"products"`
	Notifications []string `json:"notifications"`
}
