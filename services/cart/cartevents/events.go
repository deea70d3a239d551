package cartevents

const (
	TopicName                = "cart"
	productAddedName         = TopicName + ".product.added"
	productRemovedName       = TopicName + ".product.removed"
	productAmountUpdatedName = TopicName + ".product.amountUpdated"
)

// ProductAdded carries the amount of the line item after the add, 1 for a new line.
type ProductAdded struct {
	CartUID   string
	ProductID int
	Amount    int
}

func (e ProductAdded) GetEventTypeName() string {
	return productAddedName
}

func (e ProductAdded) GetAggregateName() string {
	return e.CartUID
}

type ProductRemoved struct {
	CartUID   string
	ProductID int
}

func (e ProductRemoved) GetEventTypeName() string {
	return productRemovedName
}

func (e ProductRemoved) GetAggregateName() string {
	return e.CartUID
}

type ProductAmountUpdated struct {
	CartUID   string
	ProductID int
	Amount    int
}

func (e ProductAmountUpdated) GetEventTypeName() string {
	return productAmountUpdatedName
}

func (e ProductAmountUpdated) GetAggregateName() string {
	return e.CartUID
}
