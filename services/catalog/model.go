package catalog

type Product struct {
	ID    int     `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
	Image string  `json:"image"`
}

// Stock is the maximum quantity of a product that can be bought right now.
type Stock struct {
	ID     int `json:"id"`
	Amount int `json:"amount"`
}
