package models

// CartItem is a value copy of a product taken when it was added, with the
// quantity the customer wants.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity float64 `json:"quantity"`
}

func (i CartItem) OrderItem() OrderItem {
	return OrderItem{
		Product: OrderProduct{
			ID:    i.Product.ID,
			Name:  i.Product.Name,
			Price: i.Product.Price,
			Image: i.Product.Image,
			Unit:  i.Product.Unit,
		},
		Quantity: i.Quantity,
	}
}
