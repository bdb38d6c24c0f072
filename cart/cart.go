// Package cart holds the per-session shopping cart and the session state
// that travels with it.
package cart

import (
	"errors"
	"fmt"
	"math"

	"github.com/Kariqs/goutam-store/models"
	"github.com/shopspring/decimal"
)

var ErrNotInCart = errors.New("product is not in the cart")

// Cart keeps lines in the order they were first added.
type Cart struct {
	Items []models.CartItem `json:"items"`
}

func (c *Cart) find(productID string) int {
	for i, it := range c.Items {
		if it.Product.ID == productID {
			return i
		}
	}
	return -1
}

// Get returns the line for productID.
func (c *Cart) Get(productID string) (models.CartItem, bool) {
	if i := c.find(productID); i >= 0 {
		return c.Items[i], true
	}
	return models.CartItem{}, false
}

// Add puts quantity of p into the cart. An existing line is increased via
// UpdateQuantity; a new line keeps its own copy of p.
func (c *Cart) Add(p models.Product, quantity float64) error {
	if i := c.find(p.ID); i >= 0 {
		return c.UpdateQuantity(p.ID, c.Items[i].Quantity+quantity)
	}
	if quantity < 0 {
		return nil
	}
	q, err := p.Unit.NormalizeQuantity(quantity)
	if err != nil {
		return err
	}
	c.Items = append(c.Items, models.CartItem{Product: p, Quantity: q})
	return nil
}

// UpdateQuantity sets the quantity for productID. Lines that end up negative
// are dropped; a zero quantity is kept until the line is removed.
func (c *Cart) UpdateQuantity(productID string, quantity float64) error {
	i := c.find(productID)
	if i < 0 {
		return ErrNotInCart
	}
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) {
		return fmt.Errorf("%w: %v", models.ErrInvalidQuantity, quantity)
	}
	if quantity >= 0 {
		q, err := c.Items[i].Product.Unit.NormalizeQuantity(quantity)
		if err != nil {
			return err
		}
		c.Items[i].Quantity = q
	} else {
		c.Items[i].Quantity = quantity
	}

	kept := c.Items[:0]
	for _, it := range c.Items {
		if it.Quantity >= 0 {
			kept = append(kept, it)
		}
	}
	c.Items = kept
	return nil
}

// Step moves the quantity one stepper increment up (direction > 0) or down,
// never below zero.
func (c *Cart) Step(productID string, direction int) (float64, error) {
	i := c.find(productID)
	if i < 0 {
		return 0, ErrNotInCart
	}
	it := c.Items[i]
	step := decimal.NewFromFloat(it.Product.Unit.Step())
	if direction < 0 {
		step = step.Neg()
	}
	next := decimal.NewFromFloat(it.Quantity).Add(step).Round(2)
	if next.IsNegative() {
		next = decimal.Zero
	}
	q, _ := next.Float64()
	c.Items[i].Quantity = q
	return q, nil
}

func (c *Cart) Remove(productID string) {
	if i := c.find(productID); i >= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	}
}

func (c *Cart) Clear() { c.Items = nil }

// Count is the number of distinct lines, not the sum of quantities.
func (c *Cart) Count() int { return len(c.Items) }

func (c *Cart) IsEmpty() bool { return len(c.Items) == 0 }

// Total is the sum of price times quantity, rounded to two decimals.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		line := decimal.NewFromFloat(it.Product.Price).Mul(decimal.NewFromFloat(it.Quantity))
		total = total.Add(line)
	}
	return total.Round(2)
}

// HasZeroQuantity reports whether any line is sitting at zero, which the
// storefront flags with a notice.
func (c *Cart) HasZeroQuantity() bool {
	for _, it := range c.Items {
		if it.Quantity == 0 {
			return true
		}
	}
	return false
}

// OrderItems snapshots the cart lines for an order.
func (c *Cart) OrderItems() []models.OrderItem {
	items := make([]models.OrderItem, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, it.OrderItem())
	}
	return items
}
