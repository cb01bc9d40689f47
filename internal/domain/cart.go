package domain

import "github.com/shopspring/decimal"

// CartItem is one line of the authenticated user's server-side cart.
// Price is the snapshot captured when the line was created.
type CartItem struct {
	ID       string  `json:"id"`
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Subtotal is the snapshot price times quantity.
func (i CartItem) Subtotal() decimal.Decimal {
	return decimal.NewFromFloat(i.Price).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is the client's transient copy of the server cart.
type Cart struct {
	Items []CartItem `json:"items"`
}

// Total sums every line subtotal.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Count returns the number of units across all lines.
func (c Cart) Count() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// ItemByID looks a line up by its cart item id.
func (c Cart) ItemByID(id string) (CartItem, bool) {
	for _, it := range c.Items {
		if it.ID == id {
			return it, true
		}
	}
	return CartItem{}, false
}

// QuantityOf returns the units of a product held across cart lines.
func (c Cart) QuantityOf(productID string) int {
	n := 0
	for _, it := range c.Items {
		if it.Product.ID == productID {
			n += it.Quantity
		}
	}
	return n
}

// Clone returns a deep copy safe to hand to observers.
func (c Cart) Clone() Cart {
	items := make([]CartItem, len(c.Items))
	copy(items, c.Items)
	return Cart{Items: items}
}

// Wishlist is the set of product ids the user has hearted.
type Wishlist struct {
	ProductIDs []string `json:"productIds"`
}

// Contains reports wishlist membership.
func (w Wishlist) Contains(productID string) bool {
	for _, id := range w.ProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}
