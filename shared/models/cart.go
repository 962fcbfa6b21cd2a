package models

import "github.com/google/uuid"

// CartItem is one staged line in a visitor's cart: a snapshot of the
// catalog item at the moment it was added, plus a quantity.
type CartItem struct {
	ItemID    uuid.UUID `json:"item_id"`
	Title     string    `json:"title"`
	UnitPrice float64   `json:"unit_price"`
	Quantity  int       `json:"quantity"`
}

// Cart is a visitor's staged order for one storefront. Carts live only in
// Redis, keyed by store id plus session id; they are not records of the
// backing store and exist purely as staging before checkout.
type Cart struct {
	StoreID string     `json:"store_id"`
	Items   []CartItem `json:"items"`
}

// Add puts an item into the cart, bumping the quantity when the item is
// already staged. One cart line per item id.
func (c *Cart) Add(item CartItem) {
	for i := range c.Items {
		if c.Items[i].ItemID == item.ItemID {
			c.Items[i].Quantity += item.Quantity
			return
		}
	}
	c.Items = append(c.Items, item)
}

// Remove drops the line for the given item id, if present.
func (c *Cart) Remove(itemID uuid.UUID) {
	kept := c.Items[:0]
	for _, it := range c.Items {
		if it.ItemID != itemID {
			kept = append(kept, it)
		}
	}
	c.Items = kept
}

// TotalAmount sums unit price times quantity over all lines.
func (c *Cart) TotalAmount() float64 {
	var total float64
	for _, it := range c.Items {
		total += it.UnitPrice * float64(it.Quantity)
	}
	return total
}

// TotalQuantity counts staged units across all lines.
func (c *Cart) TotalQuantity() int {
	var n int
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// LineItems converts the staged cart into order line-item snapshots.
func (c *Cart) LineItems() []OrderLineItem {
	items := make([]OrderLineItem, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, OrderLineItem{
			ItemID:    it.ItemID,
			Title:     it.Title,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
		})
	}
	return items
}
