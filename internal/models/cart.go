package models

// Cart est le panier d'un utilisateur (namespace "orders").
type Cart struct {
	Items      map[string]int `json:"orderedItems"`
	TotalPrice float64        `json:"totalPrice"`
}

func NewCart() *Cart {
	return &Cart{Items: map[string]int{}}
}

// Recalculate remet TotalPrice en cohérence avec les quantités et les prix du menu.
func (c *Cart) Recalculate(menu *Menu) {
	var total float64
	for name, qty := range c.Items {
		if item, ok := menu.Lookup(name); ok {
			total += float64(qty) * item.Price
		}
	}
	c.TotalPrice = total
}

func (c *Cart) Empty() bool {
	return len(c.Items) == 0
}
