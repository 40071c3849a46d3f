// Package contoso provides the simulated Contoso Electronics customer
// service tools: order tracking, refunds, CRM updates, email, inventory,
// installation scheduling and warranty claims.
package contoso

// OrderItem is one line of a simulated order.
type OrderItem struct {
	Name     string
	Quantity int
}

// Order is a simulated order-management record.
type Order struct {
	Status            string
	Items             []OrderItem
	Tracking          string
	EstimatedDelivery string
	Location          string
	OrderDate         string
	Total             string
}

// Stock holds per-location inventory counts for a product.
type Stock struct {
	Online  int
	Seattle int
	NewYork int
}

// Data is the read-only reference data backing the simulated tools. It is
// injected at registry construction and never mutated.
type Data struct {
	Orders    map[string]Order
	Inventory map[string]Stock
}

// DefaultData returns the canned order and inventory tables.
func DefaultData() Data {
	return Data{
		Orders: map[string]Order{
			"ORD-2024-5678": {
				Status:            "In Transit",
				Items:             []OrderItem{{Name: "Samsung 55-inch 4K Smart TV", Quantity: 1}},
				Tracking:          "TRK-987654321",
				EstimatedDelivery: "February 5, 2026",
				Location:          "Distribution center, Seattle, WA",
				OrderDate:         "January 28, 2026",
				Total:             "$708.48",
			},
			"ORD-2024-1234": {
				Status:            "Delivered",
				Items:             []OrderItem{{Name: "Sony WH-1000XM5 Headphones", Quantity: 1}},
				Tracking:          "TRK-123456789",
				EstimatedDelivery: "January 30, 2026",
				Location:          "Delivered",
				OrderDate:         "January 25, 2026",
				Total:             "$399.99",
			},
		},
		Inventory: map[string]Stock{
			"Samsung 55-inch 4K Smart TV": {Online: 45, Seattle: 12, NewYork: 8},
			"Sony WH-1000XM5 Headphones":  {Online: 120, Seattle: 25, NewYork: 30},
			"Dell XPS 15 Laptop":          {Online: 35, Seattle: 8, NewYork: 15},
		},
	}
}
