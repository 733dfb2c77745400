package models

const (
	FreeShippingThreshold = 150.0
	FlatShipping          = 15.0
)

// CloneItems returns an independent copy of items.
func CloneItems(items []CartItem) []CartItem {
	if items == nil {
		return []CartItem{}
	}
	out := make([]CartItem, len(items))
	copy(out, items)
	return out
}

func CloneOrder(o Order) Order {
	o.Items = CloneItems(o.Items)
	return o
}

func ItemsTotal(items []CartItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}

func ShippingFor(itemsTotal float64) float64 {
	if itemsTotal > FreeShippingThreshold {
		return 0
	}
	return FlatShipping
}
