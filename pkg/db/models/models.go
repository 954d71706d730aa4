package models

// All returns every model for auto-migration, ordered so parents come before
// their children.
func All() []any {
	return []any{
		&User{},
		&Product{},
		&ProductVariant{},
		&Cart{},
		&CartItem{},
		&CheckoutSession{},
		&CheckoutItem{},
		&Order{},
		&OrderItem{},
		&Review{},
		&Settings{},
	}
}
