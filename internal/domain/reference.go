package domain

// Inert reference data: consumed by products and the UI, never mutated by
// the checkout core.

type Brand struct {
	ID          int
	Description string
}

type Category struct {
	ID          int
	Description string
}

type Unit struct {
	ID          int
	Description string
}

type Supplier struct {
	ID      int
	Name    string
	Phone   string
	Address string
}
