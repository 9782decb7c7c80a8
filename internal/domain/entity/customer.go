package entity

import "time"

// Customer cliente de estibas y de FuegoYa.
type Customer struct {
	ID        int64
	Name      string
	TaxID     string // NIT o cédula
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time
}

// Supplier proveedor de materia prima.
type Supplier struct {
	ID        int64
	Name      string
	TaxID     string
	Email     string
	Phone     string
	CreatedAt time.Time
}
