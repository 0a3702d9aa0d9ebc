package domain

import "github.com/shopspring/decimal"

// Product is a catalog entry as served by the backend. The client only
// reads products; producers manage them through their own screens.
type Product struct {
	ID             int64           `json:"id"`
	Name           string          `json:"nombre"`
	Description    string          `json:"descripcion"`
	UnitPrice      decimal.Decimal `json:"precio"`
	ImageRef       string          `json:"imagen"`
	SellerName     string          `json:"vendedor"`
	AvailableStock int             `json:"disponibles"`
	Category       string          `json:"categoria"`
}
