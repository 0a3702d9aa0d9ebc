package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethodTest is the only accepted payment method. Real payment
// capture is delegated to the backend, which treats it as a no-charge
// stub.
const PaymentMethodTest = "test"

// DeliveryForm is the checkout form filled by the consumer. Validation
// runs locally before any network attempt.
type DeliveryForm struct {
	FullName      string `json:"nombre_completo" validate:"required"`
	Address       string `json:"direccion" validate:"required"`
	City          string `json:"ciudad" validate:"required"`
	PostalCode    string `json:"codigo_postal" validate:"required,numeric,len=5"`
	Phone         string `json:"telefono" validate:"required,min=6"`
	PaymentMethod string `json:"metodo_pago" validate:"required,oneof=test"`
}

// OrderItem is the cart line snapshot sent with an order.
type OrderItem struct {
	ProductID int64           `json:"producto_id"`
	Name      string          `json:"nombre"`
	UnitPrice decimal.Decimal `json:"precio"`
	Quantity  int             `json:"cantidad"`
}

// OrderDraft is the full order submission: the cart snapshot captured
// at checkout time plus the delivery form.
type OrderDraft struct {
	Items       []OrderItem     `json:"items"`
	Delivery    DeliveryForm    `json:"entrega"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	ShippingFee decimal.Decimal `json:"envio"`
	Total       decimal.Decimal `json:"total"`
}

// Order is the backend's confirmation of a created order.
type Order struct {
	ID        string          `json:"id"`
	Status    string          `json:"estado"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"creado_en"`
}
