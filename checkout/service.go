package checkout

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"agroconnect/cart"
	"agroconnect/client"
	"agroconnect/contract"
	"agroconnect/domain"
	"agroconnect/errors"
)

var validate = validator.New()

// Service turns the current cart into an order. The delivery form is
// validated locally and rejected before any network attempt; a remote
// failure is alerted with the server's message when available. A
// successful order clears the cart.
//
// Stock is NOT re-validated here: the server stays authoritative and
// the payment method is a test-mode stub.
type Service struct {
	log     *slog.Logger
	backend contract.IBackend
	engine  *cart.Engine
	alerter contract.Alerter
}

func NewService(backend contract.IBackend, engine *cart.Engine,
	alerter contract.Alerter, log *slog.Logger) *Service {
	return &Service{
		log:     log,
		backend: backend,
		engine:  engine,
		alerter: alerter,
	}
}

// Submit validates the form, posts the order and clears the cart on
// success.
func (s *Service) Submit(ctx context.Context, form domain.DeliveryForm) (domain.Order, error) {
	if err := validate.Struct(form); err != nil {
		s.alerter.Alert("Formulario incompleto",
			"Revisa los campos obligatorios de entrega")
		return domain.Order{}, fmt.Errorf("%w: %v", errors.ErrInvalidForm, err)
	}

	lines := s.engine.Lines()
	if len(lines) == 0 {
		s.alerter.Alert("Carrito vacío", "Añade productos antes de confirmar el pedido")
		return domain.Order{}, errors.ErrEmptyCart
	}

	totals := s.engine.Totals()
	draft := domain.OrderDraft{
		Items: lo.Map(lines, func(line domain.CartLine, _ int) domain.OrderItem {
			return domain.OrderItem{
				ProductID: line.ProductID,
				Name:      line.Name,
				UnitPrice: line.UnitPrice,
				Quantity:  line.Quantity,
			}
		}),
		Delivery:    form,
		Subtotal:    totals.Subtotal,
		ShippingFee: totals.ShippingFee,
		Total:       totals.Total,
	}

	order, err := s.backend.CreateOrder(ctx, draft)
	if err != nil {
		s.alerter.Alert("Pedido no realizado",
			client.ServerMessage(err, "No se pudo crear el pedido"))
		return domain.Order{}, fmt.Errorf("order submission failed: %w", err)
	}

	s.log.Info("Order created", "order", order.ID, "total", totals.Total.StringFixed(2))
	s.engine.Clear(ctx)
	return order, nil
}
