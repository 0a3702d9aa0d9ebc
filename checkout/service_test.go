package checkout

import (
	"context"
	stderrors "errors"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"agroconnect/cart"
	"agroconnect/domain"
	"agroconnect/errors"
	"agroconnect/mocks"
)

type checkoutFixture struct {
	backend *mocks.MockIBackend
	repo    *mocks.MockICartRepository
	alerter *mocks.MockAlerter
	engine  *cart.Engine
	service *Service
}

func setupCheckout(t *testing.T) checkoutFixture {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockIBackend(ctrl)
	repo := mocks.NewMockICartRepository(ctrl)
	alerter := mocks.NewMockAlerter(ctrl)

	repo.EXPECT().SaveLines(gomock.Any()).Return(nil).AnyTimes()
	repo.EXPECT().EraseLines().Return(nil).AnyTimes()

	engine := cart.NewEngine(backend, repo, alerter, slog.Default())
	return checkoutFixture{
		backend: backend,
		repo:    repo,
		alerter: alerter,
		engine:  engine,
		service: NewService(backend, engine, alerter, slog.Default()),
	}
}

func validForm() domain.DeliveryForm {
	return domain.DeliveryForm{
		FullName:      "Ana García",
		Address:       "Calle Mayor 3",
		City:          "Murcia",
		PostalCode:    "30001",
		Phone:         "600123123",
		PaymentMethod: domain.PaymentMethodTest,
	}
}

func fillCart(t *testing.T, f checkoutFixture) {
	t.Helper()
	f.backend.EXPECT().CreateCartLine(gomock.Any(), gomock.Any()).Return("srv-1", nil)
	require.True(t, f.engine.AddItem(context.Background(), domain.Product{
		ID:             1,
		Name:           "Tomate",
		UnitPrice:      decimal.RequireFromString("2.50"),
		AvailableStock: 10,
	}, 2))
}

func TestCheckout_InvalidFormShortCircuits(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(form *domain.DeliveryForm)
	}{
		{"should reject a missing name", func(f *domain.DeliveryForm) { f.FullName = "" }},
		{"should reject a missing address", func(f *domain.DeliveryForm) { f.Address = "" }},
		{"should reject a short postal code", func(f *domain.DeliveryForm) { f.PostalCode = "301" }},
		{"should reject a non-numeric postal code", func(f *domain.DeliveryForm) { f.PostalCode = "3000a" }},
		{"should reject a short phone", func(f *domain.DeliveryForm) { f.Phone = "60" }},
		{"should reject a real payment method", func(f *domain.DeliveryForm) { f.PaymentMethod = "tarjeta" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			f := setupCheckout(t)

			// Validation fails before any network or cart access.
			f.backend.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).Times(0)
			f.alerter.EXPECT().Alert("Formulario incompleto", gomock.Any())

			form := validForm()
			tt.mutate(&form)

			_, err := f.service.Submit(context.Background(), form)
			req.ErrorIs(err, errors.ErrInvalidForm)
		})
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	req := require.New(t)
	f := setupCheckout(t)

	f.backend.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).Times(0)
	f.alerter.EXPECT().Alert("Carrito vacío", gomock.Any())

	_, err := f.service.Submit(context.Background(), validForm())
	req.ErrorIs(err, errors.ErrEmptyCart)
}

func TestCheckout_SubmitSuccessClearsCart(t *testing.T) {
	req := require.New(t)
	f := setupCheckout(t)
	ctx := context.Background()

	fillCart(t, f)

	f.backend.EXPECT().
		CreateOrder(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, draft domain.OrderDraft) (domain.Order, error) {
			// 2 x 2.50 = 5.00 subtotal, under the threshold.
			require.Len(t, draft.Items, 1)
			require.True(t, draft.Subtotal.Equal(decimal.RequireFromString("5.00")))
			require.True(t, draft.ShippingFee.Equal(decimal.RequireFromString("3.50")))
			require.True(t, draft.Total.Equal(decimal.RequireFromString("8.50")))
			return domain.Order{ID: "order-1", Total: draft.Total}, nil
		})
	f.backend.EXPECT().EmptyCart(ctx).Return(nil)

	order, err := f.service.Submit(ctx, validForm())
	req.NoError(err)
	req.Equal("order-1", order.ID)
	req.Empty(f.engine.Lines())
}

func TestCheckout_RemoteFailureKeepsCart(t *testing.T) {
	req := require.New(t)
	f := setupCheckout(t)
	ctx := context.Background()

	fillCart(t, f)

	f.backend.EXPECT().
		CreateOrder(ctx, gomock.Any()).
		Return(domain.Order{}, stderrors.New("connection refused"))
	f.alerter.EXPECT().Alert("Pedido no realizado", gomock.Any())

	_, err := f.service.Submit(ctx, validForm())
	req.Error(err)
	req.Len(f.engine.Lines(), 1)
}
