package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ferreteria/internal/domain"
	"ferreteria/internal/dto"
	apperrors "ferreteria/internal/errors"
)

type mockCheckoutService struct {
	CreateSaleFunc func(ctx context.Context, employeeID, paymentMethodID int, lines []dto.CartLine) (*domain.Sale, error)
	calls          int
	receivedLines  [][]dto.CartLine
}

func (m *mockCheckoutService) CreateSale(ctx context.Context, employeeID, paymentMethodID int, lines []dto.CartLine) (*domain.Sale, error) {
	m.calls++
	m.receivedLines = append(m.receivedLines, lines)
	return m.CreateSaleFunc(ctx, employeeID, paymentMethodID, lines)
}

type mockSaleReader struct {
	GetByIDFunc func(ctx context.Context, id int) (*domain.Sale, error)
}

func (m *mockSaleReader) GetByID(ctx context.Context, id int) (*domain.Sale, error) {
	return m.GetByIDFunc(ctx, id)
}

func newTestUseCase(svc CheckoutService, reader SaleReader) *CreateSaleUseCase {
	return NewCreateSaleUseCase(svc, reader, zap.NewNop(), 3)
}

func validLines() []dto.CartLine {
	return []dto.CartLine{
		{
			ProductID: 3,
			Quantity:  5,
			UnitPrice: decimal.NewFromFloat(150.00),
			Subtotal:  decimal.NewFromFloat(750.00),
		},
	}
}

func TestCreateSale_EmptyCart(t *testing.T) {
	svc := &mockCheckoutService{
		CreateSaleFunc: func(ctx context.Context, employeeID, paymentMethodID int, lines []dto.CartLine) (*domain.Sale, error) {
			t.Fatal("service must not be called for an empty cart")
			return nil, nil
		},
	}

	uc := newTestUseCase(svc, &mockSaleReader{})
	sale, err := uc.CreateSale(context.Background(), 1, 1, nil)

	assert.Nil(t, sale)
	ve, ok := apperrors.IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "La venta debe incluir al menos un producto", ve.Message)
	assert.Zero(t, svc.calls)
}

func TestCreateSale_InvalidLineData(t *testing.T) {
	cases := []struct {
		name string
		line dto.CartLine
	}{
		{"missing productId", dto.CartLine{ProductID: 0, Quantity: 1}},
		{"zero quantity", dto.CartLine{ProductID: 1, Quantity: 0}},
		{"negative quantity", dto.CartLine{ProductID: 1, Quantity: -2}},
		{"negative unit price", dto.CartLine{ProductID: 1, Quantity: 1, UnitPrice: decimal.NewFromFloat(-1)}},
		{"negative subtotal", dto.CartLine{ProductID: 1, Quantity: 1, Subtotal: decimal.NewFromFloat(-1)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockCheckoutService{
				CreateSaleFunc: func(ctx context.Context, employeeID, paymentMethodID int, lines []dto.CartLine) (*domain.Sale, error) {
					t.Fatal("service must not be called for invalid lines")
					return nil, nil
				},
			}

			uc := newTestUseCase(svc, &mockSaleReader{})
			_, err := uc.CreateSale(context.Background(), 1, 1, []dto.CartLine{tc.line})

			ve, ok := apperrors.IsValidationError(err)
			require.True(t, ok)
			assert.Equal(t, "Datos de producto inválidos en la venta", ve.Message)
		})
	}
}

func TestCreateSale_SortsLinesByProductID(t *testing.T) {
	svc := &mockCheckoutService{
		CreateSaleFunc: func(ctx context.Context, employeeID, paymentMethodID int, lines []dto.CartLine) (*domain.Sale, error) {
			return &domain.Sale{ID: 1}, nil
		},
	}

	uc := newTestUseCase(svc, &mockSaleReader{})

	lines := []dto.CartLine{
		{ProductID: 9, Quantity: 1},
		{ProductID: 2, Quantity: 1},
		{ProductID: 5, Quantity: 1},
	}
	_, err := uc.CreateSale(context.Background(), 1, 1, lines)
	require.NoError(t, err)

	require.Len(t, svc.receivedLines, 1)
	got := svc.receivedLines[0]
	assert.Equal(t, []int{2, 5, 9}, []int{got[0].ProductID, got[1].ProductID, got[2].ProductID})

	// Input slice is left untouched.
	assert.Equal(t, 9, lines[0].ProductID)
}

func TestCreateSale_PassesResultThrough(t *testing.T) {
	expected := &domain.Sale{ID: 42, TotalAmount: decimal.NewFromFloat(750.00)}
	svc := &mockCheckoutService{
		CreateSaleFunc: func(ctx context.Context, employeeID, paymentMethodID int, lines []dto.CartLine) (*domain.Sale, error) {
			return expected, nil
		},
	}

	uc := newTestUseCase(svc, &mockSaleReader{})
	sale, err := uc.CreateSale(context.Background(), 1, 2, validLines())

	require.NoError(t, err)
	assert.Equal(t, expected, sale)
	assert.Equal(t, 1, svc.calls)
}

func TestCreateSale_RetriesOnDeadlock(t *testing.T) {
	deadlock := &mysql.MySQLError{Number: 1213, Message: "Deadlock found"}
	svc := &mockCheckoutService{}
	svc.CreateSaleFunc = func(ctx context.Context, employeeID, paymentMethodID int, lines []dto.CartLine) (*domain.Sale, error) {
		if svc.calls == 1 {
			return nil, deadlock
		}
		return &domain.Sale{ID: 7}, nil
	}

	uc := newTestUseCase(svc, &mockSaleReader{})
	sale, err := uc.CreateSale(context.Background(), 1, 1, validLines())

	require.NoError(t, err)
	assert.Equal(t, 7, sale.ID)
	assert.Equal(t, 2, svc.calls)
}

func TestCreateSale_DeadlockRetriesExhausted(t *testing.T) {
	deadlock := &mysql.MySQLError{Number: 1213, Message: "Deadlock found"}
	svc := &mockCheckoutService{
		CreateSaleFunc: func(ctx context.Context, employeeID, paymentMethodID int, lines []dto.CartLine) (*domain.Sale, error) {
			return nil, deadlock
		},
	}

	uc := newTestUseCase(svc, &mockSaleReader{})
	sale, err := uc.CreateSale(context.Background(), 1, 1, validLines())

	assert.Nil(t, sale)
	_, ok := apperrors.IsDeadlockError(err)
	assert.True(t, ok)
	assert.Equal(t, 3, svc.calls)
}

func TestCreateSale_NoRetryOnValidationError(t *testing.T) {
	svc := &mockCheckoutService{
		CreateSaleFunc: func(ctx context.Context, employeeID, paymentMethodID int, lines []dto.CartLine) (*domain.Sale, error) {
			return nil, apperrors.NewValidationError("Uno o más productos no existen")
		},
	}

	uc := newTestUseCase(svc, &mockSaleReader{})
	_, err := uc.CreateSale(context.Background(), 1, 1, validLines())

	ve, ok := apperrors.IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "Uno o más productos no existen", ve.Message)
	assert.Equal(t, 1, svc.calls)
}

func TestGetSale_InvalidID(t *testing.T) {
	uc := newTestUseCase(&mockCheckoutService{}, &mockSaleReader{})

	for _, id := range []int{0, -1} {
		_, err := uc.GetSale(context.Background(), id)
		ve, ok := apperrors.IsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, "Id de venta inválido", ve.Message)
	}
}

func TestGetSale_NotFound(t *testing.T) {
	reader := &mockSaleReader{
		GetByIDFunc: func(ctx context.Context, id int) (*domain.Sale, error) {
			return nil, apperrors.NewNotFoundError("Venta no encontrada")
		},
	}

	uc := newTestUseCase(&mockCheckoutService{}, reader)
	_, err := uc.GetSale(context.Background(), 999)

	nfe, ok := apperrors.IsNotFoundError(err)
	require.True(t, ok)
	assert.Equal(t, "Venta no encontrada", nfe.Message)
}

func TestGetSale_Found(t *testing.T) {
	reader := &mockSaleReader{
		GetByIDFunc: func(ctx context.Context, id int) (*domain.Sale, error) {
			return &domain.Sale{ID: id}, nil
		},
	}

	uc := newTestUseCase(&mockCheckoutService{}, reader)
	sale, err := uc.GetSale(context.Background(), 12)

	require.NoError(t, err)
	assert.Equal(t, 12, sale.ID)
}

func TestIsDeadlockError(t *testing.T) {
	assert.True(t, isDeadlockError(&mysql.MySQLError{Number: 1213}))
	assert.True(t, isDeadlockError(&mysql.MySQLError{Number: 1205}))
	assert.False(t, isDeadlockError(&mysql.MySQLError{Number: 1062}))
	assert.False(t, isDeadlockError(errors.New("plain error")))
	assert.False(t, isDeadlockError(nil))
}
