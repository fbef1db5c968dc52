package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	catalogrepo "ferreteria/internal/catalog/repository"
	"ferreteria/internal/dto"
	apperrors "ferreteria/internal/errors"
	salerepo "ferreteria/internal/sale/repository"
	"ferreteria/internal/testutil"
)

type checkoutFixture struct {
	db              *sql.DB
	svc             *CheckoutService
	employeeID      int
	paymentMethodID int

	brandID    int
	categoryID int
	unitID     int
	supplierID int
}

func setupCheckout(t *testing.T) *checkoutFixture {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	brandID, categoryID, unitID, supplierID, employeeID, paymentMethodID := testutil.SeedReferenceData(t, db)

	svc := NewCheckoutService(
		db,
		catalogrepo.NewMySQLProductRepository(db),
		salerepo.NewMySQLSaleRepository(db),
		zap.NewNop(),
		5*time.Second,
	)

	return &checkoutFixture{
		db:              db,
		svc:             svc,
		employeeID:      employeeID,
		paymentMethodID: paymentMethodID,
		brandID:         brandID,
		categoryID:      categoryID,
		unitID:          unitID,
		supplierID:      supplierID,
	}
}

func (f *checkoutFixture) insertProduct(t *testing.T, code, name string, price float64, stock int) int {
	result, err := f.db.Exec(
		`INSERT INTO producto (codigo, nombre, precio, stock, stock_min, estado, id_marca, id_categoria, id_unidad, id_proveedor)
		 VALUES (?, ?, ?, ?, 0, 1, ?, ?, ?, ?)`,
		code, name, price, stock, f.brandID, f.categoryID, f.unitID, f.supplierID,
	)
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)
	return int(id)
}

func (f *checkoutFixture) productStock(t *testing.T, id int) int {
	var stock int
	require.NoError(t, f.db.QueryRow(`SELECT stock FROM producto WHERE id = ?`, id).Scan(&stock))
	return stock
}

func (f *checkoutFixture) countRows(t *testing.T, table string) int {
	var n int
	require.NoError(t, f.db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}

func TestCheckout_SuccessfulSale(t *testing.T) {
	f := setupCheckout(t)
	productID := f.insertProduct(t, "MAR-001", "Martillo", 150.00, 50)

	lines := []dto.CartLine{{
		ProductID: productID,
		Quantity:  5,
		UnitPrice: decimal.NewFromFloat(150.00),
		Subtotal:  decimal.NewFromFloat(750.00),
	}}

	sale, err := f.svc.CreateSale(context.Background(), f.employeeID, f.paymentMethodID, lines)
	require.NoError(t, err)
	require.NotNil(t, sale)

	assert.True(t, sale.TotalAmount.Equal(decimal.NewFromFloat(750.00)),
		"expected total 750.00, got %s", sale.TotalAmount)
	require.Len(t, sale.Lines, 1)
	assert.Equal(t, productID, sale.Lines[0].ProductID)
	assert.Equal(t, 5, sale.Lines[0].Quantity)
	require.NotNil(t, sale.Lines[0].Product)
	assert.Equal(t, "Martillo", sale.Lines[0].Product.Name)
	require.NotNil(t, sale.Employee)
	assert.Equal(t, "Juan", sale.Employee.FirstName)

	assert.Equal(t, 45, f.productStock(t, productID))
}

func TestCheckout_MultiLineTotal(t *testing.T) {
	f := setupCheckout(t)
	hammerID := f.insertProduct(t, "MAR-001", "Martillo", 150.00, 50)
	screwsID := f.insertProduct(t, "TOR-001", "Tornillos x100", 25.50, 200)

	lines := []dto.CartLine{
		{ProductID: hammerID, Quantity: 2, UnitPrice: decimal.NewFromFloat(150.00), Subtotal: decimal.NewFromFloat(300.00)},
		{ProductID: screwsID, Quantity: 3, UnitPrice: decimal.NewFromFloat(25.50), Subtotal: decimal.NewFromFloat(76.50)},
	}

	sale, err := f.svc.CreateSale(context.Background(), f.employeeID, f.paymentMethodID, lines)
	require.NoError(t, err)

	assert.True(t, sale.TotalAmount.Equal(decimal.NewFromFloat(376.50)),
		"expected total 376.50, got %s", sale.TotalAmount)
	assert.Equal(t, 48, f.productStock(t, hammerID))
	assert.Equal(t, 197, f.productStock(t, screwsID))
}

func TestCheckout_MissingProduct(t *testing.T) {
	f := setupCheckout(t)

	lines := []dto.CartLine{{
		ProductID: 99999,
		Quantity:  1,
		UnitPrice: decimal.NewFromFloat(10.00),
		Subtotal:  decimal.NewFromFloat(10.00),
	}}

	sale, err := f.svc.CreateSale(context.Background(), f.employeeID, f.paymentMethodID, lines)
	assert.Nil(t, sale)

	ve, ok := apperrors.IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "Uno o más productos no existen", ve.Message)
	assert.Zero(t, f.countRows(t, "venta"))
}

func TestCheckout_InactiveProductIsMissing(t *testing.T) {
	f := setupCheckout(t)
	productID := f.insertProduct(t, "MAR-001", "Martillo", 150.00, 50)
	_, err := f.db.Exec(`UPDATE producto SET estado = 0 WHERE id = ?`, productID)
	require.NoError(t, err)

	lines := []dto.CartLine{{
		ProductID: productID,
		Quantity:  1,
		UnitPrice: decimal.NewFromFloat(150.00),
		Subtotal:  decimal.NewFromFloat(150.00),
	}}

	_, err = f.svc.CreateSale(context.Background(), f.employeeID, f.paymentMethodID, lines)
	ve, ok := apperrors.IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "Uno o más productos no existen", ve.Message)
}

func TestCheckout_InsufficientStock(t *testing.T) {
	f := setupCheckout(t)
	productID := f.insertProduct(t, "MAR-001", "Martillo", 150.00, 3)

	lines := []dto.CartLine{{
		ProductID: productID,
		Quantity:  10,
		UnitPrice: decimal.NewFromFloat(150.00),
		Subtotal:  decimal.NewFromFloat(1500.00),
	}}

	sale, err := f.svc.CreateSale(context.Background(), f.employeeID, f.paymentMethodID, lines)
	assert.Nil(t, sale)

	ve, ok := apperrors.IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "Stock insuficiente para el producto: Martillo", ve.Message)

	// Nothing written, stock untouched.
	assert.Equal(t, 3, f.productStock(t, productID))
	assert.Zero(t, f.countRows(t, "venta"))
	assert.Zero(t, f.countRows(t, "detalle_venta"))
}

func TestCheckout_DuplicateLinesExceedingStock(t *testing.T) {
	f := setupCheckout(t)
	productID := f.insertProduct(t, "MAR-001", "Martillo", 150.00, 5)

	// Each line passes on its own; the summed decrement does not.
	lines := []dto.CartLine{
		{ProductID: productID, Quantity: 3, UnitPrice: decimal.NewFromFloat(150.00), Subtotal: decimal.NewFromFloat(450.00)},
		{ProductID: productID, Quantity: 3, UnitPrice: decimal.NewFromFloat(150.00), Subtotal: decimal.NewFromFloat(450.00)},
	}

	sale, err := f.svc.CreateSale(context.Background(), f.employeeID, f.paymentMethodID, lines)
	assert.Nil(t, sale)

	ve, ok := apperrors.IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "Stock insuficiente para el producto: Martillo", ve.Message)
	assert.Equal(t, 5, f.productStock(t, productID))
}

func TestCheckout_BadPaymentMethodWritesNothing(t *testing.T) {
	f := setupCheckout(t)
	productID := f.insertProduct(t, "MAR-001", "Martillo", 150.00, 50)

	lines := []dto.CartLine{{
		ProductID: productID,
		Quantity:  5,
		UnitPrice: decimal.NewFromFloat(150.00),
		Subtotal:  decimal.NewFromFloat(750.00),
	}}

	sale, err := f.svc.CreateSale(context.Background(), f.employeeID, 99999, lines)
	assert.Nil(t, sale)

	ve, ok := apperrors.IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "Empleado o forma de pago inválido", ve.Message)

	assert.Equal(t, 50, f.productStock(t, productID))
	assert.Zero(t, f.countRows(t, "venta"))
	assert.Zero(t, f.countRows(t, "detalle_venta"))
}

func TestCheckout_BadEmployeeWritesNothing(t *testing.T) {
	f := setupCheckout(t)
	productID := f.insertProduct(t, "MAR-001", "Martillo", 150.00, 50)

	lines := []dto.CartLine{{
		ProductID: productID,
		Quantity:  1,
		UnitPrice: decimal.NewFromFloat(150.00),
		Subtotal:  decimal.NewFromFloat(150.00),
	}}

	_, err := f.svc.CreateSale(context.Background(), 99999, f.paymentMethodID, lines)
	ve, ok := apperrors.IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "Empleado o forma de pago inválido", ve.Message)
	assert.Equal(t, 50, f.productStock(t, productID))
}

func TestCheckout_ConcurrentSalesOnLastUnit(t *testing.T) {
	f := setupCheckout(t)
	productID := f.insertProduct(t, "MAR-001", "Martillo", 150.00, 1)

	lines := []dto.CartLine{{
		ProductID: productID,
		Quantity:  1,
		UnitPrice: decimal.NewFromFloat(150.00),
		Subtotal:  decimal.NewFromFloat(150.00),
	}}

	results := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.svc.CreateSale(context.Background(), f.employeeID, f.paymentMethodID, lines)
		}(i)
	}
	wg.Wait()

	var successes, stockFailures int
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		if ve, ok := apperrors.IsValidationError(err); ok {
			assert.Equal(t, "Stock insuficiente para el producto: Martillo", ve.Message)
			stockFailures++
		} else {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, stockFailures)
	assert.Equal(t, 0, f.productStock(t, productID))
	assert.Equal(t, 1, f.countRows(t, "venta"))
	assert.Equal(t, 1, f.countRows(t, "detalle_venta"))
}
