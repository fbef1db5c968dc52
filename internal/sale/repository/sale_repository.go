package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ferreteria/internal/domain"
	apperrors "ferreteria/internal/errors"
)

// Querier is satisfied by both *sql.DB and *sql.Tx, so the sale reload can
// run inside the checkout transaction and the retriever can run outside it.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type MySQLSaleRepository struct {
	db *sql.DB
}

func NewMySQLSaleRepository(db *sql.DB) *MySQLSaleRepository {
	return &MySQLSaleRepository{db: db}
}

// GetByID is the out-of-transaction read used by the retriever.
func (r *MySQLSaleRepository) GetByID(ctx context.Context, id int) (*domain.Sale, error) {
	return r.FindByID(ctx, r.db, id)
}

func (r *MySQLSaleRepository) EmployeeExists(ctx context.Context, tx *sql.Tx, id int) (bool, error) {
	var exists bool
	err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM empleado WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking employee existence: %w", err)
	}
	return exists, nil
}

func (r *MySQLSaleRepository) PaymentMethodExists(ctx context.Context, tx *sql.Tx, id int) (bool, error) {
	var exists bool
	err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM forma_pago WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking payment method existence: %w", err)
	}
	return exists, nil
}

func (r *MySQLSaleRepository) InsertSale(ctx context.Context, tx *sql.Tx, sale domain.Sale) (int, error) {
	query := `
		INSERT INTO venta (id_empleado, id_forma_pago, fecha, hora, monto_total)
		VALUES (?, ?, ?, ?, ?)`

	result, err := tx.ExecContext(ctx, query,
		sale.EmployeeID, sale.PaymentMethodID,
		sale.Date.Format("2006-01-02"), sale.Time, sale.TotalAmount,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting sale: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return int(lastInsertID), nil
}

func (r *MySQLSaleRepository) InsertLine(ctx context.Context, tx *sql.Tx, line domain.SaleLine) (int, error) {
	query := `
		INSERT INTO detalle_venta (id_venta, id_producto, cantidad, precio_unitario, subtotal)
		VALUES (?, ?, ?, ?, ?)`

	result, err := tx.ExecContext(ctx, query,
		line.SaleID, line.ProductID, line.Quantity, line.UnitPrice, line.Subtotal,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting sale line: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return int(lastInsertID), nil
}

// FindByID reconstructs the full sale: header, employee, payment method,
// and every line with its product snapshot.
func (r *MySQLSaleRepository) FindByID(ctx context.Context, q Querier, id int) (*domain.Sale, error) {
	headerQuery := `
		SELECT v.id, v.id_empleado, v.id_forma_pago, v.fecha, v.hora, v.monto_total,
		       v.created_at,
		       e.nombre, e.apellido,
		       fp.descripcion
		FROM venta v
		JOIN empleado e ON e.id = v.id_empleado
		JOIN forma_pago fp ON fp.id = v.id_forma_pago
		WHERE v.id = ?`

	var sale domain.Sale
	var employee domain.Employee
	var paymentMethod domain.PaymentMethod
	var fecha time.Time

	err := q.QueryRowContext(ctx, headerQuery, id).Scan(
		&sale.ID, &sale.EmployeeID, &sale.PaymentMethodID,
		&fecha, &sale.Time, &sale.TotalAmount, &sale.CreatedAt,
		&employee.FirstName, &employee.LastName,
		&paymentMethod.Description,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("Venta no encontrada")
	}
	if err != nil {
		return nil, fmt.Errorf("querying sale by id: %w", err)
	}

	sale.Date = fecha
	employee.ID = sale.EmployeeID
	paymentMethod.ID = sale.PaymentMethodID
	sale.Employee = &employee
	sale.PaymentMethod = &paymentMethod

	linesQuery := `
		SELECT d.id, d.id_venta, d.id_producto, d.cantidad, d.precio_unitario, d.subtotal,
		       p.codigo, p.nombre
		FROM detalle_venta d
		JOIN producto p ON p.id = d.id_producto
		WHERE d.id_venta = ?
		ORDER BY d.id ASC`

	rows, err := q.QueryContext(ctx, linesQuery, id)
	if err != nil {
		return nil, fmt.Errorf("querying sale lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.SaleLine
		var product domain.Product
		err := rows.Scan(
			&line.ID, &line.SaleID, &line.ProductID, &line.Quantity,
			&line.UnitPrice, &line.Subtotal,
			&product.Code, &product.Name,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning sale line: %w", err)
		}
		product.ID = line.ProductID
		line.Product = &product
		sale.Lines = append(sale.Lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sale lines: %w", err)
	}

	return &sale, nil
}
