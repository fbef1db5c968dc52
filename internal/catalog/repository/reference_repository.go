package repository

import (
	"context"
	"database/sql"
	"fmt"

	"ferreteria/internal/domain"
)

// MySQLReferenceRepository serves the inert lookup tables the checkout UI
// needs to populate its selectors.
type MySQLReferenceRepository struct {
	db *sql.DB
}

func NewMySQLReferenceRepository(db *sql.DB) *MySQLReferenceRepository {
	return &MySQLReferenceRepository{db: db}
}

func (r *MySQLReferenceRepository) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, nombre, apellido, dni, telefono, estado
		FROM empleado
		ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying employees: %w", err)
	}
	defer rows.Close()

	var employees []domain.Employee
	for rows.Next() {
		var e domain.Employee
		if err := rows.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Document, &e.Phone, &e.Status); err != nil {
			return nil, fmt.Errorf("scanning employee row: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating employee rows: %w", err)
	}

	return employees, nil
}

func (r *MySQLReferenceRepository) ListPaymentMethods(ctx context.Context) ([]domain.PaymentMethod, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, descripcion FROM forma_pago ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying payment methods: %w", err)
	}
	defer rows.Close()

	var methods []domain.PaymentMethod
	for rows.Next() {
		var m domain.PaymentMethod
		if err := rows.Scan(&m.ID, &m.Description); err != nil {
			return nil, fmt.Errorf("scanning payment method row: %w", err)
		}
		methods = append(methods, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payment method rows: %w", err)
	}

	return methods, nil
}

func (r *MySQLReferenceRepository) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	var brands []domain.Brand
	err := r.listDescribed(ctx, `SELECT id, descripcion FROM marca ORDER BY id ASC`, func(id int, desc string) {
		brands = append(brands, domain.Brand{ID: id, Description: desc})
	})
	return brands, err
}

func (r *MySQLReferenceRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	err := r.listDescribed(ctx, `SELECT id, descripcion FROM categoria ORDER BY id ASC`, func(id int, desc string) {
		categories = append(categories, domain.Category{ID: id, Description: desc})
	})
	return categories, err
}

func (r *MySQLReferenceRepository) ListUnits(ctx context.Context) ([]domain.Unit, error) {
	var units []domain.Unit
	err := r.listDescribed(ctx, `SELECT id, descripcion FROM unidad ORDER BY id ASC`, func(id int, desc string) {
		units = append(units, domain.Unit{ID: id, Description: desc})
	})
	return units, err
}

func (r *MySQLReferenceRepository) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, nombre, telefono, direccion
		FROM proveedor
		ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying suppliers: %w", err)
	}
	defer rows.Close()

	var suppliers []domain.Supplier
	for rows.Next() {
		var s domain.Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.Phone, &s.Address); err != nil {
			return nil, fmt.Errorf("scanning supplier row: %w", err)
		}
		suppliers = append(suppliers, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating supplier rows: %w", err)
	}

	return suppliers, nil
}

func (r *MySQLReferenceRepository) listDescribed(ctx context.Context, query string, collect func(id int, desc string)) error {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("querying reference rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int
		var desc string
		if err := rows.Scan(&id, &desc); err != nil {
			return fmt.Errorf("scanning reference row: %w", err)
		}
		collect(id, desc)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating reference rows: %w", err)
	}

	return nil
}
