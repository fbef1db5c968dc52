package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-sql-driver/mysql"

	"ferreteria/internal/domain"
	apperrors "ferreteria/internal/errors"
)

type MySQLProductRepository struct {
	db *sql.DB
}

func NewMySQLProductRepository(db *sql.DB) *MySQLProductRepository {
	return &MySQLProductRepository{db: db}
}

// ListAvailable returns the products the cart may offer: active and with
// stock on hand. The optional search term matches code, name, or category
// name (substring, collation-insensitive like the rest of the schema).
func (r *MySQLProductRepository) ListAvailable(ctx context.Context, search string) ([]domain.Product, error) {
	query := `
		SELECT p.id, p.codigo, p.nombre, p.precio, p.stock, p.stock_min,
		       p.estado, p.id_categoria, c.descripcion
		FROM producto p
		JOIN categoria c ON c.id = p.id_categoria
		WHERE p.estado = 1 AND p.stock > 0`

	var args []interface{}
	if search != "" {
		query += ` AND (p.codigo LIKE ? OR p.nombre LIKE ? OR c.descripcion LIKE ?)`
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern, pattern)
	}
	query += ` ORDER BY p.id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying available products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		err := rows.Scan(
			&p.ID, &p.Code, &p.Name, &p.Price, &p.Stock, &p.StockMin,
			&p.Status, &p.CategoryID, &p.CategoryName,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning product row: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating product rows: %w", err)
	}

	return products, nil
}

func (r *MySQLProductRepository) List(ctx context.Context, search string) ([]domain.Product, error) {
	query := `
		SELECT p.id, p.codigo, p.nombre, p.precio, p.stock, p.stock_min, p.estado,
		       p.id_marca, p.id_categoria, p.id_unidad, p.id_proveedor,
		       m.descripcion, c.descripcion, u.descripcion, pr.nombre,
		       p.created_at, p.updated_at
		FROM producto p
		JOIN marca m ON m.id = p.id_marca
		JOIN categoria c ON c.id = p.id_categoria
		JOIN unidad u ON u.id = p.id_unidad
		JOIN proveedor pr ON pr.id = p.id_proveedor`

	var args []interface{}
	if search != "" {
		query += ` WHERE (p.codigo LIKE ? OR p.nombre LIKE ? OR c.descripcion LIKE ?)`
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern, pattern)
	}
	query += ` ORDER BY p.id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		err := rows.Scan(
			&p.ID, &p.Code, &p.Name, &p.Price, &p.Stock, &p.StockMin, &p.Status,
			&p.BrandID, &p.CategoryID, &p.UnitID, &p.SupplierID,
			&p.BrandName, &p.CategoryName, &p.UnitName, &p.SupplierName,
			&p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning product row: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating product rows: %w", err)
	}

	return products, nil
}

func (r *MySQLProductRepository) FindByID(ctx context.Context, id int) (*domain.Product, error) {
	query := `
		SELECT p.id, p.codigo, p.nombre, p.precio, p.stock, p.stock_min, p.estado,
		       p.id_marca, p.id_categoria, p.id_unidad, p.id_proveedor,
		       m.descripcion, c.descripcion, u.descripcion, pr.nombre,
		       p.created_at, p.updated_at
		FROM producto p
		JOIN marca m ON m.id = p.id_marca
		JOIN categoria c ON c.id = p.id_categoria
		JOIN unidad u ON u.id = p.id_unidad
		JOIN proveedor pr ON pr.id = p.id_proveedor
		WHERE p.id = ?`

	var p domain.Product
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Code, &p.Name, &p.Price, &p.Stock, &p.StockMin, &p.Status,
		&p.BrandID, &p.CategoryID, &p.UnitID, &p.SupplierID,
		&p.BrandName, &p.CategoryName, &p.UnitName, &p.SupplierName,
		&p.CreatedAt, &p.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("producto con id %d no encontrado", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying product by id: %w", err)
	}

	return &p, nil
}

func (r *MySQLProductRepository) Insert(ctx context.Context, p domain.Product) (int, error) {
	query := `
		INSERT INTO producto
			(codigo, nombre, precio, stock, stock_min, estado,
			 id_marca, id_categoria, id_unidad, id_proveedor)
		VALUES (?, ?, ?, ?, ?, 1, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		p.Code, p.Name, p.Price, p.Stock, p.StockMin,
		p.BrandID, p.CategoryID, p.UnitID, p.SupplierID,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, apperrors.NewValidationError("El código de producto ya existe")
		}
		return 0, fmt.Errorf("inserting product: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return int(lastInsertID), nil
}

// Update applies only the non-nil fields of the patch. Callers must reject
// empty patches before reaching here.
func (r *MySQLProductRepository) Update(ctx context.Context, id int, patch domain.ProductPatch) error {
	set, args := BuildPatchSet(patch)
	if len(set) == 0 {
		return apperrors.NewValidationError("No hay campos para actualizar")
	}

	query := fmt.Sprintf("UPDATE producto SET %s WHERE id = ?", strings.Join(set, ", "))
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isDuplicateKey(err) {
			return apperrors.NewValidationError("El código de producto ya existe")
		}
		return fmt.Errorf("updating product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("producto con id %d no encontrado", id))
	}

	return nil
}

func (r *MySQLProductRepository) Deactivate(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `UPDATE producto SET estado = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivating product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("producto con id %d no encontrado", id))
	}

	return nil
}

// FindByIDsForUpdate fetches and row-locks the given products within tx.
// The caller is responsible for passing ids in ascending order so that
// concurrent checkouts acquire locks in the same order.
func (r *MySQLProductRepository) FindByIDsForUpdate(ctx context.Context, tx *sql.Tx, ids []int) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, 0, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args = append(args, id)
	}

	query := fmt.Sprintf(`
		SELECT id, codigo, nombre, precio, stock
		FROM producto
		WHERE id IN (%s) AND estado = 1
		FOR UPDATE`,
		strings.Join(placeholders, ", "),
	)

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("locking products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.Price, &p.Stock); err != nil {
			return nil, fmt.Errorf("scanning locked product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating locked products: %w", err)
	}

	return products, nil
}

// DecrementStock applies all decrements as one conditional UPDATE. The
// WHERE clause requires every touched row to still hold enough stock, so
// the affected-row count doubles as an oversell guard: anything short of
// len(decrements) means at least one product could not absorb its decrement.
func (r *MySQLProductRepository) DecrementStock(ctx context.Context, tx *sql.Tx, decrements map[int]int) (int64, error) {
	if len(decrements) == 0 {
		return 0, nil
	}

	ids := make([]int, 0, len(decrements))
	for id := range decrements {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var caseExpr strings.Builder
	caseArgs := make([]interface{}, 0, len(ids)*2)
	inPlaceholders := make([]string, len(ids))
	inArgs := make([]interface{}, 0, len(ids))

	caseExpr.WriteString("CASE id")
	for i, id := range ids {
		caseExpr.WriteString(" WHEN ? THEN ?")
		caseArgs = append(caseArgs, id, decrements[id])
		inPlaceholders[i] = "?"
		inArgs = append(inArgs, id)
	}
	caseExpr.WriteString(" END")

	query := fmt.Sprintf(`
		UPDATE producto
		SET stock = stock - %[1]s
		WHERE id IN (%[2]s) AND stock >= %[1]s`,
		caseExpr.String(), strings.Join(inPlaceholders, ", "),
	)

	args := make([]interface{}, 0, len(caseArgs)*2+len(inArgs))
	args = append(args, caseArgs...)
	args = append(args, inArgs...)
	args = append(args, caseArgs...)

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("decrementing stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}

	return rowsAffected, nil
}

// BuildPatchSet translates a ProductPatch into SET fragments and their
// arguments, skipping nil fields. Exported for direct testing.
func BuildPatchSet(patch domain.ProductPatch) ([]string, []interface{}) {
	var set []string
	var args []interface{}

	add := func(column string, value interface{}) {
		set = append(set, column+" = ?")
		args = append(args, value)
	}

	if patch.Code != nil {
		add("codigo", *patch.Code)
	}
	if patch.Name != nil {
		add("nombre", *patch.Name)
	}
	if patch.Price != nil {
		add("precio", *patch.Price)
	}
	if patch.Stock != nil {
		add("stock", *patch.Stock)
	}
	if patch.StockMin != nil {
		add("stock_min", *patch.StockMin)
	}
	if patch.Status != nil {
		add("estado", *patch.Status)
	}
	if patch.BrandID != nil {
		add("id_marca", *patch.BrandID)
	}
	if patch.CategoryID != nil {
		add("id_categoria", *patch.CategoryID)
	}
	if patch.UnitID != nil {
		add("id_unidad", *patch.UnitID)
	}
	if patch.SupplierID != nil {
		add("id_proveedor", *patch.SupplierID)
	}

	return set, args
}

func isDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
