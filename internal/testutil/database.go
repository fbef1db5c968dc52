package testutil

import (
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/go-sql-driver/mysql"
)

// SetupTestDB opens the local test database. Expects a MySQL instance on
// localhost:3306 with a database named 'ferreteria_test'; tests are
// skipped when it is not reachable.
func SetupTestDB(t *testing.T) *sql.DB {
	dsn := "root:@tcp(localhost:3306)/ferreteria_test?parseTime=true"
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// CleanupTestDB empties the test tables in FK order and closes the pool.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	tables := []string{
		"detalle_venta", "venta", "producto",
		"empleado", "forma_pago", "marca", "categoria", "unidad", "proveedor",
	}
	for _, table := range tables {
		if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}

// SetupTestTables creates the ferretería schema used by the integration
// tests. The stock CHECK is a backstop; the checkout transaction is the
// real guard.
func SetupTestTables(t *testing.T, db *sql.DB) {
	statements := []struct {
		name  string
		query string
	}{
		{"marca", `
			CREATE TABLE IF NOT EXISTS marca (
				id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
				descripcion VARCHAR(100) NOT NULL
			)`},
		{"categoria", `
			CREATE TABLE IF NOT EXISTS categoria (
				id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
				descripcion VARCHAR(100) NOT NULL
			)`},
		{"unidad", `
			CREATE TABLE IF NOT EXISTS unidad (
				id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
				descripcion VARCHAR(50) NOT NULL
			)`},
		{"proveedor", `
			CREATE TABLE IF NOT EXISTS proveedor (
				id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
				nombre VARCHAR(150) NOT NULL,
				telefono VARCHAR(30) NOT NULL DEFAULT '',
				direccion VARCHAR(255) NOT NULL DEFAULT ''
			)`},
		{"forma_pago", `
			CREATE TABLE IF NOT EXISTS forma_pago (
				id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
				descripcion VARCHAR(100) NOT NULL
			)`},
		{"empleado", `
			CREATE TABLE IF NOT EXISTS empleado (
				id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
				nombre VARCHAR(100) NOT NULL,
				apellido VARCHAR(100) NOT NULL,
				dni VARCHAR(20) NOT NULL DEFAULT '',
				telefono VARCHAR(30) NOT NULL DEFAULT '',
				estado TINYINT(1) NOT NULL DEFAULT 1
			)`},
		{"producto", `
			CREATE TABLE IF NOT EXISTS producto (
				id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
				codigo VARCHAR(50) NOT NULL UNIQUE,
				nombre VARCHAR(255) NOT NULL,
				precio DECIMAL(10,2) NOT NULL,
				stock INT NOT NULL DEFAULT 0,
				stock_min INT NOT NULL DEFAULT 0,
				estado TINYINT(1) NOT NULL DEFAULT 1,
				id_marca INT NOT NULL,
				id_categoria INT NOT NULL,
				id_unidad INT NOT NULL,
				id_proveedor INT NOT NULL,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
				CONSTRAINT chk_stock_non_negative CHECK (stock >= 0),
				FOREIGN KEY (id_marca) REFERENCES marca(id),
				FOREIGN KEY (id_categoria) REFERENCES categoria(id),
				FOREIGN KEY (id_unidad) REFERENCES unidad(id),
				FOREIGN KEY (id_proveedor) REFERENCES proveedor(id),
				INDEX idx_estado_stock (estado, stock)
			)`},
		{"venta", `
			CREATE TABLE IF NOT EXISTS venta (
				id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
				id_empleado INT NOT NULL,
				id_forma_pago INT NOT NULL,
				fecha DATE NOT NULL,
				hora TIME NOT NULL,
				monto_total DECIMAL(10,2) NOT NULL,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (id_empleado) REFERENCES empleado(id),
				FOREIGN KEY (id_forma_pago) REFERENCES forma_pago(id)
			)`},
		{"detalle_venta", `
			CREATE TABLE IF NOT EXISTS detalle_venta (
				id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
				id_venta INT NOT NULL,
				id_producto INT NOT NULL,
				cantidad INT NOT NULL,
				precio_unitario DECIMAL(10,2) NOT NULL,
				subtotal DECIMAL(10,2) NOT NULL,
				FOREIGN KEY (id_venta) REFERENCES venta(id) ON DELETE CASCADE,
				FOREIGN KEY (id_producto) REFERENCES producto(id),
				INDEX idx_venta (id_venta)
			)`},
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt.query); err != nil {
			t.Logf("failed to create table %s: %v", stmt.name, err)
		}
	}
}

// SeedReferenceData inserts one row into every lookup table and returns
// the ids needed to create products and sales.
func SeedReferenceData(t *testing.T, db *sql.DB) (brandID, categoryID, unitID, supplierID, employeeID, paymentMethodID int) {
	insert := func(query string, args ...interface{}) int {
		result, err := db.Exec(query, args...)
		if err != nil {
			t.Fatalf("seeding reference data: %v", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			t.Fatalf("reading seeded id: %v", err)
		}
		return int(id)
	}

	brandID = insert(`INSERT INTO marca (descripcion) VALUES ('Stanley')`)
	categoryID = insert(`INSERT INTO categoria (descripcion) VALUES ('Herramientas')`)
	unitID = insert(`INSERT INTO unidad (descripcion) VALUES ('Unidad')`)
	supplierID = insert(`INSERT INTO proveedor (nombre) VALUES ('Distribuidora Central')`)
	employeeID = insert(`INSERT INTO empleado (nombre, apellido, dni) VALUES ('Juan', 'Pérez', '12345678')`)
	paymentMethodID = insert(`INSERT INTO forma_pago (descripcion) VALUES ('Efectivo')`)
	return
}
