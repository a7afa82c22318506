package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BradenHooton/srm/internal/database"
	"github.com/BradenHooton/srm/internal/models"
)

type SupplierRepository struct {
	pool *pgxpool.Pool
}

func NewSupplierRepository(db *database.DB) *SupplierRepository {
	return &SupplierRepository{pool: db.Pool}
}

const supplierColumns = `id, customer_id, supplier_name, supplier_email, supplier_phone,
	supplier_address, supplier_city, supplier_country, supplier_postcode, created_at`

func scanSupplierRow(scanner rowScanner) (*models.Supplier, error) {
	var s models.Supplier
	err := scanner.Scan(
		&s.ID, &s.CustomerID, &s.Name, &s.Email, &s.Phone,
		&s.Address, &s.City, &s.Country, &s.Postcode, &s.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &s, nil
}

func scanSupplierRows(rows pgx.Rows) ([]*models.Supplier, error) {
	defer rows.Close()

	suppliers := make([]*models.Supplier, 0)
	for rows.Next() {
		supplier, err := scanSupplierRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan supplier: %w", err)
		}
		suppliers = append(suppliers, supplier)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return suppliers, nil
}

// Create assigns supplier.ID and CreatedAt. An unknown CustomerID yields
// models.ErrNotFound.
func (r *SupplierRepository) Create(ctx context.Context, supplier *models.Supplier) error {
	supplier.ID = uuid.New().String()
	supplier.CreatedAt = time.Now()

	query := `
		INSERT INTO suppliers (` + supplierColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.pool.Exec(ctx, query,
		supplier.ID, supplier.CustomerID, supplier.Name, supplier.Email, supplier.Phone,
		supplier.Address, supplier.City, supplier.Country, supplier.Postcode, supplier.CreatedAt,
	)
	return database.MapPostgresError(err)
}

func (r *SupplierRepository) GetByID(ctx context.Context, id string) (*models.Supplier, error) {
	query := `SELECT ` + supplierColumns + ` FROM suppliers WHERE id = $1`
	return scanSupplierRow(r.pool.QueryRow(ctx, query, id))
}

// ListByCustomer returns a customer's suppliers oldest first.
func (r *SupplierRepository) ListByCustomer(ctx context.Context, customerID string) ([]*models.Supplier, error) {
	query := `SELECT ` + supplierColumns + ` FROM suppliers WHERE customer_id = $1 ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query suppliers: %w", err)
	}
	return scanSupplierRows(rows)
}

// Update overwrites the editable fields. The owning customer never changes.
func (r *SupplierRepository) Update(ctx context.Context, id string, supplier *models.Supplier) (*models.Supplier, error) {
	query := `
		UPDATE suppliers
		SET supplier_name = $1, supplier_email = $2, supplier_phone = $3, supplier_address = $4,
		    supplier_city = $5, supplier_country = $6, supplier_postcode = $7
		WHERE id = $8
		RETURNING ` + supplierColumns

	return scanSupplierRow(r.pool.QueryRow(ctx, query,
		supplier.Name, supplier.Email, supplier.Phone, supplier.Address,
		supplier.City, supplier.Country, supplier.Postcode, id,
	))
}

// Delete removes the supplier together with its detail and exclusions.
func (r *SupplierRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
