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

type CustomerRepository struct {
	pool *pgxpool.Pool
}

func NewCustomerRepository(db *database.DB) *CustomerRepository {
	return &CustomerRepository{pool: db.Pool}
}

const customerColumns = `id, first_name, last_name, email, phone, address, city, country, postcode, created_at`

func scanCustomerRow(scanner rowScanner) (*models.Customer, error) {
	var c models.Customer
	err := scanner.Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone,
		&c.Address, &c.City, &c.Country, &c.Postcode, &c.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &c, nil
}

func scanCustomerRows(rows pgx.Rows) ([]*models.Customer, error) {
	defer rows.Close()

	customers := make([]*models.Customer, 0)
	for rows.Next() {
		customer, err := scanCustomerRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, customer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return customers, nil
}

// Create assigns customer.ID and CreatedAt.
func (r *CustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	customer.ID = uuid.New().String()
	customer.CreatedAt = time.Now()

	query := `
		INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.pool.Exec(ctx, query,
		customer.ID, customer.FirstName, customer.LastName, customer.Email, customer.Phone,
		customer.Address, customer.City, customer.Country, customer.Postcode, customer.CreatedAt,
	)
	return database.MapPostgresError(err)
}

func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	return scanCustomerRow(r.pool.QueryRow(ctx, query, id))
}

// List returns customers newest first.
func (r *CustomerRepository) List(ctx context.Context, limit, offset int) ([]*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	return scanCustomerRows(rows)
}

// Update overwrites the editable fields of customer id.
func (r *CustomerRepository) Update(ctx context.Context, id string, customer *models.Customer) (*models.Customer, error) {
	query := `
		UPDATE customers
		SET first_name = $1, last_name = $2, email = $3, phone = $4,
		    address = $5, city = $6, country = $7, postcode = $8
		WHERE id = $9
		RETURNING ` + customerColumns

	return scanCustomerRow(r.pool.QueryRow(ctx, query,
		customer.FirstName, customer.LastName, customer.Email, customer.Phone,
		customer.Address, customer.City, customer.Country, customer.Postcode, id,
	))
}

// Delete removes the customer and, by cascade, its suppliers, details and
// exclusions.
func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
