package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BradenHooton/srm/internal/database"
	"github.com/BradenHooton/srm/internal/models"
)

// DetailRepository stores the one-per-supplier compliance details.
type DetailRepository struct {
	pool *pgxpool.Pool
}

func NewDetailRepository(db *database.DB) *DetailRepository {
	return &DetailRepository{pool: db.Pool}
}

const detailColumns = `id, supplier_id, company_type, legal_form, vat_no, created_at`

func scanDetailRow(scanner rowScanner) (*models.Detail, error) {
	var d models.Detail
	if err := scanner.Scan(&d.ID, &d.SupplierID, &d.CompanyType, &d.LegalForm, &d.VATNo, &d.CreatedAt); err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &d, nil
}

// Create assigns detail.ID. A second detail for one supplier yields
// models.ErrConflict.
func (r *DetailRepository) Create(ctx context.Context, detail *models.Detail) error {
	detail.ID = uuid.New().String()
	detail.CreatedAt = time.Now()

	query := `INSERT INTO details (` + detailColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, query,
		detail.ID, detail.SupplierID, detail.CompanyType, detail.LegalForm, detail.VATNo, detail.CreatedAt)
	return database.MapPostgresError(err)
}

func (r *DetailRepository) GetByID(ctx context.Context, id string) (*models.Detail, error) {
	query := `SELECT ` + detailColumns + ` FROM details WHERE id = $1`
	return scanDetailRow(r.pool.QueryRow(ctx, query, id))
}

// FirstBySupplier returns nil, nil when the supplier has no detail.
func (r *DetailRepository) FirstBySupplier(ctx context.Context, supplierID string) (*models.Detail, error) {
	query := `SELECT ` + detailColumns + ` FROM details WHERE supplier_id = $1 ORDER BY created_at, id LIMIT 1`

	detail, err := scanDetailRow(r.pool.QueryRow(ctx, query, supplierID))
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	return detail, err
}

func (r *DetailRepository) Update(ctx context.Context, id string, detail *models.Detail) (*models.Detail, error) {
	query := `
		UPDATE details SET company_type = $1, legal_form = $2, vat_no = $3
		WHERE id = $4
		RETURNING ` + detailColumns

	return scanDetailRow(r.pool.QueryRow(ctx, query, detail.CompanyType, detail.LegalForm, detail.VATNo, id))
}

// ExclusionRepository stores procurement exclusion grounds.
type ExclusionRepository struct {
	pool *pgxpool.Pool
}

func NewExclusionRepository(db *database.DB) *ExclusionRepository {
	return &ExclusionRepository{pool: db.Pool}
}

const exclusionColumns = `id, supplier_id, mandatory, discretionary, exclusion_date, created_at`

func scanExclusionRow(scanner rowScanner) (*models.Exclusion, error) {
	var e models.Exclusion
	if err := scanner.Scan(&e.ID, &e.SupplierID, &e.Mandatory, &e.Discretionary, &e.ExclusionDate, &e.CreatedAt); err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &e, nil
}

func (r *ExclusionRepository) Create(ctx context.Context, exclusion *models.Exclusion) error {
	exclusion.ID = uuid.New().String()
	exclusion.CreatedAt = time.Now()

	query := `INSERT INTO exclusions (` + exclusionColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, query,
		exclusion.ID, exclusion.SupplierID, exclusion.Mandatory, exclusion.Discretionary,
		exclusion.ExclusionDate, exclusion.CreatedAt)
	return database.MapPostgresError(err)
}

func (r *ExclusionRepository) GetByID(ctx context.Context, id string) (*models.Exclusion, error) {
	query := `SELECT ` + exclusionColumns + ` FROM exclusions WHERE id = $1`
	return scanExclusionRow(r.pool.QueryRow(ctx, query, id))
}

// FirstBySupplier returns the oldest exclusion, or nil, nil when there is none.
func (r *ExclusionRepository) FirstBySupplier(ctx context.Context, supplierID string) (*models.Exclusion, error) {
	query := `SELECT ` + exclusionColumns + ` FROM exclusions WHERE supplier_id = $1 ORDER BY created_at, id LIMIT 1`

	exclusion, err := scanExclusionRow(r.pool.QueryRow(ctx, query, supplierID))
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	return exclusion, err
}

func (r *ExclusionRepository) Update(ctx context.Context, id string, exclusion *models.Exclusion) (*models.Exclusion, error) {
	query := `
		UPDATE exclusions SET mandatory = $1, discretionary = $2, exclusion_date = $3
		WHERE id = $4
		RETURNING ` + exclusionColumns

	return scanExclusionRow(r.pool.QueryRow(ctx, query,
		exclusion.Mandatory, exclusion.Discretionary, exclusion.ExclusionDate, id))
}
