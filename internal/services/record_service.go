package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/BradenHooton/srm/internal/forms"
	"github.com/BradenHooton/srm/internal/models"
	pkglogger "github.com/BradenHooton/srm/pkg/logger"
)

// Notices shown after a successful change.
const (
	CustomerUpdatedNotice  = "Customer has been updated!"
	SupplierUpdatedNotice  = "Supplier has been updated!"
	DetailUpdatedNotice    = "Details have been updated!"
	ExclusionUpdatedNotice = "Exclusions have been updated!"
	CustomerDeletedNotice  = "Customer has been deleted!"
	SupplierDeletedNotice  = "Supplier has been deleted!"
)

// CustomerRepository defines the customer persistence operations.
type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, id string) (*models.Customer, error)
	List(ctx context.Context, limit, offset int) ([]*models.Customer, error)
	Update(ctx context.Context, id string, customer *models.Customer) (*models.Customer, error)
	Delete(ctx context.Context, id string) error
}

type SupplierRepository interface {
	Create(ctx context.Context, supplier *models.Supplier) error
	GetByID(ctx context.Context, id string) (*models.Supplier, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*models.Supplier, error)
	Update(ctx context.Context, id string, supplier *models.Supplier) (*models.Supplier, error)
	Delete(ctx context.Context, id string) error
}

type DetailRepository interface {
	Create(ctx context.Context, detail *models.Detail) error
	GetByID(ctx context.Context, id string) (*models.Detail, error)
	FirstBySupplier(ctx context.Context, supplierID string) (*models.Detail, error)
	Update(ctx context.Context, id string, detail *models.Detail) (*models.Detail, error)
}

type ExclusionRepository interface {
	Create(ctx context.Context, exclusion *models.Exclusion) error
	GetByID(ctx context.Context, id string) (*models.Exclusion, error)
	FirstBySupplier(ctx context.Context, supplierID string) (*models.Exclusion, error)
	Update(ctx context.Context, id string, exclusion *models.Exclusion) (*models.Exclusion, error)
}

// RecordService manages customers and everything hanging off them. It also
// serves as the wizard's record gateway.
type RecordService struct {
	customers   CustomerRepository
	suppliers   SupplierRepository
	details     DetailRepository
	exclusions  ExclusionRepository
	forms       *forms.Validator
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

func NewRecordService(
	customers CustomerRepository,
	suppliers SupplierRepository,
	details DetailRepository,
	exclusions ExclusionRepository,
	validator *forms.Validator,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *RecordService {
	return &RecordService{
		customers:   customers,
		suppliers:   suppliers,
		details:     details,
		exclusions:  exclusions,
		forms:       validator,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

func (s *RecordService) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	return s.customers.Create(ctx, customer)
}

func (s *RecordService) CreateSupplier(ctx context.Context, supplier *models.Supplier) error {
	return s.suppliers.Create(ctx, supplier)
}

func (s *RecordService) CreateDetail(ctx context.Context, detail *models.Detail) error {
	return s.details.Create(ctx, detail)
}

func (s *RecordService) CreateExclusion(ctx context.Context, exclusion *models.Exclusion) error {
	return s.exclusions.Create(ctx, exclusion)
}

// ListCustomers returns a page of customers, newest first.
func (s *RecordService) ListCustomers(ctx context.Context, limit, offset int) ([]*models.Customer, error) {
	customers, err := s.customers.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("failed to list customers", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return customers, nil
}

// CustomerRecord loads a customer with its suppliers and, per supplier, the
// first detail and first exclusion. A supplier without one gets nil in the
// matching slot.
func (s *RecordService) CustomerRecord(ctx context.Context, id string) (*models.CustomerRecord, error) {
	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, s.lookupError("customer", id, err)
	}

	suppliers, err := s.suppliers.ListByCustomer(ctx, customer.ID)
	if err != nil {
		s.logger.Error("failed to list suppliers", slog.String("customer_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	record := &models.CustomerRecord{
		Customer:   customer,
		Suppliers:  suppliers,
		Details:    make([]*models.Detail, len(suppliers)),
		Exclusions: make([]*models.Exclusion, len(suppliers)),
	}

	for i, supplier := range suppliers {
		detail, err := s.details.FirstBySupplier(ctx, supplier.ID)
		if err != nil {
			s.logger.Error("failed to load detail", slog.String("supplier_id", supplier.ID), slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
		exclusion, err := s.exclusions.FirstBySupplier(ctx, supplier.ID)
		if err != nil {
			s.logger.Error("failed to load exclusion", slog.String("supplier_id", supplier.ID), slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
		record.Details[i] = detail
		record.Exclusions[i] = exclusion
	}

	return record, nil
}

// UpdateCustomer validates values and overwrites customer id.
// Returns models.ErrNotFound for an unknown id and models.ErrValidation with
// the field errors when values are invalid.
func (s *RecordService) UpdateCustomer(ctx context.Context, id string, values url.Values, userID string) (*models.Customer, forms.FieldErrors, error) {
	if _, err := s.customers.GetByID(ctx, id); err != nil {
		return nil, nil, s.lookupError("customer", id, err)
	}

	customer, fieldErrors := s.forms.Customer(values)
	if fieldErrors != nil {
		return nil, fieldErrors, models.ErrValidation
	}

	updated, err := s.customers.Update(ctx, id, customer)
	if err != nil {
		return nil, nil, s.writeError("update", "customer", id, err)
	}

	s.auditLogger.LogRecordAction(ctx, "record_updated", "customer", id, userID)
	return updated, nil, nil
}

func (s *RecordService) UpdateSupplier(ctx context.Context, id string, values url.Values, userID string) (*models.Supplier, forms.FieldErrors, error) {
	if _, err := s.suppliers.GetByID(ctx, id); err != nil {
		return nil, nil, s.lookupError("supplier", id, err)
	}

	supplier, fieldErrors := s.forms.Supplier(values)
	if fieldErrors != nil {
		return nil, fieldErrors, models.ErrValidation
	}

	updated, err := s.suppliers.Update(ctx, id, supplier)
	if err != nil {
		return nil, nil, s.writeError("update", "supplier", id, err)
	}

	s.auditLogger.LogRecordAction(ctx, "record_updated", "supplier", id, userID)
	return updated, nil, nil
}

func (s *RecordService) UpdateDetail(ctx context.Context, id string, values url.Values, userID string) (*models.Detail, forms.FieldErrors, error) {
	if _, err := s.details.GetByID(ctx, id); err != nil {
		return nil, nil, s.lookupError("detail", id, err)
	}

	detail, fieldErrors := s.forms.Detail(values)
	if fieldErrors != nil {
		return nil, fieldErrors, models.ErrValidation
	}

	updated, err := s.details.Update(ctx, id, detail)
	if err != nil {
		return nil, nil, s.writeError("update", "detail", id, err)
	}

	s.auditLogger.LogRecordAction(ctx, "record_updated", "detail", id, userID)
	return updated, nil, nil
}

func (s *RecordService) UpdateExclusion(ctx context.Context, id string, values url.Values, userID string) (*models.Exclusion, forms.FieldErrors, error) {
	if _, err := s.exclusions.GetByID(ctx, id); err != nil {
		return nil, nil, s.lookupError("exclusion", id, err)
	}

	exclusion, fieldErrors := s.forms.Exclusion(values)
	if fieldErrors != nil {
		return nil, fieldErrors, models.ErrValidation
	}

	updated, err := s.exclusions.Update(ctx, id, exclusion)
	if err != nil {
		return nil, nil, s.writeError("update", "exclusion", id, err)
	}

	s.auditLogger.LogRecordAction(ctx, "record_updated", "exclusion", id, userID)
	return updated, nil, nil
}

// DeleteCustomer removes the customer and every record it owns.
func (s *RecordService) DeleteCustomer(ctx context.Context, id, userID string) error {
	if err := s.customers.Delete(ctx, id); err != nil {
		return s.writeError("delete", "customer", id, err)
	}
	s.auditLogger.LogRecordAction(ctx, "record_deleted", "customer", id, userID)
	return nil
}

func (s *RecordService) DeleteSupplier(ctx context.Context, id, userID string) error {
	if err := s.suppliers.Delete(ctx, id); err != nil {
		return s.writeError("delete", "supplier", id, err)
	}
	s.auditLogger.LogRecordAction(ctx, "record_deleted", "supplier", id, userID)
	return nil
}

func (s *RecordService) lookupError(recordType, id string, err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("%s %s: %w", recordType, id, models.ErrNotFound)
	}
	s.logger.Error("failed to load record",
		slog.String("record_type", recordType),
		slog.String("record_id", id),
		slog.Any("error", err))
	return models.ErrInternalServer
}

func (s *RecordService) writeError(action, recordType, id string, err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("%s %s: %w", recordType, id, models.ErrNotFound)
	}
	s.logger.Error("failed to "+action+" record",
		slog.String("record_type", recordType),
		slog.String("record_id", id),
		slog.Any("error", err))
	return models.ErrInternalServer
}
