package services

import (
	"context"
	"time"

	"github.com/BradenHooton/srm/internal/models"
)

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	GetByIDFunc       func(ctx context.Context, id string) (*models.User, error)
	GetByUsernameFunc func(ctx context.Context, username string) (*models.User, error)
	GetByEmailFunc    func(ctx context.Context, email string) (*models.User, error)
	CreateFunc        func(ctx context.Context, user *models.User) (*models.User, error)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetByUsernameFunc != nil {
		return m.GetByUsernameFunc(ctx, username)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

// MockSessionRevocationRepository implements SessionRevocationRepository for testing
type MockSessionRevocationRepository struct {
	RevokeSessionFunc func(ctx context.Context, jti, userID string, expiresAt time.Time, reason string) error
}

func (m *MockSessionRevocationRepository) RevokeSession(ctx context.Context, jti, userID string, expiresAt time.Time, reason string) error {
	if m.RevokeSessionFunc != nil {
		return m.RevokeSessionFunc(ctx, jti, userID, expiresAt, reason)
	}
	return nil
}

// MockWizardSessions implements WizardSessions for testing
type MockWizardSessions struct {
	DeleteFunc func(ctx context.Context, sessionID string) error
}

func (m *MockWizardSessions) Delete(ctx context.Context, sessionID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, sessionID)
	}
	return nil
}

// MockEmailService implements EmailService for testing
type MockEmailService struct {
	SendWelcomeEmailFunc func(ctx context.Context, user *models.User) error
}

func (m *MockEmailService) SendWelcomeEmail(ctx context.Context, user *models.User) error {
	if m.SendWelcomeEmailFunc != nil {
		return m.SendWelcomeEmailFunc(ctx, user)
	}
	return nil
}

// MockCustomerRepository implements CustomerRepository for testing
type MockCustomerRepository struct {
	CreateFunc  func(ctx context.Context, customer *models.Customer) error
	GetByIDFunc func(ctx context.Context, id string) (*models.Customer, error)
	ListFunc    func(ctx context.Context, limit, offset int) ([]*models.Customer, error)
	UpdateFunc  func(ctx context.Context, id string, customer *models.Customer) (*models.Customer, error)
	DeleteFunc  func(ctx context.Context, id string) error
}

func (m *MockCustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, customer)
	}
	return nil
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockCustomerRepository) List(ctx context.Context, limit, offset int) ([]*models.Customer, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return []*models.Customer{}, nil
}

func (m *MockCustomerRepository) Update(ctx context.Context, id string, customer *models.Customer) (*models.Customer, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, customer)
	}
	customer.ID = id
	return customer, nil
}

func (m *MockCustomerRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockSupplierRepository implements SupplierRepository for testing
type MockSupplierRepository struct {
	CreateFunc         func(ctx context.Context, supplier *models.Supplier) error
	GetByIDFunc        func(ctx context.Context, id string) (*models.Supplier, error)
	ListByCustomerFunc func(ctx context.Context, customerID string) ([]*models.Supplier, error)
	UpdateFunc         func(ctx context.Context, id string, supplier *models.Supplier) (*models.Supplier, error)
	DeleteFunc         func(ctx context.Context, id string) error
}

func (m *MockSupplierRepository) Create(ctx context.Context, supplier *models.Supplier) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, supplier)
	}
	return nil
}

func (m *MockSupplierRepository) GetByID(ctx context.Context, id string) (*models.Supplier, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockSupplierRepository) ListByCustomer(ctx context.Context, customerID string) ([]*models.Supplier, error) {
	if m.ListByCustomerFunc != nil {
		return m.ListByCustomerFunc(ctx, customerID)
	}
	return []*models.Supplier{}, nil
}

func (m *MockSupplierRepository) Update(ctx context.Context, id string, supplier *models.Supplier) (*models.Supplier, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, supplier)
	}
	supplier.ID = id
	return supplier, nil
}

func (m *MockSupplierRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockDetailRepository implements DetailRepository for testing
type MockDetailRepository struct {
	CreateFunc          func(ctx context.Context, detail *models.Detail) error
	GetByIDFunc         func(ctx context.Context, id string) (*models.Detail, error)
	FirstBySupplierFunc func(ctx context.Context, supplierID string) (*models.Detail, error)
	UpdateFunc          func(ctx context.Context, id string, detail *models.Detail) (*models.Detail, error)
}

func (m *MockDetailRepository) Create(ctx context.Context, detail *models.Detail) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, detail)
	}
	return nil
}

func (m *MockDetailRepository) GetByID(ctx context.Context, id string) (*models.Detail, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockDetailRepository) FirstBySupplier(ctx context.Context, supplierID string) (*models.Detail, error) {
	if m.FirstBySupplierFunc != nil {
		return m.FirstBySupplierFunc(ctx, supplierID)
	}
	return nil, nil
}

func (m *MockDetailRepository) Update(ctx context.Context, id string, detail *models.Detail) (*models.Detail, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, detail)
	}
	detail.ID = id
	return detail, nil
}

// MockExclusionRepository implements ExclusionRepository for testing
type MockExclusionRepository struct {
	CreateFunc          func(ctx context.Context, exclusion *models.Exclusion) error
	GetByIDFunc         func(ctx context.Context, id string) (*models.Exclusion, error)
	FirstBySupplierFunc func(ctx context.Context, supplierID string) (*models.Exclusion, error)
	UpdateFunc          func(ctx context.Context, id string, exclusion *models.Exclusion) (*models.Exclusion, error)
}

func (m *MockExclusionRepository) Create(ctx context.Context, exclusion *models.Exclusion) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, exclusion)
	}
	return nil
}

func (m *MockExclusionRepository) GetByID(ctx context.Context, id string) (*models.Exclusion, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockExclusionRepository) FirstBySupplier(ctx context.Context, supplierID string) (*models.Exclusion, error) {
	if m.FirstBySupplierFunc != nil {
		return m.FirstBySupplierFunc(ctx, supplierID)
	}
	return nil, nil
}

func (m *MockExclusionRepository) Update(ctx context.Context, id string, exclusion *models.Exclusion) (*models.Exclusion, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, exclusion)
	}
	exclusion.ID = id
	return exclusion, nil
}

// NewTestUser creates a test user with sensible defaults
func NewTestUser(id, username, email string) *models.User {
	return &models.User{
		ID:        id,
		Username:  username,
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		TokenKey:  "token-key-" + id,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// NewTestUserWithPassword creates a test user with a specific password hash
func NewTestUserWithPassword(id, username, email, passwordHash string) *models.User {
	user := NewTestUser(id, username, email)
	user.PasswordHash = passwordHash
	return user
}
