// Package wizard runs the four-step customer → supplier → detail → exclusion
// creation flow. Each step's record is stored as soon as it validates and its
// id is carried forward so the next record can be linked to it.
package wizard

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/BradenHooton/srm/internal/forms"
	"github.com/BradenHooton/srm/internal/models"
)

// RestartNotice is shown when a step arrives without the record it must link to.
const RestartNotice = "Please start again from the customer step"

// RecordGateway stores the records created by the wizard. Each Create fills
// in the record's ID.
type RecordGateway interface {
	CreateCustomer(ctx context.Context, customer *models.Customer) error
	CreateSupplier(ctx context.Context, supplier *models.Supplier) error
	CreateDetail(ctx context.Context, detail *models.Detail) error
	CreateExclusion(ctx context.Context, exclusion *models.Exclusion) error
}

// StepResult describes the outcome of one submission.
type StepResult struct {
	Step     Step              `json:"step"`
	Next     Step              `json:"next"`
	RecordID string            `json:"record_id,omitempty"`
	Notice   string            `json:"notice,omitempty"`
	Errors   forms.FieldErrors `json:"errors,omitempty"`
}

// Done reports whether the submission finished the flow.
func (r *StepResult) Done() bool {
	return r.Next == StepComplete
}

type Machine struct {
	forms   *forms.Validator
	records RecordGateway
	logger  *slog.Logger
}

func NewMachine(validator *forms.Validator, records RecordGateway, logger *slog.Logger) *Machine {
	return &Machine{
		forms:   validator,
		records: records,
		logger:  logger,
	}
}

// Current reports the step session is waiting on.
func (m *Machine) Current(session *Session) Step {
	return session.CurrentStep
}

// Reset abandons the flow. Records already stored stay where they are.
func (m *Machine) Reset(session *Session) {
	session.Reset()
}

// SubmitStep validates values for step and, if valid, stores the record and
// advances session.
//
// Errors:
//   - models.ErrMissingPrerequisite: the step's parent id is not carried. No
//     record is stored and session is reset to the customer step.
//   - models.ErrStepOutOfOrder: step is not the one session is waiting on.
//     session is unchanged.
//   - models.ErrValidation: result.Errors holds the field errors. session is
//     unchanged.
//
// Every valid submission stores a new record; repeated submissions are not
// collapsed.
func (m *Machine) SubmitStep(ctx context.Context, session *Session, step Step, values url.Values) (*StepResult, error) {
	if step < StepCustomer || step > StepExclusion {
		return nil, fmt.Errorf("%s: %w", step, models.ErrUnknownStep)
	}

	result := &StepResult{Step: step, Next: session.CurrentStep}

	if !m.hasPrerequisite(session, step) {
		m.logger.Warn("wizard step missing prerequisite",
			slog.String("step", step.String()),
			slog.String("current_step", session.CurrentStep.String()))

		session.Reset()
		result.Next = session.CurrentStep
		result.Notice = RestartNotice
		return result, fmt.Errorf("%s step: %w", step, models.ErrMissingPrerequisite)
	}

	if step != session.CurrentStep {
		result.Notice = fmt.Sprintf("Please continue with the %s step.", session.CurrentStep)
		return result, fmt.Errorf("%s step while waiting on %s: %w", step, session.CurrentStep, models.ErrStepOutOfOrder)
	}

	recordID, fieldErrors, err := m.store(ctx, session, step, values)
	if err != nil {
		return nil, err
	}
	if fieldErrors != nil {
		result.Errors = fieldErrors
		result.Notice = fmt.Sprintf("%s form has errors.", step)
		return result, fmt.Errorf("%s step: %w", step, models.ErrValidation)
	}

	m.advance(session, step, recordID)

	result.RecordID = recordID
	result.Next = step.Next()
	result.Notice = fmt.Sprintf("%s added...", step)

	m.logger.Info("wizard step stored",
		slog.String("step", step.String()),
		slog.String("record_id", recordID))

	return result, nil
}

// hasPrerequisite reports whether the parent id step links to is carried.
func (m *Machine) hasPrerequisite(session *Session, step Step) bool {
	switch step {
	case StepCustomer:
		return true
	case StepSupplier:
		return session.PendingCustomerID != ""
	case StepDetail, StepExclusion:
		return session.PendingSupplierID != ""
	default:
		return false
	}
}

// store validates values and creates the step's record linked to the carried
// parent id.
func (m *Machine) store(ctx context.Context, session *Session, step Step, values url.Values) (string, forms.FieldErrors, error) {
	switch step {
	case StepCustomer:
		customer, fieldErrors := m.forms.Customer(values)
		if fieldErrors != nil {
			return "", fieldErrors, nil
		}
		if err := m.records.CreateCustomer(ctx, customer); err != nil {
			return "", nil, fmt.Errorf("failed to create customer: %w", err)
		}
		return customer.ID, nil, nil

	case StepSupplier:
		supplier, fieldErrors := m.forms.Supplier(values)
		if fieldErrors != nil {
			return "", fieldErrors, nil
		}
		supplier.CustomerID = session.PendingCustomerID
		if err := m.records.CreateSupplier(ctx, supplier); err != nil {
			return "", nil, fmt.Errorf("failed to create supplier: %w", err)
		}
		return supplier.ID, nil, nil

	case StepDetail:
		detail, fieldErrors := m.forms.Detail(values)
		if fieldErrors != nil {
			return "", fieldErrors, nil
		}
		detail.SupplierID = session.PendingSupplierID
		if err := m.records.CreateDetail(ctx, detail); err != nil {
			return "", nil, fmt.Errorf("failed to create detail: %w", err)
		}
		return detail.ID, nil, nil

	case StepExclusion:
		exclusion, fieldErrors := m.forms.Exclusion(values)
		if fieldErrors != nil {
			return "", fieldErrors, nil
		}
		exclusion.SupplierID = session.PendingSupplierID
		if err := m.records.CreateExclusion(ctx, exclusion); err != nil {
			return "", nil, fmt.Errorf("failed to create exclusion: %w", err)
		}
		return exclusion.ID, nil, nil

	default:
		return "", nil, fmt.Errorf("%s: %w", step, models.ErrUnknownStep)
	}
}

// advance records the stored step in session. Finishing the exclusion step
// clears all carried ids.
func (m *Machine) advance(session *Session, step Step, recordID string) {
	switch step {
	case StepCustomer:
		session.PendingCustomerID = recordID
	case StepSupplier:
		session.PendingSupplierID = recordID
	case StepExclusion:
		session.Reset()
		return
	}
	session.Completed = append(session.Completed, step)
	session.CurrentStep = step.Next()
}
