package wizard_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/srm/internal/forms"
	"github.com/BradenHooton/srm/internal/models"
	"github.com/BradenHooton/srm/internal/wizard"
)

// fakeRecords is an in-memory RecordGateway.
type fakeRecords struct {
	seq        int
	customers  []*models.Customer
	suppliers  []*models.Supplier
	details    []*models.Detail
	exclusions []*models.Exclusion
	failWith   error
}

func (f *fakeRecords) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeRecords) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	if f.failWith != nil {
		return f.failWith
	}
	customer.ID = f.nextID("cust")
	f.customers = append(f.customers, customer)
	return nil
}

func (f *fakeRecords) CreateSupplier(ctx context.Context, supplier *models.Supplier) error {
	if f.failWith != nil {
		return f.failWith
	}
	supplier.ID = f.nextID("supp")
	f.suppliers = append(f.suppliers, supplier)
	return nil
}

func (f *fakeRecords) CreateDetail(ctx context.Context, detail *models.Detail) error {
	if f.failWith != nil {
		return f.failWith
	}
	detail.ID = f.nextID("det")
	f.details = append(f.details, detail)
	return nil
}

func (f *fakeRecords) CreateExclusion(ctx context.Context, exclusion *models.Exclusion) error {
	if f.failWith != nil {
		return f.failWith
	}
	exclusion.ID = f.nextID("excl")
	f.exclusions = append(f.exclusions, exclusion)
	return nil
}

func newMachine() (*wizard.Machine, *fakeRecords) {
	records := &fakeRecords{}
	validator := forms.NewValidatorWithClock(func() time.Time {
		return time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	})
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return wizard.NewMachine(validator, records, logger), records
}

var stepValues = map[wizard.Step]url.Values{
	wizard.StepCustomer: {
		"first_name": {"jane"},
		"last_name":  {"doe"},
		"email":      {"jane@example.com"},
		"phone":      {"+447946095800"},
		"address":    {"12 high street"},
		"city":       {"london"},
		"country":    {"england"},
		"postcode":   {"sw1a 1aa"},
	},
	wizard.StepSupplier: {
		"supplier_name":     {"acme supplies"},
		"supplier_email":    {"sales@acme.example"},
		"supplier_phone":    {"020 7946 0958"},
		"supplier_address":  {"1 industrial estate"},
		"supplier_city":     {"leeds"},
		"supplier_country":  {"england"},
		"supplier_postcode": {"ls1 4ap"},
	},
	wizard.StepDetail: {
		"company_type": {"IT Services"},
		"legal_form":   {"Limited Company"},
		"vat_no":       {"gb123456789"},
	},
	wizard.StepExclusion: {
		"mandatory":      {"Theft"},
		"discretionary":  {"None"},
		"exclusion_date": {"2023-03-27"},
	},
}

func TestSubmitStep_FullRunLinksEveryRecord(t *testing.T) {
	machine, records := newMachine()
	ctx := context.Background()
	session := wizard.NewSession()

	var last *wizard.StepResult
	for _, step := range wizard.Steps {
		result, err := machine.SubmitStep(ctx, session, step, stepValues[step])
		require.NoError(t, err, step.String())
		assert.Equal(t, step.String()+" added...", result.Notice)
		last = result
	}

	require.Len(t, records.customers, 1)
	require.Len(t, records.suppliers, 1)
	require.Len(t, records.details, 1)
	require.Len(t, records.exclusions, 1)

	customerID := records.customers[0].ID
	supplierID := records.suppliers[0].ID
	assert.Equal(t, customerID, records.suppliers[0].CustomerID)
	assert.Equal(t, supplierID, records.details[0].SupplierID)
	assert.Equal(t, supplierID, records.exclusions[0].SupplierID)

	assert.True(t, last.Done())
	assert.Equal(t, wizard.StepComplete, last.Next)
	assert.True(t, session.Idle())
	assert.Empty(t, session.PendingCustomerID)
	assert.Empty(t, session.PendingSupplierID)
	assert.Equal(t, wizard.StepCustomer, machine.Current(session))
}

func TestSubmitStep_CarriesIdentifiers(t *testing.T) {
	machine, _ := newMachine()
	ctx := context.Background()
	session := wizard.NewSession()

	customer, err := machine.SubmitStep(ctx, session, wizard.StepCustomer, stepValues[wizard.StepCustomer])
	require.NoError(t, err)
	assert.Equal(t, customer.RecordID, session.PendingCustomerID)
	assert.Empty(t, session.PendingSupplierID)
	assert.Equal(t, wizard.StepSupplier, session.CurrentStep)

	supplier, err := machine.SubmitStep(ctx, session, wizard.StepSupplier, stepValues[wizard.StepSupplier])
	require.NoError(t, err)
	assert.Equal(t, supplier.RecordID, session.PendingSupplierID)
	assert.Equal(t, wizard.StepDetail, session.CurrentStep)
	assert.Equal(t, []wizard.Step{wizard.StepCustomer, wizard.StepSupplier}, session.Completed)
}

func TestSubmitStep_SupplierWithoutCustomer(t *testing.T) {
	machine, records := newMachine()
	session := wizard.NewSession()

	result, err := machine.SubmitStep(context.Background(), session, wizard.StepSupplier, stepValues[wizard.StepSupplier])

	assert.True(t, errors.Is(err, models.ErrMissingPrerequisite))
	assert.Empty(t, records.suppliers)
	assert.Equal(t, wizard.StepCustomer, session.CurrentStep)
	assert.Equal(t, wizard.RestartNotice, result.Notice)
	assert.Equal(t, wizard.StepCustomer, result.Next)
}

func TestSubmitStep_DetailAndExclusionRequireSupplier(t *testing.T) {
	for _, step := range []wizard.Step{wizard.StepDetail, wizard.StepExclusion} {
		t.Run(step.String(), func(t *testing.T) {
			machine, records := newMachine()
			ctx := context.Background()
			session := wizard.NewSession()

			_, err := machine.SubmitStep(ctx, session, wizard.StepCustomer, stepValues[wizard.StepCustomer])
			require.NoError(t, err)

			_, err = machine.SubmitStep(ctx, session, step, stepValues[step])

			assert.True(t, errors.Is(err, models.ErrMissingPrerequisite))
			assert.Empty(t, records.details)
			assert.Empty(t, records.exclusions)
			// the carried customer is dropped and the flow restarts
			assert.True(t, session.Idle())
		})
	}
}

func TestSubmitStep_EarlierStepIsOutOfOrder(t *testing.T) {
	machine, records := newMachine()
	ctx := context.Background()
	session := wizard.NewSession()

	_, err := machine.SubmitStep(ctx, session, wizard.StepCustomer, stepValues[wizard.StepCustomer])
	require.NoError(t, err)
	_, err = machine.SubmitStep(ctx, session, wizard.StepSupplier, stepValues[wizard.StepSupplier])
	require.NoError(t, err)
	before := *session

	result, err := machine.SubmitStep(ctx, session, wizard.StepSupplier, stepValues[wizard.StepSupplier])

	assert.True(t, errors.Is(err, models.ErrStepOutOfOrder))
	assert.Equal(t, "Please continue with the detail step.", result.Notice)
	assert.Equal(t, before, *session)
	assert.Len(t, records.suppliers, 1)
}

func TestSubmitStep_SkippingAheadIsOutOfOrder(t *testing.T) {
	machine, records := newMachine()
	ctx := context.Background()
	session := wizard.NewSession()

	for _, step := range []wizard.Step{wizard.StepCustomer, wizard.StepSupplier} {
		_, err := machine.SubmitStep(ctx, session, step, stepValues[step])
		require.NoError(t, err)
	}

	_, err := machine.SubmitStep(ctx, session, wizard.StepExclusion, stepValues[wizard.StepExclusion])

	assert.True(t, errors.Is(err, models.ErrStepOutOfOrder))
	assert.Empty(t, records.exclusions)
	assert.Equal(t, wizard.StepDetail, session.CurrentStep)
}

func TestSubmitStep_ValidationFailureKeepsState(t *testing.T) {
	machine, records := newMachine()
	session := wizard.NewSession()

	values := url.Values{}
	for key, value := range stepValues[wizard.StepCustomer] {
		values[key] = value
	}
	values.Set("postcode", "!!")

	result, err := machine.SubmitStep(context.Background(), session, wizard.StepCustomer, values)

	assert.True(t, errors.Is(err, models.ErrValidation))
	assert.True(t, result.Errors.Has("postcode"))
	assert.Equal(t, "customer form has errors.", result.Notice)
	assert.Empty(t, records.customers)
	assert.True(t, session.Idle())
}

func TestSubmitStep_ResubmissionCreatesDuplicates(t *testing.T) {
	machine, records := newMachine()
	ctx := context.Background()

	// two requests racing on the same stored session each see the customer step
	first := wizard.NewSession()
	second := wizard.NewSession()

	_, err := machine.SubmitStep(ctx, first, wizard.StepCustomer, stepValues[wizard.StepCustomer])
	require.NoError(t, err)
	_, err = machine.SubmitStep(ctx, second, wizard.StepCustomer, stepValues[wizard.StepCustomer])
	require.NoError(t, err)

	require.Len(t, records.customers, 2)
	assert.NotEqual(t, records.customers[0].ID, records.customers[1].ID)
}

func TestSubmitStep_GatewayErrorKeepsState(t *testing.T) {
	machine, records := newMachine()
	records.failWith = errors.New("connection reset")
	session := wizard.NewSession()

	_, err := machine.SubmitStep(context.Background(), session, wizard.StepCustomer, stepValues[wizard.StepCustomer])

	assert.ErrorContains(t, err, "connection reset")
	assert.True(t, session.Idle())
}

func TestSubmitStep_RejectsUnknownStep(t *testing.T) {
	machine, _ := newMachine()

	_, err := machine.SubmitStep(context.Background(), wizard.NewSession(), wizard.StepComplete, url.Values{})

	assert.True(t, errors.Is(err, models.ErrUnknownStep))
}

func TestReset(t *testing.T) {
	machine, _ := newMachine()
	session := wizard.NewSession()

	_, err := machine.SubmitStep(context.Background(), session, wizard.StepCustomer, stepValues[wizard.StepCustomer])
	require.NoError(t, err)

	machine.Reset(session)

	assert.True(t, session.Idle())
	assert.Empty(t, session.Completed)
}
