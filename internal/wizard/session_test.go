package wizard_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/srm/internal/models"
	"github.com/BradenHooton/srm/internal/store"
	"github.com/BradenHooton/srm/internal/wizard"
)

func TestParseStep(t *testing.T) {
	for _, step := range wizard.Steps {
		parsed, err := wizard.ParseStep(step.String())
		require.NoError(t, err)
		assert.Equal(t, step, parsed)
	}

	for _, name := range []string{"", "complete", "Customer", "details"} {
		_, err := wizard.ParseStep(name)
		assert.True(t, errors.Is(err, models.ErrUnknownStep), name)
	}
}

func TestStep_NextIsLinear(t *testing.T) {
	assert.Equal(t, wizard.StepSupplier, wizard.StepCustomer.Next())
	assert.Equal(t, wizard.StepDetail, wizard.StepSupplier.Next())
	assert.Equal(t, wizard.StepExclusion, wizard.StepDetail.Next())
	assert.Equal(t, wizard.StepComplete, wizard.StepExclusion.Next())
}

func TestSession_JSON(t *testing.T) {
	session := &wizard.Session{
		CurrentStep:       wizard.StepDetail,
		PendingCustomerID: "c1",
		PendingSupplierID: "s1",
		Completed:         []wizard.Step{wizard.StepCustomer, wizard.StepSupplier},
	}

	raw, err := json.Marshal(session)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"current_step": "detail",
		"pending_customer_id": "c1",
		"pending_supplier_id": "s1",
		"completed": ["customer", "supplier"]
	}`, string(raw))

	var decoded wizard.Session
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, *session, decoded)

	assert.Error(t, json.Unmarshal([]byte(`{"current_step":"billing"}`), &decoded))
}

func TestSessionStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	memStore := store.NewMemoryStoreWithClock(func() time.Time { return now })
	sessions := wizard.NewSessionStore(memStore, time.Hour)

	fresh, err := sessions.Load(ctx, "browser-1")
	require.NoError(t, err)
	assert.True(t, fresh.Idle())

	fresh.CurrentStep = wizard.StepSupplier
	fresh.PendingCustomerID = "c1"
	require.NoError(t, sessions.Save(ctx, "browser-1", fresh))

	loaded, err := sessions.Load(ctx, "browser-1")
	require.NoError(t, err)
	assert.Equal(t, "c1", loaded.PendingCustomerID)
	assert.Equal(t, wizard.StepSupplier, loaded.CurrentStep)

	other, err := sessions.Load(ctx, "browser-2")
	require.NoError(t, err)
	assert.True(t, other.Idle())

	// saving an idle session removes it
	loaded.Reset()
	require.NoError(t, sessions.Save(ctx, "browser-1", loaded))
	assert.Equal(t, 0, memStore.Len())
}

func TestSessionStore_Expires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	memStore := store.NewMemoryStoreWithClock(func() time.Time { return now })
	sessions := wizard.NewSessionStore(memStore, time.Hour)

	require.NoError(t, sessions.Save(ctx, "browser-1", &wizard.Session{
		CurrentStep:       wizard.StepSupplier,
		PendingCustomerID: "c1",
	}))

	now = now.Add(time.Hour)

	loaded, err := sessions.Load(ctx, "browser-1")
	require.NoError(t, err)
	assert.True(t, loaded.Idle())
}

func TestSessionStore_CorruptValue(t *testing.T) {
	ctx := context.Background()
	memStore := store.NewMemoryStore()
	require.NoError(t, memStore.Set(ctx, "wizard:browser-1", "{not json", time.Hour))

	_, err := wizard.NewSessionStore(memStore, time.Hour).Load(ctx, "browser-1")
	assert.Error(t, err)
}
