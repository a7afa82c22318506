package wizard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/BradenHooton/srm/internal/store"
)

// Session is the carry-state of one browser's pass through the wizard.
// PendingSupplierID is only ever set while PendingCustomerID is.
type Session struct {
	CurrentStep       Step   `json:"current_step"`
	PendingCustomerID string `json:"pending_customer_id,omitempty"`
	PendingSupplierID string `json:"pending_supplier_id,omitempty"`
	Completed         []Step `json:"completed,omitempty"`
}

func NewSession() *Session {
	return &Session{CurrentStep: StepCustomer}
}

// Reset discards all carried state. Records already stored are kept.
func (s *Session) Reset() {
	*s = Session{CurrentStep: StepCustomer}
}

// Idle reports whether the session carries nothing.
func (s *Session) Idle() bool {
	return s.CurrentStep == StepCustomer && s.PendingCustomerID == "" && s.PendingSupplierID == ""
}

// SessionStore keeps Sessions in the expiring store keyed by browser session.
type SessionStore struct {
	store store.ExpiringStore
	ttl   time.Duration
}

func NewSessionStore(store store.ExpiringStore, ttl time.Duration) *SessionStore {
	return &SessionStore{store: store, ttl: ttl}
}

func sessionKey(sessionID string) string {
	return "wizard:" + sessionID
}

// Load returns the stored session or a fresh one if none exists.
func (s *SessionStore) Load(ctx context.Context, sessionID string) (*Session, error) {
	raw, ok, err := s.store.Get(ctx, sessionKey(sessionID))
	if err != nil {
		return nil, fmt.Errorf("failed to load wizard session: %w", err)
	}
	if !ok {
		return NewSession(), nil
	}

	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("failed to decode wizard session: %w", err)
	}
	return &session, nil
}

// Save stores session. An idle session is deleted instead.
func (s *SessionStore) Save(ctx context.Context, sessionID string, session *Session) error {
	if session.Idle() {
		return s.Delete(ctx, sessionID)
	}

	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode wizard session: %w", err)
	}
	if err := s.store.Set(ctx, sessionKey(sessionID), string(raw), s.ttl); err != nil {
		return fmt.Errorf("failed to save wizard session: %w", err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, sessionKey(sessionID)); err != nil {
		return fmt.Errorf("failed to delete wizard session: %w", err)
	}
	return nil
}
