package core

import (
	"sync"

	"omanga-backend-go/internal/identity"
	"omanga-backend-go/internal/models"
)

// AuthState is a reactive view over an AuthService subscription. It mirrors
// the latest session snapshot so consumers can read state without calling
// into the service, and it picks up changes the consumer did not trigger
// itself. The subscription is acquired on construction and released by Close.
type AuthState struct {
	unsubscribe func()
	done        chan struct{}

	mu      sync.RWMutex
	phase   AuthPhase
	user    *identity.Account
	profile *models.UserProfile
}

// NewAuthState subscribes to the service and starts mirroring its state.
func NewAuthState(svc AuthService) *AuthState {
	ch, unsubscribe := svc.Subscribe()
	st := &AuthState{
		unsubscribe: unsubscribe,
		done:        make(chan struct{}),
		phase:       svc.Phase(),
		user:        svc.CurrentUser(),
		profile:     svc.CurrentProfile(),
	}

	go func() {
		defer close(st.done)
		for change := range ch {
			st.mu.Lock()
			st.phase = change.Phase
			st.user = change.User
			st.profile = change.Profile
			st.mu.Unlock()
		}
	}()

	return st
}

// User returns the mirrored account, or nil when signed out.
func (st *AuthState) User() *identity.Account {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.user
}

// Profile returns the mirrored profile document. It can be nil even while
// authenticated, when the store holds no document for the account.
func (st *AuthState) Profile() *models.UserProfile {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.profile
}

// IsAuthenticated reports whether an account is signed in.
func (st *AuthState) IsAuthenticated() bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.user != nil
}

// IsLoading reports whether an auth operation is in flight.
func (st *AuthState) IsLoading() bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.phase == PhaseAuthenticating
}

// Phase returns the mirrored lifecycle phase.
func (st *AuthState) Phase() AuthPhase {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.phase
}

// Close releases the subscription and waits for the mirroring goroutine to
// finish. Safe to call more than once.
func (st *AuthState) Close() {
	st.unsubscribe()
	<-st.done
}
