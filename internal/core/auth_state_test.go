package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthStateMirrorsServiceLifecycle(t *testing.T) {
	svc, _, _, _, _, _ := newTestService(t)
	state := NewAuthState(svc)
	defer state.Close()

	assert.False(t, state.IsAuthenticated())
	assert.Equal(t, PhaseUnauthenticated, state.Phase())

	require.True(t, svc.SignUp(context.Background(), signUpParams()).Success)

	require.Eventually(t, state.IsAuthenticated, time.Second, 5*time.Millisecond)
	assert.Equal(t, PhaseAuthenticated, state.Phase())
	assert.Equal(t, "uid-1", state.User().UID)
	require.NotNil(t, state.Profile())
	assert.Equal(t, "a@b.com", state.Profile().Email)

	require.True(t, svc.Logout(context.Background()).Success)

	require.Eventually(t, func() bool { return !state.IsAuthenticated() }, time.Second, 5*time.Millisecond)
	assert.Nil(t, state.User())
	assert.Nil(t, state.Profile())
}

func TestAuthStateSeedsFromExistingSession(t *testing.T) {
	svc, _, _, _, _, _ := newTestService(t)
	require.True(t, svc.SignUp(context.Background(), signUpParams()).Success)

	state := NewAuthState(svc)
	defer state.Close()

	assert.True(t, state.IsAuthenticated())
	assert.Equal(t, "uid-1", state.User().UID)
}

func TestAuthStateCloseStopsMirroring(t *testing.T) {
	svc, _, _, _, _, _ := newTestService(t)
	state := NewAuthState(svc)

	state.Close()

	// a transition after Close must not reach the state holder
	require.True(t, svc.Login(context.Background(), LoginParams{Email: "a@b.com", Password: "abcdef"}).Success)
	assert.False(t, state.IsAuthenticated())
}
