package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// restProvider builds a firebaseProvider pointed at a stub Identity Toolkit
// server. The Admin SDK client is nil, so only REST-backed calls may be used.
func restProvider(t *testing.T, handler http.HandlerFunc) *firebaseProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &firebaseProvider{
		apiKey:     "test-key",
		endpoint:   srv.URL,
		httpClient: srv.Client(),
	}
}

func TestSignInResolvesAccountThroughLookup(t *testing.T) {
	p := restProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "test-key", r.URL.Query().Get("key"))
		switch r.URL.Path {
		case "/accounts:signInWithPassword":
			w.Write([]byte(`{"idToken":"tok","localId":"uid-1","email":"a@b.com","displayName":"Ada"}`))
		case "/accounts:lookup":
			w.Write([]byte(`{"users":[{"localId":"uid-1","email":"a@b.com","displayName":"Ada","phoneNumber":"+15551234567","emailVerified":true}]}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	account, err := p.SignIn(context.Background(), "a@b.com", "abcdef")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", account.UID)
	assert.Equal(t, "a@b.com", account.Email)
	assert.Equal(t, "Ada", account.DisplayName)
	assert.Equal(t, "+15551234567", account.PhoneNumber)
	assert.True(t, account.EmailVerified)
}

func TestSignInFallsBackWhenLookupFails(t *testing.T) {
	p := restProvider(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/accounts:signInWithPassword":
			w.Write([]byte(`{"idToken":"tok","localId":"uid-1","email":"a@b.com","displayName":"Ada"}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":{"code":500,"message":"INTERNAL"}}`))
		}
	})

	account, err := p.SignIn(context.Background(), "a@b.com", "abcdef")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", account.UID)
	assert.Equal(t, "Ada", account.DisplayName)
	assert.False(t, account.EmailVerified)
}

func TestSignInMapsRejections(t *testing.T) {
	tests := []struct {
		name    string
		message string
		kind    ErrorKind
	}{
		{"unknown email", "EMAIL_NOT_FOUND", ErrUserNotFound},
		{"bad password", "INVALID_PASSWORD", ErrWrongPassword},
		{"merged credential code", "INVALID_LOGIN_CREDENTIALS", ErrInvalidCredential},
		{"disabled account", "USER_DISABLED", ErrUserDisabled},
		{"throttled with suffix", "TOO_MANY_ATTEMPTS_TRY_LATER : Try again later.", ErrTooManyRequests},
		{"unrecognized code", "SOMETHING_NEW", ErrUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := restProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error":{"code":400,"message":"` + tt.message + `"}}`))
			})

			_, err := p.SignIn(context.Background(), "a@b.com", "abcdef")
			require.Error(t, err)
			var perr *Error
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.kind, perr.Kind)
		})
	}
}

func TestSignInNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(nil)
	srv.Close() // force a connection error
	p := &firebaseProvider{apiKey: "test-key", endpoint: srv.URL, httpClient: http.DefaultClient}

	_, err := p.SignIn(context.Background(), "a@b.com", "abcdef")
	require.Error(t, err)
	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, ErrNetwork, perr.Kind)
}

func TestRestErrorKindMatchesLeadingTokenOnly(t *testing.T) {
	assert.Equal(t, ErrWeakPassword, restErrorKind("WEAK_PASSWORD : Password should be at least 6 characters"))
	assert.Equal(t, ErrInvalidEmail, restErrorKind("MISSING_EMAIL"))
	assert.Equal(t, ErrUnknown, restErrorKind(""))
}
