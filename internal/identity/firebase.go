package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
)

// defaultIdentityToolkitURL is the Google Identity Toolkit REST endpoint used
// for password sign-in, which the Admin SDK does not expose.
const defaultIdentityToolkitURL = "https://identitytoolkit.googleapis.com/v1"

// firebaseProvider implements the Provider interface on top of the Firebase
// Admin SDK plus the Identity Toolkit REST API.
type firebaseProvider struct {
	client     *auth.Client
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// NewFirebaseProvider creates a Provider backed by Firebase Auth. apiKey is
// the project's web API key, required for the REST sign-in call.
func NewFirebaseProvider(client *auth.Client, apiKey string) Provider {
	if client == nil {
		panic("Firebase Auth client is not initialized for identity provider")
	}
	return &firebaseProvider{
		client:     client,
		apiKey:     apiKey,
		endpoint:   defaultIdentityToolkitURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// CreateAccount registers a new email/password credential via the Admin SDK.
func (p *firebaseProvider) CreateAccount(ctx context.Context, email, password string) (*Account, error) {
	params := (&auth.UserToCreate{}).Email(email).Password(password)
	record, err := p.client.CreateUser(ctx, params)
	if err != nil {
		return nil, classifyAdminError(err)
	}
	return accountFromRecord(record), nil
}

// SignIn verifies the credential through the Identity Toolkit
// accounts:signInWithPassword endpoint and resolves the full account state
// with a follow-up accounts:lookup call.
func (p *firebaseProvider) SignIn(ctx context.Context, email, password string) (*Account, error) {
	signInResp := struct {
		IDToken     string `json:"idToken"`
		LocalID     string `json:"localId"`
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
	}{}
	err := p.post(ctx, "accounts:signInWithPassword", map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &signInResp)
	if err != nil {
		return nil, err
	}

	lookupResp := struct {
		Users []struct {
			LocalID       string `json:"localId"`
			Email         string `json:"email"`
			DisplayName   string `json:"displayName"`
			PhotoURL      string `json:"photoUrl"`
			PhoneNumber   string `json:"phoneNumber"`
			EmailVerified bool   `json:"emailVerified"`
		} `json:"users"`
	}{}
	err = p.post(ctx, "accounts:lookup", map[string]interface{}{
		"idToken": signInResp.IDToken,
	}, &lookupResp)
	if err != nil || len(lookupResp.Users) == 0 {
		// The credential already verified; fall back to the sign-in payload
		// rather than failing the whole login on a lookup hiccup.
		return &Account{
			UID:         signInResp.LocalID,
			Email:       signInResp.Email,
			DisplayName: signInResp.DisplayName,
		}, nil
	}

	u := lookupResp.Users[0]
	return &Account{
		UID:           u.LocalID,
		Email:         u.Email,
		DisplayName:   u.DisplayName,
		PhotoURL:      u.PhotoURL,
		PhoneNumber:   u.PhoneNumber,
		EmailVerified: u.EmailVerified,
	}, nil
}

// SignOut revokes the account's refresh tokens, ending its provider sessions.
func (p *firebaseProvider) SignOut(ctx context.Context, uid string) error {
	if err := p.client.RevokeRefreshTokens(ctx, uid); err != nil {
		return classifyAdminError(err)
	}
	return nil
}

// UpdateDisplayName sets the display name on an existing account.
func (p *firebaseProvider) UpdateDisplayName(ctx context.Context, uid, name string) error {
	params := (&auth.UserToUpdate{}).DisplayName(name)
	if _, err := p.client.UpdateUser(ctx, uid, params); err != nil {
		return classifyAdminError(err)
	}
	return nil
}

// EmailVerificationLink generates a verification link for the address.
func (p *firebaseProvider) EmailVerificationLink(ctx context.Context, email string) (string, error) {
	link, err := p.client.EmailVerificationLink(ctx, email)
	if err != nil {
		return "", classifyAdminError(err)
	}
	return link, nil
}

// PasswordResetLink generates a password-reset link for the address.
func (p *firebaseProvider) PasswordResetLink(ctx context.Context, email string) (string, error) {
	link, err := p.client.PasswordResetLink(ctx, email)
	if err != nil {
		return "", classifyAdminError(err)
	}
	return link, nil
}

// post issues an Identity Toolkit REST call and decodes the response into out.
// Provider-rejected requests come back as *Error with the mapped kind.
func (p *firebaseProvider) post(ctx context.Context, action string, body map[string]interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return NewError(ErrUnknown, err)
	}

	url := fmt.Sprintf("%s/%s?key=%s", p.endpoint, action, p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return NewError(ErrUnknown, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return NewError(ErrNetwork, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return NewError(ErrNetwork, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := struct {
			Error struct {
				Code    int    `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}{}
		if err := json.Unmarshal(raw, &apiErr); err != nil {
			return NewError(ErrUnknown, fmt.Errorf("identity toolkit %s: status %d", action, resp.StatusCode))
		}
		return NewError(restErrorKind(apiErr.Error.Message),
			fmt.Errorf("identity toolkit %s: %s", action, apiErr.Error.Message))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return NewError(ErrUnknown, fmt.Errorf("identity toolkit %s: decoding response: %w", action, err))
	}
	return nil
}

// restErrorKind maps Identity Toolkit error codes onto the local taxonomy.
// Codes sometimes carry a suffix ("TOO_MANY_ATTEMPTS_TRY_LATER : ..."), so
// only the leading token is matched.
func restErrorKind(message string) ErrorKind {
	code := message
	if idx := strings.IndexAny(message, " :"); idx > 0 {
		code = message[:idx]
	}
	switch code {
	case "EMAIL_NOT_FOUND":
		return ErrUserNotFound
	case "INVALID_PASSWORD":
		return ErrWrongPassword
	case "INVALID_LOGIN_CREDENTIALS":
		return ErrInvalidCredential
	case "INVALID_EMAIL", "MISSING_EMAIL":
		return ErrInvalidEmail
	case "EMAIL_EXISTS":
		return ErrEmailAlreadyInUse
	case "WEAK_PASSWORD", "MISSING_PASSWORD":
		return ErrWeakPassword
	case "USER_DISABLED":
		return ErrUserDisabled
	case "TOO_MANY_ATTEMPTS_TRY_LATER":
		return ErrTooManyRequests
	case "OPERATION_NOT_ALLOWED":
		return ErrOperationNotAllowed
	default:
		return ErrUnknown
	}
}

// classifyAdminError maps Admin SDK failures onto the local taxonomy. The SDK
// exports predicates for server-side rejections; its client-side validation
// errors only carry messages.
func classifyAdminError(err error) error {
	switch {
	case auth.IsEmailAlreadyExists(err):
		return NewError(ErrEmailAlreadyInUse, err)
	case auth.IsUserNotFound(err):
		return NewError(ErrUserNotFound, err)
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "malformed email"):
		return NewError(ErrInvalidEmail, err)
	case strings.Contains(msg, "password must be"):
		return NewError(ErrWeakPassword, err)
	}
	return NewError(ErrUnknown, err)
}

func accountFromRecord(record *auth.UserRecord) *Account {
	return &Account{
		UID:           record.UID,
		Email:         record.Email,
		DisplayName:   record.DisplayName,
		PhoneNumber:   record.PhoneNumber,
		PhotoURL:      record.PhotoURL,
		EmailVerified: record.EmailVerified,
	}
}
