package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"omanga-backend-go/internal/db"
	"omanga-backend-go/internal/identity"
	"omanga-backend-go/internal/models"
)

// -------- test fakes --------

type fakeProvider struct {
	account *identity.Account

	createErr  error
	signInErr  error
	signOutErr error
	nameErr    error
	verifyErr  error
	resetErr   error

	displayName     string
	signOutCalls    int
	verifyLinkCalls int
	resetLinkCalls  int
}

func (f *fakeProvider) CreateAccount(ctx context.Context, email, password string) (*identity.Account, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	acc := *f.account
	acc.Email = email
	return &acc, nil
}

func (f *fakeProvider) SignIn(ctx context.Context, email, password string) (*identity.Account, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	acc := *f.account
	acc.Email = email
	return &acc, nil
}

func (f *fakeProvider) SignOut(ctx context.Context, uid string) error {
	f.signOutCalls++
	return f.signOutErr
}

func (f *fakeProvider) UpdateDisplayName(ctx context.Context, uid, name string) error {
	if f.nameErr != nil {
		return f.nameErr
	}
	f.displayName = name
	return nil
}

func (f *fakeProvider) EmailVerificationLink(ctx context.Context, email string) (string, error) {
	f.verifyLinkCalls++
	if f.verifyErr != nil {
		return "", f.verifyErr
	}
	return "https://example.com/verify", nil
}

func (f *fakeProvider) PasswordResetLink(ctx context.Context, email string) (string, error) {
	f.resetLinkCalls++
	if f.resetErr != nil {
		return "", f.resetErr
	}
	return "https://example.com/reset", nil
}

type fakeUserRepo struct {
	profiles map[string]*models.UserProfile

	getErr    error
	createErr error
	updateErr error

	createCalls int
	updateCalls int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{profiles: make(map[string]*models.UserProfile)}
}

func (f *fakeUserRepo) GetByID(ctx context.Context, uid string) (*models.UserProfile, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.profiles[uid]
	if !ok {
		return nil, db.ErrNotFound
	}
	return p, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, profile *models.UserProfile) error {
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.profiles[profile.UID]; ok {
		return db.ErrAlreadyExists
	}
	f.profiles[profile.UID] = profile
	return nil
}

func (f *fakeUserRepo) UpdatePartial(ctx context.Context, uid string, fields map[string]interface{}) error {
	f.updateCalls++
	if f.updateErr != nil {
		return f.updateErr
	}
	p, ok := f.profiles[uid]
	if !ok {
		return db.ErrNotFound
	}
	if name, ok := fields["name"].(string); ok {
		p.Name = name
	}
	if phone, ok := fields["phone"].(string); ok {
		p.Phone = phone
	}
	p.UpdatedAt = time.Now().UTC()
	return nil
}

type fakeSessionRepo struct {
	appended []*models.Session

	appendErr error
	closeErr  error

	closedFor []string
}

func (f *fakeSessionRepo) Append(ctx context.Context, session *models.Session) (string, error) {
	if f.appendErr != nil {
		return "", f.appendErr
	}
	f.appended = append(f.appended, session)
	return "session-1", nil
}

func (f *fakeSessionRepo) CloseAllForUser(ctx context.Context, userID string, at time.Time) (int, error) {
	if f.closeErr != nil {
		return 0, f.closeErr
	}
	f.closedFor = append(f.closedFor, userID)
	return 1, nil
}

type fakeMailer struct {
	sent []string // recipients
	err  error
}

func (f *fakeMailer) Send(to, subject, htmlBody string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
}

type fakePublisher struct {
	events []string
	err    error
}

func (f *fakePublisher) Publish(event string, payload map[string]interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

// -------- helpers --------

func newTestService(t *testing.T) (*authService, *fakeProvider, *fakeUserRepo, *fakeSessionRepo, *fakeMailer, *fakePublisher) {
	t.Helper()
	provider := &fakeProvider{account: &identity.Account{UID: "uid-1"}}
	users := newFakeUserRepo()
	sessions := &fakeSessionRepo{}
	mail := &fakeMailer{}
	events := &fakePublisher{}
	svc := NewAuthService(provider, users, sessions, mail, events, zap.NewNop()).(*authService)
	return svc, provider, users, sessions, mail, events
}

func signUpParams() SignUpParams {
	return SignUpParams{
		Email:    "a@b.com",
		Password: "abcdef",
		Phone:    "+15551234567",
		Name:     "Ada",
	}
}

// -------- tests --------

func TestSignUpCreatesExactlyOneProfile(t *testing.T) {
	svc, provider, users, _, mail, events := newTestService(t)

	result := svc.SignUp(context.Background(), signUpParams())

	require.True(t, result.Success, "sign up should succeed: %s", result.Error)
	require.NotNil(t, result.User)
	require.Len(t, users.profiles, 1)

	profile := users.profiles["uid-1"]
	assert.Equal(t, "a@b.com", profile.Email)
	assert.Equal(t, "+15551234567", profile.Phone)
	assert.Equal(t, "Ada", profile.Name)
	assert.NotNil(t, profile.Preferences.SelectedPackages)
	assert.Empty(t, profile.Preferences.SelectedPackages)
	assert.Equal(t, models.DefaultCurrency, profile.Preferences.DefaultCurrency)
	assert.Equal(t, models.KYCStatusNotStarted, profile.Verification.KYCStatus)
	assert.False(t, profile.Verification.EmailVerified)
	assert.True(t, profile.Verification.PhoneVerified)

	assert.Equal(t, "Ada", provider.displayName)
	assert.Equal(t, []string{"a@b.com"}, mail.sent)
	assert.Equal(t, []string{EventUserSignedUp}, events.events)
	assert.True(t, svc.IsAuthenticated())
}

func TestSignUpProviderErrorCreatesNoProfile(t *testing.T) {
	svc, provider, users, _, _, _ := newTestService(t)
	provider.createErr = identity.NewError(identity.ErrEmailAlreadyInUse, errors.New("exists"))

	result := svc.SignUp(context.Background(), signUpParams())

	require.False(t, result.Success)
	assert.Equal(t, "An account with this email already exists.", result.Error)
	assert.Zero(t, users.createCalls)
	assert.Empty(t, users.profiles)
	assert.False(t, svc.IsAuthenticated())
}

func TestSignUpVerificationEmailFailureIsSwallowed(t *testing.T) {
	svc, provider, _, _, _, _ := newTestService(t)
	provider.verifyErr = errors.New("link generation down")

	result := svc.SignUp(context.Background(), signUpParams())

	require.True(t, result.Success)
}

func TestCreateUserDocumentIsIdempotent(t *testing.T) {
	svc, _, users, _, _, _ := newTestService(t)
	account := &identity.Account{UID: "uid-1", Email: "a@b.com"}

	first, err := svc.createUserDocument(context.Background(), account, "+15551234567", "Ada")
	require.NoError(t, err)
	second, err := svc.createUserDocument(context.Background(), account, "+15551234567", "Ada")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, users.createCalls, "second call must perform no write")
}

func TestLoginWithoutProfileSucceedsWithNilUser(t *testing.T) {
	svc, _, _, sessions, _, _ := newTestService(t)

	result := svc.Login(context.Background(), LoginParams{Email: "a@b.com", Password: "abcdef"})

	require.True(t, result.Success)
	assert.Nil(t, result.User)
	assert.True(t, svc.IsAuthenticated())
	require.Len(t, sessions.appended, 1)
	assert.Equal(t, "uid-1", sessions.appended[0].UserID)
	assert.True(t, sessions.appended[0].IsActive)
}

func TestLoginRejectedByProvider(t *testing.T) {
	svc, provider, _, sessions, _, _ := newTestService(t)
	provider.signInErr = identity.NewError(identity.ErrWrongPassword, errors.New("denied"))

	result := svc.Login(context.Background(), LoginParams{Email: "a@b.com", Password: "nope"})

	require.False(t, result.Success)
	assert.Equal(t, "Incorrect password. Please try again.", result.Error)
	assert.Empty(t, sessions.appended)
	assert.False(t, svc.IsAuthenticated())
	assert.Equal(t, PhaseUnauthenticated, svc.Phase())
}

func TestLoginAuditFailureIsSwallowed(t *testing.T) {
	svc, _, _, sessions, _, _ := newTestService(t)
	sessions.appendErr = errors.New("store down")

	result := svc.Login(context.Background(), LoginParams{Email: "a@b.com", Password: "abcdef"})

	require.True(t, result.Success)
	assert.True(t, svc.IsAuthenticated())
}

func TestLogoutClearsSnapshotWhenBatchFails(t *testing.T) {
	svc, _, _, sessions, _, _ := newTestService(t)
	require.True(t, svc.Login(context.Background(), LoginParams{Email: "a@b.com", Password: "abcdef"}).Success)
	sessions.closeErr = errors.New("batch commit failed")

	result := svc.Logout(context.Background())

	require.True(t, result.Success)
	assert.Nil(t, svc.CurrentUser())
	assert.Nil(t, svc.CurrentProfile())
	assert.False(t, svc.IsAuthenticated())
}

func TestLogoutClearsSnapshotWhenSignOutFails(t *testing.T) {
	svc, provider, _, _, _, _ := newTestService(t)
	require.True(t, svc.Login(context.Background(), LoginParams{Email: "a@b.com", Password: "abcdef"}).Success)
	provider.signOutErr = identity.NewError(identity.ErrUnknown, errors.New("revoke failed"))

	result := svc.Logout(context.Background())

	require.False(t, result.Success)
	assert.Nil(t, svc.CurrentUser())
	assert.False(t, svc.IsAuthenticated())
}

func TestLogoutClosesActiveSessions(t *testing.T) {
	svc, _, _, sessions, _, _ := newTestService(t)
	require.True(t, svc.Login(context.Background(), LoginParams{Email: "a@b.com", Password: "abcdef"}).Success)

	result := svc.Logout(context.Background())

	require.True(t, result.Success)
	assert.Equal(t, []string{"uid-1"}, sessions.closedFor)
}

func TestResetPasswordMapsInvalidEmail(t *testing.T) {
	svc, provider, _, _, _, _ := newTestService(t)
	provider.resetErr = identity.NewError(identity.ErrInvalidEmail, errors.New("bad address"))

	result := svc.ResetPassword(context.Background(), "not-an-email")

	require.False(t, result.Success)
	assert.Equal(t, "Please enter a valid email address.", result.Error)
}

func TestResetPasswordSendsEmail(t *testing.T) {
	svc, _, _, _, mail, _ := newTestService(t)

	result := svc.ResetPassword(context.Background(), "a@b.com")

	require.True(t, result.Success)
	assert.Equal(t, []string{"a@b.com"}, mail.sent)
}

func TestUpdateProfileRequiresAuthenticatedUser(t *testing.T) {
	svc, _, _, _, _, _ := newTestService(t)

	result := svc.UpdateProfile(context.Background(), map[string]interface{}{"name": "Grace"})

	require.False(t, result.Success)
	assert.Equal(t, noAuthenticatedUserMsg, result.Error)
}

func TestUpdateProfileRefreshesSnapshotFromStore(t *testing.T) {
	svc, _, users, _, _, _ := newTestService(t)
	require.True(t, svc.SignUp(context.Background(), signUpParams()).Success)

	result := svc.UpdateProfile(context.Background(), map[string]interface{}{"name": "Grace"})

	require.True(t, result.Success)
	require.NotNil(t, result.User)
	assert.Equal(t, "Grace", result.User.Name)
	// the snapshot must come from a fresh store read, not the payload
	assert.Same(t, users.profiles["uid-1"], svc.CurrentProfile())
	assert.Equal(t, 1, users.updateCalls)
}

func TestSubscribeReceivesSessionChanges(t *testing.T) {
	svc, _, _, _, _, _ := newTestService(t)
	ch, unsubscribe := svc.Subscribe()

	require.True(t, svc.Login(context.Background(), LoginParams{Email: "a@b.com", Password: "abcdef"}).Success)

	var phases []AuthPhase
	for len(phases) < 2 {
		select {
		case change := <-ch:
			phases = append(phases, change.Phase)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for state changes")
		}
	}
	assert.Equal(t, []AuthPhase{PhaseAuthenticating, PhaseAuthenticated}, phases)

	unsubscribe()
	_, open := <-ch
	assert.False(t, open, "unsubscribe must close the channel")

	// further transitions must not panic with the subscriber gone
	svc.Logout(context.Background())
}
