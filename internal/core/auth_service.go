package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"omanga-backend-go/internal/db"
	"omanga-backend-go/internal/identity"
	"omanga-backend-go/internal/models"
)

// Auth lifecycle events published to the message queue.
const (
	EventUserSignedUp  = "user.signed_up"
	EventUserLoggedIn  = "user.logged_in"
	EventUserLoggedOut = "user.logged_out"
)

const noAuthenticatedUserMsg = "No authenticated user"

// authService implements the AuthService interface. It owns the in-memory
// snapshot of the current account and profile; concurrent calls are not
// serialized against each other, matching the at-most-one-attempt,
// no-mutual-exclusion contract of the operations.
type authService struct {
	provider identity.Provider
	users    db.UserRepository
	sessions db.SessionRepository
	mailer   Mailer         // optional
	events   EventPublisher // optional
	logger   *zap.Logger

	mu             sync.RWMutex
	phase          AuthPhase
	currentUser    *identity.Account
	currentProfile *models.UserProfile
	subs           map[int]chan StateChange
	nextSubID      int
}

// NewAuthService creates an AuthService. mailer and events may be nil, in
// which case email dispatch and event publishing are skipped.
func NewAuthService(
	provider identity.Provider,
	users db.UserRepository,
	sessions db.SessionRepository,
	mailer Mailer,
	events EventPublisher,
	logger *zap.Logger,
) AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &authService{
		provider: provider,
		users:    users,
		sessions: sessions,
		mailer:   mailer,
		events:   events,
		logger:   logger,
		phase:    PhaseUnauthenticated,
		subs:     make(map[int]chan StateChange),
	}
}

// SignUp creates a credential, sets the display name, creates the profile
// document and dispatches a verification email. The email dispatch is
// fire-and-forget; its failure never rolls back account creation. A provider
// rejection returns a mapped failure without creating a profile document.
func (s *authService) SignUp(ctx context.Context, params SignUpParams) AuthResult {
	s.setPhase(PhaseAuthenticating)

	account, err := s.provider.CreateAccount(ctx, params.Email, params.Password)
	if err != nil {
		s.logger.Warn("sign up rejected by identity provider", zap.String("email", params.Email), zap.Error(err))
		s.setPhase(PhaseUnauthenticated)
		return AuthResult{Success: false, Error: identity.MessageFor(err)}
	}

	if params.Name != "" {
		if err := s.provider.UpdateDisplayName(ctx, account.UID, params.Name); err != nil {
			// The credential exists but setup failed; surfaced as a failure.
			// There is no rollback of the created credential.
			s.logger.Error("failed to set display name on new account", zap.String("uid", account.UID), zap.Error(err))
			s.setPhase(PhaseUnauthenticated)
			return AuthResult{Success: false, Error: identity.MessageFor(err)}
		}
		account.DisplayName = params.Name
	}

	profile, err := s.createUserDocument(ctx, account, params.Phone, params.Name)
	if err != nil {
		// Known gap: the credential stays behind if profile creation fails.
		s.logger.Error("failed to create profile document after sign up", zap.String("uid", account.UID), zap.Error(err))
		s.setPhase(PhaseUnauthenticated)
		return AuthResult{Success: false, Error: identity.MessageFor(err)}
	}

	s.sendVerificationEmail(ctx, account.Email)

	s.setSnapshot(account, profile)
	s.publishEvent(EventUserSignedUp, map[string]interface{}{"uid": account.UID, "email": account.Email})

	return AuthResult{Success: true, User: profile}
}

// Login authenticates the credential, fetches the profile document and
// appends a session audit record. A missing profile document is not a
// failure; callers must tolerate a nil profile on an authenticated session.
func (s *authService) Login(ctx context.Context, params LoginParams) AuthResult {
	s.setPhase(PhaseAuthenticating)

	account, err := s.provider.SignIn(ctx, params.Email, params.Password)
	if err != nil {
		s.logger.Warn("login rejected by identity provider", zap.String("email", params.Email), zap.Error(err))
		s.setPhase(PhaseUnauthenticated)
		return AuthResult{Success: false, Error: identity.MessageFor(err)}
	}

	profile, err := s.GetUserDocument(ctx, account.UID)
	if err != nil {
		s.logger.Error("failed to fetch profile during login", zap.String("uid", account.UID), zap.Error(err))
		s.setPhase(PhaseUnauthenticated)
		return AuthResult{Success: false, Error: identity.Message(identity.ErrUnknown)}
	}

	s.appendSession(ctx, account.UID, params.Device)

	s.setSnapshot(account, profile)
	s.publishEvent(EventUserLoggedIn, map[string]interface{}{"uid": account.UID})

	return AuthResult{Success: true, User: profile}
}

// ResetPassword dispatches a password-reset email. Whether the address maps
// to an account is the identity provider's decision.
func (s *authService) ResetPassword(ctx context.Context, email string) AuthResult {
	link, err := s.provider.PasswordResetLink(ctx, email)
	if err != nil {
		s.logger.Warn("password reset rejected by identity provider", zap.String("email", email), zap.Error(err))
		return AuthResult{Success: false, Error: identity.MessageFor(err)}
	}

	if s.mailer == nil {
		s.logger.Info("mailer not configured, skipping password reset email", zap.String("email", email))
		return AuthResult{Success: true}
	}

	if err := s.mailer.Send(email, "Reset your password",
		"<p>We received a request to reset your password.</p><p><a href=\""+link+"\">Choose a new password</a></p>"); err != nil {
		s.logger.Error("failed to send password reset email", zap.String("email", email), zap.Error(err))
		return AuthResult{Success: false, Error: identity.Message(identity.ErrUnknown)}
	}
	return AuthResult{Success: true}
}

// Logout closes all active session records for the current account in a
// single batch, ends the provider session and clears the in-memory snapshot.
// Audit-trail failures are swallowed; the snapshot is cleared once the
// provider sign-out settles, whether or not it succeeded.
func (s *authService) Logout(ctx context.Context) AuthResult {
	current := s.CurrentUser()
	if current == nil {
		s.clearSnapshot()
		return AuthResult{Success: true}
	}

	if closed, err := s.sessions.CloseAllForUser(ctx, current.UID, time.Now().UTC()); err != nil {
		s.logger.Warn("failed to close session audit records", zap.String("uid", current.UID), zap.Error(err))
	} else if closed > 0 {
		s.logger.Debug("closed session audit records", zap.String("uid", current.UID), zap.Int("count", closed))
	}

	signOutErr := s.provider.SignOut(ctx, current.UID)

	s.clearSnapshot()
	s.publishEvent(EventUserLoggedOut, map[string]interface{}{"uid": current.UID})

	if signOutErr != nil {
		s.logger.Error("provider sign out failed", zap.String("uid", current.UID), zap.Error(signOutErr))
		return AuthResult{Success: false, Error: identity.MessageFor(signOutErr)}
	}
	return AuthResult{Success: true}
}

// UpdateProfile applies a partial-field update to the current account's
// profile document, then refreshes the in-memory snapshot from the store
// rather than from the update payload.
func (s *authService) UpdateProfile(ctx context.Context, fields map[string]interface{}) AuthResult {
	current := s.CurrentUser()
	if current == nil {
		return AuthResult{Success: false, Error: noAuthenticatedUserMsg}
	}

	if err := s.users.UpdatePartial(ctx, current.UID, fields); err != nil {
		s.logger.Error("profile update failed", zap.String("uid", current.UID), zap.Error(err))
		return AuthResult{Success: false, Error: identity.Message(identity.ErrUnknown)}
	}

	profile, err := s.users.GetByID(ctx, current.UID)
	if err != nil {
		s.logger.Error("failed to refresh profile after update", zap.String("uid", current.UID), zap.Error(err))
		return AuthResult{Success: false, Error: identity.Message(identity.ErrUnknown)}
	}

	s.setSnapshot(current, profile)
	return AuthResult{Success: true, User: profile}
}

// GetUserDocument returns the profile document for an account ID. A missing
// document is a valid empty state, reported as (nil, nil).
func (s *authService) GetUserDocument(ctx context.Context, uid string) (*models.UserProfile, error) {
	profile, err := s.users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return profile, nil
}

// createUserDocument is the idempotent get-or-create primitive: a second
// creation attempt for an existing account ID returns the existing document
// and performs no write.
func (s *authService) createUserDocument(ctx context.Context, account *identity.Account, phone, name string) (*models.UserProfile, error) {
	existing, err := s.GetUserDocument(ctx, account.UID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	if phone == "" {
		phone = account.PhoneNumber
	}
	if name == "" {
		name = account.DisplayName
	}

	var picture *string
	if account.PhotoURL != "" {
		picture = &account.PhotoURL
	}

	now := time.Now().UTC()
	profile := &models.UserProfile{
		UID:   account.UID,
		Email: account.Email,
		Phone: phone,
		Name:  name,
		Profile: models.ProfileDetails{
			ProfilePicture: picture,
		},
		Preferences: models.Preferences{
			SelectedPackages: []string{},
			DefaultCurrency:  models.DefaultCurrency,
		},
		Verification: models.Verification{
			EmailVerified: account.EmailVerified,
			PhoneVerified: phone != "",
			KYCStatus:     models.KYCStatusNotStarted,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.users.Create(ctx, profile); err != nil {
		if errors.Is(err, db.ErrAlreadyExists) {
			// Lost a creation race; the existing document wins.
			return s.users.GetByID(ctx, account.UID)
		}
		return nil, err
	}
	return profile, nil
}

// sendVerificationEmail generates and dispatches the verification link.
// Failures are logged and swallowed.
func (s *authService) sendVerificationEmail(ctx context.Context, email string) {
	link, err := s.provider.EmailVerificationLink(ctx, email)
	if err != nil {
		s.logger.Warn("failed to generate verification link", zap.String("email", email), zap.Error(err))
		return
	}
	if s.mailer == nil {
		return
	}
	if err := s.mailer.Send(email, "Verify your email address",
		"<p>Welcome! Please confirm your email address.</p><p><a href=\""+link+"\">Verify email</a></p>"); err != nil {
		s.logger.Warn("failed to send verification email", zap.String("email", email), zap.Error(err))
	}
}

// appendSession writes the login audit record. Failures are swallowed; audit
// logging must never block a login.
func (s *authService) appendSession(ctx context.Context, uid string, device models.DeviceInfo) {
	if device.Platform == "" {
		device.Platform = "mobile"
	}
	session := &models.Session{
		UserID:   uid,
		Device:   device,
		LoginAt:  time.Now().UTC(),
		IsActive: true,
	}
	if _, err := s.sessions.Append(ctx, session); err != nil {
		s.logger.Warn("failed to append session audit record", zap.String("uid", uid), zap.Error(err))
	}
}

func (s *authService) publishEvent(event string, payload map[string]interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(event, payload); err != nil {
		s.logger.Warn("failed to publish auth event", zap.String("event", event), zap.Error(err))
	}
}

// --- snapshot and subscription state ---

func (s *authService) CurrentUser() *identity.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentUser
}

func (s *authService) CurrentProfile() *models.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentProfile
}

func (s *authService) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentUser != nil
}

func (s *authService) Phase() AuthPhase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// Subscribe registers a session-state listener. The returned func releases
// the subscription and closes the channel; calling it twice is safe.
func (s *authService) Subscribe() (<-chan StateChange, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan StateChange, 8)
	s.subs[id] = ch

	unsubscribe := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
	return ch, unsubscribe
}

func (s *authService) setPhase(phase AuthPhase) {
	s.mu.Lock()
	s.phase = phase
	change := StateChange{Phase: phase, User: s.currentUser, Profile: s.currentProfile}
	s.notifyLocked(change)
	s.mu.Unlock()
}

func (s *authService) setSnapshot(account *identity.Account, profile *models.UserProfile) {
	s.mu.Lock()
	s.currentUser = account
	s.currentProfile = profile
	s.phase = PhaseAuthenticated
	s.notifyLocked(StateChange{Phase: s.phase, User: account, Profile: profile})
	s.mu.Unlock()
}

func (s *authService) clearSnapshot() {
	s.mu.Lock()
	s.currentUser = nil
	s.currentProfile = nil
	s.phase = PhaseUnauthenticated
	s.notifyLocked(StateChange{Phase: s.phase})
	s.mu.Unlock()
}

// notifyLocked pushes the change to every subscriber without blocking.
// A subscriber whose buffer is full drops the update.
func (s *authService) notifyLocked(change StateChange) {
	for _, ch := range s.subs {
		select {
		case ch <- change:
		default:
		}
	}
}
