package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/BradenHooton/srm/internal/auth"
	"github.com/BradenHooton/srm/internal/forms"
	"github.com/BradenHooton/srm/internal/models"
	pkgauth "github.com/BradenHooton/srm/pkg/auth"
	pkglogger "github.com/BradenHooton/srm/pkg/logger"
)

const (
	LoginSuccessNotice    = "You are logged in!"
	LogoutNotice          = "You have been logged out..."
	RegisteredNotice      = "You have successfully registered your details!"
	EmailRegisteredError  = "This email address is already registered."
	UsernameTakenError    = "A user with that username already exists."
	registrationErrorText = "Registration form has errors."
)

// LockedNotice is shown while a client is locked out.
func LockedNotice(minutes int) string {
	return fmt.Sprintf("Account temporarily locked due to too many failed attempts. Please try again in %d minutes.", minutes)
}

// IncorrectCredentialsNotice is shown after a failure that did not lock.
func IncorrectCredentialsNotice(remaining int) string {
	return fmt.Sprintf("Incorrect email or password. %d attempts remaining before temporary lockout.", remaining)
}

// UserRepository defines the user persistence operations used by AuthService.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
}

// SessionRevocationRepository records ended sessions.
type SessionRevocationRepository interface {
	RevokeSession(ctx context.Context, jti, userID string, expiresAt time.Time, reason string) error
}

// WizardSessions drops a browser's wizard state on logout.
type WizardSessions interface {
	Delete(ctx context.Context, sessionID string) error
}

// AuthResult carries a freshly issued session and the notice to flash.
type AuthResult struct {
	User   *models.User
	Token  string
	Claims *models.SessionClaims
	Notice string
}

// LoginFailure is returned alongside models.ErrUnauthorized or
// models.ErrAccountLocked and carries the notice to show.
type LoginFailure struct {
	Status models.LoginAttemptStatus
	Notice string
	err    error
}

func (f *LoginFailure) Error() string { return f.Notice }
func (f *LoginFailure) Unwrap() error { return f.err }

// AuthService handles registration, login and logout.
type AuthService struct {
	users       UserRepository
	revocations SessionRevocationRepository
	guard       *LoginGuard
	sessions    *auth.SessionManager
	wizard      WizardSessions
	forms       *forms.Validator
	email       EmailService
	timingDelay *auth.TimingDelay
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

func NewAuthService(
	users UserRepository,
	revocations SessionRevocationRepository,
	guard *LoginGuard,
	sessions *auth.SessionManager,
	wizard WizardSessions,
	validator *forms.Validator,
	email EmailService,
	timingDelay *auth.TimingDelay,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *AuthService {
	return &AuthService{
		users:       users,
		revocations: revocations,
		guard:       guard,
		sessions:    sessions,
		wizard:      wizard,
		forms:       validator,
		email:       email,
		timingDelay: timingDelay,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// Login checks the guard, then the credentials. While (ip, username) is
// locked out the password is never compared.
//
// Failures return a *LoginFailure wrapping models.ErrAccountLocked or
// models.ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, ip, username, password string) (*AuthResult, error) {
	start := time.Now()
	username = strings.TrimSpace(username)
	key := models.LoginClientKey{IPAddress: ip, Username: username}
	event := pkglogger.AuditEvent{EventType: "login", Username: username, IPAddress: ip}

	if status := s.guard.CheckStatus(ctx, key); status.Blocked {
		event.FailureReason = "locked_out"
		s.auditLogger.LogAuthAttempt(ctx, event)
		s.timingDelay.WaitFrom(start, false)
		return nil, &LoginFailure{Status: status, Notice: LockedNotice(status.BlockMinutesRemaining), err: models.ErrAccountLocked}
	}

	user, err := s.verifyCredentials(ctx, username, password)
	if err != nil {
		if !errors.Is(err, models.ErrUnauthorized) {
			s.timingDelay.WaitFrom(start, false)
			return nil, err
		}

		s.logger.Warn("failed login attempt", slog.String("username", pkglogger.MaskIdentifier(username)))
		status := s.guard.RecordFailure(ctx, key)
		s.timingDelay.WaitFrom(start, false)

		if status.Blocked {
			event.FailureReason = "locked_out"
			s.auditLogger.LogAuthAttempt(ctx, event)
			return nil, &LoginFailure{Status: status, Notice: LockedNotice(status.BlockMinutesRemaining), err: models.ErrAccountLocked}
		}
		event.FailureReason = "invalid_credentials"
		s.auditLogger.LogAuthAttempt(ctx, event)
		return nil, &LoginFailure{Status: status, Notice: IncorrectCredentialsNotice(status.AttemptsRemaining), err: models.ErrUnauthorized}
	}

	s.guard.RecordSuccess(ctx, key)

	result, err := s.startSession(user, LoginSuccessNotice)
	if err != nil {
		return nil, err
	}

	event.UserID = user.ID
	event.Success = true
	s.auditLogger.LogAuthAttempt(ctx, event)
	s.timingDelay.WaitFrom(start, true)

	return result, nil
}

// verifyCredentials returns models.ErrUnauthorized for an unknown user or a
// wrong password. A dummy hash is compared for unknown users so both take
// about the same time.
func (s *AuthService) verifyCredentials(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, models.ErrUnauthorized
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			_ = pkgauth.ComparePassword(dummyHash, password)
			return nil, models.ErrUnauthorized
		}
		s.logger.Error("failed to get user by username", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, models.ErrUnauthorized
	}
	return user, nil
}

// dummyHash is a bcrypt hash of a random string at BcryptCost.
const dummyHash = "$2a$12$C6UzMDM.H6dfI/f/IKxGhuWJ1J/5xkD9ZsaAiytR6gnwi3kEyNpdu"

// Register validates the signup form, creates the user and signs them in.
// Invalid input returns models.ErrValidation with the field errors.
func (s *AuthService) Register(ctx context.Context, values url.Values, ip string) (*AuthResult, forms.FieldErrors, error) {
	form, fieldErrors := s.forms.Register(values)
	if fieldErrors == nil {
		fieldErrors = forms.FieldErrors{}
	}

	// Uniqueness is only worth checking for fields that are otherwise valid.
	if !fieldErrors.Has("email") {
		if err := s.checkUnique(ctx, "email", strings.TrimSpace(values.Get("email")), s.users.GetByEmail, EmailRegisteredError, fieldErrors); err != nil {
			return nil, nil, err
		}
	}
	if !fieldErrors.Has("username") {
		if err := s.checkUnique(ctx, "username", strings.TrimSpace(values.Get("username")), s.users.GetByUsername, UsernameTakenError, fieldErrors); err != nil {
			return nil, nil, err
		}
	}

	if !fieldErrors.Empty() {
		s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
			EventType:     "register",
			Username:      strings.TrimSpace(values.Get("username")),
			IPAddress:     ip,
			FailureReason: "validation_failed",
		})
		return nil, fieldErrors, fmt.Errorf("%s: %w", registrationErrorText, models.ErrValidation)
	}

	hashedPassword, err := pkgauth.HashPassword(form.Password1)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, nil, models.ErrInternalServer
	}

	user, err := s.users.Create(ctx, &models.User{
		Username:     form.Username,
		FirstName:    form.FirstName,
		LastName:     form.LastName,
		Email:        form.Email,
		PasswordHash: hashedPassword,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			// Lost a race with a concurrent signup.
			return nil, forms.FieldErrors{forms.NonFieldErrors: {UsernameTakenError}}, fmt.Errorf("%s: %w", registrationErrorText, models.ErrValidation)
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, nil, models.ErrInternalServer
	}

	result, err := s.startSession(user, RegisteredNotice)
	if err != nil {
		return nil, nil, err
	}

	if err := s.email.SendWelcomeEmail(ctx, user); err != nil {
		s.logger.Warn("welcome email not sent", slog.String("user_id", user.ID), slog.Any("error", err))
	}

	s.logger.Info("user registered", slog.String("user_id", user.ID))
	s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
		EventType: "register",
		UserID:    user.ID,
		Username:  user.Username,
		IPAddress: ip,
		Success:   true,
	})

	return result, nil, nil
}

func (s *AuthService) checkUnique(
	ctx context.Context,
	field, value string,
	lookup func(context.Context, string) (*models.User, error),
	message string,
	fieldErrors forms.FieldErrors,
) error {
	if value == "" {
		return nil
	}
	_, err := lookup(ctx, value)
	switch {
	case err == nil:
		fieldErrors.Add(field, message)
		return nil
	case errors.Is(err, models.ErrNotFound):
		return nil
	default:
		s.logger.Error("failed to check "+field+" uniqueness", slog.Any("error", err))
		return models.ErrInternalServer
	}
}

// Logout revokes the session until its natural expiry and drops any wizard
// progress tied to it.
func (s *AuthService) Logout(ctx context.Context, claims *models.SessionClaims, ip string) error {
	expiresAt := time.Now().Add(s.sessions.Lifetime())
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	if err := s.revocations.RevokeSession(ctx, claims.ID, claims.UserID, expiresAt, "logout"); err != nil {
		s.logger.Error("failed to revoke session", slog.String("user_id", claims.UserID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.wizard.Delete(ctx, claims.SessionID()); err != nil {
		s.logger.Warn("failed to clear wizard session", slog.String("user_id", claims.UserID), slog.Any("error", err))
	}

	s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
		EventType: "logout",
		UserID:    claims.UserID,
		Username:  claims.Username,
		IPAddress: ip,
		Success:   true,
	})
	return nil
}

func (s *AuthService) startSession(user *models.User, notice string) (*AuthResult, error) {
	token, claims, err := s.sessions.Issue(user)
	if err != nil {
		s.logger.Error("failed to issue session", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return &AuthResult{User: user, Token: token, Claims: claims, Notice: notice}, nil
}
