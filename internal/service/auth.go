package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/campusmarket-server/internal/apierror"
	"github.com/dtroode/campusmarket-server/internal/ledger"
	"github.com/dtroode/campusmarket-server/internal/logger"
	"github.com/dtroode/campusmarket-server/internal/mailer"
	"github.com/dtroode/campusmarket-server/internal/model"
	"github.com/dtroode/campusmarket-server/internal/password"
)

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) bool
}

// AuthOptions holds registration rules and links used in outgoing mail.
type AuthOptions struct {
	AllowedSuffixes []string
	FrontendURL     string
}

// Auth drives the signup, verification, login and password reset workflows.
type Auth struct {
	userStore    model.UserStore
	domains      model.DomainValidator
	verification *ledger.Ledger
	reset        *ledger.Ledger
	tokenService *TokenService
	hasher       PasswordHasher
	mailer       model.Mailer
	opts         AuthOptions
	logger       *logger.Logger
}

func NewAuth(
	userStore model.UserStore,
	domains model.DomainValidator,
	verification *ledger.Ledger,
	reset *ledger.Ledger,
	tokenService *TokenService,
	hasher PasswordHasher,
	mailer model.Mailer,
	opts AuthOptions,
	logger *logger.Logger,
) *Auth {
	if len(opts.AllowedSuffixes) == 0 {
		opts.AllowedSuffixes = []string{".edu"}
	}
	return &Auth{
		userStore:    userStore,
		domains:      domains,
		verification: verification,
		reset:        reset,
		tokenService: tokenService,
		hasher:       hasher,
		mailer:       mailer,
		opts:         opts,
		logger:       logger,
	}
}

// Signup registers an unverified user.
func (a *Auth) Signup(ctx context.Context, params model.SignupParams) error {
	email := model.NormalizeEmail(params.Email)
	a.logger.Debug("Auth service: starting signup", "email", email)

	firstName := sanitizeText(params.FirstName)
	lastName := sanitizeText(params.LastName)
	university := strings.TrimSpace(params.University)
	if firstName == "" || lastName == "" || email == "" || params.Password == "" || university == "" {
		return apierror.NewErrValidation("firstName, lastName, email, password and university are required")
	}

	domain := model.EmailDomain(email)
	if domain == "" {
		return apierror.NewErrValidation("Invalid email address")
	}
	if !a.hasAllowedSuffix(email) {
		a.logger.Info("Auth service: non-institutional email rejected", "email", email)
		return apierror.NewErrNonInstitutionalEmail(a.opts.AllowedSuffixes)
	}

	_, err := a.userStore.GetByEmail(ctx, email)
	if err == nil {
		a.logger.Info("Auth service: user already exists", "email", email)
		return apierror.NewErrEmailIsTaken()
	}
	if !errors.Is(err, model.ErrNotFound) {
		a.logger.Error("Auth service: failed to get user by email",
			"email", email,
			"error", err.Error())
		return apierror.NewErrInternalServerError(fmt.Errorf("failed to get user by email: %w", err))
	}

	if !a.domains.IsAllowed(university, domain) {
		a.logger.Info("Auth service: email domain does not match university",
			"email", email,
			"university", university)
		return apierror.NewErrDomainMismatch()
	}

	if err := password.Validate(params.Password); err != nil {
		return apierror.NewErrWeakPassword()
	}

	hash, err := a.hasher.Hash(params.Password)
	if err != nil {
		a.logger.Error("Auth service: failed to hash password", "email", email, "error", err.Error())
		return apierror.NewErrInternalServerError(err)
	}

	now := time.Now().UTC()
	_, err = a.userStore.Create(ctx, model.User{
		ID:           uuid.New(),
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		University:   university,
		PasswordHash: hash,
		Verified:     false,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		// Lost a race with a concurrent signup for the same email.
		if errors.Is(err, model.ErrAlreadyExists) {
			return apierror.NewErrEmailIsTaken()
		}
		a.logger.Error("Auth service: failed to create user",
			"email", email,
			"error", err.Error())
		return apierror.NewErrInternalServerError(fmt.Errorf("failed to create user: %w", err))
	}

	a.logger.Info("Auth service: user registered", "email", email, "university", university)
	return nil
}

// RequestVerificationCode issues and mails a verification code. Unknown and
// already verified emails succeed without issuing anything.
func (a *Auth) RequestVerificationCode(ctx context.Context, email string) error {
	email = model.NormalizeEmail(email)
	if email == "" {
		return apierror.NewErrValidation("email is required")
	}

	user, err := a.userStore.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		a.logger.Info("Auth service: verification code requested for unknown email", "email", email)
		return nil
	}
	if err != nil {
		a.logger.Error("Auth service: failed to get user by email", "email", email, "error", err.Error())
		return apierror.NewErrInternalServerError(err)
	}
	if user.Verified {
		a.logger.Info("Auth service: verification code requested for verified user", "email", email)
		return nil
	}

	code, err := a.verification.Issue(ctx, email)
	if err != nil {
		return a.codeError(err, email)
	}

	if err := a.mailer.Send(ctx, mailer.VerificationMessage(email, code.Value)); err != nil {
		a.logger.Error("Auth service: failed to send verification code", "email", email, "error", err.Error())
		return apierror.NewErrInternalServerError(err)
	}

	a.logger.Info("Auth service: verification code sent", "email", email)
	return nil
}

// Verify consumes the verification code and marks the user verified.
func (a *Auth) Verify(ctx context.Context, email, code string) error {
	email = model.NormalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return apierror.NewErrValidation("email and code are required")
	}

	if _, err := a.verification.ConsumeForSubject(ctx, email, code); err != nil {
		return a.codeError(err, email)
	}

	if err := a.userStore.MarkVerified(ctx, email); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return apierror.NewErrUserNotFound()
		}
		a.logger.Error("Auth service: failed to mark user verified", "email", email, "error", err.Error())
		return apierror.NewErrInternalServerError(err)
	}

	a.logger.Info("Auth service: email verified", "email", email)
	return nil
}

// Login checks credentials of a verified user and returns a session token.
func (a *Auth) Login(ctx context.Context, email, plain string) (string, error) {
	email = model.NormalizeEmail(email)
	if email == "" || plain == "" {
		return "", apierror.NewErrValidation("email and password are required")
	}

	user, err := a.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return "", apierror.NewErrUserNotFound()
		}
		a.logger.Error("Auth service: failed to get user by email", "email", email, "error", err.Error())
		return "", apierror.NewErrInternalServerError(err)
	}

	if !user.Verified {
		a.logger.Info("Auth service: login of unverified user", "email", email)
		return "", apierror.NewErrNotVerified(email)
	}

	if !a.hasher.Compare(user.PasswordHash, plain) {
		a.logger.Info("Auth service: wrong password", "email", email)
		return "", apierror.NewErrInvalidCredentials()
	}

	token, err := a.tokenService.Issue(user)
	if err != nil {
		return "", apierror.NewErrInternalServerError(err)
	}

	a.logger.Info("Auth service: user logged in", "email", email)
	return token, nil
}

// ForgotPassword issues a reset token and mails a reset link.
func (a *Auth) ForgotPassword(ctx context.Context, email string) error {
	email = model.NormalizeEmail(email)
	if email == "" {
		return apierror.NewErrValidation("email is required")
	}

	if _, err := a.userStore.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return apierror.NewErrUserNotFound()
		}
		a.logger.Error("Auth service: failed to get user by email", "email", email, "error", err.Error())
		return apierror.NewErrInternalServerError(err)
	}

	code, err := a.reset.Issue(ctx, email)
	if err != nil {
		return a.codeError(err, email)
	}

	if err := a.mailer.Send(ctx, mailer.PasswordResetMessage(email, a.opts.FrontendURL, code.Value)); err != nil {
		a.logger.Error("Auth service: failed to send reset link", "email", email, "error", err.Error())
		return apierror.NewErrInternalServerError(err)
	}

	a.logger.Info("Auth service: password reset link sent", "email", email)
	return nil
}

// ResetPassword consumes the reset token and replaces the password hash.
func (a *Auth) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return apierror.NewErrValidation("code is required")
	}
	if err := password.Validate(newPassword); err != nil {
		return apierror.NewErrWeakPassword()
	}

	hash, err := a.hasher.Hash(newPassword)
	if err != nil {
		a.logger.Error("Auth service: failed to hash password", "error", err.Error())
		return apierror.NewErrInternalServerError(err)
	}

	code, err := a.reset.ConsumeByValue(ctx, token)
	if err != nil {
		return a.codeError(err, "")
	}

	if err := a.userStore.SetPasswordHash(ctx, code.Subject, hash); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return apierror.NewErrUserNotFound()
		}
		a.logger.Error("Auth service: failed to set password", "email", code.Subject, "error", err.Error())
		return apierror.NewErrInternalServerError(err)
	}

	a.logger.Info("Auth service: password reset", "email", code.Subject)
	return nil
}

func (a *Auth) hasAllowedSuffix(email string) bool {
	for _, suffix := range a.opts.AllowedSuffixes {
		if strings.HasSuffix(email, strings.ToLower(suffix)) {
			return true
		}
	}
	return false
}

func (a *Auth) codeError(err error, email string) error {
	var rateLimited *model.RateLimitedError
	switch {
	case errors.As(err, &rateLimited):
		return apierror.NewErrRateLimited(rateLimited.RetryAfterSeconds())
	case errors.Is(err, model.ErrCodeNotFound):
		return apierror.NewErrCodeNotFound()
	case errors.Is(err, model.ErrCodeInvalid):
		a.logger.Info("Auth service: invalid code supplied", "email", email)
		return apierror.NewErrCodeInvalid()
	case errors.Is(err, model.ErrCodeExpired):
		return apierror.NewErrCodeExpired()
	default:
		a.logger.Error("Auth service: code ledger failure", "email", email, "error", err.Error())
		return apierror.NewErrInternalServerError(err)
	}
}
