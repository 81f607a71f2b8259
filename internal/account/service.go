// ABOUTME: Account service orchestrating registration, login, and password reset
// ABOUTME: Owns email normalization and the anti-enumeration guarantees

package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/orbiplay/orbi-auth/internal/auth"
	"github.com/orbiplay/orbi-auth/internal/mail"
	"github.com/orbiplay/orbi-auth/internal/reset"
	"github.com/orbiplay/orbi-auth/internal/store"
)

// minPasswordLength applies to reset flows (and mirrors the frontend rule).
const minPasswordLength = 6

// mailTimeout bounds a single outbound reset-code delivery.
const mailTimeout = 10 * time.Second

// Service implements the account flows on top of the store, the reset-code
// manager, the admin gate, and the mail notifier.
type Service struct {
	store    store.Store
	resets   *reset.Manager
	notifier mail.Notifier
	admin    *auth.AdminGate
	logger   *slog.Logger

	// dummySalt keeps login timing uniform when the user does not exist:
	// a full derivation is burned against this salt instead of returning
	// early.
	dummySalt string

	sends sync.WaitGroup
}

// NewService creates the account service.
func NewService(st store.Store, resets *reset.Manager, notifier mail.Notifier, admin *auth.AdminGate) (*Service, error) {
	dummySalt, err := auth.NewSalt()
	if err != nil {
		return nil, fmt.Errorf("creating dummy salt: %w", err)
	}

	return &Service{
		store:     st,
		resets:    resets,
		notifier:  notifier,
		admin:     admin,
		logger:    slog.Default().With("component", "account"),
		dummySalt: dummySalt,
	}, nil
}

// Wait blocks until all in-flight mail sends have finished. Called during
// graceful shutdown (and by tests).
func (s *Service) Wait() {
	s.sends.Wait()
}

// Register creates a new account with a fresh salt and PBKDF2 digest.
func (s *Service) Register(ctx context.Context, email, password, name string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return ErrValidation
	}

	salt, err := auth.NewSalt()
	if err != nil {
		return fmt.Errorf("generating salt: %w", err)
	}
	digest, err := auth.Derive(password, salt)
	if err != nil {
		return fmt.Errorf("deriving password digest: %w", err)
	}

	user := &store.User{
		ID:         uuid.New().String(),
		Email:      email,
		Name:       name,
		PassHash:   digest,
		Salt:       salt,
		HashScheme: store.SchemePBKDF2,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateUser) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("registered user", "email", email)
	return nil
}

// Login verifies a password and returns the user's display name. Missing
// users and wrong passwords are the same failure, and both cost a full
// digest derivation.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", ErrValidation
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn a derivation so a missing account is not
			// distinguishable from a wrong password by timing.
			auth.Verify(password, s.dummySalt, "", store.SchemePBKDF2)
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("loading user: %w", err)
	}

	if !auth.Verify(password, user.Salt, user.PassHash, user.HashScheme) {
		return "", ErrInvalidCredentials
	}

	if user.HashScheme != store.SchemePBKDF2 {
		s.upgradeCredentials(ctx, email, password)
	}

	return user.Name, nil
}

// upgradeCredentials re-derives a legacy row under the current scheme.
// Best-effort: the login already succeeded, a failed upgrade only logs.
func (s *Service) upgradeCredentials(ctx context.Context, email, password string) {
	salt, err := auth.NewSalt()
	if err != nil {
		s.logger.Warn("hash upgrade skipped", "email", email, "error", err)
		return
	}
	digest, err := auth.Derive(password, salt)
	if err != nil {
		s.logger.Warn("hash upgrade skipped", "email", email, "error", err)
		return
	}
	if err := s.store.UpdateCredentials(ctx, email, digest, salt, store.SchemePBKDF2); err != nil {
		s.logger.Warn("hash upgrade failed", "email", email, "error", err)
		return
	}
	s.logger.Info("upgraded legacy password hash", "email", email)
}

// RequestReset issues a reset code for an email and delivers it by mail if
// the account exists. The outcome is identical either way: the code row is
// stored regardless, mail delivery is detached from the request, and the
// caller always sees success unless the store itself fails.
func (s *Service) RequestReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return ErrValidation
	}

	userExists := true
	if _, err := s.store.GetUserByEmail(ctx, email); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("loading user: %w", err)
		}
		userExists = false
	}

	code, err := s.resets.Issue(ctx, email)
	if err != nil {
		return fmt.Errorf("issuing reset code: %w", err)
	}

	if userExists {
		s.sends.Add(1)
		go func() {
			defer s.sends.Done()

			sendCtx, cancel := context.WithTimeout(context.Background(), mailTimeout)
			defer cancel()

			if err := s.notifier.SendResetCode(sendCtx, email, code); err != nil {
				s.logger.Error("reset code delivery failed", "email", email, "error", err)
			}
		}()
	}

	return nil
}

// ResetPassword validates a reset code and installs a new password. The
// code row is consumed only after the credential update lands.
func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = normalizeEmail(email)
	if email == "" || len(newPassword) < minPasswordLength {
		return ErrValidation
	}

	if err := s.resets.Validate(ctx, email, code); err != nil {
		return err
	}

	salt, err := auth.NewSalt()
	if err != nil {
		return fmt.Errorf("generating salt: %w", err)
	}
	digest, err := auth.Derive(newPassword, salt)
	if err != nil {
		return fmt.Errorf("deriving password digest: %w", err)
	}

	if err := s.store.UpdateCredentials(ctx, email, digest, salt, store.SchemePBKDF2); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// A valid code for an unregistered email: the row existed
			// only to keep request-reset responses uniform.
			return reset.ErrInvalidCode
		}
		return fmt.Errorf("updating credentials: %w", err)
	}

	if err := s.resets.Consume(ctx, email); err != nil {
		// The password change already landed; an unconsumed row only
		// matters until its expiry.
		s.logger.Warn("failed to consume reset code", "email", email, "error", err)
	}

	s.logger.Info("password reset completed", "email", email)
	return nil
}

// AdminLogin authenticates the configured admin account and returns a
// signed session token.
func (s *Service) AdminLogin(ctx context.Context, email, password string) (string, error) {
	token, err := s.admin.Login(email, password)
	if err != nil {
		return "", err
	}

	s.logger.Info("admin login", "email", normalizeEmail(email))
	return token, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
