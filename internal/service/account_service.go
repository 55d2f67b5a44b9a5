package service

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	sf "secureforms"
	"secureforms/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// Domain errors for account flows. Store failures are returned as wrapped
// opaque errors, distinct from all of these.
var (
	ErrNotFound        = errors.New("no such user")
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrInvalidPassword = errors.New("invalid password")
)

// AccountService implements the account store business operations on top of
// the data-access layer.
type AccountService struct {
	accounts repository.Accounts
}

func NewAccountService(accounts repository.Accounts) *AccountService {
	return &AccountService{accounts: accounts}
}

var _ Accounts = (*AccountService)(nil)

// LoadByUsername materializes the account view for a username. The returned
// User never carries the password hash. Returns ErrNotFound when no row
// matches.
func (s *AccountService) LoadByUsername(username string) (*sf.User, error) {
	u, err := s.accounts.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

// Create registers a new account. The email is validated before any store
// write; uniqueness violations surface as the store's wrapped error. An empty
// accountType defaults to DIRECT.
func (s *AccountService) Create(username, email, role, password, accountType string) error {
	if !validEmail(email) {
		return ErrInvalidEmail
	}

	hash, err := hashPassword(password)
	if err != nil {
		return fmt.Errorf("invalid password: %w", err)
	}

	if accountType == "" {
		accountType = sf.AccountTypeDirect
	}

	return s.accounts.Insert(username, email, role, accountType, hash)
}

// CheckUsername probes whether a username is free.
func (s *AccountService) CheckUsername(username string) Availability {
	n, err := s.accounts.CountByUsername(username)
	switch {
	case err != nil:
		return AvailabilityUnknown
	case n == 0:
		return Available
	default:
		return Taken
	}
}

// CheckEmail probes whether an email is free.
func (s *AccountService) CheckEmail(email string) Availability {
	n, err := s.accounts.CountByEmail(email)
	switch {
	case err != nil:
		return AvailabilityUnknown
	case n == 0:
		return Available
	default:
		return Taken
	}
}

// ResolveUsernameFromEmail maps an email to its username. Returns ErrNotFound
// when no account has the email.
func (s *AccountService) ResolveUsernameFromEmail(email string) (string, error) {
	username, err := s.accounts.GetUsernameByEmail(email)
	if err != nil {
		return "", err
	}
	if username == "" {
		return "", ErrNotFound
	}
	return username, nil
}

// VerifyPassword checks a plaintext against the stored credential. Returns
// ErrNotFound when no hash is stored for the username and ErrInvalidPassword
// on mismatch; the two cases are never conflated.
func (s *AccountService) VerifyPassword(username, plaintext string) error {
	hash, err := s.accounts.GetPasswordHash(username)
	if err != nil {
		return err
	}
	if hash == "" {
		return ErrNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)); err != nil {
		return ErrInvalidPassword
	}
	return nil
}

// helper: syntactic email check. The parsed address must round-trip so bare
// "user" or display-name forms are rejected.
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// helper: hash password safely
func hashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
