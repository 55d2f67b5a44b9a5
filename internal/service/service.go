package service

import (
	sf "secureforms"
	"secureforms/internal/repository"
)

// Availability is the outcome of a uniqueness probe. A store failure is
// reported as its own state instead of being folded into "taken", so callers
// can tell infrastructure trouble apart from a genuinely used name.
type Availability int

const (
	Available Availability = iota
	Taken
	AvailabilityUnknown
)

func (a Availability) String() string {
	switch a {
	case Available:
		return "available"
	case Taken:
		return "taken"
	default:
		return "unknown"
	}
}

// Accounts exposes the account store operations the HTTP layer consumes.
type Accounts interface {
	LoadByUsername(username string) (*sf.User, error)
	Create(username, email, role, password, accountType string) error
	CheckUsername(username string) Availability
	CheckEmail(email string) Availability
	ResolveUsernameFromEmail(email string) (string, error)
	VerifyPassword(username, plaintext string) error
}

// Root Service aggregates all sub-services.
type Service struct {
	Accounts
}

// NewService wires the repository layer into concrete services.
func NewService(repos *repository.Repository) *Service {
	return &Service{
		Accounts: NewAccountService(repos.Accounts),
	}
}
