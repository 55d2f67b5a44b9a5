package repository

import (
	"database/sql"

	sf "secureforms"
)

// Accounts is the minimal query/response contract the service layer depends
// on. Each method maps to a single parameterized statement.
type Accounts interface {
	GetByUsername(username string) (*sf.User, error)
	Insert(username, email, role, accountType, passwordHash string) error
	CountByUsername(username string) (int, error)
	CountByEmail(email string) (int, error)
	GetUsernameByEmail(email string) (string, error)
	GetPasswordHash(username string) (string, error)
}

type Repository struct {
	Accounts Accounts
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Accounts: NewAccountRepository(db),
	}
}
