package repository

import (
	"database/sql"
	"errors"
	"fmt"

	sf "secureforms"
)

// AccountRepository is the data-access object for the users table. Every
// operation issues exactly one parameterized statement; no retries and no
// cross-operation transactions.
type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Ensure implementation of Accounts interface at compile time.
var _ Accounts = (*AccountRepository)(nil)

const (
	insertAccountSQL           = `INSERT INTO users (username, email, type, role, hashed_password) VALUES (?, ?, ?, ?, ?)`
	selectAccountByUsernameSQL = `SELECT username, email, type, role FROM users WHERE username = ?`
	countByUsernameSQL         = `SELECT COUNT(*) FROM users WHERE username = ?`
	countByEmailSQL            = `SELECT COUNT(*) FROM users WHERE email = ?`
	selectUsernameByEmailSQL   = `SELECT username FROM users WHERE email = ?`
	selectPasswordHashSQL      = `SELECT hashed_password FROM users WHERE username = ?`
)

// GetByUsername fetches an account by username. Returns (nil, nil) if not found.
// The password hash is never selected here.
func (r *AccountRepository) GetByUsername(username string) (*sf.User, error) {
	var u sf.User
	err := r.db.QueryRow(selectAccountByUsernameSQL, username).
		Scan(&u.Username, &u.Email, &u.Type, &u.Role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select account %q: %w", username, err)
	}
	return &u, nil
}

// Insert creates a new account row. Uniqueness of username and email is
// enforced by the table constraints; a violation comes back as the driver's
// constraint error, wrapped.
func (r *AccountRepository) Insert(username, email, role, accountType, passwordHash string) error {
	if _, err := r.db.Exec(insertAccountSQL, username, email, accountType, role, passwordHash); err != nil {
		return fmt.Errorf("insert account %q: %w", username, err)
	}
	return nil
}

// CountByUsername reports how many rows carry the username (0 or 1 given the
// UNIQUE constraint).
func (r *AccountRepository) CountByUsername(username string) (int, error) {
	var n int
	if err := r.db.QueryRow(countByUsernameSQL, username).Scan(&n); err != nil {
		return 0, fmt.Errorf("count accounts by username %q: %w", username, err)
	}
	return n, nil
}

// CountByEmail reports how many rows carry the email.
func (r *AccountRepository) CountByEmail(email string) (int, error) {
	var n int
	if err := r.db.QueryRow(countByEmailSQL, email).Scan(&n); err != nil {
		return 0, fmt.Errorf("count accounts by email %q: %w", email, err)
	}
	return n, nil
}

// GetUsernameByEmail resolves an email to its username. Returns ("", nil) if
// no account has the email.
func (r *AccountRepository) GetUsernameByEmail(email string) (string, error) {
	var username string
	err := r.db.QueryRow(selectUsernameByEmailSQL, email).Scan(&username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("select username by email %q: %w", email, err)
	}
	return username, nil
}

// GetPasswordHash fetches the stored credential for a username. Returns
// ("", nil) if no row exists. Callers must not let the hash escape the
// verification path.
func (r *AccountRepository) GetPasswordHash(username string) (string, error) {
	var hash string
	err := r.db.QueryRow(selectPasswordHashSQL, username).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("select password hash for %q: %w", username, err)
	}
	return hash, nil
}
