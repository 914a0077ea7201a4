package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"

	"streamscout/models"
)

var (
	// ErrDuplicateEmail is returned when an email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrUserNotFound is returned by token operations on unknown user IDs.
	ErrUserNotFound = errors.New("user not found")
)

// UserRepository persists user accounts and owns the token balance.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a repository on the given connection.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = "id, email, password_hash, display_name, tokens, last_search, created_at, updated_at"

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.Tokens, &u.LastSearch, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

// CreateUser inserts a new user and returns the stored record. The email
// uniqueness check is case-insensitive (enforced by the schema collation).
func (r *UserRepository) CreateUser(ctx context.Context, email, passwordHash, displayName string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash, display_name)
		VALUES (?, ?, ?)
		RETURNING `+userColumns,
		email, passwordHash, displayName)

	user, err := scanUser(row)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// GetUserByID returns the user with the given ID, or nil when absent.
func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByEmail returns the user with the given email (case-insensitive),
// or nil when absent.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ? COLLATE NOCASE`, email)
	return scanUser(row)
}

// SetLastSearch records the most recent search term for a user.
func (r *UserRepository) SetLastSearch(ctx context.Context, id int64, term string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users
		   SET last_search = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`, term, id)
	if err != nil {
		return fmt.Errorf("set last search: %w", err)
	}
	return nil
}

// TokenBalance returns the current token balance for a user.
func (r *UserRepository) TokenBalance(ctx context.Context, id int64) (int, error) {
	var tokens int
	err := r.db.QueryRowContext(ctx, `SELECT tokens FROM users WHERE id = ?`, id).Scan(&tokens)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("read token balance: %w", err)
	}
	return tokens, nil
}

// DeductToken atomically removes one token, conditioned on the balance still
// being at least one. It reports whether the decrement landed together with
// the balance after the operation. The condition and the write are a single
// statement, so concurrent deductions can never drive the balance negative.
func (r *UserRepository) DeductToken(ctx context.Context, id int64) (bool, int, error) {
	var tokens int
	err := r.db.QueryRowContext(ctx, `
		UPDATE users
		   SET tokens = tokens - 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND tokens >= 1
		RETURNING tokens`, id).Scan(&tokens)
	if err == nil {
		return true, tokens, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, 0, fmt.Errorf("deduct token: %w", err)
	}

	// Nothing was updated: either the user is unknown or the balance hit
	// zero between the caller's check and now.
	balance, err := r.TokenBalance(ctx, id)
	if err != nil {
		return false, 0, err
	}
	return false, balance, nil
}

// AddTokens atomically credits the balance and returns the new total.
func (r *UserRepository) AddTokens(ctx context.Context, id int64, amount int) (int, error) {
	var tokens int
	err := r.db.QueryRowContext(ctx, `
		UPDATE users
		   SET tokens = tokens + ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?
		RETURNING tokens`, amount, id).Scan(&tokens)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("add tokens: %w", err)
	}
	return tokens, nil
}
