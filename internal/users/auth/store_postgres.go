// Copyright (c) 2026 Tuber. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/tuber/internal/platform/apperr"
	"github.com/taibuivan/tuber/internal/platform/database/schema"
	"github.com/taibuivan/tuber/internal/platform/dberr"
	"github.com/taibuivan/tuber/pkg/pointer"
)

// resourceAccount names the entity in NotFound/Conflict messages.
const resourceAccount = "Account"

// Unique constraints declared by the accounts migration.
const (
	constraintUsername = "account_username_key"
	constraintEmail    = "account_email_key"
)

var (
	publicColumns      = strings.Join(schema.UserAccount.PublicColumns(), ", ")
	credentialsColumns = strings.Join(schema.UserAccount.CredentialColumns(), ", ")
)

// dbPool is the subset of *pgxpool.Pool used by [PostgresStore].
type dbPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// # Postgres Store

// PostgresStore implements [AccountStore] and [SessionStore] on users.account.
// The refresh token lives in the refreshtoken column of the account row.
type PostgresStore struct {
	pool dbPool
	now  func() time.Time
}

// NewPostgresStore creates a store over a pgx pool.
func NewPostgresStore(pool dbPool) *PostgresStore {
	return &PostgresStore{pool: pool, now: time.Now}
}

/*
Create persists a new account row.

Description: Initializes timestamps and maps unique violations on username or
email to apperr.Conflict. This closes the race left open by the service's
existence pre-check.

Parameters:
  - ctx: context.Context
  - account: *Account (PasswordHash must already be set)

Returns:
  - error: apperr.Conflict or wrapped database errors
*/
func (store *PostgresStore) Create(ctx context.Context, account *Account) error {
	const query = `
		INSERT INTO users.account (
			id, username, email, fullname, passwordhash, avatarurl, coverimageurl, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	now := store.now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now

	_, err := store.pool.Exec(ctx, query,
		account.ID,
		account.Username,
		account.Email,
		account.FullName,
		account.PasswordHash,
		pointer.NilIfZero(account.AvatarURL),
		pointer.NilIfZero(account.CoverImageURL),
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			conflict := apperr.Conflict(conflictMessage(dberr.ConstraintName(err)))
			conflict.Cause = err
			return conflict
		}
		return fmt.Errorf("postgres_account_create_failed: %w", err)
	}

	return nil
}

/*
FindByID retrieves an account by primary key.

Parameters:
  - ctx: context.Context
  - id: string
  - projection: Projection

Returns:
  - *Account: PasswordHash populated only for ProjectionCredentials
  - error: apperr.NotFound or database errors
*/
func (store *PostgresStore) FindByID(ctx context.Context, id string, projection Projection) (*Account, error) {
	columns := publicColumns
	if projection == ProjectionCredentials {
		columns = credentialsColumns
	}

	query := `SELECT ` + columns + ` FROM users.account WHERE id = $1`

	account, err := scanAccount(store.pool.QueryRow(ctx, query, id), projection)
	if err != nil {
		return nil, dberr.Wrap(err, resourceAccount, "postgres_account_find_by_id_failed")
	}

	return account, nil
}

// FindByEmail loads the account and its password hash for login.
func (store *PostgresStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	query := `SELECT ` + credentialsColumns + ` FROM users.account WHERE email = $1`

	account, err := scanAccount(store.pool.QueryRow(ctx, query, email), ProjectionCredentials)
	if err != nil {
		return nil, dberr.Wrap(err, resourceAccount, "postgres_account_find_by_email_failed")
	}

	return account, nil
}

// ExistsByUsernameOrEmail checks both unique columns in a single round trip.
func (store *PostgresStore) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users.account WHERE username = $1 OR email = $2)`

	var exists bool
	if err := store.pool.QueryRow(ctx, query, username, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres_account_exists_failed: %w", err)
	}

	return exists, nil
}

/*
Update applies the non-nil fields of update.

Description: Builds the SET list from the fields present. updatedat is always
bumped. The returned account uses ProjectionPublic.

Returns:
  - *Account: The account after the update
  - error: apperr.NotFound, apperr.Conflict (email taken) or database errors
*/
func (store *PostgresStore) Update(ctx context.Context, id string, update AccountUpdate) (*Account, error) {
	var (
		assignments []string
		args        []any
	)

	set := func(column string, value any) {
		args = append(args, value)
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.FullName != nil {
		set(schema.UserAccount.FullName, *update.FullName)
	}
	if update.Email != nil {
		set(schema.UserAccount.Email, *update.Email)
	}
	if update.PasswordHash != nil {
		set(schema.UserAccount.Password, *update.PasswordHash)
	}
	if update.AvatarURL != nil {
		set(schema.UserAccount.AvatarURL, pointer.NilIfZero(*update.AvatarURL))
	}
	if update.CoverImageURL != nil {
		set(schema.UserAccount.CoverImageURL, pointer.NilIfZero(*update.CoverImageURL))
	}
	set(schema.UserAccount.UpdatedAt, store.now().UTC())

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE users.account SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(assignments, ", "), len(args), publicColumns)

	account, err := scanAccount(store.pool.QueryRow(ctx, query, args...), ProjectionPublic)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			conflict := apperr.Conflict(conflictMessage(dberr.ConstraintName(err)))
			conflict.Cause = err
			return nil, conflict
		}
		return nil, dberr.Wrap(err, resourceAccount, "postgres_account_update_failed")
	}

	return account, nil
}

// # Session Column

// PersistRefreshToken overwrites the refreshtoken column.
func (store *PostgresStore) PersistRefreshToken(ctx context.Context, accountID, token string) error {
	const query = `UPDATE users.account SET refreshtoken = $1, updatedat = $2 WHERE id = $3`

	tag, err := store.pool.Exec(ctx, query, token, store.now().UTC(), accountID)
	if err != nil {
		return fmt.Errorf("postgres_session_persist_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(resourceAccount)
	}

	return nil
}

// ClearRefreshToken sets refreshtoken to NULL. A missing row is not an error.
func (store *PostgresStore) ClearRefreshToken(ctx context.Context, accountID string) error {
	const query = `UPDATE users.account SET refreshtoken = NULL, updatedat = $1 WHERE id = $2`

	if _, err := store.pool.Exec(ctx, query, store.now().UTC(), accountID); err != nil {
		return fmt.Errorf("postgres_session_clear_failed: %w", err)
	}

	return nil
}

// RefreshToken returns the stored token, "" when NULL.
func (store *PostgresStore) RefreshToken(ctx context.Context, accountID string) (string, error) {
	const query = `SELECT refreshtoken FROM users.account WHERE id = $1`

	var token *string
	if err := store.pool.QueryRow(ctx, query, accountID).Scan(&token); err != nil {
		return "", dberr.Wrap(err, resourceAccount, "postgres_session_get_failed")
	}

	return pointer.Val(token), nil
}

// # Helpers

func scanAccount(row pgx.Row, projection Projection) (*Account, error) {
	var (
		account    Account
		avatar     *string
		coverImage *string
	)

	destinations := []any{
		&account.ID,
		&account.Username,
		&account.Email,
		&account.FullName,
		&avatar,
		&coverImage,
		&account.CreatedAt,
		&account.UpdatedAt,
	}
	if projection == ProjectionCredentials {
		destinations = append(destinations, &account.PasswordHash)
	}

	if err := row.Scan(destinations...); err != nil {
		return nil, err
	}

	account.AvatarURL = pointer.Val(avatar)
	account.CoverImageURL = pointer.Val(coverImage)

	return &account, nil
}

func conflictMessage(constraint string) string {
	switch constraint {
	case constraintEmail:
		return "Email is already registered"
	case constraintUsername:
		return "Username is already taken"
	default:
		return "User with email or username already exists"
	}
}
