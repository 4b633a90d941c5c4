package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/dbx"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
)

// SQLiteRepository stores timestamps as unix nanoseconds, NULL when unset.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Find(ctx context.Context, field models.LookupField, value string) (*models.Account, error) {
	column, err := lookupColumn(field)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE ` + column + ` = ?`

	a := &models.Account{}
	var lockedUntil, currentTime, previousTime sql.NullInt64
	err = r.db.QueryRowContext(ctx, query, value).Scan(
		&a.ID, &a.Username, &a.Email, &a.EmailVerified, &a.CredentialHash,
		&a.FailedLoginAttempts, &a.AccountLocked, &lockedUntil,
		&currentTime, &previousTime, &a.CurrentLoginIP, &a.PreviousLoginIP, &a.Version,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	a.AccountLockedUntil = fromUnixNano(lockedUntil)
	a.CurrentLoginTime = fromUnixNano(currentTime)
	a.PreviousLoginTime = fromUnixNano(previousTime)

	return a, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, a *models.Account) (*models.Account, error) {
	query := `UPDATE accounts SET failed_login_attempts = ?, account_locked = ?, account_locked_until = ?,
		current_login_time = ?, previous_login_time = ?, current_login_ip = ?, previous_login_ip = ?,
		version = version + 1
		WHERE id = ? AND version = ?
		RETURNING version`

	var version int64
	err := r.db.QueryRowContext(ctx, query,
		a.FailedLoginAttempts, a.AccountLocked, toUnixNano(a.AccountLockedUntil),
		toUnixNano(a.CurrentLoginTime), toUnixNano(a.PreviousLoginTime), a.CurrentLoginIP, a.PreviousLoginIP,
		a.ID, a.Version,
	).Scan(&version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrVersionConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	updated := *a
	updated.Version = version
	return &updated, nil
}

func (r *SQLiteRepository) Unlock(ctx context.Context, field models.LookupField, value string) (*models.Account, error) {
	column, err := lookupColumn(field)
	if err != nil {
		return nil, err
	}

	query := `UPDATE accounts SET failed_login_attempts = 0, account_locked = 0, account_locked_until = NULL,
		version = version + 1
		WHERE ` + column + ` = ?`

	res, err := r.db.ExecContext(ctx, query, value)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return nil, common.ErrorNotFound
	}

	return r.Find(ctx, field, value)
}

func toUnixNano(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

func fromUnixNano(v sql.NullInt64) time.Time {
	if !v.Valid {
		return time.Time{}
	}
	return time.Unix(0, v.Int64).UTC()
}
