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

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Find(ctx context.Context, field models.LookupField, value string) (*models.Account, error) {
	column, err := lookupColumn(field)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + accountColumns + ` FROM accounts
		 WHERE ` + column + ` = $1`

	a := &models.Account{}
	var lockedUntil, currentTime, previousTime sql.NullTime
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

	a.AccountLockedUntil = lockedUntil.Time
	a.CurrentLoginTime = currentTime.Time
	a.PreviousLoginTime = previousTime.Time

	return a, nil
}

func (r *PostgresRepository) Update(ctx context.Context, a *models.Account) (*models.Account, error) {
	query :=
		`UPDATE accounts SET failed_login_attempts = $1, account_locked = $2, account_locked_until = $3,
		 current_login_time = $4, previous_login_time = $5, current_login_ip = $6, previous_login_ip = $7,
		 version = version + 1
		 WHERE id = $8 AND version = $9
		 RETURNING version`

	var version int64
	err := r.db.QueryRowContext(ctx, query,
		a.FailedLoginAttempts, a.AccountLocked, nullTime(a.AccountLockedUntil),
		nullTime(a.CurrentLoginTime), nullTime(a.PreviousLoginTime), a.CurrentLoginIP, a.PreviousLoginIP,
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

// Unlock issues two statements; run it through dbx.WithTx to read back the
// row it wrote.
func (r *PostgresRepository) Unlock(ctx context.Context, field models.LookupField, value string) (*models.Account, error) {
	column, err := lookupColumn(field)
	if err != nil {
		return nil, err
	}

	query :=
		`UPDATE accounts SET failed_login_attempts = 0, account_locked = FALSE, account_locked_until = NULL,
		 version = version + 1
		 WHERE ` + column + ` = $1`

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

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
