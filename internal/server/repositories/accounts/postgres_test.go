package accounts

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pgColumns = []string{
	"id", "username", "email", "email_verified", "credential_hash",
	"failed_login_attempts", "account_locked", "account_locked_until",
	"current_login_time", "previous_login_time", "current_login_ip", "previous_login_ip", "version",
}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestPostgresFind_ByUsername(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	until := time.Date(2025, 3, 1, 10, 20, 0, 0, time.UTC)
	q := `(?s)^SELECT\s+id,\s*username,.*version\s+FROM\s+accounts\s+WHERE\s+username\s*=\s*\$1$`
	rows := sqlmock.NewRows(pgColumns).
		AddRow("a-1", "alice", "alice@example.com", true, []byte("hash"),
			5, true, until, nil, nil, "", "", int64(7))
	mock.ExpectQuery(q).WithArgs("alice").WillReturnRows(rows)

	got, err := repo.Find(context.Background(), models.FieldUsername, "alice")
	require.NoError(t, err)
	assert.Equal(t, "a-1", got.ID)
	assert.Equal(t, 5, got.FailedLoginAttempts)
	assert.True(t, got.AccountLocked)
	assert.True(t, got.AccountLockedUntil.Equal(until))
	assert.True(t, got.CurrentLoginTime.IsZero())
	assert.Equal(t, int64(7), got.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFind_ByEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+.*FROM\s+accounts\s+WHERE\s+email\s*=\s*\$1$`
	rows := sqlmock.NewRows(pgColumns).
		AddRow("a-1", "alice", "alice@example.com", true, []byte("hash"),
			0, false, nil, nil, nil, "", "", int64(0))
	mock.ExpectQuery(q).WithArgs("alice@example.com").WillReturnRows(rows)

	got, err := repo.Find(context.Background(), models.FieldEmail, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.True(t, got.AccountLockedUntil.IsZero())
}

func TestPostgresFind_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+accounts`).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.Find(context.Background(), models.FieldUsername, "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestPostgresFind_DBErrorIsNotNotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+accounts`).WithArgs("alice").WillReturnError(errors.New("db down"))

	_, err := repo.Find(context.Background(), models.FieldUsername, "alice")
	require.Error(t, err)
	assert.False(t, errors.Is(err, common.ErrorNotFound))
	assert.Regexp(t, regexp.MustCompile(`db error: .*db down`), err.Error())
}

func TestPostgresFind_UnknownField(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	_, err := repo.Find(context.Background(), models.LookupField("id; DROP TABLE accounts"), "x")
	assert.ErrorIs(t, err, ErrUnknownField)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdate_BumpsVersion(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	a := &models.Account{
		ID: "a-1", FailedLoginAttempts: 5, AccountLocked: true, AccountLockedUntil: now.Add(20 * time.Minute),
		Version: 3,
	}

	q := `(?s)^UPDATE\s+accounts\s+SET\s+failed_login_attempts\s*=\s*\$1.*version\s*=\s*version\s*\+\s*1\s+WHERE\s+id\s*=\s*\$8\s+AND\s+version\s*=\s*\$9\s+RETURNING\s+version$`
	mock.ExpectQuery(q).
		WithArgs(5, true, now.Add(20*time.Minute), nil, nil, "", "", "a-1", int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(int64(4)))

	got, err := repo.Update(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.Version)
	assert.Equal(t, int64(3), a.Version, "input must not be mutated")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdate_StaleVersion(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE\s+accounts`).WillReturnError(sql.ErrNoRows)

	_, err := repo.Update(context.Background(), &models.Account{ID: "a-1", Version: 1})
	assert.ErrorIs(t, err, common.ErrVersionConflict)
}

func TestPostgresUpdate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE\s+accounts`).WillReturnError(errors.New("conn reset"))

	_, err := repo.Update(context.Background(), &models.Account{ID: "a-1"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, common.ErrVersionConflict))
}

func TestPostgresUnlock(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^UPDATE\s+accounts\s+SET\s+failed_login_attempts\s*=\s*0.*WHERE\s+email\s*=\s*\$1$`).
		WithArgs("alice@example.com").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM\s+accounts\s+WHERE\s+email`).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows(pgColumns).
			AddRow("a-1", "alice", "alice@example.com", true, []byte("hash"),
				0, false, nil, nil, nil, "", "", int64(8)))

	got, err := repo.Unlock(context.Background(), models.FieldEmail, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, 0, got.FailedLoginAttempts)
	assert.False(t, got.AccountLocked)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUnlock_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE\s+accounts`).WithArgs("ghost").WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.Unlock(context.Background(), models.FieldUsername, "ghost")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
