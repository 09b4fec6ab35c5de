package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-feedback-api/pkg/config"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("plain")))
}

func TestIsConnectivityError(t *testing.T) {
	assert.True(t, IsConnectivityError(driver.ErrBadConn))
	assert.True(t, IsConnectivityError(fmt.Errorf("query: %w", context.DeadlineExceeded)))
	assert.True(t, IsConnectivityError(&pq.Error{Code: "08006"}))
	assert.True(t, IsConnectivityError(&pq.Error{Code: "57P01"}))
	assert.True(t, IsConnectivityError(&net.OpError{Op: "dial", Net: "tcp", Err: errors.New("refused")}))
	assert.False(t, IsConnectivityError(&pq.Error{Code: "23505"}))
	assert.False(t, IsConnectivityError(nil))
}

func TestURLAndDSN(t *testing.T) {
	cfg := config.DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "feedback", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/feedback?sslmode=disable", URL(cfg))
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=feedback sslmode=disable", DSN(cfg))
}

func newTxMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestWithTxCommitsOnSuccess(t *testing.T) {
	db, mock := newTxMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	err := WithTx(context.Background(), db, nil, func(tx *sqlx.Tx) error { return nil })
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db, mock := newTxMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	sentinel := errors.New("rule violated")
	err := WithTx(context.Background(), db, nil, func(tx *sqlx.Tx) error { return sentinel })
	require.ErrorIs(t, err, sentinel)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	db, mock := newTxMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = WithTx(context.Background(), db, nil, func(tx *sqlx.Tx) error { panic("boom") })
	})
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxBeginFailure(t *testing.T) {
	db, mock := newTxMock(t)
	mock.ExpectBegin().WillReturnError(&net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")})

	called := false
	err := WithTx(context.Background(), db, nil, func(tx *sqlx.Tx) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
	assert.True(t, IsConnectivityError(err))
}
