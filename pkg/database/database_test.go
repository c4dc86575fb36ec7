package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"

	"bus-tracker/pkg/utils"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "uq_seat_bookings_trip_seat"}

	constraint, ok := UniqueViolation(fmt.Errorf("insert: %w", pgErr))
	assert.True(t, ok)
	assert.Equal(t, "uq_seat_bookings_trip_seat", constraint)

	_, ok = UniqueViolation(&pgconn.PgError{Code: "23503"})
	assert.False(t, ok)

	_, ok = UniqueViolation(errors.New("plain"))
	assert.False(t, ok)

	_, ok = UniqueViolation(nil)
	assert.False(t, ok)
}

func TestConnString(t *testing.T) {
	dsn := ConnString(utils.DatabaseConfig{
		Host: "db", Port: "5432", Name: "bus", User: "u", Password: "p",
	})
	assert.Equal(t, "user=u password=p dbname=bus sslmode=disable host=db port=5432", dsn)
}

func TestSchemaDeclaresPartialUniqueIndexes(t *testing.T) {
	schema := Schema()
	assert.Contains(t, schema, "uq_seat_bookings_trip_seat")
	assert.Contains(t, schema, "uq_seat_bookings_trip_user")
	assert.Equal(t, 2, strings.Count(schema, "WHERE status <> 'cancelled'"))
	assert.Contains(t, schema, "ON DELETE CASCADE")
}

func TestMigrate(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(Schema()).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCommit()

	require.NoError(t, Migrate(context.Background(), mock))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateRollsBackOnFailure(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS users")).WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	err = Migrate(context.Background(), mock)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apply schema")
	assert.NoError(t, mock.ExpectationsWereMet())
}
