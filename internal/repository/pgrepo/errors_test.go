package pgrepo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fsdevblog/gamestore/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestConvertErr(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{name: "no rows", err: pgx.ErrNoRows, want: domain.ErrRecordNotFound},
		{name: "wrapped no rows", err: fmt.Errorf("scan: %w", pgx.ErrNoRows), want: domain.ErrRecordNotFound},
		{name: "unique violation", err: &pgconn.PgError{Code: uniqueViolationCode}, want: domain.ErrDuplicateKey},
		{name: "fk violation", err: &pgconn.PgError{Code: foreignKeyViolationCode}, want: domain.ErrRecordNotFound},
		{name: "check violation", err: &pgconn.PgError{Code: checkViolationCode}, want: domain.ErrValidation},
		{name: "numeric overflow", err: &pgconn.PgError{Code: numericOutOfRangeCode}, want: domain.ErrValidation},
		{name: "other pg error", err: &pgconn.PgError{Code: "40P01"}, want: domain.ErrUnknown},
		{name: "connection error", err: errors.New("conn closed"), want: domain.ErrUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := convertErr(tc.err, "purchase create user %d", 5)
			assert.ErrorIs(t, got, tc.want)
			assert.Contains(t, got.Error(), "[repository/purchase create user 5]")
		})
	}

	t.Run("out of range hides postgres details", func(t *testing.T) {
		got := convertErr(&pgconn.PgError{
			Code:    numericOutOfRangeCode,
			Message: "numeric field overflow",
		}, "deposit user %d", 5)
		assert.ErrorIs(t, got, domain.ErrValidation)
		assert.Contains(t, got.Error(), "validation error: value is out of range")
		assert.NotContains(t, got.Error(), "numeric field overflow")
	})

	assert.NoError(t, convertErr(nil, "noop"))
}
