package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsIntegrityViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"foreign key", &pgconn.PgError{Code: "23503"}, true},
		{"check", &pgconn.PgError{Code: "23514"}, true},
		{"wrapped", fmt.Errorf("insert result: %w", &pgconn.PgError{Code: "23503"}), true},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, false},
		{"connection", errors.New("connection refused"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsIntegrityViolation(tt.err))
		})
	}
}
