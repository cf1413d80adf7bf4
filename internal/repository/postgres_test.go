package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestFormatOrderID(t *testing.T) {
	tests := map[int64]string{
		1:    "ORD-001",
		42:   "ORD-042",
		999:  "ORD-999",
		1000: "ORD-1000",
	}
	for n, want := range tests {
		if got := FormatOrderID(n); got != want {
			t.Fatalf("FormatOrderID(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestListOrdersUsesInsertionOrder(t *testing.T) {
	if !strings.HasSuffix(listOrders, "ORDER BY seq") {
		t.Fatalf("list query must order by insertion sequence: %s", listOrders)
	}

	schema, err := migrationsFS.ReadFile("migrations/00001_orders.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	if !strings.Contains(string(schema), "seq             BIGSERIAL") {
		t.Fatalf("orders table has no seq column")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"serialization failure", &pgconn.PgError{Code: pgerrcode.SerializationFailure}, true},
		{"deadlock", fmt.Errorf("update order: %w", &pgconn.PgError{Code: pgerrcode.DeadlockDetected}), true},
		{"unique violation", &pgconn.PgError{Code: pgerrcode.UniqueViolation}, false},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"canceled", context.Canceled, false},
		{"plain", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryable(tt.err); got != tt.want {
				t.Fatalf("isRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestWithRetry_StopsOnPermanentError(t *testing.T) {
	r := &PostgresRepository{}
	calls := 0

	err := r.withRetry(context.Background(), func() error {
		calls++
		return errors.New("permanent")
	})

	if err == nil || calls != 1 {
		t.Fatalf("withRetry: err = %v, calls = %d, want error after one call", err, calls)
	}
}

func TestWithRetry_HonoursContext(t *testing.T) {
	r := &PostgresRepository{}
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := r.withRetry(ctx, func() error {
		calls++
		cancel()
		return &pgconn.PgError{Code: pgerrcode.SerializationFailure}
	})

	if !errors.Is(err, context.Canceled) || calls != 1 {
		t.Fatalf("withRetry: err = %v, calls = %d, want context.Canceled after one call", err, calls)
	}
}

func TestNullable(t *testing.T) {
	if nullable("") != nil {
		t.Fatalf("nullable(\"\") must be nil")
	}
	if v := nullable("Sarah"); v == nil || deref(v) != "Sarah" {
		t.Fatalf("nullable/deref round trip failed")
	}
}
