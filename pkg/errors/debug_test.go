package errors

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestFromDatabaseMapsSQLState(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"unique", &pgconn.PgError{Code: "23505", ConstraintName: "products_sku_key"}, CodeConflict},
		{"foreign key", fmt.Errorf("delete: %w", &pgconn.PgError{Code: "23503"}), CodeConflict},
		{"stock check", &pq.Error{Code: "23514", Constraint: "products_current_stock_check"}, CodeNegativeStock},
		{"other check", &pgconn.PgError{Code: "23514", ConstraintName: "orders_quantity_check"}, CodeValidation},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, CodeDependency},
		{"plain", fmt.Errorf("boom"), CodeDependency},
		{"already typed", New(CodeNotFound, "order not found"), CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromDatabase(tt.err, "db failure").Code(); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
	if FromDatabase(nil, "x") != nil {
		t.Fatal("nil error should stay nil")
	}
}

func TestDumpCollectsPostgresFields(t *testing.T) {
	err := Wrap(CodeConflict, &pgconn.PgError{Code: "23505", TableName: "products", ConstraintName: "products_sku_key"}, "duplicate sku")
	d := Dump(err)
	if d.Code != CodeConflict || d.PGCode != "23505" || d.PGTable != "products" {
		t.Fatalf("unexpected dump %+v", d)
	}
	if len(d.Chain) != 2 {
		t.Fatalf("expected two chain entries, got %v", d.Chain)
	}
	if SQLState(err) != "23505" {
		t.Fatalf("unexpected sqlstate %q", SQLState(err))
	}
}
