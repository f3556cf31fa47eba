package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// SQLSTATE classes the stores care about.
const (
	sqlStateUniqueViolation     = "23505"
	sqlStateForeignKeyViolation = "23503"
	sqlStateCheckViolation      = "23514"
	sqlStateSerialization       = "40001"
	sqlStateDeadlock            = "40P01"
)

// stockCheckConstraint guards products.current_stock >= 0.
const stockCheckConstraint = "products_current_stock_check"

// SQLState returns the postgres error code carried by err, if any.
func SQLState(err error) string {
	state, _ := pgDetails(err)
	return state
}

// FromDatabase maps a postgres failure onto an API code. Errors that carry no
// SQLSTATE become CodeDependency.
func FromDatabase(err error, message string) *Error {
	if err == nil {
		return nil
	}
	if typed := As(err); typed != nil {
		return typed
	}
	state, constraint := pgDetails(err)
	switch state {
	case sqlStateUniqueViolation:
		return Wrap(CodeConflict, err, message)
	case sqlStateForeignKeyViolation:
		return Wrap(CodeConflict, err, message).WithDetails(map[string]any{"constraint": constraint})
	case sqlStateCheckViolation:
		if constraint == stockCheckConstraint {
			return Wrap(CodeNegativeStock, err, message)
		}
		return Wrap(CodeValidation, err, message).WithDetails(map[string]any{"constraint": constraint})
	case sqlStateSerialization, sqlStateDeadlock:
		return Wrap(CodeDependency, err, message)
	default:
		return Wrap(CodeDependency, err, message)
	}
}

func pgDetails(err error) (state, constraint string) {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code, pgxErr.ConstraintName
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint
	}
	return "", ""
}

// ErrorDump flattens an error chain for structured logging.
type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`
	Retryable  bool   `json:"retryable,omitempty"`

	Chain []string `json:"chain,omitempty"`

	PGCode       string `json:"pg_code,omitempty"`
	PGConstraint string `json:"pg_constraint,omitempty"`
	PGTable      string `json:"pg_table,omitempty"`
	PGColumn     string `json:"pg_column,omitempty"`
	PGDetail     string `json:"pg_detail,omitempty"`
	PGMessage    string `json:"pg_message,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
	}

	if te := As(err); te != nil {
		d.Code = te.Code()
		d.Retryable = MetadataFor(te.Code()).Retryable
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		d.PGCode = pgxErr.Code
		d.PGConstraint = pgxErr.ConstraintName
		d.PGTable = pgxErr.TableName
		d.PGColumn = pgxErr.ColumnName
		d.PGDetail = pgxErr.Detail
		d.PGMessage = pgxErr.Message
		return d
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		d.PGCode = string(pqErr.Code)
		d.PGConstraint = pqErr.Constraint
		d.PGTable = pqErr.Table
		d.PGColumn = pqErr.Column
		d.PGDetail = pqErr.Detail
		d.PGMessage = pqErr.Message
		return d
	}

	return d
}
