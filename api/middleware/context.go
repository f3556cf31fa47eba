package middleware

import (
	"context"

	"github.com/angelmondragon/dzorders-backend/pkg/enums"
	"github.com/google/uuid"
)

type contextKey string

const (
	ctxOperator contextKey = "operator"
	ctxRole     contextKey = "operator_role"
	ctxStaffID  contextKey = "staff_id"
)

func OperatorFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxOperator).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) enums.OperatorRole {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(enums.OperatorRole); ok {
		return v
	}
	return ""
}

// StaffIDFromContext returns the staff member the operator token was minted
// for, when it names one.
func StaffIDFromContext(ctx context.Context) *uuid.UUID {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxStaffID).(uuid.UUID); ok {
		return &v
	}
	return nil
}

// WithOperator injects the authenticated operator into the context.
func WithOperator(ctx context.Context, operator string, role enums.OperatorRole, staffID *uuid.UUID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxOperator, operator)
	ctx = context.WithValue(ctx, ctxRole, role)
	if staffID != nil {
		ctx = context.WithValue(ctx, ctxStaffID, *staffID)
	}
	return ctx
}
