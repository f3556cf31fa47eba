package auth

import (
	"github.com/angelmondragon/dzorders-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// OperatorTokenPayload captures the data available when minting an operator JWT.
type OperatorTokenPayload struct {
	Operator string
	StaffID  *uuid.UUID
	Role     enums.OperatorRole
}

// OperatorClaims is the typed JWT carried by back-office callers.
type OperatorClaims struct {
	Operator string             `json:"operator"`
	StaffID  *uuid.UUID         `json:"staff_id,omitempty"`
	Role     enums.OperatorRole `json:"role"`
	jwt.RegisteredClaims
}
