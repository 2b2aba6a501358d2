package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/twoflytrading/wholesale-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT. Tokens
// are issued by the identity provider; this service only verifies them.
type AccessTokenPayload struct {
	UserID         uuid.UUID
	Role           enums.ActorRole
	DisplayName    string
	CommissionRate decimal.Decimal
}

// AccessTokenClaims represents the typed JWT presented by clients.
type AccessTokenClaims struct {
	UserID         uuid.UUID       `json:"user_id"`
	Role           enums.ActorRole `json:"role"`
	DisplayName    string          `json:"display_name,omitempty"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	jwt.RegisteredClaims
}
