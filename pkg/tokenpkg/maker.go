// Package tokenpkg issues and verifies operator access tokens.
package tokenpkg

import (
	"fmt"
	"time"
)

const minSecretKeySize = 32

// Token kinds selectable with TOKEN_TYPE.
const (
	TypePaseto = "paseto"
	TypeJWT    = "jwt"
)

// Maker is an interface for managing tokens.
type Maker interface {
	// CreateToken creates a new token for a specific username and duration.
	CreateToken(username string, duration time.Duration) (string, *Payload, error)

	// VerifyToken checks if the token is valid or not.
	VerifyToken(token string) (*Payload, error)
}

// NewMaker builds the Maker named by tokenType.
func NewMaker(tokenType, secretKey string) (Maker, error) {
	switch tokenType {
	case TypePaseto, "":
		return NewPasetoMaker(secretKey)
	case TypeJWT:
		return NewJWTMaker(secretKey)
	default:
		return nil, fmt.Errorf("unknown token type %q", tokenType)
	}
}
