package domain

import (
	"errors"
	"time"
)

// ErrInvalidCredentials indicates a failed operator login.
var ErrInvalidCredentials = errors.New("invalid operator credentials")

// OperatorSession is the access token issued to an operator.
type OperatorSession struct {
	AccessToken          string    `json:"access_token"`
	AccessTokenExpiresAt time.Time `json:"access_token_expires_at"`
}
