// Package operatorservice authenticates operators and issues access tokens.
package operatorservice

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/go-petr/wallet-ledger/internal/domain"
	"github.com/go-petr/wallet-ledger/pkg/errorspkg"
	"github.com/go-petr/wallet-ledger/pkg/passpkg"
	"github.com/go-petr/wallet-ledger/pkg/tokenpkg"
)

// Config holds the single operator account and token lifetime.
type Config struct {
	Username            string
	KeyHash             string
	AccessTokenDuration time.Duration
}

// Service facilitates operator login.
type Service struct {
	maker  tokenpkg.Maker
	config Config
}

// New returns operator service.
func New(maker tokenpkg.Maker, config Config) *Service {
	return &Service{
		maker:  maker,
		config: config,
	}
}

// Login checks the operator key and returns a fresh access token.
// Login always fails while no key hash is configured.
func (s *Service) Login(ctx context.Context, username, key string) (domain.OperatorSession, error) {
	l := zerolog.Ctx(ctx)

	var result domain.OperatorSession

	if s.config.KeyHash == "" || username != s.config.Username {
		l.Warn().Str("username", username).Msg("operator login rejected")
		return result, domain.ErrInvalidCredentials
	}

	if err := passpkg.Check(key, s.config.KeyHash); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			l.Error().Err(err).Send()
		}

		l.Warn().Str("username", username).Msg("operator login rejected")

		return result, domain.ErrInvalidCredentials
	}

	token, payload, err := s.maker.CreateToken(username, s.config.AccessTokenDuration)
	if err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	result.AccessToken = token
	result.AccessTokenExpiresAt = payload.ExpiredAt

	return result, nil
}
