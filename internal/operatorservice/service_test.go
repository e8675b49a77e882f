package operatorservice

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/go-petr/wallet-ledger/internal/domain"
	"github.com/go-petr/wallet-ledger/pkg/passpkg"
	"github.com/go-petr/wallet-ledger/pkg/randompkg"
	"github.com/go-petr/wallet-ledger/pkg/tokenpkg"
)

func TestLogin(t *testing.T) {
	key := randompkg.String(16)

	keyHash, err := passpkg.Hash(key)
	require.NoError(t, err)

	maker, err := tokenpkg.NewPasetoMaker(randompkg.String(32))
	require.NoError(t, err)

	config := Config{
		Username:            "operator",
		KeyHash:             keyHash,
		AccessTokenDuration: time.Minute,
	}

	testCases := []struct {
		name     string
		config   Config
		username string
		key      string
		wantErr  error
	}{
		{
			name:     "OK",
			config:   config,
			username: "operator",
			key:      key,
		},
		{
			name:     "WrongKey",
			config:   config,
			username: "operator",
			key:      key + "x",
			wantErr:  domain.ErrInvalidCredentials,
		},
		{
			name:     "WrongUsername",
			config:   config,
			username: "admin",
			key:      key,
			wantErr:  domain.ErrInvalidCredentials,
		},
		{
			name: "LoginDisabled",
			config: Config{
				Username:            "operator",
				AccessTokenDuration: time.Minute,
			},
			username: "operator",
			key:      "",
			wantErr:  domain.ErrInvalidCredentials,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			s := New(maker, tc.config)

			session, err := s.Login(context.Background(), tc.username, tc.key)
			require.ErrorIs(t, err, tc.wantErr)

			if tc.wantErr != nil {
				require.Empty(t, session.AccessToken)
				return
			}

			payload, err := maker.VerifyToken(session.AccessToken)
			require.NoError(t, err)
			require.Equal(t, tc.username, payload.Username)
			require.WithinDuration(t, payload.ExpiredAt, session.AccessTokenExpiresAt, time.Second)
		})
	}
}
