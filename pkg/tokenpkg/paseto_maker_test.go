package tokenpkg

import (
	"testing"
	"time"

	"github.com/go-petr/wallet-ledger/pkg/randompkg"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestPasetoMaker(t *testing.T) {
	t.Parallel()

	secretKey := randompkg.String(32)

	maker, err := NewPasetoMaker(secretKey)
	if err != nil {
		t.Fatalf("NewPasetoMaker(%v) returned error: %v", secretKey, err)
	}

	username := randompkg.Owner()
	duration := time.Minute

	token, payload, err := maker.CreateToken(username, duration)
	if err != nil {
		t.Errorf("maker.CreateToken(%v, %v) returned error: %v", username, duration, err)
	}

	_, err = maker.VerifyToken(token)
	if err != nil {
		t.Errorf("maker.VerifyToken(%v) returned error: %v", token, err)
	}

	want := &Payload{
		Username:  username,
		IssuedAt:  time.Now(),
		ExpiredAt: time.Now().Add(duration),
	}

	ignore := cmpopts.IgnoreFields(Payload{}, "ID")
	delta := cmpopts.EquateApproxTime(time.Minute)

	if diff := cmp.Diff(payload, want, ignore, delta); diff != "" {
		t.Errorf("maker.CreateToken(%v, %v) returned unexpected diff: %v", username, duration, diff)
	}
}

func TestExpiredPasetoToken(t *testing.T) {
	t.Parallel()

	secretKey := randompkg.String(32)

	maker, err := NewPasetoMaker(randompkg.String(32))
	if err != nil {
		t.Fatalf("NewPasetoMaker(%v) returned error: %v", secretKey, err)
	}

	username := randompkg.Owner()
	duration := -time.Minute

	token, _, err := maker.CreateToken(username, duration)
	if err != nil {
		t.Errorf("maker.CreateToken(%v, %v) returned error: %v", username, duration, err)
	}

	_, err = maker.VerifyToken(token)
	if err != ErrExpiredToken {
		t.Errorf("maker.VerifyToken(%v) returned unexpected error: %v", token, err)
	}
}

func TestNewMaker(t *testing.T) {
	t.Parallel()

	key := randompkg.String(32)

	testCases := []struct {
		name      string
		tokenType string
		wantErr   bool
	}{
		{name: "Paseto", tokenType: TypePaseto},
		{name: "Default", tokenType: ""},
		{name: "JWT", tokenType: TypeJWT},
		{name: "Unknown", tokenType: "macaroon", wantErr: true},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			maker, err := NewMaker(tc.tokenType, key)
			if tc.wantErr {
				if err == nil {
					t.Errorf("NewMaker(%q) returned nil error", tc.tokenType)
				}

				return
			}

			if err != nil {
				t.Fatalf("NewMaker(%q) returned error: %v", tc.tokenType, err)
			}

			token, _, err := maker.CreateToken("operator", time.Minute)
			if err != nil {
				t.Fatalf("maker.CreateToken returned error: %v", err)
			}

			payload, err := maker.VerifyToken(token)
			if err != nil {
				t.Fatalf("maker.VerifyToken returned error: %v", err)
			}

			if payload.Username != "operator" {
				t.Errorf("payload.Username = %q, want %q", payload.Username, "operator")
			}
		})
	}
}
