package randompkg

import (
	"encoding/hex"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestHex(t *testing.T) {
	a, err := Hex(20)
	require.NoError(t, err)
	require.Len(t, a, 40)

	_, err = hex.DecodeString(a)
	require.NoError(t, err)

	b, err := Hex(20)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestMoneyAmountBetween(t *testing.T) {
	for i := 0; i < 50; i++ {
		s := MoneyAmountBetween(10, 100)

		d, err := decimal.NewFromString(s)
		require.NoError(t, err)
		require.True(t, d.GreaterThanOrEqual(decimal.NewFromInt(10)))
		require.True(t, d.LessThanOrEqual(decimal.NewFromInt(100)))
	}
}
