// Package currencypkg provides common currency related functionality for apps.
package currencypkg

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Constants for all supported currencies.
const (
	BTC = "BTC"
	ETH = "ETH"
	SOL = "SOL"
	USD = "USD"
	BRL = "BRL"
)

// Kinds of currencies.
const (
	KindCrypto = "CRYPTO"
	KindFiat   = "FIAT"
)

// Info describes a seeded currency.
type Info struct {
	Code string
	Name string
	Kind string
}

// SupportedCurrencies holds all the supported currencies in display order.
var SupportedCurrencies = []Info{
	{Code: BTC, Name: "Bitcoin", Kind: KindCrypto},
	{Code: ETH, Name: "Ethereum", Kind: KindCrypto},
	{Code: SOL, Name: "Solana", Kind: KindCrypto},
	{Code: BRL, Name: "Brazilian Real", Kind: KindFiat},
	{Code: USD, Name: "US Dollar", Kind: KindFiat},
}

var codeFormat = regexp.MustCompile(`^[A-Z]{2,10}$`)

// IsSupportedCurrency returns true if the currncy is supported.
func IsSupportedCurrency(currency string) bool {
	for _, c := range SupportedCurrencies {
		if c.Code == currency {
			return true
		}
	}

	return false
}

// IsWellFormed reports whether code looks like a currency code.
func IsWellFormed(code string) bool {
	return codeFormat.MatchString(code)
}

// ValidCurrency validates whether the field holds a well-formed currency code.
// Existence is checked against the store so unknown codes surface as not found.
var ValidCurrency validator.Func = func(fl validator.FieldLevel) bool {
	if c, ok := fl.Field().Interface().(string); ok {
		return IsWellFormed(c)
	}

	return false
}
