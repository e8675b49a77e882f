package domain

import "errors"

var (
	// ErrCurrencyNotFound indicates that the currency is not known.
	ErrCurrencyNotFound = errors.New("currency not found")
	// ErrSameCurrency indicates a conversion into the source currency.
	ErrSameCurrency = errors.New("source and target currencies are the same")
)

// Currency is reference data seeded with the store.
type Currency struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}
