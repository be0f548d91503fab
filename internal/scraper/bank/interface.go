// Package bank defines the common structs and logic used throughout bank
// implementations.
package bank

import "context"

type BankScraper interface {
	// Balances logs in with a fresh session and returns every account listed
	// on the landing page.
	Balances(ctx context.Context, accountNumber, password string) ([]Account, error)
}

type BankCode string

const (
	BankCreditAgricole BankCode = "CREDIT_AGRICOLE"
)
