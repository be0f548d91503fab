package bank

import (
	"errors"
	"fmt"
)

var (
	// ErrParsingFailed marks any page whose structure no longer matches the
	// selectors we rely on. The site changed, the credentials did not.
	ErrParsingFailed = errors.New("failed to parse bank response")

	ErrTransport = errors.New("transport error")

	ErrMalformedLoginPage = fmt.Errorf("%w: malformed login page", ErrParsingFailed)
	ErrMalformedKeypad    = fmt.Errorf("%w: malformed keypad", ErrParsingFailed)

	ErrPasswordTranslation = errors.New("password digit not on keypad")
	ErrBalanceParse        = errors.New("failed to parse balance")
)

// ScraperError provides detailed error context
type ScraperError struct {
	BankCode  BankCode
	Operation string
	Cause     error
	Details   string
}

func (e *ScraperError) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("[%s] %s failed: %v", e.BankCode, e.Operation, e.Cause)
	}
	return fmt.Sprintf("[%s] %s failed: %v - %s", e.BankCode, e.Operation, e.Cause, e.Details)
}

func (e *ScraperError) Unwrap() error {
	return e.Cause
}
