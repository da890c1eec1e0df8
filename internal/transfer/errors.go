package transfer

import "errors"

var (
	ErrProviderUnavailable = errors.New("no wallet provider available")
	ErrNoAccount           = errors.New("wallet returned no accounts")
	ErrInvalidAmount       = errors.New("invalid amount")
)
