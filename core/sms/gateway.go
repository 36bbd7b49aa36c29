package sms

import (
	"context"

	"github.com/shopspring/decimal"
)

// Submission is one message addressed to one number.
type Submission struct {
	Number  string
	Message string
}

// Gateway transmits messages through an SMS provider.
type Gateway interface {
	// Send submits one message and returns the provider response code.
	// A non-nil error means the code could not be obtained.
	Send(ctx context.Context, sub Submission) (int, error)
	// Balance returns the provider's prepaid balance.
	Balance(ctx context.Context) (decimal.Decimal, error)
}
