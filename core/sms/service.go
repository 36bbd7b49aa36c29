package sms

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/myschool/myschool/core"
)

var (
	ErrNothingToSend       = errors.New("select recipients and enter a message")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrUnknownRecipient    = errors.New("no record found for this number")
)

type (
	// Result is the outcome of one submission.
	Result struct {
		Number string `json:"number"`
		Code   int    `json:"code,omitempty"`
		Reason string `json:"reason"`
		Err    error  `json:"-"`
	}

	// Report is the outcome of a send. Results is index-aligned with the recipients.
	Report struct {
		Estimate Estimate            `json:"estimate"`
		Results  []Result            `json:"results"`
		Balance  decimal.NullDecimal `json:"balance"`
	}

	Service interface {
		// RefreshBalance fetches the provider balance and holds it locally.
		RefreshBalance(ctx context.Context) (decimal.Decimal, error)
		// Balance returns the locally held balance. It is invalid until fetched.
		Balance() decimal.NullDecimal
		Rate() decimal.Decimal
		Estimate(template string, recipients []Recipient) Estimate
		// Send personalizes template for every recipient and submits all messages concurrently.
		// Nothing is submitted when validation or the balance check fails.
		// A Report is returned whenever submissions were attempted, even if some failed.
		Send(ctx context.Context, template string, recipients []Recipient) (*Report, error)
	}

	service struct {
		gateway Gateway
		rate    decimal.Decimal
		logger  core.Logger

		mu      sync.Mutex
		balance decimal.NullDecimal
	}
)

var _ Service = (*service)(nil)

func NewService(gateway Gateway, rate decimal.Decimal, logger core.Logger) Service {
	return &service{
		gateway: gateway,
		rate:    rate,
		logger:  logger,
	}
}

func (r Result) OK() bool {
	return r.Err == nil && r.Code == CodeSubmitted
}

func (r Result) String() string {
	return fmt.Sprintf("SMS to %s failed: %s", r.Number, r.Reason)
}

// OK reports whether every submission was accepted.
func (rp Report) OK() bool {
	for _, res := range rp.Results {
		if !res.OK() {
			return false
		}
	}
	return true
}

func (rp Report) Failures() []Result {
	failures := make([]Result, 0)
	for _, res := range rp.Results {
		if !res.OK() {
			failures = append(failures, res)
		}
	}
	return failures
}

func (svc *service) RefreshBalance(ctx context.Context) (decimal.Decimal, error) {
	bal, err := svc.gateway.Balance(ctx)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "fetching balance")
	}
	svc.mu.Lock()
	svc.balance = decimal.NullDecimal{Decimal: bal, Valid: true}
	svc.mu.Unlock()
	return bal, nil
}

func (svc *service) Balance() decimal.NullDecimal {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.balance
}

func (svc *service) Rate() decimal.Decimal {
	return svc.rate
}

func (svc *service) Estimate(template string, recipients []Recipient) Estimate {
	return EstimateCost(template, recipients, svc.rate)
}

func (svc *service) Send(ctx context.Context, template string, recipients []Recipient) (*Report, error) {
	if len(recipients) == 0 || template == "" {
		return nil, core.NewValidationError(ErrNothingToSend)
	}

	est := svc.Estimate(template, recipients)
	available := svc.Balance().Decimal // an unknown balance counts as 0
	if est.TotalCost.GreaterThan(available) {
		return nil, errors.Wrapf(ErrInsufficientBalance, "required %s, available %s", est.TotalCost, available)
	}

	results := make([]Result, len(recipients))
	var wg sync.WaitGroup
	for i, r := range recipients {
		results[i].Number = r.PhoneNumber
		if r.Missing {
			results[i].Reason = ReasonUnknown
			results[i].Err = ErrUnknownRecipient
			continue
		}

		wg.Add(1)
		go func(res *Result, sub Submission) {
			defer wg.Done()
			code, err := svc.gateway.Send(ctx, sub)
			if err != nil {
				res.Reason = ReasonUnknown
				res.Err = err
				return
			}
			res.Code = code
			res.Reason = Reason(code)
		}(&results[i], Submission{Number: r.PhoneNumber, Message: Personalize(template, r)})
	}
	wg.Wait()

	report := &Report{Estimate: est, Results: results}
	if report.OK() {
		svc.mu.Lock()
		if svc.balance.Valid {
			svc.balance.Decimal = svc.balance.Decimal.Sub(est.TotalCost)
		}
		report.Balance = svc.balance
		svc.mu.Unlock()
		svc.logger.Info(fmt.Sprintf("All SMS sent successfully: %d recipients, cost %s", len(results), est.TotalCost))
		return report, nil
	}

	report.Balance = svc.Balance()
	failures := report.Failures()
	for _, f := range failures {
		if f.Err != nil {
			svc.logger.Warn(f.String(), f.Err)
			continue
		}
		svc.logger.Warn(f.String())
	}
	svc.logger.Info(fmt.Sprintf("Some SMS failed: %d of %d", len(failures), len(results)))
	return report, nil
}
