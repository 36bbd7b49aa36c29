package fund

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	// errors
	ErrNotFound = errors.New("transaction not found")
)

type (
	Repository interface {
		// Query returns the transactions matching a cleaned filter, oldest first.
		Query(ctx context.Context, filter Filter) ([]Transaction, error)
		Get(ctx context.Context, id string) (Transaction, error)
		Create(ctx context.Context, t Transaction) (Transaction, error)
		Delete(ctx context.Context, id string) error
	}

	Service interface {
		List(ctx context.Context, filter Filter) ([]Transaction, error)
		Get(ctx context.Context, id string) (Transaction, error)
		Create(ctx context.Context, in TransactionInput) (Transaction, error)
		Delete(ctx context.Context, id string) error
		// Summary totals the transactions matching filter.
		Summary(ctx context.Context, filter Filter) (Summary, error)
	}

	service struct {
		repo    Repository
		nowFunc func() time.Time // mockable
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo, nowFunc: time.Now}
}

func (svc *service) List(ctx context.Context, filter Filter) ([]Transaction, error) {
	if err := filter.Clean(); err != nil {
		return nil, err
	}
	txs, err := svc.repo.Query(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "querying transactions")
	}
	if txs == nil {
		txs = []Transaction{}
	}
	return txs, nil
}

func (svc *service) Get(ctx context.Context, id string) (Transaction, error) {
	return svc.repo.Get(ctx, id)
}

// Create records a validated input.
func (svc *service) Create(ctx context.Context, in TransactionInput) (Transaction, error) {
	date, err := ParseDate(in.Date)
	if err != nil {
		return Transaction{}, errors.Wrap(err, "parsing transaction date")
	}
	t := Transaction{
		ID:          uuid.New().String(),
		Date:        date,
		Description: in.Description,
		Category:    in.Category,
		Type:        in.Type,
		Amount:      in.Amount,
		CreatedAt:   svc.nowFunc().UTC(),
	}
	return svc.repo.Create(ctx, t)
}

func (svc *service) Delete(ctx context.Context, id string) error {
	return svc.repo.Delete(ctx, id)
}

func (svc *service) Summary(ctx context.Context, filter Filter) (Summary, error) {
	txs, err := svc.List(ctx, filter)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(txs), nil
}
