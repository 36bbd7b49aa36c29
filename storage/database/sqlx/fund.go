package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/myschool/myschool/core"
	"github.com/myschool/myschool/core/fund"
)

const transactionColumns = "id, date, description, category, type, amount, created_at"

type transactionRepository struct {
	db core.DBExecutor
}

var _ fund.Repository = (*transactionRepository)(nil)

func NewTransactionRepository(db core.DBExecutor) fund.Repository {
	return &transactionRepository{db: db}
}

func (repo *transactionRepository) Query(ctx context.Context, filter fund.Filter) ([]fund.Transaction, error) {
	var (
		conds []string
		args  []interface{}
	)
	from, to := filter.Bounds()
	if from != nil {
		conds = append(conds, "date >= ?")
		args = append(args, *from)
	}
	if to != nil {
		conds = append(conds, "date <= ?")
		args = append(args, *to)
	}
	if filter.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.Type != "" {
		conds = append(conds, "type = ?")
		args = append(args, filter.Type)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	txs := make([]fund.Transaction, 0)
	q := "SELECT " + transactionColumns + " FROM transactions" + where + " ORDER BY date ASC, created_at ASC, id ASC"
	if err := repo.db.SelectContext(ctx, &txs, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting transactions")
	}
	return txs, nil
}

func (repo *transactionRepository) Get(ctx context.Context, id string) (fund.Transaction, error) {
	var t fund.Transaction
	q := repo.db.Rebind("SELECT " + transactionColumns + " FROM transactions WHERE id = ?")
	if err := repo.db.GetContext(ctx, &t, q, id); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return fund.Transaction{}, fund.ErrNotFound
		}
		return fund.Transaction{}, errors.Wrap(err, "selecting transaction")
	}
	return t, nil
}

func (repo *transactionRepository) Create(ctx context.Context, t fund.Transaction) (fund.Transaction, error) {
	q := `INSERT INTO transactions (` + transactionColumns + `)
		VALUES (:id, :date, :description, :category, :type, :amount, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, t); err != nil {
		return fund.Transaction{}, errors.Wrap(err, "inserting transaction")
	}
	return t, nil
}

func (repo *transactionRepository) Delete(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM transactions WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(err, "deleting transaction")
	}
	return checkAffected(res, fund.ErrNotFound)
}
