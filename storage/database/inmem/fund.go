package inmemdb

import (
	"context"
	"sort"

	"github.com/myschool/myschool/core/fund"
)

type transactionRepository struct {
	db *transactionTable
}

var _ fund.Repository = (*transactionRepository)(nil)

func NewTransactionRepository(db *DB) fund.Repository {
	return &transactionRepository{db: db.txn}
}

func (repo *transactionRepository) Query(_ context.Context, filter fund.Filter) ([]fund.Transaction, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	txs := make([]fund.Transaction, 0)
	for _, t := range repo.db.table {
		if filter.Match(*t) {
			txs = append(txs, *t)
		}
	}
	sort.Slice(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date.Time) {
			return txs[i].Date.Before(txs[j].Date.Time)
		}
		if !txs[i].CreatedAt.Equal(txs[j].CreatedAt) {
			return txs[i].CreatedAt.Before(txs[j].CreatedAt)
		}
		return txs[i].ID < txs[j].ID
	})
	return txs, nil
}

func (repo *transactionRepository) Get(_ context.Context, id string) (fund.Transaction, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if t, ok := repo.db.table[id]; ok {
		return *t, nil
	}
	return fund.Transaction{}, fund.ErrNotFound
}

func (repo *transactionRepository) Create(_ context.Context, t fund.Transaction) (fund.Transaction, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.table[t.ID] = &t
	return t, nil
}

func (repo *transactionRepository) Delete(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return fund.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
