package fund

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Totals are the income, expense and balance (income - expense) of a set of transactions.
type Totals struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

func (t *Totals) add(tx Transaction) {
	switch tx.Type {
	case TypeIncome:
		t.Income = t.Income.Add(tx.Amount)
	case TypeExpense:
		t.Expense = t.Expense.Add(tx.Amount)
	}
	t.Balance = t.Income.Sub(t.Expense)
}

// MonthTotals is one point of a monthly income/expense series.
type MonthTotals struct {
	Month   string          `json:"month"` // YYYY-MM
	Label   string          `json:"label"` // e.g. "Mar 2025"
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

type CategorySummary struct {
	Totals
	Monthly []MonthTotals `json:"monthly"`
}

type Summary struct {
	Totals
	Count   int           `json:"count"`
	Monthly []MonthTotals `json:"monthly"`
	// Categories has an entry for every category, zero when it has no transactions.
	Categories map[string]CategorySummary `json:"categories"`
}

// Summarize totals txs overall and per category, with monthly series sorted by month.
func Summarize(txs []Transaction) Summary {
	s := Summary{
		Totals:     zeroTotals(),
		Count:      len(txs),
		Categories: make(map[string]CategorySummary, len(Categories)),
	}
	byCategory := make(map[string][]Transaction, len(Categories))
	for _, tx := range txs {
		s.add(tx)
		byCategory[tx.Category] = append(byCategory[tx.Category], tx)
	}
	s.Monthly = monthly(txs)

	for _, c := range Categories {
		cs := CategorySummary{Totals: zeroTotals()}
		for _, tx := range byCategory[c] {
			cs.add(tx)
		}
		cs.Monthly = monthly(byCategory[c])
		s.Categories[c] = cs
	}
	return s
}

func zeroTotals() Totals {
	return Totals{Income: decimal.Zero, Expense: decimal.Zero, Balance: decimal.Zero}
}

func monthly(txs []Transaction) []MonthTotals {
	byMonth := make(map[string]*MonthTotals)
	for _, tx := range txs {
		key := tx.Date.YearMonth()
		mt, ok := byMonth[key]
		if !ok {
			mt = &MonthTotals{
				Month:   key,
				Label:   tx.Date.Format("Jan 2006"),
				Income:  decimal.Zero,
				Expense: decimal.Zero,
			}
			byMonth[key] = mt
		}
		switch tx.Type {
		case TypeIncome:
			mt.Income = mt.Income.Add(tx.Amount)
		case TypeExpense:
			mt.Expense = mt.Expense.Add(tx.Amount)
		}
	}

	series := make([]MonthTotals, 0, len(byMonth))
	for _, mt := range byMonth {
		series = append(series, *mt)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Month < series[j].Month })
	return series
}
