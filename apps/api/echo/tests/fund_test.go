package tests

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myschool/myschool/core/fund"
	"github.com/myschool/myschool/core/user"
	testutil "github.com/myschool/myschool/tests"
)

type transactionList struct {
	Transactions []fund.Transaction `json:"transactions"`
}

func Test_fundApi_list(t *testing.T) {
	f := setup(t)

	admin := testutil.CreateUser(t, f.usrRepo, "Admin", "admin@school.test", "", []string{user.RoleAdmin}, true)
	outsider := testutil.CreateUser(t, f.usrRepo, "Parent", "parent@school.test", "", nil, true)
	token := getToken(t, f.conf, admin)

	books := testutil.CreateTransaction(t, f.txnRepo, "2025-02-10", "Library books", fund.CategoryAcademic, fund.TypeExpense, "300")
	fees := testutil.CreateTransaction(t, f.txnRepo, "2025-01-05", "Tuition fees", fund.CategoryAcademic, fund.TypeIncome, "5000")
	gift := testutil.CreateTransaction(t, f.txnRepo, "2025-01-31", "Donation", fund.CategoryDevelopment, fund.TypeIncome, "2000")

	runHTTPTests(t, f.app, []httpTest{
		{name: "Auth required", path: "/v1/transactions", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Staff required", path: "/v1/transactions", token: getToken(t, f.conf, outsider), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "oldest first", path: "/v1/transactions", token: token,
			wantData: marchallObj(t, transactionList{Transactions: []fund.Transaction{fees, gift, books}}),
		},
		{
			name: "date range", path: "/v1/transactions?startDate=2025-01-31&endDate=2025-02-10", token: token,
			wantData: marchallObj(t, transactionList{Transactions: []fund.Transaction{gift, books}}),
		},
		{
			name: "category and type", path: "/v1/transactions?category=Academic&type=income", token: token,
			wantData: marchallObj(t, transactionList{Transactions: []fund.Transaction{fees}}),
		},
		{
			name: "nothing matches", path: "/v1/transactions?startDate=2030-01-01", token: token,
			wantData: marchallObj(t, transactionList{Transactions: []fund.Transaction{}}),
		},
		{
			name: "bad filter", path: "/v1/transactions?startDate=01-01-2025&category=Sports", token: token, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"startDate": "must be a date formatted as YYYY-MM-DD",
				"category":  "unknown category",
			}),
		},
		{name: "retrieve", path: "/v1/transactions/" + gift.ID, token: token, wantData: marchallObj(t, gift)},
		{
			name: "not found", path: "/v1/transactions/nope", token: token, wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "transaction not found"}),
		},
	})
}

func Test_fundApi_summary(t *testing.T) {
	f := setup(t)

	admin := testutil.CreateUser(t, f.usrRepo, "Admin", "admin@school.test", "", []string{user.RoleAdmin}, true)
	token := getToken(t, f.conf, admin)

	testutil.CreateTransaction(t, f.txnRepo, "2025-01-05", "Tuition fees", fund.CategoryAcademic, fund.TypeIncome, "5000")
	testutil.CreateTransaction(t, f.txnRepo, "2025-01-20", "Chalk", fund.CategoryAcademic, fund.TypeExpense, "120.50")
	testutil.CreateTransaction(t, f.txnRepo, "2025-02-02", "Donation", fund.CategoryDevelopment, fund.TypeIncome, "2000")
	testutil.CreateTransaction(t, f.txnRepo, "2025-03-01", "New classroom", fund.CategoryDevelopment, fund.TypeExpense, "4500")

	tests := []struct {
		name        string
		query       string
		wantCount   int
		wantBalance string
		wantMonths  []string
		wantDevExp  string
	}{
		{name: "everything", wantCount: 4, wantBalance: "2379.5", wantMonths: []string{"Jan 2025", "Feb 2025", "Mar 2025"}, wantDevExp: "4500"},
		{name: "february onwards", query: "?startDate=2025-02-01", wantCount: 2, wantBalance: "-2500", wantMonths: []string{"Feb 2025", "Mar 2025"}, wantDevExp: "4500"},
		{name: "academic only", query: "?category=Academic", wantCount: 2, wantBalance: "4879.5", wantMonths: []string{"Jan 2025"}, wantDevExp: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/transactions/summary"+tt.query, token)
			f.app.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var s fund.Summary
			unmarchallObj(t, rec.Body.Bytes(), &s)
			assert.Equal(t, tt.wantCount, s.Count)
			assert.True(t, s.Balance.Equal(decimal.RequireFromString(tt.wantBalance)), "balance %s", s.Balance)
			var labels []string
			for _, m := range s.Monthly {
				labels = append(labels, m.Label)
			}
			assert.Equal(t, tt.wantMonths, labels)
			require.Contains(t, s.Categories, fund.CategoryDevelopment)
			assert.True(t, s.Categories[fund.CategoryDevelopment].Expense.Equal(decimal.RequireFromString(tt.wantDevExp)))
		})
	}

	runHTTPTests(t, f.app, []httpTest{
		{
			name: "bad type", path: "/v1/transactions/summary?type=refund", token: token, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"type": "must be income or expense"}),
		},
	})
}

func Test_fundApi_createDelete(t *testing.T) {
	f := setup(t)

	admin := testutil.CreateUser(t, f.usrRepo, "Admin", "admin@school.test", "", []string{user.RoleAdmin}, true)
	token := getToken(t, f.conf, admin)
	reqMsg := "this field is required"

	runHTTPTests(t, f.app, []httpTest{
		{
			name: "required fields", method: http.MethodPost, path: "/v1/transactions", token: token, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"date": reqMsg, "description": reqMsg, "category": reqMsg, "type": reqMsg}),
		},
		{
			name: "unknown category and type", method: http.MethodPost, path: "/v1/transactions", token: token, wantCode: http.StatusBadRequest,
			body: marchallObj(t, fund.TransactionInput{
				Date:        "2025-04-01",
				Description: "Trip",
				Category:    "Sports",
				Type:        "transfer",
				Amount:      decimal.NewFromInt(10),
			}),
			wantData: marchallObj(t, map[string]string{
				"category": "category must be one of [Academic Development]",
				"type":     "type must be one of [income expense]",
			}),
		},
		{
			name: "negative amount", method: http.MethodPost, path: "/v1/transactions", token: token, wantCode: http.StatusBadRequest,
			body: marchallObj(t, fund.TransactionInput{
				Date:        "2025-04-01",
				Description: "Trip",
				Category:    fund.CategoryDevelopment,
				Type:        fund.TypeExpense,
				Amount:      decimal.NewFromInt(-10),
			}),
			wantData: marchallObj(t, map[string]string{"amount": "amount cannot be negative"}),
		},
	})

	// create
	req, rec := newAuthRequest(http.MethodPost, "/v1/transactions", token, marchallObj(t, fund.TransactionInput{
		Date:        "2025-04-01",
		Description: " Sports day ",
		Category:    fund.CategoryDevelopment,
		Type:        "Expense",
		Amount:      decimal.RequireFromString("1250.75"),
	}))
	f.app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created fund.Transaction
	unmarchallObj(t, rec.Body.Bytes(), &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "2025-04-01", created.Date.String())
	assert.Equal(t, "Sports day", created.Description)
	assert.Equal(t, fund.TypeExpense, created.Type)
	assert.True(t, created.Amount.Equal(decimal.RequireFromString("1250.75")))

	// delete
	req, rec = newAuthRequest(http.MethodDelete, "/v1/transactions/"+created.ID, token)
	f.app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	runHTTPTests(t, f.app, []httpTest{
		{name: "deleted", path: "/v1/transactions", token: token, wantData: marchallObj(t, transactionList{Transactions: []fund.Transaction{}})},
		{
			name: "delete again", method: http.MethodDelete, path: "/v1/transactions/" + created.ID, token: token, wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "transaction not found"}),
		},
	})
}
