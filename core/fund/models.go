package fund

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/myschool/myschool/core"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

// Categories
const (
	CategoryAcademic    = "Academic"
	CategoryDevelopment = "Development"
)

// Types
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

var Categories = []string{CategoryAcademic, CategoryDevelopment}

// Date is a calendar day, written as YYYY-MM-DD.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// YearMonth is the YYYY-MM the day falls in.
func (d Date) YearMonth() string {
	return d.Format(monthLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Value() (driver.Value, error) {
	return d.Time, nil
}

func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*d = NewDate(v.Year(), v.Month(), v.Day())
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	}
	return fmt.Errorf("cannot scan %T into fund.Date", src)
}

func (d *Date) scanString(s string) error {
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

type Transaction struct {
	ID          string          `json:"id" db:"id"`
	Date        Date            `json:"date" db:"date"`
	Description string          `json:"description" db:"description"`
	Category    string          `json:"category" db:"category"`
	Type        string          `json:"type" db:"type"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"` // UTC
}

// TransactionInput is what may be provided to record a Transaction.
type TransactionInput struct {
	Date        string          `json:"date" validate:"required,datetime=2006-01-02"`
	Description string          `json:"description" validate:"required"`
	Category    string          `json:"category" validate:"required,oneof=Academic Development"`
	Type        string          `json:"type" validate:"required,oneof=income expense"`
	Amount      decimal.Decimal `json:"amount"`
}

func (in *TransactionInput) Validate(validate *validator.Validate) error {
	in.Date = core.CleanString(in.Date)
	in.Description = core.CleanString(in.Description)
	in.Category = core.CleanString(in.Category)
	in.Type = core.CleanString(in.Type, true /* lower */)

	if err := validate.Struct(in); err != nil {
		return err
	}
	if in.Amount.IsNegative() {
		return core.NewValidationError(nil, core.FieldError{Field: "amount", Error: "amount cannot be negative"})
	}
	return nil
}

// Filter narrows transactions down. Blank fields match everything; date bounds are inclusive.
type Filter struct {
	From     string `query:"startDate"`
	To       string `query:"endDate"`
	Category string `query:"category"`
	Type     string `query:"type"`

	from, to *Date
}

// Clean trims the filter and parses its date bounds.
func (f *Filter) Clean() error {
	f.From = core.CleanString(f.From)
	f.To = core.CleanString(f.To)
	f.Category = core.CleanString(f.Category)
	f.Type = core.CleanString(f.Type, true /* lower */)
	f.from, f.to = nil, nil

	var fields []core.FieldError
	parse := func(field, value string) *Date {
		if value == "" {
			return nil
		}
		d, err := ParseDate(value)
		if err != nil {
			fields = append(fields, core.FieldError{Field: field, Error: "must be a date formatted as YYYY-MM-DD"})
			return nil
		}
		return &d
	}
	f.from = parse("startDate", f.From)
	f.to = parse("endDate", f.To)

	if f.Category != "" && !isCategory(f.Category) {
		fields = append(fields, core.FieldError{Field: "category", Error: "unknown category"})
	}
	if f.Type != "" && f.Type != TypeIncome && f.Type != TypeExpense {
		fields = append(fields, core.FieldError{Field: "type", Error: "must be income or expense"})
	}
	if len(fields) > 0 {
		return core.NewValidationError(nil, fields...)
	}
	return nil
}

// Bounds returns the parsed date bounds; nil means unbounded. Only valid after Clean.
func (f Filter) Bounds() (from, to *Date) {
	return f.from, f.to
}

// Match reports whether t passes the cleaned filter.
func (f Filter) Match(t Transaction) bool {
	if f.from != nil && t.Date.Before(f.from.Time) {
		return false
	}
	if f.to != nil && t.Date.After(f.to.Time) {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	return true
}

func isCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}
