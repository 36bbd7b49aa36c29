package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/myschool/myschool/core/fund"
	"github.com/myschool/myschool/core/staff"
	"github.com/myschool/myschool/core/student"
	"github.com/myschool/myschool/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	if roles == nil {
		roles = []string{}
	}
	usr := user.User{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// CreateStudent stores a student. Empty optional values are stored as NULL.
func CreateStudent(
	t *testing.T,
	repo student.Repository,
	name, number, class, englishName, motherName, fatherName string,
	updatedAt ...time.Time,
) student.Student {
	tstamp := time.Now().UTC()
	if len(updatedAt) > 0 {
		tstamp = updatedAt[0].UTC()
	}
	s := student.Student{
		ID:          uuid.New().String(),
		Name:        name,
		Number:      number,
		Class:       class,
		EnglishName: null.NewString(englishName, englishName != ""),
		MotherName:  null.NewString(motherName, motherName != ""),
		FatherName:  null.NewString(fatherName, fatherName != ""),
		CreatedAt:   tstamp,
		UpdatedAt:   tstamp,
	}
	s, err := repo.Create(context.Background(), s)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return s
}

func CreateTeacher(t *testing.T, repo staff.Repository, nameBangla, nameEnglish, mobile string, createdAt ...time.Time) staff.Teacher {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	tchr := staff.Teacher{
		ID:          uuid.New().String(),
		NameBangla:  nameBangla,
		NameEnglish: nameEnglish,
		Mobile:      mobile,
		Salary:      decimal.Zero,
		CreatedAt:   tstamp,
		UpdatedAt:   tstamp,
	}
	tchr, err := repo.Create(context.Background(), tchr)
	if err != nil {
		t.Fatalf("CreateTeacher() failed: %v", err)
	}
	return tchr
}

// CreateTransaction stores a transaction dated date (YYYY-MM-DD) with a decimal amount.
func CreateTransaction(t *testing.T, repo fund.Repository, date, description, category, typ, amount string) fund.Transaction {
	d, err := fund.ParseDate(date)
	if err != nil {
		t.Fatalf("CreateTransaction() failed: %v", err)
	}
	txn := fund.Transaction{
		ID:          uuid.New().String(),
		Date:        d,
		Description: description,
		Category:    category,
		Type:        typ,
		Amount:      decimal.RequireFromString(amount),
		CreatedAt:   time.Now().UTC(),
	}
	txn, err = repo.Create(context.Background(), txn)
	if err != nil {
		t.Fatalf("CreateTransaction() failed: %v", err)
	}
	return txn
}
