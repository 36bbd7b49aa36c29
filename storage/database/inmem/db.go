package inmemdb

import (
	"sync"

	"github.com/myschool/myschool/core/fund"
	"github.com/myschool/myschool/core/staff"
	"github.com/myschool/myschool/core/student"
	"github.com/myschool/myschool/core/user"
)

type (
	userTable struct {
		mutex sync.RWMutex
		table map[string]*user.User
	}

	studentTable struct {
		mutex sync.RWMutex
		table map[string]*student.Student
	}

	teacherTable struct {
		mutex sync.RWMutex
		table map[string]*staff.Teacher
	}

	transactionTable struct {
		mutex sync.RWMutex
		table map[string]*fund.Transaction
	}
)

// DB is an in-memory store used in tests and local development.
type DB struct {
	user    *userTable
	student *studentTable
	teacher *teacherTable
	txn     *transactionTable
}

func NewDB() *DB {
	return &DB{
		user:    &userTable{table: make(map[string]*user.User)},
		student: &studentTable{table: make(map[string]*student.Student)},
		teacher: &teacherTable{table: make(map[string]*staff.Teacher)},
		txn:     &transactionTable{table: make(map[string]*fund.Transaction)},
	}
}
