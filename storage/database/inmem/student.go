package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/myschool/myschool/core"
	"github.com/myschool/myschool/core/student"
)

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.student}
}

func (repo *studentRepository) query() []student.Student {
	students := make([]student.Student, 0, len(repo.db.table))
	for _, s := range repo.db.table {
		students = append(students, *s)
	}
	return students
}

func matches(s student.Student, filter student.QueryFilter) bool {
	if filter.Class != "" && s.Class != filter.Class {
		return false
	}
	if filter.Search != "" {
		search := strings.ToLower(filter.Search)
		return strings.Contains(strings.ToLower(s.Name), search) ||
			strings.Contains(strings.ToLower(s.EnglishName.String), search) ||
			strings.Contains(s.Number, search)
	}
	return true
}

func (repo *studentRepository) Query(_ context.Context, filter student.QueryFilter, page core.Pagination, orderings []core.DBOrdering) (student.Page, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	all := repo.query()
	found := make([]student.Student, 0, len(all))
	for _, s := range all {
		if matches(s, filter) {
			found = append(found, s)
		}
	}
	sort.Slice(found, func(i, j int) bool { return less(found[i], found[j], orderings) })

	start := page.Offset()
	if start > len(found) {
		start = len(found)
	}
	end := start + page.Size
	if end > len(found) {
		end = len(found)
	}
	return student.Page{Items: found[start:end], Total: len(found)}, nil
}

func less(a, b student.Student, orderings []core.DBOrdering) bool {
	for _, ord := range orderings {
		var x, y string
		switch ord.Field {
		case "name":
			x, y = a.Name, b.Name
		case "class":
			x, y = a.Class, b.Class
		case "created_at":
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt) == ord.Ascending
			}
			continue
		case "updated_at":
			if !a.UpdatedAt.Equal(b.UpdatedAt) {
				return a.UpdatedAt.Before(b.UpdatedAt) == ord.Ascending
			}
			continue
		}
		if x != y {
			return (x < y) == ord.Ascending
		}
	}
	return a.ID < b.ID
}

func (repo *studentRepository) Get(_ context.Context, id string) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if s, ok := repo.db.table[id]; ok {
		return *s, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetByNumbers(_ context.Context, numbers []string) ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	wanted := make(map[string]bool, len(numbers))
	for _, n := range numbers {
		wanted[n] = true
	}
	students := make([]student.Student, 0, len(numbers))
	for _, s := range repo.query() {
		if wanted[s.Number] {
			students = append(students, s)
		}
	}
	return students, nil
}

func (repo *studentRepository) Create(_ context.Context, s student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.table[s.ID] = &s
	return s, nil
}

func (repo *studentRepository) Update(_ context.Context, s student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[s.ID]; !ok {
		return student.Student{}, student.ErrNotFound
	}
	repo.db.table[s.ID] = &s
	return s, nil
}

func (repo *studentRepository) Delete(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return student.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
