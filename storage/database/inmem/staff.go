package inmemdb

import (
	"context"
	"sort"

	"github.com/myschool/myschool/core/staff"
)

type teacherRepository struct {
	db *teacherTable
}

var _ staff.Repository = (*teacherRepository)(nil)

func NewTeacherRepository(db *DB) staff.Repository {
	return &teacherRepository{db: db.teacher}
}

func (repo *teacherRepository) List(_ context.Context) ([]staff.Teacher, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	teachers := make([]staff.Teacher, 0, len(repo.db.table))
	for _, t := range repo.db.table {
		teachers = append(teachers, *t)
	}
	sort.Slice(teachers, func(i, j int) bool {
		if !teachers[i].CreatedAt.Equal(teachers[j].CreatedAt) {
			return teachers[i].CreatedAt.After(teachers[j].CreatedAt)
		}
		return teachers[i].ID < teachers[j].ID
	})
	return teachers, nil
}

func (repo *teacherRepository) Get(_ context.Context, id string) (staff.Teacher, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if t, ok := repo.db.table[id]; ok {
		return *t, nil
	}
	return staff.Teacher{}, staff.ErrNotFound
}

func (repo *teacherRepository) Create(_ context.Context, t staff.Teacher) (staff.Teacher, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.table[t.ID] = &t
	return t, nil
}

func (repo *teacherRepository) Update(_ context.Context, t staff.Teacher) (staff.Teacher, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[t.ID]; !ok {
		return staff.Teacher{}, staff.ErrNotFound
	}
	repo.db.table[t.ID] = &t
	return t, nil
}

func (repo *teacherRepository) Delete(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return staff.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
