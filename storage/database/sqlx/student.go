package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/myschool/myschool/core"
	"github.com/myschool/myschool/core/student"
)

const studentColumns = "id, name, number, class, description, english_name, mother_name, father_name, photo_url, created_at, updated_at"

type studentRepository struct {
	db core.DBExecutor
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db core.DBExecutor) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) Query(ctx context.Context, filter student.QueryFilter, page core.Pagination, orderings []core.DBOrdering) (student.Page, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.Class != "" {
		conds = append(conds, "class = ?")
		args = append(args, filter.Class)
	}
	if filter.Search != "" {
		conds = append(conds, "(name ILIKE ? OR english_name ILIKE ? OR number LIKE ?)")
		pattern := "%" + escapeLike(filter.Search) + "%"
		args = append(args, pattern, pattern, pattern)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := repo.db.GetContext(ctx, &total, repo.db.Rebind("SELECT COUNT(*) FROM students"+where), args...); err != nil {
		return student.Page{}, errors.Wrap(err, "counting students")
	}

	q := "SELECT " + studentColumns + " FROM students" + where + orderBy(orderings) + " LIMIT ? OFFSET ?"
	items := make([]student.Student, 0, page.Size)
	if err := repo.db.SelectContext(ctx, &items, repo.db.Rebind(q), append(args, page.Size, page.Offset())...); err != nil {
		return student.Page{}, errors.Wrap(err, "selecting students")
	}
	return student.Page{Items: items, Total: total}, nil
}

func (repo *studentRepository) Get(ctx context.Context, id string) (student.Student, error) {
	var s student.Student
	q := repo.db.Rebind("SELECT " + studentColumns + " FROM students WHERE id = ?")
	if err := repo.db.GetContext(ctx, &s, q, id); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "selecting student")
	}
	return s, nil
}

func (repo *studentRepository) GetByNumbers(ctx context.Context, numbers []string) ([]student.Student, error) {
	students := make([]student.Student, 0, len(numbers))
	if len(numbers) == 0 {
		return students, nil
	}
	q, args, err := sqlx.In("SELECT "+studentColumns+" FROM students WHERE number IN (?)", numbers)
	if err != nil {
		return nil, errors.Wrap(err, "building numbers query")
	}
	if err = repo.db.SelectContext(ctx, &students, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting students by numbers")
	}
	return students, nil
}

func (repo *studentRepository) Create(ctx context.Context, s student.Student) (student.Student, error) {
	q := `INSERT INTO students (` + studentColumns + `)
		VALUES (:id, :name, :number, :class, :description, :english_name, :mother_name, :father_name, :photo_url, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, s); err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return s, nil
}

func (repo *studentRepository) Update(ctx context.Context, s student.Student) (student.Student, error) {
	q := `UPDATE students SET name = :name, number = :number, class = :class, description = :description,
		english_name = :english_name, mother_name = :mother_name, father_name = :father_name,
		photo_url = :photo_url, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, s)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if err = checkAffected(res, student.ErrNotFound); err != nil {
		return student.Student{}, err
	}
	return s, nil
}

func (repo *studentRepository) Delete(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM students WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return checkAffected(res, student.ErrNotFound)
}

// orderBy renders orderings, which must only reference known columns.
func orderBy(orderings []core.DBOrdering) string {
	if len(orderings) == 0 {
		return ""
	}
	parts := make([]string, 0, len(orderings)+1)
	for _, ord := range orderings {
		parts = append(parts, ord.String())
	}
	parts = append(parts, "id ASC") // stable pages
	return " ORDER BY " + strings.Join(parts, ", ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
