package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/myschool/myschool/core"
	"github.com/myschool/myschool/core/staff"
)

const teacherColumns = "id, name_bangla, name_english, subject, designation, joining_date, nid, mobile, blood_group, email, address, photo_url, salary, working_days, created_at, updated_at"

type teacherRepository struct {
	db core.DBExecutor
}

var _ staff.Repository = (*teacherRepository)(nil)

func NewTeacherRepository(db core.DBExecutor) staff.Repository {
	return &teacherRepository{db: db}
}

func (repo *teacherRepository) List(ctx context.Context) ([]staff.Teacher, error) {
	teachers := make([]staff.Teacher, 0)
	q := "SELECT " + teacherColumns + " FROM teachers ORDER BY created_at DESC, id ASC"
	if err := repo.db.SelectContext(ctx, &teachers, q); err != nil {
		return nil, errors.Wrap(err, "selecting teachers")
	}
	return teachers, nil
}

func (repo *teacherRepository) Get(ctx context.Context, id string) (staff.Teacher, error) {
	var t staff.Teacher
	q := repo.db.Rebind("SELECT " + teacherColumns + " FROM teachers WHERE id = ?")
	if err := repo.db.GetContext(ctx, &t, q, id); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return staff.Teacher{}, staff.ErrNotFound
		}
		return staff.Teacher{}, errors.Wrap(err, "selecting teacher")
	}
	return t, nil
}

func (repo *teacherRepository) Create(ctx context.Context, t staff.Teacher) (staff.Teacher, error) {
	q := `INSERT INTO teachers (` + teacherColumns + `)
		VALUES (:id, :name_bangla, :name_english, :subject, :designation, :joining_date, :nid, :mobile,
			:blood_group, :email, :address, :photo_url, :salary, :working_days, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, t); err != nil {
		return staff.Teacher{}, errors.Wrap(err, "inserting teacher")
	}
	return t, nil
}

func (repo *teacherRepository) Update(ctx context.Context, t staff.Teacher) (staff.Teacher, error) {
	q := `UPDATE teachers SET name_bangla = :name_bangla, name_english = :name_english, subject = :subject,
		designation = :designation, joining_date = :joining_date, nid = :nid, mobile = :mobile,
		blood_group = :blood_group, email = :email, address = :address, photo_url = :photo_url,
		salary = :salary, working_days = :working_days, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, t)
	if err != nil {
		return staff.Teacher{}, errors.Wrap(err, "updating teacher")
	}
	if err = checkAffected(res, staff.ErrNotFound); err != nil {
		return staff.Teacher{}, err
	}
	return t, nil
}

func (repo *teacherRepository) Delete(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM teachers WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(err, "deleting teacher")
	}
	return checkAffected(res, staff.ErrNotFound)
}
