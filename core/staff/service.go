package staff

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	// errors
	ErrNotFound = errors.New("teacher not found")
)

type (
	Repository interface {
		// List returns every teacher, newest first.
		List(ctx context.Context) ([]Teacher, error)
		Get(ctx context.Context, id string) (Teacher, error)
		Create(ctx context.Context, t Teacher) (Teacher, error)
		Update(ctx context.Context, t Teacher) (Teacher, error)
		Delete(ctx context.Context, id string) error
	}

	Service interface {
		List(ctx context.Context) ([]Teacher, error)
		Get(ctx context.Context, id string) (Teacher, error)
		Create(ctx context.Context, in TeacherInput) (Teacher, error)
		Update(ctx context.Context, id string, in TeacherInput) (Teacher, error)
		Delete(ctx context.Context, id string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) List(ctx context.Context) ([]Teacher, error) {
	teachers, err := svc.repo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing teachers")
	}
	if teachers == nil {
		teachers = []Teacher{}
	}
	return teachers, nil
}

func (svc *service) Get(ctx context.Context, id string) (Teacher, error) {
	return svc.repo.Get(ctx, id)
}

func (svc *service) Create(ctx context.Context, in TeacherInput) (Teacher, error) {
	now := time.Now().UTC()
	t := Teacher{
		ID:        uuid.New().String(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	in.apply(&t)
	return svc.repo.Create(ctx, t)
}

func (svc *service) Update(ctx context.Context, id string, in TeacherInput) (Teacher, error) {
	t, err := svc.repo.Get(ctx, id)
	if err != nil {
		return Teacher{}, err
	}
	in.apply(&t)
	t.UpdatedAt = time.Now().UTC()
	return svc.repo.Update(ctx, t)
}

func (svc *service) Delete(ctx context.Context, id string) error {
	return svc.repo.Delete(ctx, id)
}
