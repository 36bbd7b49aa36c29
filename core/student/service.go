package student

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/myschool/myschool/core"
	"github.com/myschool/myschool/core/sms"
)

var (
	// errors
	ErrNotFound        = errors.New("student not found")
	ErrNothingToExport = errors.New("no students found to export")
)

type (
	Repository interface {
		// Query applies AND on the set QueryFilter fields.
		Query(ctx context.Context, filter QueryFilter, page core.Pagination, orderings []core.DBOrdering) (Page, error)
		Get(ctx context.Context, id string) (Student, error)
		// GetByNumbers returns the students whose number is one of numbers, in no particular order.
		GetByNumbers(ctx context.Context, numbers []string) ([]Student, error)
		Create(ctx context.Context, s Student) (Student, error)
		Update(ctx context.Context, s Student) (Student, error)
		Delete(ctx context.Context, id string) error
	}

	Service interface {
		sms.Directory

		Query(ctx context.Context, filter QueryFilter, page core.Pagination, orderings []core.DBOrdering) (Page, error)
		Get(ctx context.Context, id string) (Student, error)
		Create(ctx context.Context, in StudentInput) (Student, error)
		Update(ctx context.Context, id string, in StudentInput) (Student, error)
		Delete(ctx context.Context, id string) error
		// ExportCSV writes every student of class (all classes when empty) to w.
		ExportCSV(ctx context.Context, class string, w io.Writer) (int, error)
		Overview(ctx context.Context) (Overview, error)
	}

	service struct {
		repo            Repository
		pageSize        int
		exportBatchSize int
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, conf *core.Config) Service {
	return &service{
		repo:            repo,
		pageSize:        conf.Students.PageSize,
		exportBatchSize: conf.Students.ExportBatchSize,
	}
}

func (svc *service) Query(ctx context.Context, filter QueryFilter, page core.Pagination, orderings []core.DBOrdering) (Page, error) {
	filter.Clean()
	page.Clean(svc.pageSize)
	p, err := svc.repo.Query(ctx, filter, page, CleanOrderings(orderings))
	if err != nil {
		return Page{}, errors.Wrap(err, "querying students")
	}
	if p.Items == nil {
		p.Items = []Student{}
	}
	return p, nil
}

func (svc *service) Get(ctx context.Context, id string) (Student, error) {
	return svc.repo.Get(ctx, id)
}

func (svc *service) Create(ctx context.Context, in StudentInput) (Student, error) {
	now := time.Now().UTC()
	s := Student{
		ID:        uuid.New().String(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	in.apply(&s)
	return svc.repo.Create(ctx, s)
}

func (svc *service) Update(ctx context.Context, id string, in StudentInput) (Student, error) {
	s, err := svc.repo.Get(ctx, id)
	if err != nil {
		return Student{}, err
	}
	in.apply(&s)
	s.UpdatedAt = time.Now().UTC()
	return svc.repo.Update(ctx, s)
}

func (svc *service) Delete(ctx context.Context, id string) error {
	return svc.repo.Delete(ctx, id)
}

// each calls fn with every student matching filter, fetching them in batches until offset >= total.
func (svc *service) each(ctx context.Context, filter QueryFilter, fn func(Student) error) error {
	page := core.Pagination{Page: 1, Size: svc.exportBatchSize}
	orderings := CleanOrderings(nil)
	for {
		p, err := svc.repo.Query(ctx, filter, page, orderings)
		if err != nil {
			return errors.Wrap(err, "querying students")
		}
		for _, s := range p.Items {
			if err = fn(s); err != nil {
				return err
			}
		}
		if page.Offset()+page.Size >= p.Total || len(p.Items) == 0 {
			return nil
		}
		page.Page++
	}
}
