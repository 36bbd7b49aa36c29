package student_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/myschool/myschool/core"
	"github.com/myschool/myschool/core/sms"
	"github.com/myschool/myschool/core/student"
	inmemdb "github.com/myschool/myschool/storage/database/inmem"
	testutil "github.com/myschool/myschool/tests"
)

func newService(t *testing.T, batchSize int) (student.Repository, student.Service) {
	var conf core.Config
	conf.Students.PageSize = 2
	conf.Students.ExportBatchSize = batchSize
	repo := inmemdb.NewStudentRepository(inmemdb.NewDB())
	return repo, student.NewService(repo, &conf)
}

func TestService_Query(t *testing.T) {
	ctx := context.Background()
	repo, svc := newService(t, 100)
	testutil.CreateStudent(t, repo, "রহিম", "01711111111", "প্রথম", "Rahim", "", "")
	testutil.CreateStudent(t, repo, "করিম", "01722222222", "প্রথম", "Karim", "", "")
	testutil.CreateStudent(t, repo, "সালমা", "01733333333", "দ্বিতীয়", "Salma", "", "")

	tests := []struct {
		name      string
		filter    student.QueryFilter
		page      core.Pagination
		orderings []core.DBOrdering
		wantNames []string
		wantTotal int
	}{
		{name: "default page size", wantNames: []string{"করিম", "রহিম"}, wantTotal: 3},
		{name: "second page", page: core.Pagination{Page: 2}, wantNames: []string{"সালমা"}, wantTotal: 3},
		{name: "class", filter: student.QueryFilter{Class: " দ্বিতীয় "}, wantNames: []string{"সালমা"}, wantTotal: 1},
		{name: "search english name", filter: student.QueryFilter{Search: "rah"}, wantNames: []string{"রহিম"}, wantTotal: 1},
		{name: "search number", filter: student.QueryFilter{Search: "0172"}, wantNames: []string{"করিম"}, wantTotal: 1},
		{
			name:      "unknown ordering ignored",
			page:      core.Pagination{Size: 10},
			orderings: []core.DBOrdering{{Field: "password"}, {Field: "name", Ascending: false}},
			wantNames: []string{"সালমা", "রহিম", "করিম"},
			wantTotal: 3,
		},
		{name: "no match", filter: student.QueryFilter{Class: "ষষ্ঠ"}, wantNames: []string{}, wantTotal: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := svc.Query(ctx, tt.filter, tt.page, tt.orderings)
			require.NoError(t, err)
			names := make([]string, 0, len(p.Items))
			for _, s := range p.Items {
				names = append(names, s.Name)
			}
			assert.Equal(t, tt.wantNames, names)
			assert.Equal(t, tt.wantTotal, p.Total)
		})
	}
}

func TestService_CreateUpdateDelete(t *testing.T) {
	ctx := context.Background()
	_, svc := newService(t, 100)

	s, err := svc.Create(ctx, student.StudentInput{Name: "রহিম", Number: "01711111111", Class: "প্রথম", EnglishName: "Rahim"})
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, null.StringFrom("Rahim"), s.EnglishName)
	assert.False(t, s.MotherName.Valid)

	updated, err := svc.Update(ctx, s.ID, student.StudentInput{Name: "রহিম", Number: "01711111111", Class: "দ্বিতীয়"})
	require.NoError(t, err)
	assert.Equal(t, "দ্বিতীয়", updated.Class)
	assert.False(t, updated.EnglishName.Valid)
	assert.Equal(t, s.CreatedAt, updated.CreatedAt)

	_, err = svc.Update(ctx, "missing", student.StudentInput{})
	assert.Equal(t, student.ErrNotFound, errors.Cause(err))

	require.NoError(t, svc.Delete(ctx, s.ID))
	_, err = svc.Get(ctx, s.ID)
	assert.Equal(t, student.ErrNotFound, errors.Cause(err))
}

func TestStudentInput_Validate(t *testing.T) {
	e := en.New()
	translator, _ := ut.New(e, e).GetTranslator("en")
	valid := validator.New()
	core.InitValidators(valid, translator)
	student.InitValidators(valid, translator)

	tests := []struct {
		name    string
		in      student.StudentInput
		wantTag string
	}{
		{name: "ok", in: student.StudentInput{Name: " রহিম ", Number: "+880 1711-111111", Class: "প্রথম"}},
		{name: "missing name", in: student.StudentInput{Number: "01711111111", Class: "প্রথম"}, wantTag: "required"},
		{name: "bad number", in: student.StudentInput{Name: "রহিম", Number: "12345", Class: "প্রথম"}, wantTag: "bdphone"},
		{name: "unknown class", in: student.StudentInput{Name: "রহিম", Number: "01711111111", Class: "দশম"}, wantTag: "studentclass"},
		{name: "bad photo url", in: student.StudentInput{Name: "রহিম", Number: "01711111111", Class: "প্রথম", PhotoURL: "not a url"}, wantTag: "url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in
			err := in.Validate(valid)
			if tt.wantTag == "" {
				require.NoError(t, err)
				assert.Equal(t, "রহিম", in.Name)
				assert.Equal(t, "8801711111111", in.Number)
				return
			}
			var verrs validator.ValidationErrors
			require.True(t, errors.As(err, &verrs), "got %v", err)
			assert.Equal(t, tt.wantTag, verrs[0].Tag())
		})
	}
}

func TestService_ExportCSV(t *testing.T) {
	ctx := context.Background()
	repo, svc := newService(t, 2) // several batches

	var buf bytes.Buffer
	_, err := svc.ExportCSV(ctx, "", &buf)
	assert.Equal(t, student.ErrNothingToExport, errors.Cause(err))
	assert.Empty(t, buf.String())

	testutil.CreateStudent(t, repo, "রহিম", "01711111111", "প্রথম", "Rahim", "Amina", "Abdul")
	testutil.CreateStudent(t, repo, "করিম", "01722222222", "প্রথম", "", "", "")
	testutil.CreateStudent(t, repo, `সালমা "মিষ্টি"`, "01733333333", "দ্বিতীয়", "Salma", "", "")

	n, err := svc.ExportCSV(ctx, "", &buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, strings.Join([]string{
		"Name,Class,Number,Description,English Name,Mother Name,Father Name,Photo URL",
		`"করিম","প্রথম","01722222222","","","","",""`,
		`"রহিম","প্রথম","01711111111","","Rahim","Amina","Abdul",""`,
		`"সালমা ""মিষ্টি""","দ্বিতীয়","01733333333","","Salma","","",""`,
	}, "\n"), buf.String())

	buf.Reset()
	n, err = svc.ExportCSV(ctx, "দ্বিতীয়", &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, strings.Split(buf.String(), "\n"), 2)

	_, err = svc.ExportCSV(ctx, "ষষ্ঠ", &buf)
	assert.Equal(t, student.ErrNothingToExport, errors.Cause(err))
}

func TestExportFileName(t *testing.T) {
	at := time.Date(2025, time.March, 7, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "myschool_student_number_dataset_2025-03-07.csv", student.ExportFileName(at))
}

func TestService_Overview(t *testing.T) {
	ctx := context.Background()
	repo, svc := newService(t, 2)

	ov, err := svc.Overview(ctx)
	require.NoError(t, err)
	assert.Zero(t, ov.TotalStudents)
	assert.Equal(t, time.Unix(0, 0).UTC(), ov.LastUpdated)

	latest := time.Date(2025, time.January, 2, 10, 0, 0, 0, time.UTC)
	full := testutil.CreateStudent(t, repo, "রহিম", "01711111111", "প্রথম", "Rahim", "Amina", "Abdul", latest.Add(-time.Hour))
	full.PhotoURL = null.StringFrom("https://i.ibb.co/x/rahim.jpg")
	full.Description = null.StringFrom("class captain")
	_, err = repo.Update(ctx, full)
	require.NoError(t, err)
	testutil.CreateStudent(t, repo, "করিম", "01722222222", "প্রথম", "", "Amina", "Jamal", latest)
	testutil.CreateStudent(t, repo, "সালমা", "01733333333", "দ্বিতীয়", "Salma", "", "", latest.Add(-48*time.Hour))

	ov, err = svc.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, ov.TotalStudents)
	assert.Equal(t, map[string]int{"প্রথম": 2, "দ্বিতীয়": 1}, ov.Classes)
	assert.Equal(t, student.MissingFields{Description: 2, EnglishName: 1, MotherName: 1, FatherName: 1, PhotoURL: 2}, ov.MissingFields)
	assert.Equal(t, 2, ov.IncompleteProfiles)
	assert.Equal(t, 3, ov.UniqueParents) // Amina, Abdul, Jamal
	assert.Equal(t, latest, ov.LastUpdated)
}

func TestService_Recipients(t *testing.T) {
	ctx := context.Background()
	repo, svc := newService(t, 100)
	testutil.CreateStudent(t, repo, "রহিম", "8801711111111", "প্রথম", "Rahim", "Amina", "")

	got, err := svc.Recipients(ctx, []string{"8801799999999", "8801711111111"})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, sms.Recipient{PhoneNumber: "8801799999999", Missing: true}, got[0])
	assert.Equal(t, sms.Recipient{
		PhoneNumber: "8801711111111",
		Fields: map[string]string{
			sms.PlaceholderStudentName: "রহিম",
			sms.PlaceholderEnglishName: "Rahim",
			sms.PlaceholderClass:       "প্রথম",
			sms.PlaceholderMotherName:  "Amina",
			sms.PlaceholderFatherName:  "",
		},
	}, got[1])

	empty, err := svc.Recipients(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestPhotoFileName(t *testing.T) {
	tests := []struct {
		name string
		s    student.Student
		want string
	}{
		{name: "english name and png", s: student.Student{Name: "রহিম", EnglishName: null.StringFrom("Rahim"), Class: "প্রথম", PhotoURL: null.StringFrom("https://i.ibb.co/x/a.PNG")}, want: "Rahim_প্রথম.png"},
		{name: "falls back to name", s: student.Student{Name: "রহিম", Class: "প্রথম", PhotoURL: null.StringFrom("https://i.ibb.co/x/a.jpeg")}, want: "রহিম_প্রথম.jpeg"},
		{name: "unknown extension", s: student.Student{Name: "রহিম", Class: "প্রথম", PhotoURL: null.StringFrom("https://i.ibb.co/x/a.webp")}, want: "রহিম_প্রথম.jpg"},
		{name: "no photo", s: student.Student{Name: "রহিম", Class: "প্রথম"}, want: "রহিম_প্রথম.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, student.PhotoFileName(tt.s))
		})
	}
}
