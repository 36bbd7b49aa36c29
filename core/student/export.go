package student

import (
	"bufio"
	"context"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var exportHeader = []string{"Name", "Class", "Number", "Description", "English Name", "Mother Name", "Father Name", "Photo URL"}

// ExportFileName is the download name of a CSV export made at t.
func ExportFileName(t time.Time) string {
	return "myschool_student_number_dataset_" + t.UTC().Format("2006-01-02") + ".csv"
}

// ExportCSV writes an unquoted header line then one line per student with every field quoted.
// Nothing is written when no student matches.
func (svc *service) ExportCSV(ctx context.Context, class string, w io.Writer) (int, error) {
	filter := QueryFilter{Class: class}
	filter.Clean()

	var students []Student
	if err := svc.each(ctx, filter, func(s Student) error {
		students = append(students, s)
		return nil
	}); err != nil {
		return 0, err
	}
	if len(students) == 0 {
		return 0, ErrNothingToExport
	}

	bw := bufio.NewWriter(w)
	_, _ = bw.WriteString(strings.Join(exportHeader, ","))
	for _, s := range students {
		_ = bw.WriteByte('\n')
		_, _ = bw.WriteString(csvRow(
			s.Name,
			s.Class,
			s.Number,
			s.Description.String,
			s.EnglishName.String,
			s.MotherName.String,
			s.FatherName.String,
			s.PhotoURL.String,
		))
	}
	if err := bw.Flush(); err != nil {
		return 0, errors.Wrap(err, "writing csv")
	}
	return len(students), nil
}

func csvRow(fields ...string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}
