package student

import (
	"path"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/myschool/myschool/core"
)

// Classes are the class options a student can be enrolled in, in display order.
var Classes = []string{
	"নার্সারি",
	"প্লে",
	"প্রথম",
	"দ্বিতীয়",
	"তৃতীয়",
	"চতুর্থ",
	"পঞ্চম",
	"ষষ্ঠ",
}

// OrderingFields are the fields a student listing may be ordered by.
var OrderingFields = map[string]bool{
	"name":       true,
	"class":      true,
	"created_at": true,
	"updated_at": true,
}

type Student struct {
	ID          string      `json:"id" db:"id"`
	Name        string      `json:"name" db:"name"`
	Number      string      `json:"number" db:"number"`
	Class       string      `json:"class" db:"class"`
	Description null.String `json:"description" db:"description"`
	EnglishName null.String `json:"english_name" db:"english_name"`
	MotherName  null.String `json:"mother_name" db:"mother_name"`
	FatherName  null.String `json:"father_name" db:"father_name"`
	PhotoURL    null.String `json:"photo_url" db:"photo_url"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"` // UTC
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"` // UTC
}

// Page is one page of a student listing along with the total number of matches.
type Page struct {
	Items []Student `json:"items"`
	Total int       `json:"total"`
}

// StudentInput is what may be provided to create or modify a Student.
type StudentInput struct {
	Name        string `json:"name" validate:"required"`
	Number      string `json:"number" validate:"required,bdphone"`
	Class       string `json:"class" validate:"required,studentclass"`
	Description string `json:"description"`
	EnglishName string `json:"english_name"`
	MotherName  string `json:"mother_name"`
	FatherName  string `json:"father_name"`
	PhotoURL    string `json:"photo_url" validate:"omitempty,url"`
}

func (in *StudentInput) Validate(validate *validator.Validate) error {
	in.Name = core.CleanString(in.Name)
	in.Number = core.CleanNumber(in.Number)
	in.Class = core.CleanString(in.Class)
	in.Description = core.CleanString(in.Description)
	in.EnglishName = core.CleanString(in.EnglishName)
	in.MotherName = core.CleanString(in.MotherName)
	in.FatherName = core.CleanString(in.FatherName)
	in.PhotoURL = core.CleanString(in.PhotoURL)
	return validate.Struct(in)
}

// apply copies the input onto s. Blank optional values are stored as NULL.
func (in StudentInput) apply(s *Student) {
	s.Name = in.Name
	s.Number = in.Number
	s.Class = in.Class
	s.Description = optional(in.Description)
	s.EnglishName = optional(in.EnglishName)
	s.MotherName = optional(in.MotherName)
	s.FatherName = optional(in.FatherName)
	s.PhotoURL = optional(in.PhotoURL)
}

func optional(s string) null.String {
	return null.NewString(s, s != "")
}

type QueryFilter struct {
	Class  string `query:"class"`
	Search string `query:"search"` // case-insensitive match on name, english name or number
}

func (qf *QueryFilter) Clean() {
	qf.Class = core.CleanString(qf.Class)
	qf.Search = core.CleanString(qf.Search)
}

// CleanOrderings drops orderings on unknown fields and defaults to name ascending.
func CleanOrderings(orderings []core.DBOrdering) []core.DBOrdering {
	cleaned := make([]core.DBOrdering, 0, len(orderings)+1)
	for _, ord := range orderings {
		if OrderingFields[ord.Field] {
			cleaned = append(cleaned, ord)
		}
	}
	if len(cleaned) == 0 {
		cleaned = append(cleaned, core.DBOrdering{Field: "name", Ascending: true})
	}
	return cleaned
}

// PhotoFileName names a downloaded photo after the student: <english name or name>_<class>.<ext>.
// ext is taken from the photo URL when it is png, jpg or jpeg, and defaults to jpg.
func PhotoFileName(s Student) string {
	name := s.EnglishName.String
	if name == "" {
		name = s.Name
	}

	ext := "jpg"
	if s.PhotoURL.String != "" {
		switch e := strings.ToLower(strings.TrimPrefix(path.Ext(s.PhotoURL.String), ".")); e {
		case "png", "jpg", "jpeg":
			ext = e
		}
	}
	return name + "_" + s.Class + "." + ext
}
