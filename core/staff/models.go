package staff

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/myschool/myschool/core"
)

const dateLayout = "2006-01-02"

type Teacher struct {
	ID          string          `json:"id" db:"id"`
	NameBangla  string          `json:"name_bangla" db:"name_bangla"`
	NameEnglish string          `json:"name_english" db:"name_english"`
	Subject     string          `json:"subject" db:"subject"`
	Designation string          `json:"designation" db:"designation"`
	JoiningDate null.Time       `json:"joining_date" db:"joining_date"`
	NID         null.String     `json:"nid" db:"nid"`
	Mobile      string          `json:"mobile" db:"mobile"`
	BloodGroup  null.String     `json:"blood_group" db:"blood_group"`
	Email       null.String     `json:"email" db:"email"`
	Address     null.String     `json:"address" db:"address"`
	PhotoURL    null.String     `json:"photo_url" db:"photo_url"`
	Salary      decimal.Decimal `json:"salary" db:"salary"`
	WorkingDays int             `json:"working_days" db:"working_days"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"` // UTC
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"` // UTC
}

// TeacherInput is what may be provided to create or modify a Teacher.
type TeacherInput struct {
	NameBangla  string          `json:"name_bangla" validate:"required"`
	NameEnglish string          `json:"name_english" validate:"required"`
	Subject     string          `json:"subject"`
	Designation string          `json:"designation"`
	JoiningDate string          `json:"joining_date" validate:"omitempty,datetime=2006-01-02"`
	NID         string          `json:"nid" validate:"omitempty,numeric"`
	Mobile      string          `json:"mobile" validate:"required,bdphone"`
	BloodGroup  string          `json:"blood_group" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	Email       string          `json:"email" validate:"omitempty,email"`
	Address     string          `json:"address"`
	PhotoURL    string          `json:"photo_url" validate:"omitempty,url"`
	Salary      decimal.Decimal `json:"salary"`
	WorkingDays int             `json:"working_days" validate:"min=0,max=31"`
}

func (in *TeacherInput) Validate(validate *validator.Validate) error {
	in.NameBangla = core.CleanString(in.NameBangla)
	in.NameEnglish = core.CleanString(in.NameEnglish)
	in.Subject = core.CleanString(in.Subject)
	in.Designation = core.CleanString(in.Designation)
	in.JoiningDate = core.CleanString(in.JoiningDate)
	in.NID = core.CleanString(in.NID)
	in.Mobile = core.CleanNumber(in.Mobile)
	in.BloodGroup = core.CleanString(in.BloodGroup)
	in.Email = core.CleanString(in.Email, true /* lower */)
	in.Address = core.CleanString(in.Address)
	in.PhotoURL = core.CleanString(in.PhotoURL)

	if err := validate.Struct(in); err != nil {
		return err
	}
	if in.Salary.IsNegative() {
		return core.NewValidationError(nil, core.FieldError{Field: "salary", Error: "salary cannot be negative"})
	}
	return nil
}

func (in TeacherInput) apply(t *Teacher) {
	t.NameBangla = in.NameBangla
	t.NameEnglish = in.NameEnglish
	t.Subject = in.Subject
	t.Designation = in.Designation
	t.JoiningDate = null.Time{}
	if jd, err := time.Parse(dateLayout, in.JoiningDate); err == nil {
		t.JoiningDate = null.TimeFrom(jd)
	}
	t.NID = optional(in.NID)
	t.Mobile = in.Mobile
	t.BloodGroup = optional(in.BloodGroup)
	t.Email = optional(in.Email)
	t.Address = optional(in.Address)
	t.PhotoURL = optional(in.PhotoURL)
	t.Salary = in.Salary
	t.WorkingDays = in.WorkingDays
}

func optional(s string) null.String {
	return null.NewString(s, s != "")
}
