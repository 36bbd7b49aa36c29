package student

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/myschool/myschool/core"
)

var (
	studentClassTag  = "studentclass"
	studentClassText = "unknown class"
)

// InitValidators registers the student validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(studentClassTag, studentClassValidation)
	core.RegisterCustomTranslation(validate, translator, studentClassTag, studentClassText)
}

// studentClassValidation checks that the field is one of Classes.
func studentClassValidation(fl validator.FieldLevel) bool {
	return IsClass(fl.Field().String())
}

func IsClass(class string) bool {
	for _, c := range Classes {
		if c == class {
			return true
		}
	}
	return false
}
