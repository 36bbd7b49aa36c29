package student

import (
	"context"

	"github.com/pkg/errors"

	"github.com/myschool/myschool/core/sms"
)

// Recipients resolves numbers to SMS recipients carrying the students' personalization fields.
func (svc *service) Recipients(ctx context.Context, numbers []string) ([]sms.Recipient, error) {
	recipients := make([]sms.Recipient, len(numbers))
	if len(numbers) == 0 {
		return recipients, nil
	}

	students, err := svc.repo.GetByNumbers(ctx, numbers)
	if err != nil {
		return nil, errors.Wrap(err, "getting students by numbers")
	}
	byNumber := make(map[string]Student, len(students))
	for _, s := range students {
		if _, ok := byNumber[s.Number]; !ok {
			byNumber[s.Number] = s
		}
	}

	for i, n := range numbers {
		s, ok := byNumber[n]
		if !ok {
			recipients[i] = sms.Recipient{PhoneNumber: n, Missing: true}
			continue
		}
		recipients[i] = Recipient(s)
	}
	return recipients, nil
}

// Recipient maps a student to the SMS placeholders.
func Recipient(s Student) sms.Recipient {
	return sms.Recipient{
		PhoneNumber: s.Number,
		Fields: map[string]string{
			sms.PlaceholderStudentName: s.Name,
			sms.PlaceholderEnglishName: s.EnglishName.String,
			sms.PlaceholderClass:       s.Class,
			sms.PlaceholderMotherName:  s.MotherName.String,
			sms.PlaceholderFatherName:  s.FatherName.String,
		},
	}
}
