package student

import (
	"context"
	"time"
)

// Overview summarizes the completeness of student records.
type Overview struct {
	TotalStudents int            `json:"total_students"`
	MissingFields MissingFields  `json:"missing_fields"`
	Classes       map[string]int `json:"class_distribution"`
	// IncompleteProfiles counts students missing any field but the description.
	IncompleteProfiles int `json:"incomplete_profiles"`
	// UniqueParents counts the distinct mother and father names.
	UniqueParents int       `json:"unique_parents"`
	LastUpdated   time.Time `json:"last_updated"`
}

type MissingFields struct {
	Name        int `json:"name"`
	Description int `json:"description"`
	Class       int `json:"class"`
	Number      int `json:"number"`
	EnglishName int `json:"english_name"`
	MotherName  int `json:"mother_name"`
	FatherName  int `json:"father_name"`
	PhotoURL    int `json:"photo_url"`
}

func (svc *service) Overview(ctx context.Context) (Overview, error) {
	ov := Overview{
		Classes:     make(map[string]int),
		LastUpdated: time.Unix(0, 0).UTC(),
	}
	parents := make(map[string]struct{})

	err := svc.each(ctx, QueryFilter{}, func(s Student) error {
		ov.TotalStudents++
		ov.Classes[s.Class]++
		if s.UpdatedAt.After(ov.LastUpdated) {
			ov.LastUpdated = s.UpdatedAt
		}

		mf := &ov.MissingFields
		if s.Name == "" {
			mf.Name++
		}
		if s.Description.String == "" {
			mf.Description++
		}
		if s.Class == "" {
			mf.Class++
		}
		if s.Number == "" {
			mf.Number++
		}
		if s.EnglishName.String == "" {
			mf.EnglishName++
		}
		if s.MotherName.String == "" {
			mf.MotherName++
		}
		if s.FatherName.String == "" {
			mf.FatherName++
		}
		if s.PhotoURL.String == "" {
			mf.PhotoURL++
		}

		if s.Name == "" || s.Class == "" || s.Number == "" || s.EnglishName.String == "" ||
			s.MotherName.String == "" || s.FatherName.String == "" || s.PhotoURL.String == "" {
			ov.IncompleteProfiles++
		}

		if s.MotherName.String != "" {
			parents[s.MotherName.String] = struct{}{}
		}
		if s.FatherName.String != "" {
			parents[s.FatherName.String] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return Overview{}, err
	}

	ov.UniqueParents = len(parents)
	return ov, nil
}
