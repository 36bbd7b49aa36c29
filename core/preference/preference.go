package preference

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/myschool/myschool/core"
)

const keyPrefix = "pref:"

type (
	// StudentDisplay selects the student columns shown in listings.
	StudentDisplay struct {
		ShowName        bool `json:"show_name"`
		ShowNumber      bool `json:"show_number"`
		ShowClass       bool `json:"show_class"`
		ShowDescription bool `json:"show_description"`
		ShowEnglishName bool `json:"show_english_name"`
		ShowFatherName  bool `json:"show_father_name"`
		ShowMotherName  bool `json:"show_mother_name"`
		ShowPhoto       bool `json:"show_photo"`
	}

	// StaffDisplay selects the teacher columns shown in listings.
	StaffDisplay struct {
		NameBangla  bool `json:"name_bangla"`
		NameEnglish bool `json:"name_english"`
		Subject     bool `json:"subject"`
		Designation bool `json:"designation"`
		JoiningDate bool `json:"joining_date"`
		NID         bool `json:"nid"`
		Mobile      bool `json:"mobile"`
		BloodGroup  bool `json:"blood_group"`
		Email       bool `json:"email"`
		Address     bool `json:"address"`
		Salary      bool `json:"salary"`
		PhotoURL    bool `json:"photo_url"`
	}

	Preferences struct {
		Students StudentDisplay `json:"students"`
		Staff    StaffDisplay   `json:"staff"`
	}
)

// Defaults shows every column.
func Defaults() Preferences {
	return Preferences{
		Students: StudentDisplay{
			ShowName:        true,
			ShowNumber:      true,
			ShowClass:       true,
			ShowDescription: true,
			ShowEnglishName: true,
			ShowFatherName:  true,
			ShowMotherName:  true,
			ShowPhoto:       true,
		},
		Staff: StaffDisplay{
			NameBangla:  true,
			NameEnglish: true,
			Subject:     true,
			Designation: true,
			JoiningDate: true,
			NID:         true,
			Mobile:      true,
			BloodGroup:  true,
			Email:       true,
			Address:     true,
			Salary:      true,
			PhotoURL:    true,
		},
	}
}

type (
	Service interface {
		// Get returns the owner's preferences. Fields never saved keep their default.
		Get(ctx context.Context, owner string) (Preferences, error)
		Save(ctx context.Context, owner string, prefs Preferences) (Preferences, error)
	}

	service struct {
		kv core.KVStore
	}
)

var _ Service = (*service)(nil)

func NewService(kv core.KVStore) Service {
	return &service{kv: kv}
}

func (svc *service) Get(ctx context.Context, owner string) (Preferences, error) {
	prefs := Defaults()
	data, err := svc.kv.Get(ctx, keyPrefix+owner)
	if err != nil {
		if errors.Cause(err) == core.ErrKeyNotFound {
			return prefs, nil
		}
		return Preferences{}, errors.Wrap(err, "loading preferences")
	}
	if err = json.Unmarshal(data, &prefs); err != nil {
		return Preferences{}, errors.Wrap(err, "decoding preferences")
	}
	return prefs, nil
}

func (svc *service) Save(ctx context.Context, owner string, prefs Preferences) (Preferences, error) {
	data, err := json.Marshal(prefs)
	if err != nil {
		return Preferences{}, errors.Wrap(err, "encoding preferences")
	}
	if err = svc.kv.Set(ctx, keyPrefix+owner, data); err != nil {
		return Preferences{}, errors.Wrap(err, "saving preferences")
	}
	return prefs, nil
}
