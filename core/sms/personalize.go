package sms

import "strings"

// Placeholder keys a template may carry.
const (
	PlaceholderStudentName = "{student_name}"
	PlaceholderEnglishName = "{english_name}"
	PlaceholderClass       = "{class}"
	PlaceholderMotherName  = "{mother_name}"
	PlaceholderFatherName  = "{father_name}"
)

// countryPrefix is kept for transmission but hidden when displaying a number.
const countryPrefix = "88"

type Placeholder struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Placeholders lists the substitutable keys, in substitution order.
var Placeholders = []Placeholder{
	{Key: PlaceholderStudentName, Label: "Student Name"},
	{Key: PlaceholderEnglishName, Label: "English Name"},
	{Key: PlaceholderClass, Label: "Class"},
	{Key: PlaceholderMotherName, Label: "Mother Name"},
	{Key: PlaceholderFatherName, Label: "Father Name"},
}

// IsPlaceholder reports whether key is one of the fixed placeholder keys.
func IsPlaceholder(key string) bool {
	for _, p := range Placeholders {
		if p.Key == key {
			return true
		}
	}
	return false
}

// Recipient is one addressable person.
type Recipient struct {
	PhoneNumber string            `json:"phone_number"`
	Fields      map[string]string `json:"fields,omitempty"` // {placeholder key: value}

	// Missing marks a selected number with no matching record.
	// It is billed but never submitted.
	Missing bool `json:"missing,omitempty"`
}

// DisplayNumber returns the phone number without its "88" country prefix.
func (r Recipient) DisplayNumber() string {
	return strings.TrimPrefix(r.PhoneNumber, countryPrefix)
}

// Personalize renders template for r.
// Only the first occurrence of each placeholder key is replaced. Missing values render as "".
// Anything else, including unknown placeholder-like tokens, is left untouched.
func Personalize(template string, r Recipient) string {
	msg := template
	for _, p := range Placeholders {
		msg = strings.Replace(msg, p.Key, r.Fields[p.Key], 1)
	}
	return msg
}
