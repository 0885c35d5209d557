package quiz

import (
	"regexp"
	"sort"
	"strings"
)

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// Contact is the lead captured by the contact form that gates the quiz.
type Contact struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	CompanyName string `json:"company_name"`
}

// ValidationError lists the offending form fields with a message per field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var builder strings.Builder
	builder.WriteString("invalid contact form: ")
	for idx, name := range names {
		if idx > 0 {
			builder.WriteString(", ")
		}
		builder.WriteString(name)
		builder.WriteString(": ")
		builder.WriteString(e.Fields[name])
	}
	return builder.String()
}

// NormalizeContact trims every field, lower-cases the email and validates
// that all fields are present.
func NormalizeContact(contact Contact) (Contact, error) {
	normalized := Contact{
		FirstName:   strings.TrimSpace(contact.FirstName),
		LastName:    strings.TrimSpace(contact.LastName),
		Email:       strings.ToLower(strings.TrimSpace(contact.Email)),
		PhoneNumber: strings.TrimSpace(contact.PhoneNumber),
		CompanyName: strings.TrimSpace(contact.CompanyName),
	}

	fields := make(map[string]string)
	if normalized.FirstName == "" {
		fields["first_name"] = "first name is required"
	}
	if normalized.LastName == "" {
		fields["last_name"] = "last name is required"
	}
	if normalized.Email == "" {
		fields["email"] = "email is required"
	} else if !emailPattern.MatchString(normalized.Email) {
		fields["email"] = "email is invalid"
	}
	if normalized.PhoneNumber == "" {
		fields["phone_number"] = "phone number is required"
	}
	if normalized.CompanyName == "" {
		fields["company_name"] = "company name is required"
	}

	if len(fields) > 0 {
		return Contact{}, &ValidationError{Fields: fields}
	}
	return normalized, nil
}
