package eventex

import (
	"net/mail"
	"strings"
)

// Form field names, in the order they are rendered
const (
	FieldName  = "name"
	FieldTaxID = "cpf"
	FieldEmail = "email"
	FieldPhone = "phone"
)

// Fields lists the subscription form fields in display order
var Fields = []string{FieldName, FieldTaxID, FieldEmail, FieldPhone}

// Field error codes
const (
	CodeRequired      = "required"
	CodeInvalidFormat = "invalid_format"
)

const (
	requiredMessage      = "Este campo é obrigatório."
	invalidFormatMessage = "Informe um endereço de email válido."
)

// SubscriptionRequest represents one visitor's submitted registration
type SubscriptionRequest struct {
	Name  string
	TaxID string
	Email string
	Phone string
}

// NewSubscriptionRequest returns a request built from raw form values.
// Values are trimmed the same way they are before validation.
func NewSubscriptionRequest(get func(key string) string) SubscriptionRequest {
	return SubscriptionRequest{
		Name:  strings.TrimSpace(get(FieldName)),
		TaxID: strings.TrimSpace(get(FieldTaxID)),
		Email: strings.TrimSpace(get(FieldEmail)),
		Phone: strings.TrimSpace(get(FieldPhone)),
	}
}

// Value returns the value of the named form field
func (r SubscriptionRequest) Value(field string) string {
	switch field {
	case FieldName:
		return r.Name
	case FieldTaxID:
		return r.TaxID
	case FieldEmail:
		return r.Email
	case FieldPhone:
		return r.Phone
	}
	return ""
}

// FieldError describes why a single field was rejected
type FieldError struct {
	Code    string
	Message string
}

func (e FieldError) Error() string {
	return e.Message
}

// FieldErrors maps a form field name to its errors
type FieldErrors map[string][]FieldError

func (fe FieldErrors) add(field string, err FieldError) {
	fe[field] = append(fe[field], err)
}

// ValidationResult is the outcome of validating a SubscriptionRequest.
// It is valid if and only if Errors is empty.
type ValidationResult struct {
	Subscription SubscriptionRequest
	Errors       FieldErrors
}

// Valid reports whether every field passed validation
func (v ValidationResult) Valid() bool {
	return len(v.Errors) == 0
}

// Validate checks every field independently and collects all failures
func Validate(req SubscriptionRequest) ValidationResult {
	errs := make(FieldErrors)

	for _, field := range Fields {
		if strings.TrimSpace(req.Value(field)) == "" {
			errs.add(field, FieldError{Code: CodeRequired, Message: requiredMessage})
		}
	}

	if _, missing := errs[FieldEmail]; !missing && !ValidEmail(strings.TrimSpace(req.Email)) {
		errs.add(FieldEmail, FieldError{Code: CodeInvalidFormat, Message: invalidFormatMessage})
	}

	return ValidationResult{
		Subscription: req,
		Errors:       errs,
	}
}

// ValidEmail reports whether s is a bare email address with a dotted domain
func ValidEmail(s string) bool {
	if strings.ContainsAny(s, " \t\r\n") || strings.Count(s, "@") != 1 {
		return false
	}

	local, domain, _ := strings.Cut(s, "@")
	if local == "" || !strings.Contains(domain, ".") {
		return false
	}
	for _, label := range strings.Split(domain, ".") {
		if label == "" {
			return false
		}
	}

	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}

	return addr.Address == s
}
