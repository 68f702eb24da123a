package account

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// RegisterPayload carries the data needed to create an account. Password is
// optional so accounts sourced from a social identity can be created
// without one.
type RegisterPayload struct {
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

// Validate implements the validation rules for registration.
func (p RegisterPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, validation.Length(3, 256), is.Email),
		validation.Field(&p.Password, validation.Length(8, 128)),
	)
}

// EmailChangePayload carries the new address for a staged email change.
type EmailChangePayload struct {
	Email string `json:"email"`
}

// Validate implements the validation rules for email changes.
func (p EmailChangePayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, validation.Length(3, 256), is.Email),
	)
}

// PasswordPayload carries a new password for change or reset flows.
type PasswordPayload struct {
	Password string `json:"password"`
}

// Validate implements the validation rules for password changes.
func (p PasswordPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Password, validation.Required, validation.Length(8, 128)),
	)
}
