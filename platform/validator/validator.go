// Package validator wraps go-playground/validator so handlers share a
// single configured instance.
package validator

import "github.com/go-playground/validator/v10"

// Validator validates request structs against their validation tags.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator ready for use. Custom rules can be added
// with RegisterValidation before the router starts serving.
func New() *Validator {
	return &Validator{
		v: validator.New(),
	}
}

// Struct validates a struct based on its validation tags.
func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}

// RegisterValidation registers a custom validation function under tag.
func (val *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return val.v.RegisterValidation(tag, fn)
}
