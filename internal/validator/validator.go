package validator

import (
	"time"

	"github.com/go-playground/validator/v10"
)

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()

	// datetime-local inputs as posted by the browser picker
	v.RegisterValidation("datetime_local", validateDatetimeLocal)

	return &Validator{validate: v}
}

func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func validateDatetimeLocal(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01-02T15:04", fl.Field().String())
	return err == nil
}
