package controllers

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// validationFieldMap flattens validator errors into a field → failed-rule map
// for 422 responses. Returns false when err is not a validation error.
func validationFieldMap(err error) (map[string]string, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return fields, true
}
