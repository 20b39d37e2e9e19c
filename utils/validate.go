package utils

import (
	"errors"
	"fmt"
	"strings"

	"nutrimatch-go-worker/structs"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks the validate tags of s. Failures wrap structs.ErrInvalidInput.
func Validate(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return structs.BadInput("%s", err.Error())
	}
	msgs := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return structs.BadInput("%s", strings.Join(msgs, "; "))
}
