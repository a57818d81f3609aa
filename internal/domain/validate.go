package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Use JSON tag names for errors instead of Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateQuiz rejects quiz definitions that could never be attempted or scored
// consistently. The returned error is a *ValidationError wrapping ErrMalformedQuiz.
func ValidateQuiz(quiz Quiz) error {
	var fields []FieldError

	if err := validate.Struct(quiz); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			fields = append(fields, FieldError{
				Field: strings.TrimPrefix(fe.Namespace(), "Quiz."),
				Error: fieldMessage(fe),
			})
		}
	}

	seen := make(map[string]struct{}, len(quiz.Questions))
	for i, q := range quiz.Questions {
		if q.ID == "" {
			continue
		}
		if _, dup := seen[q.ID]; dup {
			fields = append(fields, FieldError{
				Field: fmt.Sprintf("questions[%d].id", i),
				Error: "duplicate question id " + q.ID,
			})
		}
		seen[q.ID] = struct{}{}
	}

	if len(fields) > 0 {
		return NewValidationError(ErrMalformedQuiz, fields...)
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return "must contain at least " + fe.Param() + " item(s)"
		}
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "len":
		return "must contain exactly " + fe.Param() + " item(s)"
	case "gtfield":
		return "must be after " + fe.Param()
	}
	return "failed " + fe.Tag() + " validation"
}
