// Package validation wraps go-playground/validator with the custom tags the
// content documents use.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New()

	// Report JSON field names ("coverImage") instead of Go names ("CoverImage").
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		_, err := time.Parse("2006-01-02", value)
		return err == nil
	})

	v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		return slugRegex.MatchString(value)
	})

	return &Validator{v: v}
}

// Struct validates a single struct value.
func (v *Validator) Struct(s interface{}) error {
	return v.v.Struct(s)
}

// Var validates a slice or scalar against a tag, e.g. Var(skills, "dive").
func (v *Validator) Var(field interface{}, tag string) error {
	return v.v.Var(field, tag)
}

func (v *Validator) ValidationErrors(err error) validator.ValidationErrors {
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}

// Details flattens validation errors into field -> failed tag,
// e.g. {"skills[2].level": "lte"}.
func Details(errs validator.ValidationErrors) map[string]string {
	if len(errs) == 0 {
		return nil
	}
	details := make(map[string]string, len(errs))
	for _, err := range errs {
		details[fieldPath(err)] = err.Tag()
	}
	return details
}

// Summary renders the first validation failure as a sentence for the
// admin banner. The full list is available through Details.
func Summary(errs validator.ValidationErrors) string {
	if len(errs) == 0 {
		return "invalid document"
	}
	first := errs[0]
	msg := fmt.Sprintf("%s failed the %q rule", fieldPath(first), first.Tag())
	if len(errs) > 1 {
		msg += fmt.Sprintf(" (and %d more)", len(errs)-1)
	}
	return msg
}

// fieldPath strips the root type name from the namespace:
// "Skill.level" -> "level", "[2].level" stays as is.
func fieldPath(err validator.FieldError) string {
	ns := err.Namespace()
	if i := strings.Index(ns, "."); i >= 0 && !strings.HasPrefix(ns, "[") {
		return ns[i+1:]
	}
	return ns
}
