package tracker

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/KrikINS/floor-ready/internal/core/catalog"
	"github.com/KrikINS/floor-ready/internal/core/identity"
	"github.com/KrikINS/floor-ready/internal/core/inventory"
	"github.com/KrikINS/floor-ready/internal/core/task"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// validateInput runs struct tag validation and reports failures as
// task.ErrValidation naming each offending field.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", task.ErrValidation, err)
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", task.ErrValidation, strings.Join(parts, "; "))
}

// domainErrors pass through storeErr untouched.
var domainErrors = []error{
	task.ErrUnauthorized,
	task.ErrInvalidTransition,
	task.ErrValidation,
	task.ErrConflict,
	task.ErrNotFound,
	identity.ErrNotFound,
	identity.ErrDuplicate,
	catalog.ErrNotFound,
	catalog.ErrDuplicate,
	inventory.ErrNotFound,
	inventory.ErrInsufficientStock,
}

// storeErr wraps a record or object store failure in task.ErrPersistence
// while keeping the original message. Domain errors are returned as is.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return fmt.Errorf("%s: %w: %w", op, task.ErrPersistence, err)
}

// IsNotFound reports whether err is any of the domain not-found errors.
func IsNotFound(err error) bool {
	return errors.Is(err, task.ErrNotFound) ||
		errors.Is(err, identity.ErrNotFound) ||
		errors.Is(err, catalog.ErrNotFound) ||
		errors.Is(err, inventory.ErrNotFound)
}
