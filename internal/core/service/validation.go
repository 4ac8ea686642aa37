package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/revogue/storefront-client/internal/core/domain"
	"github.com/revogue/storefront-client/internal/core/ports"
)

var validate = validator.New()

// registrationChecks mirrors the registration preconditions: identity and
// password are required, and the confirmation must match the password when
// the caller supplies one.
type registrationChecks struct {
	Identity     string `validate:"required"`
	Password     string `validate:"required"`
	Confirmation string `validate:"omitempty,eqfield=Password"`
}

// validateRegistration runs the local precondition checks. It returns nil
// when registration may proceed to the network.
func validateRegistration(input ports.RegisterInput) *domain.AuthFailure {
	checks := registrationChecks{
		Identity:     input.Identity,
		Password:     input.Password,
		Confirmation: input.PasswordConfirmation,
	}

	err := validate.Struct(checks)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return &domain.AuthFailure{
			Kind:    domain.FailurePrecondition,
			Field:   strings.ToLower(ve[0].Field()),
			Message: fieldError(ve[0]),
		}
	}
	return domain.Failure(domain.FailurePrecondition, msgGenericFailure)
}

// fieldError converts a single ValidationError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "eqfield":
		return "password confirmation does not match"
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
