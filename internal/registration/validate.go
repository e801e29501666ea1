package registration

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names so details match the request body.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks required fields and, for team registrations, the number
// of member entries. It returns a *ValidationError matching one of
// ErrMissingField, ErrInvalidKind or ErrInvalidTeamSize.
func Validate(req Request) error {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validating request: %w", err)
		}
		return fromValidatorErrors(verrs)
	}

	if req.Kind == KindTeam {
		count := CountMembers(req.MemberNames)
		if count < MinTeamMembers || count > MaxTeamMembers {
			return &ValidationError{
				Err:     ErrInvalidTeamSize,
				Message: fmt.Sprintf("Team must have between %d and %d members", MinTeamMembers, MaxTeamMembers),
				Fields: []FieldError{{
					Field:   "memberNames",
					Message: fmt.Sprintf("got %d members", count),
				}},
			}
		}
	}

	return nil
}

// fromValidatorErrors folds validator output into a single ValidationError.
// A missing field takes precedence over an unknown kind.
func fromValidatorErrors(verrs validator.ValidationErrors) *ValidationError {
	var (
		missing []FieldError
		invalid []FieldError
	)
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			missing = append(missing, FieldError{Field: fe.Field(), Message: fe.Field() + " is required"})
		case "oneof":
			invalid = append(invalid, FieldError{Field: fe.Field(), Message: fe.Field() + ` must be "individual" or "team"`})
		default:
			invalid = append(invalid, FieldError{Field: fe.Field(), Message: fe.Field() + " is invalid"})
		}
	}

	if len(missing) > 0 {
		return &ValidationError{Err: ErrMissingField, Message: "Missing required fields", Fields: missing}
	}
	return &ValidationError{Err: ErrInvalidKind, Message: "Invalid registration type", Fields: invalid}
}
