package app

import (
	"github.com/go-playground/validator/v10"

	"github.com/example/tide/internal/fault"
)

// validate is the shared request validator. Struct tags on the primary
// port DTOs are the first line of defense; the pure guards in core/tide
// enforce the domain rules the tags cannot express.
var validate = validator.New(validator.WithRequiredStructEnabled())

// validateRequest runs struct validation and converts failures into the
// validation error class.
func validateRequest(req any) error {
	if err := validate.Struct(req); err != nil {
		return fault.Validationf("%v", err)
	}
	return nil
}
