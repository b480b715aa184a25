package analysis

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidInput marks input rejected before analysis.
var ErrInvalidInput = errors.New("invalid input")

var validate = validator.New()

// Validate checks the field constraints of an input. The genotype itself is
// checked by the pipeline.
func (in Input) Validate() error {
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed %q", ErrInvalidInput, fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}
