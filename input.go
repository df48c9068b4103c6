package abcalc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidInput is wrapped by every validation failure of this package.
var ErrInvalidInput = errors.New("invalid input")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Arm is one side of an experiment: how many visitors saw it and how many of them converted.
type Arm struct {
	Visitors    int64 `json:"visitors" yaml:"visitors" validate:"gt=0"`
	Conversions int64 `json:"conversions" yaml:"conversions" validate:"gte=0,ltefield=Visitors"`
}

// Rate returns Conversions/Visitors, or 0 for an arm without visitors.
func (a Arm) Rate() float64 {
	if a.Visitors <= 0 {
		return 0
	}
	return float64(a.Conversions) / float64(a.Visitors)
}

func (a Arm) failures() int64 {
	return a.Visitors - a.Conversions
}

// Input is a two-arm experiment together with the confidence level (in percent) used for
// the interval of the rate difference.
type Input struct {
	Control         Arm     `json:"control" yaml:"control"`
	Variant         Arm     `json:"variant" yaml:"variant"`
	ConfidenceLevel float64 `json:"confidence_level" yaml:"confidence_level" validate:"gt=0,lt=100"`
}

// Validate reports an error wrapping ErrInvalidInput when a visitor count is not positive,
// a conversion count is negative or exceeds its visitors, or the confidence level lies
// outside (0,100).
func (in Input) Validate() error {
	return validateStruct(in)
}

func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "gt":
		return fmt.Sprintf("%s must be greater than %s, got %v", field, fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("%s must be at least %s, got %v", field, fe.Param(), fe.Value())
	case "lt":
		return fmt.Sprintf("%s must be less than %s, got %v", field, fe.Param(), fe.Value())
	case "lte":
		return fmt.Sprintf("%s must be at most %s, got %v", field, fe.Param(), fe.Value())
	case "ltefield":
		return fmt.Sprintf("%s must not exceed %s, got %v", field, fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %v", field, fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
