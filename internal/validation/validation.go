// Package validation checks request parameters and decoded records with
// go-playground/validator struct tags.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/fivetwenty-io/mybustracker/pkg/mbt"
	"github.com/go-playground/validator/v10"
)

// Custom tags.
const (
	tagNotBlank        = "notblank"
	tagJourneyRequired = "journey_required"
	tagJourneyConflict = "journey_conflict"
	tagStopRequired    = "stop_required"
)

// New returns a validator with the rules used by the client registered. The
// returned value is safe for concurrent use.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation(tagNotBlank, notBlank)

	v.RegisterTagNameFunc(fieldName)
	v.RegisterStructValidation(journeyTimesRule, mbt.JourneyTimesParams{})

	return v
}

// Params validates request parameters and returns an InvalidParameter error
// naming the first offending field.
func Params(v *validator.Validate, params mbt.Params) error {
	if params == nil {
		return &mbt.Error{Kind: mbt.KindInvalidParameter, Message: "parameters are required"}
	}

	err := v.Struct(params)
	if err == nil {
		return nil
	}

	return ToError(params.Function(), err)
}

// ToError converts a validator failure into an InvalidParameter error.
func ToError(op string, err error) *mbt.Error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]

		return &mbt.Error{
			Kind:    mbt.KindInvalidParameter,
			Op:      op,
			Field:   fieldPath(fe),
			Message: describe(fe),
		}
	}

	return &mbt.Error{Kind: mbt.KindInvalidParameter, Op: op, Err: err}
}

func notBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return !field.IsZero()
	}

	return strings.TrimSpace(field.String()) != ""
}

// fieldName reports wire parameter names from `param` tags, falling back to
// JSON names for records.
func fieldName(f reflect.StructField) string {
	for _, key := range []string{"param", "json"} {
		name, _, _ := strings.Cut(f.Tag.Get(key), ",")
		if name == "-" {
			return ""
		}

		if name != "" {
			return name
		}
	}

	return f.Name
}

func journeyTimesRule(sl validator.StructLevel) {
	p, ok := sl.Current().Interface().(mbt.JourneyTimesParams)
	if !ok {
		return
	}

	journeyID, busID := p.Journey.JourneyID, p.Journey.BusID

	switch {
	case journeyID == "" && busID == "":
		sl.ReportError(p.Journey, "journey", "Journey", tagJourneyRequired, "")
	case journeyID != "" && busID != "":
		sl.ReportError(p.Journey, "journey", "Journey", tagJourneyConflict, "")
	case journeyID != "" && isBlank(journeyID):
		sl.ReportError(journeyID, "journeyId", "Journey", tagNotBlank, "")
	case busID != "" && isBlank(busID):
		sl.ReportError(busID, "busId", "Journey", tagNotBlank, "")
	case journeyID != "" && isBlank(p.StopID):
		sl.ReportError(p.StopID, "stopId", "StopID", tagStopRequired, "")
	case p.StopID != "" && isBlank(p.StopID):
		sl.ReportError(p.StopID, "stopId", "StopID", tagNotBlank, "")
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// fieldPath drops the struct name from the namespace: "timetables[0].stopId".
func fieldPath(fe validator.FieldError) string {
	_, path, found := strings.Cut(fe.Namespace(), ".")
	if !found || path == "" {
		return fe.Field()
	}

	return path
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case tagNotBlank:
		return "must not be blank"
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at least %s entries", fe.Param())
		}

		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at most %s entries", fe.Param())
		}

		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	case "datetime":
		return "must be a time formatted HH:MM"
	case tagJourneyRequired:
		return "one of journeyId or busId is required"
	case tagJourneyConflict:
		return "journeyId and busId are mutually exclusive"
	case tagStopRequired:
		return "is required when a journeyId is given"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
