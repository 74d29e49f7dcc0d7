package validation

import (
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a configured validator with custom struct-level validation registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// name and message must survive trimming; "   " is not a payer name.
	v.RegisterStructValidation(initiateStructValidation, InitiateRequest{})

	return v
}

func initiateStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(InitiateRequest)

	if strings.TrimSpace(req.Name) == "" {
		sl.ReportError(req.Name, "name", "Name", "notblank", "")
	}
	if strings.TrimSpace(req.Message) == "" {
		sl.ReportError(req.Message, "message", "Message", "notblank", "")
	}
}
