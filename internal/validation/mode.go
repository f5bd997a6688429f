package validation

import (
	"github.com/ndewijer/Fund-NAV-Estimator/internal/api/request"
)

func ValidateSetMode(req request.SetModeRequest) error {
	errors := make(map[string]string)

	if err := ValidateMode(req.Mode); err != nil {
		errors["mode"] = err.Error()
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

func ValidateApplyMode(req request.ApplyModeRequest) error {
	errors := make(map[string]string)

	if err := ValidateMode(req.Mode); err != nil {
		errors["mode"] = err.Error()
	}
	if err := ValidateFundCodes(req.Codes); err != nil {
		errors["codes"] = err.Error()
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
