package query

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-xero/core"
)

func compileValidationError(field string, message string) error {
	return goerrors.NewValidation("query: filter compilation failed", goerrors.FieldError{
		Field:   field,
		Message: message,
	}).
		WithCode(http.StatusBadRequest).
		WithTextCode(core.ErrorBadRequest).
		WithSeverity(goerrors.SeverityError)
}
