package content

import (
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

var (
	ErrNotFound = goerrors.New("resource not found", goerrors.CategoryNotFound).
			WithTextCode("NOT_FOUND").
			WithCode(goerrors.CodeNotFound)

	// ErrInvalidInput is returned when title or contents are missing
	ErrInvalidInput = goerrors.New("Title and contents must be provided", goerrors.CategoryValidation).
			WithTextCode("INVALID_INPUT").
			WithCode(goerrors.CodeBadRequest)

	ErrAuthorRequired = goerrors.New("Author keyword must be provided", goerrors.CategoryBadInput).
				WithTextCode("INVALID_INPUT").
				WithCode(goerrors.CodeBadRequest)

	ErrInvalidStatus = goerrors.New("invalid status", goerrors.CategoryValidation).
				WithTextCode("INVALID_INPUT").
				WithCode(goerrors.CodeBadRequest)
)

// errorf derives a new error classified like base with a formatted message.
// base stays in the chain so errors.Is keeps matching it.
func errorf(base *goerrors.Error, format string, args ...any) *goerrors.Error {
	return goerrors.AddContext(base, fmt.Sprintf(format, args...))
}
