package auth

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
)

var (
	// ErrInvalidInput is returned when required signup or signin fields are missing
	ErrInvalidInput = goerrors.New("invalid input", goerrors.CategoryValidation).
			WithTextCode("INVALID_INPUT").
			WithCode(goerrors.CodeBadRequest)

	ErrDuplicateEmail = goerrors.New("Email already exists", goerrors.CategoryConflict).
				WithTextCode("DUPLICATE_EMAIL").
				WithCode(goerrors.CodeConflict)

	// ErrInvalidCredentials covers both unknown email and wrong password
	ErrInvalidCredentials = goerrors.New("Incorrect email or password", goerrors.CategoryAuth).
				WithTextCode("INVALID_CREDENTIALS").
				WithCode(goerrors.CodeUnauthorized)

	ErrTokenMalformed = goerrors.New("missing or malformed token", goerrors.CategoryAuth).
				WithTextCode("TOKEN_MALFORMED").
				WithCode(goerrors.CodeUnauthorized)

	ErrTokenExpired = goerrors.New("token has expired", goerrors.CategoryAuth).
			WithTextCode("TOKEN_EXPIRED").
			WithCode(goerrors.CodeUnauthorized)

	// ErrPrincipalNotFound is returned when a valid token names a user that no longer exists
	ErrPrincipalNotFound = goerrors.New("authenticated user not found", goerrors.CategoryAuth).
				WithTextCode("PRINCIPAL_NOT_FOUND").
				WithCode(goerrors.CodeUnauthorized)

	ErrForbidden = goerrors.New("Forbidden resource", goerrors.CategoryAuthz).
			WithTextCode("FORBIDDEN").
			WithCode(goerrors.CodeForbidden)

	ErrMissingSigningKey = goerrors.New("token signing key is not configured", goerrors.CategoryInternal).
				WithTextCode("MISSING_SIGNING_KEY").
				WithCode(goerrors.CodeInternal)

	ErrTooManyAttempts = goerrors.New("too many signin attempts, try again later", goerrors.CategoryRateLimit).
				WithTextCode("TOO_MANY_ATTEMPTS").
				WithCode(goerrors.CodeTooManyRequests)

	ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryBadInput).
				WithTextCode("EMPTY_PASSWORD").
				WithCode(goerrors.CodeBadRequest)

	ErrMismatchedHashAndPassword = goerrors.New("password does not match", goerrors.CategoryAuth).
					WithTextCode("PASSWORD_MISMATCH").
					WithCode(goerrors.CodeUnauthorized)
)

// withCause returns a new error classified like base. Both base and cause
// stay in the chain, so errors.Is matches the sentinel and the original
// failure is kept for logs. Sentinels are never mutated.
func withCause(base *goerrors.Error, cause error) *goerrors.Error {
	if cause == nil {
		return goerrors.AddContext(base, base.Message)
	}
	return goerrors.AddContext(goerrors.Join(base, cause), base.Message)
}

// NewValidationError classifies err like base. When err holds ozzo field
// errors they are carried as validation errors, nested fields joined with a
// dot, in field order.
func NewValidationError(base *goerrors.Error, err error) error {
	if err == nil {
		return nil
	}

	verrs, ok := err.(validation.Errors)
	if !ok {
		return withCause(base, err)
	}

	fields := fieldErrors("", verrs)
	return withCause(base, goerrors.NewValidation(base.Message, fields...))
}

func fieldErrors(prefix string, verrs validation.Errors) []goerrors.FieldError {
	var out []goerrors.FieldError
	for _, field := range slices.Sorted(maps.Keys(verrs)) {
		name := field
		if prefix != "" {
			name = fmt.Sprintf("%s.%s", prefix, field)
		}

		if nested, ok := verrs[field].(validation.Errors); ok {
			out = append(out, fieldErrors(name, nested)...)
			continue
		}

		out = append(out, goerrors.FieldError{
			Field:   name,
			Message: strings.TrimSpace(verrs[field].Error()),
		})
	}
	return out
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	return goerrors.Is(err, ErrTokenExpired)
}

// IsMalformedError will check for malformed or missing tokens
func IsMalformedError(err error) bool {
	return goerrors.Is(err, ErrTokenMalformed)
}
