package auth

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

// SignupMessage carries a new account request
type SignupMessage struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Password  string `json:"password"`
	UseHashid bool   `json:"-"`
}

func (e SignupMessage) Type() string { return "user.signup" }

// Validate enforces the fields every account needs. Presentation rules
// such as length and password strength live on the HTTP payload.
func (e SignupMessage) Validate() error {
	err := validation.ValidateStruct(&e,
		validation.Field(&e.Username, validation.Required),
		validation.Field(&e.Email, validation.Required, is.Email),
		validation.Field(&e.Password, validation.Required),
		validation.Field(&e.Role, validation.Required, validation.In(roleNames()...)),
	)
	return NewValidationError(ErrInvalidInput, err)
}

// SignupHandler registers accounts inside a transaction
type SignupHandler struct {
	repo    RepositoryManager
	hasher  PasswordHasher
	timeout time.Duration
}

var _ AccountRegistrerer = (*SignupHandler)(nil)

func NewSignupHandler(repo RepositoryManager, hasher PasswordHasher) *SignupHandler {
	if hasher == nil {
		hasher = BcryptHasher{}
	}
	return &SignupHandler{
		repo:    repo,
		hasher:  hasher,
		timeout: 10 * time.Second,
	}
}

// RegisterUser implements AccountRegistrerer
func (h *SignupHandler) RegisterUser(ctx context.Context, msg SignupMessage) (*User, error) {
	return h.Execute(ctx, msg)
}

func (h *SignupHandler) Execute(ctx context.Context, msg SignupMessage) (*User, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user signup",
		)
	default:
		return h.execute(ctx, msg)
	}
}

func (h *SignupHandler) execute(ctx context.Context, msg SignupMessage) (*User, error) {
	msg.Email = NormalizeEmail(msg.Email)
	msg.Username = strings.TrimSpace(msg.Username)

	if err := msg.Validate(); err != nil {
		return nil, err
	}

	role, _ := ParseRole(msg.Role)

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	var user *User
	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := h.repo.Users().ExistsByEmailTx(ctx, tx, msg.Email)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check email")
		}
		if exists {
			return withCause(ErrDuplicateEmail, nil).
				WithMetadata(map[string]any{"email": msg.Email})
		}

		hash, err := h.hasher.HashPassword(msg.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided").
					WithCode(goerrors.CodeBadRequest)
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		record := &User{
			Username:     msg.Username,
			Email:        msg.Email,
			PasswordHash: hash,
			Role:         role,
		}

		if msg.UseHashid {
			if id, err := hashid.NewUUID(msg.Email); err == nil {
				record.ID = id
			}
		}

		user, err = h.repo.Users().RegisterTx(ctx, tx, record)
		return err
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}

		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "user signup transaction failed")
	}

	return user, nil
}
