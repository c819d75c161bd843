package auth

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// UserProvider resolves identities and principals from the user directory
type UserProvider struct {
	store  UserFinder
	hasher PasswordHasher
	logger Logger
}

var (
	_ IdentityProvider  = (*UserProvider)(nil)
	_ PrincipalResolver = (*UserProvider)(nil)
)

// NewUserProvider will create a new UserProvider
func NewUserProvider(store UserFinder, hasher PasswordHasher) *UserProvider {
	if hasher == nil {
		hasher = BcryptHasher{}
	}
	return &UserProvider{
		store:  store,
		hasher: hasher,
		logger: defLogger{},
	}
}

func (u *UserProvider) WithLogger(l Logger) *UserProvider {
	if l != nil {
		u.logger = l
	}
	return u
}

// VerifyIdentity finds the user by email and checks the password. Unknown
// emails and wrong passwords fail the same way.
func (u *UserProvider) VerifyIdentity(ctx context.Context, email, password string) (Identity, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, ErrInvalidInput
	}

	user, err := u.store.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil && !goerrors.IsNotFound(err) {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user during verification")
	}

	if user == nil {
		u.hasher.VerifyPassword(password, dummyPasswordHash())
		return nil, ErrInvalidCredentials
	}

	if !u.hasher.VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return NewIdentityFromUser(user), nil
}

func (u *UserProvider) FindIdentityByIdentifier(ctx context.Context, email string) (Identity, error) {
	user, err := u.store.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	return NewIdentityFromUser(user), nil
}

// PrincipalFromClaims reloads the live user named by the email claim, so
// a deleted account stops authenticating even with an unexpired token.
func (u *UserProvider) PrincipalFromClaims(ctx context.Context, claims AuthClaims) (*User, error) {
	if claims == nil || claims.Email() == "" {
		return nil, ErrTokenMalformed
	}

	user, err := u.store.GetByEmail(ctx, claims.Email())
	if err != nil {
		if goerrors.IsNotFound(err) {
			u.logger.Info("token principal no longer exists", "email", claims.Email())
			return nil, ErrPrincipalNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load principal")
	}

	return user, nil
}
