package auth

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Logger is the leveled logger used by the auth package. Args are key
// value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// LoggerProvider hands out named loggers
type LoggerProvider interface {
	GetLogger(name string) Logger
}

// LoggerProviderFunc adapts a function to LoggerProvider
type LoggerProviderFunc func(name string) Logger

func (f LoggerProviderFunc) GetLogger(name string) Logger {
	if f == nil {
		return defLogger{}
	}
	if l := f(name); l != nil {
		return l
	}
	return defLogger{}
}

// ResolveLogger picks a named logger from provider, falling back on
// logger and then on the default stdout logger.
func ResolveLogger(name string, provider LoggerProvider, logger Logger) Logger {
	if provider != nil {
		if l := provider.GetLogger(name); l != nil {
			return l
		}
	}
	if logger != nil {
		return logger
	}
	return defLogger{}
}

// Identity holds the attributes of an authenticated identity
type Identity interface {
	ID() string
	Username() string
	Email() string
	Role() string
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetContextKey() string
	GetTokenExpiration() time.Duration
	GetTokenLookup() string
	GetAuthScheme() string
	GetIssuer() string
	GetAudience() []string
	GetTokenTransport() string
	GetCookieName() string
	GetCookieMaxAge() time.Duration
	GetCookieSameSite() string
	GetCookieSecure() bool
}

// TokenService issues and verifies access tokens
type TokenService interface {
	TokenValidator
	Generate(identity Identity) (string, error)
	SignClaims(claims *JWTClaims) (string, error)
}

// IdentityProvider resolves identities by credentials or identifier
type IdentityProvider interface {
	VerifyIdentity(ctx context.Context, email, password string) (Identity, error)
	FindIdentityByIdentifier(ctx context.Context, email string) (Identity, error)
}

// PrincipalResolver maps verified claims to the live user record
type PrincipalResolver interface {
	PrincipalFromClaims(ctx context.Context, claims AuthClaims) (*User, error)
}

// UserFinder is the read side of the user directory
type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// AccountRegistrerer handles new user registrations
type AccountRegistrerer interface {
	RegisterUser(ctx context.Context, msg SignupMessage) (*User, error)
}

type defLogger struct{}

func (d defLogger) Debug(msg string, args ...any) { d.print("DBG", msg, args) }
func (d defLogger) Info(msg string, args ...any)  { d.print("INF", msg, args) }
func (d defLogger) Warn(msg string, args ...any)  { d.print("WRN", msg, args) }
func (d defLogger) Error(msg string, args ...any) { d.print("ERR", msg, args) }

func (defLogger) print(level, msg string, args []any) {
	var b strings.Builder
	b.WriteString("[" + level + "] AUTH " + msg)
	for i := 0; i+1 < len(args); i += 2 {
		fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
	}
	if len(args)%2 == 1 {
		fmt.Fprintf(&b, " %v", args[len(args)-1])
	}
	fmt.Println(b.String())
}
