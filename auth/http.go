package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-boards/middleware/jwtware"
)

const (
	TransportHeader = "header"
	TransportCookie = "cookie"
)

// SigninResponse is the body returned by a successful signin
type SigninResponse struct {
	Message     string `json:"message"`
	AccessToken string `json:"accessToken,omitempty"`
}

// RouteAuthenticator protects routes and delivers tokens over the single
// transport the deployment is configured with.
type RouteAuthenticator struct {
	cfg       Config
	validator TokenValidator
	resolver  PrincipalResolver
	Logger    Logger
}

func NewHTTPAuthenticator(validator TokenValidator, resolver PrincipalResolver, cfg Config) (*RouteAuthenticator, error) {
	switch cfg.GetTokenTransport() {
	case TransportHeader:
	case TransportCookie:
		if cfg.GetCookieName() == "" {
			return nil, errors.New("cookie transport needs a cookie name")
		}
	default:
		return nil, fmt.Errorf("unknown token transport %q", cfg.GetTokenTransport())
	}

	if validator == nil || resolver == nil {
		return nil, errors.New("route authenticator needs a token validator and a principal resolver")
	}

	return &RouteAuthenticator{
		cfg:       cfg,
		validator: validator,
		resolver:  resolver,
		Logger:    defLogger{},
	}, nil
}

func (a *RouteAuthenticator) WithLogger(logger Logger) *RouteAuthenticator {
	if logger != nil {
		a.Logger = logger
	}
	return a
}

// ProtectedRoute verifies the token, reloads the principal and attaches it
// to the request.
func (a *RouteAuthenticator) ProtectedRoute() fiber.Handler {
	return jwtware.New(jwtware.Config{
		ContextKey:  a.cfg.GetContextKey(),
		TokenLookup: a.cfg.GetTokenLookup(),
		AuthScheme:  a.cfg.GetAuthScheme(),
		TokenValidator: jwtware.TokenValidatorFunc(func(token string) (jwtware.AuthClaims, error) {
			claims, err := a.validator.Validate(token)
			if err != nil {
				return nil, err
			}
			return claims, nil
		}),
		ContextEnricher: func(ctx context.Context, claims jwtware.AuthClaims) context.Context {
			if ac, ok := claims.(AuthClaims); ok {
				return WithClaimsContext(ctx, ac)
			}
			return ctx
		},
		ValidationListeners: []jwtware.ValidationListener{a.attachPrincipal},
		ErrorHandler:        a.authErrorHandler,
	})
}

func (a *RouteAuthenticator) attachPrincipal(c *fiber.Ctx, claims jwtware.AuthClaims) error {
	ac, ok := claims.(AuthClaims)
	if !ok {
		return ErrTokenMalformed
	}

	user, err := a.resolver.PrincipalFromClaims(c.UserContext(), ac)
	if err != nil {
		return err
	}

	SetPrincipal(c, user)
	return nil
}

// authErrorHandler maps middleware failures to rich errors and hands them
// to the application error handler.
func (a *RouteAuthenticator) authErrorHandler(c *fiber.Ctx, err error) error {
	var richErr *goerrors.Error
	switch {
	case errors.Is(err, jwtware.ErrJWTMissingOrMalformed):
		richErr = withCause(ErrTokenMalformed, err)
	case goerrors.As(err, &richErr):
	default:
		richErr = goerrors.Wrap(err, goerrors.CategoryAuth, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode).
			WithCode(goerrors.CodeUnauthorized)
	}

	a.Logger.Info(
		"Authentication error",
		"error", richErr.Message,
		"text_code", richErr.TextCode,
		"path", c.OriginalURL(),
	)

	return richErr
}

// DeliverToken places the token on the configured transport and returns
// the response body for the client.
func (a *RouteAuthenticator) DeliverToken(c *fiber.Ctx, token string) SigninResponse {
	if a.cfg.GetTokenTransport() == TransportCookie {
		a.setCookieToken(c, token, a.cfg.GetCookieMaxAge())
		return SigninResponse{Message: "Login Success"}
	}

	c.Set(fiber.HeaderAuthorization, a.cfg.GetAuthScheme()+" "+token)
	return SigninResponse{Message: "Login Success", AccessToken: token}
}

// ClearToken expires the token cookie. Header tokens are held by the
// client and cannot be revoked here.
func (a *RouteAuthenticator) ClearToken(c *fiber.Ctx) {
	if a.cfg.GetTokenTransport() != TransportCookie {
		return
	}
	a.cookieDel(c, a.cfg.GetCookieName())
}

func (a *RouteAuthenticator) setCookieToken(c *fiber.Ctx, val string, maxAge time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     a.cfg.GetCookieName(),
		Value:    val,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Expires:  time.Now().Add(maxAge),
		HTTPOnly: true,
		Secure:   a.cfg.GetCookieSecure(),
		SameSite: a.cfg.GetCookieSameSite(),
	})
}

func (a *RouteAuthenticator) cookieDel(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   a.cfg.GetCookieSecure(),
		SameSite: a.cfg.GetCookieSameSite(),
	})
}
