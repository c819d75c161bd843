package auth

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/goliatone/go-print"
)

// Authenticator runs signup and signin
type Authenticator interface {
	Signup(ctx context.Context, msg SignupMessage) (*User, error)
	Login(ctx context.Context, email, password string) (string, error)
}

var _ Authenticator = (*Auther)(nil)

type AuthControllerRoutes struct {
	Signup  string
	Signin  string
	Signout string
	Test    string
	Me      string
}

type AuthController struct {
	Debug  bool
	Logger Logger
	Routes *AuthControllerRoutes
	Auther Authenticator
	HTTP   *RouteAuthenticator
	// SigninLimit caps signin attempts per client IP per minute. Zero
	// disables the limiter.
	SigninLimit int
}

type AuthControllerOption func(*AuthController) *AuthController

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(ac *AuthController) *AuthController {
		if logger != nil {
			ac.Logger = logger
		}
		return ac
	}
}

func WithAuthenticator(auther Authenticator) AuthControllerOption {
	return func(ac *AuthController) *AuthController {
		ac.Auther = auther
		return ac
	}
}

func WithRouteAuthenticator(ra *RouteAuthenticator) AuthControllerOption {
	return func(ac *AuthController) *AuthController {
		ac.HTTP = ra
		return ac
	}
}

func WithSigninLimit(perMinute int) AuthControllerOption {
	return func(ac *AuthController) *AuthController {
		ac.SigninLimit = perMinute
		return ac
	}
}

func WithDebug(debug bool) AuthControllerOption {
	return func(ac *AuthController) *AuthController {
		ac.Debug = debug
		return ac
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Routes: &AuthControllerRoutes{
			Signup:  "/signup",
			Signin:  "/signin",
			Signout: "/signout",
			Test:    "/test",
			Me:      "/me",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.HTTP == nil {
		panic("Missing RouteAuthenticator in auth controller...")
	}

	return c
}

// RegisterAuthRoutes mounts the auth endpoints on router
func RegisterAuthRoutes(router fiber.Router, opts ...AuthControllerOption) *AuthController {
	controller := NewAuthController(opts...)
	protected := controller.HTTP.ProtectedRoute()

	router.Post(controller.Routes.Signup, controller.SignupPost).Name("auth.signup")

	signin := []fiber.Handler{}
	if controller.SigninLimit > 0 {
		signin = append(signin, controller.signinLimiter())
	}
	signin = append(signin, controller.SigninPost)
	router.Post(controller.Routes.Signin, signin...).Name("auth.signin")

	router.Post(controller.Routes.Signout, controller.SignoutPost).Name("auth.signout")
	router.Post(controller.Routes.Test, protected, controller.TestPost).Name("auth.test")
	router.Get(controller.Routes.Me, protected, controller.MeGet).Name("auth.me")

	return controller
}

// SignupPayload is the signup request body
type SignupPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Validate will run validation rules
func (p SignupPayload) Validate() error {
	return validationError(validation.ValidateStruct(&p,
		validation.Field(&p.Username, validation.Required, validation.RuneLength(2, 20)),
		validation.Field(&p.Email, validation.Required, validation.Length(0, 100), is.Email),
		validation.Field(&p.Password, validation.Required, validation.Length(8, 20), validation.By(passwordStrength)),
		validation.Field(&p.Role, validation.Required, validation.In(roleNames()...)),
	))
}

func (p SignupPayload) ToMessage() SignupMessage {
	return SignupMessage{
		Username: strings.TrimSpace(p.Username),
		Email:    NormalizeEmail(p.Email),
		Password: p.Password,
		Role:     strings.ToUpper(strings.TrimSpace(p.Role)),
	}
}

// SigninPayload is the signin request body
type SigninPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (p SigninPayload) Validate() error {
	return validationError(validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, validation.Length(0, 100), is.Email),
		validation.Field(&p.Password, validation.Required, validation.Length(0, 20)),
	))
}

func (a *AuthController) SignupPost(c *fiber.Ctx) error {
	payload := new(SignupPayload)
	if err := c.BodyParser(payload); err != nil {
		return withCause(ErrInvalidInput, err)
	}

	if a.Debug {
		a.Logger.Debug("signup payload", "payload", print.MaybePrettyJSON(SignupPayload{
			Username: payload.Username,
			Email:    payload.Email,
			Role:     payload.Role,
		}))
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	user, err := a.Auther.Signup(c.UserContext(), payload.ToMessage())
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(user.ToResponse())
}

func (a *AuthController) SigninPost(c *fiber.Ctx) error {
	payload := new(SigninPayload)
	if err := c.BodyParser(payload); err != nil {
		return withCause(ErrInvalidInput, err)
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	token, err := a.Auther.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return err
	}

	return c.JSON(a.HTTP.DeliverToken(c, token))
}

func (a *AuthController) SignoutPost(c *fiber.Ctx) error {
	a.HTTP.ClearToken(c)
	return c.JSON(fiber.Map{"message": "Logout Success"})
}

func (a *AuthController) TestPost(c *fiber.Ctx) error {
	user, ok := PrincipalFromRouter(c)
	if !ok {
		return ErrPrincipalNotFound
	}
	return c.JSON(fiber.Map{
		"message": "Authenticated User",
		"user":    user.ToResponse(),
	})
}

func (a *AuthController) MeGet(c *fiber.Ctx) error {
	user, ok := PrincipalFromRouter(c)
	if !ok {
		return ErrPrincipalNotFound
	}
	return c.JSON(user.ToResponse())
}

func (a *AuthController) signinLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        a.SigninLimit,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			a.Logger.Warn("signin rate limit reached", "ip", c.IP())
			return ErrTooManyAttempts
		},
	})
}

const passwordSpecials = "@$!%*?&"

var (
	errPasswordCharset  = errors.New("password contains unsupported characters")
	errPasswordStrength = errors.New("password must include upper and lower case letters, a digit and a special character")
)

// passwordStrength requires an upper case letter, a lower case letter, a
// digit and one of @$!%*?&, and nothing outside those classes.
func passwordStrength(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}

	var upper, lower, digit, special bool
	for _, r := range s {
		switch {
		case r > unicode.MaxASCII:
			return errPasswordCharset
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		default:
			return errPasswordCharset
		}
	}

	if !upper || !lower || !digit || !special {
		return errPasswordStrength
	}
	return nil
}

func validationError(err error) error {
	return NewValidationError(ErrInvalidInput, err)
}
