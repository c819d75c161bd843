package errorware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
)

const (
	DefaultInternalMessage = "An unexpected server error occurred"
	// InternalTextCode matches the text code goerrors.MapToError gives
	// unclassified errors
	InternalTextCode = "INTERNAL_ERROR"
)

// Logger receives server side failures. The request is never blocked on it.
type Logger interface {
	Error(msg string, args ...any)
}

type Config struct {
	Logger Logger
	// RequestID extracts the request id echoed back in the error body
	RequestID func(c *fiber.Ctx) string
	// InternalMessage replaces the message of any 5xx response
	InternalMessage string
	// Mappers run before the fiber mapper for errors that are not rich errors
	Mappers []goerrors.ErrorMapper
}

func GetDefaultConfig(config ...Config) Config {
	var cfg Config
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.RequestID == nil {
		cfg.RequestID = requestIDFromContext
	}

	if cfg.InternalMessage == "" {
		cfg.InternalMessage = DefaultInternalMessage
	}

	return cfg
}

// Responder turns errors into public error responses
type Responder struct {
	cfg      Config
	mappers  []goerrors.ErrorMapper
	renderer *goerrors.Renderer
}

func NewResponder(config ...Config) *Responder {
	cfg := GetDefaultConfig(config...)

	r := &Responder{
		cfg:     cfg,
		mappers: append(append([]goerrors.ErrorMapper{}, cfg.Mappers...), MapFiberError),
	}

	renderer, err := goerrors.NewRenderer(
		goerrors.OutputPublic,
		goerrors.WithMessageResolver(r.resolveMessage),
	)
	if err != nil {
		// only reachable with a nil resolver
		panic(err)
	}
	r.renderer = renderer

	return r
}

// New returns a fiber error handler that writes every error as an
// ErrorResponse. Causes of 5xx errors are logged, never sent.
func New(config ...Config) fiber.ErrorHandler {
	r := NewResponder(config...)

	return func(c *fiber.Ctx, err error) error {
		status, res := r.Render(err)

		if res.Error != nil && res.Error.RequestID == "" {
			res.Error.RequestID = r.cfg.RequestID(c)
		}

		if status >= fiber.StatusInternalServerError && r.cfg.Logger != nil {
			r.cfg.Logger.Error("request failed",
				"method", c.Method(),
				"path", c.Path(),
				"request_id", r.cfg.RequestID(c),
				"error", err,
				"cause", goerrors.RootCause(err),
			)
		}

		return c.Status(status).JSON(res)
	}
}

// Render maps err to a rich error and renders its public form along with
// the HTTP status it should be sent with.
func (r *Responder) Render(err error) (int, goerrors.ErrorResponse) {
	rich := goerrors.MapToError(err, r.mappers)
	if rich == nil {
		rich = goerrors.MapToError(errors.New("nil error"), nil)
	}

	status := StatusCode(rich)

	public, renderErr := r.renderer.Public(rich)
	if public == nil {
		public = &goerrors.PublicError{
			Category: goerrors.CategoryInternal,
			TextCode: InternalTextCode,
			Message:  r.cfg.InternalMessage,
		}
		status = fiber.StatusInternalServerError
	} else if renderErr != nil && r.cfg.Logger != nil {
		r.cfg.Logger.Error("error response sanitized", "error", renderErr)
	}

	public.Code = status
	switch {
	case public.TextCode != "":
	case status >= fiber.StatusInternalServerError:
		public.TextCode = InternalTextCode
	default:
		public.TextCode = goerrors.HTTPStatusToTextCode(status)
	}

	return status, goerrors.ErrorResponse{Error: public}
}

// Status returns the HTTP status err would be rendered with
func (r *Responder) Status(err error) int {
	return StatusCode(goerrors.MapToError(err, r.mappers))
}

func (r *Responder) resolveMessage(_ goerrors.OutputContext, in goerrors.MessageInput) (string, error) {
	if in.Code >= fiber.StatusInternalServerError || in.Message == "" {
		return r.cfg.InternalMessage, nil
	}
	if in.Code < fiber.StatusBadRequest && statusForCategory(in.Category) >= fiber.StatusInternalServerError {
		return r.cfg.InternalMessage, nil
	}
	return in.Message, nil
}

// StatusCode picks the HTTP status for a rich error. An explicit 4xx or
// 5xx code wins, otherwise the category decides.
func StatusCode(err *goerrors.Error) int {
	if err == nil {
		return fiber.StatusInternalServerError
	}
	if err.Code >= fiber.StatusBadRequest && err.Code <= 599 {
		return err.Code
	}
	return statusForCategory(err.Category)
}

func statusForCategory(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return fiber.StatusBadRequest
	case goerrors.CategoryAuth:
		return fiber.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return fiber.StatusForbidden
	case goerrors.CategoryNotFound:
		return fiber.StatusNotFound
	case goerrors.CategoryConflict:
		return fiber.StatusConflict
	case goerrors.CategoryRateLimit:
		return fiber.StatusTooManyRequests
	case goerrors.CategoryMethodNotAllowed:
		return fiber.StatusMethodNotAllowed
	default:
		return fiber.StatusInternalServerError
	}
}

// MapFiberError classifies *fiber.Error values, such as the 404 fiber
// returns for unknown routes.
func MapFiberError(err error) *goerrors.Error {
	var fe *fiber.Error
	if !errors.As(err, &fe) {
		return nil
	}
	return goerrors.New(fe.Message, goerrors.HTTPStatusToCategory(fe.Code)).
		WithCode(fe.Code).
		WithTextCode(goerrors.HTTPStatusToTextCode(fe.Code))
}

func requestIDFromContext(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}
