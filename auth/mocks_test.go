package auth_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-boards/auth"
	"github.com/goliatone/go-boards/middleware/errorware"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/mock"
)

// MockUserFinder implements auth.UserFinder
type MockUserFinder struct {
	mock.Mock
}

func (m *MockUserFinder) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*auth.User)
	return user, args.Error(1)
}

// MockIdentityProvider implements auth.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, email, password string) (auth.Identity, error) {
	args := m.Called(ctx, email, password)
	identity, _ := args.Get(0).(auth.Identity)
	return identity, args.Error(1)
}

func (m *MockIdentityProvider) FindIdentityByIdentifier(ctx context.Context, email string) (auth.Identity, error) {
	args := m.Called(ctx, email)
	identity, _ := args.Get(0).(auth.Identity)
	return identity, args.Error(1)
}

// MockRegistrar implements auth.AccountRegistrerer
type MockRegistrar struct {
	mock.Mock
}

func (m *MockRegistrar) RegisterUser(ctx context.Context, msg auth.SignupMessage) (*auth.User, error) {
	args := m.Called(ctx, msg)
	user, _ := args.Get(0).(*auth.User)
	return user, args.Error(1)
}

// recordingLogger keeps log lines for assertions
type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) log(level, msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf("%s %s %v", level, msg, args))
}

func (l *recordingLogger) Debug(msg string, args ...any) { l.log("DEBUG", msg, args...) }
func (l *recordingLogger) Info(msg string, args ...any)  { l.log("INFO", msg, args...) }
func (l *recordingLogger) Warn(msg string, args ...any)  { l.log("WARN", msg, args...) }
func (l *recordingLogger) Error(msg string, args ...any) { l.log("ERROR", msg, args...) }

func (l *recordingLogger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

// fastHasher keeps bcrypt cost at the minimum for tests
var fastHasher = auth.BcryptHasher{Cost: 4}

// statusOf returns the HTTP status carried by a rich error
func statusOf(err error) int {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Code
	}
	return 0
}

var responder = errorware.NewResponder()

// render returns the public body err would be sent with
func render(err error) goerrors.ErrorResponse {
	_, res := responder.Render(err)
	return res
}

// errorBody reads the error object of an error response
func errorBody(body map[string]any) map[string]any {
	e, _ := body["error"].(map[string]any)
	return e
}

func newErrorApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: errorware.New()})
}
