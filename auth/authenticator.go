package auth

import (
	"context"
	"time"
)

// Auther implements signup and signin
type Auther struct {
	provider      IdentityProvider
	registrar     AccountRegistrerer
	tokenService  TokenService
	logger        Logger
	activitySink  ActivitySink
	deterministic bool
}

// NewAuthenticator returns a new Auther
func NewAuthenticator(provider IdentityProvider, registrar AccountRegistrerer, tokens TokenService) *Auther {
	return &Auther{
		provider:     provider,
		registrar:    registrar,
		tokenService: tokens,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// WithDeterministicIDs derives new user ids from the email address
func (s *Auther) WithDeterministicIDs(enabled bool) *Auther {
	s.deterministic = enabled
	return s
}

// TokenService returns the TokenService used to issue tokens
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Signup validates, hashes and persists a new account.
func (s *Auther) Signup(ctx context.Context, msg SignupMessage) (*User, error) {
	if err := msg.Validate(); err != nil {
		s.logger.Info("Signup rejected invalid input", "email", msg.Email, "error", err)
		return nil, err
	}

	msg.UseHashid = msg.UseHashid || s.deterministic

	user, err := s.registrar.RegisterUser(ctx, msg)
	if err != nil {
		s.logger.Warn("Signup failed", "email", msg.Email, "error", err)
		s.emitAuthEvent(ctx, ActivityEventSignupFailure, ActorRef{Type: "anonymous"}, "", map[string]any{
			"email": msg.Email,
			"error": err.Error(),
		})
		return nil, err
	}

	s.emitAuthEvent(ctx, ActivityEventSignupSuccess, ActorRef{ID: user.ID.String(), Type: "user"}, user.ID.String(), map[string]any{
		"email": user.Email,
		"role":  string(user.Role),
	})

	return user, nil
}

// Login verifies credentials and issues an access token.
func (s *Auther) Login(ctx context.Context, email, password string) (string, error) {
	identity, err := s.provider.VerifyIdentity(ctx, email, password)
	if err != nil {
		s.logger.Warn("Login verify identity error", "email", email, "error", err)
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, ActorRef{Type: "unknown"}, "", map[string]any{
			"email": email,
			"error": err.Error(),
		})
		return "", err
	}

	if identity == nil {
		s.logger.Error("Login identity is nil")
		return "", ErrInvalidCredentials
	}

	token, err := s.tokenService.Generate(identity)
	if err != nil {
		s.logger.Error("Login failed to issue token", "error", err)
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, s.actorFromIdentity(identity), identity.ID(), map[string]any{
			"email": email,
			"error": err.Error(),
		})
		return "", err
	}

	s.emitAuthEvent(ctx, ActivityEventLoginSuccess, s.actorFromIdentity(identity), identity.ID(), map[string]any{
		"email": identity.Email(),
	})

	return token, nil
}

func (s *Auther) emitAuthEvent(ctx context.Context, eventType ActivityEventType, actor ActorRef, userID string, metadata map[string]any) {
	sink := normalizeActivitySink(s.activitySink)
	event := ActivityEvent{
		EventType:  eventType,
		Actor:      actor,
		UserID:     userID,
		Metadata:   metadata,
		OccurredAt: time.Now(),
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if err := sink.Record(ctx, event); err != nil {
		s.logger.Warn("activity sink record error", "error", err)
	}
}

func (s *Auther) actorFromIdentity(identity Identity) ActorRef {
	if identity == nil {
		return ActorRef{Type: "unknown"}
	}

	return ActorRef{
		ID:   identity.ID(),
		Type: "user",
	}
}
