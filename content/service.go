package content

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-boards/auth"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// PostInput carries the user editable fields of a post
type PostInput struct {
	Title    string
	Contents string
}

func (in PostInput) normalize() (PostInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Contents = strings.TrimSpace(in.Contents)
	if in.Title == "" || in.Contents == "" {
		return in, ErrInvalidInput
	}
	return in, nil
}

// Service implements the resource operations and enforces ownership
type Service[R Resource] struct {
	kind   Kind[R]
	store  Store[R]
	logger auth.Logger
	now    func() time.Time
}

func NewService[R Resource](kind Kind[R], store Store[R]) *Service[R] {
	return &Service[R]{
		kind:   kind,
		store:  store,
		logger: auth.ResolveLogger(kind.Plural, nil, nil),
		now:    time.Now,
	}
}

func (s *Service[R]) WithLogger(logger auth.Logger) *Service[R] {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithClock overrides the time source used for timestamps
func (s *Service[R]) WithClock(now func() time.Time) *Service[R] {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *Service[R]) Kind() Kind[R] {
	return s.kind
}

// Create stores a new public post authored and owned by principal
func (s *Service[R]) Create(ctx context.Context, principal *auth.User, in PostInput) (R, error) {
	var zero R
	if principal == nil {
		return zero, auth.ErrPrincipalNotFound
	}

	in, err := in.normalize()
	if err != nil {
		return zero, err
	}

	now := s.now().UTC()
	record := s.kind.New()
	*record.Base() = Post{
		Author:    principal.Username,
		Title:     in.Title,
		Contents:  in.Contents,
		Status:    StatusPublic,
		UserID:    principal.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.store.Create(ctx, record)
	if err != nil {
		return zero, s.internal(err, "failed to create")
	}

	s.logger.Info(s.kind.Name+" created", "id", created.Base().ID.String(), "user", principal.Username)
	return created, nil
}

func (s *Service[R]) List(ctx context.Context) ([]R, error) {
	s.logger.Debug("Retrieving all " + s.kind.Plural)

	records, err := s.store.List(ctx)
	if err != nil {
		return nil, s.internal(err, "failed to list")
	}
	return records, nil
}

// ListMine returns the posts owned by principal
func (s *Service[R]) ListMine(ctx context.Context, principal *auth.User) ([]R, error) {
	if principal == nil {
		return nil, auth.ErrPrincipalNotFound
	}

	s.logger.Debug("Retrieving own "+s.kind.Plural, "user", principal.Username)

	records, err := s.store.ListByOwner(ctx, principal.ID)
	if err != nil {
		return nil, s.internal(err, "failed to list")
	}
	return records, nil
}

func (s *Service[R]) Get(ctx context.Context, id uuid.UUID) (R, error) {
	record, err := s.store.Get(ctx, id)
	if err != nil {
		var zero R
		if goerrors.IsNotFound(err) {
			return zero, s.notFound(id.String())
		}
		return zero, s.internal(err, "failed to load")
	}
	return record, nil
}

// Search finds posts by exact author name. An empty author is rejected and
// an author without posts is reported as not found.
func (s *Service[R]) Search(ctx context.Context, author string) ([]R, error) {
	author = strings.TrimSpace(author)
	if author == "" {
		return nil, ErrAuthorRequired
	}

	records, err := s.store.ListByAuthor(ctx, author)
	if err != nil {
		return nil, s.internal(err, "failed to search")
	}

	if len(records) == 0 {
		return nil, errorf(ErrNotFound, "No %s found for author: %s", s.kind.Plural, author).
			WithMetadata(map[string]any{"author": author})
	}
	return records, nil
}

// Update replaces title and contents. Only the owner may update.
func (s *Service[R]) Update(ctx context.Context, principal *auth.User, id uuid.UUID, in PostInput) (R, error) {
	var zero R

	record, err := s.Get(ctx, id)
	if err != nil {
		return zero, err
	}

	if err := auth.CheckOwnership(principal, record.Base().UserID, auth.ActionUpdate); err != nil {
		s.logger.Warn(s.kind.Name+" update denied", "id", id.String(), "user", usernameOf(principal))
		return zero, err
	}

	in, err = in.normalize()
	if err != nil {
		return zero, err
	}

	base := record.Base()
	base.Title = in.Title
	base.Contents = in.Contents
	base.UpdatedAt = s.now().UTC()

	updated, err := s.store.Update(ctx, record, "title", "contents", "updated_at")
	if err != nil {
		return zero, s.mapStoreErr(err, id)
	}

	s.logger.Info(s.kind.Name+" updated", "id", id.String(), "user", principal.Username)
	return updated, nil
}

// UpdateStatus changes visibility. Role checks happen at the route.
func (s *Service[R]) UpdateStatus(ctx context.Context, principal *auth.User, id uuid.UUID, status Status) (R, error) {
	var zero R

	if !status.IsValid() {
		return zero, errorf(ErrInvalidStatus, "%s isn't in the status options", status)
	}

	record, err := s.Get(ctx, id)
	if err != nil {
		return zero, err
	}

	base := record.Base()
	base.Status = status
	base.UpdatedAt = s.now().UTC()

	updated, err := s.store.Update(ctx, record, "status", "updated_at")
	if err != nil {
		return zero, s.mapStoreErr(err, id)
	}

	s.logger.Info(s.kind.Name+" status updated", "id", id.String(), "status", string(status), "user", usernameOf(principal))
	return updated, nil
}

// Delete removes a post. Owners and admins may delete.
func (s *Service[R]) Delete(ctx context.Context, principal *auth.User, id uuid.UUID) error {
	record, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := auth.CheckOwnership(principal, record.Base().UserID, auth.ActionDelete); err != nil {
		s.logger.Warn(s.kind.Name+" delete denied", "id", id.String(), "user", usernameOf(principal))
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return s.mapStoreErr(err, id)
	}

	s.logger.Info(s.kind.Name+" deleted", "id", id.String(), "user", principal.Username)
	return nil
}

func (s *Service[R]) notFound(id string) error {
	return errorf(ErrNotFound, "%s with ID %s not found", s.kind.Name, id).
		WithMetadata(map[string]any{"id": id})
}

func (s *Service[R]) mapStoreErr(err error, id uuid.UUID) error {
	if goerrors.IsNotFound(err) {
		return s.notFound(id.String())
	}
	return s.internal(err, "failed to write")
}

func (s *Service[R]) internal(err error, msg string) error {
	s.logger.Error(s.kind.Name+" store error", "error", err)
	return goerrors.Wrap(err, goerrors.CategoryInternal, strings.ToLower(s.kind.Name)+" store: "+msg).
		WithCode(goerrors.CodeInternal)
}

func usernameOf(u *auth.User) string {
	if u == nil {
		return ""
	}
	return u.Username
}
