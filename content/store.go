package content

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// Store persists records of one resource kind. Get, Update and Delete
// report a missing record with a not found error.
type Store[R Resource] interface {
	Create(ctx context.Context, record R) (R, error)
	List(ctx context.Context) ([]R, error)
	ListByOwner(ctx context.Context, userID uuid.UUID) ([]R, error)
	ListByAuthor(ctx context.Context, author string) ([]R, error)
	Get(ctx context.Context, id uuid.UUID) (R, error)
	// Update writes the given columns, or every column when none are given
	Update(ctx context.Context, record R, columns ...string) (R, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// notFoundRecord reports a missing record. cause is the driver or
// repository error when there is one.
func notFoundRecord(id uuid.UUID, cause error) error {
	if cause == nil {
		cause = repository.ErrRecordNotFound
	}
	return goerrors.Wrap(cause, goerrors.CategoryNotFound, "record not found").
		WithCode(goerrors.CodeNotFound).
		WithTextCode("NOT_FOUND").
		WithMetadata(map[string]any{"id": id.String()})
}

func duplicateRecord(id uuid.UUID) error {
	return goerrors.New("record already exists", goerrors.CategoryConflict).
		WithCode(goerrors.CodeConflict).
		WithTextCode("DUPLICATE_RECORD").
		WithMetadata(map[string]any{"id": id.String()})
}
