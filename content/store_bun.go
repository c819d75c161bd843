package content

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunStore keeps records in the kind's table
type BunStore[R Resource] struct {
	kind Kind[R]
	repo repository.Repository[R]
}

var _ Store[*Article] = (*BunStore[*Article])(nil)

func NewBunStore[R Resource](db *bun.DB, kind Kind[R]) *BunStore[R] {
	return &BunStore[R]{
		kind: kind,
		repo: repository.NewRepository[R](db, repository.ModelHandlers[R]{
			NewRecord: kind.New,
			GetID: func(r R) uuid.UUID {
				return r.Base().ID
			},
			SetID: func(r R, id uuid.UUID) {
				r.Base().ID = id
			},
			GetIdentifier: func() string {
				return "id"
			},
		}),
	}
}

func (s *BunStore[R]) Create(ctx context.Context, record R) (R, error) {
	return s.repo.Create(ctx, record)
}

func (s *BunStore[R]) List(ctx context.Context) ([]R, error) {
	return s.list(ctx)
}

func (s *BunStore[R]) ListByOwner(ctx context.Context, userID uuid.UUID) ([]R, error) {
	return s.list(ctx, whereColumn("user_id", userID))
}

func (s *BunStore[R]) ListByAuthor(ctx context.Context, author string) ([]R, error) {
	return s.list(ctx, whereColumn("author", author))
}

// list returns every matching row in creation order, overriding the
// repository's default page size.
func (s *BunStore[R]) list(ctx context.Context, criteria ...repository.SelectCriteria) ([]R, error) {
	criteria = append(criteria,
		repository.OrderBy("created_at ASC", "id ASC"),
		unpaged,
	)
	records, _, err := s.repo.List(ctx, criteria...)
	return records, err
}

func (s *BunStore[R]) Get(ctx context.Context, id uuid.UUID) (R, error) {
	record, err := s.repo.Get(ctx, whereColumn("id", id))
	if err != nil {
		var zero R
		if repository.IsRecordNotFound(err) {
			return zero, notFoundRecord(id, err)
		}
		return zero, err
	}
	return record, nil
}

func (s *BunStore[R]) Update(ctx context.Context, record R, columns ...string) (R, error) {
	var criteria []repository.UpdateCriteria
	if len(columns) > 0 {
		criteria = append(criteria, repository.UpdateColumns(columns...))
	}

	updated, err := s.repo.Update(ctx, record, criteria...)
	if err != nil {
		var zero R
		if repository.IsRecordNotFound(err) {
			return zero, notFoundRecord(record.Base().ID, err)
		}
		return zero, err
	}
	return updated, nil
}

// Delete removes the row with id. The repository does not check affected
// rows, so the record is loaded first to report a missing id.
func (s *BunStore[R]) Delete(ctx context.Context, id uuid.UUID) error {
	record, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, record)
}

// whereColumn quotes the column with the dialect's identifier quoting.
func whereColumn(column string, value any) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.? = ?", bun.Ident(column), value)
	}
}

func unpaged(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Limit(0).Offset(0)
}
