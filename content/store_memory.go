package content

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps records in process memory. Records are copied on the
// way in and out so callers never share state with the store.
type MemoryStore[R Resource] struct {
	kind    Kind[R]
	mu      sync.RWMutex
	records map[uuid.UUID]R
	order   []uuid.UUID
}

var _ Store[*Blog] = (*MemoryStore[*Blog])(nil)

func NewMemoryStore[R Resource](kind Kind[R]) *MemoryStore[R] {
	return &MemoryStore[R]{
		kind:    kind,
		records: map[uuid.UUID]R{},
	}
}

func (s *MemoryStore[R]) Create(ctx context.Context, record R) (R, error) {
	if err := ctx.Err(); err != nil {
		var zero R
		return zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	base := record.Base()
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	if _, ok := s.records[base.ID]; ok {
		var zero R
		return zero, duplicateRecord(base.ID)
	}

	s.records[base.ID] = s.kind.clone(record)
	s.order = append(s.order, base.ID)
	return record, nil
}

func (s *MemoryStore[R]) List(ctx context.Context) ([]R, error) {
	return s.filter(ctx, func(*Post) bool { return true })
}

func (s *MemoryStore[R]) ListByOwner(ctx context.Context, userID uuid.UUID) ([]R, error) {
	return s.filter(ctx, func(p *Post) bool { return p.UserID == userID })
}

func (s *MemoryStore[R]) ListByAuthor(ctx context.Context, author string) ([]R, error) {
	return s.filter(ctx, func(p *Post) bool { return p.Author == author })
}

func (s *MemoryStore[R]) filter(ctx context.Context, keep func(*Post) bool) ([]R, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []R{}
	for _, id := range s.order {
		record := s.records[id]
		if keep(record.Base()) {
			out = append(out, s.kind.clone(record))
		}
	}
	return out, nil
}

func (s *MemoryStore[R]) Get(ctx context.Context, id uuid.UUID) (R, error) {
	var zero R
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return zero, notFoundRecord(id, nil)
	}
	return s.kind.clone(record), nil
}

func (s *MemoryStore[R]) Update(ctx context.Context, record R, columns ...string) (R, error) {
	var zero R
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	in := record.Base()
	current, ok := s.records[in.ID]
	if !ok {
		return zero, notFoundRecord(in.ID, nil)
	}

	if len(columns) == 0 {
		s.records[in.ID] = s.kind.clone(record)
		return record, nil
	}

	stored := current.Base()
	for _, column := range columns {
		switch column {
		case "author":
			stored.Author = in.Author
		case "title":
			stored.Title = in.Title
		case "contents":
			stored.Contents = in.Contents
		case "status":
			stored.Status = in.Status
		case "user_id":
			stored.UserID = in.UserID
		case "updated_at":
			stored.UpdatedAt = in.UpdatedAt
		}
	}

	*in = *stored
	return record, nil
}

func (s *MemoryStore[R]) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return notFoundRecord(id, nil)
	}

	delete(s.records, id)
	s.order = slices.DeleteFunc(s.order, func(v uuid.UUID) bool { return v == id })
	return nil
}
