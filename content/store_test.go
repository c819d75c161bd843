package content_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/goliatone/go-boards/content"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	for _, model := range []any{(*content.Article)(nil), (*content.Board)(nil), (*content.Blog)(nil)} {
		_, err = db.NewCreateTable().Model(model).Exec(context.Background())
		require.NoError(t, err)
	}

	return db
}

func storesUnderTest(t *testing.T) map[string]content.Store[*content.Article] {
	return map[string]content.Store[*content.Article]{
		"bun":    content.NewBunStore(newTestDB(t), content.Articles),
		"memory": content.NewMemoryStore(content.Articles),
	}
}

func newArticle(owner uuid.UUID, author, title string, at time.Time) *content.Article {
	return &content.Article{Post: content.Post{
		Author:    author,
		Title:     title,
		Contents:  "contents of " + title,
		Status:    content.StatusPublic,
		UserID:    owner,
		CreatedAt: at,
		UpdatedAt: at,
	}}
}

func TestStore_CreateGetList(t *testing.T) {
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			first, err := store.Create(ctx, newArticle(alice, "alice", "first", t0))
			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, first.ID)

			_, err = store.Create(ctx, newArticle(bob, "bob", "second", t0.Add(time.Minute)))
			require.NoError(t, err)
			_, err = store.Create(ctx, newArticle(alice, "alice", "third", t0.Add(2*time.Minute)))
			require.NoError(t, err)

			got, err := store.Get(ctx, first.ID)
			require.NoError(t, err)
			assert.Equal(t, "first", got.Title)
			assert.Equal(t, alice, got.UserID)
			assert.Equal(t, content.StatusPublic, got.Status)

			all, err := store.List(ctx)
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, []string{"first", "second", "third"}, titles(all))

			mine, err := store.ListByOwner(ctx, alice)
			require.NoError(t, err)
			assert.Equal(t, []string{"first", "third"}, titles(mine))

			byAuthor, err := store.ListByAuthor(ctx, "bob")
			require.NoError(t, err)
			assert.Equal(t, []string{"second"}, titles(byAuthor))

			none, err := store.ListByAuthor(ctx, "carol")
			require.NoError(t, err)
			assert.Empty(t, none)

			_, err = store.Get(ctx, uuid.New())
			assert.True(t, goerrors.IsNotFound(err))
		})
	}
}

func TestStore_UpdateDelete(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			created, err := store.Create(ctx, newArticle(owner, "alice", "draft", t0))
			require.NoError(t, err)

			created.Title = "final"
			created.Status = content.StatusPrivate
			_, err = store.Update(ctx, created, "title")
			require.NoError(t, err)

			got, err := store.Get(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, "final", got.Title)
			// status was not in the column list
			assert.Equal(t, content.StatusPublic, got.Status)

			got.Status = content.StatusPrivate
			_, err = store.Update(ctx, got)
			require.NoError(t, err)

			got, err = store.Get(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, content.StatusPrivate, got.Status)

			require.NoError(t, store.Delete(ctx, created.ID))

			_, err = store.Get(ctx, created.ID)
			assert.True(t, goerrors.IsNotFound(err))
			assert.True(t, goerrors.IsNotFound(store.Delete(ctx, created.ID)))

			missing := newArticle(owner, "alice", "ghost", t0)
			missing.ID = uuid.New()
			_, err = store.Update(ctx, missing, "title")
			assert.True(t, goerrors.IsNotFound(err))
		})
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := content.NewMemoryStore(content.Blogs)

	created, err := store.Create(ctx, &content.Blog{Post: content.Post{Title: "mine", Contents: "c"}})
	require.NoError(t, err)

	created.Title = "mutated outside"

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "mine", got.Title)

	got.Title = "mutated again"
	again, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "mine", again.Title)
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := content.NewMemoryStore(content.Boards)
	_, err := store.List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func titles[R content.Resource](records []R) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Base().Title)
	}
	return out
}
