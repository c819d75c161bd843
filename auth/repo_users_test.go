package auth_test

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"

	"github.com/goliatone/go-boards/auth"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
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

	_, err = db.NewCreateTable().Model((*auth.User)(nil)).Exec(context.Background())
	require.NoError(t, err)

	return db
}

func TestUsersRepository_RegisterAndFind(t *testing.T) {
	ctx := context.Background()
	users := auth.NewUsersRepository(newTestDB(t))

	created, err := users.Register(ctx, &auth.User{
		Username:     "alice",
		Email:        " A@X.com",
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, "a@x.com", created.Email)
	assert.Equal(t, auth.RoleUser, created.Role)

	found, err := users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	exists, err := users.ExistsByEmail(ctx, "A@x.COM")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = users.GetByEmail(ctx, "nobody@x.com")
	assert.True(t, goerrors.IsNotFound(err))
}

func TestUsersRepository_UniqueEmailIsAuthoritative(t *testing.T) {
	ctx := context.Background()
	users := auth.NewUsersRepository(newTestDB(t))

	_, err := users.Register(ctx, &auth.User{Username: "alice", Email: "a@x.com", PasswordHash: "h"})
	require.NoError(t, err)

	// skips the application level pre check
	_, err = users.Register(ctx, &auth.User{Username: "bob", Email: "a@x.com", PasswordHash: "h"})
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrDuplicateEmail)
	assert.Equal(t, 409, statusOf(err))
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryConflict))
}

func TestUsersRepository_OtherUniqueViolationsAreInternal(t *testing.T) {
	ctx := context.Background()
	users := auth.NewUsersRepository(newTestDB(t))

	first, err := users.Register(ctx, &auth.User{Username: "alice", Email: "a@x.com", PasswordHash: "h"})
	require.NoError(t, err)

	// same primary key, different email
	_, err = users.Register(ctx, &auth.User{ID: first.ID, Username: "bob", Email: "b@x.com", PasswordHash: "h"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, auth.ErrDuplicateEmail)
	assert.True(t, goerrors.IsInternal(err))
	assert.Equal(t, 500, statusOf(err))

	exists, err := users.ExistsByEmail(ctx, "b@x.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSignupHandler(t *testing.T) {
	ctx := context.Background()
	repo := auth.NewRepositoryManager(newTestDB(t))
	require.NoError(t, repo.Validate())
	handler := auth.NewSignupHandler(repo, fastHasher)

	user, err := handler.RegisterUser(ctx, validSignup())
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, auth.RoleUser, user.Role)
	assert.NotEqual(t, "Str0ng!Pass", user.PasswordHash)
	assert.True(t, fastHasher.VerifyPassword("Str0ng!Pass", user.PasswordHash))

	t.Run("same email with other fields", func(t *testing.T) {
		msg := validSignup()
		msg.Username = "mallory"
		msg.Role = "ADMIN"
		_, err := handler.RegisterUser(ctx, msg)
		assert.ErrorIs(t, err, auth.ErrDuplicateEmail)
	})

	t.Run("email is case insensitive", func(t *testing.T) {
		msg := validSignup()
		msg.Email = "A@X.COM"
		_, err := handler.RegisterUser(ctx, msg)
		assert.ErrorIs(t, err, auth.ErrDuplicateEmail)
	})

	t.Run("role is parsed", func(t *testing.T) {
		msg := validSignup()
		msg.Email = "admin@x.com"
		msg.Role = "ADMIN"
		admin, err := handler.RegisterUser(ctx, msg)
		require.NoError(t, err)
		assert.Equal(t, auth.RoleAdmin, admin.Role)
	})

	t.Run("unknown role", func(t *testing.T) {
		msg := validSignup()
		msg.Email = "root@x.com"
		msg.Role = "ROOT"
		_, err := handler.RegisterUser(ctx, msg)
		assert.ErrorIs(t, err, auth.ErrInvalidInput)
	})

	t.Run("deterministic id", func(t *testing.T) {
		msg := validSignup()
		msg.Email = "hashid@x.com"
		msg.UseHashid = true
		u, err := handler.RegisterUser(ctx, msg)
		require.NoError(t, err)

		want, err := hashid.NewUUID("hashid@x.com")
		require.NoError(t, err)
		assert.Equal(t, want, u.ID)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		msg := validSignup()
		msg.Email = "late@x.com"
		_, err := handler.RegisterUser(cctx, msg)
		require.Error(t, err)
		assert.True(t, goerrors.IsCategory(err, goerrors.CategoryOperation))
	})
}

func TestSignupHandler_ConcurrentSameEmail(t *testing.T) {
	ctx := context.Background()
	handler := auth.NewSignupHandler(auth.NewRepositoryManager(newTestDB(t)), fastHasher)

	const n = 4
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = handler.RegisterUser(ctx, validSignup())
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, auth.ErrDuplicateEmail)
	}
	assert.Equal(t, 1, succeeded)
}
