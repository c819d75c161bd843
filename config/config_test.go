package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-boards/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseEnv() map[string]string {
	return map[string]string{
		"JWT_SECRET": "dev-secret",
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(config.WithEnvironment(baseEnv()))
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, time.Hour, cfg.GetTokenExpiration())
	assert.Equal(t, config.TransportHeader, cfg.GetTokenTransport())
	assert.Equal(t, "header:Authorization", cfg.GetTokenLookup())
	assert.Equal(t, 360*time.Second, cfg.GetCookieMaxAge())
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, 10, cfg.DB.MaxOpenConns)
	assert.Equal(t, "memory", cfg.BlogStore)
}

func TestLoad_Overrides(t *testing.T) {
	environ := baseEnv()
	environ["JWT_EXPIRATION"] = "15m"
	environ["JWT_AUDIENCE"] = "web,mobile"
	environ["JWT_PREVIOUS_KEYS"] = "k1:old-secret,k0:older-secret"
	environ["AUTH_TOKEN_TRANSPORT"] = "cookie"
	environ["AUTH_COOKIE_NAME"] = "jwt"
	environ["DB_DRIVER"] = "mysql"
	environ["DB_HOST"] = "db.internal"
	environ["DB_PORT"] = "3306"
	environ["DB_USER"] = "boards"
	environ["DB_PW"] = "s3cret"
	environ["DB_NAME"] = "boards_app"

	cfg, err := config.Load(config.WithEnvironment(environ))
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.JWTExpiration)
	assert.Equal(t, []string{"web", "mobile"}, cfg.GetAudience())
	assert.Equal(t, map[string]string{"k1": "old-secret", "k0": "older-secret"}, cfg.JWTPreviousKeys)
	assert.Equal(t, "cookie:jwt", cfg.GetTokenLookup())
	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, 3306, cfg.DB.Port)
	assert.Equal(t, "s3cret", cfg.DB.Password)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(map[string]string)
		wantErr string
	}{
		{
			name:    "missing secret",
			mutate:  func(e map[string]string) { delete(e, "JWT_SECRET") },
			wantErr: "JWT_SECRET",
		},
		{
			name:    "unknown transport",
			mutate:  func(e map[string]string) { e["AUTH_TOKEN_TRANSPORT"] = "both" },
			wantErr: "AUTH_TOKEN_TRANSPORT",
		},
		{
			name:    "unknown driver",
			mutate:  func(e map[string]string) { e["DB_DRIVER"] = "oracle" },
			wantErr: "DB_DRIVER",
		},
		{
			name: "short secret in production",
			mutate: func(e map[string]string) {
				e["APP_ENV"] = "production"
			},
			wantErr: "at least",
		},
		{
			name:    "bad same site",
			mutate:  func(e map[string]string) { e["AUTH_COOKIE_SAME_SITE"] = "whatever" },
			wantErr: "AUTH_COOKIE_SAME_SITE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			environ := baseEnv()
			tt.mutate(environ)

			_, err := config.Load(config.WithEnvironment(environ))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(file, []byte("JWT_SECRET=from-dotenv\nPORT=4000\n"), 0o600))

	t.Setenv("JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("JWT_SECRET"))
	t.Setenv("PORT", "")
	require.NoError(t, os.Unsetenv("PORT"))

	cfg, err := config.Load(config.WithDotEnv(file, filepath.Join(dir, "missing.env")))
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.JWTSecret)
	assert.Equal(t, 4000, cfg.Port)
}

func TestDump_HidesSecrets(t *testing.T) {
	environ := baseEnv()
	environ["DB_PW"] = "hunter2"

	cfg, err := config.Load(config.WithEnvironment(environ))
	require.NoError(t, err)

	out := cfg.Dump()
	assert.NotContains(t, out, "dev-secret")
	assert.NotContains(t, out, "hunter2")
}
