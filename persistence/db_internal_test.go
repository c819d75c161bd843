package persistence

import (
	"testing"

	"github.com/goliatone/go-boards/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresDSN(t *testing.T) {
	cfg := config.DBConfig{Host: "db", User: "app", Password: "secret", Name: "boards"}
	assert.Equal(t, "host=db port=5432 user=app password=secret dbname=boards sslmode=disable", postgresDSN(cfg))

	cfg.Port = 6543
	assert.Contains(t, postgresDSN(cfg), "port=6543")

	cfg.DSN = "postgres://u:p@h/n"
	assert.Equal(t, "postgres://u:p@h/n", postgresDSN(cfg))
}

func TestMySQLConfig(t *testing.T) {
	mycfg, err := mysqlConfig(config.DBConfig{Host: "db", User: "app", Password: "secret", Name: "boards"})
	require.NoError(t, err)
	assert.Equal(t, "db:3306", mycfg.Addr)
	assert.Equal(t, "boards", mycfg.DBName)
	assert.True(t, mycfg.ParseTime)
	assert.True(t, mycfg.ClientFoundRows)

	mycfg, err = mysqlConfig(config.DBConfig{DSN: "app:secret@tcp(db:3307)/other"})
	require.NoError(t, err)
	assert.Equal(t, "db:3307", mycfg.Addr)
	assert.Equal(t, "other", mycfg.DBName)
	assert.True(t, mycfg.ClientFoundRows)

	_, err = mysqlConfig(config.DBConfig{DSN: "::not a dsn"})
	assert.Error(t, err)
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "file:boards.db?cache=shared", sqliteDSN(config.DBConfig{Name: "boards"}))
	assert.Equal(t, "file::memory:", sqliteDSN(config.DBConfig{DSN: "file::memory:"}))
}
