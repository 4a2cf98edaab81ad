package db

import (
	"net/url"
	"testing"

	"github.com/jjudge-oj/userapi/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresURL(t *testing.T) {
	raw := PostgresURL(config.DatabaseConfig{
		Host:     "db.internal",
		Port:     6543,
		User:     "app",
		Password: "p@ss word",
		DBName:   "users",
		UseSSL:   true,
	})

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "postgres", u.Scheme)
	assert.Equal(t, "db.internal:6543", u.Host)
	assert.Equal(t, "/users", u.Path)
	assert.Equal(t, "require", u.Query().Get("sslmode"))

	password, ok := u.User.Password()
	assert.True(t, ok)
	assert.Equal(t, "p@ss word", password)
}

func TestPostgresURLDisablesSSLByDefault(t *testing.T) {
	raw := PostgresURL(config.DatabaseConfig{Host: "localhost", Port: 5432, DBName: "users"})

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "disable", u.Query().Get("sslmode"))
}
