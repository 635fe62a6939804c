package config

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViperDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")

	c, err := FromViper(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "8080", c.AppPort)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, "blogicum", c.DBName)
	assert.Equal(t, 60, c.RateLimitPerMinute)
	assert.Equal(t, 90, c.PageViewRetentionDays)
	assert.Equal(t, []string{"*"}, c.AllowedOrigins)
	assert.Empty(t, c.RedisHost)
}

func TestFromViperEnvironmentWinsOverFile(t *testing.T) {
	v := viper.New()
	v.SetConfigType("json")
	require.NoError(t, v.ReadConfig(strings.NewReader(`{
		"app": {"port": "9000", "jwt_secret": "from-file", "admin_usernames": ["root"]},
		"database": {"driver": "Postgres"}
	}`)))
	t.Setenv("APP_PORT", "9100")
	t.Setenv("ADMIN_USERNAMES", "alice, bob")

	c, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "9100", c.AppPort)
	assert.Equal(t, "from-file", c.JWTSecret)
	assert.Equal(t, "postgres", c.DBDriver)
	assert.Equal(t, []string{"alice", "bob"}, c.AdminUsernames)
	assert.True(t, c.IsAdminUsername(" Alice "))
	assert.False(t, c.IsAdminUsername("root"))
}

func TestFromViperRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := FromViper(viper.New())
	assert.ErrorIs(t, err, ErrMissingJWTSecret)
}

func TestDialectorRejectsUnknownDriver(t *testing.T) {
	_, err := Dialector(AppConfig{DBDriver: "oracle"})
	assert.Error(t, err)

	d, err := Dialector(AppConfig{DBDriver: "sqlite", DBName: "blog"})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())
}
