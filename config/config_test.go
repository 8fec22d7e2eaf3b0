package config

import (
	"os"
	"testing"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAndNormalize(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://shop.test/api/")
	t.Setenv("GATEWAY_PORT", "9090")
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")

	var c Config
	require.NoError(t, envconfig.Process("", &c))
	c.normalize()

	assert.Equal(t, "http://shop.test/api", c.APIBaseURL)
	assert.Equal(t, "http://shop.test", c.ServerURL)
	assert.Equal(t, ":9090", c.GatewayPort)
	assert.Equal(t, 10*time.Second, c.UpstreamTimeout)
	assert.Equal(t, 500*time.Millisecond, c.SearchDebounce)
	assert.Equal(t, 7*24*time.Hour, c.CartCacheTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, c.CORSOrigins)
	assert.False(t, c.CookieSecure)
}

func TestAPIBaseURLRequired(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	require.NoError(t, os.Unsetenv("API_BASE_URL"))
	var c Config
	assert.Error(t, envconfig.Process("", &c))
}
