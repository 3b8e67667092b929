package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := NewConfig(NewViper())
	require.NoError(t, err)

	require.Equal(t, "listing-scout", cfg.AppName)
	require.Equal(t, "https://sfbay.craigslist.org", cfg.BaseURL)
	require.Equal(t, 1000, cfg.FetchDelayMS)
	require.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	require.Equal(t, 2000, cfg.EvalIntervalMS)
	require.Equal(t, "https://api.resend.com", cfg.ResendBaseURL)
	require.Equal(t, 6379, cfg.RedisPort)
	require.Equal(t, "products.yaml", cfg.ProductsFile)
}

func TestNewConfig_InvalidRedisPort(t *testing.T) {
	t.Parallel()

	v := NewViper()
	v.Set("REDIS_PORT", 70000)

	_, err := NewConfig(v)
	require.Error(t, err)
}

func TestNewConfig_NegativeFetchDelay(t *testing.T) {
	t.Parallel()

	v := NewViper()
	v.Set("FETCH_DELAY_MS", -5)

	_, err := NewConfig(v)
	require.Error(t, err)
}

func TestNewConfig_EmptyBaseURL(t *testing.T) {
	t.Parallel()

	v := NewViper()
	v.Set("CRAIGSLIST_BASE_URL", "  ")

	_, err := NewConfig(v)
	require.Error(t, err)
}
