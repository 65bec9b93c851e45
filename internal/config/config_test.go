package config

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSettings map[string]string

func (f fakeSettings) GetSetting(key string) (string, error) {
	return f[key], nil
}

type failingSettings struct{}

func (failingSettings) GetSetting(string) (string, error) {
	return "", errors.New("store unavailable")
}

// unsetEnv removes key for the duration of the test.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"FOODBRIDGE_DB_PATH", "DB_PATH", "FOODBRIDGE_LOG_LEVEL", "LOG_LEVEL", "FOODBRIDGE_ADHOC_TIMEOUT", "FOODBRIDGE_ADHOC_MAX_ROWS"} {
		unsetEnv(t, key)
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultQueryLimits(), cfg.Adhoc)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("FOODBRIDGE_DB_PATH", "/data/food.db")
	t.Setenv("FOODBRIDGE_ADHOC_TIMEOUT", "750ms")
	t.Setenv("FOODBRIDGE_ADHOC_MAX_ROWS", "25")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/data/food.db", cfg.DBPath)
	assert.Equal(t, QueryLimits{Timeout: 750 * time.Millisecond, MaxRows: 25}, cfg.Adhoc)
}

func TestLoad_RejectsDisabledLimits(t *testing.T) {
	unsetEnv(t, "FOODBRIDGE_ADHOC_TIMEOUT")
	t.Setenv("FOODBRIDGE_ADHOC_MAX_ROWS", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoader_TypedAccess(t *testing.T) {
	l := NewLoader(fakeSettings{
		"n":       "12",
		"bad":     "twelve",
		"flag":    "true",
		"off":     "false",
		"name":    "x",
		"timeout": "2s",
	})

	assert.Equal(t, 12, l.Int("n", 1))
	assert.Equal(t, 1, l.Int("bad", 1))
	assert.Equal(t, 7, l.Int("missing", 7))
	assert.True(t, l.Bool("flag", false))
	assert.False(t, l.Bool("off", true))
	assert.True(t, l.Bool("missing", true))
	assert.Equal(t, "x", l.String("name", "y"))
	assert.Equal(t, 2*time.Second, l.Duration("timeout", time.Minute))
	assert.Equal(t, time.Minute, l.Duration("name", time.Minute))
}

func TestLoader_NilAndFailingStoreUseDefaults(t *testing.T) {
	var nilLoader *Loader
	assert.Equal(t, 3, nilLoader.Int("n", 3))
	assert.Equal(t, 3, NewLoader(failingSettings{}).Int("n", 3))
}

func TestLoadQueryLimits(t *testing.T) {
	base := DefaultQueryLimits()

	limits := LoadQueryLimits(NewLoader(fakeSettings{"adhoc.timeout": "1s", "adhoc.max_rows": "50"}), base)
	assert.Equal(t, QueryLimits{Timeout: time.Second, MaxRows: 50}, limits)

	limits = LoadQueryLimits(NewLoader(fakeSettings{"adhoc.max_rows": "-1"}), base)
	assert.Equal(t, base, limits)

	limits = LoadQueryLimits(nil, base)
	assert.Equal(t, base, limits)
}
