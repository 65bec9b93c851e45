package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFromVerbosity(t *testing.T) {
	assert.Equal(t, "", LevelFromVerbosity(0))
	assert.Equal(t, "debug", LevelFromVerbosity(1))
	assert.Equal(t, "trace", LevelFromVerbosity(2))
	assert.Equal(t, "trace", LevelFromVerbosity(5))
}

func TestApply_WritesConsoleAndFile(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "foodbridge.log")
	Apply(Options{Level: "debug", FilePath: path, Console: &console}, nil)

	log.Debug().Str("table", "Providers").Msg("Provider added")

	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	assert.Contains(t, console.String(), "Provider added")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "table=Providers")
}

func TestApply_UnknownLevelFallsBackToInfo(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var console bytes.Buffer
	Apply(Options{Level: "chatty", Console: &console}, nil)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestFilePathForDB(t *testing.T) {
	assert.Equal(t, DefaultLogFileName, FilePathForDB(""))
	assert.Equal(t, filepath.Join("/data", DefaultLogFileName), FilePathForDB("/data/foodbridge.db"))
}
