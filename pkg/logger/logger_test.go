package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
	assert.Equal(t, zerolog.DebugLevel, parseLevel(" DEBUG "))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("loud"))
}

func TestSetup_FileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.log")
	Setup(Options{Level: "debug", File: path})
	t.Cleanup(func() { Log = zerolog.Nop() })

	Log.Debug().Str("url", "https://catalog.example").Msg("page cache hit")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "page cache hit")
	assert.Contains(t, string(data), `"level":"debug"`)
}
