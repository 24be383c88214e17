package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("verbose")
	require.Error(t, err)
}

func TestNamedJSON(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer
	InitializeWithFormat(&buf, slog.LevelInfo, "json")

	Named("deployer").With("address", "0xabc").Info("deployed")
	Named("deployer").Debug("hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "deployer", entry["name"])
	assert.Equal(t, "0xabc", entry["address"])
	assert.Equal(t, "deployed", entry["msg"])
}

func TestNamedText(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer
	InitializeWithFormat(&buf, slog.LevelDebug, "text")

	Named("verifier").Debug("checking")
	assert.Contains(t, buf.String(), "name=verifier")
	assert.Contains(t, buf.String(), "msg=checking")
}
