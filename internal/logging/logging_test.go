package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigureJSON(t *testing.T) {
	var buf bytes.Buffer
	Configure(Options{Level: "warn", JSON: true, Writer: &buf})
	t.Cleanup(func() { Configure(Options{}) })

	L().Info("dropped")
	L().Warn("kept", "column", "sugars_100g")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))
	require.Equal(t, "kept", rec["msg"])
	require.Equal(t, "sugars_100g", rec["column"])
}
