package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	dec := json.NewDecoder(buf)
	for dec.More() {
		m := map[string]any{}
		require.NoError(t, dec.Decode(&m))
		out = append(out, m)
	}
	return out
}

func TestZerologLogger_FieldsAndLevels(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerologLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Error(ctx, "failed", "err", errors.New("boom"))
	log.With("module", "rest").Warn(ctx, "odd", "dangling")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 3)

	assert.Equal(t, "debug", lines[0]["level"])
	assert.Equal(t, "dbg", lines[0]["message"])
	assert.EqualValues(t, 1, lines[0]["a"])

	assert.Equal(t, "error", lines[1]["level"])
	assert.Equal(t, "boom", lines[1]["err"])

	assert.Equal(t, "warn", lines[2]["level"])
	assert.Equal(t, "rest", lines[2]["module"])
	assert.Equal(t, "dangling", lines[2]["!BADKEY"])
}

func TestZerologLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerologLogger(zerolog.New(&buf).Level(zerolog.WarnLevel))

	log.Info(context.Background(), "hidden")
	assert.Zero(t, buf.Len())
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		level   string
		wantErr bool
		marker  string
	}{
		{name: "default json", backend: "", level: "info", marker: `"msg":"hello"`},
		{name: "text", backend: BackendSlogText, level: "debug", marker: "msg=hello"},
		{name: "zerolog", backend: BackendZerolog, level: "warn", marker: ""},
		{name: "bad backend", backend: "syslog", level: "info", wantErr: true},
		{name: "bad level", backend: BackendSlogJSON, level: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log, err := New(tt.backend, tt.level, &buf)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			log.Info(context.Background(), "hello")
			if tt.marker == "" {
				assert.Zero(t, buf.Len(), "info must be filtered at warn level")
				return
			}
			assert.Contains(t, buf.String(), tt.marker)
		})
	}
}
