package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	base := Config{ServerURL: "http://d", RequestTimeout: 1500 * time.Millisecond, SessionFile: "s.db"}

	tests := []struct {
		name     string
		args     []string
		expected *Config
		wantErr  bool
	}{
		{name: "all flags", args: []string{"cmd", "-a", "http://h:9", "-t", "30", "-p", "/tmp/x.db"},
			expected: &Config{ServerURL: "http://h:9", RequestTimeout: 30 * time.Second, SessionFile: "/tmp/x.db"}},
		{name: "no flags keep sub-second timeout", args: []string{"cmd"},
			expected: &Config{ServerURL: "http://d", RequestTimeout: 1500 * time.Millisecond, SessionFile: "s.db"}},
		{name: "foreign flags ignored", args: []string{"cmd", "-x", "1", "-a=http://eq"},
			expected: &Config{ServerURL: "http://eq", RequestTimeout: 1500 * time.Millisecond, SessionFile: "s.db"}},
		{name: "bad timeout", args: []string{"cmd", "-t", "abc"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			old := os.Args
			t.Cleanup(func() { os.Args = old })
			os.Args = tt.args

			cfg := base
			err := parseFlags(&cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, &cfg))
		})
	}
}
