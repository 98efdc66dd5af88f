package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionConfig_DefaultValues(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("SESSION_TTL_HOURS", "")

	cfg, err := NewSessionConfig()
	require.NoError(t, err)
	assert.False(t, cfg.Signed(), "sessions are unsigned unless SESSION_SECRET is set")
	assert.Equal(t, 24, cfg.TTLHours, "should use default TTL of 24 hours")
}

func TestNewSessionConfig_Custom(t *testing.T) {
	tests := []struct {
		name      string
		secret    string
		ttl       string
		wantHours int
		wantErr   bool
	}{
		{"signed 12 hours", "0123456789abcdef", "12", 12, false},
		{"minimum 1 hour", "", "1", 1, false},
		{"zero hours", "", "0", 0, true},
		{"negative hours", "", "-4", 0, true},
		{"non-numeric", "", "forever", 0, true},
		{"short secret", "short", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SESSION_SECRET", tt.secret)
			t.Setenv("SESSION_TTL_HOURS", tt.ttl)

			cfg, err := NewSessionConfig()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHours, cfg.TTLHours)
			assert.Equal(t, tt.secret != "", cfg.Signed())
		})
	}
}
