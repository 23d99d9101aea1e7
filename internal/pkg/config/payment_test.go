package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPayment_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadPayment(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultPayment(), cfg)
}

func TestLoadPayment_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payment.yaml")
	body := []byte("pending_delay: 1s\npending_attempts: 4\nsuccess_destination: /welcome\nreferrer_domains:\n  stripe:\n    - pay.example.com\n")
	require.NoError(t, os.WriteFile(path, body, 0o600))

	cfg, err := LoadPayment(path)
	require.NoError(t, err)
	assert.Equal(t, time.Second, cfg.PendingDelay)
	assert.Equal(t, 4, cfg.PendingAttempts)
	assert.Equal(t, 2*time.Second, cfg.ErrorDelay)
	assert.Equal(t, "/welcome", cfg.SuccessDestination)
	assert.Equal(t, []string{"pay.example.com"}, cfg.ReferrerDomains["stripe"])
}

func TestLoadPayment_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero attempts", "pending_attempts: 0\n"},
		{"external destination", "success_destination: https://evil.example\n"},
		{"negative delay", "error_delay: -2s\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "payment.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o600))

			cfg, err := LoadPayment(path)
			assert.Error(t, err)
			assert.Equal(t, DefaultPayment(), cfg)
		})
	}
}
