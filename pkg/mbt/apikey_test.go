package mbt_test

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/fivetwenty-io/mybustracker/pkg/mbt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestAPIKey_AccessToken(t *testing.T) {
	t.Parallel()

	key := mbt.NewAPIKey("ABCDEF")

	tests := []struct {
		name     string
		now      time.Time
		expected string
	}{
		{
			name:     "start of hour",
			now:      time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC),
			expected: "2a4f6dc506dcb56b3acd125791343b43",
		},
		{
			name:     "end of same hour",
			now:      time.Date(2024, 3, 15, 9, 59, 59, 0, time.UTC),
			expected: "2a4f6dc506dcb56b3acd125791343b43",
		},
		{
			name:     "next hour",
			now:      time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
			expected: "041683513ca59eecdf4f96fad0fdf154",
		},
		{
			name:     "non-UTC clock is converted",
			now:      time.Date(2024, 3, 15, 10, 30, 0, 0, time.FixedZone("CET", 3600)),
			expected: "2a4f6dc506dcb56b3acd125791343b43",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, key.AccessToken(tt.now))
		})
	}
}

func TestAPIKey_TrimsWhitespace(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, mbt.NewAPIKey("ABCDEF").AccessToken(now), mbt.NewAPIKey("  ABCDEF\n").AccessToken(now))
	assert.True(t, mbt.NewAPIKey("   ").IsZero())
	assert.False(t, mbt.NewAPIKey("x").IsZero())
}

func TestAPIKey_NeverRendered(t *testing.T) {
	t.Parallel()

	key := mbt.NewAPIKey("super-secret-key")

	assert.NotContains(t, key.String(), "super-secret-key")
	assert.NotContains(t, fmt.Sprintf("%v", key), "super-secret-key")
	assert.NotContains(t, fmt.Sprintf("%+v", key), "super-secret-key")
	assert.NotContains(t, fmt.Sprintf("%#v", key), "super-secret-key")

	cfg := mbt.Config{APIKey: key}
	assert.NotContains(t, fmt.Sprintf("%+v", cfg), "super-secret-key")

	data, err := json.Marshal(struct {
		Key mbt.APIKey `json:"key"`
	}{Key: key})
	require.NoError(t, err)
	assert.JSONEq(t, `{"key":"[REDACTED]"}`, string(data))

	out, err := yaml.Marshal(map[string]mbt.APIKey{"key": key})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "super-secret-key")
}
