package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateICE(t *testing.T) {
	tests := []struct {
		name    string
		servers []ICEServerConfig
		wantErr bool
	}{
		{
			name:    "stun only",
			servers: []ICEServerConfig{{URLs: []string{"stun:stun.l.google.com:19302"}}},
		},
		{
			name: "turn with credentials",
			servers: []ICEServerConfig{{
				URLs:       []string{"turn:turn.example.com:3478"},
				Username:   "user",
				Credential: "pass",
			}},
		},
		{
			name:    "turn without credentials",
			servers: []ICEServerConfig{{URLs: []string{"turn:turn.example.com:3478"}}},
			wantErr: true,
		},
		{
			name:    "empty urls",
			servers: []ICEServerConfig{{}},
			wantErr: true,
		},
		{
			name:    "bad scheme",
			servers: []ICEServerConfig{{URLs: []string{"http://example.com"}}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{ICEServers: tt.servers}
			err := cfg.validateICE()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestWebRTCICEServers(t *testing.T) {
	cfg := &Config{ICEServers: []ICEServerConfig{
		{URLs: []string{"stun:stun.l.google.com:19302"}},
		{URLs: []string{"turn:turn.example.com:3478"}, Username: "user", Credential: "pass"},
	}}

	out := cfg.WebRTCICEServers()
	require.Len(t, out, 2)
	assert.Equal(t, []string{"stun:stun.l.google.com:19302"}, out[0].URLs)
	assert.Empty(t, out[0].Username)
	assert.Equal(t, "user", out[1].Username)
	assert.Equal(t, "pass", out[1].Credential)
}
