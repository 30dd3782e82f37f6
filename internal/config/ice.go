package config

import (
	"fmt"
	"strings"

	"github.com/pion/webrtc/v4"
)

// ICEServerConfig is one STUN/TURN entry as it appears in the YAML file.
type ICEServerConfig struct {
	URLs       []string `mapstructure:"urls" json:"urls"`
	Username   string   `mapstructure:"username" json:"username,omitempty"`
	Credential string   `mapstructure:"credential" json:"credential,omitempty"`
}

func defaultICEServers() []ICEServerConfig {
	return []ICEServerConfig{
		{URLs: []string{"stun:stun.l.google.com:19302"}},
	}
}

func (c *Config) validateICE() error {
	for _, s := range c.ICEServers {
		if len(s.URLs) == 0 {
			return fmt.Errorf("ice server entry with no urls")
		}
		for _, u := range s.URLs {
			switch {
			case strings.HasPrefix(u, "stun:"), strings.HasPrefix(u, "stuns:"):
			case strings.HasPrefix(u, "turn:"), strings.HasPrefix(u, "turns:"):
				if s.Username == "" || s.Credential == "" {
					return fmt.Errorf("turn url %q requires username and credential", u)
				}
			default:
				return fmt.Errorf("unsupported ice url scheme in %q", u)
			}
		}
	}
	return nil
}

// WebRTCICEServers maps the configured entries onto pion's type, which is
// also the JSON shape browsers accept in RTCPeerConnection configuration.
func (c *Config) WebRTCICEServers() []webrtc.ICEServer {
	out := make([]webrtc.ICEServer, 0, len(c.ICEServers))
	for _, s := range c.ICEServers {
		srv := webrtc.ICEServer{URLs: s.URLs}
		if s.Username != "" {
			srv.Username = s.Username
			srv.Credential = s.Credential
		}
		out = append(out, srv)
	}
	return out
}
