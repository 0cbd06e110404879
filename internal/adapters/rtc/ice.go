// Package rtc turns the configured ICE servers into what browsers and pion
// expect. The server relays negotiation only and never opens media itself.
package rtc

import (
	"errors"
	"fmt"

	"github.com/dkeye/Clubs/internal/config"
	"github.com/pion/stun/v3"
	"github.com/pion/webrtc/v4"
)

var ErrNoICEURLs = errors.New("ice server without urls")

// ICEServers validates every configured URL and converts the list.
func ICEServers(servers []config.ICEServer) ([]webrtc.ICEServer, error) {
	out := make([]webrtc.ICEServer, 0, len(servers))
	for i, s := range servers {
		if len(s.URLs) == 0 {
			return nil, fmt.Errorf("ice_servers[%d]: %w", i, ErrNoICEURLs)
		}
		for _, raw := range s.URLs {
			u, err := stun.ParseURI(raw)
			if err != nil {
				return nil, fmt.Errorf("ice_servers[%d]: %q: %w", i, raw, err)
			}
			if (u.Scheme == stun.SchemeTypeTURN || u.Scheme == stun.SchemeTypeTURNS) && s.Username == "" {
				return nil, fmt.Errorf("ice_servers[%d]: %q: turn requires username", i, raw)
			}
		}
		srv := webrtc.ICEServer{URLs: s.URLs, Username: s.Username}
		if s.Credential != "" {
			srv.Credential = s.Credential
		}
		out = append(out, srv)
	}
	return out, nil
}

// Configuration is the RTCConfiguration handed to clients.
func Configuration(servers []config.ICEServer) (webrtc.Configuration, error) {
	ice, err := ICEServers(servers)
	if err != nil {
		return webrtc.Configuration{}, err
	}
	return webrtc.Configuration{ICEServers: ice}, nil
}
