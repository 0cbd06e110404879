package rtc

import (
	"errors"
	"testing"

	"github.com/dkeye/Clubs/internal/config"
)

func TestICEServers(t *testing.T) {
	tests := []struct {
		name    string
		in      []config.ICEServer
		wantErr bool
	}{
		{"stun", []config.ICEServer{{URLs: []string{"stun:stun.l.google.com:19302"}}}, false},
		{"turn with credentials", []config.ICEServer{{URLs: []string{"turn:turn.example.org:3478?transport=udp"}, Username: "u", Credential: "p"}}, false},
		{"turn without username", []config.ICEServer{{URLs: []string{"turn:turn.example.org:3478"}}}, true},
		{"bad scheme", []config.ICEServer{{URLs: []string{"http://example.org"}}}, true},
		{"no urls", []config.ICEServer{{}}, true},
		{"empty list", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ICEServers(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && len(got) != len(tt.in) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.in))
			}
		})
	}
}

func TestICEServersNoURLs(t *testing.T) {
	_, err := ICEServers([]config.ICEServer{{Username: "x"}})
	if !errors.Is(err, ErrNoICEURLs) {
		t.Fatalf("err = %v, want ErrNoICEURLs", err)
	}
}

func TestConfiguration(t *testing.T) {
	cfg, err := Configuration([]config.ICEServer{{URLs: []string{"stun:a.example.org:3478", "stun:b.example.org"}}})
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.ICEServers) != 1 || len(cfg.ICEServers[0].URLs) != 2 {
		t.Fatalf("unexpected configuration %+v", cfg)
	}
}
