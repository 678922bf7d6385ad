package overlayconfig

import (
	"strings"
	"testing"

	"github.com/modkit-dev/modkit/internal/roomconfig"
)

func baseRoom() roomconfig.Room {
	return roomconfig.Room{
		NetworkName:   "lan1",
		NetworkSecret: "sec",
		DHCP:          true,
		Flags:         roomconfig.DefaultAdvancedFlags(),
	}
}

func TestGenerate_HostnameDefaultsFromInstanceID(t *testing.T) {
	cfg, err := Generate(baseRoom(), "")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	want := "Player_" + cfg.InstanceID[:8]
	if cfg.Hostname != want {
		t.Errorf("Hostname = %q, want %q", cfg.Hostname, want)
	}
}

func TestGenerate_HostnameOverrideWins(t *testing.T) {
	cfg, err := Generate(baseRoom(), "Explicit")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if cfg.Hostname != "Explicit" {
		t.Errorf("Hostname = %q, want %q", cfg.Hostname, "Explicit")
	}
}

func TestGenerate_FreshInstanceIDEveryCall(t *testing.T) {
	a, err := Generate(baseRoom(), "")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	b, err := Generate(baseRoom(), "")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if a.InstanceID == b.InstanceID {
		t.Error("expected a fresh instance_id on every call")
	}
}

func TestGenerate_DefaultPeersAndListeners(t *testing.T) {
	cfg, err := Generate(baseRoom(), "")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(cfg.Peers) != 1 || cfg.Peers[0] != defaultPublicPeerURI {
		t.Errorf("Peers = %v, want [%s]", cfg.Peers, defaultPublicPeerURI)
	}
	if len(cfg.Listeners) != 1 || cfg.Listeners[0] != defaultUDPListener {
		t.Errorf("Listeners = %v, want [%s]", cfg.Listeners, defaultUDPListener)
	}
}

func TestGenerate_TCPListenAppendsListenerOnce(t *testing.T) {
	room := baseRoom()
	room.Flags.TCPListen = true
	cfg, err := Generate(room, "")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	count := 0
	for _, l := range cfg.Listeners {
		if l == defaultTCPListener {
			count++
		}
	}
	if count != 1 {
		t.Errorf("defaultTCPListener appears %d times, want 1", count)
	}
}

func TestGenerate_StaticIPv4OnlyWhenNotDHCP(t *testing.T) {
	room := baseRoom()
	room.DHCP = false
	room.StaticIPv4 = "10.126.126.5"
	cfg, err := Generate(room, "")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if cfg.IPv4 != "10.126.126.5" {
		t.Errorf("IPv4 = %q, want 10.126.126.5", cfg.IPv4)
	}

	dhcpRoom := baseRoom()
	dhcpRoom.StaticIPv4 = "10.126.126.5"
	cfg2, err := Generate(dhcpRoom, "")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if cfg2.IPv4 != "" {
		t.Errorf("IPv4 = %q, want empty when DHCP is true", cfg2.IPv4)
	}
}

func TestGenerate_ValidationRejectsMissingFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *roomconfig.Room)
		wantErr bool
	}{
		{"missing network name", func(r *roomconfig.Room) { r.NetworkName = "" }, true},
		{"missing network secret", func(r *roomconfig.Room) { r.NetworkSecret = "" }, true},
		{"complete", func(r *roomconfig.Room) {}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			room := baseRoom()
			tt.mutate(&room)
			_, err := Generate(room, "")
			if (err != nil) != tt.wantErr {
				t.Errorf("Generate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWrite_CompressionKeyAbsentUnlessEnabled(t *testing.T) {
	room := baseRoom()
	cfg, err := Generate(room, "host")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	out := Write(cfg)
	if strings.Contains(out, "data_compress_algo") {
		t.Error("data_compress_algo must be absent when compression is disabled")
	}

	room.Flags.Compression = true
	cfg2, err := Generate(room, "host")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	out2 := Write(cfg2)
	if !strings.Contains(out2, "data_compress_algo = 2") {
		t.Error("expected data_compress_algo = 2 when compression is enabled")
	}
}

func TestWrite_DHCPAndIPv4AreMutuallyExclusive(t *testing.T) {
	dhcpRoom := baseRoom()
	cfg, _ := Generate(dhcpRoom, "host")
	out := Write(cfg)
	if !strings.Contains(out, "dhcp = true") || strings.Contains(out, "ipv4") {
		t.Errorf("expected dhcp = true and no ipv4 key, got:\n%s", out)
	}

	staticRoom := baseRoom()
	staticRoom.DHCP = false
	staticRoom.StaticIPv4 = "10.0.0.5"
	cfg2, _ := Generate(staticRoom, "host")
	out2 := Write(cfg2)
	if !strings.Contains(out2, "dhcp = false") || !strings.Contains(out2, `ipv4 = "10.0.0.5"`) {
		t.Errorf("expected dhcp = false and ipv4 key, got:\n%s", out2)
	}
}

func TestWrite_NetworkIdentityAndPeers(t *testing.T) {
	room := baseRoom()
	room.Peers = []string{"tcp://a.example:1", "tcp://b.example:2"}
	cfg, _ := Generate(room, "host")
	out := Write(cfg)

	if !strings.Contains(out, "[network_identity]") ||
		!strings.Contains(out, `network_name = "lan1"`) ||
		!strings.Contains(out, `network_secret = "sec"`) {
		t.Errorf("missing network_identity table:\n%s", out)
	}
	if strings.Count(out, "[[peer]]") != 2 {
		t.Errorf("expected 2 [[peer]] tables, got:\n%s", out)
	}
}
