// Package overlayconfig generates the overlay daemon's structured TOML
// config from a room's user-facing fields, per spec §4.H.
package overlayconfig

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/modkit-dev/modkit/internal/roomconfig"
)

const (
	defaultPublicPeerURI = "tcp://public.easytier.top:11010"
	defaultUDPListener   = "udp://0.0.0.0:11010"
	defaultTCPListener   = "tcp://0.0.0.0:11010"
	defaultRPCPortal     = "0.0.0.0:0"
)

// NetworkIdentity is the daemon's network_identity table.
type NetworkIdentity struct {
	NetworkName   string
	NetworkSecret string
}

// Flags is the daemon's flags table, in daemon (positive) polarity.
// CompressionSet gates whether data_compress_algo is emitted at all
// (spec §4.H: "the key must be absent", not a zero value).
type Flags struct {
	EnableKCPProxy   bool
	EnableQUICProxy  bool
	LatencyFirst     bool
	MultiThread      bool
	UseSmoltcp       bool
	EnableIPv6       bool
	EnableEncryption bool
	CompressionSet   bool
}

// Config is the fully-resolved daemon config, ready for TOML rendering.
type Config struct {
	Hostname        string
	InstanceName    string
	InstanceID      string
	DHCP            bool
	IPv4            string
	Listeners       []string
	RPCPortal       string
	NetworkIdentity NetworkIdentity
	Peers           []string
	Flags           Flags
}

// Generate builds a Config from a room, a fresh instance_id, and an
// optional hostname override (spec §4.H). A fresh UUID v4 is produced on
// every call, matching "always generate a fresh instance_id on every
// start."
func Generate(room roomconfig.Room, hostnameOverride string) (*Config, error) {
	instanceID := uuid.NewString()

	hostname := hostnameOverride
	if hostname == "" {
		hostname = room.DisplayName
	}
	if hostname == "" {
		hostname = "Player_" + instanceID[:8]
	}

	peers := room.Peers
	if len(peers) == 0 {
		peers = []string{defaultPublicPeerURI}
	}

	listeners := []string{defaultUDPListener}
	if room.Flags.TCPListen {
		listeners = appendIfAbsent(listeners, defaultTCPListener)
	}

	cfg := &Config{
		Hostname:     hostname,
		InstanceName: room.NetworkName,
		InstanceID:   instanceID,
		DHCP:         room.DHCP,
		Listeners:    listeners,
		RPCPortal:    defaultRPCPortal,
		NetworkIdentity: NetworkIdentity{
			NetworkName:   room.NetworkName,
			NetworkSecret: room.NetworkSecret,
		},
		Peers: peers,
		Flags: Flags{
			EnableKCPProxy:   room.Flags.KCPProxy,
			EnableQUICProxy:  room.Flags.QUICProxy,
			LatencyFirst:     room.Flags.LatencyFirst,
			MultiThread:      room.Flags.Multithread,
			UseSmoltcp:       room.Flags.UserspaceTCP,
			EnableIPv6:       room.Flags.IPv6,
			EnableEncryption: room.Flags.Encryption,
			CompressionSet:   room.Flags.Compression,
		},
	}

	if !room.DHCP && room.StaticIPv4 != "" {
		cfg.IPv4 = room.StaticIPv4
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate rejects configs missing hostname, instance_name, or a complete
// network_identity (spec §4.H last bullet).
func validate(cfg *Config) error {
	if cfg.Hostname == "" {
		return fmt.Errorf("overlayconfig: hostname is required")
	}
	if cfg.InstanceName == "" {
		return fmt.Errorf("overlayconfig: instance_name is required")
	}
	if cfg.NetworkIdentity.NetworkName == "" || cfg.NetworkIdentity.NetworkSecret == "" {
		return fmt.Errorf("overlayconfig: network_identity requires both name and secret")
	}
	return nil
}

func appendIfAbsent(list []string, v string) []string {
	for _, existing := range list {
		if strings.EqualFold(existing, v) {
			return list
		}
	}
	return append(list, v)
}
