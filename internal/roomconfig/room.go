// Package roomconfig defines the in-memory overlay room model shared by
// the room registry, the overlay config generator, and the share codec
// (spec §3, §4.H, §4.K).
package roomconfig

import "time"

// AdvancedFlags holds the eleven advanced toggles a room carries, all
// defaulted to enabled except TCPListen and Compression (spec §8 property 2
// and §4.K decode rule).
type AdvancedFlags struct {
	Encryption   bool
	IPv6         bool
	LatencyFirst bool
	Multithread  bool
	KCPProxy     bool
	QUICProxy    bool
	UserspaceTCP bool
	Compression  bool
	TCPListen    bool
	LANBroadcast bool
	NICMetric    bool
}

// DefaultAdvancedFlags mirrors the original generator's defaults: every
// toggle on except compression and TCP-listen.
func DefaultAdvancedFlags() AdvancedFlags {
	return AdvancedFlags{
		Encryption:   true,
		IPv6:         true,
		LatencyFirst: true,
		Multithread:  true,
		KCPProxy:     true,
		QUICProxy:    true,
		UserspaceTCP: true,
		Compression:  false,
		TCPListen:    false,
		LANBroadcast: true,
		NICMetric:    true,
	}
}

// Meta records creator/joiner attribution and timestamps for a room.
type Meta struct {
	Creator    string    `json:"creator"`
	LastJoiner string    `json:"last_joiner,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Room is a complete persisted overlay config (spec §3 "Room").
type Room struct {
	NetworkName   string        `json:"network_name"`
	NetworkSecret string        `json:"network_secret"`
	DisplayName   string        `json:"display_name"`
	DHCP          bool          `json:"dhcp"`
	StaticIPv4    string        `json:"ipv4,omitempty"`
	Peers         []string      `json:"peers"`
	Flags         AdvancedFlags `json:"flags"`
	Meta          Meta          `json:"_room_meta"`
}

// FileName returns the room's on-disk name: the network name plus ".json"
// (spec §6 "Room file").
func (r Room) FileName() string {
	return r.NetworkName + ".json"
}
