// Package sharecode encodes and decodes the compact share-code form of a
// room (spec §4.K, §6). Encode/decode/expand-defaults are small pure
// helpers grounded on pkg/configlet/resolve.go's style; an additional
// blake2b integrity tag (not in spec.md's distillation, added per
// SPEC_FULL §1) lets a corrupted or hand-edited code fail fast on decode.
package sharecode

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/modkit-dev/modkit/internal/roomconfig"
)

// scheme is the fixed ASCII prefix of every share code (spec §6).
const scheme = "modroom://"

const tagSize = 8 // bytes of blake2b digest kept as the integrity suffix

// minimalDoc is the compact, single-letter-aliased wire form (spec §3).
type minimalDoc struct {
	N string   `json:"n"`
	S string   `json:"s"`
	I string   `json:"i,omitempty"`
	D *bool    `json:"d,omitempty"`
	C []string `json:"c,omitempty"`
}

// Encode strips room to its minimal keys, serializes as compact JSON,
// base64-encodes it, and prefixes the scheme marker plus an integrity
// tag (spec §4.K "Share-code encode").
func Encode(room roomconfig.Room) (string, error) {
	doc := minimalDoc{
		N: room.NetworkName,
		S: room.NetworkSecret,
	}

	if !room.DHCP && room.StaticIPv4 != "" {
		doc.I = room.StaticIPv4
	} else if !room.DHCP {
		no := false
		doc.D = &no
	}

	for _, peerURI := range room.Peers {
		if city, ok := cityForURI(peerURI); ok {
			doc.C = append(doc.C, city)
		}
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("sharecode: marshaling minimal doc: %w", err)
	}

	b64 := base64.StdEncoding.EncodeToString(payload)
	return scheme + b64 + "." + integrityTag(b64), nil
}

// Decode strips the prefix, verifies the integrity tag when present,
// base64-decodes, JSON-parses, then expands aliases into a full Room (spec
// §4.K "Decode", §6 wire format). The trailing ".<tag>" is an
// SPEC_FULL-only enrichment on top of the normative "<scheme><base64>"
// wire format, so a code without one is still accepted verbatim.
func Decode(code string) (roomconfig.Room, error) {
	rest := strings.TrimPrefix(code, scheme)
	if rest == code {
		return roomconfig.Room{}, fmt.Errorf("sharecode: missing %q prefix", scheme)
	}

	b64 := rest
	if i := strings.LastIndex(rest, "."); i >= 0 {
		b64 = rest[:i]
		tag := rest[i+1:]
		if tag != integrityTag(b64) {
			return roomconfig.Room{}, fmt.Errorf("sharecode: integrity check failed, code may be corrupted")
		}
	}

	payload, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return roomconfig.Room{}, fmt.Errorf("sharecode: base64 decode: %w", err)
	}

	var doc minimalDoc
	if err := json.Unmarshal(payload, &doc); err != nil {
		return roomconfig.Room{}, fmt.Errorf("sharecode: parsing JSON: %w", err)
	}

	return expand(doc), nil
}

// expand fills in the eleven advanced flags with documented defaults,
// translates city names to peer URIs, and derives the IP/DHCP pair per
// the three-case rule (spec §4.K).
func expand(doc minimalDoc) roomconfig.Room {
	room := roomconfig.Room{
		NetworkName:   doc.N,
		NetworkSecret: doc.S,
		Flags:         roomconfig.DefaultAdvancedFlags(),
	}

	switch {
	case doc.I != "":
		room.DHCP = false
		room.StaticIPv4 = doc.I
	case doc.D != nil && !*doc.D:
		room.DHCP = false
	default:
		room.DHCP = true
	}

	room.Peers = append(room.Peers, defaultPublicPeerURI())
	for _, city := range doc.C {
		if uri, ok := uriForCity(city); ok {
			room.Peers = append(room.Peers, uri)
		}
	}

	return room
}

func defaultPublicPeerURI() string {
	return "tcp://public.easytier.top:11010"
}

func integrityTag(b64 string) string {
	sum := blake2b.Sum256([]byte(b64))
	return hex.EncodeToString(sum[:tagSize])
}
