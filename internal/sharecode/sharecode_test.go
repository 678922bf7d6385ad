package sharecode

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/modkit-dev/modkit/internal/roomconfig"
)

func TestEncode_StaticIPWithCityPeer(t *testing.T) {
	room := roomconfig.Room{
		NetworkName:   "lan1",
		NetworkSecret: "sec",
		DHCP:          false,
		StaticIPv4:    "10.126.126.5",
		Peers:         []string{"tcp://public-sh.easytier.top:11010"},
		Flags:         roomconfig.DefaultAdvancedFlags(),
	}

	code, err := Encode(room)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !strings.HasPrefix(code, scheme) {
		t.Fatalf("Encode() = %q, want prefix %q", code, scheme)
	}

	rest := strings.TrimPrefix(code, scheme)
	b64, _, _ := strings.Cut(rest, ".")
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		t.Fatalf("decoding test payload: %v", err)
	}
	got := string(raw)
	want := `{"n":"lan1","s":"sec","i":"10.126.126.5","c":["Shanghai"]}`
	if got != want {
		t.Errorf("decoded payload = %s, want %s", got, want)
	}
}

func TestDecode_ExpandsElevenFlagsAndPeers(t *testing.T) {
	room := roomconfig.Room{
		NetworkName:   "lan1",
		NetworkSecret: "sec",
		DHCP:          false,
		StaticIPv4:    "10.126.126.5",
		Peers:         []string{"tcp://public-sh.easytier.top:11010"},
		Flags:         roomconfig.DefaultAdvancedFlags(),
	}
	code, err := Encode(room)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	decoded, err := Decode(code)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if decoded.NetworkName != "lan1" || decoded.NetworkSecret != "sec" {
		t.Errorf("decoded identity = %+v", decoded)
	}
	if decoded.DHCP || decoded.StaticIPv4 != "10.126.126.5" {
		t.Errorf("decoded IP/DHCP = dhcp=%v ip=%q, want dhcp=false ip=10.126.126.5", decoded.DHCP, decoded.StaticIPv4)
	}
	if len(decoded.Peers) != 2 {
		t.Fatalf("decoded.Peers = %v, want 2 entries (public + Shanghai)", decoded.Peers)
	}
	if decoded.Flags != roomconfig.DefaultAdvancedFlags() {
		t.Errorf("decoded.Flags = %+v, want all defaults", decoded.Flags)
	}
}

func TestDecode_DHCPOnWhenNeitherIPNorD(t *testing.T) {
	room := roomconfig.Room{NetworkName: "lan2", NetworkSecret: "s2", DHCP: true, Flags: roomconfig.DefaultAdvancedFlags()}
	code, err := Encode(room)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	decoded, err := Decode(code)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !decoded.DHCP || decoded.StaticIPv4 != "" {
		t.Errorf("decoded = dhcp=%v ip=%q, want dhcp=true ip=empty", decoded.DHCP, decoded.StaticIPv4)
	}
}

func TestDecode_NonDHCPNoIPWhenDFalseButNoI(t *testing.T) {
	room := roomconfig.Room{NetworkName: "lan3", NetworkSecret: "s3", DHCP: false, Flags: roomconfig.DefaultAdvancedFlags()}
	code, err := Encode(room)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	decoded, err := Decode(code)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if decoded.DHCP || decoded.StaticIPv4 != "" {
		t.Errorf("decoded = dhcp=%v ip=%q, want dhcp=false ip=empty", decoded.DHCP, decoded.StaticIPv4)
	}
}

func TestDecode_RejectsTamperedCode(t *testing.T) {
	room := roomconfig.Room{NetworkName: "lan1", NetworkSecret: "sec", Flags: roomconfig.DefaultAdvancedFlags()}
	code, err := Encode(room)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	tampered := code + "x"
	if _, err := Decode(tampered); err == nil {
		t.Error("Decode() of tampered code should fail integrity check")
	}
}

func TestDecode_RejectsMissingPrefix(t *testing.T) {
	if _, err := Decode("not-a-share-code"); err == nil {
		t.Error("Decode() should reject a code missing the scheme prefix")
	}
}
