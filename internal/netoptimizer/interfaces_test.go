package netoptimizer

import "testing"

func TestParseWindowsInterfaces(t *testing.T) {
	output := "Idx     Met         MTU          State                Name\n" +
		"---  ----------  ----------  ------------  ---------------------------\n" +
		"  1          25  4294967295  connected     Loopback Pseudo-Interface 1\n" +
		" 14           5        1280  connected     EasyTier [eth]\n" +
		" 20          50        1500  disconnected  Wi-Fi\n"

	ifaces := parseWindowsInterfaces(output)
	if len(ifaces) != 3 {
		t.Fatalf("parseWindowsInterfaces() returned %d interfaces, want 3", len(ifaces))
	}
	if ifaces[1].Name != "EasyTier [eth]" || ifaces[1].Metric != 5 || !ifaces[1].Connected {
		t.Errorf("ifaces[1] = %+v, want EasyTier connected at metric 5", ifaces[1])
	}
	if ifaces[2].Connected {
		t.Errorf("ifaces[2].Connected = true, want false (disconnected)")
	}
}

func TestParseUnixInterfaces(t *testing.T) {
	output := "1: lo: <LOOPBACK,UP,LOWER_UP> mtu 65536 state UNKNOWN\n" +
		"    inet 127.0.0.1/8 scope host lo\n" +
		"2: tun0: <POINTOPOINT,UP,LOWER_UP> mtu 1420 state UP\n" +
		"    inet 10.126.126.1/24 scope global tun0\n" +
		"3: eth0: <BROADCAST,MULTICAST> mtu 1500 state DOWN\n"

	ifaces := parseUnixInterfaces(output)
	if len(ifaces) != 3 {
		t.Fatalf("parseUnixInterfaces() returned %d interfaces, want 3", len(ifaces))
	}
	if ifaces[1].Name != "tun0" || !ifaces[1].Connected {
		t.Errorf("ifaces[1] = %+v, want tun0 connected", ifaces[1])
	}
	if ifaces[2].Connected {
		t.Errorf("ifaces[2].Connected = true, want false (DOWN, no inet)")
	}
}

func TestScoreAdapter(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"EasyTier [eth]", 0},
		{"tap0", 1},
		{"tun0", 2},
		{"Wi-Fi", -1},
	}
	for _, tt := range tests {
		if got := scoreAdapter(tt.name); got != tt.want {
			t.Errorf("scoreAdapter(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestFindOverlayAdapter_PrefersBestKeywordAmongConnected(t *testing.T) {
	ifaces := []Interface{
		{Name: "tun0", Connected: true},
		{Name: "EasyTier [eth]", Connected: true},
		{Name: "Wi-Fi", Connected: true},
	}
	got, found := findOverlayAdapter(ifaces)
	if !found || got.Name != "EasyTier [eth]" {
		t.Errorf("findOverlayAdapter() = %+v, found=%v, want EasyTier [eth]", got, found)
	}
}

func TestFindOverlayAdapter_IgnoresDisconnected(t *testing.T) {
	ifaces := []Interface{
		{Name: "EasyTier [eth]", Connected: false},
		{Name: "tap0", Connected: true},
	}
	got, found := findOverlayAdapter(ifaces)
	if !found || got.Name != "tap0" {
		t.Errorf("findOverlayAdapter() = %+v, found=%v, want tap0", got, found)
	}
}

func TestFindOverlayAdapter_NoneFound(t *testing.T) {
	ifaces := []Interface{{Name: "Wi-Fi", Connected: true}}
	_, found := findOverlayAdapter(ifaces)
	if found {
		t.Error("findOverlayAdapter() found = true, want false")
	}
}
