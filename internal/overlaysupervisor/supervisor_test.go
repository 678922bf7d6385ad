package overlaysupervisor

import (
	"errors"
	"strings"
	"testing"
)

func TestFilterPeers_ExcludesLocalAndPublicServer(t *testing.T) {
	raw := []rawPeer{
		{Hostname: "me", Cost: "Local"},
		{Hostname: "PublicServer-nyc", Cost: "p2p"},
		{Hostname: "friend1", Cost: "p2p", IP: "10.0.0.2"},
	}

	got := filterPeers(raw)
	if len(got) != 1 {
		t.Fatalf("filterPeers() returned %d peers, want 1", len(got))
	}
	if got[0].Hostname != "friend1" {
		t.Errorf("filterPeers()[0].Hostname = %q, want friend1", got[0].Hostname)
	}
}

func TestFilterPeers_EmptyInput(t *testing.T) {
	got := filterPeers(nil)
	if len(got) != 0 {
		t.Errorf("filterPeers(nil) = %v, want empty", got)
	}
}

func TestClassifyStartFailure_AdapterMessage(t *testing.T) {
	out := classifyStartFailure(errors.New("failed to create adapter: access denied"))
	if out.OK {
		t.Fatal("expected failure outcome")
	}
	if !strings.Contains(strings.ToLower(out.Reason), "adapter") {
		t.Errorf("Reason = %q, want it to mention adapter/driver guidance", out.Reason)
	}
}

func TestClassifyStartFailure_GenericMessage(t *testing.T) {
	out := classifyStartFailure(errors.New("exit status 1"))
	if out.OK {
		t.Fatal("expected failure outcome")
	}
	if out.Reason == "" {
		t.Error("expected a non-empty reason")
	}
}
