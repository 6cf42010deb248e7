package bootstrap

import (
	"context"
	"errors"
	"testing"

	"chordring/internal/config"
)

func TestResolveInitModeReturnsNoPeers(t *testing.T) {
	peers, err := Resolve(context.Background(), config.BootstrapConfig{Mode: "init"}, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if peers != nil {
		t.Fatalf("got %v, want nil", peers)
	}
}

func TestResolveStaticModeReturnsConfiguredPeers(t *testing.T) {
	cfg := config.BootstrapConfig{Mode: "static", Peers: []string{"10.0.0.1:9000", "10.0.0.2:9000"}}
	peers, err := Resolve(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(peers) != 2 || peers[0] != "10.0.0.1:9000" {
		t.Fatalf("got %v, want configured peers", peers)
	}
}

func TestResolveStaticModeWithoutPeersErrors(t *testing.T) {
	_, err := Resolve(context.Background(), config.BootstrapConfig{Mode: "static"}, nil)
	if !errors.Is(err, ErrNoBootstrapPeers) {
		t.Fatalf("got %v, want ErrNoBootstrapPeers", err)
	}
}

func TestResolveUnknownModeErrors(t *testing.T) {
	_, err := Resolve(context.Background(), config.BootstrapConfig{Mode: "bogus"}, nil)
	if err == nil {
		t.Fatal("expected an error for an unknown bootstrap mode")
	}
}

func TestTrimTrailingDot(t *testing.T) {
	if got := trimTrailingDot("peer.example.com."); got != "peer.example.com" {
		t.Fatalf("got %q, want trailing dot stripped", got)
	}
	if got := trimTrailingDot("peer.example.com"); got != "peer.example.com" {
		t.Fatalf("got %q, want unchanged", got)
	}
}
