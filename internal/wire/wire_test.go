package wire

import (
	"bufio"
	"bytes"
	"testing"

	"chordring/internal/chordnode"
)

func TestNodeRoundTrip(t *testing.T) {
	n := chordnode.Node{ID: 42, Host: "10.0.0.5", Port: 9001}

	var buf bytes.Buffer
	if err := WriteNode(&buf, n); err != nil {
		t.Fatalf("WriteNode: %v", err)
	}

	got, err := ReadNode(bufio.NewReader(&buf))
	if err != nil {
		t.Fatalf("ReadNode: %v", err)
	}
	if got != n {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, n)
	}
}

func TestParseCommandKnownAndUnknown(t *testing.T) {
	if _, err := ParseCommand("ping"); err != nil {
		t.Fatalf("ping should be known: %v", err)
	}
	if _, err := ParseCommand("not_a_command"); err == nil {
		t.Fatal("expected error for unknown command")
	}
}

func TestReadNodeToleratesUnparseableIntegers(t *testing.T) {
	raw := "not-a-number\nhost.example\nalso-not-a-number\n"
	n, err := ReadNode(bufio.NewReader(bytes.NewBufferString(raw)))
	if err != nil {
		t.Fatalf("ReadNode should not fail on bad integers: %v", err)
	}
	if n.ID != 0 || n.Port != 0 {
		t.Fatalf("expected zero-value fallback, got %+v", n)
	}
	if n.Host != "host.example" {
		t.Fatalf("host should still parse correctly, got %q", n.Host)
	}
}

func TestUintRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteUint(&buf, 123456789); err != nil {
		t.Fatalf("WriteUint: %v", err)
	}
	got, err := ReadUint(bufio.NewReader(&buf))
	if err != nil {
		t.Fatalf("ReadUint: %v", err)
	}
	if got != 123456789 {
		t.Fatalf("got %d, want 123456789", got)
	}
}
