package chordnode

import "testing"

func TestHashNodeDeterministic(t *testing.T) {
	a := HashNode("10.0.0.1", 9000, 32)
	b := HashNode("10.0.0.1", 9000, 32)
	if a != b {
		t.Fatalf("HashNode not deterministic: %d != %d", a, b)
	}
}

func TestHashNodeRespectsBitWidth(t *testing.T) {
	id := HashNode("example.org", 1234, 8)
	if id >= 256 {
		t.Fatalf("id %d exceeds 8-bit ring", id)
	}
}

func TestNodeEquality(t *testing.T) {
	a := New("host-a", 1, 16)
	b := Node{ID: 999, Host: "host-a", Port: 1}
	if !a.Equal(b) {
		t.Fatal("nodes with same host:port should be equal regardless of ID field")
	}
}
