package lookup

import (
	"testing"

	"chordring/internal/chordnode"
)

const bits = 8

type fakeLocal struct {
	self      chordnode.Node
	successor chordnode.Node
	fingers   []chordnode.Node
}

func (f *fakeLocal) Self() chordnode.Node      { return f.self }
func (f *fakeLocal) Successor() chordnode.Node { return f.successor }
func (f *fakeLocal) Fingers() []chordnode.Node { return f.fingers }

type fakeRemote struct {
	peers map[string]*fakeLocal
}

func (r *fakeRemote) QueryClosestPrecedingFinger(addr string, key uint64) (chordnode.Node, error) {
	peer := r.peers[addr]
	return ClosestPrecedingFinger(peer.self, peer.fingers, key, bits), nil
}

func (r *fakeRemote) FetchSuccessor(addr string) (chordnode.Node, error) {
	return r.peers[addr].successor, nil
}

func node(id uint64, addr string) chordnode.Node {
	return chordnode.Node{ID: id, Host: addr, Port: 1}
}

// Three nodes at ids 10, 100, 200 on a ring of size 256. Looking up key 50
// from node 10 should resolve to node 100 (its successor).
func TestFindSuccessorThreeNodeRing(t *testing.T) {
	n10 := node(10, "n10")
	n100 := node(100, "n100")
	n200 := node(200, "n200")

	fingers10 := make([]chordnode.Node, bits)
	fingers100 := make([]chordnode.Node, bits)
	fingers200 := make([]chordnode.Node, bits)
	for i := range fingers10 {
		fingers10[i] = n100
		fingers100[i] = n200
		fingers200[i] = n10
	}

	remote := &fakeRemote{peers: map[string]*fakeLocal{
		n100.Addr(): {self: n100, successor: n200, fingers: fingers100},
		n200.Addr(): {self: n200, successor: n10, fingers: fingers200},
	}}

	local10 := &fakeLocal{self: n10, successor: n100, fingers: fingers10}
	engine := New(local10, remote, bits)

	got, err := engine.FindSuccessor(50)
	if err != nil {
		t.Fatalf("FindSuccessor: %v", err)
	}
	if !got.Equal(n100) {
		t.Fatalf("FindSuccessor(50) = %v, want n100", got)
	}

	got, err = engine.FindSuccessor(150)
	if err != nil {
		t.Fatalf("FindSuccessor: %v", err)
	}
	if !got.Equal(n200) {
		t.Fatalf("FindSuccessor(150) = %v, want n200", got)
	}
}

func TestClosestPrecedingFingerPrefersFurthestNonOvershooting(t *testing.T) {
	self := node(0, "self")
	near := node(10, "near")
	far := node(100, "far")
	fingers := []chordnode.Node{near, far}

	got := ClosestPrecedingFinger(self, fingers, 150, bits)
	if !got.Equal(far) {
		t.Fatalf("expected furthest non-overshooting finger %v, got %v", far, got)
	}

	got = ClosestPrecedingFinger(self, fingers, 50, bits)
	if !got.Equal(near) {
		t.Fatalf("expected nearer finger %v once key is closer, got %v", near, got)
	}
}
