package routingtable

import (
	"testing"
	"time"

	"chordring/internal/chordnode"
)

func TestNewSingletonPointsAtSelf(t *testing.T) {
	self := chordnode.New("a", 1, 8)
	rt := New(self, 8, nil, nil)

	if !rt.Successor().Equal(self) {
		t.Fatalf("singleton successor should be self, got %v", rt.Successor())
	}
	for i := 0; i < 8; i++ {
		if !rt.Finger(i).Equal(self) {
			t.Fatalf("finger[%d] should be self in singleton ring", i)
		}
	}
	if _, ok := rt.Predecessor(); ok {
		t.Fatal("singleton ring should start with no predecessor")
	}
}

func TestSetSuccessorKeepsFingerZeroInSync(t *testing.T) {
	self := chordnode.New("a", 1, 8)
	peer := chordnode.New("b", 2, 8)
	rt := New(self, 8, nil, nil)

	rt.SetSuccessor(peer)
	if !rt.Finger(0).Equal(peer) {
		t.Fatal("finger[0] must track SetSuccessor")
	}
}

func TestSetSuccessorTriggersAsyncSecondSuccessorRefresh(t *testing.T) {
	self := chordnode.New("a", 1, 8)
	peer := chordnode.New("b", 2, 8)
	far := chordnode.New("c", 3, 8)

	done := make(chan struct{})
	fetch := func(n chordnode.Node) (chordnode.Node, error) {
		defer close(done)
		return far, nil
	}
	rt := New(self, 8, fetch, nil)
	rt.SetSuccessor(peer)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second successor fetch was not invoked")
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if second, ok := rt.SecondSuccessor(); ok && second.Equal(far) {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("second successor was never set to fetched value")
}
