// Package lookup implements find_successor, find_predecessor, and
// closest_preceding_finger: the iterative routing algorithm that resolves
// a key to its owning node by repeatedly jumping to the closest known
// finger that doesn't overshoot.
package lookup

import (
	"fmt"

	"chordring/internal/chordnode"
	"chordring/internal/ringid"
	"chordring/internal/telemetry/lookuptrace"
)

// Local is satisfied by the node running the lookup, giving access to
// its own identity and routing state without a network round trip.
type Local interface {
	Self() chordnode.Node
	Successor() chordnode.Node
	Fingers() []chordnode.Node
}

// Remote is the subset of transport.Client a lookup needs to continue
// the search at a peer other than self.
type Remote interface {
	QueryClosestPrecedingFinger(addr string, key uint64) (chordnode.Node, error)
	FetchSuccessor(addr string) (chordnode.Node, error)
}

// Engine runs lookups rooted at one local node.
type Engine struct {
	local  Local
	remote Remote
	bits   uint
}

func New(local Local, remote Remote, bits uint) *Engine {
	return &Engine{local: local, remote: remote, bits: bits}
}

// ClosestPrecedingFinger scans the finger table from the highest index
// down, returning the first finger strictly between self and key -- the
// furthest finger that doesn't overshoot.
func ClosestPrecedingFinger(self chordnode.Node, fingers []chordnode.Node, key uint64, bits uint) chordnode.Node {
	for i := len(fingers) - 1; i >= 0; i-- {
		f := fingers[i]
		if ringid.InArcOpen(f.ID, self.ID, key, bits) {
			return f
		}
	}
	return self
}

// ClosestPrecedingFinger runs the local scan against this engine's own
// node, the shape the wire handler for query_cpf exposes to remote
// callers.
func (e *Engine) ClosestPrecedingFinger(key uint64) chordnode.Node {
	return ClosestPrecedingFinger(e.local.Self(), e.local.Fingers(), key, e.bits)
}

// FindPredecessor walks the ring toward the node whose successor would
// own key: starting at self, repeatedly ask the closest preceding finger
// to jump further, stopping once key falls in (n', n'.successor].
func (e *Engine) FindPredecessor(key uint64) (chordnode.Node, error) {
	self := e.local.Self()
	nPrime := self
	nPrimeSucc := e.local.Successor()

	for !ringid.InArcLeftOpenRightClosed(key, nPrime.ID, nPrimeSucc.ID, e.bits) {
		var next chordnode.Node
		var err error
		if nPrime.Equal(self) {
			next = e.ClosestPrecedingFinger(key)
		} else {
			next, err = e.remote.QueryClosestPrecedingFinger(nPrime.Addr(), key)
			if err != nil {
				return chordnode.Node{}, fmt.Errorf("find_predecessor: query closest preceding finger at %s: %w", nPrime.Addr(), err)
			}
		}

		if next.Equal(nPrime) {
			// No finger makes progress; nPrime is as close as the ring
			// currently allows (e.g. a small or just-changed ring).
			break
		}
		nPrime = next

		if nPrime.Equal(self) {
			nPrimeSucc = e.local.Successor()
		} else {
			nPrimeSucc, err = e.remote.FetchSuccessor(nPrime.Addr())
			if err != nil {
				return chordnode.Node{}, fmt.Errorf("find_predecessor: fetch successor of %s: %w", nPrime.Addr(), err)
			}
		}
	}
	return nPrime, nil
}

// FindSuccessor resolves the node owning key: the successor of key's
// predecessor on the ring.
func (e *Engine) FindSuccessor(key uint64) (chordnode.Node, error) {
	ctx, span := lookuptrace.StartHop(lookuptrace.Background(), "find_successor", key)
	defer span.End()
	_ = ctx

	pred, err := e.FindPredecessor(key)
	if err != nil {
		return chordnode.Node{}, err
	}
	self := e.local.Self()
	if pred.Equal(self) {
		return e.local.Successor(), nil
	}
	succ, err := e.remote.FetchSuccessor(pred.Addr())
	if err != nil {
		return chordnode.Node{}, fmt.Errorf("find_successor: fetch successor of predecessor %s: %w", pred.Addr(), err)
	}
	return succ, nil
}
