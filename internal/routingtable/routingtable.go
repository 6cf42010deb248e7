// Package routingtable holds the per-node ring-pointer state: predecessor,
// successor, second successor, and the M-entry finger table, guarded by
// one sync.RWMutex. Successor, predecessor and second-successor refresh
// changes are logged; ClearPredecessor, SetSecondSuccessor and SetFinger
// for indices above 0 are not.
package routingtable

import (
	"sync"

	"chordring/internal/chordnode"
	"chordring/internal/logger"
)

// FetchSuccessorFunc asks a peer for its successor; used to refresh the
// second-successor pointer asynchronously after SetSuccessor.
type FetchSuccessorFunc func(peer chordnode.Node) (chordnode.Node, error)

// Table is the full routing state of one node.
type Table struct {
	mu sync.RWMutex

	self            chordnode.Node
	predecessor     *chordnode.Node
	secondSuccessor *chordnode.Node
	finger          []chordnode.Node // finger[0] == successor, always

	bits uint
	log  logger.Logger

	fetchSuccessor FetchSuccessorFunc
}

// New builds a routing table for self with an M-bit (bits) finger table,
// initially pointing every finger at self (the singleton-ring state).
func New(self chordnode.Node, bits uint, fetchSuccessor FetchSuccessorFunc, log logger.Logger) *Table {
	if log == nil {
		log = logger.NopLogger{}
	}
	t := &Table{
		self:           self,
		finger:         make([]chordnode.Node, bits),
		bits:           bits,
		log:            log.Named("routingtable"),
		fetchSuccessor: fetchSuccessor,
	}
	for i := range t.finger {
		t.finger[i] = self
	}
	return t
}

// Bits returns the finger table width M.
func (t *Table) Bits() uint { return t.bits }

// Self returns this node's own identity.
func (t *Table) Self() chordnode.Node { return t.self }

// Successor returns finger[0].
func (t *Table) Successor() chordnode.Node {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.finger[0]
}

// SetSuccessor updates finger[0] and kicks off an asynchronous refresh of
// the second-successor pointer.
func (t *Table) SetSuccessor(n chordnode.Node) {
	t.mu.Lock()
	t.finger[0] = n
	t.mu.Unlock()

	t.log.Debug("successor updated", logger.F("addr", n.Addr()), logger.F("id", n.ID))

	if t.fetchSuccessor == nil {
		return
	}
	go func() {
		second, err := t.fetchSuccessor(n)
		if err != nil {
			t.log.Warn("second successor refresh failed", logger.F("via", n.Addr()), logger.F("err", err.Error()))
			return
		}
		t.mu.Lock()
		t.secondSuccessor = &second
		t.mu.Unlock()
		t.log.Debug("second successor refreshed", logger.F("addr", second.Addr()))
	}()
}

// Predecessor returns the current predecessor, if any.
func (t *Table) Predecessor() (chordnode.Node, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.predecessor == nil {
		return chordnode.Node{}, false
	}
	return *t.predecessor, true
}

// SetPredecessor overwrites the predecessor pointer.
func (t *Table) SetPredecessor(n chordnode.Node) {
	t.mu.Lock()
	t.predecessor = &n
	t.mu.Unlock()
	t.log.Debug("predecessor updated", logger.F("addr", n.Addr()), logger.F("id", n.ID))
}

// ClearPredecessor drops the predecessor pointer (e.g. on detected failure).
func (t *Table) ClearPredecessor() {
	t.mu.Lock()
	t.predecessor = nil
	t.mu.Unlock()
}

// SecondSuccessor returns the current second-successor, if known.
func (t *Table) SecondSuccessor() (chordnode.Node, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.secondSuccessor == nil {
		return chordnode.Node{}, false
	}
	return *t.secondSuccessor, true
}

// SetSecondSuccessor overwrites the second-successor pointer directly,
// used by the keep-alive repair path when the ring collapses to a
// singleton after the successor has failed.
func (t *Table) SetSecondSuccessor(n chordnode.Node) {
	t.mu.Lock()
	t.secondSuccessor = &n
	t.mu.Unlock()
}

// Finger returns finger table entry i.
func (t *Table) Finger(i int) chordnode.Node {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.finger[i]
}

// SetFinger overwrites finger table entry i. Index 0 is kept in sync with
// Successor, enforcing the finger[0]==successor invariant.
func (t *Table) SetFinger(i int, n chordnode.Node) {
	t.mu.Lock()
	t.finger[i] = n
	t.mu.Unlock()
	if i == 0 {
		t.log.Debug("successor updated via finger[0]", logger.F("addr", n.Addr()))
	}
}

// Fingers returns a snapshot copy of the whole finger table, for
// print_table and diagnostics.
func (t *Table) Fingers() []chordnode.Node {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]chordnode.Node, len(t.finger))
	copy(out, t.finger)
	return out
}

// Snapshot returns a consistent read of the full pointer set at once, for
// print_table.
type Snapshot struct {
	Self            chordnode.Node
	Predecessor     *chordnode.Node
	SecondSuccessor *chordnode.Node
	Fingers         []chordnode.Node
}

func (t *Table) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	fingers := make([]chordnode.Node, len(t.finger))
	copy(fingers, t.finger)
	var pred, second *chordnode.Node
	if t.predecessor != nil {
		p := *t.predecessor
		pred = &p
	}
	if t.secondSuccessor != nil {
		s := *t.secondSuccessor
		second = &s
	}
	return Snapshot{Self: t.self, Predecessor: pred, SecondSuccessor: second, Fingers: fingers}
}
