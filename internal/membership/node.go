// Package membership implements the Chord membership protocol: ring
// initialization, the synchronous join sequence, the recursive
// update_finger_table propagation, keep-alive failure detection, and the
// recursive remove_node repair propagation. Two quirks of the reference
// protocol are intentionally preserved rather than "fixed": an asymmetric
// predecessor notification during join (see join.go), and the keep-alive
// repair loop computing its finger target as successor.key - 2^i + 1
// instead of self.key - 2^i (see keepalive.go).
package membership

import (
	"fmt"
	"sync"

	"chordring/internal/chordnode"
	"chordring/internal/logger"
	"chordring/internal/lookup"
	"chordring/internal/routingtable"
	"chordring/internal/store"
	"chordring/internal/transport"
)

// Node is one ring participant: its routing state, its outbound RPC
// client, its local debug store, and the single coarse mutex that
// serializes request handling (including any RPCs a handler issues back
// out mid-request -- the protocol's call graph is acyclic, so this never
// deadlocks).
type Node struct {
	mu sync.Mutex

	rt     *routingtable.Table
	bits   uint
	client *transport.Client
	lookup *lookup.Engine
	store  *store.Store
	log    logger.Logger
}

// NewNode allocates a node in the singleton-ring state: its successor
// and every finger point at itself. It starts with no predecessor and no
// second successor; neither is set to itself.
// Call Join afterward to attach it to an existing ring instead.
func NewNode(self chordnode.Node, bits uint, client *transport.Client, st *store.Store, log logger.Logger) *Node {
	if log == nil {
		log = logger.NopLogger{}
	}
	if st == nil {
		st = store.New()
	}
	n := &Node{client: client, bits: bits, store: st, log: log.Named("membership")}
	n.rt = routingtable.New(self, bits, n.fetchSuccessorOf, log)
	n.lookup = lookup.New(n.rt, client, bits)
	return n
}

func (n *Node) fetchSuccessorOf(peer chordnode.Node) (chordnode.Node, error) {
	if peer.Equal(n.rt.Self()) {
		return n.rt.Successor(), nil
	}
	return n.client.FetchSuccessor(peer.Addr())
}

// RoutingTable exposes the underlying table for diagnostics and for
// wiring into transport.Server.
func (n *Node) RoutingTable() *routingtable.Table { return n.rt }

// Self returns this node's own identity.
func (n *Node) Self() chordnode.Node { return n.rt.Self() }

// Store exposes the local debug key/value store that search_query reads.
func (n *Node) Store() *store.Store { return n.store }

// --- transport.Handler implementation -------------------------------

func (n *Node) FetchSuccessor() chordnode.Node {
	return n.rt.Successor()
}

func (n *Node) FetchPredecessor() (chordnode.Node, bool) {
	return n.rt.Predecessor()
}

func (n *Node) QuerySuccessor(key uint64) (chordnode.Node, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.lookup.FindSuccessor(key)
}

func (n *Node) QueryPredecessor(key uint64) (chordnode.Node, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.lookup.FindPredecessor(key)
}

func (n *Node) QueryClosestPrecedingFinger(key uint64) chordnode.Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.lookup.ClosestPrecedingFinger(key)
}

func (n *Node) UpdateSuccessor(s chordnode.Node) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rt.SetSuccessor(s)
}

func (n *Node) UpdatePredecessor(p chordnode.Node) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rt.SetPredecessor(p)
}

// SearchQuery looks up key in the local debug store only -- it never
// consults the finger table. It is a local-only debug aid, not a DHT
// routing operation.
func (n *Node) SearchQuery(key string) (string, bool) {
	return n.store.Get(key)
}

// PrintTable renders the current routing state as text lines, for the
// print_table diagnostic command.
func (n *Node) PrintTable() []string {
	snap := n.rt.Snapshot()
	lines := []string{fmt.Sprintf("self: %s", snap.Self)}
	if snap.Predecessor != nil {
		lines = append(lines, fmt.Sprintf("predecessor: %s", *snap.Predecessor))
	} else {
		lines = append(lines, "predecessor: (none)")
	}
	if snap.SecondSuccessor != nil {
		lines = append(lines, fmt.Sprintf("second_successor: %s", *snap.SecondSuccessor))
	} else {
		lines = append(lines, "second_successor: (none)")
	}
	for i, f := range snap.Fingers {
		lines = append(lines, fmt.Sprintf("finger[%d]: %s", i, f))
	}
	return lines
}

// Ping answers true unconditionally: reaching this handler at all means
// the process is alive. Liveness failures are signaled by the connection
// itself, never from inside the handler.
func (n *Node) Ping() bool { return true }
