package membership

import (
	"context"
	"time"

	"chordring/internal/chordnode"
	"chordring/internal/logger"
	"chordring/internal/ringid"
)

// RemoveNode is the remove_node RPC handler: if finger index i currently
// points at old, replace it with replace and propagate the same request
// toward this node's predecessor. Unlike UpdateFinger's propagation, this
// forwards unconditionally once the match is found -- there is no "stop
// at s" guard here.
func (n *Node) RemoveNode(old chordnode.Node, i int, replace chordnode.Node) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handleRemoveNodeLocked(old, i, replace)
}

func (n *Node) handleRemoveNodeLocked(old chordnode.Node, i int, replace chordnode.Node) {
	if i < 0 || i >= int(n.bits) {
		return
	}
	if !n.rt.Finger(i).Equal(old) {
		return
	}

	if i == 0 {
		n.rt.SetSuccessor(replace)
	} else {
		n.rt.SetFinger(i, replace)
	}
	n.log.Info("removed failed node from finger table", logger.F("index", i), logger.F("old", old.Addr()), logger.F("replace", replace.Addr()))

	pred, ok := n.rt.Predecessor()
	if !ok {
		return
	}
	if err := n.client.RemoveNode(pred.Addr(), old, i, replace); err != nil {
		n.log.Warn("propagate remove_node failed", logger.F("to", pred.Addr()), logger.F("err", err.Error()))
	}
}

// StartFailureDetector runs the keep-alive loop until ctx is canceled:
// every interval, ping the successor, and on failure repair the ring.
func (n *Node) StartFailureDetector(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n.checkSuccessor()
		}
	}
}

func (n *Node) checkSuccessor() {
	succ := n.rt.Successor()
	self := n.rt.Self()
	if succ.Equal(self) {
		return
	}

	alive, err := n.client.Ping(succ.Addr())
	if err == nil && alive {
		return
	}

	n.log.Warn("successor unreachable, repairing ring", logger.F("successor", succ.Addr()))

	n.mu.Lock()
	defer n.mu.Unlock()
	n.repairSuccessorFailureLocked(succ)
}

func (n *Node) repairSuccessorFailureLocked(failedSuccessor chordnode.Node) {
	self := n.rt.Self()
	pred, hasPred := n.rt.Predecessor()

	if hasPred && failedSuccessor.Equal(pred) {
		// The ring has collapsed to this single node: both neighbors
		// were the same failed peer.
		n.rt.ClearPredecessor()
		n.rt.SetSuccessor(self)
		n.rt.SetSecondSuccessor(self)
		for i := 0; i < int(n.bits); i++ {
			n.rt.SetFinger(i, self)
		}
		n.log.Info("ring collapsed to singleton after successor failure")
		return
	}

	second, hasSecond := n.rt.SecondSuccessor()
	newSuccessor := self
	if hasSecond {
		newSuccessor = second
	}

	// Tell the promoted successor that we are now its predecessor.
	if !newSuccessor.Equal(self) {
		if err := n.client.UpdatePredecessor(newSuccessor.Addr(), self); err != nil {
			n.log.Warn("notify promoted successor failed", logger.F("addr", newSuccessor.Addr()), logger.F("err", err.Error()))
		}
	}
	n.rt.SetSuccessor(newSuccessor)

	// Walk the finger table, repairing every entry that pointed at the
	// failed successor. The repair target is intentionally
	// "successor.key - 2^i + 1", not "self.key - 2^i", unlike
	// updateOthers' unshifted "self.key - 2^i" formula at join time.
	// Preserved as-is rather than unified with that formula.
	product := uint64(1)
	for i := 0; i < int(n.bits); i++ {
		target := ringid.WrapAdd(ringid.WrapSub(failedSuccessor.ID, product, n.bits), 1, n.bits)
		p, err := n.lookup.FindPredecessor(target)
		if err != nil {
			n.log.Warn("repair find_predecessor failed", logger.F("index", i), logger.F("err", err.Error()))
			product *= 2
			continue
		}
		if p.Equal(self) {
			n.handleRemoveNodeLocked(failedSuccessor, i, newSuccessor)
		} else if err := n.client.RemoveNode(p.Addr(), failedSuccessor, i, newSuccessor); err != nil {
			n.log.Warn("propagate remove_node failed", logger.F("to", p.Addr()), logger.F("err", err.Error()))
		}
		product *= 2
	}
}
