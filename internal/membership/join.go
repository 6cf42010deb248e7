package membership

import (
	"fmt"

	"chordring/internal/chordnode"
	"chordring/internal/logger"
	"chordring/internal/ringid"
)

// Join attaches this node to an existing ring reachable through
// bootstrapAddr: locate the successor, inherit its predecessor, build a
// finger table with the reuse optimization, then walk the ring telling
// every node that might reference this key range about the new node.
func (n *Node) Join(bootstrapAddr string) error {
	self := n.rt.Self()

	successor, err := n.client.QuerySuccessor(bootstrapAddr, self.ID)
	if err != nil {
		return fmt.Errorf("join: query successor via %s: %w", bootstrapAddr, err)
	}
	n.rt.SetSuccessor(successor)

	predecessor, err := n.client.FetchPredecessor(successor.Addr())
	if err != nil {
		return fmt.Errorf("join: fetch predecessor of %s: %w", successor.Addr(), err)
	}
	n.rt.SetPredecessor(predecessor)

	// Deliberately asymmetric: our successor is told that its predecessor
	// is now us, but the inherited predecessor is not told that its
	// successor is now us. Preserved as-is rather than rewritten to the
	// symmetric shape.
	if predecessor.Equal(self) {
		n.rt.SetPredecessor(self)
	} else if err := n.client.UpdatePredecessor(successor.Addr(), self); err != nil {
		n.log.Warn("join: notify successor failed", logger.F("addr", successor.Addr()), logger.F("err", err.Error()))
	}

	if err := n.buildFingerTable(bootstrapAddr); err != nil {
		return fmt.Errorf("join: build finger table: %w", err)
	}

	n.updateOthers()

	n.log.Info("joined ring",
		logger.F("self", self.Addr()),
		logger.F("successor", successor.Addr()),
		logger.F("predecessor", predecessor.Addr()),
	)
	return nil
}

// buildFingerTable constructs finger[1..bits) with a reuse optimization:
// each entry reuses the previous one when it's already known to cover the
// next start key, and otherwise asks the original bootstrap node to
// resolve it (always the bootstrap peer, never the newly learned
// successor).
func (n *Node) buildFingerTable(bootstrapAddr string) error {
	self := n.rt.Self()
	fingers := make([]chordnode.Node, n.bits)
	fingers[0] = n.rt.Successor()

	product := uint64(1)
	for i := 1; i < int(n.bits); i++ {
		startKey := ringid.WrapAdd(self.ID, product, n.bits)
		prev := fingers[i-1]

		if ringid.InArcClosed(startKey, self.ID, ringid.WrapSub(prev.ID, 1, n.bits), n.bits) {
			fingers[i] = prev
		} else {
			f, err := n.client.QuerySuccessor(bootstrapAddr, startKey)
			if err != nil {
				return fmt.Errorf("query successor for finger %d: %w", i, err)
			}
			if !ringid.InArcClosed(f.ID, startKey, self.ID, n.bits) {
				f = self
			}
			fingers[i] = f
		}
		product *= 2
	}

	for i := 1; i < int(n.bits); i++ {
		n.rt.SetFinger(i, fingers[i])
	}
	return nil
}

// updateOthers walks backward around the ring telling every node that
// might need this node in its finger table about it.
func (n *Node) updateOthers() {
	self := n.rt.Self()
	product := uint64(1)
	for i := 0; i < int(n.bits); i++ {
		target := ringid.WrapSub(self.ID, product, n.bits)

		p, err := n.lookup.FindPredecessor(target)
		if err != nil {
			n.log.Warn("update_others: find_predecessor failed", logger.F("index", i), logger.F("err", err.Error()))
			product *= 2
			continue
		}

		if p.Equal(self) {
			n.handleUpdateFingerTableLocked(self, i)
		} else if err := n.client.UpdateFinger(p.Addr(), self, i); err != nil {
			n.log.Warn("update_others: update_finger_table failed", logger.F("to", p.Addr()), logger.F("index", i), logger.F("err", err.Error()))
		}
		product *= 2
	}
}
