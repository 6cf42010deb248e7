package membership

import (
	"chordring/internal/chordnode"
	"chordring/internal/logger"
	"chordring/internal/ringid"
)

// UpdateFinger is the update_finger_table RPC handler: s may belong at
// finger index i of this node; if so, install it and propagate the same
// request to this node's predecessor, stopping once the walk reaches s
// itself.
func (n *Node) UpdateFinger(s chordnode.Node, i int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handleUpdateFingerTableLocked(s, i)
}

func (n *Node) handleUpdateFingerTableLocked(s chordnode.Node, i int) {
	self := n.rt.Self()
	if s.Equal(self) {
		return
	}
	if i < 0 || i >= int(n.bits) {
		return
	}

	current := n.rt.Finger(i)
	if !ringid.InArcLeftOpenRightClosed(s.ID, self.ID, current.ID, n.bits) {
		return
	}

	if i == 0 {
		n.rt.SetSuccessor(s)
	} else {
		n.rt.SetFinger(i, s)
	}
	n.log.Debug("finger updated", logger.F("index", i), logger.F("addr", s.Addr()))

	pred, ok := n.rt.Predecessor()
	if !ok || s.Equal(pred) {
		return
	}
	if err := n.client.UpdateFinger(pred.Addr(), s, i); err != nil {
		n.log.Warn("propagate update_finger_table failed", logger.F("to", pred.Addr()), logger.F("err", err.Error()))
	}
}
