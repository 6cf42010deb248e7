package transport

import (
	"bufio"
	"fmt"
	"net"
	"time"

	"chordring/internal/chordnode"
	"chordring/internal/wire"
)

// Client issues text-line RPCs to remote nodes, dialing a fresh
// connection per call. Every call bounds its connect with DialTimeout;
// all calls except Ping bound the whole exchange with CallTimeout, while
// Ping bounds its exchange with DialTimeout as well.
type Client struct {
	DialTimeout time.Duration
	CallTimeout time.Duration
}

// NewClient returns a Client with short dial timeouts so a dead peer
// fails fast, and longer call timeouts so a slow-but-alive peer isn't
// mistaken for dead mid-RPC.
func NewClient() *Client {
	return &Client{DialTimeout: 500 * time.Millisecond, CallTimeout: 2 * time.Second}
}

func (c *Client) dial(addr string) (net.Conn, error) {
	conn, err := net.DialTimeout("tcp", addr, c.DialTimeout)
	if err != nil {
		return nil, wrapUnreachable(addr, err)
	}
	_ = conn.SetDeadline(time.Now().Add(c.CallTimeout))
	return conn, nil
}

func (c *Client) simpleNodeCall(addr string, cmd wire.Command) (chordnode.Node, error) {
	conn, err := c.dial(addr)
	if err != nil {
		return chordnode.Node{}, err
	}
	defer conn.Close()

	if err := wire.WriteCommand(conn, cmd); err != nil {
		return chordnode.Node{}, wrapUnreachable(addr, err)
	}
	n, err := wire.ReadNode(bufio.NewReader(conn))
	if err != nil {
		return chordnode.Node{}, wrapUnreachable(addr, err)
	}
	return n, nil
}

func (c *Client) keyedNodeCall(addr string, cmd wire.Command, key uint64) (chordnode.Node, error) {
	conn, err := c.dial(addr)
	if err != nil {
		return chordnode.Node{}, err
	}
	defer conn.Close()

	if err := wire.WriteCommand(conn, cmd); err != nil {
		return chordnode.Node{}, wrapUnreachable(addr, err)
	}
	if err := wire.WriteUint(conn, key); err != nil {
		return chordnode.Node{}, wrapUnreachable(addr, err)
	}
	n, err := wire.ReadNode(bufio.NewReader(conn))
	if err != nil {
		return chordnode.Node{}, wrapUnreachable(addr, err)
	}
	return n, nil
}

// FetchSuccessor asks addr for its successor, unconditionally.
func (c *Client) FetchSuccessor(addr string) (chordnode.Node, error) {
	return c.simpleNodeCall(addr, wire.CmdFetchSuccessor)
}

// FetchPredecessor asks addr for its predecessor, unconditionally.
func (c *Client) FetchPredecessor(addr string) (chordnode.Node, error) {
	return c.simpleNodeCall(addr, wire.CmdFetchPredecessor)
}

// QuerySuccessor asks addr to resolve find_successor(key) starting from
// itself.
func (c *Client) QuerySuccessor(addr string, key uint64) (chordnode.Node, error) {
	return c.keyedNodeCall(addr, wire.CmdQuerySuccessor, key)
}

// QueryPredecessor asks addr to resolve find_predecessor(key) starting
// from itself.
func (c *Client) QueryPredecessor(addr string, key uint64) (chordnode.Node, error) {
	return c.keyedNodeCall(addr, wire.CmdQueryPredecessor, key)
}

// QueryClosestPrecedingFinger asks addr for its closest finger preceding
// key.
func (c *Client) QueryClosestPrecedingFinger(addr string, key uint64) (chordnode.Node, error) {
	return c.keyedNodeCall(addr, wire.CmdQueryClosestFin, key)
}

// UpdateSuccessor tells addr to set its successor to n.
func (c *Client) UpdateSuccessor(addr string, n chordnode.Node) error {
	conn, err := c.dial(addr)
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := wire.WriteCommand(conn, wire.CmdUpdateSuccessor); err != nil {
		return wrapUnreachable(addr, err)
	}
	if err := wire.WriteNode(conn, n); err != nil {
		return wrapUnreachable(addr, err)
	}
	return nil
}

// UpdatePredecessor tells addr to set its predecessor to n.
func (c *Client) UpdatePredecessor(addr string, n chordnode.Node) error {
	conn, err := c.dial(addr)
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := wire.WriteCommand(conn, wire.CmdUpdatePredecessor); err != nil {
		return wrapUnreachable(addr, err)
	}
	if err := wire.WriteNode(conn, n); err != nil {
		return wrapUnreachable(addr, err)
	}
	return nil
}

// UpdateFinger is the update_finger_table RPC: tell addr that s may
// belong at finger index i, recursively propagated toward the ring.
func (c *Client) UpdateFinger(addr string, s chordnode.Node, i int) error {
	conn, err := c.dial(addr)
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := wire.WriteCommand(conn, wire.CmdUpdateFinger); err != nil {
		return wrapUnreachable(addr, err)
	}
	if err := wire.WriteNode(conn, s); err != nil {
		return wrapUnreachable(addr, err)
	}
	if err := wire.WriteUint(conn, uint64(i)); err != nil {
		return wrapUnreachable(addr, err)
	}
	return nil
}

// RemoveNode is the remove_node RPC: tell addr that old has failed and
// should be replaced by replacement at finger index i wherever it
// appears, recursively.
func (c *Client) RemoveNode(addr string, old chordnode.Node, i int, replacement chordnode.Node) error {
	conn, err := c.dial(addr)
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := wire.WriteCommand(conn, wire.CmdRemoveNode); err != nil {
		return wrapUnreachable(addr, err)
	}
	if err := wire.WriteNode(conn, old); err != nil {
		return wrapUnreachable(addr, err)
	}
	if err := wire.WriteUint(conn, uint64(i)); err != nil {
		return wrapUnreachable(addr, err)
	}
	if err := wire.WriteNode(conn, replacement); err != nil {
		return wrapUnreachable(addr, err)
	}
	return nil
}

// SearchQuery is a local-only debug lookup -- it never consults the
// finger table, only addr's own store.
func (c *Client) SearchQuery(addr, key string) (string, bool, error) {
	conn, err := c.dial(addr)
	if err != nil {
		return "", false, err
	}
	defer conn.Close()
	if err := wire.WriteCommand(conn, wire.CmdSearchQuery); err != nil {
		return "", false, wrapUnreachable(addr, err)
	}
	if err := wire.WriteString(conn, key); err != nil {
		return "", false, wrapUnreachable(addr, err)
	}
	r := bufio.NewReader(conn)
	found, err := wire.ReadUint(r)
	if err != nil {
		return "", false, wrapUnreachable(addr, err)
	}
	if found == 0 {
		return "", false, nil
	}
	val, err := wire.ReadString(r)
	if err != nil {
		return "", false, wrapUnreachable(addr, err)
	}
	return val, true, nil
}

// PrintTable asks addr to render its routing table as text, for
// operator diagnostics.
func (c *Client) PrintTable(addr string) (string, error) {
	conn, err := c.dial(addr)
	if err != nil {
		return "", err
	}
	defer conn.Close()
	if err := wire.WriteCommand(conn, wire.CmdPrintTable); err != nil {
		return "", wrapUnreachable(addr, err)
	}
	r := bufio.NewReader(conn)
	lineCount, err := wire.ReadUint(r)
	if err != nil {
		return "", wrapUnreachable(addr, err)
	}
	out := ""
	for i := uint64(0); i < lineCount; i++ {
		line, err := wire.ReadString(r)
		if err != nil {
			return "", wrapUnreachable(addr, err)
		}
		out += line + "\n"
	}
	return out, nil
}

// Ping checks whether addr accepts a connection and answers ping,
// treated as the liveness probe by the keep-alive failure detector.
func (c *Client) Ping(addr string) (bool, error) {
	conn, err := net.DialTimeout("tcp", addr, c.DialTimeout)
	if err != nil {
		return false, fmt.Errorf("ping %s: %w", addr, err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(c.DialTimeout))

	if err := wire.WriteCommand(conn, wire.CmdPing); err != nil {
		return false, fmt.Errorf("ping %s: %w", addr, err)
	}
	line, err := wire.ReadLine(bufio.NewReader(conn))
	if err != nil {
		return false, fmt.Errorf("ping %s: %w", addr, err)
	}
	return line == "pong", nil
}
