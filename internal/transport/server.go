package transport

import (
	"bufio"
	"net"

	"chordring/internal/chordnode"
	"chordring/internal/logger"
	"chordring/internal/wire"
)

// Handler is implemented by internal/membership.Node: one method per
// wire command. The query, update and remove handlers run under the
// node's single request mutex; FetchSuccessor, FetchPredecessor,
// SearchQuery, PrintTable and Ping do not take it.
type Handler interface {
	FetchSuccessor() chordnode.Node
	FetchPredecessor() (chordnode.Node, bool)
	QuerySuccessor(key uint64) (chordnode.Node, error)
	QueryPredecessor(key uint64) (chordnode.Node, error)
	QueryClosestPrecedingFinger(key uint64) chordnode.Node
	UpdateSuccessor(n chordnode.Node)
	UpdatePredecessor(n chordnode.Node)
	UpdateFinger(s chordnode.Node, i int)
	RemoveNode(old chordnode.Node, i int, replacement chordnode.Node)
	SearchQuery(key string) (string, bool)
	PrintTable() []string
	Ping() bool
}

// Server accepts connections and dispatches one command per connection:
// one accept goroutine, one handler goroutine per connection, over a raw
// net.Listener instead of net/http.
type Server struct {
	ln      net.Listener
	handler Handler
	log     logger.Logger
}

// NewServer wraps an already-bound listener; binding is left to the
// caller so tests can use net.Listen("tcp", "127.0.0.1:0").
func NewServer(ln net.Listener, h Handler, log logger.Logger) *Server {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Server{ln: ln, handler: h, log: log.Named("transport")}
}

// Addr returns the bound listener address.
func (s *Server) Addr() net.Addr { return s.ln.Addr() }

// Serve runs the accept loop until the listener is closed.
func (s *Server) Serve() error {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return err
		}
		go s.handleConn(conn)
	}
}

// Close stops accepting new connections.
func (s *Server) Close() error { return s.ln.Close() }

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)

	line, err := wire.ReadLine(r)
	if err != nil {
		return
	}
	cmd, err := wire.ParseCommand(line)
	if err != nil {
		s.log.Warn("unknown command", logger.F("line", line), logger.F("remote", conn.RemoteAddr().String()))
		return
	}

	switch cmd {
	case wire.CmdFetchSuccessor:
		_ = wire.WriteNode(conn, s.handler.FetchSuccessor())

	case wire.CmdFetchPredecessor:
		pred, ok := s.handler.FetchPredecessor()
		if !ok {
			_ = wire.WriteNode(conn, chordnode.Node{})
			return
		}
		_ = wire.WriteNode(conn, pred)

	case wire.CmdQuerySuccessor:
		key, err := wire.ReadUint(r)
		if err != nil {
			return
		}
		n, err := s.handler.QuerySuccessor(key)
		if err != nil {
			return
		}
		_ = wire.WriteNode(conn, n)

	case wire.CmdQueryPredecessor:
		key, err := wire.ReadUint(r)
		if err != nil {
			return
		}
		n, err := s.handler.QueryPredecessor(key)
		if err != nil {
			return
		}
		_ = wire.WriteNode(conn, n)

	case wire.CmdQueryClosestFin:
		key, err := wire.ReadUint(r)
		if err != nil {
			return
		}
		_ = wire.WriteNode(conn, s.handler.QueryClosestPrecedingFinger(key))

	case wire.CmdUpdateSuccessor:
		n, err := wire.ReadNode(r)
		if err != nil {
			return
		}
		s.handler.UpdateSuccessor(n)

	case wire.CmdUpdatePredecessor:
		n, err := wire.ReadNode(r)
		if err != nil {
			return
		}
		s.handler.UpdatePredecessor(n)

	case wire.CmdUpdateFinger:
		sNode, err := wire.ReadNode(r)
		if err != nil {
			return
		}
		idx, err := wire.ReadUint(r)
		if err != nil {
			return
		}
		s.handler.UpdateFinger(sNode, int(idx))

	case wire.CmdRemoveNode:
		old, err := wire.ReadNode(r)
		if err != nil {
			return
		}
		idx, err := wire.ReadUint(r)
		if err != nil {
			return
		}
		replacement, err := wire.ReadNode(r)
		if err != nil {
			return
		}
		s.handler.RemoveNode(old, int(idx), replacement)

	case wire.CmdSearchQuery:
		key, err := wire.ReadString(r)
		if err != nil {
			return
		}
		val, found := s.handler.SearchQuery(key)
		if !found {
			_ = wire.WriteUint(conn, 0)
			return
		}
		_ = wire.WriteUint(conn, 1)
		_ = wire.WriteString(conn, val)

	case wire.CmdPrintTable:
		lines := s.handler.PrintTable()
		_ = wire.WriteUint(conn, uint64(len(lines)))
		for _, l := range lines {
			_ = wire.WriteString(conn, l)
		}

	case wire.CmdPing:
		if s.handler.Ping() {
			_ = wire.WriteLine(conn, "pong")
		}
	}
}
