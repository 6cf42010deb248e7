// Package chordnode defines the Node identity triple and the hash used to
// place a node on the identifier ring.
package chordnode

import (
	"crypto/sha1"
	"fmt"
	"math/big"
)

// Node is a ring participant's address and its position on the ring.
// Equality between two Nodes is by (Host, Port); ID is derived from
// that pair and cached here for convenience.
type Node struct {
	ID   uint64
	Host string
	Port int
}

// Addr returns the "host:port" form used on the wire.
func (n Node) Addr() string {
	return fmt.Sprintf("%s:%d", n.Host, n.Port)
}

// Equal reports whether two nodes refer to the same peer.
func (n Node) Equal(other Node) bool {
	return n.Host == other.Host && n.Port == other.Port
}

func (n Node) String() string {
	return fmt.Sprintf("%s (id=%d)", n.Addr(), n.ID)
}

// HashNode maps host:port onto the ring by taking SHA-1("host:port") mod
// 2^bits.
func HashNode(host string, port int, bits uint) uint64 {
	return HashKey(fmt.Sprintf("%s:%d", host, port), bits)
}

// HashKey maps an arbitrary string key onto the ring the same way
// HashNode maps an address; HashNode is its only caller.
func HashKey(key string, bits uint) uint64 {
	sum := sha1.Sum([]byte(key))
	digest := new(big.Int).SetBytes(sum[:])
	mod := new(big.Int).Lsh(big.NewInt(1), bits)
	return digest.Mod(digest, mod).Uint64()
}

// New builds a Node for the given address, computing its ring ID.
func New(host string, port int, bits uint) Node {
	return Node{ID: HashNode(host, port, bits), Host: host, Port: port}
}
