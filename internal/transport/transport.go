// Package transport implements the TCP client/server for the text-line
// protocol in internal/wire: one goroutine per accepted connection on
// the server side, one fresh dial per call on the client side.
package transport

import (
	"errors"
	"fmt"
)

// ErrUnreachable is returned for dial failures, timeouts, and short reads
// -- anything that means "could not complete the RPC", surfaced to
// callers for every command except ping, where it instead drives the
// keep-alive repair path.
var ErrUnreachable = errors.New("transport: peer unreachable")

func wrapUnreachable(addr string, err error) error {
	return fmt.Errorf("%w: %s: %s", ErrUnreachable, addr, err)
}
