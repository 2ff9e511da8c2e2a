// Package netconn implements the asynchronous resolve+connect+handshake
// core: DNS resolution, proxy traversal (HTTP CONNECT, SOCKS4, SOCKS5),
// and TLS, all run on a worker goroutine that reports back over a typed
// channel rather than a fork()+FD-passing design. The single-digit
// status code and 5-digit length-prefixed string the
// original wire format used between parent and child is kept as
// EncodeHeader/DecodeHeader in header.go, purely so the envelope shape a reader
// coming from the C source recognizes is preserved even though no pipe
// or fork is actually involved anymore.
package netconn

import "fmt"

// Status mirrors the original hook_connect status codes.
type Status int

const (
	StatusOK Status = iota
	StatusAddressNotFound
	StatusIPAddressNotFound
	StatusConnectionRefused
	StatusProxyError
	StatusLocalHostnameError
	StatusMemoryError
	StatusTimeout
	StatusSocketError
	StatusTLSInitError
	StatusTLSHandshakeError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusAddressNotFound:
		return "address not found"
	case StatusIPAddressNotFound:
		return "ip address not found"
	case StatusConnectionRefused:
		return "connection refused"
	case StatusProxyError:
		return "proxy error"
	case StatusLocalHostnameError:
		return "local hostname error"
	case StatusMemoryError:
		return "memory error"
	case StatusTimeout:
		return "timeout"
	case StatusSocketError:
		return "socket error"
	case StatusTLSInitError:
		return "tls init error"
	case StatusTLSHandshakeError:
		return "tls handshake error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}
