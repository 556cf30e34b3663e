package probe

import "errors"

var (
	// ErrNoConnectivity is returned by CheckConnectivity when the
	// baseline internet check fails. This is a fatal startup condition:
	// without connectivity neither rotation nor verification can work.
	ErrNoConnectivity = errors.New("internet connection required but not available")

	// ErrInvalidProxyAddress is returned when the SOCKS5 proxy address
	// is not in "host:port" format.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")
)
