// Package main provides the entry point for the tornet CLI.
//
// tornet automates public-IP rotation by driving the system Tor
// service: it periodically reloads Tor to request a new circuit and
// reports the resulting exit IP. It can also steer which country the
// exit relay lives in by editing torrc before the rotation loop starts.
//
// Usage:
//
//	tornet rotate --interval 30-120 --count 0
//	tornet rotate --prefer ru --fallback de,nl
//	tornet ip
//	tornet stop
//
// See --help for all available options.
package main

// main is the entry point for tornet.
func main() {
	Execute()
}
