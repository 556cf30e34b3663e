// Package probe observes the current public IP address, either directly
// or through the local Tor SOCKS5 proxy, and detects whether the Tor
// process is running.
//
// The probe is the verification oracle for exit-policy application:
// a successful proxied lookup is the evidence that Tor built a working
// circuit under the policy currently on disk. Results are produced
// fresh on every call and never cached.
package probe
