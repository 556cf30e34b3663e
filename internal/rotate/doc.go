// Package rotate runs the periodic IP rotation loop: sleep for a fixed
// or randomly sampled interval, reload the Tor service to request a new
// circuit, and probe the resulting public IP.
//
// Randomized intervals exist deliberately: a fixed rotation cadence is
// a fingerprint, and sampling each gap independently from a range
// removes it.
package rotate
