// Package policy applies an exit-country preference to a running Tor
// service and verifies that it actually took effect.
//
// The applier is a small state machine: write the preferred (strict)
// policy, restart the service, wait out the bootstrap grace period,
// probe through the proxy; on failure apply a single non-strict
// fallback policy and verify once more. It never retries a state and
// makes exactly one fallback attempt; a failed fallback degrades to a
// warning so the rest of the tool can still start.
package policy
