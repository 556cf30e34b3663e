package torrc

import "strings"

// ExitPolicy describes which countries Tor may use for exit relays.
//
// An empty Countries list with Strict=false means "no constraint":
// Tor is free to pick any exit relay. Country codes are lowercase
// two-letter ISO codes; order is preserved when serializing because
// Tor treats earlier entries as preferred.
type ExitPolicy struct {
	// Countries is the ordered list of exit country codes.
	// Duplicates are permitted but redundant.
	Countries []string

	// Strict forbids any exit relay outside Countries, even when none
	// of them are reachable. Non-strict lets Tor fall back to other
	// relays if the preferred set cannot build a circuit.
	Strict bool
}

// NewExitPolicy returns a policy for the given country codes.
// Codes are trimmed and lowercased; empty entries are dropped.
func NewExitPolicy(countries []string, strict bool) ExitPolicy {
	cleaned := make([]string, 0, len(countries))
	for _, c := range countries {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" {
			cleaned = append(cleaned, c)
		}
	}
	return ExitPolicy{Countries: cleaned, Strict: strict}
}

// AnyExit returns the unconstrained, non-strict policy.
// Writing it removes the country restriction entirely.
func AnyExit() ExitPolicy {
	return ExitPolicy{}
}

// Unconstrained reports whether the policy places no country restriction.
func (p ExitPolicy) Unconstrained() bool {
	return len(p.Countries) == 0
}

// ExitNodes renders the value of the ExitNodes directive: each country
// code wrapped in braces, joined by commas ("{ru},{de}"). It returns
// the empty string for an unconstrained policy.
func (p ExitPolicy) ExitNodes() string {
	if len(p.Countries) == 0 {
		return ""
	}
	groups := make([]string, 0, len(p.Countries))
	for _, c := range p.Countries {
		groups = append(groups, "{"+c+"}")
	}
	return strings.Join(groups, ",")
}

// StrictNodes renders the value of the StrictNodes directive ("1" or "0").
func (p ExitPolicy) StrictNodes() string {
	if p.Strict {
		return "1"
	}
	return "0"
}

// String returns a human-readable description for logging.
func (p ExitPolicy) String() string {
	if p.Unconstrained() {
		if p.Strict {
			return "strict, no exit countries"
		}
		return "any exit"
	}
	mode := "prefer"
	if p.Strict {
		mode = "strict"
	}
	return mode + " " + strings.Join(p.Countries, ",")
}
