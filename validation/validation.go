package validation

import "strings"

// Kind identifies which address family a literal belongs to.
type Kind string

const (
	IPv4 Kind = "IPv4"
	IPv6 Kind = "IPv6"
)

// Result is the outcome of classifying a candidate address literal.
type Result struct {
	Valid bool
	Kind  Kind
}

// Classify decides whether s is a well-formed IPv4 or IPv6 literal.
// The check is purely syntactic: no DNS, no reachability, no trimming.
// It always returns an answer and never panics on any input.
func Classify(s string) Result {
	if s == "" {
		return Result{}
	}
	if strings.ContainsRune(s, ':') {
		if isIPv6(s) {
			return Result{Valid: true, Kind: IPv6}
		}
		return Result{}
	}
	if isIPv4(s) {
		return Result{Valid: true, Kind: IPv4}
	}
	return Result{}
}

// isIPv4 accepts exactly four dot-separated decimal groups, each 1-3 digits
// with a value in [0,255]. Leading zeros are tolerated.
func isIPv4(s string) bool {
	groups := strings.Split(s, ".")
	if len(groups) != 4 {
		return false
	}
	for _, g := range groups {
		if len(g) == 0 || len(g) > 3 {
			return false
		}
		v := 0
		for i := 0; i < len(g); i++ {
			c := g[i]
			if c < '0' || c > '9' {
				return false
			}
			v = v*10 + int(c-'0')
		}
		if v > 255 {
			return false
		}
	}
	return true
}

// isIPv6 accepts the full 8-hextet colon form, a single "::" zero
// compression in any valid position, an embedded IPv4 tail in place of the
// last two hextets, and a non-empty zone id after "%".
func isIPv6(s string) bool {
	if i := strings.IndexByte(s, '%'); i >= 0 {
		if i == len(s)-1 {
			return false // empty zone id
		}
		s = s[:i]
	}
	if s == "" {
		return false
	}

	compressed := false
	var left, right string
	switch strings.Count(s, "::") {
	case 0:
		left = s
	case 1:
		compressed = true
		parts := strings.SplitN(s, "::", 2)
		left, right = parts[0], parts[1]
	default:
		return false
	}

	hextets := 0
	count := func(part string, tailAllowed bool) bool {
		if part == "" {
			return true
		}
		groups := strings.Split(part, ":")
		for i, g := range groups {
			last := i == len(groups)-1
			if last && tailAllowed && strings.ContainsRune(g, '.') {
				if !isIPv4(g) {
					return false
				}
				hextets += 2 // the v4 tail stands in for two hextets
				continue
			}
			if !isHextet(g) {
				return false
			}
			hextets++
		}
		return true
	}

	// The embedded IPv4 tail may only appear at the textual end of the
	// address, which is the right side when a "::" is present.
	if !count(left, !compressed) {
		return false
	}
	if compressed && !count(right, true) {
		return false
	}

	if compressed {
		// "::" stands for at least one zero hextet.
		return hextets <= 7
	}
	return hextets == 8
}

func isHextet(g string) bool {
	if len(g) == 0 || len(g) > 4 {
		return false
	}
	for i := 0; i < len(g); i++ {
		c := g[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
