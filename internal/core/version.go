package core

import (
	"github.com/ZanzyTHEbar/errbuilder-go"

	"portage-resolvo/internal/types"
)

// VersionMatches evaluates one PMS operator on (candidate, constraint).
// It is a pure, total function over valid operators.
func VersionMatches(candidate types.Version, op types.Operator, constraint types.Version) bool {
	switch op {
	case types.OpLess:
		return candidate.CompareFull(constraint) < 0
	case types.OpLessEqual:
		return candidate.CompareFull(constraint) <= 0
	case types.OpEqual:
		if constraint.Glob {
			return globMatches(candidate, constraint)
		}
		return candidate.CompareFull(constraint) == 0
	case types.OpGreaterEqual:
		return candidate.CompareFull(constraint) >= 0
	case types.OpGreater:
		return candidate.CompareFull(constraint) > 0
	case types.OpApproximate:
		return candidate.Base().Compare(constraint.Base()) == 0
	case types.OpGlob:
		return globMatches(candidate, constraint)
	default:
		return false
	}
}

// globMatches implements the "=*" / glob-marked "=" numeric-component
// prefix match: the candidate's numbers must start with the constraint's
// numbers; if the constraint carries a trailing letter the candidate's
// letter must equal it, otherwise any (or no) candidate letter is accepted.
func globMatches(candidate, constraint types.Version) bool {
	if len(constraint.Numbers) > len(candidate.Numbers) {
		return false
	}
	for i, n := range constraint.Numbers {
		if compareGlobComponent(candidate.Numbers[i], n) != 0 {
			return false
		}
	}
	if constraint.Letter != 0 && candidate.Letter != constraint.Letter {
		return false
	}
	return true
}

// compareGlobComponent mirrors types.Version's unexported component
// comparator (string compare on leading zero, integer otherwise) so the
// glob prefix check uses identical semantics to full comparison.
func compareGlobComponent(a, b string) int {
	av, aok := parseDigits(a)
	bv, bok := parseDigits(b)
	if !aok || !bok || hasLeadingZero(a) || hasLeadingZero(b) {
		if a == b {
			return 0
		}
		if a < b {
			return -1
		}
		return 1
	}
	switch {
	case av < bv:
		return -1
	case av > bv:
		return 1
	default:
		return 0
	}
}

func hasLeadingZero(s string) bool { return len(s) > 1 && s[0] == '0' }

func parseDigits(s string) (int, bool) {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

// CompareVersions exposes the total PMS ordering (numbers, letter,
// suffixes, revision) used for newest-first candidate sorting.
func CompareVersions(a, b types.Version) int { return a.CompareFull(b) }

// ParseVersion wraps types.ParseVersion with an errbuilder-go error so core
// callers get a consistent error surface.
func ParseVersion(raw string) (types.Version, error) {
	v, err := types.ParseVersion(raw)
	if err != nil {
		return types.Version{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid version").
			WithCause(err)
	}
	return v, nil
}
