package version

import (
	"fmt"
	"strconv"
	"strings"
)

// SpecKind enumerates the closed set of version spec variants.
type SpecKind int

const (
	// SpecStable selects the newest release on the stable channel.
	SpecStable SpecKind = iota
	// SpecLTS selects the newest release on the LTS channel.
	SpecLTS
	// SpecPartial selects the newest release whose leading components match.
	SpecPartial
	// SpecExact names one release by its full four-part version.
	SpecExact
)

// Spec is a parsed version expression. Downstream code switches exhaustively
// on Kind; Parts is populated for partial and exact specs only.
type Spec struct {
	Kind  SpecKind
	Parts []uint64
}

// ParseSpec parses a user-supplied version expression. Accepted forms:
// "stable", "lts", 1-3 dotted numeric components (partial), or 4 dotted
// numeric components (exact). Anything else is rejected.
func ParseSpec(s string) (Spec, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return Spec{}, fmt.Errorf("empty version spec")
	case "stable":
		return Spec{Kind: SpecStable}, nil
	case "lts":
		return Spec{Kind: SpecLTS}, nil
	}

	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) > 4 {
		return Spec{}, fmt.Errorf("version spec %q: at most 4 components", s)
	}

	nums := make([]uint64, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return Spec{}, fmt.Errorf("version spec %q: component %q is not numeric", s, part)
		}
		nums = append(nums, n)
	}

	kind := SpecPartial
	if len(nums) == 4 {
		kind = SpecExact
	}
	return Spec{Kind: kind, Parts: nums}, nil
}

// Exact returns the exact version named by the spec. Only valid for SpecExact.
func (s Spec) Exact() Version {
	var v Version
	copy(v[:], s.Parts)
	return v
}

// Matches reports whether the spec's leading components equal the
// corresponding components of v. Only meaningful for partial and exact specs.
func (s Spec) Matches(v Version) bool {
	for i, part := range s.Parts {
		if v[i] != part {
			return false
		}
	}
	return true
}

// String renders the spec the way the user typed it.
func (s Spec) String() string {
	switch s.Kind {
	case SpecStable:
		return "stable"
	case SpecLTS:
		return "lts"
	default:
		parts := make([]string, len(s.Parts))
		for i, p := range s.Parts {
			parts[i] = strconv.FormatUint(p, 10)
		}
		return strings.Join(parts, ".")
	}
}
