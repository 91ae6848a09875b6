// Package version defines the exact four-part ClickHouse version value and
// the user-facing version spec ("stable", "lts", partial, exact) parsed once
// at the CLI boundary.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is an exact four-component release version, e.g. 25.12.5.44.
// Versions order component-wise numerically, never lexically.
type Version [4]uint64

// Parse converts an exact version string into a Version. All four components
// must be present and numeric.
func Parse(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return Version{}, fmt.Errorf("version %q: expected 4 components, got %d", s, len(parts))
	}

	var v Version
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return Version{}, fmt.Errorf("version %q: component %q is not numeric", s, part)
		}
		v[i] = n
	}
	return v, nil
}

// String renders the dotted form, e.g. "25.12.5.44".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v[0], v[1], v[2], v[3])
}

// Compare returns -1, 0, or 1 ordering a against b component-wise.
func Compare(a, b Version) int {
	for i := range a {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return 0
}

// Less reports whether a orders before b.
func Less(a, b Version) bool {
	return Compare(a, b) < 0
}
