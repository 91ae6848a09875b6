package catalog

import (
	"errors"
	"fmt"

	"chv/internal/version"
)

// ErrNoMatchingVersion reports a spec that resolves to nothing in the
// catalog. `chv list --remote` shows what is actually published.
var ErrNoMatchingVersion = errors.New("no matching version")

// Resolve deterministically picks one release for a spec. It performs no
// I/O; the catalog is supplied by the caller.
//
// Exact specs require a published entry — installability needs a confirmed
// artifact, so there is no fallback to a guessed download URL. Channel
// aliases pick the newest release on their channel; partial specs pick the
// newest release whose leading components match, regardless of channel.
func Resolve(spec version.Spec, entries []ReleaseEntry) (ReleaseEntry, error) {
	switch spec.Kind {
	case version.SpecExact:
		want := spec.Exact()
		for _, entry := range entries {
			if entry.Version == want {
				// First exact numeric match is authoritative.
				return entry, nil
			}
		}
		return ReleaseEntry{}, fmt.Errorf("%w for %s", ErrNoMatchingVersion, spec)

	case version.SpecStable:
		return maxEntry(spec, entries, func(e ReleaseEntry) bool {
			return e.Channel == ChannelStable
		})

	case version.SpecLTS:
		return maxEntry(spec, entries, func(e ReleaseEntry) bool {
			return e.Channel == ChannelLTS
		})

	default: // version.SpecPartial
		return maxEntry(spec, entries, func(e ReleaseEntry) bool {
			return spec.Matches(e.Version)
		})
	}
}

// maxEntry selects the maximum matching entry by version ordering, breaking
// ties between identical version tuples by the more recent publish time.
func maxEntry(spec version.Spec, entries []ReleaseEntry, match func(ReleaseEntry) bool) (ReleaseEntry, error) {
	var best ReleaseEntry
	found := false

	for _, entry := range entries {
		if !match(entry) {
			continue
		}
		if !found {
			best, found = entry, true
			continue
		}
		switch version.Compare(entry.Version, best.Version) {
		case 1:
			best = entry
		case 0:
			if entry.PublishedAt.After(best.PublishedAt) {
				best = entry
			}
		}
	}

	if !found {
		return ReleaseEntry{}, fmt.Errorf("%w for %s", ErrNoMatchingVersion, spec)
	}
	return best, nil
}
