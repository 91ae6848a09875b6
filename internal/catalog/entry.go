// Package catalog fetches the remote ClickHouse release listing and resolves
// version specs against it. The resolver is a pure function so it tests
// without any network access.
package catalog

import (
	"fmt"
	"strings"
	"time"

	"chv/internal/version"
)

// Channel classifies a release for alias resolution.
type Channel string

const (
	ChannelStable Channel = "stable"
	ChannelLTS    Channel = "lts"
	ChannelOther  Channel = "other"
)

// ReleaseEntry is one row of the remote catalog.
type ReleaseEntry struct {
	Version     version.Version `json:"version"`
	Tag         string          `json:"tag"`
	Channel     Channel         `json:"channel"`
	PublishedAt time.Time       `json:"published_at"`
}

// ParseTag maps a release tag like "v25.12.5.44-stable" onto a ReleaseEntry.
// Tags that do not carry a four-part version are rejected; unknown suffixes
// classify as ChannelOther.
func ParseTag(tag string, publishedAt time.Time) (ReleaseEntry, error) {
	body, ok := strings.CutPrefix(tag, "v")
	if !ok {
		return ReleaseEntry{}, fmt.Errorf("tag %q: missing v prefix", tag)
	}

	versionPart, suffix, _ := strings.Cut(body, "-")
	v, err := version.Parse(versionPart)
	if err != nil {
		return ReleaseEntry{}, fmt.Errorf("tag %q: %w", tag, err)
	}

	channel := ChannelOther
	switch suffix {
	case "stable":
		channel = ChannelStable
	case "lts":
		channel = ChannelLTS
	}

	return ReleaseEntry{
		Version:     v,
		Tag:         tag,
		Channel:     channel,
		PublishedAt: publishedAt,
	}, nil
}
