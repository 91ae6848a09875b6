package catalog

import (
	"testing"
	"time"
)

func TestParseTagChannels(t *testing.T) {
	published := time.Date(2025, 12, 5, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		tag     string
		version string
		channel Channel
	}{
		{"v25.12.5.44-stable", "25.12.5.44", ChannelStable},
		{"v24.8.10.6-lts", "24.8.10.6", ChannelLTS},
		{"v25.13.0.1-prestable", "25.13.0.1", ChannelOther},
	}

	for _, tc := range cases {
		entry, err := ParseTag(tc.tag, published)
		if err != nil {
			t.Errorf("ParseTag(%q): %v", tc.tag, err)
			continue
		}
		if entry.Version.String() != tc.version {
			t.Errorf("ParseTag(%q).Version = %s, want %s", tc.tag, entry.Version, tc.version)
		}
		if entry.Channel != tc.channel {
			t.Errorf("ParseTag(%q).Channel = %s, want %s", tc.tag, entry.Channel, tc.channel)
		}
		if entry.Tag != tc.tag {
			t.Errorf("ParseTag(%q).Tag = %s", tc.tag, entry.Tag)
		}
		if !entry.PublishedAt.Equal(published) {
			t.Errorf("ParseTag(%q).PublishedAt = %v", tc.tag, entry.PublishedAt)
		}
	}
}

func TestParseTagRejectsNonReleaseTags(t *testing.T) {
	cases := []string{"25.12.5.44-stable", "v25.12-stable", "release-tooling", "v"}
	for _, tag := range cases {
		if _, err := ParseTag(tag, time.Time{}); err == nil {
			t.Errorf("ParseTag(%q) succeeded, want error", tag)
		}
	}
}
