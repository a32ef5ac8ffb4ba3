// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package release

import (
	"fmt"
	"regexp"
	"strconv"
)

// Version is a numeric major.minor.patch triple. Pre-release and
// build suffixes are ignored.
type Version struct {
	Major, Minor, Patch int
}

var versionPattern = regexp.MustCompile(`(\d+)\.(\d+)\.(\d+)`)

// ParseVersion extracts the first X.Y.Z triple from text, which may be
// a bare version, a tag like "v6.2.1", or a banner line such as
// "CLIProxyAPI Version: 6.2.1, Commit: abc".
func ParseVersion(text string) (Version, bool) {
	match := versionPattern.FindStringSubmatch(text)
	if match == nil {
		return Version{}, false
	}
	var parts [3]int
	for i := range parts {
		value, err := strconv.Atoi(match[i+1])
		if err != nil {
			return Version{}, false
		}
		parts[i] = value
	}
	return Version{Major: parts[0], Minor: parts[1], Patch: parts[2]}, true
}

// Compare returns -1, 0 or +1 as v is older than, equal to or newer
// than other.
func (v Version) Compare(other Version) int {
	for _, pair := range [3][2]int{{v.Major, other.Major}, {v.Minor, other.Minor}, {v.Patch, other.Patch}} {
		switch {
		case pair[0] < pair[1]:
			return -1
		case pair[0] > pair[1]:
			return 1
		}
	}
	return 0
}

// Less reports whether v is older than other.
func (v Version) Less(other Version) bool { return v.Compare(other) < 0 }

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}
