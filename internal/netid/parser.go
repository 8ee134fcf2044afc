package netid

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// segmentRegex matches a single segment, e.g. `name` or `name[1]`.
var segmentRegex = regexp.MustCompile(`^([a-zA-Z_][a-zA-Z0-9_-]*)(?:\[(\d+)\])?$`)

// Parse creates an Address from its canonical string representation.
func Parse(raw string) (*Address, error) {
	if raw == "" {
		return nil, fmt.Errorf("address cannot be empty")
	}

	addr := &Address{}
	for _, segmentStr := range strings.Split(raw, ".") {
		if segmentStr == "" {
			return nil, fmt.Errorf("address %q contains an empty segment", raw)
		}

		matches := segmentRegex.FindStringSubmatch(segmentStr)
		if matches == nil {
			return nil, fmt.Errorf("invalid address segment %q", segmentStr)
		}

		segment := NewSegment(matches[1])
		if matches[2] != "" {
			index, err := strconv.Atoi(matches[2])
			if err != nil {
				return nil, fmt.Errorf("invalid index in segment %q: %w", segmentStr, err)
			}
			segment.Index = index
		}
		addr.Path = append(addr.Path, segment)
	}

	return addr, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level literals.
func MustParse(raw string) *Address {
	a, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return a
}
