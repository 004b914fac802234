package services

import (
	"strconv"
	"strings"
)

// parseIDList parses a comma separated list such as "1,2,3". A single
// non-numeric entry rejects the whole list.
func parseIDList(items string) ([]uint, error) {
	if strings.TrimSpace(items) == "" {
		return nil, ErrMissingArguments
	}
	parts := strings.Split(items, ",")
	ids := make([]uint, 0, len(parts))
	for _, part := range parts {
		id, ok := parseID(part)
		if !ok {
			return nil, ErrInvalidIDList
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parseID accepts only plain decimal digits.
func parseID(s string) (uint, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// parseOptionalID parses a query filter; an empty value means no filter.
func parseOptionalID(s string) (*uint, error) {
	if s == "" {
		return nil, nil
	}
	id, ok := parseID(s)
	if !ok {
		return nil, ErrInvalidArguments
	}
	return &id, nil
}

// parseTruth reads a boolean the way configuration flags are usually
// written: y, yes, t, true, on, 1 and their negative counterparts.
func parseTruth(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "t", "true", "on", "1":
		return true, nil
	case "n", "no", "f", "false", "off", "0":
		return false, nil
	}
	return false, &ArgumentError{Msg: "invalid truth value '" + s + "'"}
}
