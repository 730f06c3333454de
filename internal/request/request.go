// Package request translates an inbound request URI into the (key,
// fields) pair the dispatcher consumes. The surrounding routing layer
// owns the transport; this package only parses.
package request

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/vk/actionhub/internal/behavior"
)

// ErrEmptyKey reports a URI with no action key component.
var ErrEmptyKey = errors.New("request has no action key")

// Parse splits a URI of the form "key?name=value&..." (a leading slash
// is tolerated) into the action key and its fields.
//
// Query values arrive as strings; Parse coerces each one to the
// narrowest of bool, number or string, so a manifest declaring a
// numeric field accepts "x=5" without every caller hand-converting.
// Repeated names keep the first value.
func Parse(uri string) (string, behavior.Fields, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return "", nil, fmt.Errorf("parse request %q: %w", uri, err)
	}

	key := strings.Trim(parsed.Path, "/")
	if key == "" {
		return "", nil, fmt.Errorf("parse request %q: %w", uri, ErrEmptyKey)
	}
	if strings.Contains(key, "/") {
		return "", nil, fmt.Errorf("parse request %q: key must not contain '/'", uri)
	}

	values, err := url.ParseQuery(parsed.RawQuery)
	if err != nil {
		return "", nil, fmt.Errorf("parse request %q: %w", uri, err)
	}

	fields := make(behavior.Fields, len(values))
	for name, vals := range values {
		if len(vals) == 0 {
			continue
		}
		fields[name] = coerce(vals[0])
	}
	return key, fields, nil
}

// coerce narrows a query string to bool or number where it parses
// cleanly, and leaves it a string otherwise.
func coerce(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return int(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
