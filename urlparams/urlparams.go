// Package urlparams decomposes and rebuilds URL query strings for the
// minimal-URL search. Extraction preserves the order in which parameter
// names first appear so that candidate enumeration is deterministic;
// rebuilding encodes parameters sorted by key so that output URLs are
// reproducible across runs.
package urlparams

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrMalformed is returned when a URL cannot be decomposed into
// scheme, host, path and query.
var ErrMalformed = errors.New("urlparams: malformed URL")

// Params is an ordered query-parameter mapping. Keys holds parameter
// names in first-appearance order; Values maps each name to its value
// (duplicate names collapse to the last value, matching standard
// query-string parsing).
type Params struct {
	Keys   []string
	Values map[string]string
}

// Len returns the number of distinct parameter names.
func (p Params) Len() int { return len(p.Keys) }

// Subset returns a new Params restricted to the given keys, in the
// given order. Unknown keys are skipped.
func (p Params) Subset(keys []string) Params {
	sub := Params{Values: make(map[string]string, len(keys))}
	for _, k := range keys {
		v, ok := p.Values[k]
		if !ok {
			continue
		}
		sub.Keys = append(sub.Keys, k)
		sub.Values[k] = v
	}
	return sub
}

// Extract parses the query component of rawURL into an ordered
// parameter mapping. Pairs whose name or value fail percent-decoding
// are skipped rather than failing the whole URL.
func Extract(rawURL string) (Params, error) {
	u, err := parse(rawURL)
	if err != nil {
		return Params{}, err
	}

	p := Params{Values: make(map[string]string)}
	for _, pair := range strings.Split(u.RawQuery, "&") {
		if pair == "" {
			continue
		}
		name, value, _ := strings.Cut(pair, "=")
		name, err := url.QueryUnescape(name)
		if err != nil || name == "" {
			continue
		}
		value, err = url.QueryUnescape(value)
		if err != nil {
			continue
		}
		if _, seen := p.Values[name]; !seen {
			p.Keys = append(p.Keys, name)
		}
		p.Values[name] = value
	}
	return p, nil
}

// Build reconstructs a URL from baseURL's scheme, host, path and
// fragment with the query component replaced by params. The query is
// encoded in sorted key order.
func Build(baseURL string, params Params) (string, error) {
	u, err := parse(baseURL)
	if err != nil {
		return "", err
	}

	if params.Len() == 0 {
		u.RawQuery = ""
		return u.String(), nil
	}

	v := make(url.Values, params.Len())
	for _, k := range params.Keys {
		v.Set(k, params.Values[k])
	}
	u.RawQuery = v.Encode() // Encode sorts by key
	return u.String(), nil
}

// Strip returns rawURL with its query component removed.
func Strip(rawURL string) (string, error) {
	return Build(rawURL, Params{})
}

// parse wraps url.Parse and requires an absolute http(s)-style URL:
// a URL without scheme or host cannot be rendered and is rejected
// before any network activity.
func parse(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: missing scheme or host in %q", ErrMalformed, rawURL)
	}
	return u, nil
}
