// Package safeurl guards outbound navigation. The analyzer renders
// arbitrary caller-supplied URLs, so every target is checked against an
// http(s) scheme allow-list and private/loopback address ranges before
// any request leaves the process.
package safeurl

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
)

// MaxBody is the default cap for response body reads (10 MiB).
const MaxBody int64 = 10 << 20

// ErrPrivateAddress is returned when a URL targets a private or
// loopback address.
var ErrPrivateAddress = errors.New("safeurl: URL targets a private or loopback address")

// ErrUnsafeScheme is returned when a URL uses a non-HTTP(S) scheme.
var ErrUnsafeScheme = errors.New("safeurl: only http and https schemes are allowed")

// ErrBodyTooLarge is returned by LimitedReadAll when the limit is hit.
var ErrBodyTooLarge = errors.New("safeurl: response body exceeds limit")

// Validate checks that rawURL uses http/https, has a hostname, and
// does not resolve to a private or loopback IP. Hostnames are resolved
// so internal names cannot bypass the literal-IP check.
func Validate(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("safeurl: invalid URL: %w", err)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return ErrUnsafeScheme
	}
	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("safeurl: URL has no host")
	}

	if ip := net.ParseIP(host); ip != nil {
		if isPrivateIP(ip) {
			return ErrPrivateAddress
		}
		return nil
	}

	addrs, err := net.LookupHost(host)
	if err != nil {
		// DNS failure: let the connection attempt surface the real
		// network error instead of masking it here.
		return nil
	}
	for _, a := range addrs {
		if ip := net.ParseIP(a); ip != nil && isPrivateIP(ip) {
			return ErrPrivateAddress
		}
	}
	return nil
}

// LimitedReadAll reads at most maxBytes from r, returning ErrBodyTooLarge
// when the source holds more.
func LimitedReadAll(r io.Reader, maxBytes int64) ([]byte, error) {
	lr := io.LimitReader(r, maxBytes+1)
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, ErrBodyTooLarge
	}
	return data, nil
}

func isPrivateIP(ip net.IP) bool {
	return ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsUnspecified()
}
