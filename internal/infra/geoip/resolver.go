package geoip

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"
)

// ErrUnavailable is returned when no database is loaded.
var ErrUnavailable = errors.New("geoip resolver unavailable")

// CountryResolver resolves ISO country codes from client addresses.
type CountryResolver interface {
	CountryCode(addr string) (string, error)
}

// Resolver answers country lookups from a local MaxMind GeoIP2 database.
// Lookups never touch the network.
type Resolver struct {
	reader *geoip2.Reader
}

// NewResolver opens the database at path. An empty path disables geo
// resolution and returns nil without error, so callers can treat the
// resolver as optional.
func NewResolver(path string) (CountryResolver, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geoip: open database: %w", err)
	}
	return &Resolver{reader: reader}, nil
}

// CountryCode returns the ISO 3166-1 code for addr, which may be a bare IP
// or an ip:port pair as extracted from proxy headers. Unknown addresses
// resolve to an empty code with no error.
func (r *Resolver) CountryCode(addr string) (string, error) {
	if r == nil || r.reader == nil {
		return "", ErrUnavailable
	}
	ip := parseAddr(addr)
	if ip == nil {
		return "", fmt.Errorf("geoip: invalid address %q", addr)
	}
	record, err := r.reader.Country(ip)
	if err != nil {
		return "", fmt.Errorf("geoip: lookup country: %w", err)
	}
	if record == nil {
		return "", nil
	}
	return record.Country.IsoCode, nil
}

// Close releases the underlying database reader.
func (r *Resolver) Close() error {
	if r == nil || r.reader == nil {
		return nil
	}
	return r.reader.Close()
}

func parseAddr(addr string) net.IP {
	addr = strings.TrimSpace(addr)
	if ip := net.ParseIP(addr); ip != nil {
		return ip
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return net.ParseIP(host)
	}
	return nil
}
