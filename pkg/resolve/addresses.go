// Package resolve turns user-supplied address strings into the
// deduplicated, exclusion-filtered IP set a scan plan consumes.
package resolve

import (
	"net/netip"

	"github.com/sirupsen/logrus"
)

// Resolver looks up the IPs behind a hostname when the OS resolver can't
// or shouldn't be trusted, per spec's custom/backup resolver contract.
type Resolver interface {
	// LookupFirst returns only the first resolved IP, as the OS resolver
	// path does.
	LookupFirst(host string) (netip.Addr, bool)
	// LookupAll returns every resolved IP, as the backup resolver path
	// does. The asymmetry between the two is kept for fidelity to the
	// source behavior; see DESIGN.md.
	LookupAll(host string) []netip.Addr
}

// Options configures address resolution.
type Options struct {
	Resolver Resolver
	Log      logrus.FieldLogger
}

// ParseAddresses expands every address string (IP, CIDR, hostname, or
// file path) into a deduplicated, exclusion-filtered, insertion-ordered
// IP list. Unresolvable entries are warned about, never fatal here; the
// caller decides whether an empty result is fatal.
func ParseAddresses(addresses []string, exclude []string, opts Options) []netip.Addr {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	var ips []netip.Addr
	var unresolved []string

	for _, addr := range addresses {
		parsed := parseAddress(addr, opts.Resolver)
		if len(parsed) > 0 {
			ips = append(ips, parsed...)
			continue
		}
		unresolved = append(unresolved, addr)
	}

	for _, path := range unresolved {
		lines, err := ReadLines(path)
		if err != nil {
			log.Warnf("host %q could not be resolved", path)
			continue
		}
		any := false
		for _, line := range lines {
			if line == "" {
				log.Warnf("blank line in address file %q skipped", path)
				continue
			}
			parsed := parseAddress(line, opts.Resolver)
			if len(parsed) > 0 {
				ips = append(ips, parsed...)
				any = true
			} else {
				log.Warnf("host %q could not be resolved", line)
			}
		}
		if !any && len(lines) == 0 {
			log.Warnf("host %q could not be resolved", path)
		}
	}

	excluded := ParseExclusions(exclude, opts.Resolver)
	return dedupeExcept(ips, excluded)
}

// parseAddress classifies a single token per the spec's ordered rule:
// literal IP, then CIDR (host-bits-set forms included, matched to their
// containing network for fidelity), then OS name resolution (first IP
// only), then the backup resolver (all IPs).
func parseAddress(s string, resolver Resolver) []netip.Addr {
	if addr, err := netip.ParseAddr(s); err == nil {
		return []netip.Addr{addr}
	}

	if prefix, err := netip.ParsePrefix(s); err == nil {
		return expandPrefix(prefix.Masked())
	}

	if addr, ok := lookupFirstSystem(s); ok {
		return []netip.Addr{addr}
	}

	if resolver != nil {
		if all := resolver.LookupAll(s); len(all) > 0 {
			return all
		}
	}

	return nil
}

// expandPrefix enumerates every address in prefix, including the network
// and broadcast addresses, per spec's testable scenarios 1-3. This is a
// deliberate departure from a network-scanner convention (stripping
// network/broadcast) that the teacher's own CIDR helper followed.
func expandPrefix(prefix netip.Prefix) []netip.Addr {
	var ips []netip.Addr
	addr := prefix.Addr()
	for prefix.Contains(addr) {
		ips = append(ips, addr)
		next := addr.Next()
		if !next.IsValid() {
			break
		}
		addr = next
	}
	return ips
}

func dedupeExcept(ips []netip.Addr, excluded []netip.Prefix) []netip.Addr {
	seen := make(map[netip.Addr]struct{}, len(ips))
	out := make([]netip.Addr, 0, len(ips))
	for _, ip := range ips {
		if _, dup := seen[ip]; dup {
			continue
		}
		if inAny(ip, excluded) {
			continue
		}
		seen[ip] = struct{}{}
		out = append(out, ip)
	}
	return out
}

func inAny(ip netip.Addr, prefixes []netip.Prefix) bool {
	for _, p := range prefixes {
		if p.Contains(ip) {
			return true
		}
	}
	return false
}
