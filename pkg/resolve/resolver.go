package resolve

import (
	"net"
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// lookupFirstSystem asks the OS resolver and keeps only the first
// address, matching the source behavior's asymmetry with the backup
// resolver path (see DESIGN.md Open Question 1).
func lookupFirstSystem(host string) (netip.Addr, bool) {
	addrs, err := net.LookupHost(host)
	if err != nil || len(addrs) == 0 {
		return netip.Addr{}, false
	}
	addr, err := netip.ParseAddr(addrs[0])
	if err != nil {
		return netip.Addr{}, false
	}
	return addr, true
}

// dnsResolver is the custom/backup resolver: either a fixed set of
// resolver IPs supplied by the user (--resolver), or, absent any, the
// nameservers from the host's /etc/resolv.conf, or, absent those too, a
// DNS-over-TLS fallback to a well-known public recursive resolver.
type dnsResolver struct {
	servers []string // host:port, tried in order
	tls     bool
	timeout time.Duration
}

// NewResolver builds the backup resolver. spec is either a path to a
// newline-delimited list of resolver IPs, or a comma-delimited list of
// IPs inline. An empty spec mirrors the source's two-step fallback: try
// the host's own DNS configuration first, and only drop to DNS-over-TLS
// against a public recursive if the host has none.
func NewResolver(spec string) Resolver {
	if spec != "" {
		if ips := parseResolverIPs(spec); len(ips) > 0 {
			servers := make([]string, 0, len(ips))
			for _, ip := range ips {
				servers = append(servers, net.JoinHostPort(ip, "53"))
			}
			return &dnsResolver{servers: servers, timeout: 5 * time.Second}
		}
	}

	if r, ok := systemResolver(); ok {
		return r
	}
	return &dnsResolver{servers: []string{"1.1.1.1:853"}, tls: true, timeout: 5 * time.Second}
}

// systemResolver attempts to build a resolver from the host's own DNS
// configuration, matching the source's Resolver::from_system_conf()
// step before it drops to a TLS resolver. Returns ok=false if the host
// has no readable resolver config or it names no nameservers.
func systemResolver() (Resolver, bool) {
	cfg, err := dns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil || cfg == nil || len(cfg.Servers) == 0 {
		return nil, false
	}
	port := cfg.Port
	if port == "" {
		port = "53"
	}
	servers := make([]string, 0, len(cfg.Servers))
	for _, s := range cfg.Servers {
		servers = append(servers, net.JoinHostPort(s, port))
	}
	return &dnsResolver{servers: servers, timeout: 5 * time.Second}, true
}

// parseResolverIPs reads spec as a file of newline-delimited IPs; if that
// fails, treats it as a comma-delimited inline list.
func parseResolverIPs(spec string) []string {
	if data, err := os.ReadFile(spec); err == nil {
		var ips []string
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if _, err := netip.ParseAddr(line); err == nil {
				ips = append(ips, line)
			}
		}
		return ips
	}

	var ips []string
	for _, tok := range strings.Split(spec, ",") {
		tok = strings.TrimSpace(tok)
		if _, err := netip.ParseAddr(tok); err == nil {
			ips = append(ips, tok)
		}
	}
	return ips
}

func (r *dnsResolver) LookupFirst(host string) (netip.Addr, bool) {
	all := r.LookupAll(host)
	if len(all) == 0 {
		return netip.Addr{}, false
	}
	return all[0], true
}

func (r *dnsResolver) LookupAll(host string) []netip.Addr {
	fqdn := dns.Fqdn(host)
	client := &dns.Client{Timeout: r.timeout}
	if r.tls {
		client.Net = "tcp-tls"
	} else {
		client.Net = "udp"
	}

	for _, server := range r.servers {
		addrs := r.query(client, fqdn, server, dns.TypeA)
		addrs = append(addrs, r.query(client, fqdn, server, dns.TypeAAAA)...)
		if len(addrs) > 0 {
			return addrs
		}
	}
	return nil
}

func (r *dnsResolver) query(client *dns.Client, fqdn, server string, qtype uint16) []netip.Addr {
	msg := new(dns.Msg)
	msg.SetQuestion(fqdn, qtype)
	msg.RecursionDesired = true

	resp, _, err := client.Exchange(msg, server)
	if err != nil || resp == nil {
		return nil
	}

	var out []netip.Addr
	for _, rr := range resp.Answer {
		switch rec := rr.(type) {
		case *dns.A:
			if addr, ok := netip.AddrFromSlice(rec.A.To4()); ok {
				out = append(out, addr)
			}
		case *dns.AAAA:
			if addr, ok := netip.AddrFromSlice(rec.AAAA.To16()); ok {
				out = append(out, addr)
			}
		}
	}
	return out
}
