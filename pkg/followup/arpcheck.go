package followup

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/mdlayher/arp"
)

// ARPRunner resolves the hardware address behind a discovered socket's IP
// on the local segment. Grounded on the teacher's pkg/network/arp.go
// ARPScanner, adapted from a standalone subnet sweep into a per-finding
// follow-up: it only runs when the finding's IP is reachable on a local
// interface, it does not sweep a CIDR itself.
type ARPRunner struct {
	Timeout time.Duration
}

func NewARPRunner() *ARPRunner {
	return &ARPRunner{Timeout: 2 * time.Second}
}

func (r *ARPRunner) Name() string { return "arp-check" }

// Applies only when the target address is IPv4 and lives in a directly
// connected subnet; ARP does not route.
func (r *ARPRunner) Applies(f Finding) bool {
	addr, err := netip.ParseAddr(f.Host)
	if err != nil || !addr.Is4() {
		return false
	}
	_, ok := r.interfaceFor(addr)
	return ok
}

func (r *ARPRunner) Run(ctx context.Context, f Finding) (string, error) {
	addr, err := netip.ParseAddr(f.Host)
	if err != nil {
		return "", fmt.Errorf("parse host: %w", err)
	}

	iface, ok := r.interfaceFor(addr)
	if !ok {
		return "", fmt.Errorf("no local interface routes to %s", f.Host)
	}

	client, err := arp.Dial(iface)
	if err != nil {
		return "", fmt.Errorf("arp dial on %s: %w", iface.Name, err)
	}
	defer client.Close()

	if err := client.SetDeadline(time.Now().Add(r.Timeout)); err != nil {
		return "", fmt.Errorf("set deadline: %w", err)
	}

	mac, err := client.Resolve(addr)
	if err != nil {
		return "", fmt.Errorf("arp resolve %s: %w", f.Host, err)
	}

	return fmt.Sprintf("%s is at %s (%s)", f.Host, mac.String(), iface.Name), nil
}

// interfaceFor returns the local interface whose subnet contains addr.
func (r *ARPRunner) interfaceFor(addr netip.Addr) (*net.Interface, bool) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, false
	}
	for i := range ifaces {
		iface := ifaces[i]
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ipNet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			prefix, err := netAddrToPrefix(ipNet)
			if err != nil {
				continue
			}
			if prefix.Contains(addr) {
				return &iface, true
			}
		}
	}
	return nil, false
}

func netAddrToPrefix(ipNet *net.IPNet) (netip.Prefix, error) {
	addr, ok := netip.AddrFromSlice(ipNet.IP)
	if !ok {
		return netip.Prefix{}, fmt.Errorf("invalid ip %v", ipNet.IP)
	}
	addr = addr.Unmap()
	ones, _ := ipNet.Mask.Size()
	return netip.PrefixFrom(addr, ones).Masked(), nil
}
