package scan

import "net/netip"

// SocketIterator lazily enumerates the (ports x ips) cross product, ports
// outer, ips inner: within any window of len(ips) consecutive emissions
// every host is probed once on the same port before any host moves to the
// next port. That spreads load across targets instead of hammering one
// host's SYN queue. Memory use is O(len(ips)+len(ports)), never the full
// product.
type SocketIterator struct {
	ips      []netip.Addr
	ports    []uint16
	portIdx  int
	ipIdx    int
}

// NewSocketIterator builds an iterator over ips x ports. Both slices are
// referenced, not copied; callers must not mutate them during iteration.
func NewSocketIterator(ips []netip.Addr, ports []uint16) *SocketIterator {
	return &SocketIterator{ips: ips, ports: ports}
}

// Next returns the next socket and true, or a zero value and false once
// the cross product is exhausted.
func (it *SocketIterator) Next() (Socket, bool) {
	if len(it.ips) == 0 || len(it.ports) == 0 {
		return Socket{}, false
	}
	if it.portIdx >= len(it.ports) {
		return Socket{}, false
	}

	sock := Socket{Addr: it.ips[it.ipIdx], Port: it.ports[it.portIdx]}

	it.ipIdx++
	if it.ipIdx >= len(it.ips) {
		it.ipIdx = 0
		it.portIdx++
	}

	return sock, true
}
