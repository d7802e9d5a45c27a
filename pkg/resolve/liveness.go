package resolve

import (
	"context"
	"net"
	"net/netip"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

// LivenessFilter is an opt-in pre-scan step (the CLI's --ping-filter)
// that drops addresses which don't answer an ICMP echo, shrinking the
// set a ScanPlan is built from. It never changes probe semantics; it
// only changes which hosts ever reach the Socket Iterator. Adapted from
// the teacher's ICMPScanner, which additionally fell back to a TCP
// connect probe when raw ICMP sockets aren't permitted (no root); that
// fallback is kept since it's the only way this check works unprivileged.
type LivenessFilter struct {
	Timeout time.Duration
	Workers int
	Log     logrus.FieldLogger
}

// Filter returns only the addresses in ips that answered either an ICMP
// echo or a TCP connect probe on a handful of common ports.
func (f *LivenessFilter) Filter(ctx context.Context, ips []netip.Addr) []netip.Addr {
	if len(ips) == 0 {
		return ips
	}
	workers := f.Workers
	if workers < 1 {
		workers = 32
	}
	if workers > len(ips) {
		workers = len(ips)
	}

	in := make(chan netip.Addr, len(ips))
	for _, ip := range ips {
		in <- ip
	}
	close(in)

	var mu sync.Mutex
	var alive []netip.Addr
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for ip := range in {
				if f.probe(ctx, ip) {
					mu.Lock()
					alive = append(alive, ip)
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()
	return alive
}

func (f *LivenessFilter) probe(ctx context.Context, ip netip.Addr) bool {
	if f.pingICMP(ip) {
		return true
	}
	return f.pingTCP(ctx, ip)
}

func (f *LivenessFilter) pingICMP(ip netip.Addr) bool {
	if ip.Is6() {
		return false
	}
	conn, err := icmp.ListenPacket("ip4:icmp", "0.0.0.0")
	if err != nil {
		return false
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(f.Timeout)); err != nil {
		return false
	}

	msg := &icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{ID: os.Getpid() & 0xffff, Seq: 1, Data: []byte("farscan")},
	}
	data, err := msg.Marshal(nil)
	if err != nil {
		return false
	}

	dst, err := net.ResolveIPAddr("ip4", ip.String())
	if err != nil {
		return false
	}
	if _, err := conn.WriteTo(data, dst); err != nil {
		return false
	}

	reply := make([]byte, 1500)
	_, _, err = conn.ReadFrom(reply)
	return err == nil
}

func (f *LivenessFilter) pingTCP(ctx context.Context, ip netip.Addr) bool {
	for _, port := range []int{22, 80, 443, 445, 3389} {
		dialer := net.Dialer{Timeout: f.Timeout}
		conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(ip.String(), strconv.Itoa(port)))
		if err == nil {
			conn.Close()
			return true
		}
	}
	return false
}
