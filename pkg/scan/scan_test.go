package scan

import (
	"context"
	"net"
	"net/netip"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScannerFindsOpenTCPPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			c.Close()
		}
	}()

	port := uint16(ln.Addr().(*net.TCPAddr).Port)
	plan := NewPlan(
		[]netip.Addr{netip.MustParseAddr("127.0.0.1")},
		[]uint16{port},
		4, 200*time.Millisecond, 1, TCP, nil,
	)
	s := New(plan, nil)
	summary, err := s.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, summary.Open, 1)
	assert.Equal(t, port, summary.Open[0].Port)
}

func TestScannerReportsClosedAsError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	closedPort := uint16(ln.Addr().(*net.TCPAddr).Port)
	ln.Close()

	plan := NewPlan(
		[]netip.Addr{netip.MustParseAddr("127.0.0.1")},
		[]uint16{closedPort},
		2, 200*time.Millisecond, 1, TCP, nil,
	)
	s := New(plan, nil)
	summary, err := s.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, summary.Open)
	assert.Len(t, summary.Errors, 1)
}

type countingProber struct {
	inFlight, maxInFlight int64
	delay                 time.Duration
}

func (p *countingProber) Probe(ctx context.Context, sock Socket) Result {
	cur := atomic.AddInt64(&p.inFlight, 1)
	for {
		max := atomic.LoadInt64(&p.maxInFlight)
		if cur <= max || atomic.CompareAndSwapInt64(&p.maxInFlight, max, cur) {
			break
		}
	}
	time.Sleep(p.delay)
	atomic.AddInt64(&p.inFlight, -1)
	return Result{Socket: sock, Outcome: OutcomeOpen}
}

func TestPoolRespectsBatchSizeBound(t *testing.T) {
	var ips []netip.Addr
	for i := 0; i < 20; i++ {
		ips = append(ips, netip.AddrFrom4([4]byte{127, 0, 0, byte(1 + i%3)}))
	}
	ports := []uint16{1, 2, 3, 4, 5}
	iter := NewSocketIterator(ips, ports)
	prober := &countingProber{delay: 5 * time.Millisecond}
	pool := NewPool(iter, prober, 4, nil)

	results, fatal := pool.Run(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range results {
		}
	}()
	for range fatal {
	}
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt64(&prober.maxInFlight), int64(4))
}
