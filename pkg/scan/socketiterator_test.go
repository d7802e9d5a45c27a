package scan

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSocketIteratorPortOuterIPInner(t *testing.T) {
	ips := []netip.Addr{
		netip.MustParseAddr("127.0.0.1"),
		netip.MustParseAddr("192.168.0.1"),
	}
	ports := []uint16{22, 80, 443}
	it := NewSocketIterator(ips, ports)

	want := []Socket{
		{Addr: ips[0], Port: 22}, {Addr: ips[1], Port: 22},
		{Addr: ips[0], Port: 80}, {Addr: ips[1], Port: 80},
		{Addr: ips[0], Port: 443}, {Addr: ips[1], Port: 443},
	}
	for i, w := range want {
		got, ok := it.Next()
		assert.True(t, ok, "emission %d", i)
		assert.Equal(t, w, got)
	}
	_, ok := it.Next()
	assert.False(t, ok)
}

func TestSocketIteratorScenario1(t *testing.T) {
	ips := []netip.Addr{
		netip.MustParseAddr("192.168.0.0"),
		netip.MustParseAddr("192.168.0.1"),
		netip.MustParseAddr("192.168.0.2"),
		netip.MustParseAddr("192.168.0.3"),
	}
	ports := []uint16{80, 443}
	it := NewSocketIterator(ips, ports)

	var got []Socket
	for {
		s, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, s)
	}
	assert.Len(t, got, 8)
	assert.Equal(t, uint16(80), got[0].Port)
	assert.Equal(t, uint16(443), got[4].Port)
	assert.True(t, got[0].Addr == ips[0] && got[3].Addr == ips[3])
}

func TestSocketIteratorEmpty(t *testing.T) {
	it := NewSocketIterator(nil, []uint16{80})
	_, ok := it.Next()
	assert.False(t, ok)

	it = NewSocketIterator([]netip.Addr{netip.MustParseAddr("127.0.0.1")}, nil)
	_, ok = it.Next()
	assert.False(t, ok)
}
