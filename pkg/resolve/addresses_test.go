package resolve

import (
	"net/netip"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addrs(t *testing.T, ss ...string) []netip.Addr {
	t.Helper()
	out := make([]netip.Addr, 0, len(ss))
	for _, s := range ss {
		out = append(out, netip.MustParseAddr(s))
	}
	return out
}

func TestParseAddressesCIDRIncludesNetworkAndBroadcast(t *testing.T) {
	got := ParseAddresses([]string{"192.168.0.0/30"}, nil, Options{})
	assert.Equal(t, addrs(t, "192.168.0.0", "192.168.0.1", "192.168.0.2", "192.168.0.3"), got)
}

func TestParseAddressesWithAddressExclusion(t *testing.T) {
	got := ParseAddresses([]string{"192.168.0.0/30"}, []string{"192.168.0.1"}, Options{})
	assert.Equal(t, addrs(t, "192.168.0.0", "192.168.0.2", "192.168.0.3"), got)
}

func TestParseAddressesWithCIDRExclusion(t *testing.T) {
	got := ParseAddresses([]string{"192.168.0.0/29"}, []string{"192.168.0.0/30"}, Options{})
	assert.Equal(t, addrs(t, "192.168.0.4", "192.168.0.5", "192.168.0.6", "192.168.0.7"), got)
}

func TestParseAddressesDropsUnresolvable(t *testing.T) {
	got := ParseAddresses([]string{"127.0.0.1", "im_wrong"}, nil, Options{})
	assert.Equal(t, addrs(t, "127.0.0.1"), got)
}

func TestParseAddressesDeduplicates(t *testing.T) {
	got := ParseAddresses([]string{"79.98.104.0/22", "79.98.104.0/24"}, nil, Options{})
	assert.Len(t, got, 1024)
}

func TestParseAddressesOverspecificCIDRMatchesNetwork(t *testing.T) {
	got := ParseAddresses([]string{"192.128.1.1/24"}, nil, Options{})
	assert.Len(t, got, 256)
}

func TestParseAddressesFromFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "hosts*.txt")
	require.NoError(t, err)
	_, err = f.WriteString("127.0.0.1\n\nim_wrong\n192.168.0.0/30\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	got := ParseAddresses([]string{f.Name()}, nil, Options{})
	assert.Len(t, got, 5)
}

func TestParseAddressesEmptyFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "empty*.txt")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	got := ParseAddresses([]string{f.Name()}, nil, Options{})
	assert.Empty(t, got)
}
