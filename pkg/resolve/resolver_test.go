package resolve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResolverExplicitServersSkipTLS(t *testing.T) {
	r := NewResolver("9.9.9.9,149.112.112.112")
	dr, ok := r.(*dnsResolver)
	require.True(t, ok)
	assert.False(t, dr.tls)
	assert.Equal(t, []string{"9.9.9.9:53", "149.112.112.112:53"}, dr.servers)
}

func TestNewResolverEmptySpecFallsBackToTLSWhenNoSystemConfig(t *testing.T) {
	r := NewResolver("")
	dr, ok := r.(*dnsResolver)
	require.True(t, ok)
	if dr.tls {
		assert.Equal(t, []string{"1.1.1.1:853"}, dr.servers)
	}
}

func TestClientConfigFromFileReadsNameservers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resolv.conf")
	require.NoError(t, os.WriteFile(path, []byte("nameserver 192.0.2.1\nnameserver 192.0.2.2\n"), 0o644))

	cfg, err := dns.ClientConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"192.0.2.1", "192.0.2.2"}, cfg.Servers)
}
