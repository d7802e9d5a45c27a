package scan

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

// TCPProber implements Prober with a connect-scan: dial within a
// deadline, and on success shut down both halves immediately rather than
// letting the connection die by finalization, which is too slow at scan
// concurrency and would otherwise starve the descriptor table.
type TCPProber struct {
	Timeout time.Duration
	Tries   int
	Log     logrus.FieldLogger
}

func (p *TCPProber) Probe(ctx context.Context, sock Socket) Result {
	tries := p.Tries
	if tries < 1 {
		tries = 1
	}

	dialer := net.Dialer{Timeout: p.Timeout}
	target := net.JoinHostPort(sock.Addr.String(), fmt.Sprintf("%d", sock.Port))

	var lastErr error
	for attempt := 1; attempt <= tries; attempt++ {
		conn, err := dialer.DialContext(ctx, "tcp", target)
		if err == nil {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				tcpConn.CloseRead()
				tcpConn.CloseWrite()
			}
			conn.Close()
			return Result{Socket: sock, Outcome: OutcomeOpen}
		}

		if isDescriptorExhaustion(err) {
			return Result{Socket: sock, Outcome: OutcomeError, Err: &FatalError{Err: err}}
		}

		lastErr = err
		if attempt < tries {
			continue
		}
	}

	return Result{Socket: sock, Outcome: OutcomeError, Err: fmt.Errorf("%w (%s)", lastErr, sock.Addr)}
}

// isDescriptorExhaustion matches the textual signal the kernel gives for
// EMFILE/ENFILE, the only condition that must abort the whole scan.
func isDescriptorExhaustion(err error) bool {
	if strings.Contains(strings.ToLower(err.Error()), "too many open files") {
		return true
	}
	var sysErr *os.SyscallError
	if errors.As(err, &sysErr) {
		return sysErr.Err == syscall.EMFILE || sysErr.Err == syscall.ENFILE
	}
	return false
}
