package scan

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/sirupsen/logrus"
)

// UDPProber implements Prober with a send-and-wait probe: UDP gives no
// closed/open signal for silence, so only a reply counts as open.
type UDPProber struct {
	Timeout  time.Duration
	Tries    int
	Payloads PayloadTable
	Log      logrus.FieldLogger
}

func (p *UDPProber) Probe(ctx context.Context, sock Socket) Result {
	tries := p.Tries
	if tries < 1 {
		tries = 1
	}
	payload := p.Payloads.Lookup(sock.Port)

	var lastErr error
	for attempt := 1; attempt <= tries; attempt++ {
		ok, err := p.attempt(ctx, sock, payload)
		if err != nil {
			if isDescriptorExhaustion(err) {
				return Result{Socket: sock, Outcome: OutcomeError, Err: &FatalError{Err: err}}
			}
			return Result{Socket: sock, Outcome: OutcomeError, Err: err}
		}
		if ok {
			return Result{Socket: sock, Outcome: OutcomeOpen}
		}
		lastErr = fmt.Errorf("udp scan timed out for all tries on socket %s", sock)
	}
	return Result{Socket: sock, Outcome: OutcomeError, Err: lastErr}
}

func (p *UDPProber) attempt(ctx context.Context, sock Socket, payload []byte) (bool, error) {
	localAddr := "0.0.0.0:0"
	if sock.Addr.Is6() {
		localAddr = "[::]:0"
	}

	local, err := net.ResolveUDPAddr("udp", localAddr)
	if err != nil {
		return false, err
	}

	conn, err := net.ListenUDP("udp", local)
	if err != nil {
		return false, err
	}
	defer conn.Close()

	remote := &net.UDPAddr{IP: net.IP(sock.Addr.AsSlice()), Port: int(sock.Port)}
	if err := conn.SetDeadline(time.Now().Add(p.Timeout)); err != nil {
		return false, err
	}
	if _, err := conn.WriteToUDP(payload, remote); err != nil {
		return false, err
	}

	buf := make([]byte, 1024)
	_, _, err = conn.ReadFromUDP(buf)
	if err != nil {
		if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
