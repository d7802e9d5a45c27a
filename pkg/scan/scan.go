package scan

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Scanner runs one Plan to completion.
type Scanner struct {
	Plan *Plan
	Log  logrus.FieldLogger
}

// New builds a Scanner for plan, defaulting Log to a discarding logger
// if none was given.
func New(plan *Plan, log logrus.FieldLogger) *Scanner {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Scanner{Plan: plan, Log: log}
}

// Summary is everything a run of Scanner.Run reports back: the open
// sockets found and the diagnostic errors collected along the way.
type Summary struct {
	Open   []Socket
	Errors []string
}

// Run drains the plan's iterator through a Concurrency Pool, collecting
// open sockets and a size-capped set of diagnostic errors. It returns a
// non-nil error only for a fatal, scan-aborting condition.
func (s *Scanner) Run(ctx context.Context, onOpen func(Socket)) (Summary, error) {
	plan := s.Plan
	iter := NewSocketIterator(plan.IPs, plan.Ports)

	var prober Prober
	if plan.Protocol == UDP {
		prober = &UDPProber{Timeout: plan.Timeout, Tries: plan.Tries, Payloads: plan.UDPPayloadTable, Log: s.Log}
	} else {
		prober = &TCPProber{Timeout: plan.Timeout, Tries: plan.Tries, Log: s.Log}
	}

	pool := NewPool(iter, prober, plan.BatchSize, s.Log)

	s.Log.WithFields(logrus.Fields{
		"batch_size": plan.BatchSize,
		"ips":        len(plan.IPs),
		"ports":      len(plan.Ports),
		"total":      len(plan.IPs) * len(plan.Ports),
		"protocol":   plan.Protocol,
	}).Debug("starting scan")

	results, fatal := pool.Run(ctx)

	errCap := len(plan.IPs) * 1000
	seenErrors := make(map[string]struct{})
	summary := Summary{}

	for results != nil || fatal != nil {
		select {
		case res, ok := <-results:
			if !ok {
				results = nil
				continue
			}
			switch res.Outcome {
			case OutcomeOpen:
				summary.Open = append(summary.Open, res.Socket)
				if onOpen != nil {
					onOpen(res.Socket)
				}
			case OutcomeError:
				msg := res.Err.Error()
				if _, seen := seenErrors[msg]; !seen && len(seenErrors) < errCap {
					seenErrors[msg] = struct{}{}
				}
			}
		case err, ok := <-fatal:
			if !ok {
				fatal = nil
				continue
			}
			if err != nil {
				return summary, fmt.Errorf("scan aborted: %w (try reducing batch size)", err)
			}
		}
	}

	for msg := range seenErrors {
		summary.Errors = append(summary.Errors, msg)
	}

	s.Log.WithField("open", len(summary.Open)).Debug("scan complete")
	return summary, nil
}
