package scan

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Prober probes a single socket, retrying internally up to tries times.
type Prober interface {
	Probe(ctx context.Context, sock Socket) Result
}

// Pool maintains exactly batchSize in-flight probes by running batchSize
// fixed goroutines, each pulling the next socket from a shared iterator
// under a mutex and probing it. Pulling under the mutex means that even
// though completions arrive out of order, the PULL order still strictly
// follows the iterator's port-outer/ip-inner fairness guarantee.
type Pool struct {
	iter      *SocketIterator
	prober    Prober
	batchSize int
	log       logrus.FieldLogger

	mu sync.Mutex
}

// NewPool builds a Pool over iter, running batchSize worker goroutines.
func NewPool(iter *SocketIterator, prober Prober, batchSize int, log logrus.FieldLogger) *Pool {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Pool{iter: iter, prober: prober, batchSize: batchSize, log: log}
}

func (p *Pool) next() (Socket, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.iter.Next()
}

// Run drains the iterator, sending every probe's Result on the returned
// channel, then closes it. It stops early and returns a *FatalError if
// any probe reports descriptor exhaustion.
func (p *Pool) Run(ctx context.Context) (<-chan Result, <-chan error) {
	out := make(chan Result, p.batchSize)
	fatal := make(chan error, 1)

	ctx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	wg.Add(p.batchSize)
	for i := 0; i < p.batchSize; i++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				default:
				}
				sock, ok := p.next()
				if !ok {
					return
				}
				res := p.prober.Probe(ctx, sock)
				var fe *FatalError
				if res.Outcome == OutcomeError && asFatal(res.Err, &fe) {
					select {
					case fatal <- fe:
						cancel()
					default:
					}
					return
				}
				select {
				case out <- res:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		cancel()
		close(out)
		close(fatal)
	}()

	return out, fatal
}

func asFatal(err error, target **FatalError) bool {
	for err != nil {
		if fe, ok := err.(*FatalError); ok {
			*target = fe
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
