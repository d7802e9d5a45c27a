// Package followup hosts the external collaborators spec.md names only
// as an interface: code that runs after the core has decided a socket is
// open, never code the core calls into. None of this package may feed
// information back into scan semantics.
package followup

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Finding is what the core hands to a follow-up Runner once it decides a
// socket is open.
type Finding struct {
	Host    string
	Port    int
	Service string // best-effort hint (ftp, http, https, ...), may be empty
}

// Runner is one follow-up collaborator. Implementations must be
// non-destructive and must not guess credentials.
type Runner interface {
	Name() string
	// Applies reports whether this runner has anything to do for f.
	Applies(f Finding) bool
	// Run executes the follow-up action, returning a short human-readable
	// result line or an error.
	Run(ctx context.Context, f Finding) (string, error)
}

// Dispatcher fans a Finding out to every applicable Runner.
type Dispatcher struct {
	Runners []Runner
	Log     logrus.FieldLogger
}

// Dispatch runs every applicable runner for f and logs each result; it
// never returns an error since a follow-up failure must never abort a
// scan.
func (d *Dispatcher) Dispatch(ctx context.Context, f Finding) {
	for _, r := range d.Runners {
		if !r.Applies(f) {
			continue
		}
		msg, err := r.Run(ctx, f)
		fields := logrus.Fields{"runner": r.Name(), "host": f.Host, "port": f.Port}
		if err != nil {
			d.Log.WithFields(fields).WithError(err).Debug("followup failed")
			continue
		}
		d.Log.WithFields(fields).Info(msg)
	}
}

// ServiceHint returns a best-effort service name for port, used to
// decide which runners apply. Grounded on the teacher's
// pkg/network/port_scanner.go:lookupService table.
func ServiceHint(port int) string {
	switch port {
	case 21:
		return "ftp"
	case 80, 8080, 8000, 8888:
		return "http"
	case 443, 8443:
		return "https"
	case 22:
		return "ssh"
	default:
		return ""
	}
}
